package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndValidate(t *testing.T) {
	m := NewManager("test-secret", time.Hour, NewMemorySessionStore())
	token, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	userID, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("user = %q, want user-1", userID)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour, NewMemorySessionStore())
	if _, err := m.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour, NewMemorySessionStore())
	token, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	verifier := NewManager("secret-b", time.Hour, NewMemorySessionStore())
	if _, err := verifier.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	store := NewMemorySessionStore()
	m := NewManager("test-secret", time.Hour, store)
	past := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return past }
	token, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	m.now = time.Now
	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken for an expired token", err)
	}
}

func TestRevokeKillsSession(t *testing.T) {
	m := NewManager("test-secret", time.Hour, NewMemorySessionStore())
	token, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := m.Revoke(token); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := m.Validate(token); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("got %v, want ErrSessionExpired", err)
	}
}

func TestSessionStoreExpiry(t *testing.T) {
	store := NewMemorySessionStore()
	if err := store.Save("tok", "user-1", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if store.Alive("tok") {
		t.Error("expired session reported alive")
	}
}

func TestIssueEmptyUser(t *testing.T) {
	m := NewManager("test-secret", time.Hour, NewMemorySessionStore())
	if _, err := m.Issue(""); err == nil {
		t.Fatal("want error for empty user id")
	}
}
