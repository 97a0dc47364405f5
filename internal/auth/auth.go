// Package auth issues and validates the bearer tokens protecting the API.
// Tokens are HS256 JWTs tied to a server-side session, so a token is only
// good while its session is alive: revoking the session kills the token
// before its expiry.
package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 24 * time.Hour

var (
	// ErrInvalidToken covers malformed, mis-signed and expired tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrSessionExpired means the token verified but its session is gone.
	ErrSessionExpired = errors.New("session expired or revoked")
)

// Claims is the token payload.
type Claims struct {
	UserID  string `json:"user_id"`
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

// SessionStore tracks which issued tokens are still honored.
type SessionStore interface {
	Save(tokenID, userID string, expiresAt time.Time) error
	Alive(tokenID string) bool
	Revoke(tokenID string) error
}

// Manager signs and verifies tokens against one secret and one store.
type Manager struct {
	secret   []byte
	ttl      time.Duration
	sessions SessionStore
	now      func() time.Time
}

// NewManager builds a Manager. A non-positive ttl falls back to DefaultTTL.
func NewManager(secret string, ttl time.Duration, sessions SessionStore) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		secret:   []byte(secret),
		ttl:      ttl,
		sessions: sessions,
		now:      time.Now,
	}
}

// Issue creates a signed token for userID and registers its session.
func (m *Manager) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("empty user id")
	}
	now := m.now()
	tokenID := uuid.NewString()
	claims := Claims{
		UserID:  userID,
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	if err := m.sessions.Save(tokenID, userID, now.Add(m.ttl)); err != nil {
		return "", fmt.Errorf("saving session: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature and expiry and checks the session is
// still alive. It returns the user the token belongs to.
func (m *Manager) Validate(tokenString string) (string, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if !m.sessions.Alive(claims.TokenID) {
		return "", ErrSessionExpired
	}
	return claims.UserID, nil
}

// Revoke invalidates the session behind a still-valid token.
func (m *Manager) Revoke(tokenString string) error {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ErrInvalidToken
	}
	return m.sessions.Revoke(claims.TokenID)
}

// memorySession is one live session.
type memorySession struct {
	userID    string
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process memory. Expired entries
// are dropped lazily on lookup.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	now      func() time.Time
}

// NewMemorySessionStore builds an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Save(tokenID, userID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[tokenID] = memorySession{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *MemorySessionStore) Alive(tokenID string) bool {
	s.mu.RLock()
	session, ok := s.sessions[tokenID]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if s.now().After(session.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, tokenID)
		s.mu.Unlock()
		return false
	}
	return true
}

func (s *MemorySessionStore) Revoke(tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tokenID)
	return nil
}
