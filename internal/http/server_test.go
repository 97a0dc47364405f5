package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gastos/internal/auth"
	"gastos/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	tokens := auth.NewManager("test-secret-0123456789", 0, auth.NewMemorySessionStore())
	mem := store.NewMemoryStore()
	s := NewServer(":0", tokens, mem, mem, mem)
	t.Cleanup(func() {
		s.rateLimiter.stop()
		s.janitor.Stop()
	})
	return s
}

func issueToken(t *testing.T, s *Server, userID string) string {
	t.Helper()
	token, err := s.tokens.Issue(userID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

// doJSON performs a request against the server's handler and decodes the
// envelope.
func doJSON(t *testing.T, s *Server, method, path, token, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding envelope from %q: %v", rec.Body.String(), err)
	}
	return rec.Code, env
}

// sampleExpenses builds a gastos array with n days of spending in one
// category, 10.0 each.
func sampleExpenses(n int) string {
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(
			`{"fecha":"2024-01-%02d","monto":10.0,"categoria":"Comida"}`, i+1))
	}
	return `[` + strings.Join(items, ",") + `]`
}

func dataMap(t *testing.T, env envelope) map[string]any {
	t.Helper()
	m, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("data is %T, want object", env.Data)
	}
	return m
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	code, env := doJSON(t, s, http.MethodGet, "/api/v2/health", "", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if env.Status != "success" {
		t.Errorf("envelope status = %q", env.Status)
	}
	if got := dataMap(t, env)["estado"]; got != "ok" {
		t.Errorf("estado = %v", got)
	}
}

func TestIssueTokenAndCallProtected(t *testing.T) {
	s := newTestServer(t)

	code, env := doJSON(t, s, http.MethodPost, "/api/v2/auth/token", "", `{"user_id":"u1"}`)
	if code != http.StatusOK {
		t.Fatalf("token status = %d: %s", code, env.Error)
	}
	token, _ := dataMap(t, env)["token"].(string)
	if token == "" {
		t.Fatal("no token in response")
	}

	body := `{"gastos":` + sampleExpenses(10) + `}`
	code, env = doJSON(t, s, http.MethodPost, "/api/v2/seasonality", token, body)
	if code != http.StatusOK {
		t.Fatalf("seasonality status = %d: %s", code, env.Error)
	}
	if env.Status != "success" {
		t.Errorf("envelope status = %q", env.Status)
	}
}

func TestIssueTokenRequiresUser(t *testing.T) {
	s := newTestServer(t)
	code, _ := doJSON(t, s, http.MethodPost, "/api/v2/auth/token", "", `{}`)
	if code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
}

func TestProtectedEndpointRejectsMissingToken(t *testing.T) {
	s := newTestServer(t)
	body := `{"gastos":` + sampleExpenses(5) + `}`

	tests := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"garbage token", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := doJSON(t, s, http.MethodPost, "/api/v2/predict-category", tt.token, body)
			if code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", code)
			}
			if env.Status != "error" {
				t.Errorf("envelope status = %q, want error", env.Status)
			}
		})
	}
}

func TestValidateToken(t *testing.T) {
	s := newTestServer(t)
	token := issueToken(t, s, "u1")

	code, env := doJSON(t, s, http.MethodPost, "/api/v2/auth/validate", "", `{"token":"`+token+`"}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d: %s", code, env.Error)
	}
	data := dataMap(t, env)
	if data["valido"] != true {
		t.Errorf("valido = %v", data["valido"])
	}
	if data["user_id"] != "u1" {
		t.Errorf("user_id = %v", data["user_id"])
	}
}

func TestPredictCategory(t *testing.T) {
	s := newTestServer(t)
	token := issueToken(t, s, "u1")

	code, env := doJSON(t, s, http.MethodPost, "/api/v2/predict-category", token,
		`{"gastos":`+sampleExpenses(10)+`,"dias":7}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d: %s", code, env.Error)
	}
	byCat, ok := dataMap(t, env)["por_categoria"].(map[string]any)
	if !ok {
		t.Fatalf("por_categoria missing: %v", env.Data)
	}
	if _, ok := byCat["Comida"]; !ok {
		t.Errorf("no forecast for Comida: %v", byCat)
	}
}

func TestAnalysisErrorMapping(t *testing.T) {
	s := newTestServer(t)
	token := issueToken(t, s, "u1")

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
	}{
		{"malformed body", "/api/v2/predict-category", `{"gastos":`, http.StatusBadRequest},
		{"empty expense list", "/api/v2/predict-category", `{"gastos":[]}`, http.StatusBadRequest},
		{"negative amount", "/api/v2/detect-anomalies",
			`{"gastos":[{"fecha":"2024-01-01","monto":-5,"categoria":"Comida"}]}`,
			http.StatusBadRequest},
		{"too little data", "/api/v2/predict-category",
			`{"gastos":[{"fecha":"2024-01-01","monto":10,"categoria":"Comida"},
			            {"fecha":"2024-01-02","monto":12,"categoria":"Comida"}]}`,
			http.StatusUnprocessableEntity},
		{"too few weeks for trends", "/api/v2/stat/trends",
			`{"gastos":[{"fecha":"2024-01-01","monto":10,"categoria":"Comida"}]}`,
			http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := doJSON(t, s, http.MethodPost, tt.path, token, tt.body)
			if code != tt.wantCode {
				t.Errorf("status = %d, want %d (error %q)", code, tt.wantCode, env.Error)
			}
			if env.Status != "error" {
				t.Errorf("envelope status = %q, want error", env.Status)
			}
		})
	}
}

func TestDetectAnomalies(t *testing.T) {
	s := newTestServer(t)
	token := issueToken(t, s, "u1")

	body := `{"gastos":` + sampleExpenses(10) + `}`
	code, env := doJSON(t, s, http.MethodPost, "/api/v2/detect-anomalies", token, body)
	if code != http.StatusOK {
		t.Fatalf("status = %d: %s", code, env.Error)
	}
	data := dataMap(t, env)
	if _, ok := data["cantidad"]; !ok {
		t.Errorf("cantidad missing from %v", data)
	}
}

func TestBudgetAlertsCritical(t *testing.T) {
	s := newTestServer(t)
	token := issueToken(t, s, "u1")

	// 345 spent against a 300 budget.
	body := `{
		"gastos":[
			{"fecha":"2024-01-05","monto":200,"categoria":"Comida"},
			{"fecha":"2024-01-10","monto":145,"categoria":"Ocio"}
		],
		"presupuesto":{"total":300}
	}`
	code, env := doJSON(t, s, http.MethodPost, "/api/v2/savings/budget-alerts", token, body)
	if code != http.StatusOK {
		t.Fatalf("status = %d: %s", code, env.Error)
	}
	alerts, ok := dataMap(t, env)["alertas"].([]any)
	if !ok || len(alerts) == 0 {
		t.Fatalf("no alerts in %v", env.Data)
	}
	first := alerts[0].(map[string]any)
	if first["nivel"] != "CRÍTICO" {
		t.Errorf("nivel = %v, want CRÍTICO", first["nivel"])
	}
}

func TestSavingsCompleteWithoutTarget(t *testing.T) {
	s := newTestServer(t)
	token := issueToken(t, s, "u1")

	body := `{"gastos":` + sampleExpenses(15) + `}`
	code, env := doJSON(t, s, http.MethodPost, "/api/v2/savings/complete", token, body)
	if code != http.StatusOK {
		t.Fatalf("status = %d: %s", code, env.Error)
	}
	data := dataMap(t, env)
	if _, ok := data["plan_ahorro"]; ok {
		t.Error("plan_ahorro present without a target")
	}
	if _, ok := data["salud_financiera"]; !ok {
		t.Errorf("salud_financiera missing from %v", data)
	}
}

func TestUserExpensesRoundTrip(t *testing.T) {
	s := newTestServer(t)
	token := issueToken(t, s, "ana")

	code, env := doJSON(t, s, http.MethodPost, "/api/v2/users/ana/expenses", token,
		`{"fecha":"2024-03-01","monto":25.50,"categoria":"Transporte"}`)
	if code != http.StatusCreated {
		t.Fatalf("add status = %d: %s", code, env.Error)
	}
	if ref, _ := dataMap(t, env)["ref"].(string); ref == "" {
		t.Error("no ref in add response")
	}

	code, env = doJSON(t, s, http.MethodGet, "/api/v2/users/ana/expenses", token, "")
	if code != http.StatusOK {
		t.Fatalf("list status = %d: %s", code, env.Error)
	}
	data := dataMap(t, env)
	if got := data["cantidad"]; got != float64(1) {
		t.Errorf("cantidad = %v, want 1", got)
	}
	if got := data["total"]; got != 25.5 {
		t.Errorf("total = %v, want 25.5", got)
	}
}

func TestBudgetRoundTrip(t *testing.T) {
	s := newTestServer(t)
	token := issueToken(t, s, "ana")

	code, env := doJSON(t, s, http.MethodGet, "/api/v2/users/ana/budget", token, "")
	if code != http.StatusNotFound {
		t.Fatalf("get before set status = %d, want 404", code)
	}

	code, env = doJSON(t, s, http.MethodPut, "/api/v2/users/ana/budget", token,
		`{"total":800,"por_categoria":{"Comida":300}}`)
	if code != http.StatusOK {
		t.Fatalf("put status = %d: %s", code, env.Error)
	}

	code, env = doJSON(t, s, http.MethodGet, "/api/v2/users/ana/budget", token, "")
	if code != http.StatusOK {
		t.Fatalf("get status = %d: %s", code, env.Error)
	}
	if got := dataMap(t, env)["total"]; got != float64(800) {
		t.Errorf("total = %v, want 800", got)
	}
}

func TestSetBudgetRejectsNegative(t *testing.T) {
	s := newTestServer(t)
	token := issueToken(t, s, "ana")

	code, _ := doJSON(t, s, http.MethodPut, "/api/v2/users/ana/budget", token, `{"total":-5}`)
	if code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
}

func TestAddExpenseRejectsInvalidRecord(t *testing.T) {
	s := newTestServer(t)
	token := issueToken(t, s, "ana")

	code, _ := doJSON(t, s, http.MethodPost, "/api/v2/users/ana/expenses", token,
		`{"fecha":"not-a-date","monto":10}`)
	if code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
}
