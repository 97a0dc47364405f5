// Package http exposes the analytics engine as a JSON API. Every endpoint
// answers with a status/data/error envelope; the analysis endpoints accept
// a posted expense list, the user endpoints read and write the store.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"gastos/internal/auth"
	"gastos/internal/cache"
	"gastos/internal/core"
	applog "gastos/internal/log"
	"gastos/internal/store"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
)

// Server wires the analytics handlers, the token manager and the store
// behind one http.Server.
type Server struct {
	http.Server
	tokens      *auth.Manager
	expenses    store.ExpenseLister
	writer      store.ExpenseWriter
	budgets     store.BudgetStore
	rateLimiter *rateLimiter
	metrics     *securityMetrics
	logs        *applog.StructuredLogger

	// ledgerCache keeps recently listed ledgers out of the store.
	ledgerCache *cache.LRUCache[core.Ledger]
	janitor     *cache.Janitor

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// The store arguments may be nil; the user endpoints then answer 404.
func NewServer(addr string, tokens *auth.Manager, expenses store.ExpenseLister, writer store.ExpenseWriter, budgets store.BudgetStore) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		tokens:      tokens,
		expenses:    expenses,
		writer:      writer,
		budgets:     budgets,
		rateLimiter: newRateLimiter(),
		metrics:     &securityMetrics{},
		logs: applog.NewStructuredLogger(
			applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)),
		ledgerCache: cache.NewLRUCache[core.Ledger](100, 2*time.Minute),
		janitor:     cache.NewJanitor(),
	}

	s.janitor.Register(s.ledgerCache)
	s.janitor.Start(10 * time.Minute)

	mux.HandleFunc("GET /api/v2/health", s.with(s.handleHealth))
	mux.HandleFunc("POST /api/v2/auth/token", s.with(s.handleIssueToken))
	mux.HandleFunc("POST /api/v2/auth/validate", s.with(s.handleValidateToken))

	protected := map[string]http.HandlerFunc{
		"POST /api/v2/predict-category":         s.handlePredictCategory,
		"POST /api/v2/predict-monthly":          s.handlePredictMonthly,
		"POST /api/v2/detect-anomalies":         s.handleDetectAnomalies,
		"POST /api/v2/compare-models":           s.handleCompareModels,
		"POST /api/v2/seasonality":              s.handleSeasonality,
		"POST /api/v2/analysis-complete":        s.handleAnalysisComplete,
		"POST /api/v2/stat/correlations":        s.handleCorrelations,
		"POST /api/v2/stat/temporal-comparison": s.handleTemporalComparison,
		"POST /api/v2/stat/clustering":          s.handleClustering,
		"POST /api/v2/stat/trends":              s.handleTrends,
		"POST /api/v2/stat/outliers":            s.handleOutliers,
		"POST /api/v2/stat/complete":            s.handleStatComplete,
		"POST /api/v2/savings/goals":            s.handleSavingsGoals,
		"POST /api/v2/savings/tips":             s.handleSavingsTips,
		"POST /api/v2/savings/budget-alerts":    s.handleBudgetAlerts,
		"POST /api/v2/savings/health-score":     s.handleHealthScore,
		"POST /api/v2/savings/weekly-report":    s.handleWeeklyReport,
		"POST /api/v2/savings/complete":         s.handleSavingsComplete,
		"GET /api/v2/users/{id}/expenses":       s.handleListExpenses,
		"POST /api/v2/users/{id}/expenses":      s.handleAddExpense,
		"GET /api/v2/users/{id}/budget":         s.handleGetBudget,
		"PUT /api/v2/users/{id}/budget":         s.handleSetBudget,
	}
	for pattern, handler := range protected {
		mux.HandleFunc(pattern, s.with(s.withAuth(handler)))
	}

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		if s.janitor != nil {
			s.janitor.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// with adds security headers, rate limiting and request logging.
func (s *Server) with(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		s.logs.LogHTTPStart(ctx, r, clientIP, requestID)

		if detectSuspiciousRequest(r, s.metrics) {
			slog.WarnContext(ctx, "Suspicious request", "client_ip", clientIP, "url", r.URL.Path)
		}

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "url", r.URL.Path)
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").
				Header("Retry-After", "60").
				Write(w)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logs.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP, requestID)
	}
}

// withAuth gates a handler behind a valid bearer token. The token may come
// in the Authorization header or the X-API-Key header.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			UnauthorizedError("missing token").Write(w)
			return
		}
		userID, err := s.tokens.Validate(token)
		if err != nil {
			slog.WarnContext(r.Context(), "Token rejected", "error", err)
			UnauthorizedError("invalid or expired token").Write(w)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// bearerToken extracts the token from the request headers.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
		return strings.TrimSpace(h)
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

// authenticatedUser returns the user behind the validated token, if any.
func authenticatedUser(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	OK(w, map[string]string{"estado": "ok", "servicio": "gastos"})
}
