package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type tokenRequest struct {
	UserID string `json:"user_id"`
}

type validateRequest struct {
	Token string `json:"token"`
}

// handleIssueToken signs a bearer token for the requested user.
func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		BadRequestError("malformed JSON body").Write(w)
		return
	}
	if req.UserID == "" {
		BadRequestError("user_id is required").Write(w)
		return
	}

	token, err := s.tokens.Issue(req.UserID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Token issue failed", "user_id", req.UserID, "error", err)
		InternalServerError("could not issue token").Write(w)
		return
	}

	OK(w, map[string]string{
		"token": token,
		"tipo":  "Bearer",
	})
}

// handleValidateToken checks a token from the body or, failing that, the
// usual auth headers.
func (s *Server) handleValidateToken(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	// Body is optional here, a header-only check is fine.
	_ = json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(&req)
	token := req.Token
	if token == "" {
		token = bearerToken(r)
	}
	if token == "" {
		BadRequestError("no token provided").Write(w)
		return
	}

	userID, err := s.tokens.Validate(token)
	if err != nil {
		UnauthorizedError("invalid or expired token").Write(w)
		return
	}

	OK(w, map[string]any{
		"valido":  true,
		"user_id": userID,
	})
}
