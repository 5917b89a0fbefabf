// Package handler exposes the token issuing endpoint.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"profiling/internal/policy"
	"profiling/internal/token"
	authmw "profiling/pkg/platform/middleware/auth"
	"profiling/pkg/requestcontext"
)

// Handler handles token issuance for authenticated sessions.
type Handler struct {
	logger    *slog.Logger
	tokens    *token.Service
	policy    policy.Table
	validator authmw.TokenValidator
}

func New(tokens *token.Service, table policy.Table, validator authmw.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		tokens:    tokens,
		policy:    table,
		validator: validator,
	}
}

// Register wires the token routes, guarded by the policy table.
func (h *Handler) Register(r chi.Router) {
	r.Method(http.MethodGet, "/token/issue", h.guard("issueToken", h.handleIssue))
}

func (h *Handler) guard(route string, next http.HandlerFunc) http.Handler {
	roles, gated := h.policy.RolesFor(route)
	if !gated {
		return next
	}
	return authmw.RequireAuth(h.validator, h.logger)(authmw.RequireRoles(roles, h.logger)(next))
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	signed, err := h.tokens.IssueToken(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "token issuance failed",
			"username", requestcontext.Username(ctx),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(signed))
}
