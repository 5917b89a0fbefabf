package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"profiling/pkg/requestcontext"
)

// Principal is the identity the token validator resolved for a request.
type Principal struct {
	Username string
	Roles    []string
}

// TokenValidator verifies an inbound bearer token and resolves its principal.
// Credential verification itself happens behind this interface; middleware only
// consumes the already-verified identity.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Principal, error)
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth rejects requests without a valid bearer token and injects the
// resolved principal plus the raw credential into the request context. The raw
// token is kept so downstream calls can be made on the caller's behalf.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			principal, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithPrincipal(ctx, principal.Username, principal.Roles)
			ctx = requestcontext.WithRawToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles rejects authenticated principals that hold none of the given
// roles. An empty role set admits any authenticated principal.
func RequireRoles(roles []string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if len(roles) > 0 && !holdsAny(ctx, roles) {
				logger.WarnContext(ctx, "unauthorized access - insufficient role",
					"username", requestcontext.Username(ctx),
					"required", roles,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// holdsAny reports whether the context principal holds any of the roles.
func holdsAny(ctx context.Context, roles []string) bool {
	for _, role := range roles {
		if requestcontext.HasRole(ctx, role) {
			return true
		}
	}
	return false
}
