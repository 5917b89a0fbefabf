// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Context keys and getter/setter functions live here for values that are set by
// middleware but consumed by services. Keeping this package free of net/http
// dependencies means services import only what they need.
//
// Usage in services (read values):
//
//	username := requestcontext.Username(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithPrincipal(ctx, username, roles)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"slices"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	usernameKey    struct{}
	rolesKey       struct{}
	rawTokenKey    struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyUsername    = usernameKey{}
	ContextKeyRoles       = rolesKey{}
	ContextKeyRawToken    = rawTokenKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Username retrieves the authenticated principal's name from the context.
// Returns "" if the request is unauthenticated.
func Username(ctx context.Context) string {
	if name, ok := ctx.Value(ContextKeyUsername).(string); ok {
		return name
	}
	return ""
}

// Roles retrieves the authenticated principal's role memberships.
func Roles(ctx context.Context) []string {
	if roles, ok := ctx.Value(ContextKeyRoles).([]string); ok {
		return roles
	}
	return nil
}

// HasRole reports whether the context principal is in the given role.
func HasRole(ctx context.Context, role string) bool {
	return slices.Contains(Roles(ctx), role)
}

// WithPrincipal injects an authenticated principal into the context.
func WithPrincipal(ctx context.Context, username string, roles []string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUsername, username)
	return context.WithValue(ctx, ContextKeyRoles, roles)
}

// RawToken retrieves the bearer credential the caller presented, for forwarding
// to downstream services that authenticate with the same token.
func RawToken(ctx context.Context) string {
	if token, ok := ctx.Value(ContextKeyRawToken).(string); ok {
		return token
	}
	return ""
}

// WithRawToken injects the caller's bearer credential into the context.
func WithRawToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ContextKeyRawToken, token)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like workers and tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests that don't run the full HTTP middleware chain, and for workers that
// need a consistent time within a batch.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
