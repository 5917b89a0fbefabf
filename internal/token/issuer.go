// Package token issues and signs bearer tokens carrying role claims for
// authenticated sessions, and verifies the same tokens on the way back in.
package token

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"profiling/internal/policy"
	pstrings "profiling/pkg/platform/strings"
	"profiling/pkg/requestcontext"
)

// Fatal for the current request; never retried.
var (
	ErrInvalidPrincipal   = errors.New("invalid principal")
	ErrSigningUnavailable = errors.New("signing key unavailable")
)

// Principal is an already-authenticated identity. This core never verifies
// credentials itself; the security context supplies the principal.
type Principal struct {
	Username string
	Roles    []string
}

// Claims is the assertion set a token carries before signing. Groups holds the
// principal's roles in declared order.
type Claims struct {
	Groups []string `json:"groups"`
	jwt.RegisteredClaims
}

// Issuer builds an unsigned claim set from an authenticated principal.
type Issuer struct {
	declaredRoles []string
	lifetime      time.Duration
}

func NewIssuer(lifetime time.Duration) *Issuer {
	return &Issuer{
		declaredRoles: policy.DeclaredRoles,
		lifetime:      lifetime,
	}
}

// Issue derives the authoritative claim set for a principal. Roles are exactly
// the declared application roles the principal is provably in, in declaration
// order - never the principal's input order, and never a fabricated role.
func (i *Issuer) Issue(ctx context.Context, p Principal) (Claims, error) {
	if p.Username == "" {
		return Claims{}, ErrInvalidPrincipal
	}

	held := pstrings.DedupeAndTrim(p.Roles)
	groups := make([]string, 0, len(i.declaredRoles))
	for _, role := range i.declaredRoles {
		if slices.Contains(held, role) {
			groups = append(groups, role)
		}
	}

	now := requestcontext.Now(ctx)
	return Claims{
		Groups: groups,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.lifetime)),
			Issuer:    "profiling",
		},
	}, nil
}
