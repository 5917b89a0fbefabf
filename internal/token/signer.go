package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer produces a tamper-evident signed representation of an issued claim
// set. The signature covers the full claim set, so mutating subject, groups,
// or expiry invalidates it. Signing is deterministic for identical claims and
// key.
type Signer struct {
	signingKey []byte
}

func NewSigner(signingKey string) *Signer {
	return &Signer{signingKey: []byte(signingKey)}
}

// Sign returns the serialized signed token.
func (s *Signer) Sign(claims Claims) (string, error) {
	if len(s.signingKey) == 0 {
		return "", ErrSigningUnavailable
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and verifies a signed token, returning its claims.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	if len(s.signingKey) == 0 {
		return nil, ErrSigningUnavailable
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
