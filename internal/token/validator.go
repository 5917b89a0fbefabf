package token

import (
	authmw "profiling/pkg/platform/middleware/auth"
)

// Validator adapts the Signer's verification to the auth middleware's
// interface, translating claims back into the middleware's principal shape.
type Validator struct {
	signer *Signer
}

func NewValidator(signer *Signer) *Validator {
	return &Validator{signer: signer}
}

func (v *Validator) ValidateToken(tokenString string) (*authmw.Principal, error) {
	claims, err := v.signer.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.Principal{
		Username: claims.Subject,
		Roles:    claims.Groups,
	}, nil
}
