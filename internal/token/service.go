package token

import (
	"context"
	"log/slog"

	"profiling/internal/audit"
	"profiling/pkg/requestcontext"
)

// Service composes Issuer and Signer behind the authenticated request surface.
type Service struct {
	issuer     *Issuer
	signer     *Signer
	auditTrail *audit.Publisher
	logger     *slog.Logger
}

func NewService(issuer *Issuer, signer *Signer, auditTrail *audit.Publisher, logger *slog.Logger) *Service {
	return &Service{issuer: issuer, signer: signer, auditTrail: auditTrail, logger: logger}
}

// IssueToken issues a signed token for the context principal. Any
// authenticated principal may request a token for its own identity; roles in
// the claims come from the security context, not the request.
func (s *Service) IssueToken(ctx context.Context) (string, error) {
	principal := Principal{
		Username: requestcontext.Username(ctx),
		Roles:    requestcontext.Roles(ctx),
	}

	claims, err := s.issuer.Issue(ctx, principal)
	if err != nil {
		return "", err
	}

	signed, err := s.signer.Sign(claims)
	if err != nil {
		return "", err
	}

	s.auditTrail.Emit(ctx, audit.Event{
		Username: principal.Username,
		Action:   audit.ActionTokenIssued,
		Subject:  principal.Username,
	})
	return signed, nil
}
