package profile

import (
	"context"
	"fmt"
	"log/slog"

	"profiling/internal/audit"
	"profiling/internal/membership"
	"profiling/internal/platform/metrics"
	"profiling/pkg/requestcontext"
)

// MembershipChecker resolves whether a membership id is a valid subscriber.
type MembershipChecker interface {
	Check(ctx context.Context, callerToken string, membershipID int) membership.Result
}

// Service orchestrates event ingestion and queries behind the authenticated
// request surface. Per-user queries are gated on a membership check; the other
// search dimensions are not principal-scoped and search directly.
type Service struct {
	recorder    *Recorder
	index       EventIndex
	memberships MembershipChecker
	auditTrail  *audit.Publisher
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

func NewService(
	recorder *Recorder,
	index EventIndex,
	memberships MembershipChecker,
	auditTrail *audit.Publisher,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		recorder:    recorder,
		index:       index,
		memberships: memberships,
		auditTrail:  auditTrail,
		logger:      logger,
		metrics:     m,
	}
}

// LogEvent accepts an event for asynchronous persistence. The returned event
// carries the assigned id and ingestion timestamp.
func (s *Service) LogEvent(ctx context.Context, event *UserEvent) error {
	return s.recorder.Record(ctx, event)
}

// UserEvents returns the events for a membership id, but only after the
// downstream authority confirms the membership. The three downstream outcomes
// stay distinct: not-found is an authorization precondition failure, an
// unreachable authority is a retryable service failure, and neither means
// "no events".
func (s *Service) UserEvents(ctx context.Context, userID, size int) ([]UserEvent, error) {
	s.metrics.UserEventRequests.Inc()

	res := s.memberships.Check(ctx, requestcontext.RawToken(ctx), userID)
	switch res.Status {
	case membership.StatusNotFound:
		s.auditTrail.Emit(ctx, audit.Event{
			Username: requestcontext.Username(ctx),
			Action:   audit.ActionMembershipDenied,
			Subject:  fmt.Sprintf("%d", userID),
			Reason:   "membership does not exist",
		})
		return nil, &MembershipNotFoundError{MembershipID: userID}
	case membership.StatusUnavailable:
		s.auditTrail.Emit(ctx, audit.Event{
			Username: requestcontext.Username(ctx),
			Action:   audit.ActionDownstreamUnavailable,
			Subject:  fmt.Sprintf("%d", userID),
			Reason:   "membership authority unreachable",
		})
		return nil, ErrDownstreamUnavailable
	}

	return s.index.Search(ctx, DimensionUserID, fmt.Sprintf("%d", userID), size)
}

// SearchEvents returns events by event name.
func (s *Service) SearchEvents(ctx context.Context, eventName string, size int) ([]UserEvent, error) {
	return s.index.Search(ctx, DimensionEventName, eventName, size)
}

// SearchLocations returns events by location.
func (s *Service) SearchLocations(ctx context.Context, location string, size int) ([]UserEvent, error) {
	return s.index.Search(ctx, DimensionLocation, location, size)
}

// SearchPartners returns events by partner.
func (s *Service) SearchPartners(ctx context.Context, partner string, size int) ([]UserEvent, error) {
	return s.index.Search(ctx, DimensionPartner, partner, size)
}
