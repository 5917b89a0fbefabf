package membership

import (
	"context"
	"errors"
	"log/slog"

	"profiling/internal/platform/metrics"
	"profiling/pkg/platform/circuit"
	"profiling/pkg/platform/sentinel"
	"profiling/pkg/requestcontext"
)

// Gateway wraps the downstream membership lookup behind a circuit breaker and
// translates outcomes into a tagged Result. It never returns an error for
// downstream faults; callers branch on Result.Status.
type Gateway struct {
	client  Client
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewGateway builds a Gateway with one breaker dedicated to the downstream target.
func NewGateway(client Client, breaker *circuit.Breaker, logger *slog.Logger, m *metrics.Metrics) *Gateway {
	return &Gateway{client: client, breaker: breaker, logger: logger, metrics: m}
}

// Check resolves the caller's membership. The caller's bearer credential is
// forwarded so the downstream sees the original identity.
//
// Policy note: every downstream fault counts against the breaker, not just one
// transport error class. A definitive not-found is a successful round trip and
// records success.
func (g *Gateway) Check(ctx context.Context, callerToken string, membershipID int) Result {
	if !g.breaker.Allow() {
		g.logger.WarnContext(ctx, "membership check short-circuited",
			"breaker", g.breaker.Name(),
			"membership_id", membershipID,
			"request_id", requestcontext.RequestID(ctx),
		)
		g.metrics.MembershipChecks.WithLabelValues(StatusUnavailable.String()).Inc()
		return Result{Status: StatusUnavailable}
	}

	m, err := g.lookup(ctx, callerToken, membershipID)
	switch {
	case err == nil:
		if g.breaker.RecordSuccess() {
			g.metrics.BreakerClosed.Inc()
			g.logger.InfoContext(ctx, "membership breaker closed", "breaker", g.breaker.Name())
		}
		g.metrics.MembershipChecks.WithLabelValues(StatusFound.String()).Inc()
		return Result{Status: StatusFound, Membership: m}

	case errors.Is(err, sentinel.ErrNotFound):
		// The downstream answered; the record just doesn't exist.
		if g.breaker.RecordSuccess() {
			g.metrics.BreakerClosed.Inc()
			g.logger.InfoContext(ctx, "membership breaker closed", "breaker", g.breaker.Name())
		}
		g.metrics.MembershipChecks.WithLabelValues(StatusNotFound.String()).Inc()
		return Result{Status: StatusNotFound}

	default:
		if g.breaker.RecordFailure() {
			g.metrics.BreakerOpened.Inc()
			g.logger.ErrorContext(ctx, "membership breaker opened",
				"breaker", g.breaker.Name(),
				"error", err,
			)
		}
		g.logger.WarnContext(ctx, "membership lookup failed",
			"membership_id", membershipID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		g.metrics.MembershipChecks.WithLabelValues(StatusUnavailable.String()).Inc()
		return Result{Status: StatusUnavailable}
	}
}

// lookup calls the downstream and guarantees the breaker hears an outcome even
// when the client panics; an unreported trial would wedge the breaker
// half-open until restart.
func (g *Gateway) lookup(ctx context.Context, callerToken string, membershipID int) (m Membership, err error) {
	completed := false
	defer func() {
		if !completed && g.breaker.RecordFailure() {
			g.metrics.BreakerOpened.Inc()
		}
	}()
	m, err = g.client.Lookup(ctx, callerToken, membershipID)
	completed = true
	return m, err
}
