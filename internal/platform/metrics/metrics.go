package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	EventsAccepted    prometheus.Counter
	EventsDropped     prometheus.Counter
	UserEventRequests prometheus.Counter
	MembershipChecks  *prometheus.CounterVec
	BreakerOpened     prometheus.Counter
	BreakerClosed     prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics against a specific registerer. Tests pass a
// fresh registry so repeated construction doesn't panic on duplicates.
func NewWith(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		EventsAccepted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "profiling_user_events_created_total",
			Help: "Total number of user events accepted for ingestion",
		}),
		EventsDropped: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "profiling_user_events_dropped_total",
			Help: "Events accepted but dropped because the ingest queue was full",
		}),
		UserEventRequests: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "profiling_user_event_requests_total",
			Help: "Total number of per-user event query requests",
		}),
		MembershipChecks: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "profiling_membership_checks_total",
			Help: "Membership checks by outcome (found, not_found, unavailable)",
		}, []string{"outcome"}),
		BreakerOpened: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "profiling_membership_breaker_opened_total",
			Help: "Times the membership circuit breaker tripped open",
		}),
		BreakerClosed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "profiling_membership_breaker_closed_total",
			Help: "Times the membership circuit breaker recovered closed",
		}),
	}
}
