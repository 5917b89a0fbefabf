package profile

import (
	"context"
	"log/slog"

	"profiling/internal/platform/metrics"
	"profiling/pkg/requestcontext"
)

// Recorder accepts events synchronously and persists them in the background.
// Record returns once the event passes structural validation; durability and
// index visibility are asynchronous, so a write followed immediately by a
// search may not observe the just-written event.
type Recorder struct {
	queue   chan UserEvent
	writer  EventWriter // nil when no durable log is configured
	index   EventIndex
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewRecorder(index EventIndex, writer EventWriter, queueSize int, logger *slog.Logger, m *metrics.Metrics) *Recorder {
	return &Recorder{
		queue:   make(chan UserEvent, queueSize),
		writer:  writer,
		index:   index,
		logger:  logger,
		metrics: m,
	}
}

// Record validates the event, assigns the ingestion timestamp and id, and
// enqueues it without blocking the caller. No durability promise is made at
// this point; a full queue drops the event with a logged warning rather than
// stalling the request path.
func (r *Recorder) Record(ctx context.Context, event *UserEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	event.normalize(requestcontext.Now(ctx))

	select {
	case r.queue <- *event:
		r.metrics.EventsAccepted.Inc()
	default:
		r.metrics.EventsDropped.Inc()
		r.logger.WarnContext(ctx, "event queue full, dropping event",
			"event_name", event.EventName,
			"user_id", event.UserID,
		)
	}
	return nil
}

// Run drains the queue, fanning each event out to the durable log and the
// search index. Persistence failures are logged, never surfaced to the
// original caller.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-r.queue:
			r.persist(ctx, event)
		}
	}
}

func (r *Recorder) persist(ctx context.Context, event UserEvent) {
	if r.writer != nil {
		if err := r.writer.Append(ctx, event); err != nil {
			r.logger.ErrorContext(ctx, "event log append failed",
				"event_id", event.ID,
				"error", err,
			)
		}
	}
	if err := r.index.Index(ctx, event); err != nil {
		r.logger.ErrorContext(ctx, "event index write failed",
			"event_id", event.ID,
			"error", err,
		)
	}
}
