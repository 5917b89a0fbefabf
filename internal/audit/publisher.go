package audit

import (
	"context"
	"time"
)

// Store is the append-only sink behind the trail.
type Store interface {
	Append(ctx context.Context, event Event) error
	Recent(ctx context.Context, limit int) ([]Event, error)
}

// Publisher hands events to the background worker without blocking the caller.
// A full inbox drops the event; the trail is best-effort by design.
type Publisher struct {
	inbox chan Event
}

func NewPublisher(buffer int) *Publisher {
	return &Publisher{inbox: make(chan Event, buffer)}
}

// Emit queues an audit event, stamping the time if unset.
func (p *Publisher) Emit(_ context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
	}
}

// Inbox exposes the receive side for the worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}
