package profile

import "context"

// DefaultPageSize is the index's own page size, used when the caller passes the
// size sentinel (-1) or any non-positive value. A non-positive size means "no
// explicit cap", never "zero rows".
const DefaultPageSize = 10

// EventWriter is the durable, append-only sink for accepted events.
type EventWriter interface {
	Append(ctx context.Context, event UserEvent) error
}

// EventIndex is the read path over stored events, dispatched by dimension.
// Results come back in the index's natural recency order (newest first); no
// secondary sort is imposed. A value with no matching events yields an empty
// slice, not an error.
type EventIndex interface {
	Index(ctx context.Context, event UserEvent) error
	Search(ctx context.Context, dim Dimension, value string, size int) ([]UserEvent, error)
}
