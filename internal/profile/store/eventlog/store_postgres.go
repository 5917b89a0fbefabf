// Package eventlog provides the durable, append-only log of accepted events.
package eventlog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"profiling/internal/profile"
)

// PostgresLog appends accepted events to the user_events table. The log is the
// system of record; the search index is rebuildable from it.
type PostgresLog struct {
	pool *pgxpool.Pool
}

// NewPostgres connects a log to the database at url.
// Returns nil if the URL is empty (durable log not configured).
func NewPostgres(ctx context.Context, url string) (*PostgresLog, error) {
	if url == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return &PostgresLog{pool: pool}, nil
}

const insertEvent = `
INSERT INTO user_events (id, event_name, user_id, location, partner_name, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING`

func (l *PostgresLog) Append(ctx context.Context, event profile.UserEvent) error {
	_, err := l.pool.Exec(ctx, insertEvent,
		event.ID,
		event.EventName,
		event.UserID,
		nullable(event.Location),
		nullable(event.PartnerName),
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (l *PostgresLog) Close() {
	l.pool.Close()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
