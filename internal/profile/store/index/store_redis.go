package index

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"profiling/internal/profile"
)

// RedisIndex stores events in one redis list per (dimension, value). LPUSH plus
// LRANGE gives the newest-first ordering the index contract promises without a
// secondary sort.
type RedisIndex struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *RedisIndex {
	return &RedisIndex{client: client}
}

func key(dim profile.Dimension, value string) string {
	return fmt.Sprintf("events:%s:%s", dim, value)
}

func (s *RedisIndex) Index(ctx context.Context, event profile.UserEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pipe := s.client.Pipeline()
	for _, dim := range []profile.Dimension{
		profile.DimensionUserID,
		profile.DimensionEventName,
		profile.DimensionLocation,
		profile.DimensionPartner,
	} {
		value := dim.Value(event)
		if value == "" {
			continue
		}
		pipe.LPush(ctx, key(dim, value), payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("index event: %w", err)
	}
	return nil
}

func (s *RedisIndex) Search(ctx context.Context, dim profile.Dimension, value string, size int) ([]profile.UserEvent, error) {
	if size <= 0 {
		size = profile.DefaultPageSize
	}

	raw, err := s.client.LRange(ctx, key(dim, value), 0, int64(size)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("search %s=%q: %w", dim, value, err)
	}

	events := make([]profile.UserEvent, 0, len(raw))
	for _, item := range raw {
		var e profile.UserEvent
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("decode indexed event: %w", err)
		}
		events = append(events, e)
	}
	return events, nil
}
