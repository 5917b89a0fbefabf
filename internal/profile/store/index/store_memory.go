// Package index provides the backing implementations of the event search index.
package index

import (
	"context"
	"sync"

	"profiling/internal/profile"
)

// InMemoryIndex keeps events in per-dimension lists, newest first, mirroring
// the ordering the redis index produces. Used in tests and as the dev fallback
// when no redis is configured.
type InMemoryIndex struct {
	mu    sync.RWMutex
	byDim map[profile.Dimension]map[string][]profile.UserEvent
}

func NewMemory() *InMemoryIndex {
	return &InMemoryIndex{
		byDim: make(map[profile.Dimension]map[string][]profile.UserEvent),
	}
}

func (s *InMemoryIndex) Index(_ context.Context, event profile.UserEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

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
		if s.byDim[dim] == nil {
			s.byDim[dim] = make(map[string][]profile.UserEvent)
		}
		// Prepend: newest first.
		s.byDim[dim][value] = append([]profile.UserEvent{event}, s.byDim[dim][value]...)
	}
	return nil
}

func (s *InMemoryIndex) Search(_ context.Context, dim profile.Dimension, value string, size int) ([]profile.UserEvent, error) {
	if size <= 0 {
		size = profile.DefaultPageSize
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.byDim[dim][value]
	if len(events) > size {
		events = events[:size]
	}
	out := make([]profile.UserEvent, len(events))
	copy(out, events)
	return out, nil
}
