// Package profile builds up a profile of the user from logged activity events
// and answers queries over them.
package profile

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UserEvent is one logged activity. Immutable once stored; the index
// references events but never mutates them.
type UserEvent struct {
	ID          string    `json:"id,omitempty"`
	EventName   string    `json:"eventName"`
	UserID      int       `json:"userId"`
	Location    string    `json:"location,omitempty"`
	PartnerName string    `json:"partnerName,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
}

// Validate checks the structural requirements for accepting an event.
// Timestamps and IDs are assigned at ingestion, so they are not required here.
func (e *UserEvent) Validate() error {
	if e == nil {
		return errors.New("event is required")
	}
	if e.EventName == "" {
		return errors.New("eventName is required")
	}
	if e.UserID <= 0 {
		return errors.New("userId must be positive")
	}
	return nil
}

// normalize assigns the server-side fields an accepted event carries.
func (e *UserEvent) normalize(now time.Time) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
}

// Dimension is one of the four fixed fields an event can be queried by.
// Exactly one dimension is searched per call; dimensions are never combined.
type Dimension string

const (
	DimensionUserID    Dimension = "userId"
	DimensionEventName Dimension = "eventName"
	DimensionLocation  Dimension = "location"
	DimensionPartner   Dimension = "partnerName"
)

// Value extracts the event's value for a dimension, as indexed.
func (d Dimension) Value(e UserEvent) string {
	switch d {
	case DimensionUserID:
		return fmt.Sprintf("%d", e.UserID)
	case DimensionEventName:
		return e.EventName
	case DimensionLocation:
		return e.Location
	case DimensionPartner:
		return e.PartnerName
	}
	return ""
}
