// Package membership resolves whether a user id is a valid subscriber by
// calling the downstream membership authority through a circuit breaker.
package membership

// Membership is the downstream authority's record for a subscriber.
type Membership struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// Status tags the three outcomes a membership check can resolve to. Callers
// make authorization decisions on this distinction, so it never collapses to a
// binary allow/deny.
type Status int

const (
	// StatusFound means the downstream confirmed the membership.
	StatusFound Status = iota
	// StatusNotFound means the downstream answered and the membership does not exist.
	StatusNotFound
	// StatusUnavailable means the downstream could not be reached, including
	// breaker-open short circuits.
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	case StatusUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// Result is produced fresh per check and never cached; membership status can
// change at any time.
type Result struct {
	Status     Status
	Membership Membership
}
