// Package circuit provides a three-state circuit breaker for guarding calls to
// downstream dependencies. State transitions are ordinary, testable code driven
// by the caller: Allow gates the call, RecordSuccess/RecordFailure report the
// outcome.
package circuit

import (
	"sync/atomic"
	"time"
)

// State is the breaker's position in its lifecycle.
type State int32

const (
	// StateClosed lets calls through; failures count toward the threshold.
	StateClosed State = iota
	// StateOpen short-circuits calls until the cooldown elapses.
	StateOpen
	// StateHalfOpen admits a single trial call whose outcome decides the next state.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// Breaker guards one downstream target. It is the one deliberately shared,
// mutated resource on the request path, so all state lives in atomics: a state
// word updated by compare-and-swap, a failure counter, and the trip timestamp.
// Cooldown is a pure time gate evaluated lazily on each Allow; there is no
// background timer.
type Breaker struct {
	name             string
	failureThreshold int32
	cooldown         time.Duration
	now              func() time.Time

	state     atomic.Int32
	failures  atomic.Int32
	trippedAt atomic.Int64 // unix nanos of the last transition to open
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureThreshold sets how many failures within the closed window trip the
// breaker. The default of 1 is an aggressive fail-fast policy: the very first
// downstream fault opens the circuit.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) { b.failureThreshold = int32(n) }
}

// WithCooldown sets the delay before a trial call is admitted after a trip.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) { b.cooldown = d }
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

// New creates a closed Breaker for the named downstream target.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: 1,
		cooldown:         10 * time.Second,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the downstream target this breaker guards.
func (b *Breaker) Name() string { return b.name }

// State returns the current state.
func (b *Breaker) State() State { return State(b.state.Load()) }

// IsOpen reports whether calls are currently short-circuited.
func (b *Breaker) IsOpen() bool { return b.State() != StateClosed }

// Allow reports whether a call may proceed. When the cooldown has elapsed on an
// open breaker, exactly one caller wins the CAS into half-open and carries the
// trial call; concurrent callers keep short-circuiting until the trial resolves.
func (b *Breaker) Allow() bool {
	for {
		switch State(b.state.Load()) {
		case StateClosed:
			return true
		case StateHalfOpen:
			return false
		case StateOpen:
			tripped := time.Unix(0, b.trippedAt.Load())
			if b.now().Sub(tripped) < b.cooldown {
				return false
			}
			if b.state.CompareAndSwap(int32(StateOpen), int32(StateHalfOpen)) {
				return true
			}
			// Lost the race; re-read the state.
		}
	}
}

// RecordSuccess reports a successful call. A half-open trial success closes the
// breaker; returns true when that transition happened.
func (b *Breaker) RecordSuccess() bool {
	switch State(b.state.Load()) {
	case StateHalfOpen:
		if b.state.CompareAndSwap(int32(StateHalfOpen), int32(StateClosed)) {
			b.failures.Store(0)
			return true
		}
	case StateClosed:
		b.failures.Store(0)
	}
	return false
}

// RecordFailure reports a failed call. Returns true when this failure tripped
// the breaker open, either from closed (threshold reached) or from a failed
// half-open trial (fresh cooldown).
func (b *Breaker) RecordFailure() bool {
	switch State(b.state.Load()) {
	case StateHalfOpen:
		return b.trip(StateHalfOpen)
	case StateClosed:
		if b.failures.Add(1) >= b.failureThreshold {
			return b.trip(StateClosed)
		}
	}
	return false
}

// Reset forces the breaker closed and clears counters.
func (b *Breaker) Reset() {
	b.state.Store(int32(StateClosed))
	b.failures.Store(0)
}

func (b *Breaker) trip(from State) bool {
	// Only the CAS winner writes the trip time; a trip that loses the state
	// race must not extend the winner's cooldown.
	if b.state.CompareAndSwap(int32(from), int32(StateOpen)) {
		b.trippedAt.Store(b.now().UnixNano())
		b.failures.Store(0)
		return true
	}
	return false
}
