package circuit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests move through the cooldown window without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestBreaker_InitialState(t *testing.T) {
	b := New("test")
	assert.False(t, b.IsOpen())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "test", b.Name())
	assert.True(t, b.Allow())
}

func TestBreaker_FirstFailureTripsByDefault(t *testing.T) {
	b := New("test")

	opened := b.RecordFailure()
	assert.True(t, opened)
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := New("test", WithFailureThreshold(3))

	// First two failures don't open
	assert.False(t, b.RecordFailure())
	assert.False(t, b.RecordFailure())
	assert.False(t, b.IsOpen())

	// Third failure opens the circuit
	assert.True(t, b.RecordFailure())
	assert.True(t, b.IsOpen())
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := New("test", WithFailureThreshold(3))

	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.IsOpen())

	b.RecordSuccess()

	// Two more failures don't open (count was reset)
	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.IsOpen())

	b.RecordFailure()
	assert.True(t, b.IsOpen())
}

func TestBreaker_CooldownGatesTrialCall(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	b := New("test", WithCooldown(10*time.Second), WithClock(clock.Now))

	b.RecordFailure()
	assert.False(t, b.Allow(), "open breaker short-circuits")

	clock.Advance(9 * time.Second)
	assert.False(t, b.Allow(), "still inside cooldown")

	clock.Advance(2 * time.Second)
	assert.True(t, b.Allow(), "cooldown elapsed, trial admitted")
	assert.Equal(t, StateHalfOpen, b.State())
	assert.False(t, b.Allow(), "only one trial at a time")
}

func TestBreaker_TrialSuccessCloses(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	b := New("test", WithClock(clock.Now))

	b.RecordFailure()
	clock.Advance(11 * time.Second)
	assert.True(t, b.Allow())

	closed := b.RecordSuccess()
	assert.True(t, closed)
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreaker_TrialFailureReopensWithFreshCooldown(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	b := New("test", WithClock(clock.Now))

	b.RecordFailure()
	clock.Advance(11 * time.Second)
	assert.True(t, b.Allow())

	opened := b.RecordFailure()
	assert.True(t, opened)
	assert.Equal(t, StateOpen, b.State())

	clock.Advance(5 * time.Second)
	assert.False(t, b.Allow(), "fresh cooldown after failed trial")

	clock.Advance(6 * time.Second)
	assert.True(t, b.Allow())
}

func TestBreaker_LosingTripDoesNotExtendCooldown(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	b := New("test", WithCooldown(10*time.Second), WithClock(clock.Now))

	b.RecordFailure()

	// A trip that arrives while the breaker is already open loses the state
	// race and must not touch the winner's trip time.
	clock.Advance(5 * time.Second)
	assert.False(t, b.trip(StateClosed))

	clock.Advance(6 * time.Second)
	assert.True(t, b.Allow(), "cooldown measured from the winning trip")
}

func TestBreaker_Reset(t *testing.T) {
	b := New("test")

	b.RecordFailure()
	assert.True(t, b.IsOpen())

	b.Reset()
	assert.False(t, b.IsOpen())
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_ConcurrentTrialAdmitsExactlyOne(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	b := New("test", WithClock(clock.Now))

	b.RecordFailure()
	clock.Advance(11 * time.Second)

	const goroutines = 50
	var admitted atomic.Int32
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if b.Allow() {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), admitted.Load(), "exactly one trial call admitted")
	assert.Equal(t, StateHalfOpen, b.State())
}
