package membership

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"profiling/internal/platform/metrics"
	"profiling/pkg/platform/circuit"
	"profiling/pkg/platform/sentinel"
)

// scriptedClient resolves each lookup through a scripted outcome and counts
// calls, so tests can assert the breaker stopped contacting the downstream.
type scriptedClient struct {
	calls   atomic.Int32
	outcome func(membershipID int) error
}

func (c *scriptedClient) Lookup(_ context.Context, _ string, membershipID int) (Membership, error) {
	c.calls.Add(1)
	if err := c.outcome(membershipID); err != nil {
		return Membership{}, err
	}
	return Membership{ID: membershipID, Name: "Test", Surname: "Member"}, nil
}

func newTestGateway(client Client, opts ...circuit.Option) *Gateway {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	m := metrics.NewWith(prometheus.NewRegistry())
	return NewGateway(client, circuit.New("membership-test", opts...), logger, m)
}

func TestGateway_Found(t *testing.T) {
	client := &scriptedClient{outcome: func(int) error { return nil }}
	g := newTestGateway(client)

	res := g.Check(context.Background(), "token", 1)
	assert.Equal(t, StatusFound, res.Status)
	assert.Equal(t, 1, res.Membership.ID)
}

func TestGateway_NotFoundIsNotUnavailable(t *testing.T) {
	client := &scriptedClient{outcome: func(int) error { return sentinel.ErrNotFound }}
	g := newTestGateway(client)

	res := g.Check(context.Background(), "token", 2)
	assert.Equal(t, StatusNotFound, res.Status)

	// A definitive not-found is a successful round trip: the breaker stays
	// closed and the next call still reaches the downstream.
	res = g.Check(context.Background(), "token", 2)
	assert.Equal(t, StatusNotFound, res.Status)
	assert.Equal(t, int32(2), client.calls.Load())
}

func TestGateway_UnavailableIsNotNotFound(t *testing.T) {
	client := &scriptedClient{outcome: func(int) error {
		return fmt.Errorf("dial tcp: %w", sentinel.ErrUnavailable)
	}}
	g := newTestGateway(client)

	res := g.Check(context.Background(), "token", 3)
	assert.Equal(t, StatusUnavailable, res.Status)
}

func TestGateway_FirstFaultTripsBreaker(t *testing.T) {
	client := &scriptedClient{outcome: func(int) error {
		return fmt.Errorf("dial tcp: %w", sentinel.ErrUnavailable)
	}}
	g := newTestGateway(client)

	res := g.Check(context.Background(), "token", 3)
	assert.Equal(t, StatusUnavailable, res.Status)
	assert.Equal(t, int32(1), client.calls.Load())

	// During cooldown every check short-circuits without touching the downstream.
	for i := 0; i < 5; i++ {
		res = g.Check(context.Background(), "token", 3)
		assert.Equal(t, StatusUnavailable, res.Status)
	}
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestGateway_TrialCallAfterCooldownRecovers(t *testing.T) {
	failing := atomic.Bool{}
	failing.Store(true)
	client := &scriptedClient{outcome: func(int) error {
		if failing.Load() {
			return fmt.Errorf("dial tcp: %w", sentinel.ErrUnavailable)
		}
		return nil
	}}

	clock := struct {
		now atomic.Int64
	}{}
	clock.now.Store(time.Unix(1000, 0).UnixNano())
	nowFn := func() time.Time { return time.Unix(0, clock.now.Load()) }

	g := newTestGateway(client, circuit.WithCooldown(10*time.Second), circuit.WithClock(nowFn))

	// Trip.
	assert.Equal(t, StatusUnavailable, g.Check(context.Background(), "token", 3).Status)

	// Downstream recovers, cooldown elapses; the trial call succeeds and closes.
	failing.Store(false)
	clock.now.Add(int64(11 * time.Second))

	assert.Equal(t, StatusFound, g.Check(context.Background(), "token", 3).Status)
	assert.Equal(t, StatusFound, g.Check(context.Background(), "token", 3).Status)
	assert.Equal(t, int32(3), client.calls.Load())
}

func TestGateway_FailedTrialReopens(t *testing.T) {
	client := &scriptedClient{outcome: func(int) error {
		return fmt.Errorf("dial tcp: %w", sentinel.ErrUnavailable)
	}}

	clock := struct {
		now atomic.Int64
	}{}
	clock.now.Store(time.Unix(1000, 0).UnixNano())
	nowFn := func() time.Time { return time.Unix(0, clock.now.Load()) }

	g := newTestGateway(client, circuit.WithCooldown(10*time.Second), circuit.WithClock(nowFn))

	assert.Equal(t, StatusUnavailable, g.Check(context.Background(), "token", 3).Status)
	clock.now.Add(int64(11 * time.Second))

	// Trial call reaches the downstream, fails, re-opens.
	assert.Equal(t, StatusUnavailable, g.Check(context.Background(), "token", 3).Status)
	assert.Equal(t, int32(2), client.calls.Load())

	// Back inside a fresh cooldown: short-circuit again.
	assert.Equal(t, StatusUnavailable, g.Check(context.Background(), "token", 3).Status)
	assert.Equal(t, int32(2), client.calls.Load())
}

func TestGateway_CancellationAbandonsLookup(t *testing.T) {
	client := MockClient{
		Latency: 5 * time.Second,
		Known:   map[int]Membership{1: {ID: 1}},
	}
	g := newTestGateway(client)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := g.Check(ctx, "token", 1)
	assert.Equal(t, StatusUnavailable, res.Status)
	assert.Less(t, time.Since(start), time.Second, "abandoned lookup must not run to the full latency")
}

func TestGateway_PanickingTrialReopensBreaker(t *testing.T) {
	var panicking atomic.Bool
	client := &scriptedClient{outcome: func(int) error {
		if panicking.Load() {
			panic("lookup exploded")
		}
		return fmt.Errorf("dial tcp: %w", sentinel.ErrUnavailable)
	}}

	clock := struct {
		now atomic.Int64
	}{}
	clock.now.Store(time.Unix(1000, 0).UnixNano())
	nowFn := func() time.Time { return time.Unix(0, clock.now.Load()) }

	g := newTestGateway(client, circuit.WithCooldown(10*time.Second), circuit.WithClock(nowFn))

	assert.Equal(t, StatusUnavailable, g.Check(context.Background(), "token", 3).Status)
	panicking.Store(true)
	clock.now.Add(int64(11 * time.Second))

	assert.Panics(t, func() { g.Check(context.Background(), "token", 3) })

	// The panicking trial re-opened the breaker instead of wedging it
	// half-open: the next check short-circuits without a downstream call.
	assert.Equal(t, StatusUnavailable, g.Check(context.Background(), "token", 3).Status)
	assert.Equal(t, int32(2), client.calls.Load())
}

func TestHTTPClient_CancellationAbandonsRequest(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client := NewHTTPClient(srv.URL+"/membership", time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Lookup(ctx, "token", 1)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.Less(t, time.Since(start), time.Second, "cancelled request must return promptly")
}

func TestMockClient_Lookup(t *testing.T) {
	client := MockClient{Known: map[int]Membership{1: {ID: 1, Name: "Phillip", Surname: "Kruger"}}}

	m, err := client.Lookup(context.Background(), "token", 1)
	assert.NoError(t, err)
	assert.Equal(t, "Phillip", m.Name)

	_, err = client.Lookup(context.Background(), "token", 2)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
