package sheet

import (
	"context"
	"errors"
	"testing"
	"time"

	"sukiism/internal/infra"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// instantTimer fires at once and records every wait it was asked for.
type instantTimer struct {
	waits *[]time.Duration
	c     chan time.Time
}

func (t *instantTimer) Start(d time.Duration) {
	*t.waits = append(*t.waits, d)
	t.c = make(chan time.Time, 1)
	t.c <- time.Time{}
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time { return t.c }

func newTestResilient(next Store, cb *infra.CircuitBreaker) (*Resilient, *[]time.Duration) {
	r := NewResilient(next, RetryPolicy{Attempts: 3, BaseDelay: 2 * time.Second}, cb)
	var waits []time.Duration
	r.newTimer = func() backoff.Timer { return &instantTimer{waits: &waits} }
	return r, &waits
}

func TestResilientRetriesRateLimitWithDoublingDelay(t *testing.T) {
	m := NewMemory()
	m.Seed("items", [][]string{{"Code"}, {"MT-0001"}})
	m.FailNext(ErrRateLimited, ErrRateLimited)
	r, waits := newTestResilient(m, nil)

	rows, err := r.ReadAllRows(context.Background(), "items")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 3, m.Calls("ReadAllRows"))
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *waits)
}

func TestResilientGivesUpAfterAttemptCap(t *testing.T) {
	m := NewMemory()
	m.FailNext(ErrRateLimited, ErrRateLimited, ErrRateLimited, ErrRateLimited)
	r, waits := newTestResilient(m, nil)

	_, err := r.ReadAllRows(context.Background(), "items")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 3, m.Calls("ReadAllRows"))
	assert.Len(t, *waits, 2)
}

func TestResilientDoesNotRetryOtherErrors(t *testing.T) {
	m := NewMemory()
	m.FailNext(ErrUnavailable)
	r, waits := newTestResilient(m, nil)

	err := r.WriteCells(context.Background(), "items", "A2", [][]string{{"x"}})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 1, m.Calls("WriteCells"))
	assert.Empty(t, *waits)
}

func TestResilientStopsWhenContextCancelled(t *testing.T) {
	m := NewMemory()
	m.FailNext(ErrRateLimited)
	r := NewResilient(m, RetryPolicy{Attempts: 3, BaseDelay: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.ReadAllRows(ctx, "items")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, m.Calls("ReadAllRows"))
}

func TestResilientCircuitOpensOnTransportFailures(t *testing.T) {
	m := NewMemory()
	down := errors.New("connection reset")
	m.FailNext(down, down)
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		IsFailure:        IsTransportFailure,
	})
	r, _ := newTestResilient(m, cb)
	ctx := context.Background()

	_, err := r.ReadAllRows(ctx, "items")
	assert.ErrorIs(t, err, down)
	_, err = r.ReadAllRows(ctx, "items")
	assert.ErrorIs(t, err, down)
	assert.Equal(t, infra.CBOpen, cb.State())

	_, err = r.ReadAllRows(ctx, "items")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
	assert.Equal(t, 2, m.Calls("ReadAllRows"), "open circuit must not reach the store")
}

func TestResilientRateLimitDoesNotTripCircuit(t *testing.T) {
	m := NewMemory()
	m.FailNext(ErrRateLimited, ErrRateLimited, ErrRateLimited)
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{FailureThreshold: 1, IsFailure: IsTransportFailure})
	r, _ := newTestResilient(m, cb)

	_, err := r.ReadAllRows(context.Background(), "items")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, infra.CBClosed, cb.State())
}
