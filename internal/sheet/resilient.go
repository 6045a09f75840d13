package sheet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sukiism/internal/infra"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// RetryPolicy bounds how rate-limited calls are retried.
type RetryPolicy struct {
	Attempts  int           // total tries including the first (default 3)
	BaseDelay time.Duration // wait before the 2nd try; doubles each time (default 2s)
}

// DefaultRetryPolicy matches the spreadsheet API quota guidance: three tries,
// waiting 2s then 4s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, BaseDelay: 2 * time.Second}
}

// Resilient decorates a Store with rate-limit retries and a circuit breaker.
// Only ErrRateLimited is retried; everything else is returned at once.
type Resilient struct {
	next     Store
	policy   RetryPolicy
	cb       *infra.CircuitBreaker
	newTimer func() backoff.Timer // nil timer means real time
}

// NewResilient wraps next. cb may be nil.
func NewResilient(next Store, policy RetryPolicy, cb *infra.CircuitBreaker) *Resilient {
	if policy.Attempts <= 0 {
		policy.Attempts = 3
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = 2 * time.Second
	}
	return &Resilient{
		next:     next,
		policy:   policy,
		cb:       cb,
		newTimer: func() backoff.Timer { return nil },
	}
}

// backOff waits BaseDelay, then doubles, without jitter, for at most
// Attempts-1 retries.
func (r *Resilient) backOff(ctx context.Context) backoff.BackOff {
	exp := &backoff.ExponentialBackOff{
		InitialInterval:     r.policy.BaseDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         r.policy.BaseDelay << (r.policy.Attempts - 1),
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(r.policy.Attempts-1)), ctx)
}

func (r *Resilient) do(ctx context.Context, op, table string, fn func() error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := r.call(fn)
		if err != nil && !errors.Is(err, ErrRateLimited) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(_ error, wait time.Duration) {
		log.Warn().
			Str("op", op).
			Str("table", table).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("sheet: rate limited, backing off")
	}
	return backoff.RetryNotifyWithTimer(operation, r.backOff(ctx), notify, r.newTimer())
}

func (r *Resilient) call(fn func() error) error {
	if r.cb == nil {
		return fn()
	}
	err := r.cb.Execute(fn)
	if errors.Is(err, infra.ErrCircuitOpen) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

func (r *Resilient) ReadAllRows(ctx context.Context, table string) ([][]string, error) {
	var rows [][]string
	err := r.do(ctx, "ReadAllRows", table, func() error {
		var err error
		rows, err = r.next.ReadAllRows(ctx, table)
		return err
	})
	return rows, err
}

func (r *Resilient) AppendRow(ctx context.Context, table string, row []string) (int, error) {
	var n int
	err := r.do(ctx, "AppendRow", table, func() error {
		var err error
		n, err = r.next.AppendRow(ctx, table, row)
		return err
	})
	return n, err
}

func (r *Resilient) WriteCells(ctx context.Context, table, rangeRef string, values [][]string) error {
	return r.do(ctx, "WriteCells", table, func() error {
		return r.next.WriteCells(ctx, table, rangeRef, values)
	})
}

func (r *Resilient) ReadCell(ctx context.Context, table string, row, col int) (string, error) {
	var v string
	err := r.do(ctx, "ReadCell", table, func() error {
		var err error
		v, err = r.next.ReadCell(ctx, table, row, col)
		return err
	})
	return v, err
}

func (r *Resilient) DeleteRow(ctx context.Context, table string, row int) error {
	return r.do(ctx, "DeleteRow", table, func() error {
		return r.next.DeleteRow(ctx, table, row)
	})
}

func (r *Resilient) EnsureHeaders(ctx context.Context, table string, headers []string) error {
	return r.do(ctx, "EnsureHeaders", table, func() error {
		return r.next.EnsureHeaders(ctx, table, headers)
	})
}
