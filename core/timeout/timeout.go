// Package timeout races an operation against a deadline.
//
// The operation runs in its own goroutine. When the limit expires first the caller
// gets a TimedOut result immediately; the operation is abandoned rather than awaited.
// It receives a context carrying the deadline and may stop early if it honours it.
package timeout

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout marks a result that did not settle within its limit.
var ErrTimeout = errors.New("operation timed out")

// Outcome tags how an operation settled.
type Outcome int

const (
	Succeeded Outcome = iota
	TimedOut
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case TimedOut:
		return "timed_out"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of Do.
type Result[T any] struct {
	Value   T
	Err     error
	Outcome Outcome
}

// Unwrap returns the value and an error; a timeout is reported as an error wrapping ErrTimeout.
func (r Result[T]) Unwrap() (T, error) {
	if r.Outcome == Succeeded {
		return r.Value, nil
	}
	return r.Value, r.Err
}

type settled[T any] struct {
	value T
	err   error
}

// Do runs op bounded by limit. A limit of zero or less means no bound.
// Cancellation of the parent ctx before op settles is reported as Failed with ctx.Err().
func Do[T any](ctx context.Context, limit time.Duration, op func(ctx context.Context) (T, error)) Result[T] {
	opCtx, cancel := ctx, context.CancelFunc(func() {})
	var expired <-chan time.Time
	if limit > 0 {
		opCtx, cancel = context.WithTimeout(ctx, limit)
		timer := time.NewTimer(limit)
		defer timer.Stop()
		expired = timer.C
	}

	// Buffered so an abandoned op can still deliver and exit.
	done := make(chan settled[T], 1)
	go func() {
		defer cancel()
		v, err := op(opCtx)
		done <- settled[T]{value: v, err: err}
	}()

	select {
	case s := <-done:
		if s.err == nil {
			return Result[T]{Value: s.value, Outcome: Succeeded}
		}
		// An op that gave up on its own deadline lost the race with the timer.
		if limit > 0 && ctx.Err() == nil && errors.Is(s.err, context.DeadlineExceeded) {
			return timedOut[T](limit)
		}
		return Result[T]{Value: s.value, Err: s.err, Outcome: Failed}
	case <-expired:
		return timedOut[T](limit)
	case <-ctx.Done():
		return Result[T]{Err: ctx.Err(), Outcome: Failed}
	}
}

func timedOut[T any](limit time.Duration) Result[T] {
	return Result[T]{Err: fmt.Errorf("%w after %s", ErrTimeout, limit), Outcome: TimedOut}
}

// Run is Do for operations without a result value.
func Run(ctx context.Context, limit time.Duration, op func(ctx context.Context) error) Result[struct{}] {
	return Do(ctx, limit, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
}
