package retry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultAttempts is the number of calls made before giving up.
	DefaultAttempts = 5
	// DefaultDelay is the fixed pause between attempts.
	DefaultDelay = 5 * time.Second
)

type options struct {
	attempts int
	delay    time.Duration
	logger   *zap.Logger
	name     string
}

// Option configures a retry call.
type Option func(*options)

// WithAttempts sets the total number of attempts (values below 1 mean 1).
func WithAttempts(n int) Option {
	return func(o *options) { o.attempts = n }
}

// WithDelay sets the fixed delay between attempts.
func WithDelay(d time.Duration) Option {
	return func(o *options) { o.delay = d }
}

// WithLogger sets the logger used to report failed attempts.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithName labels the operation in attempt logs.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// Do calls op until it succeeds or the attempts are exhausted.
// Every failure is retried identically after a fixed delay; there is no backoff
// growth and no error classification. The last error is returned unchanged.
// If ctx is cancelled while waiting, ctx.Err() is returned.
func Do(ctx context.Context, op func(ctx context.Context) error, opts ...Option) error {
	_, err := Value(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, opts...)
	return err
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, op func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	o := options{
		attempts: DefaultAttempts,
		delay:    DefaultDelay,
		logger:   zap.NewNop(),
		name:     "operation",
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.attempts < 1 {
		o.attempts = 1
	}

	var (
		result T
		err    error
	)
	for attempt := 1; attempt <= o.attempts; attempt++ {
		result, err = op(ctx)
		if err == nil {
			return result, nil
		}

		o.logger.Warn("Attempt failed",
			zap.String("operation", o.name),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", o.attempts),
			zap.Error(err),
		)

		if attempt == o.attempts {
			break
		}

		timer := time.NewTimer(o.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			var zero T
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return result, err
}
