// Package wait provides the bounded poll used around every DOM lookup.
package wait

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	DefaultTimeout  = 4 * time.Second
	DefaultInterval = 100 * time.Millisecond
)

// ErrTimeout is matched by every *TimeoutError.
var ErrTimeout = errors.New("timed out")

// Options bounds a poll. Zero values fall back to the defaults.
type Options struct {
	Timeout  time.Duration
	Interval time.Duration
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

func (o Options) interval() time.Duration {
	if o.Interval <= 0 {
		return DefaultInterval
	}
	return o.Interval
}

// TimeoutError reports what was being waited for and the last reason the
// condition was not met.
type TimeoutError struct {
	What    string
	Elapsed time.Duration
	Last    error
}

func (e *TimeoutError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("%s: timed out after %s: %v", e.What, e.Elapsed.Round(time.Millisecond), e.Last)
	}
	return fmt.Sprintf("%s: timed out after %s", e.What, e.Elapsed.Round(time.Millisecond))
}

// Is makes errors.Is(err, ErrTimeout) true.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

func (e *TimeoutError) Unwrap() error {
	return e.Last
}

// Retry marks a condition error as transient: polling continues and the
// error is reported if the window elapses.
func Retry(err error) error {
	if err == nil {
		return nil
	}
	return &retryable{err: err}
}

type retryable struct{ err error }

func (r *retryable) Error() string { return r.err.Error() }
func (r *retryable) Unwrap() error { return r.err }

// Condition reports done, or an error. Errors wrapped with Retry keep the
// poll going; any other error stops it immediately.
type Condition func(ctx context.Context) (bool, error)

// Until evaluates cond now and then every interval until it is done, fails,
// the context ends or the timeout elapses.
func Until(ctx context.Context, what string, opts Options, cond Condition) error {
	start := time.Now()
	pollCtx, cancel := context.WithTimeout(ctx, opts.timeout())
	defer cancel()

	ticker := time.NewTicker(opts.interval())
	defer ticker.Stop()

	var last error
	for {
		done, err := cond(pollCtx)
		if err != nil {
			var r *retryable
			if errors.As(err, &r) {
				last = r.err
			} else if pollCtx.Err() != nil && ctx.Err() == nil {
				// the lookup itself was cut off by the poll window
				return &TimeoutError{What: what, Elapsed: time.Since(start), Last: last}
			} else {
				return err
			}
		}
		if done {
			return nil
		}

		select {
		case <-pollCtx.Done():
			if ctx.Err() != nil {
				return fmt.Errorf("%s: %w", what, ctx.Err())
			}
			return &TimeoutError{What: what, Elapsed: time.Since(start), Last: last}
		case <-ticker.C:
		}
	}
}
