// Package retry runs operations with bounded attempts and backoff.
package retry

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Backoff returns the wait after the given 1-based attempt failed.
type Backoff func(attempt int) time.Duration

// Linear waits attempt × base.
func Linear(base time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * base
	}
}

// Exponential waits base × 2^(attempt-1), capped at max.
func Exponential(base, max time.Duration) Backoff {
	return func(attempt int) time.Duration {
		d := base
		for i := 1; i < attempt; i++ {
			d *= 2
			if d >= max {
				return max
			}
		}
		return d
	}
}

// Permanent marks an error that must not be retried.
type Permanent struct {
	Err error
}

func (p *Permanent) Error() string { return p.Err.Error() }
func (p *Permanent) Unwrap() error { return p.Err }

// Stop wraps err so Do returns it immediately.
func Stop(err error) error {
	if err == nil {
		return nil
	}
	return &Permanent{Err: err}
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real-clock Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Policy configures Do.
type Policy struct {
	Attempts int
	Backoff  Backoff
	Sleep    Sleeper
	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// Do calls fn until it succeeds, returns a Permanent error, or Attempts are
// used up. It returns the number of attempts made and the last error, with
// Permanent wrappers removed.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) error) (int, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx, attempt)
		if err == nil {
			return attempt, nil
		}

		var perm *Permanent
		if errors.As(err, &perm) {
			return attempt, perm.Err
		}
		if attempt == attempts {
			return attempt, err
		}

		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}
		if serr := sleep(ctx, wait); serr != nil {
			return attempt, err
		}
	}
	return attempts, err
}

var retryableMarkers = []string{
	"network",
	"timeout",
	"connection reset",
	"connection refused",
	"broken pipe",
	"eof",
	"chunk",
	"temporarily unavailable",
}

// IsRetryable classifies transient network and chunk-load failures by message.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range retryableMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
