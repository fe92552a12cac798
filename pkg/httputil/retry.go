package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// Retry defaults: 3 attempts, starting at one second and doubling, never
// waiting longer than MaxDelay between attempts.
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
	MaxDelay        = 30 * time.Second
)

// RetryableError marks a transient failure. After, when positive, is the
// wait the server asked for (a Retry-After header); it replaces the backoff
// delay for the next attempt.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a RetryableError. It returns nil for a nil err.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// RetryAfter wraps err as a RetryableError carrying the server's requested
// wait. It returns nil for a nil err.
func RetryAfter(err error, after time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, After: after}
}

// IsRetryable reports whether err or any error it wraps is a RetryableError.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// ParseRetryAfter reads a Retry-After header value, either delay-seconds or
// an HTTP date relative to now. It returns 0 for empty, invalid or past
// values.
func ParseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return max(time.Duration(secs)*time.Second, 0)
	}
	if t, err := http.ParseTime(v); err == nil {
		return max(t.Sub(now), 0)
	}
	return 0
}

// Retry calls fn up to attempts times. Only errors wrapped as
// [RetryableError] are retried; any other error is returned at once. Between
// attempts it waits the error's After hint if set, otherwise delay doubled
// per failure, capped at [MaxDelay]. If ctx ends while waiting, ctx.Err() is
// returned; when attempts run out, the last error.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) || attempt >= attempts {
			return err
		}
		if err := sleep(ctx, wait(re, delay, attempt)); err != nil {
			return err
		}
	}
}

// wait returns the pause after the given failed attempt (1-based).
func wait(re *RetryableError, base time.Duration, attempt int) time.Duration {
	if re.After > 0 {
		return min(re.After, MaxDelay)
	}
	d := base
	for i := 1; i < attempt && d < MaxDelay; i++ {
		d *= 2
	}
	return min(d, MaxDelay)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryWithBackoff calls [Retry] with [DefaultAttempts] and [DefaultDelay].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, DefaultAttempts, DefaultDelay, fn)
}
