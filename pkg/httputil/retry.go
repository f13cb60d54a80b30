package httputil

import (
	"context"
	"errors"
	"net/http"
	"time"

	errs "github.com/matzehuels/layerscape/pkg/errors"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses) with this type
// so that [Retry] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry executes fn up to attempts times with exponential backoff.
// It only retries errors wrapped with [RetryableError]; other errors are
// returned immediately. The delay doubles after each failed attempt.
// Returns the last error if all attempts fail, or a TIMEOUT error if ctx
// ends first.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return errs.Wrap(errs.ErrCodeTimeout, ctx.Err(), "gave up after %d attempts", i+1)
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// RetryWithBackoff is a convenience wrapper around [Retry] with sensible
// defaults: 3 attempts with 1 second initial delay (doubling each retry).
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}

// IsRetryable reports whether err is marked for retry.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// CheckStatus classifies an HTTP status code. 2xx is success; 404 is
// NOT_FOUND; 429 and 5xx are retryable; everything else is a plain
// NETWORK_ERROR.
func CheckStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errs.New(errs.ErrCodeNotFound, "status %d", code)
	case code == http.StatusTooManyRequests:
		return &RetryableError{Err: errs.New(errs.ErrCodeRateLimited, "status %d", code)}
	case code >= 500:
		return &RetryableError{Err: errs.New(errs.ErrCodeNetwork, "status %d", code)}
	default:
		return errs.New(errs.ErrCodeNetwork, "status %d", code)
	}
}
