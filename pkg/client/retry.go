package client

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// RetryPolicy decides whether a request should be retried and how long to
// wait first.
type RetryPolicy interface {
	ShouldRetry(resp *http.Response, err error) (bool, time.Duration)
}

// RetryPolicyFunc adapts a function to the RetryPolicy interface.
type RetryPolicyFunc func(resp *http.Response, err error) (bool, time.Duration)

// ShouldRetry implements the RetryPolicy interface.
func (f RetryPolicyFunc) ShouldRetry(resp *http.Response, err error) (bool, time.Duration) {
	return f(resp, err)
}

// maxRetryAfter caps how long a 429 may make a request wait.
const maxRetryAfter = time.Minute

// DefaultRetryPolicy retries network errors and server errors with a linear
// backoff, and rate-limited responses after their Retry-After delay.
var DefaultRetryPolicy RetryPolicy = RetryPolicyFunc(func(resp *http.Response, err error) (bool, time.Duration) {
	switch {
	case err != nil:
		return true, 500 * time.Millisecond
	case resp.StatusCode == http.StatusTooManyRequests:
		d := retryAfter(resp.Header.Get("Retry-After"))
		if d > maxRetryAfter {
			return false, 0
		}
		return true, d
	case resp.StatusCode >= 500:
		return true, 500 * time.Millisecond
	default:
		return false, 0
	}
})

// retryAfter reads a delay-seconds or HTTP-date Retry-After value.
func retryAfter(v string) time.Duration {
	if v == "" {
		return time.Second
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
		return 0
	}
	return time.Second
}

// buildError marks failures that happened before anything was sent; they
// are never retried.
type buildError struct{ err error }

func (e *buildError) Error() string { return e.err.Error() }
func (e *buildError) Unwrap() error { return e.err }

func unwrapBuildError(err error) error {
	var be *buildError
	if errors.As(err, &be) {
		return be.err
	}
	return err
}

func (c *Client) retry(ctx context.Context, fn func() (*http.Response, error)) (*http.Response, error) {
	policy := c.retryPolicy
	if policy == nil {
		return fn()
	}
	var attempt int
	for {
		resp, err := fn()
		attempt++

		var be *buildError
		if errors.As(err, &be) || attempt >= c.maxAttempts || ctx.Err() != nil {
			return resp, err
		}
		retry, delay := policy.ShouldRetry(resp, err)
		if !retry {
			return resp, err
		}
		if resp != nil {
			resp.Body.Close()
		}
		c.log().Debug("retrying request", "attempt", attempt, "delay", delay*time.Duration(attempt), "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay * time.Duration(attempt)):
		}
	}
}
