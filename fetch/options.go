package fetch

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultRetries    = 10
	DefaultRetryDelay = 500 * time.Millisecond
	DefaultFactor     = 2.0
	MinFactor         = 1.0
)

// Option configures a Client
type Option func(*Client)

// WithRetries sets how many times a failed attempt is retried. Zero means a
// single attempt; negative values are ignored.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithRetryDelay sets the base backoff delay
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.retryDelay = d
		}
	}
}

// WithFactor sets the exponential backoff multiplier. Values below MinFactor
// are ignored so the delay never shrinks between attempts.
func WithFactor(f float64) Option {
	return func(c *Client) {
		if f >= MinFactor {
			c.factor = f
		}
	}
}

// RequestEditorFn is applied to every attempt, including a replay after refresh
type RequestEditorFn func(r *http.Request) error

func WithRequestEditor(fn RequestEditorFn) Option {
	return func(c *Client) {
		c.editors = append(c.editors, fn)
	}
}

// WithRefreshFailureHook is called with the refresh error before the
// original 401/403 response is handed back
func WithRefreshFailureHook(fn func(error)) Option {
	return func(c *Client) {
		c.onRefreshFailure = fn
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

func WithSleeper(fn Sleeper) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
