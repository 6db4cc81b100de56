// Package fetch issues HTTP requests that recover from transient server
// failures and from an expired session.
//
// Each call to Client.Do makes at most retries+1 attempts, plus one replay
// after a successful session refresh. A 5xx status or a network failure is
// retried after retryDelay*factor^attempt. A 401 or 403 triggers a single
// refresh per call; any other non-2xx status is returned untouched.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries an id shared by every attempt of one call
const RequestIDHeader = "X-Request-ID"

// Doer sends a single HTTP request. *http.Client satisfies it; give it a
// cookie jar so credentials are included on every attempt.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Refresher renews the session after the server rejects it
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefresherFunc adapts a function to Refresher
type RefresherFunc func(ctx context.Context) error

func (f RefresherFunc) Refresh(ctx context.Context) error {
	return f(ctx)
}

// Request is replayable: the body is held in memory and re-sent on each attempt
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte

	// OnRefreshFailure, when set, is told about a failed refresh during this
	// call only. The client-wide hook still runs.
	OnRefreshFailure func(error)
}

// NewRequest builds a Request with an empty header set
func NewRequest(method, url string, body []byte) *Request {
	return &Request{
		Method: method,
		URL:    url,
		Header: make(http.Header),
		Body:   body,
	}
}

type Client struct {
	doer       Doer
	refresher  Refresher
	retries    int
	retryDelay time.Duration
	factor     float64

	editors          []RequestEditorFn
	onRefreshFailure func(error)
	sleep            Sleeper
	logger           zerolog.Logger
}

// New wraps doer. With a nil refresher a 401/403 is returned to the caller
// like any other client error.
func New(doer Doer, refresher Refresher, opts ...Option) *Client {
	c := &Client{
		doer:       doer,
		refresher:  refresher,
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
		factor:     DefaultFactor,
		sleep:      sleepContext,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxBackoff is the longest wait Backoff returns
const MaxBackoff = time.Duration(math.MaxInt64)

// Backoff returns the wait after a failure at the given attempt index. The
// growth saturates at MaxBackoff instead of overflowing.
func (c *Client) Backoff(attempt int) time.Duration {
	d := float64(c.retryDelay) * math.Pow(c.factor, float64(attempt))
	if math.IsNaN(d) || d >= float64(MaxBackoff) {
		return MaxBackoff
	}
	return time.Duration(d)
}

// Do runs the retry loop for req. On return either the response is non-nil
// (any status that was not retried away) or err is non-nil.
func (c *Client) Do(ctx context.Context, req *Request) (*http.Response, error) {
	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	logger := c.logger.With().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("url", req.URL).
		Logger()

	attempt := 0
	refreshed := false

	for {
		var failure error

		resp, err := c.send(ctx, req, requestID)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			var buildErr *requestBuildError
			if errors.As(err, &buildErr) {
				return nil, buildErr.err
			}
			failure = err

		case isSuccess(resp.StatusCode):
			return resp, nil

		case isAuthFailure(resp.StatusCode) && !refreshed && c.refresher != nil:
			refreshed = true
			rerr := c.refresher.Refresh(ctx)
			if rerr == nil {
				discard(resp)
				logger.Debug().Int("status", resp.StatusCode).Msg("session refreshed, replaying request")
				continue
			}
			logger.Warn().Err(rerr).Int("status", resp.StatusCode).Msg("session refresh failed")
			if c.onRefreshFailure != nil {
				c.onRefreshFailure(rerr)
			}
			if req.OnRefreshFailure != nil {
				req.OnRefreshFailure(rerr)
			}
			return resp, nil

		case resp.StatusCode >= http.StatusInternalServerError:
			discard(resp)
			failure = &StatusError{StatusCode: resp.StatusCode}

		default:
			return resp, nil
		}

		if attempt >= c.retries {
			logger.Error().Err(failure).Int("attempts", attempt+1).Msg("retries exhausted")
			return nil, &RetryExhaustedError{Attempts: attempt + 1, Last: failure}
		}

		delay := c.Backoff(attempt)
		logger.Debug().Err(failure).Int("attempt", attempt).Dur("delay", delay).Msg("retrying")
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
		attempt++
	}
}

func (c *Client) send(ctx context.Context, req *Request, requestID string) (*http.Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, &requestBuildError{err: fmt.Errorf("failed to create request: %w", err)}
	}
	for k, v := range req.Header {
		httpReq.Header[k] = append([]string(nil), v...)
	}
	httpReq.Header.Set(RequestIDHeader, requestID)

	for _, edit := range c.editors {
		if err := edit(httpReq); err != nil {
			return nil, &requestBuildError{err: fmt.Errorf("request editor: %w", err)}
		}
	}
	return c.doer.Do(httpReq)
}

// requestBuildError marks failures that happen before anything is sent.
// Retrying them cannot help.
type requestBuildError struct {
	err error
}

func (e *requestBuildError) Error() string {
	return e.err.Error()
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}

func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func discard(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
