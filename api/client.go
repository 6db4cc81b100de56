// Package api is the typed client for the Tripmate HTTP API. Every call goes
// through the resilient fetch client and carries the session's credentials.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/jrsteele09/tripmate-client/fetch"
	tmerrors "github.com/jrsteele09/tripmate-client/internal/errors"
	"github.com/jrsteele09/tripmate-client/sessions"
	"github.com/rs/zerolog"
)

type clientOptions struct {
	httpClient   *http.Client
	fetchOptions []fetch.Option
	logger       zerolog.Logger
}

type Option func(*clientOptions)

// WithHTTPClient uses hc for transport. A cookie jar is added to a copy of
// hc when it has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = hc
	}
}

// WithFetchOptions tunes retries and backoff
func WithFetchOptions(opts ...fetch.Option) Option {
	return func(o *clientOptions) {
		o.fetchOptions = append(o.fetchOptions, opts...)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// Client talks to one API origin on behalf of one session
type Client struct {
	baseURL string
	http    *http.Client
	session *sessions.Session
	logger  zerolog.Logger

	// authed refreshes on 401/403; anon never refreshes and serves login and logout
	authed *fetch.Client
	anon   *fetch.Client
}

func New(baseURL string, session *sessions.Session, opts ...Option) (*Client, error) {
	o := clientOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	hc := &http.Client{}
	if o.httpClient != nil {
		cp := *o.httpClient
		hc = &cp
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("[api New] failed to create cookie jar: %w", err)
		}
		hc.Jar = jar
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		session: session,
		logger:  o.logger,
	}

	common := append([]fetch.Option{fetch.WithLogger(o.logger)}, o.fetchOptions...)
	authedOpts := append(append([]fetch.Option{}, common...),
		fetch.WithRequestEditor(session.Authorize),
		fetch.WithRefreshFailureHook(func(error) { session.Expire() }),
	)
	c.authed = fetch.New(hc, fetch.RefresherFunc(c.Refresh), authedOpts...)
	anonOpts := append(append([]fetch.Option{}, common...), fetch.WithRequestEditor(session.Authorize))
	c.anon = fetch.New(hc, nil, anonOpts...)

	return c, nil
}

func (c *Client) Session() *sessions.Session {
	return c.session
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends in as JSON (when non-nil) and decodes a 2xx body into out (when
// non-nil). Non-2xx results come back as *HTTPError.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	return c.do(ctx, c.authed, method, path, in, out)
}

func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPost, path, in, out)
}

// Raw runs a request through the resilient client and hands back the
// response untouched. The caller closes the body.
func (c *Client) Raw(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	req := fetch.NewRequest(method, c.url(path), body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.authed.Do(ctx, req)
}

func (c *Client) do(ctx context.Context, fc *fetch.Client, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	req := fetch.NewRequest(method, c.url(path), body)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	refreshFailed := false
	req.OnRefreshFailure = func(error) { refreshFailed = true }

	resp, err := fc.Do(ctx, req)
	if err != nil {
		return tmerrors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := errorFromResponse(resp)
		httpErr.RefreshFailed = refreshFailed
		return httpErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("%w: %s %s: %v", tmerrors.ErrBadResponse, method, path, err)
	}
	return nil
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}
