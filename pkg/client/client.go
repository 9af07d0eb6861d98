package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fastjson"
)

// Middleware manipulates an outgoing *http.Request before it is executed.
// The context is provided for cancellation and for auth implementations
// that may need to refresh a token first.
type Middleware func(context.Context, *http.Request) error

// ClientOption configures the Client.
type ClientOption func(*Client)

// Client talks to the activity API.
type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	middleware  []Middleware
	retryPolicy RetryPolicy
	maxAttempts int
	logger      *slog.Logger
	parsers     fastjson.ParserPool
}

// -----------------------------------------------------------------------------
// Client options
// -----------------------------------------------------------------------------

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithMiddleware registers one or more request-middleware functions.
func WithMiddleware(mw ...Middleware) ClientOption {
	return func(c *Client) {
		for _, m := range mw {
			if m != nil {
				c.middleware = append(c.middleware, m)
			}
		}
	}
}

// WithRetryPolicy replaces DefaultRetryPolicy. A nil policy disables retries.
func WithRetryPolicy(policy RetryPolicy) ClientOption {
	return func(c *Client) { c.retryPolicy = policy }
}

// WithMaxAttempts bounds how many times a single request is sent.
func WithMaxAttempts(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithLogger registers a logger for request lifecycle events.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client rooted at baseURL, e.g.
// https://www.strava.com/api/v3.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("invalid base URL %q: must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if u.RawPath != "" && !strings.HasSuffix(u.RawPath, "/") {
		u.RawPath += "/"
	}

	c := &Client{
		baseURL:     u,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		retryPolicy: DefaultRetryPolicy,
		maxAttempts: 3,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// -----------------------------------------------------------------------------
// doRequest: one place to build a request, run middleware, retry and
// turn non-2xx responses into *APIError.
// -----------------------------------------------------------------------------
//
// The request is rebuilt for every attempt so form bodies can be resent.
// On success the caller owns the response body.
func (c *Client) doRequest(ctx context.Context, method, rawURL string, form url.Values) (*http.Response, error) {
	build := func() (*http.Request, error) {
		var body io.Reader
		if form != nil {
			body = strings.NewReader(form.Encode())
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
		if err != nil {
			return nil, fmt.Errorf("error creating request for %s: %w", rawURL, err)
		}
		req.Header.Set("Accept", "application/json")
		if form != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}

		// Apply all registered middleware in order.
		for _, mw := range c.middleware {
			if err := mw(ctx, req); err != nil {
				return nil, fmt.Errorf("error applying middleware for %s: %w", rawURL, err)
			}
		}
		return req, nil
	}

	start := time.Now()
	resp, err := c.retry(ctx, func() (*http.Response, error) {
		req, err := build()
		if err != nil {
			return nil, &buildError{err: err}
		}
		return c.httpClient.Do(req)
	})
	if err != nil {
		c.log().Error("request failed", "method", method, "url", redact(rawURL), "error", err)
		return nil, unwrapBuildError(err)
	}
	c.log().Debug("request", "method", method, "url", redact(rawURL),
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	data, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if readErr != nil {
		return nil, fmt.Errorf("error reading error response from %s: %w", redact(rawURL), readErr)
	}
	apiErr := c.parseAPIError(resp, data)
	c.log().Warn("api error", "method", method, "url", redact(rawURL), "status", apiErr.Status, "message", apiErr.Message)
	return nil, apiErr
}

// getJSON fetches u and hands the parsed body to decode. The parsed value
// is only valid inside decode.
func (c *Client) getJSON(ctx context.Context, u *url.URL, decode func(*fastjson.Value) error) error {
	resp, err := c.doRequest(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.decodeBody(resp, u.String(), decode)
}

func (c *Client) decodeBody(resp *http.Response, rawURL string, decode func(*fastjson.Value) error) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response from %s: %w", redact(rawURL), err)
	}

	p := c.parsers.Get()
	defer c.parsers.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		return fmt.Errorf("error decoding response from %s: %w", redact(rawURL), err)
	}
	return decode(v)
}

// redact strips the query so secrets in form or query values never reach
// the log.
func redact(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
