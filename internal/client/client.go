// Package client is a typed client for the authkit HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is where a locally started backend listens.
	DefaultBaseURL = "http://localhost:3000"
	// DefaultTimeout bounds every single call.
	DefaultTimeout = 10 * time.Second

	// RefreshCookie is the cookie the backend uses for refresh tokens.
	RefreshCookie = "refresh_token"

	maxBodyBytes = 10 << 20
)

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	Token        string
	RefreshToken string
	// RateLimit caps requests per second; zero means unpaced.
	RateLimit  float64
	Logger     *slog.Logger
	HTTPClient *http.Client
}

// Client talks to one authkit backend with at most one bearer token.
// A Client is not safe for concurrent use while tokens are being changed.
type Client struct {
	baseURL      *url.URL
	http         *http.Client
	timeout      time.Duration
	token        string
	refreshToken string
	logger       *slog.Logger
}

// New builds a Client from opts.
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", raw)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var baseTransport http.RoundTripper
	if opts.HTTPClient != nil {
		baseTransport = opts.HTTPClient.Transport
	}
	hc := &http.Client{
		Transport: newTransport(baseTransport, logger, opts.RateLimit),
		Timeout:   timeout,
		// Redirects are reported, never followed, so a misconfigured base
		// URL does not silently replay credentials.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &Client{
		baseURL:      base,
		http:         hc,
		timeout:      timeout,
		token:        opts.Token,
		refreshToken: opts.RefreshToken,
		logger:       logger,
	}, nil
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// Token returns the current bearer token.
func (c *Client) Token() string { return c.token }

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) { c.token = token }

// RefreshToken returns the current refresh cookie value.
func (c *Client) RefreshToken() string { return c.refreshToken }

// request describes one API call.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	want   int
	auth   bool
	// cookie sends the refresh cookie.
	cookie bool
}

// response is an interpreted call plus the raw response cookies.
type response struct {
	Result
	cookies []*http.Cookie
}

func (c *Client) do(ctx context.Context, req request) (*response, error) {
	if req.auth && c.token == "" {
		return nil, fmt.Errorf("%s: %w", req.op, ErrNotLoggedIn)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// req.path is already escaped segment by segment.
	target := c.baseURL.String() + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", req.op, err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", req.op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}
	if req.cookie && c.refreshToken != "" {
		httpReq.AddCookie(&http.Cookie{Name: RefreshCookie, Value: c.refreshToken})
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: req.op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Op: req.op, Status: resp.StatusCode, Err: err}
	}

	res, err := Interpret(raw, resp.StatusCode, req.want)
	if err != nil {
		return nil, withOp(err, req.op)
	}
	return &response{Result: res, cookies: resp.Cookies()}, nil
}

// call is do followed by decoding the payload into out (when non-nil).
func (c *Client) call(ctx context.Context, req request, out any) error {
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := resp.Decode(out); err != nil {
		return &TransportError{Op: req.op, Status: resp.Status, Body: string(resp.Payload), Err: err}
	}
	return nil
}

func withOp(err error, op string) error {
	switch e := err.(type) {
	case *TransportError:
		e.Op = op
	case *ApplicationError:
		e.Op = op
	}
	return err
}

// segment escapes one path segment.
func segment(s string) string {
	return url.PathEscape(s)
}
