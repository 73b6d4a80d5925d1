// Package apiclient is the only component that talks to the blog server over
// the network. It injects the bearer token and turns every failure into a
// *domain.Error with an explicit kind.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/msomdec/blog-desk/internal/domain"
)

const (
	// DefaultTimeout bounds a single request, including reading the body.
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 64 << 10
)

// Client sends JSON requests to the blog server.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger

	mu    sync.RWMutex
	token string
}

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client rooted at baseURL (scheme and host, optional path prefix).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: base url must be http or https, got %q", domain.ErrInvalidInput, baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: base url has no host", domain.ErrInvalidInput)
	}

	c := &Client{
		baseURL: u,
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// SetAuthToken sets the bearer token sent with every subsequent request.
// An empty token removes the Authorization header.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// HasAuthToken reports whether a bearer token is currently set.
func (c *Client) HasAuthToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// Send performs one request. body, when non-nil, is encoded as JSON. out,
// when non-nil, receives the decoded JSON of a 2xx response other than 204.
// Every returned error is a *domain.Error.
func (c *Client) Send(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "method", method, "path", path, "error", err)
		return &domain.Error{Kind: domain.KindTransport, Message: transportMessage(err), Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.Error{
			Kind:    domain.KindTransport,
			Message: "malformed response from server",
			Err:     fmt.Errorf("decode %s %s response: %w", method, path, err),
		}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, &domain.Error{Kind: domain.KindTransport, Message: "could not encode request", Err: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindTransport, Message: "could not build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// decodeError turns a non-2xx response into a KindAPI error, preferring the
// server's {"error": "..."} message.
func decodeError(resp *http.Response) error {
	e := &domain.Error{
		Kind:    domain.KindAPI,
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("request failed with status code %d", resp.StatusCode),
	}

	var payload struct {
		Error string `json:"error"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		e.Err = err
		return e
	}
	if json.Unmarshal(raw, &payload) == nil && strings.TrimSpace(payload.Error) != "" {
		e.Message = payload.Error
	}
	return e
}

func transportMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request canceled"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "unknown error"
}
