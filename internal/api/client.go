package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/yairfalse/apidrift/internal/cache"
	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/internal/logger"
)

const (
	// RequestIDHeader carries the per-request correlation id
	RequestIDHeader = "X-Request-ID"

	defaultTimeout           = 30 * time.Second
	defaultRetryAfter        = 60 * time.Second
	maxResponseBytes   int64 = 64 << 20
)

// TokenSource supplies the bearer token for authenticated calls
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a function to TokenSource
type TokenSourceFunc func() string

func (f TokenSourceFunc) Token() string { return f() }

// Client talks JSON to the apidrift backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	cache      *cache.LRU
	log        logger.Logger
	userAgent  string
	retryAfter time.Duration

	mu             sync.RWMutex
	onUnauthorized func()
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithTokenSource sets where bearer tokens come from
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithUnauthorizedHandler registers the hook run on a 401 from an
// authenticated endpoint
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithRateLimit paces outgoing requests. A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCache enables caching of snapshot-scoped reads
func WithCache(lru *cache.LRU) Option {
	return func(c *Client) { c.cache = lru }
}

// WithLogger sets the request logger
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRetryAfterDefault sets the 429 delay used when Retry-After is
// missing or unparseable
func WithRetryAfterDefault(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.retryAfter = d
		}
	}
}

// New creates a client for the backend at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.ConfigurationError(fmt.Sprintf("Invalid API base URL %q", baseURL), err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     TokenSourceFunc(func() string { return "" }),
		limiter:    rate.NewLimiter(rate.Inf, 0),
		log:        logger.NewNop(),
		userAgent:  "apidrift",
		retryAfter: defaultRetryAfter,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetUnauthorizedHandler replaces the 401 hook
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// ClearCache drops every cached response
func (c *Client) ClearCache() {
	c.cache.Clear()
}

// CacheStats reports response cache metrics
func (c *Client) CacheStats() cache.Stats {
	return c.cache.Stats()
}

// request describes one backend call
type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}

	// public requests carry no token and treat 401 as an ordinary error
	public bool

	// cacheable GETs are served from the response cache
	cacheable bool
}

func (r *request) url(base string) string {
	u := base + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	return u
}

// do executes r and decodes the response body into out when non-nil
func (c *Client) do(ctx context.Context, r *request, out interface{}) error {
	var (
		body []byte
		err  error
	)
	if r.cacheable && r.method == http.MethodGet {
		body, err = c.cache.Fetch(ctx, r.url(c.baseURL), func(ctx context.Context) ([]byte, error) {
			return c.send(ctx, r)
		})
	} else {
		body, err = c.send(ctx, r)
	}
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return decodeError(r, err)
	}
	return nil
}

// doList executes r and decodes a list response that may be wrapped
// under one of keys
func (c *Client) doList(ctx context.Context, r *request, out interface{}, keys ...string) error {
	var raw json.RawMessage
	if err := c.do(ctx, r, &raw); err != nil {
		return err
	}
	if err := decodeList(raw, out, keys...); err != nil {
		return decodeError(r, err)
	}
	return nil
}

func decodeError(r *request, err error) error {
	return errors.BackendError(0, "").
		WithCause(fmt.Sprintf("failed to decode %s %s response: %v", r.method, r.path, err)).
		Wrap(err)
}

// roundTrip performs a single HTTP exchange
func (c *Client) roundTrip(ctx context.Context, r *request) (int, http.Header, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, nil, err
	}

	var reader io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return 0, nil, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url(c.baseURL), reader)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !r.public {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log := c.log.WithFields(map[string]interface{}{
		"request_id": requestID,
		"method":     r.method,
		"path":       r.path,
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, nil, ctxErr
		}
		log.Error("request failed", err)
		return 0, nil, nil, errors.NetworkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, nil, ctxErr
		}
		return 0, nil, nil, errors.NetworkError(err)
	}

	log.WithFields(map[string]interface{}{
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("request completed")

	return resp.StatusCode, resp.Header, body, nil
}

// checkStatus maps a non-2xx response onto the error taxonomy
func (c *Client) checkStatus(r *request, status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized && !r.public:
		c.log.WithField("path", r.path).Warn("credential rejected, ending session")
		c.mu.RLock()
		handler := c.onUnauthorized
		c.mu.RUnlock()
		if handler != nil {
			handler()
		}
		c.cache.Clear()
		return errors.AuthenticationError()
	default:
		return errors.BackendError(status, extractMessage(body))
	}
}

// pathf builds a request path, escaping each argument as one segment
func pathf(format string, args ...string) string {
	escaped := make([]interface{}, len(args))
	for i, a := range args {
		escaped[i] = url.PathEscape(a)
	}
	return fmt.Sprintf(format, escaped...)
}
