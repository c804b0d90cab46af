// Package lda provides a client for the Senate lobbying-disclosure
// registry API, including the query rewrites and filter continuity the
// upstream's pagination quirks require.
package lda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/sonsoflibertyy/lda/internal/common"
	"github.com/sonsoflibertyy/lda/internal/interfaces"
)

const (
	DefaultBaseURL   = "https://lda.senate.gov/api/v1"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
	DefaultRetries   = 4  // total attempts per call

	retryInitialDelay = 350 * time.Millisecond
	retryGrowthFactor = 1.7
	retryMaxDelay     = 1500 * time.Millisecond
)

// ErrGatewayTimeout marks an upstream call that exceeded its per-call
// timeout. Timeouts are surfaced immediately, never retried.
var ErrGatewayTimeout = errors.New("upstream gateway timeout")

// Client implements the RegistryClient interface.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	timeout    time.Duration
	retries    int
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets the upstream base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger.
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRetries sets the total attempt budget per call.
func WithRetries(attempts int) ClientOption {
	return func(c *Client) {
		if attempts > 0 {
			c.retries = attempts
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new registry client. apiKey may be empty; the
// upstream serves unauthenticated requests at a lower rate.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:     common.NewSilentLogger(),
		timeout:    DefaultTimeout,
		retries:    DefaultRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-success upstream response, carrying the original
// status and body.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("LDA API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// DecodeError is an upstream response whose body was not valid JSON.
// The raw text and original status are preserved.
type DecodeError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed upstream payload (status: %d): %v", e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// buildURL joins path and params onto the base URL and applies the
// outbound query rewrites.
func (c *Client) buildURL(path string, params url.Values) (*url.URL, error) {
	u, err := url.Parse(c.baseURL + "/" + strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", path, err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}
	ApplySmartParamRewrites(u)
	return u, nil
}

// fetch performs a rate-limited GET with per-attempt timeout and a
// bounded exponential retry. Timeouts and context cancellation are
// permanent; HTTP errors are retried within the attempt budget and then
// surfaced with the original status and body.
func (c *Client) fetch(ctx context.Context, reqURL string) ([]byte, int, error) {
	var body []byte
	var status int

	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limit wait: %w", err))
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(callCtx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Token "+c.apiKey)
		}

		c.logger.Debug().Str("url", reqURL).Msg("LDA API request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			if errors.Is(err, context.DeadlineExceeded) {
				return backoff.Permanent(fmt.Errorf("%w: %s", ErrGatewayTimeout, reqURL))
			}
			return fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode, Message: string(b), Endpoint: reqURL}
		}

		body, status = b, resp.StatusCode
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryInitialDelay
	bo.Multiplier = retryGrowthFactor
	bo.MaxInterval = retryMaxDelay
	bo.RandomizationFactor = 0

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.retries-1)), ctx))
	if err != nil {
		return nil, 0, err
	}
	return body, status, nil
}

// getURL fetches an already-built URL and decodes its JSON body.
func (c *Client) getURL(ctx context.Context, reqURL string, result interface{}) error {
	body, status, err := c.fetch(ctx, reqURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return &DecodeError{StatusCode: status, Body: string(body), Err: err}
	}
	return nil
}

// GetJSON issues a single GET against an upstream path.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, result interface{}) error {
	u, err := c.buildURL(path, params)
	if err != nil {
		return err
	}
	return c.getURL(ctx, u.String(), result)
}

// Ensure Client implements RegistryClient.
var _ interfaces.RegistryClient = (*Client)(nil)
