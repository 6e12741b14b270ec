package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"
)

// Common errors. A *StatusError unwraps to one of these when the status
// code falls into a known class.
var (
	ErrNotFound     = errors.New("http: resource not found")
	ErrForbidden    = errors.New("http: access forbidden")
	ErrUnauthorized = errors.New("http: unauthorized")
	ErrRateLimited  = errors.New("http: rate limited")
	ErrServerError  = errors.New("http: server error")
	ErrTooLarge     = errors.New("http: response body exceeds limit")
)

// DefaultUserAgent is sent when Options.UserAgent is empty.
const DefaultUserAgent = "biofetch/1.0"

// Options configures the HTTP client.
type Options struct {
	// Timeout for individual requests.
	// Default: 30s
	Timeout time.Duration

	// RetryAttempts is the maximum number of retry attempts after the first
	// request. Only transport errors and 5xx responses are retried.
	// Default: 0
	RetryAttempts int

	// RetryBackoff is the initial backoff duration.
	// Default: 1s
	RetryBackoff time.Duration

	// RetryMaxBackoff is the maximum backoff duration.
	// Default: 30s
	RetryMaxBackoff time.Duration

	// MaxBodySize caps the number of bytes Fetch will read. Zero means no limit.
	// Default: 64MiB
	MaxBodySize int64

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:         30 * time.Second,
		RetryAttempts:   0,
		RetryBackoff:    time.Second,
		RetryMaxBackoff: 30 * time.Second,
		MaxBodySize:     64 * 1024 * 1024,
		UserAgent:       DefaultUserAgent,
	}
}

// StatusError is returned when the server answers with anything but 200 OK.
type StatusError struct {
	Code   int
	Status string
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http: GET %s: status code %d", e.URL, e.Code)
}

// Unwrap maps the status code onto the package's sentinel errors so callers
// can use errors.Is.
func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusNotFound:
		return ErrNotFound
	case e.Code == http.StatusForbidden:
		return ErrForbidden
	case e.Code == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Code == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.Code >= 500:
		return ErrServerError
	default:
		return nil
	}
}

// Client is a small GET-only HTTP client for public data repositories.
type Client struct {
	client *http.Client
	opts   Options
}

// NewClient creates a new HTTP client with the given options. Zero
// durations and an empty user agent take their defaults; RetryAttempts and
// MaxBodySize are used as given.
func NewClient(opts Options) *Client {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = def.RetryBackoff
	}
	if opts.RetryMaxBackoff <= 0 {
		opts.RetryMaxBackoff = def.RetryMaxBackoff
	}
	if opts.RetryMaxBackoff < opts.RetryBackoff {
		opts.RetryMaxBackoff = opts.RetryBackoff
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &Client{
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		opts: opts,
	}
}

// Get performs a GET request and returns the response body. The caller must
// close it.
func (c *Client) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	var lastErr error

	for attempt := 0; attempt <= c.opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = &StatusError{Code: resp.StatusCode, Status: resp.Status, URL: url}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, URL: url}
		}

		return resp.Body, nil
	}

	return nil, fmt.Errorf("get request failed after %d attempts: %w", c.opts.RetryAttempts+1, lastErr)
}

// Fetch performs a GET request and reads the whole body, honouring
// MaxBodySize.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	r := io.Reader(body)
	if c.opts.MaxBodySize > 0 {
		r = io.LimitReader(body, c.opts.MaxBodySize+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if c.opts.MaxBodySize > 0 && int64(len(data)) > c.opts.MaxBodySize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, c.opts.MaxBodySize)
	}
	return data, nil
}

// backoff waits for an exponentially increasing duration with jitter.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	backoff := c.opts.RetryBackoff * time.Duration(1<<uint(attempt-1))
	if backoff > c.opts.RetryMaxBackoff {
		backoff = c.opts.RetryMaxBackoff
	}

	// Add jitter: 0.5 to 1.5 of backoff
	jitter := time.Duration(float64(backoff) * (0.5 + rand.Float64()))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(jitter):
		return nil
	}
}
