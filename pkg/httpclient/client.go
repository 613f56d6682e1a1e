package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"time"
)

// Config holds HTTP client configuration.
type Config struct {
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	UserAgent    string
}

// DefaultConfig returns defaults suited to fetching a product feed.
func DefaultConfig() Config {
	return Config{
		Timeout:      10 * time.Second,
		MaxRetries:   2,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
		UserAgent:    "storefront/1.0",
	}
}

// ErrDecode marks a response body that is not the expected JSON.
var ErrDecode = errors.New("decode response body")

// errCallerCancelled wraps context errors so the breaker can tell them apart
// from upstream timeouts of the underlying http.Client.
var errCallerCancelled = errors.New("request cancelled by caller")

// Client fetches JSON documents with retry, optionally behind a Breaker.
type Client struct {
	http    *http.Client
	config  Config
	breaker *Breaker
}

// Option configures a Client.
type Option func(*Client)

// WithBreaker runs every GetJSON call, retries included, through b.
func WithBreaker(b *Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConnsPerHost:   2,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   5 * time.Second,
				ExpectContinueTimeout: time.Second,
			},
		},
		config: cfg,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON GETs url and decodes a 2xx body into dst. Non-2xx responses fail
// with a *StatusError; bodies that do not decode fail with ErrDecode.
func (c *Client) GetJSON(ctx context.Context, url string, dst any) error {
	if c.breaker == nil {
		return c.getJSON(ctx, url, dst)
	}
	return c.breaker.Run(func() error { return c.getJSON(ctx, url, dst) })
}

func (c *Client) getJSON(ctx context.Context, url string, dst any) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if !IsSuccess(resp.StatusCode) {
		return NewStatusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

// get performs the request, retrying network errors and retryable 5xx
// responses with jittered exponential backoff. The last response is
// returned as-is.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create GET request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff(attempt)):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", errCallerCancelled, ctx.Err())
			}
		}

		resp, err := c.http.Do(req)
		last := attempt >= c.config.MaxRetries
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, fmt.Errorf("%w: %w", errCallerCancelled, ctx.Err())
		case err != nil:
			if isRetryableError(err) && !last {
				continue
			}
			return nil, fmt.Errorf("GET %s failed after %d attempts: %w", url, attempt+1, err)
		case isRetryableStatus(resp.StatusCode) && !last:
			_ = resp.Body.Close()
			continue
		default:
			return resp, nil
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	wait := c.config.RetryWaitMin << (attempt - 1)
	if c.config.RetryWaitMax > 0 && wait > c.config.RetryWaitMax {
		wait = c.config.RetryWaitMax
	}
	return addJitter(wait)
}

// addJitter moves d by up to 25% either way.
func addJitter(d time.Duration) time.Duration {
	quarter := d / 4
	if quarter <= 0 {
		return d
	}
	return d - quarter + rand.N(2*quarter+1)
}

// 501 means the endpoint will never work, so it is not retried.
func isRetryableStatus(code int) bool {
	return code >= 500 && code != http.StatusNotImplemented
}

func isRetryableError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}
