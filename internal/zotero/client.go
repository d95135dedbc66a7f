package zotero

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"bibsync/internal/logging"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultConnectTimeout = 60 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRequestsPerSec = 5
)

// ErrForbidden reports a 403 from the API. It is terminal: access problems
// are not transient, so the client surfaces them without retrying.
var ErrForbidden = errors.New("zotero: access forbidden")

// statusError is a retryable non-2xx response.
type statusError struct {
	StatusCode int
	URL        string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("zotero: %s returned %d", e.URL, e.StatusCode)
}

// Response captures the pieces of an API response the sync workflow consumes.
type Response struct {
	StatusCode int
	// Version is the Last-Modified-Version header, 0 when absent.
	Version int64
	// NextURL is the rel="next" pagination target, empty on the last page.
	NextURL string
	Body    string
}

// Config captures the runtime settings required to talk to the API.
type Config struct {
	BaseURL           string
	UserID            string
	BearerToken       string
	RequestTimeout    time.Duration
	ConnectTimeout    time.Duration
	RetryAttempts     int
	RequestsPerSecond int
}

// Client performs authenticated requests against the Zotero API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *rate.Limiter

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(ctx context.Context, d time.Duration) error
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if sleeper != nil {
			c.sleeper = sleeper
		}
	}
}

// New constructs a client using the supplied configuration.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.UserID = strings.TrimSpace(cfg.UserID)
	cfg.BearerToken = strings.TrimSpace(cfg.BearerToken)
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = defaultRetryAttempts
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRequestsPerSec
	}

	client := &Client{
		cfg:              cfg,
		logger:           logging.NewComponentLogger(logger, "zotero"),
		limiter:          rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		retryMaxAttempts: cfg.RetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
		sleeper:          sleepWithContext,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
		client.httpClient = &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: &http.Transport{DialContext: dialer.DialContext},
		}
	}
	return client
}

// UserItemsURL returns the biblatex items endpoint for the configured user.
func (c *Client) UserItemsURL() string {
	return fmt.Sprintf("%s/users/%s/items?v=3&format=biblatex", c.cfg.BaseURL, c.cfg.UserID)
}

// GroupItemsURL returns the biblatex items endpoint for a group library.
func (c *Client) GroupItemsURL(groupID int64) string {
	return fmt.Sprintf("%s/groups/%d/items?v=3&format=biblatex", c.cfg.BaseURL, groupID)
}

func (c *Client) userGroupsURL() string {
	return fmt.Sprintf("%s/users/%s/groups/", c.cfg.BaseURL, c.cfg.UserID)
}

// Get fetches url, retrying transport failures and retryable error statuses
// until the attempt budget is exhausted. A 403 short-circuits with
// ErrForbidden and the response it arrived on.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retryMaxAttempts; attempt++ {
		resp, err := c.getOnce(ctx, url)
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, ErrForbidden) {
			return resp, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err

		if attempt < c.retryMaxAttempts {
			if sleepErr := c.sleeper(ctx, c.retryDelay(attempt)); sleepErr != nil {
				return nil, sleepErr
			}
		}
	}

	return nil, fmt.Errorf("get %s: failed after %d attempts: %w", url, c.retryMaxAttempts, lastErr)
}

func (c *Client) getOnce(ctx context.Context, url string) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)

	requestStart := time.Now()
	httpResp, err := c.httpClient.Do(req)
	elapsed := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (elapsed=%v): %w", elapsed, err)
	}
	defer httpResp.Body.Close()

	c.logger.Info("request completed",
		logging.String("url", url),
		logging.Int("status", httpResp.StatusCode),
		logging.Duration("elapsed", elapsed))

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Version:    parseVersion(httpResp.Header.Get("Last-Modified-Version")),
		NextURL:    parseNextLink(httpResp.Header.Get("Link")),
	}

	if httpResp.StatusCode == http.StatusForbidden {
		return resp, ErrForbidden
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &statusError{StatusCode: httpResp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	resp.Body = string(body)
	return resp, nil
}

func (c *Client) retryDelay(attempt int) time.Duration {
	delay := c.retryBaseDelay << uint(attempt-1)
	if delay > c.retryMaxDelay {
		delay = c.retryMaxDelay
	}
	return delay
}

func parseVersion(value string) int64 {
	version, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return version
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
