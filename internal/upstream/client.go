package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"regexp"
	"strings"
	"time"

	"infinite-experiment/briefing/internal/config"
	"infinite-experiment/briefing/internal/constants"
	"infinite-experiment/briefing/internal/logging"
	"infinite-experiment/briefing/internal/metrics"
)

const maxBodyBytes = 5 << 20

// Client calls the briefing backend. Every request goes to BaseURL with the
// fixed Client timeout and is retried on transient failures.
type Client struct {
	BaseURL    string
	Client     *http.Client
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	metrics *metrics.MetricsRegistry
	sleep   func(ctx context.Context, d time.Duration) error
	jitter  func(max time.Duration) time.Duration
}

// NewClient creates a client from configuration.
func NewClient(cfg config.UpstreamConfig, m *metrics.MetricsRegistry) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		Client:     &http.Client{Timeout: cfg.Timeout},
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.RetryBaseDelay,
		MaxDelay:   cfg.RetryMaxDelay,
		metrics:    m,
	}
}

// GetJSON performs a GET request and decodes the JSON body into result.
func (c *Client) GetJSON(ctx context.Context, endpoint string, result interface{}) (int, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil, result)
}

// PostJSON sends payload as JSON and decodes the JSON response into result.
func (c *Client) PostJSON(ctx context.Context, endpoint string, payload interface{}, result interface{}) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, &Error{
			Code:     constants.ErrCodeInvalidDataFormat,
			Message:  "Failed to marshal request body",
			Endpoint: endpoint,
			Err:      err,
		}
	}
	return c.do(ctx, http.MethodPost, endpoint, body, result)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, result interface{}) (int, error) {
	label := NormalizeEndpoint(endpoint)

	var (
		status int
		err    error
	)
	for attempt := 0; ; attempt++ {
		start := time.Now()
		status, err = c.attempt(ctx, method, endpoint, body, result)
		c.metrics.ObserveUpstream(label, outcome(err), time.Since(start))

		if err == nil {
			return status, nil
		}
		if !IsTransient(err) || attempt >= c.MaxRetries {
			return status, err
		}

		delay := c.backoff(attempt)
		c.metrics.IncUpstreamRetry(label)
		logging.Debug("Retrying upstream request",
			"endpoint", label,
			"attempt", attempt+1,
			"status", status,
			"delay_ms", delay.Milliseconds(),
			"error", err.Error(),
		)

		if sleepErr := c.sleepFor(ctx, delay); sleepErr != nil {
			return status, &Error{
				Code:      constants.ErrCodeNetworkError,
				Message:   "Retry aborted",
				Endpoint:  endpoint,
				Status:    status,
				Err:       sleepErr,
				Transient: true,
			}
		}
	}
}

func (c *Client) attempt(ctx context.Context, method, endpoint string, body []byte, result interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, reader)
	if err != nil {
		return 0, &Error{
			Code:     constants.ErrCodeInvalidDataFormat,
			Message:  "Failed to create request",
			Endpoint: endpoint,
			Err:      err,
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return 0, &Error{
			Code:      constants.ErrCodeNetworkError,
			Message:   constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Endpoint:  endpoint,
			Err:       err,
			Transient: true,
		}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, &Error{
			Code:      constants.ErrCodeNetworkError,
			Message:   "Failed to read response body",
			Endpoint:  endpoint,
			Status:    resp.StatusCode,
			Err:       err,
			Transient: true,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, buildHTTPError(resp.StatusCode, endpoint, string(bodyBytes))
	}

	if result == nil {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(bodyBytes, result); err != nil {
		return resp.StatusCode, &Error{
			Code:     constants.ErrCodeInvalidDataFormat,
			Message:  fmt.Sprintf("Failed to decode response from %s", endpoint),
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Details:  truncate(string(bodyBytes), 512),
			Err:      err,
		}
	}

	return resp.StatusCode, nil
}

// buildHTTPError creates appropriate error based on status code
func buildHTTPError(statusCode int, endpoint string, body string) error {
	details := truncate(body, 512)

	switch {
	case statusCode >= 500:
		return &Error{
			Code:      constants.ErrCodeUpstreamServerError,
			Message:   fmt.Sprintf("HTTP %d from %s", statusCode, endpoint),
			Endpoint:  endpoint,
			Status:    statusCode,
			Details:   details,
			Transient: true,
		}
	case statusCode == http.StatusNotFound:
		return &Error{
			Code:     constants.ErrCodeResourceNotFound,
			Message:  fmt.Sprintf("Resource not found: %s", endpoint),
			Endpoint: endpoint,
			Status:   statusCode,
			Details:  details,
		}
	case statusCode == http.StatusTooManyRequests:
		return &Error{
			Code:     constants.ErrCodeRateLimited,
			Message:  constants.GetErrorMessage(constants.ErrCodeRateLimited),
			Endpoint: endpoint,
			Status:   statusCode,
			Details:  details,
		}
	default:
		return &Error{
			Code:     constants.ErrCodeUpstreamRejected,
			Message:  fmt.Sprintf("HTTP %d from %s", statusCode, endpoint),
			Endpoint: endpoint,
			Status:   statusCode,
			Details:  details,
		}
	}
}

// backoff returns 2^attempt * BaseDelay plus jitter in [0, BaseDelay),
// capped at MaxDelay when set.
func (c *Client) backoff(attempt int) time.Duration {
	if attempt > 20 {
		attempt = 20
	}
	delay := c.BaseDelay << attempt
	delay += c.jitterFor(c.BaseDelay)
	if c.MaxDelay > 0 && delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

func (c *Client) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return http.DefaultClient
}

func (c *Client) sleepFor(ctx context.Context, d time.Duration) error {
	if c.sleep != nil {
		return c.sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
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

func (c *Client) jitterFor(max time.Duration) time.Duration {
	if c.jitter != nil {
		return c.jitter(max)
	}
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(max)))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsTransient(err):
		return "transient_error"
	default:
		return "permanent_error"
	}
}

var icaoSegment = regexp.MustCompile(`^[A-Z]{4}$`)

// NormalizeEndpoint strips the query string and replaces ICAO path segments
// with a placeholder so metric label cardinality stays bounded.
// e.g. /aerodromos/SBGR?dof=20250101 -> /aerodromos/{icao}
func NormalizeEndpoint(endpoint string) string {
	path, _, _ := strings.Cut(endpoint, "?")
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if icaoSegment.MatchString(part) {
			parts[i] = "{icao}"
		}
	}
	return strings.Join(parts, "/")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
