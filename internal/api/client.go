// Package api is the HTTP client for the procurement-analytics backend.
// The backend owns data ingestion, aggregation, and forecasting; this
// client only consumes its REST surface.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/common"
)

// Config holds backend connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the backend API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a backend API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", common.ErrMissingConfig)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// apiError is the backend's standard error envelope.
type apiError struct {
	Detail string `json:"detail"`
}

// do issues a request and decodes the JSON response into out (when out is
// non-nil). Transport failures and 5xx responses are wrapped as retryable.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &common.RetryableError{
			Err:       fmt.Errorf("%w: %v", common.ErrAPIUnavailable, err),
			Retryable: true,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	detail := strings.TrimSpace(string(data))
	var envelope apiError
	if json.Unmarshal(data, &envelope) == nil && envelope.Detail != "" {
		detail = envelope.Detail
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, detail)
	case resp.StatusCode == http.StatusTooManyRequests:
		return common.ErrAPIRateLimit
	case resp.StatusCode >= 500:
		return &common.RetryableError{
			Err:       fmt.Errorf("%w: status %d: %s", common.ErrAPIUnavailable, resp.StatusCode, detail),
			Retryable: true,
		}
	default:
		return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, detail)
	}
}

// get issues a GET with retry for transient failures.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return common.WithRetry(ctx, func() error {
		return c.do(ctx, http.MethodGet, path, nil, out)
	}, common.RetryOptions{MaxAttempts: 3, InitialDelay: 200 * time.Millisecond})
}
