package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "waveline/internal/shared/errors"
)

const (
	// Retry policy for every transport call: 3 attempts with linearly
	// increasing backoff (attempt x backoffUnit).
	maxAttempts = 3
	backoffUnit = 2 * time.Second

	// Maximum response body size (8MB). Detail payloads carry full nested
	// stacks and news and can get large.
	maxResponseSize = 8 << 20
)

// Client fetches JSON documents from the source API. All requests go
// through a rate limiter so the one-shot run stays polite against the
// remote service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	backoff    time.Duration
	logger     *slog.Logger
}

// NewClient creates a source API client. requestDelay is the minimum gap
// enforced between consecutive requests; zero disables rate limiting.
func NewClient(baseURL string, timeout, requestDelay time.Duration, logger *slog.Logger) *Client {
	limit := rate.Inf
	if requestDelay > 0 {
		limit = rate.Every(requestDelay)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		limiter:    rate.NewLimiter(limit, 1),
		backoff:    backoffUnit,
		logger:     logger,
	}
}

// GetJSON fetches path relative to the base URL and decodes the response
// into out. Transport failures are retried up to maxAttempts; decode
// failures are terminal.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter interrupted: %w", err)
		}

		lastErr = c.fetch(ctx, path, out)
		if lastErr == nil {
			return nil
		}
		if !apperrors.IsRetryable(lastErr) {
			return lastErr
		}

		if attempt < maxAttempts {
			backoff := time.Duration(attempt) * c.backoff
			c.logger.Warn("request failed, retrying",
				"path", path, "attempt", attempt, "backoff", backoff, "error", lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("request failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) fetch(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return apperrors.NewInternalError("failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewTransportError("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return apperrors.NewTransportError(
			fmt.Sprintf("unexpected status %d for %s", resp.StatusCode, path), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return apperrors.NewTransportError("failed to read response body", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.NewDecodeError(fmt.Sprintf("failed to decode response for %s", path), err)
	}
	return nil
}
