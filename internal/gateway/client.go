package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Client calls canister methods through an HTTP query gateway.
// Requests are rate limited client-side and retried on 429 with exponential backoff.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	limiter    *rate.Limiter
}

// NewClient creates a gateway client. ratePerSecond <= 0 disables the client-side limit.
// A negative maxRetries is treated as 0: every call makes at least one request.
func NewClient(baseURL string, maxRetries int, baseDelay time.Duration, ratePerSecond float64) *Client {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: max(maxRetries, 0),
		baseDelay:  baseDelay,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Call invokes method on canisterID with args encoded as a JSON array
// and returns the raw JSON result.
func (c *Client) Call(ctx context.Context, canisterID, method string, args ...any) ([]byte, error) {
	if args == nil {
		args = []any{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encoding %s arguments: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/canisters/%s/%s", c.baseURL, url.PathEscape(canisterID), url.PathEscape(method))
	return c.post(ctx, endpoint, payload)
}

// post sends payload with retry on 429.
func (c *Client) post(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	var lastErr error
	for attempt := range c.maxRetries + 1 {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("HTTP 429 at %s (attempt %d/%d)", endpoint, attempt+1, c.maxRetries+1)
			if attempt < c.maxRetries {
				delay := c.baseDelay * time.Duration(1<<uint(attempt))
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
				continue
			}
			return nil, lastErr
		}

		return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, endpoint, string(body))
	}

	return nil, lastErr
}
