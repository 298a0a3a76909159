package retry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RequestTimeout bounds a single attempt.
const RequestTimeout = 30 * time.Second

// Client wraps an *http.Client with the retry policy. GET only, which is all
// the outbound integrations need.
type Client struct {
	HTTP   *http.Client
	Policy Policy
}

func NewClient() *Client {
	return &Client{
		HTTP: &http.Client{Timeout: RequestTimeout},
	}
}

// Get fetches url, retrying per the policy, and returns the response body.
// Non-2xx responses are errors carrying the status for classification.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := c.Policy.Do(ctx, func(ctx context.Context) (int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return StatusNetworkError, err
		}
		resp, err := c.HTTP.Do(req)
		if err != nil {
			return StatusNetworkError, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			io.Copy(io.Discard, resp.Body)
			return resp.StatusCode, fmt.Errorf("unexpected status %d (%s)", resp.StatusCode, Classify(resp.StatusCode))
		}
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return StatusNetworkError, fmt.Errorf("read body: %w", err)
		}
		return resp.StatusCode, nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
