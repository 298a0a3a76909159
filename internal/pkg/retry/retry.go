// Package retry implements the outbound HTTP retry policy used by the
// external service clients. The policy is explicit and transport independent:
// classification, backoff and the attempt loop are separate pieces so each can
// be tested on its own.
package retry

import (
	"context"
	"net/http"
	"time"
)

// Category buckets a failure by its HTTP status.
type Category string

const (
	CategoryNetwork Category = "network"
	CategoryAuth    Category = "auth"
	CategoryClient  Category = "client"
	CategoryServer  Category = "server"
	CategoryUnknown Category = "unknown"
)

// Status zero stands for a transport failure with no HTTP response.
const StatusNetworkError = 0

const (
	baseDelay       = 1 * time.Second
	maxDelay        = 30 * time.Second
	maxNetworkDelay = 10 * time.Second
)

// DefaultMaxRetries bounds the number of retries after the first attempt, so
// a request is attempted at most DefaultMaxRetries+1 times.
const DefaultMaxRetries = 3

// retryableStatuses is the closed set of statuses worth retrying.
var retryableStatuses = map[int]struct{}{
	StatusNetworkError:             {},
	http.StatusRequestTimeout:      {},
	http.StatusTooManyRequests:     {},
	http.StatusInternalServerError: {},
	http.StatusBadGateway:          {},
	http.StatusServiceUnavailable:  {},
	http.StatusGatewayTimeout:      {},
}

// IsRetryable reports whether a status belongs to the retryable set. Anything
// else, 404 included, fails immediately.
func IsRetryable(status int) bool {
	_, ok := retryableStatuses[status]
	return ok
}

// Classify buckets a status into a failure category.
func Classify(status int) Category {
	switch {
	case status == StatusNetworkError:
		return CategoryNetwork
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return CategoryAuth
	case status >= 500:
		return CategoryServer
	case status >= 400:
		return CategoryClient
	default:
		return CategoryUnknown
	}
}

// Delay returns the wait before retry number attempt (zero based).
// Server errors back off exponentially base 2, rate limiting base 3, network
// failures linearly with a tighter cap.
func Delay(status int, attempt int) time.Duration {
	switch {
	case status == StatusNetworkError:
		d := baseDelay * time.Duration(attempt+1)
		return min(d, maxNetworkDelay)
	case status == http.StatusTooManyRequests:
		return min(baseDelay*pow(3, attempt), maxDelay)
	case status >= 500:
		return min(baseDelay*pow(2, attempt), maxDelay)
	default:
		return baseDelay
	}
}

func pow(base, exp int) time.Duration {
	result := time.Duration(1)
	for range exp {
		result *= time.Duration(base)
	}
	return result
}

// Policy drives the attempt loop. Zero values fall back to the defaults.
type Policy struct {
	MaxRetries int
	// Sleep is swappable in tests. Defaults to a context aware wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (p Policy) maxRetries() int {
	if p.MaxRetries <= 0 {
		return DefaultMaxRetries
	}
	return p.MaxRetries
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
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

// Do runs fn until it succeeds, returns a non-retryable status, or the retry
// budget is spent. fn reports the observed HTTP status (0 for transport
// failures) alongside its error; a nil error ends the loop immediately.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) (status int, err error)) error {
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries(); attempt++ {
		status, err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsRetryable(status) || attempt == p.maxRetries() {
			return lastErr
		}
		if err := p.sleep(ctx, Delay(status, attempt)); err != nil {
			return err
		}
	}
	return lastErr
}
