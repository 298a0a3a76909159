package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		status    int
		retryable bool
	}{
		{StatusNetworkError, true},
		{http.StatusRequestTimeout, true},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusGatewayTimeout, true},
		{http.StatusOK, false},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusForbidden, false},
		{http.StatusNotFound, false},
		{http.StatusConflict, false},
		{http.StatusNotImplemented, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.retryable, IsRetryable(tc.status), "status %d", tc.status)
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, CategoryNetwork, Classify(StatusNetworkError))
	assert.Equal(t, CategoryAuth, Classify(http.StatusUnauthorized))
	assert.Equal(t, CategoryAuth, Classify(http.StatusForbidden))
	assert.Equal(t, CategoryClient, Classify(http.StatusNotFound))
	assert.Equal(t, CategoryClient, Classify(http.StatusTooManyRequests))
	assert.Equal(t, CategoryServer, Classify(http.StatusInternalServerError))
	assert.Equal(t, CategoryServer, Classify(http.StatusGatewayTimeout))
	assert.Equal(t, CategoryUnknown, Classify(http.StatusOK))
}

func TestDelay(t *testing.T) {
	// Server errors double per attempt, capped at 30s.
	assert.Equal(t, 1*time.Second, Delay(http.StatusInternalServerError, 0))
	assert.Equal(t, 2*time.Second, Delay(http.StatusInternalServerError, 1))
	assert.Equal(t, 4*time.Second, Delay(http.StatusInternalServerError, 2))
	assert.Equal(t, 30*time.Second, Delay(http.StatusInternalServerError, 10))

	// Rate limiting backs off harder, base 3.
	assert.Equal(t, 1*time.Second, Delay(http.StatusTooManyRequests, 0))
	assert.Equal(t, 3*time.Second, Delay(http.StatusTooManyRequests, 1))
	assert.Equal(t, 9*time.Second, Delay(http.StatusTooManyRequests, 2))
	assert.Equal(t, 30*time.Second, Delay(http.StatusTooManyRequests, 4))

	// Network failures grow linearly with a 10s cap.
	assert.Equal(t, 1*time.Second, Delay(StatusNetworkError, 0))
	assert.Equal(t, 2*time.Second, Delay(StatusNetworkError, 1))
	assert.Equal(t, 10*time.Second, Delay(StatusNetworkError, 20))

	// Everything else waits the base delay.
	assert.Equal(t, 1*time.Second, Delay(http.StatusRequestTimeout, 3))
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestPolicyDo_SucceedsFirstTry(t *testing.T) {
	p := Policy{Sleep: noSleep}
	calls := 0
	err := p.Do(context.Background(), func(context.Context) (int, error) {
		calls++
		return http.StatusOK, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPolicyDo_RetriesUpToBudget(t *testing.T) {
	p := Policy{MaxRetries: 2, Sleep: noSleep}
	calls := 0
	wantErr := errors.New("upstream down")
	err := p.Do(context.Background(), func(context.Context) (int, error) {
		calls++
		return http.StatusServiceUnavailable, wantErr
	})
	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls, "MaxRetries retries plus the initial attempt")
}

func TestPolicyDo_NoRetryOnNotFound(t *testing.T) {
	p := Policy{Sleep: noSleep}
	calls := 0
	err := p.Do(context.Background(), func(context.Context) (int, error) {
		calls++
		return http.StatusNotFound, errors.New("missing")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestPolicyDo_RecoversMidway(t *testing.T) {
	p := Policy{Sleep: noSleep}
	calls := 0
	err := p.Do(context.Background(), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return http.StatusBadGateway, errors.New("flaky")
		}
		return http.StatusOK, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPolicyDo_ContextCancelDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{Sleep: func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}}
	calls := 0
	err := p.Do(ctx, func(context.Context) (int, error) {
		calls++
		return http.StatusInternalServerError, errors.New("boom")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPolicyDo_DefaultBudget(t *testing.T) {
	p := Policy{Sleep: noSleep}
	calls := 0
	_ = p.Do(context.Background(), func(context.Context) (int, error) {
		calls++
		return StatusNetworkError, errors.New("dial refused")
	})
	assert.Equal(t, DefaultMaxRetries+1, calls)
}
