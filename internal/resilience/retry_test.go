package resilience

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransient(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		if calls < 3 {
			return NewStatusError(http.StatusServiceUnavailable, "http://example.com")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return NewStatusError(http.StatusBadRequest, "http://example.com")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	onRetries := 0
	cfg := fastConfig()
	cfg.OnRetry = func(attempt int, err error) {
		onRetries++
		assert.Equal(t, onRetries, attempt)
	}
	err := Do(context.Background(), cfg, func(context.Context) error {
		calls++
		return NewStatusError(http.StatusTooManyRequests, "http://example.com")
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, onRetries)
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, fastConfig(), func(context.Context) error {
		calls++
		cancel()
		return NewStatusError(http.StatusInternalServerError, "http://example.com")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoVal_ReturnsValue(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), fastConfig(), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", NewStatusError(http.StatusBadGateway, "http://example.com")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 2, calls)
}

func TestBackoff_MultiplierScalesDelay(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		Multiplier:     3,
	}

	assert.Equal(t, 100*time.Millisecond, backoff(0, cfg))
	assert.Equal(t, 300*time.Millisecond, backoff(1, cfg))
	assert.Equal(t, 900*time.Millisecond, backoff(2, cfg))
}

func TestBackoff_CappedAtMax(t *testing.T) {
	cfg := applyDefaults(RetryConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     2 * time.Second,
	})
	assert.Equal(t, float64(2), cfg.Multiplier)
	assert.Equal(t, 2*time.Second, backoff(5, cfg))
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", NewStatusError(http.StatusTooManyRequests, "u"), true},
		{"503", NewStatusError(http.StatusServiceUnavailable, "u"), true},
		{"404", NewStatusError(http.StatusNotFound, "u"), false},
		{"400", NewStatusError(http.StatusBadRequest, "u"), false},
		{"network timeout", &net.DNSError{IsTimeout: true}, true},
		{"plain error", eris.New("boom"), false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
