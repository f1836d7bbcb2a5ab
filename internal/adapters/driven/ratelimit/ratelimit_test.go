package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitsWithin reports whether Wait returns before d elapses.
func waitsWithin(l *Limiter, d time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return l.Wait(ctx) == nil
}

func TestNew_Unlimited(t *testing.T) {
	l := New(Config{})
	for i := 0; i < 100; i++ {
		require.True(t, waitsWithin(l, 10*time.Millisecond))
	}
}

func TestNew_BurstDefaultsToOne(t *testing.T) {
	l := New(Config{RequestsPerSecond: 0.001})
	assert.True(t, waitsWithin(l, 10*time.Millisecond))
	assert.False(t, waitsWithin(l, 10*time.Millisecond))
}

func TestLimiter_NilIsNoop(t *testing.T) {
	var l *Limiter
	assert.NoError(t, l.Wait(context.Background()))
	l.RecordRateLimitError(time.Second)
	assert.NoError(t, l.Wait(context.Background()))
}

func TestLimiter_RecordRateLimitError_BlocksWait(t *testing.T) {
	l := New(Config{})
	l.RecordRateLimitError(time.Minute)
	assert.False(t, waitsWithin(l, 10*time.Millisecond))
}

func TestLimiter_Wait_RespectsContextDuringBackoff(t *testing.T) {
	l := New(Config{})
	l.RecordRateLimitError(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLimiter_Wait_AfterShortBackoff(t *testing.T) {
	l := New(Config{})
	l.RecordRateLimitError(10 * time.Millisecond)

	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"empty", "", 0},
		{"seconds", "12", 12 * time.Second},
		{"padded", " 3 ", 3 * time.Second},
		{"negative", "-4", 0},
		{"garbage", "soon", 0},
		{"past date", "Mon, 02 Jan 2006 15:04:05 GMT", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRetryAfter(tt.value))
		})
	}
}

func TestParseRetryAfter_FutureDate(t *testing.T) {
	at := time.Now().Add(time.Hour).UTC().Format(time.RFC1123)
	d := ParseRetryAfter(at)
	assert.Greater(t, d, 50*time.Minute)
}

func TestLimiter_Do_RetriesOnceAfterTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	l := New(Config{})
	start := time.Now()
	resp, err := l.Do(context.Background(), server.Client(), func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, server.URL, http.NoBody)
	})

	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), 900*time.Millisecond)
}

func TestLimiter_Do_ReturnsSecondTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	var l *Limiter
	resp, err := l.Do(context.Background(), server.Client(), func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, server.URL, http.NoBody)
	})

	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLimiter_Do_PassesThroughSuccess(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	resp, err := New(Config{}).Do(context.Background(), server.Client(), func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, server.URL, http.NoBody)
	})

	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}
