// Package ratelimit throttles requests to remote model providers.
//
// A Limiter combines a token bucket with a backoff window that is opened when
// a provider answers 429 Too Many Requests. Do sends a request through the
// limiter and, after a 429, waits out the window and sends it once more.
// Ingestion fires one embedding batch per page, so the bucket keeps large
// documents under provider quotas.
package ratelimit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBackoff is used when a 429 response carries no usable Retry-After.
const DefaultBackoff = 30 * time.Second

// maxAttempts bounds the sends Do makes for one request.
const maxAttempts = 2

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond is the sustained rate. Zero or less disables throttling.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size. Defaults to 1 when throttling.
	BurstSize int
}

// Limiter provides rate limiting for provider requests.
// A nil *Limiter is valid and never blocks.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// New creates a limiter from the configuration.
func New(cfg Config) *Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		timer := time.NewTimer(time.Until(retryAt))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.limiter.Wait(ctx)
}

// RecordRateLimitError opens a backoff window after a 429 response.
func (l *Limiter) RecordRateLimitError(retryAfter time.Duration) {
	if l == nil {
		return
	}
	if retryAfter <= 0 {
		retryAfter = DefaultBackoff
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.retryAt = time.Now().Add(retryAfter)
}

// Do waits for the limiter and sends the request built by newRequest. A 429
// response opens the backoff window; the request is then rebuilt and sent
// once more after the window. The second response is returned whatever its
// status, so callers still see a persistent 429.
func (l *Limiter) Do(
	ctx context.Context,
	client *http.Client,
	newRequest func() (*http.Request, error),
) (*http.Response, error) {
	for attempt := 1; ; attempt++ {
		if err := l.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}

		req, err := newRequest()
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		l.RecordRateLimitError(ParseRetryAfter(resp.Header.Get("Retry-After")))
		if attempt >= maxAttempts {
			return resp, nil
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}

// ParseRetryAfter reads a Retry-After header value given in seconds or as an
// HTTP date. It returns zero when the header is missing or malformed.
func ParseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := time.Parse(time.RFC1123, value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
