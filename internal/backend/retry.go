package backend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryConfig defines retry behavior for backend calls
type RetryConfig struct {
	MaxRetries      int           `json:"maxRetries" mapstructure:"maxRetries"`
	BaseDelay       time.Duration `json:"baseDelay" mapstructure:"baseDelay"`
	MaxDelay        time.Duration `json:"maxDelay" mapstructure:"maxDelay"`
	BackoffFactor   float64       `json:"backoffFactor" mapstructure:"backoffFactor"`
	JitterFactor    float64       `json:"jitterFactor" mapstructure:"jitterFactor"`
	RetryableStatus []int         `json:"retryableStatus" mapstructure:"retryableStatus"`
}

// DefaultRetryConfig is tuned for an interactive client: few retries, short waits
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    2,
		BaseDelay:     500 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		JitterFactor:  0.1,
		RetryableStatus: []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

// HTTPError is a non-2xx backend reply
type HTTPError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
	Body       []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// parseRetryAfter accepts either seconds or an HTTP date
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return time.Until(t)
	}
	return 0
}

// IsRetryable reports whether err should be retried under cfg
func IsRetryable(err error, cfg RetryConfig) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		for _, code := range cfg.RetryableStatus {
			if httpErr.StatusCode == code {
				return true
			}
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, s := range []string{
		"timeout",
		"connection refused",
		"connection reset",
		"no such host",
		"network is unreachable",
		"temporary failure",
		"eof",
	} {
		if strings.Contains(errStr, s) {
			return true
		}
	}
	return false
}

// backoff returns the wait before retry number attempt (zero based)
func backoff(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(cfg.BackoffFactor, float64(attempt))
	delay += delay * cfg.JitterFactor * (2*rand.Float64() - 1)
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if delay < float64(cfg.BaseDelay) {
		delay = float64(cfg.BaseDelay)
	}
	return time.Duration(delay)
}

// withRetry runs op until it succeeds, fails permanently, or runs out of attempts
func withRetry[T any](ctx context.Context, cfg RetryConfig, onRetry func(attempt int, delay time.Duration, err error), op func(ctx context.Context) (T, error)) (T, error) {
	var (
		result T
		err    error
	)
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, err = op(ctx)
		if err == nil {
			return result, nil
		}
		if attempt >= cfg.MaxRetries || !IsRetryable(err, cfg) {
			break
		}

		delay := backoff(attempt, cfg)
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
			delay = min(httpErr.RetryAfter, cfg.MaxDelay)
		}
		if onRetry != nil {
			onRetry(attempt+1, delay, err)
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(delay):
		}
	}
	return result, err
}
