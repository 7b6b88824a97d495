package clients

import (
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// RetryConfig defines retry behavior for remote catalog calls
type RetryConfig struct {
	MaxRetries     int           // Maximum number of retry attempts
	InitialBackoff time.Duration // Initial backoff duration
	MaxBackoff     time.Duration // Maximum backoff duration
	BackoffFactor  float64       // Multiplier for exponential backoff
	Jitter         float64       // Random jitter factor (0-1)
	RetryableCodes []int         // HTTP status codes to retry
}

// DefaultRetryConfig returns production-ready retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.1,
		RetryableCodes: []int{
			http.StatusTooManyRequests,     // 429
			http.StatusInternalServerError, // 500
			http.StatusBadGateway,          // 502
			http.StatusServiceUnavailable,  // 503
			http.StatusGatewayTimeout,      // 504
		},
	}
}

// Retrier handles retry decisions with exponential backoff
type Retrier struct {
	config *RetryConfig
}

// NewRetrier creates a new retrier with the given config
func NewRetrier(config *RetryConfig) *Retrier {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &Retrier{config: config}
}

// MaxRetries returns the configured attempt limit
func (r *Retrier) MaxRetries() int {
	return r.config.MaxRetries
}

// ShouldRetry determines whether a failed call should be retried. Network
// errors (status 0) are always retryable.
func (r *Retrier) ShouldRetry(statusCode int, err error) bool {
	if err != nil && statusCode == 0 {
		return true
	}
	for _, code := range r.config.RetryableCodes {
		if statusCode == code {
			return true
		}
	}
	return false
}

// Backoff calculates the wait before the given attempt. A Retry-After value
// from the server takes precedence over the computed backoff.
func (r *Retrier) Backoff(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return retryAfter
	}

	backoff := float64(r.config.InitialBackoff) * math.Pow(r.config.BackoffFactor, float64(attempt))
	if r.config.Jitter > 0 {
		backoff += backoff * r.config.Jitter * (rand.Float64()*2 - 1)
	}
	if backoff > float64(r.config.MaxBackoff) {
		backoff = float64(r.config.MaxBackoff)
	}
	return time.Duration(backoff)
}

// ParseRetryAfter extracts the Retry-After duration from an HTTP response
func ParseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(retryAfter); err == nil {
		return time.Until(t)
	}
	return 0
}
