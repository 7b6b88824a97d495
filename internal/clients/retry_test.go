package clients

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldRetry(t *testing.T) {
	r := NewRetrier(DefaultRetryConfig())

	assert.True(t, r.ShouldRetry(429, nil))
	assert.True(t, r.ShouldRetry(500, nil))
	assert.True(t, r.ShouldRetry(503, nil))
	assert.False(t, r.ShouldRetry(400, nil))
	assert.False(t, r.ShouldRetry(401, nil))
	assert.False(t, r.ShouldRetry(404, nil))

	// network errors are always retryable
	assert.True(t, r.ShouldRetry(0, errors.New("connection refused")))
}

func TestBackoff_GrowsExponentially(t *testing.T) {
	r := NewRetrier(&RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Second,
		MaxBackoff:     10 * time.Second,
		BackoffFactor:  2.0,
	})

	assert.Equal(t, time.Second, r.Backoff(0, 0))
	assert.Equal(t, 2*time.Second, r.Backoff(1, 0))
	assert.Equal(t, 4*time.Second, r.Backoff(2, 0))
	// capped at the maximum
	assert.Equal(t, 10*time.Second, r.Backoff(5, 0))
}

func TestBackoff_RetryAfterWins(t *testing.T) {
	r := NewRetrier(DefaultRetryConfig())
	assert.Equal(t, 7*time.Second, r.Backoff(0, 7*time.Second))
}

func TestParseRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Equal(t, time.Duration(0), ParseRetryAfter(resp))

	resp.Header.Set("Retry-After", "30")
	assert.Equal(t, 30*time.Second, ParseRetryAfter(resp))

	assert.Equal(t, time.Duration(0), ParseRetryAfter(nil))
}
