package notifier

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter paces outgoing push requests with a token bucket so bursts of
// high-scoring articles do not trip the push services' quotas. Each
// transport owns one limiter tuned to its API.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter sustaining requestsPerSecond with the
// given burst capacity.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Allow blocks until a token is available or the context is canceled.
// Call it before each outgoing request.
func (r *RateLimiter) Allow(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// Burst returns the configured burst capacity.
func (r *RateLimiter) Burst() int {
	return r.limiter.Burst()
}

// Rate returns the sustained request rate in requests per second.
func (r *RateLimiter) Rate() float64 {
	return float64(r.limiter.Limit())
}
