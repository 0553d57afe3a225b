package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/campusintel/placement-engine/internal/monitoring"
)

// Config holds rate limiter configuration.
type Config struct {
	IPLimitPerMin   int // per-IP requests per minute
	BurstMultiplier int // burst capacity multiplier
}

// DefaultConfig returns default rate limiting configuration.
func DefaultConfig() Config {
	return Config{
		IPLimitPerMin:   120,
		BurstMultiplier: 2,
	}
}

// Result represents the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// RateLimiter provides per-IP token-bucket limiting. Limiters are created
// lazily per key and pruned when the table grows large.
type RateLimiter struct {
	config  Config
	metrics *monitoring.Metrics

	limiters map[string]*rate.Limiter
	mu       sync.RWMutex

	stop chan struct{}
}

// NewRateLimiter creates an in-memory rate limiter.
func NewRateLimiter(config Config, metrics *monitoring.Metrics) *RateLimiter {
	rl := &RateLimiter{
		config:   config,
		metrics:  metrics,
		limiters: make(map[string]*rate.Limiter),
		stop:     make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// AllowIP checks whether an IP may make a request under the per-minute limit.
func (rl *RateLimiter) AllowIP(ip string) *Result {
	return rl.allow(fmt.Sprintf("ip:%s", ip), rl.config.IPLimitPerMin, time.Minute)
}

func (rl *RateLimiter) allow(key string, limit int, period time.Duration) *Result {
	rl.mu.Lock()
	limiter, exists := rl.limiters[key]
	if !exists {
		rps := rate.Limit(float64(limit) / period.Seconds())
		burst := limit * rl.config.BurstMultiplier
		if burst < 5 {
			burst = 5
		}
		limiter = rate.NewLimiter(rps, burst)
		rl.limiters[key] = limiter
	}
	rl.mu.Unlock()

	allowed := limiter.Allow()

	remaining := int(limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   time.Now().Add(period),
	}
	if !allowed {
		result.RetryAfter = time.Until(result.ResetAt)
		if rl.metrics != nil {
			rl.metrics.IncrementRateLimitBlock()
		}
	}
	return result
}

// cleanupLoop bounds limiter table growth under churning client IPs.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			if len(rl.limiters) > 1000 {
				rl.limiters = make(map[string]*rate.Limiter)
			}
			rl.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine.
func (rl *RateLimiter) Close() error {
	close(rl.stop)
	return nil
}

// GetStats returns rate limiter statistics.
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.mu.RLock()
	count := len(rl.limiters)
	rl.mu.RUnlock()

	return map[string]interface{}{
		"active_limiters":     count,
		"ip_limit_per_minute": rl.config.IPLimitPerMin,
		"burst_multiplier":    rl.config.BurstMultiplier,
	}
}
