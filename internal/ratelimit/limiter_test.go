package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campusintel/placement-engine/internal/monitoring"
)

func newTestLimiter(config Config) (*RateLimiter, *monitoring.Metrics) {
	metrics := monitoring.NewMetrics()
	return NewRateLimiter(config, metrics), metrics
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	limiter, metrics := newTestLimiter(Config{IPLimitPerMin: 3, BurstMultiplier: 1})
	defer limiter.Close()

	// Burst floor is 5, so the first five go through.
	for i := 0; i < 5; i++ {
		result := limiter.AllowIP("10.0.0.1")
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 3, result.Limit)
	}

	result := limiter.AllowIP("10.0.0.1")
	assert.False(t, result.Allowed)
	assert.Greater(t, result.RetryAfter, time.Duration(0))
	assert.Equal(t, int64(1), metrics.RateLimitBlocks)
}

func TestRateLimiterBurstMultiplier(t *testing.T) {
	limiter, _ := newTestLimiter(Config{IPLimitPerMin: 10, BurstMultiplier: 2})
	defer limiter.Close()

	allowed := 0
	for i := 0; i < 30; i++ {
		if limiter.AllowIP("10.0.0.2").Allowed {
			allowed++
		}
	}

	assert.GreaterOrEqual(t, allowed, 10)
	assert.LessOrEqual(t, allowed, 22)
}

func TestRateLimiterIndependentIPs(t *testing.T) {
	limiter, _ := newTestLimiter(Config{IPLimitPerMin: 2, BurstMultiplier: 1})
	defer limiter.Close()

	for ip := 0; ip < 3; ip++ {
		addr := fmt.Sprintf("192.168.1.%d", ip)
		for i := 0; i < 5; i++ {
			assert.True(t, limiter.AllowIP(addr).Allowed, "ip %s request %d", addr, i+1)
		}
		assert.False(t, limiter.AllowIP(addr).Allowed)
	}
}

func TestRateLimiterStats(t *testing.T) {
	limiter, _ := newTestLimiter(DefaultConfig())
	defer limiter.Close()

	limiter.AllowIP("10.0.0.3")
	limiter.AllowIP("10.0.0.4")

	stats := limiter.GetStats()
	assert.Equal(t, 2, stats["active_limiters"])
	assert.Equal(t, DefaultConfig().IPLimitPerMin, stats["ip_limit_per_minute"])
}

func TestRateLimiterConcurrency(t *testing.T) {
	limiter, _ := newTestLimiter(Config{IPLimitPerMin: 1000, BurstMultiplier: 2})
	defer limiter.Close()

	done := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		go func(n int) {
			addr := fmt.Sprintf("172.16.0.%d", n%8)
			for j := 0; j < 10; j++ {
				limiter.AllowIP(addr)
			}
			done <- true
		}(i)
	}
	for i := 0; i < 50; i++ {
		<-done
	}
}
