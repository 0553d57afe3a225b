package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds service counters. Scalar counters use atomics; maps are
// guarded by their own mutexes.
type Metrics struct {
	RequestCount        int64
	ErrorCount          int64
	CacheHits           int64
	CacheMisses         int64
	MatchEvaluations    int64
	SeatAllocations     int64
	GrowthSimulations   int64
	PredictorTrainings  int64
	Predictions         int64
	FairnessAudits      int64
	RateLimitBlocks     int64
	AverageResponseTime int64 // nanoseconds
	StartTime           time.Time

	ResponseTimes      []time.Duration
	ResponseTimesMutex sync.RWMutex

	RequestCountByStatus map[int]int64
	StatusMutex          sync.RWMutex

	DecisionCounts map[string]int64
	DecisionMutex  sync.RWMutex
}

// NewMetrics creates a new metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:            time.Now(),
		ResponseTimes:        make([]time.Duration, 0, 1000),
		RequestCountByStatus: make(map[int]int64),
		DecisionCounts:       make(map[string]int64),
	}
}

// IncrementRequest increments the request count.
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count.
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementCacheHit increments cache hit count.
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementCacheMiss increments cache miss count.
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// RecordMatchEvaluation counts one match evaluation and its decision.
func (m *Metrics) RecordMatchEvaluation(decision string) {
	atomic.AddInt64(&m.MatchEvaluations, 1)

	m.DecisionMutex.Lock()
	m.DecisionCounts[decision]++
	m.DecisionMutex.Unlock()
}

// IncrementSeatAllocation counts one completed allocation run.
func (m *Metrics) IncrementSeatAllocation() {
	atomic.AddInt64(&m.SeatAllocations, 1)
}

// IncrementGrowthSimulation counts one temporal simulation.
func (m *Metrics) IncrementGrowthSimulation() {
	atomic.AddInt64(&m.GrowthSimulations, 1)
}

// IncrementPredictorTraining counts one training run.
func (m *Metrics) IncrementPredictorTraining() {
	atomic.AddInt64(&m.PredictorTrainings, 1)
}

// IncrementPrediction counts one served prediction.
func (m *Metrics) IncrementPrediction() {
	atomic.AddInt64(&m.Predictions, 1)
}

// IncrementFairnessAudit counts one fairness audit.
func (m *Metrics) IncrementFairnessAudit() {
	atomic.AddInt64(&m.FairnessAudits, 1)
}

// IncrementRateLimitBlock counts one throttled request.
func (m *Metrics) IncrementRateLimitBlock() {
	atomic.AddInt64(&m.RateLimitBlocks, 1)
}

// RecordResponseTime records response time for averaging and percentiles.
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	current := atomic.LoadInt64(&m.AverageResponseTime)
	newAverage := (current + duration.Nanoseconds()) / 2
	atomic.StoreInt64(&m.AverageResponseTime, newAverage)

	// Keep the last 1000 samples for percentile estimates.
	m.ResponseTimesMutex.Lock()
	m.ResponseTimes = append(m.ResponseTimes, duration)
	if len(m.ResponseTimes) > 1000 {
		m.ResponseTimes = m.ResponseTimes[1:]
	}
	m.ResponseTimesMutex.Unlock()
}

// RecordRequestByStatus records request count by HTTP status code.
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.StatusMutex.Lock()
	defer m.StatusMutex.Unlock()
	m.RequestCountByStatus[statusCode]++
}

// GetPercentileResponseTime calculates percentile response time.
func (m *Metrics) GetPercentileResponseTime(percentile float64) time.Duration {
	m.ResponseTimesMutex.RLock()
	defer m.ResponseTimesMutex.RUnlock()

	if len(m.ResponseTimes) == 0 {
		return 0
	}

	times := make([]time.Duration, len(m.ResponseTimes))
	copy(times, m.ResponseTimes)
	sort.Slice(times, func(i, j int) bool {
		return times[i] < times[j]
	})

	index := int(float64(len(times)-1) * percentile / 100.0)
	if index >= len(times) {
		index = len(times) - 1
	}
	return times[index]
}

// GetStatusCodeDistribution returns request count by status code.
func (m *Metrics) GetStatusCodeDistribution() map[int]int64 {
	m.StatusMutex.RLock()
	defer m.StatusMutex.RUnlock()

	distribution := make(map[int]int64, len(m.RequestCountByStatus))
	for code, count := range m.RequestCountByStatus {
		distribution[code] = count
	}
	return distribution
}

// GetDecisionDistribution returns match counts by decision outcome.
func (m *Metrics) GetDecisionDistribution() map[string]int64 {
	m.DecisionMutex.RLock()
	defer m.DecisionMutex.RUnlock()

	distribution := make(map[string]int64, len(m.DecisionCounts))
	for decision, count := range m.DecisionCounts {
		distribution[decision] = count
	}
	return distribution
}

// GetStats returns current metrics statistics.
func (m *Metrics) GetStats() map[string]interface{} {
	requests := atomic.LoadInt64(&m.RequestCount)
	errors := atomic.LoadInt64(&m.ErrorCount)
	cacheHits := atomic.LoadInt64(&m.CacheHits)
	cacheMisses := atomic.LoadInt64(&m.CacheMisses)
	avgResponseTime := atomic.LoadInt64(&m.AverageResponseTime)

	errorRate := float64(0)
	if requests > 0 {
		errorRate = float64(errors) / float64(requests) * 100
	}

	cacheHitRate := float64(0)
	totalCacheRequests := cacheHits + cacheMisses
	if totalCacheRequests > 0 {
		cacheHitRate = float64(cacheHits) / float64(totalCacheRequests) * 100
	}

	return map[string]interface{}{
		"uptime_seconds":         time.Since(m.StartTime).Seconds(),
		"total_requests":         requests,
		"error_count":            errors,
		"error_rate_percent":     errorRate,
		"cache_hits":             cacheHits,
		"cache_misses":           cacheMisses,
		"cache_hit_rate_percent": cacheHitRate,
		"avg_response_time_ms":   float64(avgResponseTime) / 1000000,
		"start_time":             m.StartTime.Format(time.RFC3339),

		"p50_response_time_ms":     float64(m.GetPercentileResponseTime(50)) / 1000000,
		"p95_response_time_ms":     float64(m.GetPercentileResponseTime(95)) / 1000000,
		"p99_response_time_ms":     float64(m.GetPercentileResponseTime(99)) / 1000000,
		"status_code_distribution": m.GetStatusCodeDistribution(),

		"match_evaluations":     atomic.LoadInt64(&m.MatchEvaluations),
		"decision_distribution": m.GetDecisionDistribution(),
		"seat_allocations":      atomic.LoadInt64(&m.SeatAllocations),
		"growth_simulations":    atomic.LoadInt64(&m.GrowthSimulations),
		"predictor_trainings":   atomic.LoadInt64(&m.PredictorTrainings),
		"predictions_served":    atomic.LoadInt64(&m.Predictions),
		"fairness_audits":       atomic.LoadInt64(&m.FairnessAudits),
		"rate_limit_blocks":     atomic.LoadInt64(&m.RateLimitBlocks),
	}
}

// Ensure Metrics satisfies the cache package's metrics interface.
var _ interface {
	IncrementCacheHit()
	IncrementCacheMiss()
} = (*Metrics)(nil)

// Reset resets all metrics, used by tests.
func (m *Metrics) Reset() {
	atomic.StoreInt64(&m.RequestCount, 0)
	atomic.StoreInt64(&m.ErrorCount, 0)
	atomic.StoreInt64(&m.CacheHits, 0)
	atomic.StoreInt64(&m.CacheMisses, 0)
	atomic.StoreInt64(&m.MatchEvaluations, 0)
	atomic.StoreInt64(&m.SeatAllocations, 0)
	atomic.StoreInt64(&m.GrowthSimulations, 0)
	atomic.StoreInt64(&m.PredictorTrainings, 0)
	atomic.StoreInt64(&m.Predictions, 0)
	atomic.StoreInt64(&m.FairnessAudits, 0)
	atomic.StoreInt64(&m.RateLimitBlocks, 0)
	atomic.StoreInt64(&m.AverageResponseTime, 0)

	m.ResponseTimesMutex.Lock()
	m.ResponseTimes = m.ResponseTimes[:0]
	m.ResponseTimesMutex.Unlock()

	m.StatusMutex.Lock()
	m.RequestCountByStatus = make(map[int]int64)
	m.StatusMutex.Unlock()

	m.DecisionMutex.Lock()
	m.DecisionCounts = make(map[string]int64)
	m.DecisionMutex.Unlock()

	m.StartTime = time.Now()
}
