package storage

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks buffer pool counters. Each BufferPoolManager owns its own instance.
type Metrics struct {
	cacheHits        atomic.Uint64
	cacheMisses      atomic.Uint64
	pageEvictions    atomic.Uint64
	dirtyPageFlushes atomic.Uint64
	failedWrites     atomic.Uint64

	startTime time.Time
	mu        sync.RWMutex
}

// NewMetrics creates a new metrics tracker
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
}

func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Add(1)
}

func (m *Metrics) RecordPageEviction() {
	m.pageEvictions.Add(1)
}

func (m *Metrics) RecordDirtyPageFlush() {
	m.dirtyPageFlushes.Add(1)
}

func (m *Metrics) RecordFailedWrite() {
	m.failedWrites.Add(1)
}

// Getters

func (m *Metrics) GetCacheHits() uint64 {
	return m.cacheHits.Load()
}

func (m *Metrics) GetCacheMisses() uint64 {
	return m.cacheMisses.Load()
}

// GetCacheHitRate returns hits / (hits + misses), or 0 before the first fetch
func (m *Metrics) GetCacheHitRate() float64 {
	hits := m.cacheHits.Load()
	misses := m.cacheMisses.Load()
	total := hits + misses
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total)
}

func (m *Metrics) GetPageEvictions() uint64 {
	return m.pageEvictions.Load()
}

func (m *Metrics) GetDirtyPageFlushes() uint64 {
	return m.dirtyPageFlushes.Load()
}

func (m *Metrics) GetFailedWrites() uint64 {
	return m.failedWrites.Load()
}

func (m *Metrics) GetUptime() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Since(m.startTime)
}

// MetricsSnapshot is a point-in-time copy of the counters
type MetricsSnapshot struct {
	Hits             uint64
	Misses           uint64
	HitRate          float64
	Evictions        uint64
	DirtyPageFlushes uint64
	FailedWrites     uint64
}

// Snapshot captures the current counters
func (m *Metrics) Snapshot() MetricsSnapshot {
	hits := m.cacheHits.Load()
	misses := m.cacheMisses.Load()

	rate := 0.0
	if hits+misses != 0 {
		rate = float64(hits) / float64(hits+misses)
	}

	return MetricsSnapshot{
		Hits:             hits,
		Misses:           misses,
		HitRate:          rate,
		Evictions:        m.pageEvictions.Load(),
		DirtyPageFlushes: m.dirtyPageFlushes.Load(),
		FailedWrites:     m.failedWrites.Load(),
	}
}

func (s MetricsSnapshot) String() string {
	return fmt.Sprintf("hits=%d misses=%d hit_rate=%.4f evictions=%d flushes=%d failed_writes=%d",
		s.Hits, s.Misses, s.HitRate, s.Evictions, s.DirtyPageFlushes, s.FailedWrites)
}

// LogMetrics logs all metrics using structured logging
func (m *Metrics) LogMetrics(logger *slog.Logger) {
	s := m.Snapshot()

	logger.Info("Buffer Pool Metrics",
		slog.Group("buffer_pool",
			slog.Uint64("cache_hits", s.Hits),
			slog.Uint64("cache_misses", s.Misses),
			slog.Float64("cache_hit_rate", s.HitRate),
			slog.Uint64("page_evictions", s.Evictions),
			slog.Uint64("dirty_page_flushes", s.DirtyPageFlushes),
			slog.Uint64("failed_writes", s.FailedWrites),
		),
		slog.Duration("uptime", m.GetUptime()),
	)
}

// Reset resets all metrics (useful for testing)
func (m *Metrics) Reset() {
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
	m.pageEvictions.Store(0)
	m.dirtyPageFlushes.Store(0)
	m.failedWrites.Store(0)

	m.mu.Lock()
	m.startTime = time.Now()
	m.mu.Unlock()
}
