package objectmap

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    similarityCounter prometheus.Counter
//	    loadHistogram     prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordSimilarities(count int, duration time.Duration, err error) {
//	    p.similarityCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordSimilarities is called after each similarity scoring pass.
	// count is the number of records scored, duration the time taken,
	// err is nil if successful.
	RecordSimilarities(count int, duration time.Duration, err error)

	// RecordSerialize is called after each serialization pass.
	// count is the number of records serialized, warnings the number of
	// tolerated field conversion failures.
	RecordSerialize(count, warnings int, duration time.Duration, err error)

	// RecordLoad is called after each deserialization pass.
	RecordLoad(count, warnings int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSimilarities(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordSerialize(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordLoad(int, int, time.Duration, error)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SimilarityCount      atomic.Int64
	SimilarityErrors     atomic.Int64
	SimilarityTotalNanos atomic.Int64
	SerializeCount       atomic.Int64
	SerializeErrors      atomic.Int64
	SerializeWarnings    atomic.Int64
	LoadCount            atomic.Int64
	LoadErrors           atomic.Int64
	LoadWarnings         atomic.Int64
}

// RecordSimilarities implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSimilarities(count int, duration time.Duration, err error) {
	b.SimilarityCount.Add(1)
	b.SimilarityTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SimilarityErrors.Add(1)
	}
}

// RecordSerialize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSerialize(count, warnings int, duration time.Duration, err error) {
	b.SerializeCount.Add(1)
	b.SerializeWarnings.Add(int64(warnings))
	if err != nil {
		b.SerializeErrors.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(count, warnings int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadWarnings.Add(int64(warnings))
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SimilarityCount:    b.SimilarityCount.Load(),
		SimilarityErrors:   b.SimilarityErrors.Load(),
		SimilarityAvgNanos: b.getAvgSimilarityNanos(),
		SerializeCount:     b.SerializeCount.Load(),
		SerializeErrors:    b.SerializeErrors.Load(),
		SerializeWarnings:  b.SerializeWarnings.Load(),
		LoadCount:          b.LoadCount.Load(),
		LoadErrors:         b.LoadErrors.Load(),
		LoadWarnings:       b.LoadWarnings.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSimilarityNanos() int64 {
	count := b.SimilarityCount.Load()
	if count == 0 {
		return 0
	}
	return b.SimilarityTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SimilarityCount    int64
	SimilarityErrors   int64
	SimilarityAvgNanos int64
	SerializeCount     int64
	SerializeErrors    int64
	SerializeWarnings  int64
	LoadCount          int64
	LoadErrors         int64
	LoadWarnings       int64
}
