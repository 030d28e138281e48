package graphlocal

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// metrics/prometheus package provides a Prometheus implementation.
//
// RecordScore sits on the hot path of clustering runs. Implementations must
// be cheap and safe for concurrent use.
type MetricsCollector interface {
	// RecordBuild is called after each graph construction.
	// records is the number of input edge records.
	RecordBuild(records int, duration time.Duration, err error)

	// RecordScore is called after each subset scoring call.
	// scorer is the strategy name, size the subset size.
	RecordScore(scorer string, size int, duration time.Duration, err error)

	// RecordExport is called after each shared memory export.
	RecordExport(bytes int, duration time.Duration, err error)

	// RecordImport is called after each shared view attachment.
	RecordImport(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, time.Duration, error)         {}
func (NoopMetricsCollector) RecordScore(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordExport(int, time.Duration, error)        {}
func (NoopMetricsCollector) RecordImport(time.Duration, error)             {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount       atomic.Int64
	BuildErrors      atomic.Int64
	ScoreCount       atomic.Int64
	ScoreErrors      atomic.Int64
	ScoreTotalNanos  atomic.Int64
	ScoreTotalSize   atomic.Int64
	ExportCount      atomic.Int64
	ExportErrors     atomic.Int64
	ExportTotalBytes atomic.Int64
	ImportCount      atomic.Int64
	ImportErrors     atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(records int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordScore implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScore(scorer string, size int, duration time.Duration, err error) {
	b.ScoreCount.Add(1)
	b.ScoreTotalNanos.Add(duration.Nanoseconds())
	b.ScoreTotalSize.Add(int64(size))
	if err != nil {
		b.ScoreErrors.Add(1)
	}
}

// RecordExport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExport(bytes int, duration time.Duration, err error) {
	b.ExportCount.Add(1)
	if err != nil {
		b.ExportErrors.Add(1)
		return
	}
	b.ExportTotalBytes.Add(int64(bytes))
}

// RecordImport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordImport(duration time.Duration, err error) {
	b.ImportCount.Add(1)
	if err != nil {
		b.ImportErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	scores := b.ScoreCount.Load()
	var avgNanos, avgSize int64
	if scores > 0 {
		avgNanos = b.ScoreTotalNanos.Load() / scores
		avgSize = b.ScoreTotalSize.Load() / scores
	}
	return BasicMetricsStats{
		BuildCount:       b.BuildCount.Load(),
		BuildErrors:      b.BuildErrors.Load(),
		ScoreCount:       scores,
		ScoreErrors:      b.ScoreErrors.Load(),
		ScoreAvgNanos:    avgNanos,
		ScoreAvgSize:     avgSize,
		ExportCount:      b.ExportCount.Load(),
		ExportErrors:     b.ExportErrors.Load(),
		ExportTotalBytes: b.ExportTotalBytes.Load(),
		ImportCount:      b.ImportCount.Load(),
		ImportErrors:     b.ImportErrors.Load(),
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector.
type BasicMetricsStats struct {
	BuildCount       int64
	BuildErrors      int64
	ScoreCount       int64
	ScoreErrors      int64
	ScoreAvgNanos    int64
	ScoreAvgSize     int64
	ExportCount      int64
	ExportErrors     int64
	ExportTotalBytes int64
	ImportCount      int64
	ImportErrors     int64
}
