// Package prometheus provides a graphlocal.MetricsCollector that exports
// Prometheus metrics.
//
//	c, err := prometheus.New(prometheus.WithRegisterer(registry))
//	g, err := graphlocal.New(edges, graphlocal.WithMetricsCollector(c))
package prometheus

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/graphlocal"
)

var _ graphlocal.MetricsCollector = (*Collector)(nil)

type options struct {
	namespace  string
	registerer prom.Registerer
	buckets    []float64
}

// Option configures a Collector.
type Option func(*options)

// WithNamespace sets the metric namespace. Defaults to "graphlocal".
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithRegisterer sets the registry the metrics are registered with.
// Defaults to prometheus.DefaultRegisterer.
func WithRegisterer(r prom.Registerer) Option {
	return func(o *options) {
		o.registerer = r
	}
}

// WithLatencyBuckets sets the histogram buckets for latencies in seconds.
func WithLatencyBuckets(b []float64) Option {
	return func(o *options) {
		o.buckets = b
	}
}

// Collector implements graphlocal.MetricsCollector on Prometheus metrics.
type Collector struct {
	builds        *prom.CounterVec
	buildRecords  prom.Counter
	buildLatency  prom.Histogram
	scores        *prom.CounterVec
	scoreLatency  *prom.HistogramVec
	scoreSize     *prom.HistogramVec
	exports       *prom.CounterVec
	exportBytes   prom.Counter
	imports       *prom.CounterVec
	importLatency prom.Histogram
}

// New creates a Collector and registers its metrics.
func New(optFns ...Option) (*Collector, error) {
	o := options{
		namespace:  "graphlocal",
		registerer: prom.DefaultRegisterer,
		buckets:    prom.ExponentialBuckets(1e-6, 4, 12),
	}
	for _, fn := range optFns {
		fn(&o)
	}

	c := &Collector{
		builds: prom.NewCounterVec(prom.CounterOpts{
			Namespace: o.namespace,
			Name:      "builds_total",
			Help:      "Total graph constructions",
		}, []string{"status"}),
		buildRecords: prom.NewCounter(prom.CounterOpts{
			Namespace: o.namespace,
			Name:      "build_records_total",
			Help:      "Total edge records consumed by graph constructions",
		}),
		buildLatency: prom.NewHistogram(prom.HistogramOpts{
			Namespace: o.namespace,
			Name:      "build_latency_seconds",
			Help:      "Latency of graph constructions",
			Buckets:   prom.DefBuckets,
		}),
		scores: prom.NewCounterVec(prom.CounterOpts{
			Namespace: o.namespace,
			Name:      "scores_total",
			Help:      "Total subset scoring calls",
		}, []string{"scorer", "status"}),
		scoreLatency: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: o.namespace,
			Name:      "score_latency_seconds",
			Help:      "Latency of subset scoring calls",
			Buckets:   o.buckets,
		}, []string{"scorer"}),
		scoreSize: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: o.namespace,
			Name:      "score_subset_size",
			Help:      "Size of scored subsets",
			Buckets:   prom.ExponentialBuckets(1, 2, 16),
		}, []string{"scorer"}),
		exports: prom.NewCounterVec(prom.CounterOpts{
			Namespace: o.namespace,
			Name:      "exports_total",
			Help:      "Total shared memory exports",
		}, []string{"status"}),
		exportBytes: prom.NewCounter(prom.CounterOpts{
			Namespace: o.namespace,
			Name:      "export_bytes_total",
			Help:      "Total bytes placed in shared memory",
		}),
		imports: prom.NewCounterVec(prom.CounterOpts{
			Namespace: o.namespace,
			Name:      "imports_total",
			Help:      "Total shared view attachments",
		}, []string{"status"}),
		importLatency: prom.NewHistogram(prom.HistogramOpts{
			Namespace: o.namespace,
			Name:      "import_latency_seconds",
			Help:      "Latency of shared view attachments",
			Buckets:   o.buckets,
		}),
	}

	for _, m := range []prom.Collector{
		c.builds, c.buildRecords, c.buildLatency,
		c.scores, c.scoreLatency, c.scoreSize,
		c.exports, c.exportBytes,
		c.imports, c.importLatency,
	} {
		if err := o.registerer.Register(m); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordBuild implements graphlocal.MetricsCollector.
func (c *Collector) RecordBuild(records int, d time.Duration, err error) {
	c.builds.WithLabelValues(status(err)).Inc()
	if err != nil {
		return
	}
	c.buildRecords.Add(float64(records))
	c.buildLatency.Observe(d.Seconds())
}

// RecordScore implements graphlocal.MetricsCollector.
func (c *Collector) RecordScore(scorer string, size int, d time.Duration, err error) {
	c.scores.WithLabelValues(scorer, status(err)).Inc()
	if err != nil {
		return
	}
	c.scoreLatency.WithLabelValues(scorer).Observe(d.Seconds())
	c.scoreSize.WithLabelValues(scorer).Observe(float64(size))
}

// RecordExport implements graphlocal.MetricsCollector.
func (c *Collector) RecordExport(bytes int, _ time.Duration, err error) {
	c.exports.WithLabelValues(status(err)).Inc()
	if err == nil {
		c.exportBytes.Add(float64(bytes))
	}
}

// RecordImport implements graphlocal.MetricsCollector.
func (c *Collector) RecordImport(d time.Duration, err error) {
	c.imports.WithLabelValues(status(err)).Inc()
	if err == nil {
		c.importLatency.Observe(d.Seconds())
	}
}
