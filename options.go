package graphlocal

import (
	"log/slog"

	"github.com/hupe1980/graphlocal/resource"
)

type options struct {
	scorer           Scorer
	metricsCollector MetricsCollector
	logger           *Logger
	sharedDir        string
	controller       *resource.Controller
}

// Option configures graph construction and shared view attachment.
//
// Options are carried by the resulting Graph and inherited by graphs derived
// from it (LargestComponent, Clone).
type Option func(*options)

// WithScorer selects the strategy used by Graph.Score.
//
// If nil is passed, AcceleratedScorer is used.
func WithScorer(s Scorer) Option {
	return func(o *options) {
		if s == nil {
			s = AcceleratedScorer{}
		}
		o.scorer = s
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &graphlocal.BasicMetricsCollector{}
//	g, _ := graphlocal.New(edges, graphlocal.WithMetricsCollector(metrics))
//	// ... score subsets ...
//	stats := metrics.GetStats()
//	fmt.Printf("Scores: %d, Avg latency: %dns\n", stats.ScoreCount, stats.ScoreAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := graphlocal.NewJSONLogger(slog.LevelInfo)
//	g, _ := graphlocal.New(edges, graphlocal.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithSharedDir sets the directory that holds shared memory segments
// created by ToShared. Defaults to /dev/shm when present, else os.TempDir().
func WithSharedDir(dir string) Option {
	return func(o *options) {
		o.sharedDir = dir
	}
}

// WithResourceController accounts exported segment memory against rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		scorer: AcceleratedScorer{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if _, noop := o.metricsCollector.(NoopMetricsCollector); noop {
		o.metricsCollector = nil
	}
	return o
}
