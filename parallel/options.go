package parallel

import (
	"runtime"

	"github.com/hupe1980/graphlocal"
	"github.com/hupe1980/graphlocal/resource"
)

type options struct {
	workers    int
	scorer     graphlocal.Scorer
	logger     *graphlocal.Logger
	metrics    graphlocal.MetricsCollector
	controller *resource.Controller
}

// Option configures a parallel run.
type Option func(*options)

// WithWorkers sets the number of worker goroutines.
// Values below 1 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithScorer sets the strategy the workers' views score with.
func WithScorer(s graphlocal.Scorer) Option {
	return func(o *options) {
		o.scorer = s
	}
}

// WithLogger sets the logger of the run and of every attached view.
func WithLogger(l *graphlocal.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetricsCollector forwards scoring and attach metrics of every view to mc.
func WithMetricsCollector(mc graphlocal.MetricsCollector) Option {
	return func(o *options) {
		o.metrics = mc
	}
}

// WithResourceController bounds the number of concurrently attached
// workers by the controller's worker slots. Slots are shared with every
// other run using the same controller.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

func applyOptions(optFns []Option) options {
	o := options{}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	if o.logger == nil {
		o.logger = graphlocal.NoopLogger()
	}
	return o
}

func (o options) viewOptions() []graphlocal.Option {
	return []graphlocal.Option{
		graphlocal.WithScorer(o.scorer),
		graphlocal.WithLogger(o.logger),
		graphlocal.WithMetricsCollector(o.metrics),
	}
}
