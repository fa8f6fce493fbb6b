package dedupgo

import (
	"log/slog"

	"golang.org/x/time/rate"
)

type options struct {
	sink      OutputSink
	collector MetricsCollector
	logger    *Logger
	limiter   *rate.Limiter
	maxChunks int64
}

// Option configures pipeline behavior.
type Option func(*options)

// WithOutputSink configures a sink that receives the kept records of each
// chunk. Pass nil to disable sink forwarding; the run result still holds
// all kept records.
func WithOutputSink(sink OutputSink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithMetricsCollector configures a metrics collector for monitoring the
// run. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.collector = mc
	}
}

// WithLogger configures structured logging for the run.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
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

// WithMaxChunks bounds the number of chunks consumed this run.
// Zero or negative means unbounded.
func WithMaxChunks(n int64) Option {
	return func(o *options) {
		o.maxChunks = n
	}
}

// WithRateLimit throttles the pipeline to at most recordsPerSecond records
// pulled from the producer, smoothing load on a remote source. Zero or
// negative disables throttling.
func WithRateLimit(recordsPerSecond float64, burst int) Option {
	return func(o *options) {
		if recordsPerSecond <= 0 {
			o.limiter = nil
			return
		}
		if burst < 1 {
			burst = int(recordsPerSecond)
		}
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(recordsPerSecond), burst)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		collector: NoopMetricsCollector{},
		logger:    NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
