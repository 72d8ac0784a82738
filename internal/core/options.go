package core

import (
	"context"
	"time"

	"immunizetrack/internal/presentation"
)

// Clock supplies the current time to the service.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// Logger is the structured logger consumed by the service. Key/value pairs
// follow the message.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// MetricsRecorder observes the outcome and latency of service operations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// TraceSpan ends a traced operation.
type TraceSpan interface {
	End(err error)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

type noopTracer struct{}

type noopSpan struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

func (noopSpan) End(error) {}

// Option configures a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	clock        Clock
	logger       Logger
	metrics      MetricsRecorder
	tracer       Tracer
	catalog      presentation.Catalog
	filterCache  int
	persistent   PersistentStore
	seedOnEmpty  bool
	strictStyles bool
}

func defaultOptions() serviceOptions {
	return serviceOptions{
		clock:       ClockFunc(func() time.Time { return time.Now().UTC() }),
		logger:      noopLogger{},
		metrics:     noopMetrics{},
		tracer:      noopTracer{},
		catalog:     presentation.Defaults(),
		seedOnEmpty: true,
	}
}

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger Logger) Option {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder MetricsRecorder) Option {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer Tracer) Option {
	return func(o *serviceOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithPresentation replaces the category style catalog.
func WithPresentation(catalog presentation.Catalog) Option {
	return func(o *serviceOptions) {
		if catalog != nil {
			o.catalog = catalog
		}
	}
}

// WithStrictPresentation makes NewService reject a catalog that lacks a style
// for any enumerated tag.
func WithStrictPresentation() Option {
	return func(o *serviceOptions) { o.strictStyles = true }
}

// WithFilterCache enables memoized filter results, holding up to size
// entries per record kind.
func WithFilterCache(size int) Option {
	return func(o *serviceOptions) { o.filterCache = size }
}

// WithPersistentStore hydrates the stores from a durable backend on
// construction and enables Persist/Reload.
func WithPersistentStore(store PersistentStore) Option {
	return func(o *serviceOptions) { o.persistent = store }
}

// WithoutSeeding keeps an empty backend empty instead of writing the initial
// records to it.
func WithoutSeeding() Option {
	return func(o *serviceOptions) { o.seedOnEmpty = false }
}
