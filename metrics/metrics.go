package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metric names preregistered for the semaphore engine.  The signal and
// wait counters feed engine.Instrument; the error counter absorbs
// enqueue rejections.
const (
	SemaphoreSignalCount = "semaphore_signal_count"
	SemaphoreWaitCount   = "semaphore_wait_count"
	SemaphoreErrorCount  = "semaphore_error_count"
)

// NewCounter constructs a go-kit counter backed by a prometheus counter
// registered with the default gatherer.
func NewCounter(name, help string) metrics.Counter {
	return prometheus.NewCounterFrom(stdprometheus.CounterOpts{Name: name, Help: help}, []string{})
}

// NewGauge constructs a go-kit gauge backed by a prometheus gauge
// registered with the default gatherer.
func NewGauge(name, help string) metrics.Gauge {
	return prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{Name: name, Help: help}, []string{})
}

// EngineMetrics bundles the engine's preregistered metrics for fx
// injection.
type EngineMetrics struct {
	fx.In

	Signals metrics.Counter `name:"semaphore_signal_count"`
	Waits   metrics.Counter `name:"semaphore_wait_count"`
	Errors  metrics.Counter `name:"semaphore_error_count"`
}

// ProvideMetrics makes the engine's metrics available to an fx
// application, named for injection into EngineMetrics.
func ProvideMetrics() fx.Option {
	return fx.Provide(
		fx.Annotated{
			Name: SemaphoreSignalCount,
			Target: func() metrics.Counter {
				return NewCounter(SemaphoreSignalCount, "Count of semaphore signal commands enqueued")
			},
		},
		fx.Annotated{
			Name: SemaphoreWaitCount,
			Target: func() metrics.Counter {
				return NewCounter(SemaphoreWaitCount, "Count of semaphore wait commands enqueued")
			},
		},
		fx.Annotated{
			Name: SemaphoreErrorCount,
			Target: func() metrics.Counter {
				return NewCounter(SemaphoreErrorCount, "Count of rejected semaphore commands")
			},
		},
	)
}
