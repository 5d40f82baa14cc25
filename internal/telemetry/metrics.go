package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors the resilience core reports
// through: attempts, retries, failures, latency, and breaker state.
type Metrics struct {
	AttemptsTotal     *prometheus.CounterVec
	RetriesTotal      *prometheus.CounterVec
	FailuresTotal     *prometheus.CounterVec
	AttemptDuration   *prometheus.HistogramVec
	BreakerState      *prometheus.GaugeVec
	BreakerTripsTotal *prometheus.CounterVec
}

// NewMetrics registers the resilience-core collector set against reg. Pass
// prometheus.DefaultRegisterer to publish on the default /metrics endpoint.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AttemptsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aresilient",
			Name:      "attempts_total",
			Help:      "Total transport attempts issued by the executor.",
		}, []string{"method", "target"}),

		RetriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aresilient",
			Name:      "retries_total",
			Help:      "Total retry decisions scheduled by the executor.",
		}, []string{"method", "target", "reason"}),

		FailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aresilient",
			Name:      "failures_total",
			Help:      "Total terminal failures, labeled by error kind.",
		}, []string{"method", "target", "kind"}),

		AttemptDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aresilient",
			Name:      "attempt_duration_seconds",
			Help:      "Duration of a single transport attempt.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "target"}),

		BreakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "aresilient",
			Name:      "breaker_state",
			Help:      "Current breaker state: 0=closed, 1=open, 2=half-open.",
		}, []string{"target"}),

		BreakerTripsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aresilient",
			Name:      "breaker_trips_total",
			Help:      "Total Closed/HalfOpen -> Open transitions.",
		}, []string{"target"}),
	}
}
