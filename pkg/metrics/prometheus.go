package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	ingested      *prometheus.CounterVec
	forecastRuns  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastPoolPrice prometheus.Gauge
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		ingested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voltseeker_observations_ingested_total",
				Help: "Total number of grid observations written to a backend",
			},
			[]string{"backend"},
		),
		forecastRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voltseeker_forecast_runs_total",
				Help: "Total number of completed forecast runs",
			},
			[]string{"horizon_hours"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voltseeker_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPoolPrice: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "voltseeker_last_pool_price",
				Help: "Last observed pool price in CAD/MWh",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "voltseeker_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordObservationIngested records an observation written to a backend.
func (r *Recorder) RecordObservationIngested(backend string) {
	r.ingested.WithLabelValues(backend).Inc()
}

// RecordForecastRun records a completed forecast run.
func (r *Recorder) RecordForecastRun(horizonHours int) {
	r.forecastRuns.WithLabelValues(strconv.Itoa(horizonHours)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPoolPrice records the most recent settled pool price.
func (r *Recorder) RecordLastPoolPrice(price float64) {
	r.lastPoolPrice.Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
