// Package metrics exposes engine decisions as Prometheus metrics.
//
// Metrics live on a private registry so several recorders (one per test or
// per CLI run) never collide with each other or with the default registry.
// There is no HTTP endpoint; WriteTextfile dumps the exposition format for
// node_exporter's textfile collector or for inspection.
//
// Metrics:
//
//	laa_decisions_total{engine,outcome}   decisions by engine and outcome label
//	laa_errors_total{engine,kind}         rejected calls by error kind
//	laa_adaptive_trust                    current trust of the adaptive engine
//	laa_competitive_ratio{engine}         ratio of algorithm cost to optimal cost
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/laa-platform/laa-core/laa"
)

const namespace = "laa"

// Recorder holds the decision metrics. A nil *Recorder is a valid no-op.
type Recorder struct {
	registry *prometheus.Registry

	// DecisionsTotal counts decisions by engine and outcome.
	DecisionsTotal *prometheus.CounterVec

	// ErrorsTotal counts rejected calls by engine and error kind.
	ErrorsTotal *prometheus.CounterVec

	// AdaptiveTrust is the latest trust of the adaptive ski-rental engine.
	AdaptiveTrust prometheus.Gauge

	// CompetitiveRatio observes per-instance cost ratios from evaluations.
	CompetitiveRatio *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with its metrics registered on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		DecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "Total engine decisions by engine and outcome",
			},
			[]string{"engine", "outcome"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total rejected engine calls by engine and error kind",
			},
			[]string{"engine", "kind"},
		),
		AdaptiveTrust: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "adaptive_trust",
				Help:      "Current learned trust of the adaptive ski-rental engine",
			},
		),
		CompetitiveRatio: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "competitive_ratio",
				Help:      "Algorithm cost divided by offline optimal cost",
				Buckets:   []float64{1, 1.1, 1.25, 1.5, 1.75, 2, 2.5, 3, 5},
			},
			[]string{"engine"},
		),
	}
	r.registry.MustRegister(r.DecisionsTotal, r.ErrorsTotal, r.AdaptiveTrust, r.CompetitiveRatio)
	return r
}

// Registry returns the private registry holding the recorder's metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordDecision increments the decision counter for engine and outcome.
func (r *Recorder) RecordDecision(engine, outcome string) {
	if r == nil {
		return
	}
	r.DecisionsTotal.WithLabelValues(engine, outcome).Inc()
}

// RecordError increments the error counter using the kind of err.
func (r *Recorder) RecordError(engine string, err error) {
	if r == nil || err == nil {
		return
	}
	r.ErrorsTotal.WithLabelValues(engine, ErrorKind(err)).Inc()
}

// SetTrust records the adaptive engine's current trust.
func (r *Recorder) SetTrust(trust float64) {
	if r == nil {
		return
	}
	r.AdaptiveTrust.Set(trust)
}

// ObserveRatio records one competitive-ratio sample for engine.
func (r *Recorder) ObserveRatio(engine string, ratio float64) {
	if r == nil {
		return
	}
	r.CompetitiveRatio.WithLabelValues(engine).Observe(ratio)
}

// WriteTextfile writes all metrics in Prometheus text format to path.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

// ErrorKind maps an engine error to a metric label.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, laa.ErrInvalidConfiguration):
		return "invalid_configuration"
	case errors.Is(err, laa.ErrLengthMismatch):
		return "length_mismatch"
	case errors.Is(err, laa.ErrEmptyInput):
		return "empty_input"
	default:
		return "other"
	}
}
