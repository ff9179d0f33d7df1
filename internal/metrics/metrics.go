// Package metrics provides Prometheus metrics for navigation verification runs.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Step results.
const (
	ResultPassed    = "passed"
	ResultFailed    = "failed"
	ResultUnchecked = "unchecked" // clicked, component not asserted
)

// Recorder owns one registry so each run (and each test) starts from zero.
type Recorder struct {
	registry *prometheus.Registry

	// StepsTotal counts menu steps by result.
	StepsTotal *prometheus.CounterVec

	// StepDuration measures click-to-assert latency per step.
	StepDuration prometheus.Histogram

	// RunsTotal counts complete walks by result.
	RunsTotal *prometheus.CounterVec

	// InterceptHits counts stubbed responses served, by stub name.
	InterceptHits *prometheus.CounterVec

	// LastRunTimestamp is the unix time the last walk finished.
	LastRunTimestamp prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		StepsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashnav_steps_total",
				Help: "Total number of sidebar steps by result",
			},
			[]string{"result"},
		),
		StepDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dashnav_step_duration_seconds",
				Help:    "Time from locating a menu entry to its assertion",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2, 4, 8},
			},
		),
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashnav_runs_total",
				Help: "Total number of navigation walks by result",
			},
			[]string{"result"},
		),
		InterceptHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashnav_intercept_hits_total",
				Help: "Stubbed status responses served during walks",
			},
			[]string{"stub"},
		),
		LastRunTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "dashnav_last_run_timestamp_seconds",
				Help: "Unix time the last navigation walk finished",
			},
		),
	}
}

// RecordStep records one menu step.
func (r *Recorder) RecordStep(result string, duration time.Duration) {
	if r == nil {
		return
	}
	r.StepsTotal.WithLabelValues(result).Inc()
	r.StepDuration.Observe(duration.Seconds())
}

// RecordRun records a finished walk.
func (r *Recorder) RecordRun(passed bool, finished time.Time) {
	if r == nil {
		return
	}
	result := ResultPassed
	if !passed {
		result = ResultFailed
	}
	r.RunsTotal.WithLabelValues(result).Inc()
	r.LastRunTimestamp.Set(float64(finished.Unix()))
}

// RecordInterceptHit counts one stubbed response.
func (r *Recorder) RecordInterceptHit(stub string) {
	if r == nil {
		return
	}
	r.InterceptHits.WithLabelValues(stub).Inc()
}

// Handler returns the Prometheus metrics HTTP handler for this recorder.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
