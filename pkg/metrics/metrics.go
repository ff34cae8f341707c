// Package metrics records run results as Prometheus metrics and writes
// them in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/automationqa/journey-runner/pkg/core"
)

const namespace = "journey"

// Recorder accumulates metrics on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	scenarios *prometheus.CounterVec
	steps     *prometheus.CounterVec
	failures  *prometheus.CounterVec
	waits     *prometheus.HistogramVec
	durations *prometheus.GaugeVec
	lastRun   prometheus.Gauge
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		scenarios: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenarios_total",
			Help:      "Scenario runs by outcome.",
		}, []string{"outcome"}),
		steps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Executed steps and checkpoints by status.",
		}, []string{"status", "kind"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Failed scenario runs by error category.",
		}, []string{"category"}),
		waits: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "wait_seconds",
			Help:      "Time spent waiting for step and checkpoint conditions.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}, []string{"kind"}),
		durations: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scenario_duration_seconds",
			Help:      "Duration of the latest run of each scenario.",
		}, []string{"scenario"}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the latest suite finished.",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records one scenario run.
func (r *Recorder) Observe(res *core.RunResult) {
	r.scenarios.WithLabelValues(string(res.Outcome)).Inc()
	if !res.Passed() {
		r.failures.WithLabelValues(res.Category.String()).Inc()
	}
	r.durations.WithLabelValues(res.ScenarioName).Set(res.Duration.Seconds())

	for _, s := range res.Steps {
		r.steps.WithLabelValues(s.Status.String(), s.Kind).Inc()
		if s.Waited > 0 {
			r.waits.WithLabelValues(s.Kind).Observe(s.Waited.Seconds())
		}
	}
}

// ObserveSuite records every run of a suite and stamps the finish time.
func (r *Recorder) ObserveSuite(suite *core.SuiteResult) {
	for i := range suite.Scenarios {
		r.Observe(&suite.Scenarios[i])
	}
	r.lastRun.Set(float64(suite.StartTime.Add(suite.Duration).Unix()))
}

// WriteTextfile writes all metrics to path for the node-exporter textfile
// collector. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics dir: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
