package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automationqa/journey-runner/pkg/core"
)

func sampleSuite() *core.SuiteResult {
	start := time.Unix(1700000000, 0)
	s := &core.SuiteResult{
		StartTime: start,
		Duration:  30 * time.Second,
		Scenarios: []core.RunResult{
			{
				ScenarioName: "student-login",
				Outcome:      core.OutcomePassed,
				Duration:     4 * time.Second,
				Steps: []core.StepResult{
					{Name: "open-login", Kind: "step", Status: core.StatusPassed},
					{Name: "enter-roll-number", Kind: "step", Status: core.StatusSkipped, Waited: 2 * time.Second},
					{Name: "on-dashboard", Kind: "checkpoint", Status: core.StatusPassed, Waited: 300 * time.Millisecond},
				},
			},
			{
				ScenarioName: "student-registration",
				Outcome:      core.OutcomeFailed,
				Category:     core.ErrCategoryAssertion,
				Duration:     20 * time.Second,
				Steps: []core.StepResult{
					{Name: "redirect-to-login", Kind: "checkpoint", Status: core.StatusFailed, Waited: 15 * time.Second},
				},
			},
		},
	}
	s.ComputeSummary()
	return s
}

func TestObserveSuite(t *testing.T) {
	r := NewRecorder()
	r.ObserveSuite(sampleSuite())

	assert.Equal(t, 1.0, testutil.ToFloat64(r.scenarios.WithLabelValues("passed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.scenarios.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("assertion")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.steps.WithLabelValues("skipped", "step")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.steps.WithLabelValues("failed", "checkpoint")))
	assert.Equal(t, 20.0, testutil.ToFloat64(r.durations.WithLabelValues("student-registration")))
	assert.Equal(t, 1700000030.0, testutil.ToFloat64(r.lastRun))

	// steps that never waited are not observed
	assert.Equal(t, 2, testutil.CollectAndCount(r.waits))
}

func TestObserve_Accumulates(t *testing.T) {
	r := NewRecorder()
	run := sampleSuite().Scenarios[0]
	r.Observe(&run)
	r.Observe(&run)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.scenarios.WithLabelValues("passed")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.steps.WithLabelValues("passed", "step"))+
		testutil.ToFloat64(r.steps.WithLabelValues("passed", "checkpoint")))
}

func TestRecorders_AreIndependent(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.ObserveSuite(sampleSuite())
	assert.Equal(t, 0.0, testutil.ToFloat64(b.scenarios.WithLabelValues("passed")))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveSuite(sampleSuite())

	path := filepath.Join(t.TempDir(), "textfile", "journey.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	for _, want := range []string{
		`journey_scenarios_total{outcome="failed"} 1`,
		`journey_steps_total{kind="checkpoint",status="passed"} 1`,
		`journey_wait_seconds_bucket{kind="checkpoint",le="0.5"} 1`,
		`journey_scenario_duration_seconds{scenario="student-login"} 4`,
		"# TYPE journey_wait_seconds histogram",
	} {
		assert.True(t, strings.Contains(text, want), "missing %q in:\n%s", want, text)
	}
}
