// Package report turns run results into files and console output:
// report.json, junit.xml, allure-results/ and a live console stream.
package report

import (
	"time"

	"github.com/automationqa/journey-runner/pkg/core"
)

// Version is the report.json schema version.
const Version = "1.0.0"

// Status is the report-level status of a scenario or step.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// ============================================================================
// REPORT (report.json)
// ============================================================================

// Report is the top-level document written to report.json.
type Report struct {
	Version   string     `json:"version"`
	RunID     string     `json:"runId"`
	Name      string     `json:"name"`
	Status    Status     `json:"status"`
	StartTime time.Time  `json:"startTime"`
	EndTime   time.Time  `json:"endTime"`
	Duration  int64      `json:"duration"` // milliseconds
	Runner    RunnerInfo `json:"runner"`
	Summary   Summary    `json:"summary"`

	Scenarios []ScenarioEntry `json:"scenarios"`
}

// RunnerInfo describes the runner that produced the report.
type RunnerInfo struct {
	Version string `json:"version"`
	Driver  string `json:"driver"`
	BaseURL string `json:"baseUrl,omitempty"`
}

// Summary contains scenario counts.
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// ScenarioEntry is one scenario run.
type ScenarioEntry struct {
	Index      int       `json:"index"`
	ID         string    `json:"id"` // scenario-000
	Name       string    `json:"name"`
	RunID      string    `json:"runId"`
	SourceFile string    `json:"sourceFile,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	Status     Status    `json:"status"`
	StartTime  time.Time `json:"startTime"`
	Duration   int64     `json:"duration"` // milliseconds

	StepSummary StepSummary     `json:"stepSummary"`
	Error       *Error          `json:"error,omitempty"`
	Steps       []StepEntry     `json:"steps"`
	Log         []core.LogEntry `json:"log"`
	Attachments []string        `json:"attachments,omitempty"` // paths, never inline data
}

// StepSummary contains step counts for one scenario.
type StepSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// StepEntry is one executed step or checkpoint.
type StepEntry struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Flow     string `json:"flow,omitempty"`
	Optional bool   `json:"optional,omitempty"`
	Status   Status `json:"status"`
	Duration int64  `json:"duration"`         // milliseconds
	Waited   int64  `json:"waited,omitempty"` // milliseconds
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Error contains failure details for a scenario.
type Error struct {
	Type       string `json:"type"` // launch, timeout, assertion, action, cancelled, config
	Message    string `json:"message"`
	Step       string `json:"step,omitempty"`
	Checkpoint string `json:"checkpoint,omitempty"`
	LastStep   string `json:"lastCompletedStep,omitempty"`
	Elapsed    int64  `json:"elapsed,omitempty"` // milliseconds
	Address    string `json:"address,omitempty"`
}
