package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/automationqa/journey-runner/pkg/core"
)

// BuilderConfig contains configuration for building a report.
type BuilderConfig struct {
	RunnerVersion string // journey-runner version
	DriverName    string // webdriver, chromedp, mock
	BaseURL       string
}

// Build converts a finished suite into a Report.
func Build(suite *core.SuiteResult, cfg BuilderConfig) *Report {
	r := &Report{
		Version:   Version,
		RunID:     suite.RunID,
		Name:      suite.Name,
		Status:    StatusPassed,
		StartTime: suite.StartTime,
		EndTime:   suite.StartTime.Add(suite.Duration),
		Duration:  suite.Duration.Milliseconds(),
		Runner: RunnerInfo{
			Version: cfg.RunnerVersion,
			Driver:  cfg.DriverName,
			BaseURL: cfg.BaseURL,
		},
		Scenarios: make([]ScenarioEntry, len(suite.Scenarios)),
	}

	for i := range suite.Scenarios {
		entry := buildScenario(i, &suite.Scenarios[i])
		r.Scenarios[i] = entry

		r.Summary.Total++
		if entry.Status == StatusPassed {
			r.Summary.Passed++
		} else {
			r.Summary.Failed++
		}
	}
	if r.Summary.Failed > 0 || r.Summary.Total == 0 {
		r.Status = StatusFailed
	}
	return r
}

func buildScenario(i int, res *core.RunResult) ScenarioEntry {
	counts := res.Counts()
	entry := ScenarioEntry{
		Index:      i,
		ID:         fmt.Sprintf("scenario-%03d", i),
		Name:       res.ScenarioName,
		RunID:      res.RunID,
		SourceFile: res.SourcePath,
		Tags:       res.Tags,
		Status:     StatusFailed,
		StartTime:  res.StartTime,
		Duration:   res.Duration.Milliseconds(),
		StepSummary: StepSummary{
			Total:   counts.Total,
			Passed:  counts.Passed,
			Failed:  counts.Failed,
			Skipped: counts.Skipped,
		},
		Steps: buildSteps(res.Steps),
		Log:   res.Log,
	}
	if entry.Log == nil {
		entry.Log = []core.LogEntry{}
	}
	if res.Passed() {
		entry.Status = StatusPassed
	} else {
		entry.Error = &Error{
			Type:       res.Category.String(),
			Message:    res.Reason,
			Step:       res.FailingStep,
			Checkpoint: res.FailedCheckpoint,
			LastStep:   res.LastCompletedStep,
			Elapsed:    res.Elapsed.Milliseconds(),
			Address:    res.LastAddress,
		}
	}
	for _, a := range res.Attachments {
		if a.Path != "" {
			entry.Attachments = append(entry.Attachments, a.Path)
		}
	}
	return entry
}

func buildSteps(steps []core.StepResult) []StepEntry {
	out := make([]StepEntry, len(steps))
	for i, s := range steps {
		out[i] = StepEntry{
			Index:    s.Index,
			Name:     s.Name,
			Kind:     s.Kind,
			Flow:     s.Flow,
			Optional: s.Optional,
			Status:   mapStatus(s.Status),
			Duration: s.Duration.Milliseconds(),
			Waited:   s.Waited.Milliseconds(),
			Message:  s.Message,
			Error:    s.Error,
		}
	}
	return out
}

func mapStatus(s core.StepStatus) Status {
	switch s {
	case core.StatusPassed:
		return StatusPassed
	case core.StatusSkipped:
		return StatusSkipped
	default:
		return StatusFailed
	}
}

// WriteJSON writes report.json into outputDir.
func WriteJSON(outputDir string, r *Report) (string, error) {
	if err := ensureDir(outputDir); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(outputDir, "report.json")
	if err := atomicWriteJSON(path, r); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// ReadJSON loads a report.json written by WriteJSON.
func ReadJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &r, nil
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// atomicWriteJSON writes v to a temp file and renames it over path.
func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
