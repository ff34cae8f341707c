package report

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/automationqa/journey-runner/pkg/logger"
)

// Allure result schema types.

// AllureResult represents a single test result in Allure format.
type AllureResult struct {
	UUID          string              `json:"uuid"`
	HistoryID     string              `json:"historyId"`
	FullName      string              `json:"fullName"`
	Name          string              `json:"name"`
	Status        string              `json:"status"`
	Stage         string              `json:"stage"`
	Start         int64               `json:"start"`
	Stop          int64               `json:"stop"`
	Labels        []AllureLabel       `json:"labels"`
	StatusDetails AllureStatusDetails `json:"statusDetails"`
	Steps         []AllureStep        `json:"steps"`
	Attachments   []AllureAttachment  `json:"attachments"`
}

// AllureStep represents a step within a test result.
type AllureStep struct {
	Name          string              `json:"name"`
	Status        string              `json:"status"`
	Stage         string              `json:"stage"`
	Start         int64               `json:"start"`
	Stop          int64               `json:"stop"`
	StatusDetails AllureStatusDetails `json:"statusDetails"`
	Steps         []AllureStep        `json:"steps"`
}

// AllureAttachment represents a file attachment.
type AllureAttachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

// AllureLabel represents a label on a test result.
type AllureLabel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AllureStatusDetails holds failure message and trace.
type AllureStatusDetails struct {
	Message string `json:"message,omitempty"`
	Trace   string `json:"trace,omitempty"`
}

// AllureCategory defines a failure category with regex matching.
type AllureCategory struct {
	Name            string   `json:"name"`
	MatchedStatuses []string `json:"matchedStatuses"`
	MessageRegex    string   `json:"messageRegex"`
}

// WriteAllure writes Allure-compatible result files to <outputDir>/allure-results/.
func WriteAllure(outputDir string, r *Report) (string, error) {
	allureDir := filepath.Join(outputDir, "allure-results")
	if err := ensureDir(allureDir); err != nil {
		return "", fmt.Errorf("create allure-results dir: %w", err)
	}

	// One result file per scenario
	for i := range r.Scenarios {
		sc := &r.Scenarios[i]
		result := buildAllureResult(sc, r)

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal allure result for %s: %w", sc.ID, err)
		}

		resultPath := filepath.Join(allureDir, result.UUID+"-result.json")
		if err := os.WriteFile(resultPath, data, 0o644); err != nil {
			return "", fmt.Errorf("write allure result %s: %w", sc.ID, err)
		}

		for _, path := range sc.Attachments {
			copyFile(path, filepath.Join(allureDir, allureSource(sc, path)))
		}
	}

	if err := writeAllureCategories(allureDir); err != nil {
		return "", err
	}
	if err := writeAllureEnvironment(allureDir, r); err != nil {
		return "", err
	}
	return allureDir, nil
}

// buildAllureResult builds an AllureResult from a scenario entry.
func buildAllureResult(sc *ScenarioEntry, r *Report) AllureResult {
	startMs := sc.StartTime.UnixMilli()
	stopMs := startMs + sc.Duration

	labels := []AllureLabel{
		{Name: "suite", Value: sc.Name},
		{Name: "framework", Value: "journey-runner"},
		{Name: "severity", Value: "normal"},
	}
	if sc.SourceFile != "" {
		labels = append(labels, AllureLabel{Name: "parentSuite", Value: filepath.Base(sc.SourceFile)})
	}
	if r.Runner.Driver != "" {
		labels = append(labels, AllureLabel{Name: "host", Value: r.Runner.Driver})
	}
	for _, tag := range sc.Tags {
		labels = append(labels, AllureLabel{Name: "tag", Value: tag})
	}

	var details AllureStatusDetails
	if sc.Error != nil {
		details.Message = sc.Error.Message
		details.Trace = scenarioFailure(*sc).Body
	}

	var attachments []AllureAttachment
	for _, path := range sc.Attachments {
		attachments = append(attachments, AllureAttachment{
			Name:   "Screenshot",
			Source: allureSource(sc, path),
			Type:   "image/png",
		})
	}

	uuid := sc.RunID
	if uuid == "" {
		uuid = sc.ID
	}

	return AllureResult{
		UUID:          uuid,
		HistoryID:     fnv32aHash(sc.Name + ":" + sc.SourceFile),
		FullName:      sc.Name,
		Name:          sc.Name,
		Status:        string(sc.Status),
		Stage:         "finished",
		Start:         startMs,
		Stop:          stopMs,
		Labels:        labels,
		StatusDetails: details,
		Steps:         buildAllureSteps(sc, startMs),
		Attachments:   attachments,
	}
}

// buildAllureSteps lays steps out back to back from the scenario start;
// steps expanded from a flow are nested under one step named after it.
func buildAllureSteps(sc *ScenarioEntry, startMs int64) []AllureStep {
	steps := make([]AllureStep, 0, len(sc.Steps))
	at := startMs
	group := -1

	for _, st := range sc.Steps {
		step := AllureStep{
			Name:   st.Kind + ": " + st.Name,
			Status: string(st.Status),
			Stage:  "finished",
			Start:  at,
			Stop:   at + st.Duration,
			Steps:  []AllureStep{},
		}
		if st.Error != "" {
			step.StatusDetails.Message = st.Error
		} else if st.Status == StatusSkipped {
			step.StatusDetails.Message = st.Message
		}
		at = step.Stop

		if st.Flow == "" {
			group = -1
			steps = append(steps, step)
			continue
		}
		if group < 0 || steps[group].Name != "flow: "+st.Flow {
			steps = append(steps, AllureStep{
				Name:   "flow: " + st.Flow,
				Status: string(StatusPassed),
				Stage:  "finished",
				Start:  step.Start,
				Steps:  []AllureStep{},
			})
			group = len(steps) - 1
		}
		g := &steps[group]
		g.Steps = append(g.Steps, step)
		g.Stop = step.Stop
		if step.Status == string(StatusFailed) {
			g.Status = step.Status
		}
	}
	return steps
}

func allureSource(sc *ScenarioEntry, path string) string {
	return sc.ID + "-" + filepath.Base(path)
}

// copyFile copies a single file from src to dst, logging rather than
// failing when the source is gone.
func copyFile(src, dst string) {
	in, err := os.Open(src)
	if err != nil {
		logger.Warn("attachment %s not copied: %v", src, err)
		return
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		logger.Warn("failed to copy %s to %s: %v", src, dst, err)
	}
}

// fnv32aHash returns a hex-encoded FNV-32a hash of the input string.
func fnv32aHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}

// writeAllureCategories writes categories.json for failure categorization.
func writeAllureCategories(allureDir string) error {
	categories := []AllureCategory{
		{Name: "Checkpoint Failed", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*checkpoint.*"},
		{Name: "Step Timeout", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*not satisfied within.*|.*timed out.*"},
		{Name: "Stale Element", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*stale.*"},
		{Name: "Browser Launch Failed", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*launch.*"},
		{Name: "Missing Credential", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*credential.*"},
		{Name: "Cancelled", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*cancel.*"},
	}

	data, err := json.MarshalIndent(categories, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}

	path := filepath.Join(allureDir, "categories.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write categories.json: %w", err)
	}
	return nil
}

// writeAllureEnvironment writes environment.properties with runner metadata.
func writeAllureEnvironment(allureDir string, r *Report) error {
	var b strings.Builder
	b.WriteString("framework=journey-runner\n")
	if r.Runner.Version != "" {
		b.WriteString(fmt.Sprintf("runner.version=%s\n", r.Runner.Version))
	}
	if r.Runner.Driver != "" {
		b.WriteString(fmt.Sprintf("runner.driver=%s\n", r.Runner.Driver))
	}
	if r.Runner.BaseURL != "" {
		b.WriteString(fmt.Sprintf("app.baseUrl=%s\n", r.Runner.BaseURL))
	}
	if r.RunID != "" {
		b.WriteString(fmt.Sprintf("run.id=%s\n", r.RunID))
	}

	path := filepath.Join(allureDir, "environment.properties")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write environment.properties: %w", err)
	}
	return nil
}
