// Package validator checks scenarios before any browser is started.
// It parses scenario files upfront, applies tag filters, and reports
// structural errors and credential roles missing from configuration.
package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/automationqa/journey-runner/pkg/flow"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	File     string
	Scenario string
	Message  string
}

func (e *ValidationError) Error() string {
	switch {
	case e.File != "" && e.Scenario != "":
		return fmt.Sprintf("%s (%s): %s", e.File, e.Scenario, e.Message)
	case e.Scenario != "":
		return fmt.Sprintf("%s: %s", e.Scenario, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
}

// Result contains the validation result.
type Result struct {
	// Scenarios that passed the tag filter, in execution order.
	Scenarios []flow.Scenario
	// Errors contains all validation errors found.
	Errors []error
	// Warnings do not prevent a run.
	Warnings []error
}

// IsValid returns true if there are no validation errors.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

// Options configures a Validator.
type Options struct {
	IncludeTags []string
	ExcludeTags []string
	// Roles that have configured credentials. Nil skips the credential check.
	Roles []string
	// Library resolves flow references in scenario files.
	Library flow.Library
}

// Validator validates scenarios.
type Validator struct {
	opts  Options
	roles map[string]bool
}

// New creates a new Validator.
func New(opts Options) *Validator {
	v := &Validator{opts: opts}
	if opts.Roles != nil {
		v.roles = make(map[string]bool, len(opts.Roles))
		for _, r := range opts.Roles {
			v.roles[r] = true
		}
	}
	return v
}

// ValidatePath parses a scenario file or every .yaml/.yml file under a
// directory, then validates the parsed scenarios.
func (v *Validator) ValidatePath(path string) *Result {
	return v.ValidateAll(nil, []string{path})
}

// ValidateAll validates built scenarios together with the scenarios parsed
// from paths, so duplicate names are caught across both.
func (v *Validator) ValidateAll(scenarios []flow.Scenario, paths []string) *Result {
	result := &Result{}
	all := append([]flow.Scenario(nil), scenarios...)
	for _, path := range paths {
		all = append(all, v.parsePath(path, result)...)
	}
	v.validate(all, result)
	return result
}

func (v *Validator) parsePath(path string, result *Result) []flow.Scenario {
	info, err := os.Stat(path)
	if err != nil {
		result.Errors = append(result.Errors, &ValidationError{
			File:    path,
			Message: fmt.Sprintf("cannot access: %v", err),
		})
		return nil
	}

	var files []string
	if info.IsDir() {
		files, err = collectScenarioFiles(path)
		if err != nil {
			result.Errors = append(result.Errors, &ValidationError{
				File:    path,
				Message: fmt.Sprintf("failed to scan directory: %v", err),
			})
			return nil
		}
	} else {
		files = []string{path}
	}

	var parsed []flow.Scenario
	for _, file := range files {
		s, err := flow.ParseFile(file, v.opts.Library)
		if err != nil {
			result.Errors = append(result.Errors, &ValidationError{
				File:    file,
				Message: fmt.Sprintf("parse error: %v", err),
			})
			continue
		}
		parsed = append(parsed, *s)
	}
	return parsed
}

// Validate checks already built scenarios.
func (v *Validator) Validate(scenarios []flow.Scenario) *Result {
	result := &Result{}
	v.validate(scenarios, result)
	return result
}

func (v *Validator) validate(scenarios []flow.Scenario, result *Result) {
	seen := make(map[string]string)
	for _, s := range scenarios {
		if !flow.ShouldInclude(s, v.opts.IncludeTags, v.opts.ExcludeTags) {
			continue
		}
		fail := func(format string, args ...interface{}) {
			result.Errors = append(result.Errors, &ValidationError{
				File:     s.SourcePath,
				Scenario: s.Name,
				Message:  fmt.Sprintf(format, args...),
			})
		}

		if prev, dup := seen[s.Name]; dup {
			fail("duplicate scenario name (also defined in %s)", sourceLabel(prev))
			continue
		}
		seen[s.Name] = s.SourcePath

		if err := s.Validate(); err != nil {
			fail("%v", err)
			continue
		}

		if v.roles != nil {
			var missing []string
			for _, role := range s.Credentials() {
				if !v.roles[role] {
					missing = append(missing, role)
				}
			}
			if len(missing) > 0 {
				sort.Strings(missing)
				fail("no credentials configured for role(s): %s", strings.Join(missing, ", "))
				continue
			}
		}

		if !hasCheckpoint(s) {
			result.Warnings = append(result.Warnings, &ValidationError{
				File:     s.SourcePath,
				Scenario: s.Name,
				Message:  "no checkpoints: the run can only fail on a required step",
			})
		}

		result.Scenarios = append(result.Scenarios, s)
	}
}

func hasCheckpoint(s flow.Scenario) bool {
	for _, it := range s.Items {
		if it.Checkpoint != nil {
			return true
		}
	}
	return false
}

func sourceLabel(path string) string {
	if path == "" {
		return "built-in catalog"
	}
	return path
}

// collectScenarioFiles finds all .yaml/.yml files in a directory.
func collectScenarioFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	return files, err
}
