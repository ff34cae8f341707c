// Package core provides the execution model types for journey-runner:
// the browser session boundary, results, statuses and the error taxonomy.
package core

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Attachment represents a debug artifact captured during a run
type Attachment struct {
	Name        string `json:"name"`        // Descriptive name: screenshot
	ContentType string `json:"contentType"` // MIME type: image/png
	Path        string `json:"path"`        // File path
	Body        []byte `json:"-"`           // In-memory content (not serialized to JSON)
}

// Common attachment names
const (
	AttachmentScreenshot = "screenshot"
)

// Common content types
const (
	ContentTypePNG  = "image/png"
	ContentTypeJSON = "application/json"
	ContentTypeXML  = "application/xml"
)

// NewScreenshotAttachment creates a screenshot attachment
func NewScreenshotAttachment(path string, data []byte) Attachment {
	return Attachment{
		Name:        AttachmentScreenshot,
		ContentType: ContentTypePNG,
		Path:        path,
		Body:        data,
	}
}

// ArtifactConfig controls when and where artifacts are captured
type ArtifactConfig struct {
	Dir              string `yaml:"dir" json:"dir"`                           // Empty disables capture
	CaptureOnFailure bool   `yaml:"captureOnFailure" json:"captureOnFailure"` // Default: true
	CaptureOnSuccess bool   `yaml:"captureOnSuccess" json:"captureOnSuccess"` // Default: false
}

// DefaultArtifactConfig returns the default capture policy rooted at dir
func DefaultArtifactConfig(dir string) ArtifactConfig {
	return ArtifactConfig{
		Dir:              dir,
		CaptureOnFailure: true,
		CaptureOnSuccess: false,
	}
}

// ShouldCapture returns true if artifacts should be captured for the given outcome
func (c ArtifactConfig) ShouldCapture(outcome Outcome) bool {
	if c.Dir == "" {
		return false
	}
	switch outcome {
	case OutcomeFailed:
		return c.CaptureOnFailure
	case OutcomePassed:
		return c.CaptureOnSuccess
	default:
		return false
	}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeName turns a scenario name into a directory name.
func SafeName(name string) string {
	s := strings.Trim(unsafeChars.ReplaceAllString(name, "-"), "-")
	if s == "" {
		return "scenario"
	}
	return s
}

// Save writes body under <Dir>/<scenario>/<file> and returns the path.
func (c ArtifactConfig) Save(scenario, file string, body []byte) (string, error) {
	dir := filepath.Join(c.Dir, SafeName(scenario))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
