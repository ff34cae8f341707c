package report

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// JUnit schema types, as read by common CI servers.

type junitSuites struct {
	XMLName  xml.Name     `xml:"testsuites"`
	Name     string       `xml:"name,attr"`
	Tests    int          `xml:"tests,attr"`
	Failures int          `xml:"failures,attr"`
	Time     string       `xml:"time,attr"`
	Suites   []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       string          `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []junitProperty `xml:"properties>property,omitempty"`
	Cases      []junitCase     `xml:"testcase"`
	SystemOut  string          `xml:"system-out,omitempty"`
}

type junitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

type junitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// WriteJUnit writes junit.xml into outputDir. Each scenario becomes a
// testsuite and each step or checkpoint a testcase.
func WriteJUnit(outputDir string, r *Report) (string, error) {
	doc := junitSuites{
		Name:  r.Name,
		Tests: r.Summary.Total,
		Time:  seconds(r.Duration),
	}
	for _, sc := range r.Scenarios {
		suite := junitSuite{
			Name:      sc.Name,
			Tests:     len(sc.Steps),
			Time:      seconds(sc.Duration),
			Timestamp: sc.StartTime.Format("2006-01-02T15:04:05"),
			Properties: []junitProperty{
				{Name: "runId", Value: sc.RunID},
			},
			SystemOut: logText(sc),
		}
		if len(sc.Tags) > 0 {
			suite.Properties = append(suite.Properties, junitProperty{Name: "tags", Value: strings.Join(sc.Tags, ",")})
		}
		if sc.Error != nil && sc.Error.Address != "" {
			suite.Properties = append(suite.Properties, junitProperty{Name: "lastAddress", Value: sc.Error.Address})
		}

		for _, st := range sc.Steps {
			tc := junitCase{
				Name:      st.Name,
				Classname: sc.Name,
				Time:      seconds(st.Duration),
			}
			switch st.Status {
			case StatusFailed:
				tc.Failure = stepFailure(sc, st)
				suite.Failures++
			case StatusSkipped:
				tc.Skipped = &junitSkipped{Message: st.Message}
				suite.Skipped++
			}
			suite.Cases = append(suite.Cases, tc)
		}

		// Launch failures have no steps; report them on a synthetic case.
		if sc.Status == StatusFailed && suite.Failures == 0 {
			suite.Cases = append(suite.Cases, junitCase{
				Name:      "session",
				Classname: sc.Name,
				Failure:   scenarioFailure(sc),
			})
			suite.Tests++
			suite.Failures++
		}

		if sc.Status == StatusFailed {
			doc.Failures++
		}
		doc.Suites = append(doc.Suites, suite)
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal junit: %w", err)
	}
	if err := ensureDir(outputDir); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(outputDir, "junit.xml")
	if err := os.WriteFile(path, append([]byte(xml.Header), data...), 0o644); err != nil {
		return "", fmt.Errorf("write junit.xml: %w", err)
	}
	return path, nil
}

func stepFailure(sc ScenarioEntry, st StepEntry) *junitFailure {
	if sc.Error != nil {
		f := scenarioFailure(sc)
		if st.Error != "" {
			f.Message = st.Error
		}
		return f
	}
	return &junitFailure{Message: st.Error, Type: "unknown", Body: st.Error}
}

func scenarioFailure(sc ScenarioEntry) *junitFailure {
	if sc.Error == nil {
		return &junitFailure{Message: "scenario failed", Type: "unknown"}
	}
	var b strings.Builder
	b.WriteString(sc.Error.Message)
	if sc.Error.Elapsed > 0 {
		fmt.Fprintf(&b, "\nwaited: %s", formatMillis(sc.Error.Elapsed))
	}
	if sc.Error.LastStep != "" {
		fmt.Fprintf(&b, "\nlast completed step: %s", sc.Error.LastStep)
	}
	if sc.Error.Address != "" {
		fmt.Fprintf(&b, "\naddress: %s", sc.Error.Address)
	}
	return &junitFailure{
		Message: sc.Error.Message,
		Type:    sc.Error.Type,
		Body:    b.String(),
	}
}

func logText(sc ScenarioEntry) string {
	var b strings.Builder
	for _, e := range sc.Log {
		fmt.Fprintf(&b, "[%s] %s\n", e.Level, e.Message)
	}
	return b.String()
}

func seconds(ms int64) string {
	return fmt.Sprintf("%.3f", float64(ms)/1000)
}
