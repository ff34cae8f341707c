package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/automationqa/journey-runner/pkg/config"
	"github.com/automationqa/journey-runner/pkg/driver/devtools"
	"github.com/automationqa/journey-runner/pkg/driver/mock"
	"github.com/automationqa/journey-runner/pkg/driver/webdriver"
	"github.com/automationqa/journey-runner/pkg/report"
)

const portalConfig = `baseUrl: http://localhost:5173
driver: mock
credentials:
  student:
    identifier: student@thapar.edu
    secret: student-pw
  admin:
    identifier: admin@thapar.edu
    secret: admin-pw
  registrant:
    identifier: new@example.com
    secret: Test@123
`

// fastFlags keep mock runs quick.
var fastFlags = []string{
	"--no-post-delay",
	"--default-timeout", "200ms",
	"--dialog-timeout", "40ms",
	"--poll-interval", "5ms",
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	err := NewApp(&buf).Run(append([]string{"journey-runner"}, args...))
	return buf.String(), err
}

func exitCode(err error) int {
	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		return exit.ExitCode()
	}
	return -1
}

func TestResolveOutputDir_Default(t *testing.T) {
	dir, err := resolveOutputDir("", false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(dir, "reports/") {
		t.Errorf("expected dir to start with reports/, got %s", dir)
	}
	// Should have timestamp subfolder
	parts := strings.Split(dir, "/")
	if len(parts) != 2 {
		t.Errorf("expected reports/<timestamp>, got %s", dir)
	}
}

func TestResolveOutputDir_CustomOutput(t *testing.T) {
	dir, err := resolveOutputDir("./my-reports", false, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(dir, "my-reports/") {
		t.Errorf("expected dir to start with my-reports/, got %s", dir)
	}
}

func TestResolveOutputDir_Flatten(t *testing.T) {
	dir, err := resolveOutputDir("./my-reports", true, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dir != "my-reports" {
		t.Errorf("expected my-reports, got %s", dir)
	}
}

func TestResolveOutputDir_FlattenWithoutOutput(t *testing.T) {
	_, err := resolveOutputDir("from-config", true, false)
	if err == nil {
		t.Fatal("expected error when flatten is used without output")
	}

	if !strings.Contains(err.Error(), "--flatten requires --output") {
		t.Errorf("expected error about --flatten requiring --output, got: %v", err)
	}
}

func TestParseEnvVars(t *testing.T) {
	result := parseEnvVars([]string{"PHONE=9876543210", "URL=http://x?a=b", "EMPTY=", "INVALID"})

	if result["PHONE"] != "9876543210" {
		t.Errorf("expected PHONE=9876543210, got %s", result["PHONE"])
	}
	if result["URL"] != "http://x?a=b" {
		t.Errorf("expected value with '=' preserved, got %s", result["URL"])
	}
	if v, ok := result["EMPTY"]; !ok || v != "" {
		t.Errorf("expected EMPTY='', got %q (present=%v)", v, ok)
	}
	if _, ok := result["INVALID"]; ok {
		t.Error("expected entry without '=' to be ignored")
	}
	if len(parseEnvVars(nil)) != 0 {
		t.Error("expected empty map for nil input")
	}
}

func TestGlobalFlags(t *testing.T) {
	flagNames := make(map[string]bool)
	for _, f := range GlobalFlags {
		for _, name := range f.Names() {
			flagNames[name] = true
		}
	}

	for _, name := range []string{"config", "driver", "d", "base-url", "driver-path", "remote-url", "headless", "verbose", "no-ansi"} {
		if !flagNames[name] {
			t.Errorf("expected flag %q to be defined", name)
		}
	}
}

func TestLoadSettings_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "journey.yaml", portalConfig+"defaultTimeout: 20s\npostDelay: 0\n")
	t.Setenv("JOURNEY_BASE_URL", "http://staging:5173")
	t.Setenv("JOURNEY_DEFAULT_TIMEOUT", "25s")
	t.Setenv("JOURNEY_CRED_ADMIN_SECRET", "from-env")

	var got *config.Config
	app := NewApp(&bytes.Buffer{})
	app.Commands = []*cli.Command{{
		Name:  "probe",
		Flags: runCommand.Flags,
		Action: func(c *cli.Context) error {
			var err error
			got, err = loadSettings(c)
			return err
		},
	}}

	err := app.Run([]string{"journey-runner", "--config", cfgPath, "--driver", "ChromeDP",
		"probe", "--dialog-timeout", "500", "--include-tags", "smoke"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Driver != config.DriverChromedp {
		t.Errorf("flag should win: driver = %q", got.Driver)
	}
	if got.BaseURL != "http://staging:5173" {
		t.Errorf("env should override file: baseUrl = %q", got.BaseURL)
	}
	if got.DefaultTimeout.Duration != 25*time.Second {
		t.Errorf("env should override file: defaultTimeout = %v", got.DefaultTimeout.Duration)
	}
	if got.DialogTimeout.Duration != 500*time.Millisecond {
		t.Errorf("flag in milliseconds: dialogTimeout = %v", got.DialogTimeout.Duration)
	}
	if got.PostDelay.Duration != 0 || !got.PostDelay.IsSet() {
		t.Errorf("explicit zero postDelay should survive defaults, got %v", got.PostDelay)
	}
	if got.PollInterval.Duration != config.DefaultPollInterval {
		t.Errorf("expected default pollInterval, got %v", got.PollInterval.Duration)
	}
	if got.Credentials["admin"].Secret != "from-env" {
		t.Errorf("expected admin secret from env, got %q", got.Credentials["admin"].Secret)
	}
	if len(got.IncludeTags) != 1 || got.IncludeTags[0] != "smoke" {
		t.Errorf("expected include tags [smoke], got %v", got.IncludeTags)
	}
}

func TestLoadSettings_InvalidDurationFlag(t *testing.T) {
	out, err := runApp(t, "--base-url", "http://localhost:5173", "--driver", "mock", "run", "--post-delay", "soon")
	if exitCode(err) != 1 {
		t.Fatalf("expected exit code 1, got %v (%s)", err, out)
	}
	if !strings.Contains(err.Error(), "--post-delay") {
		t.Errorf("expected flag name in error, got %v", err)
	}
}

func TestResolveTargets(t *testing.T) {
	builtins, paths := resolveTargets(nil, nil)
	if len(builtins) != 4 || len(paths) != 0 {
		t.Errorf("expected whole catalog, got %d builtins %v", len(builtins), paths)
	}

	builtins, paths = resolveTargets(nil, []string{"scenarios/"})
	if len(builtins) != 0 || len(paths) != 1 || paths[0] != "scenarios/" {
		t.Errorf("expected configured paths, got %d builtins %v", len(builtins), paths)
	}

	builtins, paths = resolveTargets([]string{"raise-complaint", "extra.yaml"}, []string{"ignored/"})
	if len(builtins) != 1 || builtins[0].Name != "raise-complaint" {
		t.Errorf("expected raise-complaint builtin, got %v", builtins)
	}
	if len(paths) != 1 || paths[0] != "extra.yaml" {
		t.Errorf("expected extra.yaml path, got %v", paths)
	}
}

func TestNewLauncher(t *testing.T) {
	tests := []struct {
		driver string
		check  func(interface{}) bool
	}{
		{config.DriverWebDriver, func(l interface{}) bool { _, ok := l.(*webdriver.Launcher); return ok }},
		{config.DriverChromedp, func(l interface{}) bool { _, ok := l.(*devtools.Launcher); return ok }},
		{config.DriverMock, func(l interface{}) bool { _, ok := l.(*mock.Browser); return ok }},
	}
	for _, tt := range tests {
		l, err := newLauncher(&config.Config{Driver: tt.driver, BaseURL: "http://localhost:5173"})
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.driver, err)
			continue
		}
		if !tt.check(l) {
			t.Errorf("%s: unexpected launcher type %T", tt.driver, l)
		}
	}

	if _, err := newLauncher(&config.Config{Driver: "selenium"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestRunCommand_Catalog(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "journey.yaml", portalConfig)
	outDir := filepath.Join(dir, "out")
	metricsFile := filepath.Join(dir, "metrics", "journey.prom")

	args := append([]string{"--config", cfgPath, "--no-ansi", "run"}, fastFlags...)
	args = append(args, "--output", outDir, "--flatten", "--allure", "--metrics-file", metricsFile)
	out, err := runApp(t, args...)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}

	for _, want := range []string{"[1/4]", "PASSED student-login", "TOTAL", "4/4 passed", "JUnit:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "student-pw") || strings.Contains(out, "admin-pw") {
		t.Error("secrets must not appear in console output")
	}

	rep, err := report.ReadJSON(filepath.Join(outDir, "report.json"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if rep.Status != report.StatusPassed || rep.Summary.Total != 4 {
		t.Errorf("unexpected report: status=%s total=%d", rep.Status, rep.Summary.Total)
	}
	if rep.Runner.Driver != config.DriverMock {
		t.Errorf("expected driver mock in report, got %q", rep.Runner.Driver)
	}

	for _, p := range []string{
		filepath.Join(outDir, "junit.xml"),
		filepath.Join(outDir, "journey-runner.log"),
		filepath.Join(outDir, "allure-results"),
		metricsFile,
	} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s: %v", p, err)
		}
	}

	data, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `journey_scenarios_total{outcome="passed"} 4`) {
		t.Errorf("unexpected metrics:\n%s", data)
	}
}

func TestRunCommand_FailureExitCode(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "journey.yaml",
		strings.Replace(portalConfig, "secret: student-pw", "secret: wrong", 1))
	outDir := filepath.Join(dir, "out")

	args := append([]string{"--config", cfgPath, "--no-ansi", "run"}, fastFlags...)
	args = append(args, "--output", outDir, "--flatten", "student-login")
	out, err := runApp(t, args...)
	if exitCode(err) != 1 {
		t.Fatalf("expected exit code 1, got %v\n%s", err, out)
	}
	if !strings.Contains(err.Error(), "student-login") {
		t.Errorf("expected failing scenario in error, got %v", err)
	}
	if !strings.Contains(out, "FAILED student-login") {
		t.Errorf("expected FAILED line in output:\n%s", out)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "report.json"))
	if err != nil {
		t.Fatalf("report should be written for failed runs: %v", err)
	}
	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Status != report.StatusFailed || rep.Scenarios[0].Error == nil {
		t.Errorf("expected failed report with error detail, got %s", rep.Status)
	}
}

func TestRunCommand_MockAccountsAreSeparateFromCredentials(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	run := func(t *testing.T, content string) (string, error) {
		t.Helper()
		cfgPath := writeFile(t, dir, "journey.yaml", content)
		args := append([]string{"--config", cfgPath, "--no-ansi", "run"}, fastFlags...)
		args = append(args, "--output", outDir, "--flatten", "student-login")
		return runApp(t, args...)
	}
	creds := func(secret string) string {
		return "baseUrl: http://localhost:5173\ndriver: mock\ncredentials:\n  student:\n    identifier: student@thapar.edu\n    secret: " + secret + "\n"
	}

	// Any typed secret other than the portal's is rejected.
	out, err := run(t, creds("guessed"))
	if exitCode(err) != 1 {
		t.Fatalf("expected wrong secret to fail, got %v\n%s", err, out)
	}

	// The portal's accounts can be configured under mock.accounts.
	out, err = run(t, creds("rotated")+"mock:\n  accounts:\n    student:\n      identifier: student@thapar.edu\n      secret: rotated\n")
	if err != nil {
		t.Fatalf("expected configured mock account to log in: %v\n%s", err, out)
	}
	if !strings.Contains(out, "PASSED student-login") {
		t.Errorf("expected PASSED line in output:\n%s", out)
	}
}

func TestRunCommand_ScenarioFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "journey.yaml", portalConfig)
	scenario := writeFile(t, dir, "login.yaml", `name: file-login
tags: [smoke]
steps:
  - flow: login-student
  - checkpoint:
      name: on-dashboard
      addressContains: dashboard
`)

	args := append([]string{"--config", cfgPath, "--no-ansi", "run"}, fastFlags...)
	args = append(args, "--output", filepath.Join(dir, "out"), "--flatten", scenario)
	out, err := runApp(t, args...)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "PASSED file-login") {
		t.Errorf("expected file scenario to pass:\n%s", out)
	}
}

func TestRunCommand_MissingCredentialFailsValidation(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "journey.yaml", "baseUrl: http://localhost:5173\ndriver: mock\ncredentials: {}\n")

	args := append([]string{"--config", cfgPath, "--no-ansi", "run"}, fastFlags...)
	args = append(args, "--output", filepath.Join(dir, "out"), "--flatten", "raise-complaint")
	out, err := runApp(t, args...)
	if exitCode(err) != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}
	if !strings.Contains(out, "✗") || !strings.Contains(out, "student") {
		t.Errorf("expected missing role to be reported:\n%s", out)
	}
}

func TestRunCommand_InvalidConfig(t *testing.T) {
	_, err := runApp(t, "--driver", "mock", "--base-url", "localhost", "run")
	if exitCode(err) != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}
	if !strings.Contains(err.Error(), "baseUrl") {
		t.Errorf("expected baseUrl problem, got %v", err)
	}
}

func TestListCommand(t *testing.T) {
	out, err := runApp(t, "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Scenarios:", "student-login", "admin-triage", "Flows:", "login-student", "logout"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	out, err = runApp(t, "list", "--include-tags", "smoke")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "student-login") || strings.Contains(out, "admin-triage ") {
		t.Errorf("expected only smoke scenarios:\n%s", out)
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "journey.yaml", portalConfig)

	out, err := runApp(t, "--config", cfgPath, "validate")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "4 scenario(s) valid") {
		t.Errorf("expected all built-ins valid:\n%s", out)
	}

	bad := writeFile(t, dir, "bad.yaml", "name: bad\nsteps:\n  - flow: no-such-flow\n")
	out, err = runApp(t, "--config", cfgPath, "validate", bad)
	if exitCode(err) != 1 {
		t.Fatalf("expected exit code 1, got %v\n%s", err, out)
	}
	if !strings.Contains(out, "no-such-flow") {
		t.Errorf("expected unknown flow error:\n%s", out)
	}
}
