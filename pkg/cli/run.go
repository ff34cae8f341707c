package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/automationqa/journey-runner/pkg/config"
	"github.com/automationqa/journey-runner/pkg/core"
	"github.com/automationqa/journey-runner/pkg/driver/devtools"
	"github.com/automationqa/journey-runner/pkg/driver/mock"
	"github.com/automationqa/journey-runner/pkg/driver/webdriver"
	"github.com/automationqa/journey-runner/pkg/executor"
	"github.com/automationqa/journey-runner/pkg/flow"
	"github.com/automationqa/journey-runner/pkg/logger"
	"github.com/automationqa/journey-runner/pkg/metrics"
	"github.com/automationqa/journey-runner/pkg/report"
	"github.com/automationqa/journey-runner/pkg/scenarios"
	"github.com/automationqa/journey-runner/pkg/validator"
)

// selectionFlags choose which scenarios run or get validated.
var selectionFlags = []cli.Flag{
	&cli.StringSliceFlag{
		Name:  "include-tags",
		Usage: "Only include scenarios with these tags",
	},
	&cli.StringSliceFlag{
		Name:  "exclude-tags",
		Usage: "Exclude scenarios with these tags",
	},
}

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "Run scenarios in a browser",
	ArgsUsage: "[scenario-name | file | folder]...",
	Description: `Run built-in scenarios by name, or scenario files. With no arguments
the scenarios listed in the config file run, or the whole built-in catalog.

Each scenario gets its own browser, which is always quit afterwards.
Reports are generated in the output directory:
  - Default: ./reports/<timestamp>/
  - With --output: <output>/<timestamp>/
  - With --output and --flatten: <output>/ (no timestamp subfolder)

Examples:
  journey-runner run
  journey-runner run student-login admin-triage
  journey-runner run scenarios/ --include-tags smoke
  journey-runner --driver chromedp --headless run -e HOSTEL_ROOM=B-204`,
	Flags: append(append([]cli.Flag{}, selectionFlags...),
		&cli.StringSliceFlag{
			Name:    "env",
			Aliases: []string{"e"},
			Usage:   "Variables for ${env:NAME} (KEY=VALUE)",
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "Output directory for reports (default: ./reports)",
		},
		&cli.BoolFlag{
			Name:  "flatten",
			Usage: "Don't create timestamp subfolder (requires --output)",
		},
		&cli.StringFlag{
			Name:  "default-timeout",
			Usage: "Wait bound for steps and checkpoints (15s, or milliseconds)",
		},
		&cli.StringFlag{
			Name:  "post-delay",
			Usage: "Settle period after each step (1s, or milliseconds)",
		},
		&cli.BoolFlag{
			Name:  "no-post-delay",
			Usage: "Disable every settle period, including per-step ones",
		},
		&cli.StringFlag{
			Name:  "dialog-timeout",
			Usage: "Wait bound for optional confirmation dialogs",
		},
		&cli.StringFlag{
			Name:  "teardown-delay",
			Usage: "Pause before the browser is quit",
		},
		&cli.StringFlag{
			Name:   "poll-interval",
			Usage:  "How often conditions are re-checked",
			Hidden: true,
		},
		&cli.BoolFlag{
			Name:  "capture-on-success",
			Usage: "Save a screenshot after passing scenarios too",
		},
		&cli.BoolFlag{
			Name:  "allure",
			Usage: "Also write allure-results/",
		},
		&cli.StringFlag{
			Name:    "metrics-file",
			Usage:   "Write Prometheus metrics to this textfile (node-exporter collector)",
			EnvVars: []string{"JOURNEY_METRICS_FILE"},
		},
	),
	Action: runScenarios,
}

// RunConfig holds everything a run needs, resolved from flags, the
// environment and the config file.
type RunConfig struct {
	Config    *config.Config
	Targets   []string          // scenario names, files or folders
	Env       map[string]string // -e values for ${env:NAME}
	OutputDir string            // Final resolved output directory

	NoPostDelay      bool
	CaptureOnSuccess bool
	Allure           bool
	MetricsFile      string

	NoANSI    bool
	Verbose   bool
	LogFormat string
}

func runScenarios(c *cli.Context) error {
	cfg, err := loadSettings(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	base := c.String("output")
	if base == "" {
		base = cfg.OutputDir
	}
	outputDir, err := resolveOutputDir(base, c.Bool("flatten"), c.IsSet("output"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	rc := &RunConfig{
		Config:           cfg,
		Targets:          c.Args().Slice(),
		Env:              parseEnvVars(c.StringSlice("env")),
		OutputDir:        outputDir,
		NoPostDelay:      c.Bool("no-post-delay"),
		CaptureOnSuccess: c.Bool("capture-on-success"),
		Allure:           c.Bool("allure"),
		MetricsFile:      c.String("metrics-file"),
		NoANSI:           c.Bool("no-ansi"),
		Verbose:          c.Bool("verbose"),
		LogFormat:        c.String("log-format"),
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return executeRun(ctx, rc, c.App.Writer)
}

// loadSettings layers flags over JOURNEY_* variables over the config file
// over defaults.
func loadSettings(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ApplyEnv(os.Environ()); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if c.IsSet("driver") {
		cfg.Driver = strings.ToLower(c.String("driver"))
	}
	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("driver-path") {
		cfg.DriverPath = c.String("driver-path")
	}
	if c.IsSet("remote-url") {
		cfg.RemoteURL = c.String("remote-url")
	}
	if c.IsSet("headless") {
		cfg.Headless = c.Bool("headless")
	}
	if c.IsSet("include-tags") {
		cfg.IncludeTags = c.StringSlice("include-tags")
	}
	if c.IsSet("exclude-tags") {
		cfg.ExcludeTags = c.StringSlice("exclude-tags")
	}

	durations := []struct {
		flag string
		dst  *config.Duration
	}{
		{"default-timeout", &cfg.DefaultTimeout},
		{"post-delay", &cfg.PostDelay},
		{"dialog-timeout", &cfg.DialogTimeout},
		{"teardown-delay", &cfg.TeardownDelay},
		{"poll-interval", &cfg.PollInterval},
	}
	for _, d := range durations {
		if !c.IsSet(d.flag) {
			continue
		}
		v, err := config.ParseDuration(c.String(d.flag))
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", d.flag, err)
		}
		*d.dst = config.Dur(v)
	}

	return cfg.WithDefaults(), nil
}

// resolveOutputDir determines the output directory based on flags.
// - default: <base>/<timestamp>/
// - --flatten: <base>/ (only with an explicit --output)
func resolveOutputDir(base string, flatten, explicit bool) (string, error) {
	if flatten && !explicit {
		return "", fmt.Errorf("--flatten requires --output to be specified")
	}
	if base == "" {
		base = config.DefaultOutputDir
	}
	if flatten {
		return filepath.Clean(base), nil
	}

	// Create timestamp-based subfolder
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(base, timestamp), nil
}

func executeRun(ctx context.Context, rc *RunConfig, out io.Writer) error {
	cfg := rc.Config

	// 1. Create output directory
	if err := os.MkdirAll(rc.OutputDir, 0o755); err != nil {
		return cli.Exit(fmt.Sprintf("failed to create output directory: %v", err), 1)
	}

	// 2. Initialize logging
	level := "info"
	if rc.Verbose {
		level = "debug"
	}
	logPath := filepath.Join(rc.OutputDir, "journey-runner.log")
	if err := logger.InitWithOptions(logger.Options{Path: logPath, Level: level, Format: rc.LogFormat}); err != nil {
		fmt.Fprintf(out, "Warning: Failed to initialize logger: %v\n", err)
	}
	defer logger.Close()

	logger.WithFields(map[string]interface{}{
		"output":  rc.OutputDir,
		"driver":  cfg.Driver,
		"baseUrl": cfg.BaseURL,
	}).Info("run started")

	// 3. Select and validate scenarios
	selected, err := selectScenarios(rc, out)
	if err != nil {
		logger.Error("scenario selection failed: %v", err)
		return cli.Exit(err.Error(), 1)
	}
	logger.Info("selected %d scenario(s)", len(selected))

	// 4. Execute
	launcher, err := newLauncher(cfg)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	console := report.NewConsole(out, rc.NoANSI)
	runner := executor.New(launcher, runnerConfig(rc, console))
	suite := runner.RunAll(ctx, selected)
	console.Summary(suite)
	logger.Info("run completed: %d passed, %d failed", suite.Passed, suite.Failed)

	// 5. Reports
	if err := writeReports(rc, suite, out); err != nil {
		fmt.Fprintf(out, "  Warning: %v\n", err)
		logger.Error("report generation failed: %v", err)
	}

	// Exit with code 1 if any scenario failed (summary already printed)
	if !suite.Success() {
		if ff := suite.FirstFailure(); ff != nil {
			return cli.Exit(fmt.Sprintf("%s: %s", ff.ScenarioName, ff.Reason), 1)
		}
		return cli.Exit("no scenarios ran", 1)
	}
	return nil
}

// selectScenarios resolves targets against the built-in catalog and the
// filesystem, applies tag filters and validates the result.
func selectScenarios(rc *RunConfig, out io.Writer) ([]flow.Scenario, error) {
	builtins, paths := resolveTargets(rc.Targets, rc.Config.Scenarios)

	v := validator.New(validator.Options{
		IncludeTags: rc.Config.IncludeTags,
		ExcludeTags: rc.Config.ExcludeTags,
		Roles:       rc.Config.Roles(),
		Library:     scenarios.Library(),
	})
	result := v.ValidateAll(builtins, paths)

	for _, w := range result.Warnings {
		fmt.Fprintf(out, "  ⚠ %v\n", w)
	}
	if !result.IsValid() {
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  ✗ %v\n", e)
		}
		return nil, fmt.Errorf("%d scenario error(s)", len(result.Errors))
	}
	if len(result.Scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios selected")
	}
	return result.Scenarios, nil
}

// resolveTargets splits targets into built-in scenarios and paths. With no
// targets the configured paths are used, and with neither the whole catalog.
func resolveTargets(targets, configured []string) ([]flow.Scenario, []string) {
	if len(targets) == 0 {
		targets = configured
	}
	if len(targets) == 0 {
		return scenarios.Catalog(), nil
	}

	var builtins []flow.Scenario
	var paths []string
	for _, t := range targets {
		if s, ok := scenarios.Lookup(t); ok {
			builtins = append(builtins, s)
			continue
		}
		paths = append(paths, t)
	}
	return builtins, paths
}

// newLauncher creates the launcher for the configured driver.
func newLauncher(cfg *config.Config) (core.Launcher, error) {
	switch cfg.Driver {
	case config.DriverWebDriver:
		return webdriver.NewLauncher(), nil
	case config.DriverChromedp:
		return devtools.NewLauncher(), nil
	case config.DriverMock:
		accounts := mock.DemoAccounts()
		if len(cfg.Mock.Accounts) > 0 {
			accounts = make(map[string]mock.Account, len(cfg.Mock.Accounts))
			for role, acct := range cfg.Mock.Accounts {
				accounts[role] = mock.Account{Identifier: acct.Identifier, Secret: acct.Secret}
			}
		}
		return mock.DemoApp(cfg.BaseURL, mock.AppOptions{Accounts: accounts, ComplaintDialog: true}), nil
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}

func runnerConfig(rc *RunConfig, console *report.Console) executor.RunnerConfig {
	cfg := rc.Config

	creds := make(map[string]executor.Credential, len(cfg.Credentials))
	for role, c := range cfg.Credentials {
		creds[role] = executor.Credential{Identifier: c.Identifier, Secret: c.Secret}
	}

	env := rc.Env
	postDelay := cfg.PostDelay.Duration
	if postDelay == 0 {
		postDelay = -1 // configured as none; per-step settle periods still apply
	}
	artifacts := core.DefaultArtifactConfig(rc.OutputDir)
	artifacts.CaptureOnSuccess = rc.CaptureOnSuccess

	return executor.RunnerConfig{
		BaseURL:        cfg.BaseURL,
		DefaultTimeout: cfg.DefaultTimeout.Duration,
		PostDelay:      postDelay,
		NoPostDelay:    rc.NoPostDelay,
		DialogTimeout:  cfg.DialogTimeout.Duration,
		PollInterval:   cfg.PollInterval.Duration,
		TeardownDelay:  cfg.TeardownDelay.Duration,
		Credentials:    creds,
		Launch: core.LaunchConfig{
			DriverPath:  cfg.DriverPath,
			RemoteURL:   cfg.RemoteURL,
			BrowserArgs: cfg.BrowserArgs,
			Headless:    cfg.Headless,
		},
		Artifacts: artifacts,
		LookupEnv: func(name string) (string, bool) {
			if v, ok := env[name]; ok {
				return v, true
			}
			return os.LookupEnv(name)
		},
		OnScenarioStart: console.ScenarioStart,
		OnLog:           console.Log,
		OnScenarioEnd:   console.ScenarioEnd,
	}
}

func writeReports(rc *RunConfig, suite *core.SuiteResult, out io.Writer) error {
	rep := report.Build(suite, report.BuilderConfig{
		RunnerVersion: Version,
		DriverName:    rc.Config.Driver,
		BaseURL:       rc.Config.BaseURL,
	})

	fmt.Fprintln(out, "  Reports:")
	jsonPath, err := report.WriteJSON(rc.OutputDir, rep)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "    JSON:   %s\n", jsonPath)

	junitPath, err := report.WriteJUnit(rc.OutputDir, rep)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "    JUnit:  %s\n", junitPath)

	if rc.Allure {
		allureDir, err := report.WriteAllure(rc.OutputDir, rep)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "    Allure: %s\n", allureDir)
	}

	if rc.MetricsFile != "" {
		rec := metrics.NewRecorder()
		rec.ObserveSuite(suite)
		if err := rec.WriteTextfile(rc.MetricsFile); err != nil {
			return err
		}
		fmt.Fprintf(out, "    Metrics: %s\n", rc.MetricsFile)
	}
	fmt.Fprintln(out)
	return nil
}

// parseEnvVars parses KEY=VALUE pairs; entries without "=" are ignored.
func parseEnvVars(envs []string) map[string]string {
	result := make(map[string]string)
	for _, e := range envs {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		}
	}
	return result
}
