// Package executor runs scenarios against a browser session: it owns the
// session lifecycle, executes steps and checkpoints in order, and
// guarantees teardown on every exit path.
package executor

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/automationqa/journey-runner/pkg/core"
	"github.com/automationqa/journey-runner/pkg/flow"
	"github.com/automationqa/journey-runner/pkg/logger"
	"github.com/automationqa/journey-runner/pkg/wait"
)

// Defaults applied by New for zero-valued settings.
const (
	DefaultTimeout         = 15 * time.Second
	DefaultPostDelay       = time.Second
	DefaultDialogTimeout   = 3 * time.Second
	DefaultTeardownTimeout = 30 * time.Second
)

// Credential is one role's login.
type Credential struct {
	Identifier string
	Secret     string
}

// RunnerConfig configures the scenario runner.
type RunnerConfig struct {
	BaseURL string

	DefaultTimeout time.Duration // Wait bound for steps and checkpoints without their own
	PostDelay      time.Duration // Settle period after each step's actions; zero selects the default, negative means none
	NoPostDelay    bool          // Disable every settle period, including per-step ones
	DialogTimeout  time.Duration // Wait bound for optional dialog steps without their own
	PollInterval   time.Duration // Waiter cadence

	TeardownDelay   time.Duration // Pause before quitting the browser
	TeardownTimeout time.Duration // Bound on screenshot capture and Quit

	Credentials map[string]Credential
	Launch      core.LaunchConfig
	Artifacts   core.ArtifactConfig

	// LookupEnv resolves ${env:NAME}. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)

	// Live progress callbacks
	OnScenarioStart func(idx, total int, name string)
	OnLog           func(scenario string, entry core.LogEntry)
	OnStepComplete  func(scenario string, step core.StepResult)
	OnScenarioEnd   func(result *core.RunResult)
	OnStateChange   func(state State)
}

// Runner executes scenarios one at a time. Each Run owns exactly one
// browser session, which is released before Run returns.
type Runner struct {
	config   RunnerConfig
	launcher core.Launcher
	waiter   *wait.Waiter

	runMu   sync.Mutex // held for a whole run: one live session per runner
	stateMu sync.Mutex
	state   State
}

// New creates a new Runner.
func New(launcher core.Launcher, cfg RunnerConfig) *Runner {
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = DefaultTimeout
	}
	if cfg.PostDelay == 0 && !cfg.NoPostDelay {
		cfg.PostDelay = DefaultPostDelay
	}
	if cfg.NoPostDelay || cfg.PostDelay < 0 {
		cfg.PostDelay = 0
	}
	if cfg.DialogTimeout <= 0 {
		cfg.DialogTimeout = DefaultDialogTimeout
	}
	if cfg.TeardownTimeout <= 0 {
		cfg.TeardownTimeout = DefaultTeardownTimeout
	}
	if cfg.LookupEnv == nil {
		cfg.LookupEnv = os.LookupEnv
	}
	return &Runner{
		config:   cfg,
		launcher: launcher,
		waiter:   wait.New(cfg.PollInterval),
	}
}

// State returns the runner's current lifecycle phase.
func (r *Runner) State() State {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.state
}

func (r *Runner) setState(s State) {
	r.stateMu.Lock()
	r.state = s
	r.stateMu.Unlock()
	if r.config.OnStateChange != nil {
		r.config.OnStateChange(s)
	}
}

// Run executes one scenario start to finish and returns its result.
// The session is quit on every path, including failures, panics and
// cancellation of ctx.
func (r *Runner) Run(ctx context.Context, s flow.Scenario) core.RunResult {
	return r.run(ctx, s, nil)
}

// run executes s. A non-nil abort fails the scenario in place of the
// launch, so no browser is started.
func (r *Runner) run(ctx context.Context, s flow.Scenario, abort error) (out core.RunResult) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	start := time.Now()
	res := &core.RunResult{
		ScenarioName: s.Name,
		RunID:        uuid.NewString(),
		Tags:         s.Tags,
		SourcePath:   s.SourcePath,
		Outcome:      core.OutcomePassed,
		StartTime:    start,
	}
	e := &execution{
		runner:   r,
		scenario: s,
		result:   res,
		vars:     newExpander(r.config.BaseURL, start, r.config.LookupEnv),
	}

	// Registered first so it runs after teardown.
	defer func() {
		res.Duration = time.Since(start)
		r.setState(StateTerminated)
		logger.Info("scenario %s finished: %s in %s", s.Name, res.Outcome, res.Duration.Round(time.Millisecond))
		if r.config.OnScenarioEnd != nil {
			r.config.OnScenarioEnd(res)
		}
		out = *res
	}()

	r.setState(StateSessionStarting)
	if err := e.preflight(); err != nil {
		e.fail("", false, err)
		return
	}
	if ctx.Err() != nil {
		e.fail("", false, core.ErrCancelled.WithCause(ctx.Err()))
		return
	}
	if abort != nil {
		e.fail("", false, abort)
		return
	}

	logger.Info("scenario %s: launching browser", s.Name)
	session, err := r.launcher.Launch(ctx, r.config.Launch)
	if err != nil {
		if ctx.Err() != nil {
			e.fail("", false, core.ErrCancelled.WithCause(err))
		} else {
			e.fail("", false, core.ErrLaunch.WithCause(err))
		}
		return
	}
	e.session = session
	defer r.teardown(ctx, e)

	r.setState(StateRunning)
	e.run(ctx)
	return
}

// teardown releases the session. It runs detached from ctx so a cancelled
// run still quits the browser.
func (r *Runner) teardown(ctx context.Context, e *execution) {
	r.setState(StateCompleting)
	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.config.TeardownTimeout)
	defer cancel()

	e.captureFailure(tctx)

	if d := r.config.TeardownDelay; d > 0 {
		// Interruptible: a cancelled run skips the settle pause, not the quit.
		_ = sleep(ctx, d)
	}

	if err := e.session.Quit(tctx); err != nil {
		logger.Warn("scenario %s: quit failed: %v", e.scenario.Name, err)
		e.log(core.LevelInfo, "", "browser quit reported: %v", err)
	}
	logger.Debug("scenario %s: session released", e.scenario.Name)
}

// RunAll runs scenarios sequentially, each in its own session. Once ctx is
// cancelled the remaining scenarios are reported as failed without launching.
// A launch failure is fatal to the run: later scenarios fail with ErrLaunch
// and the launcher is not called again.
func (r *Runner) RunAll(ctx context.Context, scenarios []flow.Scenario) *core.SuiteResult {
	suite := &core.SuiteResult{
		Name:      "journey-runner",
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	}
	var abort error
	for i, s := range scenarios {
		if r.config.OnScenarioStart != nil {
			r.config.OnScenarioStart(i, len(scenarios), s.Name)
		}
		res := r.run(ctx, s, abort)
		if abort == nil && res.Category == core.ErrCategoryLaunch {
			abort = core.ErrLaunch.WithCause(fmt.Errorf("not attempted after %s: %w", s.Name, res.Err))
		}
		suite.Scenarios = append(suite.Scenarios, res)
	}
	suite.Duration = time.Since(suite.StartTime)
	suite.ComputeSummary()
	return suite
}

// sleep waits for d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// recovered converts a panic value into an error.
func recovered(v interface{}) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", v)
}
