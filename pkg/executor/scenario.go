package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/automationqa/journey-runner/pkg/core"
	"github.com/automationqa/journey-runner/pkg/flow"
	"github.com/automationqa/journey-runner/pkg/logger"
	"github.com/automationqa/journey-runner/pkg/wait"
)

// execution is the state of one scenario run.
type execution struct {
	runner   *Runner
	scenario flow.Scenario
	session  core.Session
	result   *core.RunResult
	vars     expander
}

func (e *execution) config() *RunnerConfig { return &e.runner.config }

// log appends an entry to the run's log stream.
func (e *execution) log(level core.LogLevel, step, format string, args ...interface{}) {
	entry := core.LogEntry{
		Time:    time.Now(),
		Level:   level,
		Step:    step,
		Message: fmt.Sprintf(format, args...),
	}
	e.result.Log = append(e.result.Log, entry)
	if cb := e.config().OnLog; cb != nil {
		cb(e.scenario.Name, entry)
	}
}

// preflight rejects scenarios that cannot run before a browser is started.
func (e *execution) preflight() error {
	if err := e.scenario.Validate(); err != nil {
		return core.ErrInvalidScenario.WithCause(err)
	}
	for _, role := range e.scenario.Credentials() {
		if _, ok := e.config().Credentials[role]; !ok {
			return core.ErrMissingCredential.WithMessage(fmt.Sprintf("no credential configured for role %q", role))
		}
	}
	return nil
}

// run executes every unit in declared order until the first failure.
func (e *execution) run(ctx context.Context) {
	current := ""
	isCheckpoint := false
	defer func() {
		if v := recover(); v != nil {
			logger.Error("scenario %s: panic in %q: %v", e.scenario.Name, current, v)
			e.fail(current, isCheckpoint, core.ErrActionFailed.WithMessage("unexpected error").WithCause(recovered(v)))
		}
	}()

	for _, u := range e.scenario.Units() {
		current = u.Name()
		isCheckpoint = u.Kind == flow.UnitCheckpoint
		if ctx.Err() != nil {
			e.fail(current, isCheckpoint, core.ErrCancelled.WithCause(ctx.Err()))
			return
		}

		var sr core.StepResult
		var err error
		if isCheckpoint {
			sr, err = e.runCheckpoint(ctx, u)
		} else {
			sr, err = e.runStep(ctx, u)
		}
		sr.Duration = time.Since(sr.StartTime)
		if err != nil {
			sr.Status = core.StatusFailed
			if !core.IsCategory(err, core.ErrCategoryTimeout) && !core.IsCategory(err, core.ErrCategoryAssertion) {
				sr.Status = core.StatusErrored
			}
			sr.Category = core.CategoryOf(err)
			sr.Error = err.Error()
		}
		e.result.Steps = append(e.result.Steps, sr)
		if cb := e.config().OnStepComplete; cb != nil {
			cb(e.scenario.Name, sr)
		}
		if err != nil {
			e.fail(current, isCheckpoint, err)
			return
		}
		if !isCheckpoint {
			e.result.LastCompletedStep = current
		}
	}

	if addr, err := e.session.CurrentAddress(ctx); err == nil {
		e.result.LastAddress = addr
	}
}

func newStepResult(u flow.Unit) core.StepResult {
	sr := core.StepResult{
		Index:     u.Index,
		Name:      u.Name(),
		Kind:      string(u.Kind),
		Flow:      u.Flow,
		Status:    core.StatusRunning,
		StartTime: time.Now(),
	}
	if u.Step != nil {
		sr.Optional = u.Step.Optional
	}
	return sr
}

// timeoutFor picks the wait bound for a step.
func (e *execution) timeoutFor(st *flow.Step) time.Duration {
	switch {
	case st.Timeout > 0:
		return st.Timeout
	case st.Optional && st.Condition != nil && st.Condition.Type == flow.CondDialogPresent:
		return e.config().DialogTimeout
	default:
		return e.config().DefaultTimeout
	}
}

// runStep waits for the step's condition, performs its actions, then settles.
func (e *execution) runStep(ctx context.Context, u flow.Unit) (core.StepResult, error) {
	st := u.Step
	name := u.Name()
	sr := newStepResult(u)

	var target core.Element
	var observed string

	switch {
	case st.Condition != nil:
		cond, err := wait.Compile(*st.Condition)
		if err != nil {
			return sr, core.ErrInvalidScenario.At(name, 0, "").WithCause(err)
		}
		timeout := e.timeoutFor(st)
		out := e.runner.waiter.Wait(ctx, e.session, cond, timeout)
		sr.Waited = out.Elapsed
		switch out.Status {
		case wait.Satisfied:
			target = out.Result.Element
			observed = out.Result.Value
			if target == nil && st.Target != nil && needsElement(st.Actions) {
				el, skipped, err := e.findTarget(ctx, &sr, st, name)
				if err != nil || skipped {
					return sr, err
				}
				target = el
			}
		case wait.TimedOut:
			if st.Optional {
				e.skip(&sr, name, cond, timeout)
				return sr, nil
			}
			return sr, core.ErrStepTimeout.At(name, out.Elapsed, e.address(ctx)).
				WithCause(fmt.Errorf("%s not satisfied within %s", cond, timeout))
		case wait.Cancelled:
			return sr, core.ErrCancelled.At(name, out.Elapsed, "").WithCause(out.Err)
		default:
			return sr, actionError(out.Err).At(name, out.Elapsed, e.address(ctx))
		}

	case needsElement(st.Actions):
		el, skipped, err := e.findTarget(ctx, &sr, st, name)
		if err != nil || skipped {
			return sr, err
		}
		target = el
	}

	for _, a := range st.Actions {
		if err := e.perform(ctx, &sr, a, target, observed); err != nil {
			return sr, actionError(err).At(name, sr.Waited, e.address(ctx))
		}
	}

	delay := e.config().PostDelay
	if st.PostDelay != nil && !e.config().NoPostDelay {
		delay = *st.PostDelay
	}
	if err := sleep(ctx, delay); err != nil {
		return sr, core.ErrCancelled.At(name, sr.Waited, "").WithCause(err)
	}

	sr.Status = core.StatusPassed
	if sr.Message == "" {
		sr.Message = describeActions(st)
	}
	e.log(core.LevelPass, name, "%s", sr.Message)
	return sr, nil
}

// findTarget queries the step's target once. An optional step whose target
// is absent is skipped.
func (e *execution) findTarget(ctx context.Context, sr *core.StepResult, st *flow.Step, name string) (core.Element, bool, error) {
	el, err := e.session.Find(ctx, *st.Target)
	if errors.Is(err, core.ErrNotFound) && st.Optional {
		sr.Status = core.StatusSkipped
		sr.Message = fmt.Sprintf("%s not present", st.Target.Describe())
		e.log(core.LevelInfo, name, "%s, skipped", sr.Message)
		return nil, true, nil
	}
	if err != nil {
		return nil, false, actionError(err).At(name, sr.Waited, e.address(ctx))
	}
	return el, false, nil
}

// skip records an optional step whose condition never held. This is an
// expected outcome and is only logged at INFO.
func (e *execution) skip(sr *core.StepResult, name string, cond wait.Condition, timeout time.Duration) {
	sr.Status = core.StatusSkipped
	if cond.Description == "dialog present" {
		sr.Message = "no dialog present"
	} else {
		sr.Message = fmt.Sprintf("%s not satisfied within %s, skipped", cond, timeout)
	}
	e.log(core.LevelInfo, name, "%s", sr.Message)
}

// runCheckpoint evaluates a required condition with no actions.
func (e *execution) runCheckpoint(ctx context.Context, u flow.Unit) (core.StepResult, error) {
	cp := u.Checkpoint
	name := u.Name()
	sr := newStepResult(u)

	cond, err := wait.Compile(cp.Condition)
	if err != nil {
		return sr, core.ErrInvalidScenario.At(name, 0, "").WithCause(err)
	}
	timeout := cp.Timeout
	if timeout <= 0 {
		timeout = e.config().DefaultTimeout
	}

	out := e.runner.waiter.Wait(ctx, e.session, cond, timeout)
	sr.Waited = out.Elapsed
	switch out.Status {
	case wait.Satisfied:
		sr.Status = core.StatusPassed
		sr.Message = fmt.Sprintf("checkpoint %s: %s", name, cond)
		if out.Result.Value != "" {
			sr.Address = out.Result.Value
		}
		e.log(core.LevelPass, name, "%s", sr.Message)
		return sr, nil
	case wait.TimedOut:
		return sr, core.ErrAssertionFailed.At(name, out.Elapsed, e.address(ctx)).
			WithCause(fmt.Errorf("%s not satisfied within %s", cond, timeout))
	case wait.Cancelled:
		return sr, core.ErrCancelled.At(name, out.Elapsed, "").WithCause(out.Err)
	default:
		return sr, actionError(out.Err).At(name, out.Elapsed, e.address(ctx))
	}
}

// address reads the current address for diagnostics, falling back to the
// last one seen. It never blocks on a cancelled ctx.
func (e *execution) address(ctx context.Context) string {
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if addr, err := e.session.CurrentAddress(actx); err == nil {
		e.result.LastAddress = addr
	}
	return e.result.LastAddress
}

// fail records the run's failure. Only the first failure is kept.
func (e *execution) fail(step string, checkpoint bool, err error) {
	res := e.result
	if res.Outcome == core.OutcomeFailed {
		return
	}
	res.Outcome = core.OutcomeFailed
	res.Err = err
	res.Reason = err.Error()
	res.Category = core.CategoryOf(err)
	res.FailingStep = step
	if checkpoint {
		res.FailedCheckpoint = step
	}
	var ee *core.ExecutionError
	if errors.As(err, &ee) {
		res.Elapsed = ee.Elapsed
		if ee.Address != "" {
			res.LastAddress = ee.Address
		}
	}
	e.log(core.LevelFail, step, "%s", res.Reason)
	logger.Error("scenario %s failed: %s", e.scenario.Name, res.Reason)
}

// captureFailure saves a screenshot of a failed run when the session supports it.
func (e *execution) captureFailure(ctx context.Context) {
	art := e.config().Artifacts
	if !art.ShouldCapture(e.result.Outcome) {
		return
	}
	shooter, ok := e.session.(core.Screenshotter)
	if !ok {
		return
	}
	name := "failure.png"
	if e.result.Passed() {
		name = "final.png"
	}
	png, err := shooter.Screenshot(ctx)
	if err != nil {
		logger.Warn("scenario %s: screenshot failed: %v", e.scenario.Name, err)
		return
	}
	path, err := art.Save(e.scenario.Name, name, png)
	if err != nil {
		logger.Warn("scenario %s: saving screenshot failed: %v", e.scenario.Name, err)
		return
	}
	e.result.Attachments = append(e.result.Attachments, core.NewScreenshotAttachment(path, png))
	e.log(core.LevelInfo, "", "screenshot saved to %s", path)
}

// actionError classifies a driver error raised while acting or polling.
func actionError(err error) *core.ExecutionError {
	var ee *core.ExecutionError
	if errors.As(err, &ee) {
		return ee
	}
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return core.ErrCancelled.WithCause(err)
	case errors.Is(err, core.ErrStale):
		return core.ErrStaleElement.WithCause(err)
	default:
		return core.ErrActionFailed.WithCause(err)
	}
}
