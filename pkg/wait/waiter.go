package wait

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/automationqa/journey-runner/pkg/core"
	"github.com/automationqa/journey-runner/pkg/logger"
)

// DefaultInterval is the polling cadence when none is configured.
const DefaultInterval = 250 * time.Millisecond

// Status is the result kind of a wait.
type Status int

const (
	Satisfied Status = iota // Condition held
	TimedOut                // Timeout elapsed first
	Aborted                 // Driver reported a non-transient error
	Cancelled               // Caller's context ended
)

// String returns the string representation of Status
func (s Status) String() string {
	switch s {
	case Satisfied:
		return "satisfied"
	case TimedOut:
		return "timed out"
	case Aborted:
		return "aborted"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome is the result of one Wait call.
type Outcome struct {
	Status  Status
	Result  Result
	Elapsed time.Duration
	Polls   int
	Err     error // set for Aborted and Cancelled
}

// Satisfied returns true if the condition held.
func (o Outcome) Satisfied() bool { return o.Status == Satisfied }

// Waiter polls conditions at a fixed cadence. A Waiter holds no per-wait
// state and may be shared by sequential waits.
type Waiter struct {
	interval time.Duration
}

// New creates a Waiter polling every interval (DefaultInterval when <= 0).
func New(interval time.Duration) *Waiter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Waiter{interval: interval}
}

// Interval returns the polling cadence.
func (w *Waiter) Interval() time.Duration { return w.interval }

// Wait evaluates cond until it holds or timeout elapses. It returns as soon
// as the condition is satisfied, sleeps between polls, and returns
// Cancelled promptly when ctx ends.
func (w *Waiter) Wait(ctx context.Context, s core.Session, cond Condition, timeout time.Duration) Outcome {
	start := time.Now()
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(w.interval), 1)
	limiter.Allow() // the first check runs immediately

	out := Outcome{}
	finish := func(st Status, err error) Outcome {
		out.Status = st
		out.Err = err
		out.Elapsed = time.Since(start)
		logger.Debug("wait %s: %s after %s (%d polls)", cond.Description, st, out.Elapsed.Round(time.Millisecond), out.Polls)
		return out
	}

	check := func(c context.Context) (bool, error) {
		out.Polls++
		res, ok, err := cond.Check(c, s)
		if ok {
			out.Result = res
		}
		return ok, err
	}

	for {
		ok, err := check(waitCtx)
		if ok {
			return finish(Satisfied, nil)
		}
		if err != nil {
			switch {
			case ctx.Err() != nil:
				return finish(Cancelled, ctx.Err())
			case waitCtx.Err() != nil:
				return finish(TimedOut, nil)
			default:
				return finish(Aborted, err)
			}
		}

		if err := limiter.Wait(waitCtx); err != nil {
			if ctx.Err() != nil {
				return finish(Cancelled, ctx.Err())
			}
			// The next poll would land past the deadline: sleep out the
			// remaining time, then take one last look.
			<-waitCtx.Done()
			if ctx.Err() != nil {
				return finish(Cancelled, ctx.Err())
			}
			last, lastCancel := context.WithTimeout(ctx, w.interval)
			ok, _ := check(last)
			lastCancel()
			if ok {
				return finish(Satisfied, nil)
			}
			return finish(TimedOut, nil)
		}
	}
}
