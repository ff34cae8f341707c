package wait

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/automationqa/journey-runner/pkg/core"
	"github.com/automationqa/journey-runner/pkg/driver/mock"
	"github.com/automationqa/journey-runner/pkg/flow"
)

func session(t *testing.T, nodes ...*mock.Node) *mock.Session {
	t.Helper()
	b := mock.NewBrowser("http://app.test")
	b.AddPage(&mock.Page{Path: "/", Nodes: nodes})
	s, err := b.Launch(context.Background(), core.LaunchConfig{})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	ms := s.(*mock.Session)
	if err := ms.Navigate(context.Background(), "http://app.test/"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	return ms
}

func TestWait_SatisfiedImmediately(t *testing.T) {
	s := session(t, mock.Input("email"))
	w := New(10 * time.Millisecond)

	out := w.Wait(context.Background(), s, Visible(flow.Name("email")), time.Second)
	if !out.Satisfied() {
		t.Fatalf("status = %s, want satisfied", out.Status)
	}
	if out.Polls != 1 {
		t.Errorf("Polls = %d, want 1", out.Polls)
	}
	if out.Result.Element == nil {
		t.Error("expected resolved element")
	}
}

func TestWait_SatisfiedAfterRender(t *testing.T) {
	s := session(t, &mock.Node{Tag: "input", Name: "late", AppearAfter: 40 * time.Millisecond})
	w := New(10 * time.Millisecond)

	out := w.Wait(context.Background(), s, Present(flow.Name("late")), time.Second)
	if !out.Satisfied() {
		t.Fatalf("status = %s, want satisfied", out.Status)
	}
	if out.Polls < 2 {
		t.Errorf("Polls = %d, want >= 2", out.Polls)
	}
	if out.Elapsed < 30*time.Millisecond || out.Elapsed > 500*time.Millisecond {
		t.Errorf("Elapsed = %v", out.Elapsed)
	}
}

func TestWait_TimesOut(t *testing.T) {
	s := session(t)
	w := New(10 * time.Millisecond)

	start := time.Now()
	out := w.Wait(context.Background(), s, Clickable(flow.Name("missing")), 50*time.Millisecond)
	if out.Status != TimedOut {
		t.Fatalf("status = %s, want timed out", out.Status)
	}
	if out.Err != nil {
		t.Errorf("timeout should carry no error, got %v", out.Err)
	}
	elapsed := time.Since(start)
	if elapsed < 50*time.Millisecond {
		t.Errorf("returned after %v, before the timeout", elapsed)
	}
	// Polls are paced, not spun.
	if out.Polls > 10 {
		t.Errorf("Polls = %d, expected bounded polling", out.Polls)
	}
}

func TestWait_HiddenIsNotVisible(t *testing.T) {
	s := session(t, &mock.Node{Tag: "button", Text: "Close", Hidden: true})
	w := New(5 * time.Millisecond)

	if out := w.Wait(context.Background(), s, Visible(flow.Text("button", "Close")), 20*time.Millisecond); out.Satisfied() {
		t.Error("hidden element satisfied visible")
	}
	if out := w.Wait(context.Background(), s, Present(flow.Text("button", "Close")), 20*time.Millisecond); !out.Satisfied() {
		t.Error("hidden element should still be present")
	}
}

func TestWait_DisabledIsNotClickable(t *testing.T) {
	s := session(t, &mock.Node{Tag: "button", Text: "Submit", Disabled: true})
	w := New(5 * time.Millisecond)

	out := w.Wait(context.Background(), s, Clickable(flow.Text("button", "Submit")), 20*time.Millisecond)
	if out.Status != TimedOut {
		t.Errorf("status = %s, want timed out", out.Status)
	}
}

func TestWait_AddressContains(t *testing.T) {
	s := session(t)
	s.GoAfter("/dashboard", 30*time.Millisecond)
	w := New(10 * time.Millisecond)

	out := w.Wait(context.Background(), s, AddressContains("dashboard"), time.Second)
	if !out.Satisfied() {
		t.Fatalf("status = %s", out.Status)
	}
	if out.Result.Value != "http://app.test/dashboard" {
		t.Errorf("Value = %q", out.Result.Value)
	}
}

func TestWait_DialogPresent(t *testing.T) {
	s := session(t)
	s.ShowDialog("Complaint submitted successfully!", 20*time.Millisecond, nil, nil)
	w := New(5 * time.Millisecond)

	out := w.Wait(context.Background(), s, DialogPresent(), time.Second)
	if !out.Satisfied() {
		t.Fatalf("status = %s", out.Status)
	}
	if out.Result.Value != "Complaint submitted successfully!" {
		t.Errorf("Value = %q", out.Result.Value)
	}
}

func TestWait_AbortsOnDriverError(t *testing.T) {
	b := mock.NewBrowser("")
	b.FindErr = errors.New("session deleted because of page crash")
	s, _ := b.Launch(context.Background(), core.LaunchConfig{})
	w := New(5 * time.Millisecond)

	out := w.Wait(context.Background(), s, Present(flow.Name("x")), time.Second)
	if out.Status != Aborted {
		t.Fatalf("status = %s, want aborted", out.Status)
	}
	if out.Err == nil || out.Polls != 1 {
		t.Errorf("Err = %v, Polls = %d", out.Err, out.Polls)
	}
}

func TestWait_Cancelled(t *testing.T) {
	s := session(t)
	w := New(10 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	start := time.Now()
	out := w.Wait(ctx, s, Present(flow.Name("never")), 10*time.Second)
	if out.Status != Cancelled {
		t.Fatalf("status = %s, want cancelled", out.Status)
	}
	if !errors.Is(out.Err, context.Canceled) {
		t.Errorf("Err = %v", out.Err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("cancellation was not prompt")
	}
}

func TestWait_PollsUntilSatisfied(t *testing.T) {
	calls := 0
	cond := Condition{Description: "flaky", Check: func(ctx context.Context, s core.Session) (Result, bool, error) {
		calls++
		if calls < 3 {
			return Result{}, false, nil
		}
		return Result{Value: "ok"}, true, nil
	}}
	w := New(5 * time.Millisecond)
	out := w.Wait(context.Background(), nil, cond, time.Second)
	if !out.Satisfied() || out.Polls != 3 {
		t.Errorf("status = %s polls = %d", out.Status, out.Polls)
	}
}

func TestCompile(t *testing.T) {
	tests := []struct {
		in   flow.Condition
		desc string
	}{
		{flow.Clickable(flow.Name("a")), `name="a" clickable`},
		{flow.Visible(flow.Name("a")), `name="a" visible`},
		{flow.Present(flow.Name("a")), `name="a" present`},
		{flow.AddressContains("login"), `address contains "login"`},
		{flow.DialogPresent(), "dialog present"},
	}
	for _, tt := range tests {
		c, err := Compile(tt.in)
		if err != nil {
			t.Errorf("Compile(%v): %v", tt.in, err)
			continue
		}
		if c.String() != tt.desc {
			t.Errorf("Description = %q, want %q", c.String(), tt.desc)
		}
	}

	if _, err := Compile(flow.Condition{Type: "hovered"}); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := Compile(flow.Visible(flow.Name(""))); err == nil {
		t.Error("expected error for empty locator")
	}
}

func TestNew_DefaultInterval(t *testing.T) {
	if got := New(0).Interval(); got != DefaultInterval {
		t.Errorf("Interval() = %v, want %v", got, DefaultInterval)
	}
}
