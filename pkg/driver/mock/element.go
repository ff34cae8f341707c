package mock

import (
	"context"
	"fmt"

	"github.com/automationqa/journey-runner/pkg/core"
)

// element is a handle to a node on one page load.
type element struct {
	s *Session
	n *Node
}

// check validates the handle. Callers hold e.s.mu.
func (e *element) check(action bool) error {
	if err := e.s.alive(); err != nil {
		return err
	}
	if e.n.detached || (action && e.n.StaleOnAction) {
		return core.ErrStale
	}
	return nil
}

func (e *element) IsVisible(ctx context.Context) (bool, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if err := e.check(false); err != nil {
		return false, err
	}
	return !e.n.Hidden, nil
}

func (e *element) IsInteractable(ctx context.Context) (bool, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if err := e.check(false); err != nil {
		return false, err
	}
	return !e.n.Hidden && !e.n.Disabled, nil
}

func (e *element) Click(ctx context.Context) error {
	e.s.mu.Lock()
	if err := e.check(true); err != nil {
		e.s.mu.Unlock()
		return err
	}
	if e.n.Hidden || e.n.Disabled {
		e.s.mu.Unlock()
		return fmt.Errorf("mock: element %s is not interactable", e.n.describe())
	}
	e.s.record("click %s", e.n.describe())
	hook := e.n.OnClick
	e.s.mu.Unlock()

	if hook != nil {
		hook(e.s)
	}
	return nil
}

func (e *element) SendText(ctx context.Context, text string) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if err := e.check(true); err != nil {
		return err
	}
	e.n.value += text
	e.s.record("type %s %q", e.n.describe(), text)
	return nil
}

func (e *element) SelectOptionByLabel(ctx context.Context, label string) error {
	e.s.mu.Lock()
	if err := e.check(true); err != nil {
		e.s.mu.Unlock()
		return err
	}
	found := false
	for _, o := range e.n.Options {
		if o == label {
			found = true
			break
		}
	}
	if !found {
		e.s.mu.Unlock()
		return fmt.Errorf("%w: option %q in %s", core.ErrNotFound, label, e.n.describe())
	}
	e.n.selected = label
	e.s.record("select %s %q", e.n.describe(), label)
	hook := e.n.OnSelect
	e.s.mu.Unlock()

	if hook != nil {
		hook(e.s, label)
	}
	return nil
}
