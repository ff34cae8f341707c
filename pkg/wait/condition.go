// Package wait evaluates conditions over live browser state and polls them
// against a timeout.
package wait

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/automationqa/journey-runner/pkg/core"
	"github.com/automationqa/journey-runner/pkg/flow"
)

// Result is what a satisfied condition yields: the resolved element for
// element conditions, the observed value (address, dialog text) otherwise.
type Result struct {
	Element core.Element
	Value   string
}

// CheckFunc evaluates a condition once. It returns ok=false while the
// condition does not hold yet, and an error only when polling cannot continue.
type CheckFunc func(ctx context.Context, s core.Session) (res Result, ok bool, err error)

// Condition is a named, stateless predicate over session state. The same
// Condition may be evaluated any number of times and across runs.
type Condition struct {
	Description string
	Check       CheckFunc
}

func (c Condition) String() string { return c.Description }

// transient reports whether a driver error means "not yet" rather than failure.
func transient(err error) bool {
	return errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrStale)
}

func elementCondition(desc string, loc flow.Locator, probe func(ctx context.Context, el core.Element) (bool, error)) Condition {
	return Condition{
		Description: desc,
		Check: func(ctx context.Context, s core.Session) (Result, bool, error) {
			el, err := s.Find(ctx, loc)
			if err != nil {
				if transient(err) {
					return Result{}, false, nil
				}
				return Result{}, false, err
			}
			if probe != nil {
				ok, err := probe(ctx, el)
				if err != nil {
					if transient(err) {
						return Result{}, false, nil
					}
					return Result{}, false, err
				}
				if !ok {
					return Result{}, false, nil
				}
			}
			return Result{Element: el}, true, nil
		},
	}
}

// Present holds when an element matching loc exists in the document.
func Present(loc flow.Locator) Condition {
	return elementCondition(loc.Describe()+" present", loc, nil)
}

// Visible holds when the element exists and is displayed.
func Visible(loc flow.Locator) Condition {
	return elementCondition(loc.Describe()+" visible", loc, func(ctx context.Context, el core.Element) (bool, error) {
		return el.IsVisible(ctx)
	})
}

// Clickable holds when the element exists, is displayed and is enabled.
func Clickable(loc flow.Locator) Condition {
	return elementCondition(loc.Describe()+" clickable", loc, func(ctx context.Context, el core.Element) (bool, error) {
		visible, err := el.IsVisible(ctx)
		if err != nil || !visible {
			return false, err
		}
		return el.IsInteractable(ctx)
	})
}

// AddressContains holds when the current address contains sub. The
// satisfying address is returned as the result value.
func AddressContains(sub string) Condition {
	return Condition{
		Description: fmt.Sprintf("address contains %q", sub),
		Check: func(ctx context.Context, s core.Session) (Result, bool, error) {
			addr, err := s.CurrentAddress(ctx)
			if err != nil {
				return Result{}, false, err
			}
			return Result{Value: addr}, strings.Contains(addr, sub), nil
		},
	}
}

// DialogPresent holds when a native dialog is open. The dialog text is
// returned as the result value when the driver can read it.
func DialogPresent() Condition {
	return Condition{
		Description: "dialog present",
		Check: func(ctx context.Context, s core.Session) (Result, bool, error) {
			open, err := s.DialogPresent(ctx)
			if err != nil || !open {
				return Result{}, false, err
			}
			text, err := s.DialogText(ctx)
			if errors.Is(err, core.ErrNoDialog) {
				return Result{}, false, nil
			}
			if err != nil {
				return Result{}, false, err
			}
			return Result{Value: text}, true, nil
		},
	}
}

// Compile turns a declarative condition into an executable one.
func Compile(c flow.Condition) (Condition, error) {
	if err := c.Validate(); err != nil {
		return Condition{}, err
	}
	switch c.Type {
	case flow.CondClickable:
		return Clickable(c.Locator), nil
	case flow.CondVisible:
		return Visible(c.Locator), nil
	case flow.CondPresent:
		return Present(c.Locator), nil
	case flow.CondAddressContains:
		return AddressContains(c.Substring), nil
	case flow.CondDialogPresent:
		return DialogPresent(), nil
	default:
		return Condition{}, fmt.Errorf("unknown condition type %q", c.Type)
	}
}
