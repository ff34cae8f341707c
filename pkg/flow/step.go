package flow

import (
	"fmt"
	"time"
)

// ActionType is the kind of interaction an Action performs.
type ActionType string

// Action types.
const (
	ActionClick         ActionType = "click"
	ActionSendText      ActionType = "type"
	ActionSelect        ActionType = "select"
	ActionAcceptDialog  ActionType = "acceptDialog"
	ActionDismissDialog ActionType = "dismissDialog"
	ActionReadAddress   ActionType = "readAddress"
	ActionNavigate      ActionType = "navigate"
)

// CredentialField selects one half of a role's credential pair.
type CredentialField string

// Credential fields.
const (
	FieldIdentifier CredentialField = "identifier"
	FieldSecret     CredentialField = "secret"
)

// CredentialRef points at a configured credential instead of embedding it.
type CredentialRef struct {
	Role  string          `yaml:"role" json:"role"`
	Field CredentialField `yaml:"field" json:"field"`
}

// Action is one side-effecting interaction. Text carries the typed text,
// the option label, or the navigation path depending on Type.
type Action struct {
	Type       ActionType     `yaml:"type" json:"type"`
	Text       string         `yaml:"text,omitempty" json:"text,omitempty"`
	Credential *CredentialRef `yaml:"credential,omitempty" json:"credential,omitempty"`
}

// NeedsElement returns true if the action operates on a resolved element.
func (a Action) NeedsElement() bool {
	switch a.Type {
	case ActionClick, ActionSendText, ActionSelect:
		return true
	}
	return false
}

// Describe returns a human-readable description. Credential values are never shown.
func (a Action) Describe() string {
	switch {
	case a.Credential != nil:
		return fmt.Sprintf("%s %s.%s", a.Type, a.Credential.Role, a.Credential.Field)
	case a.Text != "":
		return fmt.Sprintf("%s %q", a.Type, a.Text)
	default:
		return string(a.Type)
	}
}

func (a Action) validate() error {
	switch a.Type {
	case ActionClick, ActionAcceptDialog, ActionDismissDialog, ActionReadAddress:
		return nil
	case ActionSendText:
		if a.Text == "" && a.Credential == nil {
			return fmt.Errorf("type action needs text or credential")
		}
		if a.Credential != nil && a.Credential.Role == "" {
			return fmt.Errorf("credential reference has no role")
		}
		if c := a.Credential; c != nil && c.Field != FieldIdentifier && c.Field != FieldSecret {
			return fmt.Errorf("unknown credential field %q", c.Field)
		}
		return nil
	case ActionSelect, ActionNavigate:
		if a.Text == "" {
			return fmt.Errorf("%s action needs text", a.Type)
		}
		return nil
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}

// ConditionType is the kind of predicate a Condition evaluates.
type ConditionType string

// Condition types.
const (
	CondClickable       ConditionType = "clickable"
	CondVisible         ConditionType = "visible"
	CondPresent         ConditionType = "present"
	CondAddressContains ConditionType = "addressContains"
	CondDialogPresent   ConditionType = "dialogPresent"
)

// Condition is the declarative form of a predicate over page state.
// The wait package compiles it into an executable check.
type Condition struct {
	Type      ConditionType `json:"type"`
	Locator   Locator       `json:"locator,omitempty"`
	Substring string        `json:"substring,omitempty"`
}

// Clickable holds when the element exists, is visible and enabled.
func Clickable(l Locator) Condition { return Condition{Type: CondClickable, Locator: l} }

// Visible holds when the element exists and is displayed.
func Visible(l Locator) Condition { return Condition{Type: CondVisible, Locator: l} }

// Present holds when the element exists in the DOM.
func Present(l Locator) Condition { return Condition{Type: CondPresent, Locator: l} }

// AddressContains holds when the current address contains sub.
func AddressContains(sub string) Condition {
	return Condition{Type: CondAddressContains, Substring: sub}
}

// DialogPresent holds when a native dialog is open.
func DialogPresent() Condition { return Condition{Type: CondDialogPresent} }

// ResolvesElement returns true if a satisfied condition yields an element.
func (c Condition) ResolvesElement() bool {
	switch c.Type {
	case CondClickable, CondVisible, CondPresent:
		return true
	}
	return false
}

// Describe returns a human-readable description.
func (c Condition) Describe() string {
	switch c.Type {
	case CondAddressContains:
		return fmt.Sprintf("address contains %q", c.Substring)
	case CondDialogPresent:
		return "dialog present"
	default:
		return fmt.Sprintf("%s %s", c.Locator.Describe(), c.Type)
	}
}

// Validate checks the condition is well formed.
func (c Condition) Validate() error {
	switch c.Type {
	case CondClickable, CondVisible, CondPresent:
		return c.Locator.Validate()
	case CondAddressContains:
		if c.Substring == "" {
			return fmt.Errorf("addressContains needs a substring")
		}
		return nil
	case CondDialogPresent:
		return nil
	default:
		return fmt.Errorf("unknown condition type %q", c.Type)
	}
}

// Step is one interaction unit: optional synchronization, actions, settle delay.
// Steps are built once at definition time and copied, never mutated.
type Step struct {
	Name     string
	Optional bool
	// Condition is waited on before the actions run. Nil means no wait.
	Condition *Condition
	// Target is queried directly when no condition resolves an element for the actions.
	Target *Locator
	// Timeout bounds the wait. Zero uses the runner's default timeout.
	Timeout time.Duration
	Actions []Action
	// PostDelay overrides the runner's settle delay when set.
	PostDelay *time.Duration
}

// Required reports whether a synchronization failure fails the scenario.
func (s Step) Required() bool { return !s.Optional }

// Describe returns a human-readable description.
func (s Step) Describe() string {
	if s.Name != "" {
		return s.Name
	}
	if len(s.Actions) > 0 {
		return s.Actions[0].Describe()
	}
	if s.Condition != nil {
		return s.Condition.Describe()
	}
	return "step"
}

// Validate checks that the step can be executed.
func (s Step) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("step has no name")
	}
	if s.Condition == nil && len(s.Actions) == 0 {
		return fmt.Errorf("step %q has neither condition nor actions", s.Name)
	}
	if s.Condition != nil {
		if err := s.Condition.Validate(); err != nil {
			return fmt.Errorf("step %q: %w", s.Name, err)
		}
	}
	if s.Target != nil {
		if err := s.Target.Validate(); err != nil {
			return fmt.Errorf("step %q: target: %w", s.Name, err)
		}
	}
	for _, a := range s.Actions {
		if err := a.validate(); err != nil {
			return fmt.Errorf("step %q: %w", s.Name, err)
		}
		if a.NeedsElement() && s.Target == nil && (s.Condition == nil || !s.Condition.ResolvesElement()) {
			return fmt.Errorf("step %q: %s needs an element but the step resolves none", s.Name, a.Type)
		}
	}
	if s.Timeout < 0 {
		return fmt.Errorf("step %q: negative timeout", s.Name)
	}
	return nil
}

// AsOptional returns a copy of the step marked optional.
func (s Step) AsOptional() Step {
	s.Optional = true
	return s
}

// WithTimeout returns a copy of the step with its own wait timeout.
func (s Step) WithTimeout(d time.Duration) Step {
	s.Timeout = d
	return s
}

// WithPostDelay returns a copy of the step with its own settle delay.
func (s Step) WithPostDelay(d time.Duration) Step {
	s.PostDelay = &d
	return s
}

// Click waits for the element to be clickable, then clicks it.
func Click(name string, l Locator) Step {
	c := Clickable(l)
	return Step{Name: name, Condition: &c, Actions: []Action{{Type: ActionClick}}}
}

// Fill waits for the element to be visible, then types text into it.
func Fill(name string, l Locator, text string) Step {
	c := Visible(l)
	return Step{Name: name, Condition: &c, Actions: []Action{{Type: ActionSendText, Text: text}}}
}

// Type queries the element once, without waiting, and types text into it.
func Type(name string, l Locator, text string) Step {
	return Step{Name: name, Target: &l, Actions: []Action{{Type: ActionSendText, Text: text}}}
}

// TypeCredential types a configured credential field for role.
func TypeCredential(name string, l Locator, role string, field CredentialField) Step {
	return Step{Name: name, Target: &l, Actions: []Action{{
		Type:       ActionSendText,
		Credential: &CredentialRef{Role: role, Field: field},
	}}}
}

// Press queries the element once, without waiting, and clicks it.
func Press(name string, l Locator) Step {
	return Step{Name: name, Target: &l, Actions: []Action{{Type: ActionClick}}}
}

// Choose waits for a select element to be visible and picks an option by label.
func Choose(name string, l Locator, label string) Step {
	c := Visible(l)
	return Step{Name: name, Condition: &c, Actions: []Action{{Type: ActionSelect, Text: label}}}
}

// Open navigates to path, joined onto the base URL when relative.
func Open(name, path string) Step {
	return Step{Name: name, Actions: []Action{{Type: ActionNavigate, Text: path}}}
}

// AwaitAddress waits for the address to contain sub and records it.
func AwaitAddress(name, sub string) Step {
	c := AddressContains(sub)
	return Step{Name: name, Condition: &c, Actions: []Action{{Type: ActionReadAddress}}}
}

// AcceptDialogIfPresent accepts a native dialog when one appears within timeout.
// A missing dialog is the expected common case and is only logged.
func AcceptDialogIfPresent(name string, timeout time.Duration) Step {
	c := DialogPresent()
	return Step{
		Name:      name,
		Optional:  true,
		Condition: &c,
		Timeout:   timeout,
		Actions:   []Action{{Type: ActionAcceptDialog}},
	}
}
