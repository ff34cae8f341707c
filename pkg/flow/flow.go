// Package flow holds the declarative definitions interpreted by the engine:
// locators, conditions, steps, flows, and scenarios.
package flow

import (
	"fmt"
	"time"
)

// Flow is a named, reusable ordered list of steps. It has no execution
// context of its own and borrows the enclosing scenario's session.
type Flow struct {
	Name        string
	Description string
	Steps       []Step
}

// Checkpoint is a required condition that verifies the journey's contract.
type Checkpoint struct {
	Name      string
	Condition Condition
	// Timeout bounds the wait. Zero uses the runner's default timeout.
	Timeout time.Duration
}

// Describe returns a human-readable description.
func (c Checkpoint) Describe() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Condition.Describe()
}

// Item is one entry of a scenario: exactly one of Step, Flow, Checkpoint is set.
type Item struct {
	Step       *Step
	Flow       *Flow
	Checkpoint *Checkpoint
}

// Do wraps a step as a scenario item.
func Do(s Step) Item { return Item{Step: &s} }

// Use composes a flow into a scenario.
func Use(f Flow) Item { return Item{Flow: &f} }

// Verify adds a checkpoint to a scenario.
func Verify(name string, c Condition) Item {
	return Item{Checkpoint: &Checkpoint{Name: name, Condition: c}}
}

// Scenario is one full end-to-end journey.
type Scenario struct {
	Name        string
	Description string
	Tags        []string
	SourcePath  string // empty for built-in scenarios
	Items       []Item
}

// UnitKind distinguishes executable units.
type UnitKind string

// Unit kinds.
const (
	UnitStep       UnitKind = "step"
	UnitCheckpoint UnitKind = "checkpoint"
)

// Unit is one executable entry after flows are expanded in place.
type Unit struct {
	Index      int
	Kind       UnitKind
	Flow       string // name of the flow the step came from, if any
	Step       *Step
	Checkpoint *Checkpoint
}

// Name returns the step or checkpoint name.
func (u Unit) Name() string {
	if u.Kind == UnitCheckpoint {
		return u.Checkpoint.Describe()
	}
	return u.Step.Describe()
}

// Units expands flows in place and returns the linear execution order.
func (s Scenario) Units() []Unit {
	var units []Unit
	add := func(u Unit) {
		u.Index = len(units)
		units = append(units, u)
	}
	for _, item := range s.Items {
		switch {
		case item.Step != nil:
			st := *item.Step
			add(Unit{Kind: UnitStep, Step: &st})
		case item.Flow != nil:
			for i := range item.Flow.Steps {
				st := item.Flow.Steps[i]
				add(Unit{Kind: UnitStep, Flow: item.Flow.Name, Step: &st})
			}
		case item.Checkpoint != nil:
			cp := *item.Checkpoint
			add(Unit{Kind: UnitCheckpoint, Checkpoint: &cp})
		}
	}
	return units
}

// Validate checks every item of the scenario.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario has no name")
	}
	if len(s.Items) == 0 {
		return fmt.Errorf("scenario %q has no steps", s.Name)
	}
	for i, item := range s.Items {
		set := 0
		if item.Step != nil {
			set++
			if err := item.Step.Validate(); err != nil {
				return fmt.Errorf("scenario %q item %d: %w", s.Name, i, err)
			}
		}
		if item.Flow != nil {
			set++
			if len(item.Flow.Steps) == 0 {
				return fmt.Errorf("scenario %q item %d: flow %q has no steps", s.Name, i, item.Flow.Name)
			}
			for _, st := range item.Flow.Steps {
				if err := st.Validate(); err != nil {
					return fmt.Errorf("scenario %q flow %q: %w", s.Name, item.Flow.Name, err)
				}
			}
		}
		if item.Checkpoint != nil {
			set++
			if err := item.Checkpoint.Condition.Validate(); err != nil {
				return fmt.Errorf("scenario %q checkpoint %q: %w", s.Name, item.Checkpoint.Describe(), err)
			}
		}
		if set != 1 {
			return fmt.Errorf("scenario %q item %d: want exactly one of step, flow, checkpoint", s.Name, i)
		}
	}
	return nil
}

// Credentials returns the roles whose credentials the scenario types.
func (s Scenario) Credentials() []string {
	seen := make(map[string]bool)
	var roles []string
	for _, u := range s.Units() {
		if u.Step == nil {
			continue
		}
		for _, a := range u.Step.Actions {
			if a.Credential != nil && !seen[a.Credential.Role] {
				seen[a.Credential.Role] = true
				roles = append(roles, a.Credential.Role)
			}
		}
	}
	return roles
}

// ShouldInclude checks if a scenario matches tag filters.
func ShouldInclude(s Scenario, includeTags, excludeTags []string) bool {
	if len(includeTags) > 0 {
		hasTag := false
		for _, tag := range s.Tags {
			for _, include := range includeTags {
				if tag == include {
					hasTag = true
					break
				}
			}
		}
		if !hasTag {
			return false
		}
	}

	for _, tag := range s.Tags {
		for _, exclude := range excludeTags {
			if tag == exclude {
				return false
			}
		}
	}

	return true
}
