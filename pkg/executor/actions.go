package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/automationqa/journey-runner/pkg/core"
	"github.com/automationqa/journey-runner/pkg/flow"
)

func needsElement(actions []flow.Action) bool {
	for _, a := range actions {
		if a.NeedsElement() {
			return true
		}
	}
	return false
}

func describeActions(st *flow.Step) string {
	parts := make([]string, 0, len(st.Actions))
	for _, a := range st.Actions {
		parts = append(parts, a.Describe())
	}
	if len(parts) == 0 && st.Condition != nil {
		return st.Condition.Describe()
	}
	return strings.Join(parts, ", ")
}

// textFor resolves the text an action types: a configured credential or
// the expanded literal.
func (e *execution) textFor(a flow.Action) (string, error) {
	if ref := a.Credential; ref != nil {
		cred, ok := e.config().Credentials[ref.Role]
		if !ok {
			return "", core.ErrMissingCredential.WithMessage(fmt.Sprintf("no credential configured for role %q", ref.Role))
		}
		if ref.Field == flow.FieldSecret {
			return cred.Secret, nil
		}
		return cred.Identifier, nil
	}
	return e.vars.expand(a.Text), nil
}

// perform executes one action. Actions are never retried.
func (e *execution) perform(ctx context.Context, sr *core.StepResult, a flow.Action, el core.Element, observed string) error {
	if a.NeedsElement() && el == nil {
		return fmt.Errorf("%s: no element resolved", a.Type)
	}

	switch a.Type {
	case flow.ActionClick:
		return el.Click(ctx)

	case flow.ActionSendText:
		text, err := e.textFor(a)
		if err != nil {
			return err
		}
		return el.SendText(ctx, text)

	case flow.ActionSelect:
		return el.SelectOptionByLabel(ctx, e.vars.expand(a.Text))

	case flow.ActionAcceptDialog, flow.ActionDismissDialog:
		text, err := e.session.DialogText(ctx)
		if err != nil && !errors.Is(err, core.ErrNoDialog) {
			return err
		}
		if text == "" {
			text = observed
		}
		verb := "accepted"
		if a.Type == flow.ActionAcceptDialog {
			err = e.session.AcceptDialog(ctx)
		} else {
			verb = "dismissed"
			err = e.session.DismissDialog(ctx)
		}
		if err != nil {
			return err
		}
		e.log(core.LevelInfo, sr.Name, "dialog %s: %s", verb, text)
		return nil

	case flow.ActionReadAddress:
		addr := observed
		if addr == "" {
			var err error
			if addr, err = e.session.CurrentAddress(ctx); err != nil {
				return err
			}
		}
		sr.Address = addr
		sr.Message = "address " + addr
		e.result.LastAddress = addr
		return nil

	case flow.ActionNavigate:
		url, err := resolveURL(e.config().BaseURL, e.vars.expand(a.Text))
		if err != nil {
			return fmt.Errorf("navigate: %w", err)
		}
		if err := e.session.Navigate(ctx, url); err != nil {
			return err
		}
		sr.Message = "navigate " + url
		return nil

	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}
