// Package scenarios defines the built-in journeys for the complaint portal:
// reusable flows (sign-in, logout) and the scenarios composed from them.
package scenarios

import (
	"strings"
	"time"

	"github.com/automationqa/journey-runner/pkg/flow"
)

// Credential roles referenced by the built-in flows. Their values come from
// configuration.
const (
	RoleStudent    = "student"
	RoleAdmin      = "admin"
	RoleRegistrant = "registrant"
)

// LogoutQuery finds the logout button on both dashboards; its label sits in a nested span.
const LogoutQuery = "//button[.//span[contains(text(),'Logout')]]"

// settle is the pause after a submit that triggers a client-side redirect.
const settle = 2500 * time.Millisecond

// SignIn picks the role tab on the login page, enters credRole's
// credential and submits. The login page must already be open.
func SignIn(role, credRole string) flow.Flow {
	return flow.Flow{
		Name:        "sign-in-" + role,
		Description: "Select the " + role + " role, enter the credential and submit",
		Steps: []flow.Step{
			flow.Click("select-role", flow.TextContains("button", roleLabel(role))),
			flow.TypeCredential("enter-identifier", flow.Name("email"), credRole, flow.FieldIdentifier),
			flow.TypeCredential("enter-secret", flow.Name("password"), credRole, flow.FieldSecret),
			flow.Press("submit-login", flow.TextContains("button", "Sign")).WithPostDelay(settle),
		},
	}
}

// LoginAs opens the login page and signs in as role with its own credential.
func LoginAs(role string) flow.Flow {
	in := SignIn(role, role)
	steps := make([]flow.Step, 0, len(in.Steps)+1)
	steps = append(steps, flow.Open("open-login", "/login"))
	steps = append(steps, in.Steps...)
	return flow.Flow{
		Name:        "login-as-" + role,
		Description: "Authenticate as " + role,
		Steps:       steps,
	}
}

// Logout signs out from either dashboard and waits for the login page.
func Logout() flow.Flow {
	return flow.Flow{
		Name:        "logout",
		Description: "Sign out and return to the login page",
		Steps: []flow.Step{
			flow.Click("click-logout", flow.XPath(LogoutQuery)),
			flow.AwaitAddress("await-login", "login"),
		},
	}
}

// Library exposes the built-in flows to scenario files under their
// file-facing names.
func Library() flow.Library {
	return flow.Library{
		"login-student": LoginAs(RoleStudent),
		"login-admin":   LoginAs(RoleAdmin),
		"logout":        Logout(),
	}
}

func roleLabel(role string) string {
	if role == "" {
		return role
	}
	return strings.ToUpper(role[:1]) + role[1:]
}
