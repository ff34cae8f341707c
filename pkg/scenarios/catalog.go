package scenarios

import (
	"sort"
	"time"

	"github.com/automationqa/journey-runner/pkg/flow"
)

// ThaparUniversity is the university whose students must give a roll number.
const ThaparUniversity = "Thapar Institute of Engineering and Technology"

// NewStudentEmail is the registration address; ${unique} expands per run.
const NewStudentEmail = "teststudent${unique}@example.com"

// StudentLogin signs in from the landing page and checks the dashboard.
func StudentLogin() flow.Scenario {
	return flow.Scenario{
		Name:        "student-login",
		Description: "Student signs in from the landing page and reaches the dashboard",
		Tags:        []string{"student", "auth", "smoke"},
		Items: []flow.Item{
			flow.Do(flow.Open("open-landing", "/")),
			flow.Do(flow.Click("click-sign-in", flow.TextContains("button", "Sign"))),
			flow.Verify("on-login-page", flow.AddressContains("login")),
			flow.Use(SignIn(RoleStudent, RoleStudent)),
			flow.Verify("on-dashboard", flow.AddressContains("dashboard")),
			flow.Verify("dashboard-rendered", flow.Visible(flow.TextContains("button", "Complaint"))),
		},
	}
}

// Registration fills the sign-up form with email and expects a redirect to
// the login page. The roll-number step only runs when the selected
// university renders that field.
func Registration(email string) flow.Scenario {
	return flow.Scenario{
		Name:        "student-registration",
		Description: "New student registers and is sent to the login page",
		Tags:        []string{"student", "registration"},
		Items: []flow.Item{
			flow.Do(flow.Open("open-landing", "/")),
			flow.Do(flow.Click("click-get-started", flow.TextContains("button", "Get Started"))),
			flow.Verify("on-register-page", flow.AddressContains("register")),
			flow.Do(flow.Choose("select-university", flow.ID("universitySelect"), ThaparUniversity)),
			flow.Do(flow.Type("enter-full-name", flow.Name("fullName"), "Test Student")),
			flow.Do(flow.Fill("enter-roll-number", flow.Name("rollNumber"), "102103456").
				AsOptional().WithTimeout(2 * time.Second)),
			flow.Do(flow.Type("enter-email", flow.Name("email"), email)),
			flow.Do(flow.TypeCredential("enter-password", flow.Name("password"), RoleRegistrant, flow.FieldSecret)),
			flow.Do(flow.Choose("select-hostel", flow.Name("hostel"), "Hostel A")),
			flow.Do(flow.Type("enter-room", flow.Name("roomNumber"), "101")),
			flow.Do(flow.Press("submit-registration", flow.CSS("button[type='submit']")).WithPostDelay(settle)),
			flow.Verify("redirect-to-login", flow.AddressContains("login")),
		},
	}
}

// RaiseComplaint files a complaint as a student and logs out. The
// confirmation alert is accepted when the portal shows one.
func RaiseComplaint() flow.Scenario {
	return flow.Scenario{
		Name:        "raise-complaint",
		Description: "Student raises a complaint, handles the optional confirmation and logs out",
		Tags:        []string{"student", "complaint"},
		Items: []flow.Item{
			flow.Use(LoginAs(RoleStudent)),
			flow.Verify("on-dashboard", flow.AddressContains("dashboard")),
			flow.Do(flow.Click("open-complaint-form", flow.TextContains("button", "Complaint"))),
			flow.Verify("on-complaint-form", flow.AddressContains("complaint")),
			flow.Do(flow.Fill("enter-title", flow.Name("title"), "Water leakage in bathroom")),
			flow.Do(flow.Type("enter-description", flow.Name("description"),
				"Water is leaking continuously from the ceiling in Room 101.")),
			flow.Do(flow.Press("submit-complaint", flow.TextContains("button", "Submit"))),
			flow.Do(flow.AcceptDialogIfPresent("confirm-submission", 0)),
			flow.Verify("back-on-dashboard", flow.AddressContains("dashboard")),
			flow.Use(Logout()),
			flow.Verify("logged-out", flow.AddressContains("login")),
		},
	}
}

// AdminTriage opens a complaint's details as an admin, marks it in
// progress and logs out.
func AdminTriage() flow.Scenario {
	return flow.Scenario{
		Name:        "admin-triage",
		Description: "Admin reviews a complaint, marks it in progress and logs out",
		Tags:        []string{"admin", "complaint"},
		Items: []flow.Item{
			flow.Use(LoginAs(RoleAdmin)),
			flow.Verify("on-admin-dashboard", flow.AddressContains("admin")),
			flow.Do(flow.Click("view-details", flow.TextContains("button", "View"))),
			flow.Verify("details-open", flow.Visible(flow.TextContains("h2", "Complaint"))),
			flow.Do(flow.Click("close-details", flow.TextContains("button", "Close"))),
			flow.Do(flow.Click("mark-in-progress", flow.TextContains("button", "Progress"))),
			flow.Do(flow.AcceptDialogIfPresent("confirm-status", 0)),
			flow.Use(Logout()),
			flow.Verify("logged-out", flow.AddressContains("login")),
		},
	}
}

// Catalog returns the built-in scenarios in a stable order.
func Catalog() []flow.Scenario {
	all := []flow.Scenario{
		StudentLogin(),
		Registration(NewStudentEmail),
		RaiseComplaint(),
		AdminTriage(),
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// Lookup returns the built-in scenario called name.
func Lookup(name string) (flow.Scenario, bool) {
	for _, s := range Catalog() {
		if s.Name == name {
			return s, true
		}
	}
	return flow.Scenario{}, false
}

// Names lists the built-in scenario names.
func Names() []string {
	all := Catalog()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name
	}
	return names
}
