package mock

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/automationqa/journey-runner/pkg/core"
	"github.com/automationqa/journey-runner/pkg/flow"
)

var (
	_ core.Launcher      = (*Browser)(nil)
	_ core.Session       = (*Session)(nil)
	_ core.Screenshotter = (*Session)(nil)
	_ core.Element       = (*element)(nil)
)

// Account is one login on the demo application.
type Account struct {
	Identifier string
	Secret     string
}

// DemoAccounts are the logins the demo portal accepts when none are given.
func DemoAccounts() map[string]Account {
	return map[string]Account{
		"student": {Identifier: "student@thapar.edu", Secret: "student-pw"},
		"admin":   {Identifier: "admin@thapar.edu", Secret: "admin-pw"},
	}
}

// AppOptions configures DemoApp.
type AppOptions struct {
	// Accounts by role ("student", "admin").
	Accounts map[string]Account
	// Registered lists emails that already have an account.
	Registered []string
	// ComplaintDialog shows a confirmation alert after a complaint is submitted.
	ComplaintDialog bool
	// RedirectDelay is the pause before registration redirects to login.
	RedirectDelay time.Duration
	// RenderDelay delays form fields after each page load.
	RenderDelay time.Duration
	// DialogDelay delays every dialog after the click that raises it.
	DialogDelay time.Duration
}

// ThaparUniversity is the option that requires a roll number.
const ThaparUniversity = "Thapar Institute of Engineering and Technology"

var rollNumberPattern = regexp.MustCompile(`^\d{9}$`)

// LogoutQuery is the structural query for the logout button on both dashboards.
const LogoutQuery = "//button[.//span[contains(text(),'Logout')]]"

// DemoApp builds a mock browser serving a complaint-management portal:
// landing, login, registration, student dashboard, complaint form and
// admin dashboard.
func DemoApp(baseURL string, opts AppOptions) *Browser {
	var regMu sync.Mutex
	registered := make(map[string]bool)
	for _, e := range opts.Registered {
		registered[e] = true
	}
	field := func(name string) *Node {
		n := Input(name)
		n.AppearAfter = opts.RenderDelay
		return n
	}
	logout := &Node{Tag: "button", Text: "Logout", Queries: []string{LogoutQuery}, OnClick: func(s *Session) {
		s.Go("/login")
	}}

	b := NewBrowser(baseURL)

	b.AddPage(&Page{Path: "/", Nodes: []*Node{
		Button("Get Started", func(s *Session) { s.Go("/register") }),
		Button("Sign In", func(s *Session) { s.Go("/login") }),
	}})

	b.AddPage(&Page{Path: "/login", Nodes: []*Node{
		Button("Student", func(s *Session) { s.Set("role", "student") }),
		Button("Admin", func(s *Session) { s.Set("role", "admin") }),
		field("email"),
		field("password"),
		Button("Sign In", func(s *Session) {
			role := s.Get("role")
			if role == "" {
				role = "student"
			}
			acct, ok := opts.Accounts[role]
			if !ok || s.Field("email") != acct.Identifier || s.Field("password") != acct.Secret {
				s.Reveal(flow.TextContains("p", "Invalid"))
				return
			}
			s.Set("user", acct.Identifier)
			if role == "admin" {
				s.Go("/admin/dashboard")
			} else {
				s.Go("/dashboard")
			}
		}),
		{Tag: "p", Text: "Invalid email or password", Hidden: true},
	}})

	roll := field("rollNumber")
	roll.Hidden = true
	b.AddPage(&Page{Path: "/register", Nodes: []*Node{
		{Tag: "select", ID: "universitySelect", Options: []string{ThaparUniversity, "Other University"},
			OnSelect: func(s *Session, label string) {
				if label == ThaparUniversity {
					s.Reveal(flow.Name("rollNumber"))
				} else {
					s.Hide(flow.Name("rollNumber"))
				}
			}},
		field("fullName"),
		roll,
		field("email"),
		field("password"),
		Select("hostel", "", "Hostel A", "Hostel B"),
		field("roomNumber"),
		{Tag: "button", Text: "Register", Queries: []string{"button[type='submit']"}, OnClick: func(s *Session) {
			email := s.Field("email")
			uni := s.Value(flow.ID("universitySelect"))
			switch {
			case s.Field("fullName") == "" || email == "" || s.Field("password") == "" || uni == "":
				s.Reveal(flow.TextContains("p", "required"))
			case uni == ThaparUniversity && !rollNumberPattern.MatchString(s.Field("rollNumber")):
				s.Reveal(flow.TextContains("p", "roll number"))
			default:
				regMu.Lock()
				dup := registered[email]
				registered[email] = true
				regMu.Unlock()
				if dup {
					s.Reveal(flow.TextContains("p", "already"))
					return
				}
				s.GoAfter("/login", opts.RedirectDelay)
			}
		}},
		{Tag: "p", Text: "All fields are required", Hidden: true},
		{Tag: "p", Text: "Enter a valid 9-digit roll number", Hidden: true},
		{Tag: "p", Text: "User already exists", Hidden: true},
	}})

	b.AddPage(&Page{Path: "/dashboard", Nodes: []*Node{
		Button("Raise Complaint", func(s *Session) { s.Go("/raise-complaint") }),
		logout,
	}})

	b.AddPage(&Page{Path: "/raise-complaint", Nodes: []*Node{
		field("title"),
		{Tag: "textarea", Name: "description", AppearAfter: opts.RenderDelay},
		Button("Submit", func(s *Session) {
			if s.Field("title") == "" || s.Field("description") == "" {
				return
			}
			s.Set("complaint", s.Field("title"))
			if !opts.ComplaintDialog {
				s.Go("/dashboard")
				return
			}
			s.ShowDialog("Complaint submitted successfully!", opts.DialogDelay, func(s *Session) {
				s.Go("/dashboard")
			}, nil)
		}),
	}})

	b.AddPage(&Page{Path: "/admin/dashboard", Nodes: []*Node{
		Button("View Details", func(s *Session) {
			s.Reveal(flow.TextContains("h2", "Complaint"))
			s.Reveal(flow.Text("button", "Close"))
		}),
		Button("Mark In Progress", func(s *Session) {
			status := "in-progress"
			msg := fmt.Sprintf("Are you sure you want to mark this complaint as %q?", status)
			s.ShowDialog(msg, opts.DialogDelay, func(s *Session) {
				s.Set("status", status)
				s.Reveal(flow.TextContains("span", status))
			}, nil)
		}),
		{Tag: "span", Text: "in-progress", Hidden: true},
		{Tag: "h2", Text: "Complaint Details", Hidden: true},
		{Tag: "button", Text: "Close", Hidden: true, OnClick: func(s *Session) {
			s.Hide(flow.TextContains("h2", "Complaint"))
			s.Hide(flow.Text("button", "Close"))
		}},
		logout,
	}})

	return b
}
