package flow

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestLocator_Query(t *testing.T) {
	tests := []struct {
		name      string
		loc       Locator
		wantUsing string
		wantValue string
	}{
		{"name", Name("email"), UsingCSS, `[name="email"]`},
		{"id", ID("universitySelect"), UsingCSS, `[id="universitySelect"]`},
		{"css", CSS("button[type='submit']"), UsingCSS, "button[type='submit']"},
		{"xpath", XPath("//h2"), UsingXPath, "//h2"},
		{"exact text any tag", Text("", "Student"), UsingXPath, "//*[normalize-space(text())='Student']"},
		{"text contains button", TextContains("button", "Sign"), UsingXPath, "//button[contains(text(),'Sign')]"},
		{"single quote", TextContains("", "it's"), UsingXPath, `//*[contains(text(),"it's")]`},
		{"both quotes", Text("p", `a'b"c`), UsingXPath, `//p[normalize-space(text())=concat('a',"'",'b"c')]`},
		{"name with quote", Name(`a"b`), UsingCSS, `[name="a\"b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			using, value := tt.loc.Query()
			if using != tt.wantUsing {
				t.Errorf("using = %q, want %q", using, tt.wantUsing)
			}
			if value != tt.wantValue {
				t.Errorf("value = %q, want %q", value, tt.wantValue)
			}
		})
	}
}

func TestLocator_Validate(t *testing.T) {
	if err := Name("email").Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Name("").Validate(); err == nil {
		t.Error("expected error for empty value")
	}
	if err := (Locator{Strategy: "shadow", Value: "x"}).Validate(); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestLocator_Describe(t *testing.T) {
	if got := TextContains("button", "Sign").Describe(); got != `button textContains="Sign"` {
		t.Errorf("Describe() = %q", got)
	}
	if got := Name("email").String(); got != `name="email"` {
		t.Errorf("String() = %q", got)
	}
}

func TestLocator_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Locator
		wantErr string
	}{
		{"scalar", `"Get Started"`, TextContains("", "Get Started"), ""},
		{"name", `{name: email}`, Name("email"), ""},
		{"text with tag", `{text: Student, tag: button}`, Text("button", "Student"), ""},
		{"xpath", `{xpath: "//h2"}`, XPath("//h2"), ""},
		{"none", `{tag: button}`, Locator{}, "needs one of"},
		{"two", `{name: a, id: b}`, Locator{}, "2 strategies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l Locator
			err := yaml.Unmarshal([]byte(tt.input), &l)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if l != tt.want {
				t.Errorf("locator = %+v, want %+v", l, tt.want)
			}
		})
	}
}

func TestOptionQuery(t *testing.T) {
	if got := OptionQuery("Thapar University"); got != "./option[normalize-space(.)='Thapar University']" {
		t.Errorf("OptionQuery = %s", got)
	}
	if got := OptionQuery("Hall's 'A'"); !strings.HasPrefix(got, "./option[normalize-space(.)=\"") {
		t.Errorf("OptionQuery with apostrophe = %s", got)
	}
}
