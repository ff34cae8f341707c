package flow

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Strategy names how a Locator finds an element.
type Strategy string

// Locator strategies.
const (
	ByName            Strategy = "name"
	ByExactText       Strategy = "text"
	ByTextContains    Strategy = "textContains"
	ByStructuralQuery Strategy = "xpath"
	ByID              Strategy = "id"
	ByCSS             Strategy = "css"
)

// Query mechanisms understood by the browser drivers.
const (
	UsingCSS   = "css selector"
	UsingXPath = "xpath"
)

// Locator describes how to find an element, independent of the query
// mechanism used by a driver. Locators are values and never mutated.
type Locator struct {
	Strategy Strategy `yaml:"-" json:"strategy"`
	Value    string   `yaml:"-" json:"value"`
	// Tag narrows text strategies to one element type ("button"). Empty means any.
	Tag string `yaml:"-" json:"tag,omitempty"`
}

// Name locates an element by its name attribute.
func Name(v string) Locator { return Locator{Strategy: ByName, Value: v} }

// ID locates an element by its id attribute.
func ID(v string) Locator { return Locator{Strategy: ByID, Value: v} }

// CSS locates an element by a CSS selector.
func CSS(v string) Locator { return Locator{Strategy: ByCSS, Value: v} }

// XPath locates an element by a structural query.
func XPath(v string) Locator { return Locator{Strategy: ByStructuralQuery, Value: v} }

// Text locates a tag whose own text equals v (whitespace-normalized).
func Text(tag, v string) Locator { return Locator{Strategy: ByExactText, Value: v, Tag: tag} }

// TextContains locates a tag whose own text contains v.
func TextContains(tag, v string) Locator {
	return Locator{Strategy: ByTextContains, Value: v, Tag: tag}
}

// IsEmpty returns true if the locator has no value.
func (l Locator) IsEmpty() bool {
	return l.Value == ""
}

// Validate checks that the strategy is known and a value is present.
func (l Locator) Validate() error {
	switch l.Strategy {
	case ByName, ByExactText, ByTextContains, ByStructuralQuery, ByID, ByCSS:
	default:
		return fmt.Errorf("unknown locator strategy %q", l.Strategy)
	}
	if l.IsEmpty() {
		return fmt.Errorf("%s locator has no value", l.Strategy)
	}
	return nil
}

// Query maps the locator onto one of the two query mechanisms every
// driver supports: a CSS selector or an XPath expression.
func (l Locator) Query() (using, value string) {
	tag := l.Tag
	if tag == "" {
		tag = "*"
	}
	switch l.Strategy {
	case ByName:
		return UsingCSS, fmt.Sprintf(`[name=%s]`, cssString(l.Value))
	case ByID:
		return UsingCSS, fmt.Sprintf(`[id=%s]`, cssString(l.Value))
	case ByCSS:
		return UsingCSS, l.Value
	case ByExactText:
		return UsingXPath, fmt.Sprintf("//%s[normalize-space(text())=%s]", tag, xpathLiteral(l.Value))
	case ByTextContains:
		return UsingXPath, fmt.Sprintf("//%s[contains(text(),%s)]", tag, xpathLiteral(l.Value))
	default:
		return UsingXPath, l.Value
	}
}

// OptionQuery returns an XPath, relative to a select element, matching
// the option whose visible label is label.
func OptionQuery(label string) string {
	return "./option[normalize-space(.)=" + xpathLiteral(label) + "]"
}

// Describe returns a human-readable description.
func (l Locator) Describe() string {
	switch l.Strategy {
	case ByExactText, ByTextContains:
		if l.Tag != "" {
			return fmt.Sprintf("%s %s=%q", l.Tag, l.Strategy, l.Value)
		}
		return fmt.Sprintf("%s=%q", l.Strategy, l.Value)
	default:
		return fmt.Sprintf("%s=%q", l.Strategy, l.Value)
	}
}

func (l Locator) String() string { return l.Describe() }

// cssString quotes s as a CSS string token.
func cssString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// xpathLiteral quotes s for XPath 1.0, which has no escape syntax:
// strings holding both quote kinds are built with concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if p != "" {
			quoted = append(quoted, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ",") + ")"
}

// locatorRaw is used for YAML parsing; exactly one strategy key is expected.
type locatorRaw struct {
	Name         string `yaml:"name"`
	ID           string `yaml:"id"`
	CSS          string `yaml:"css"`
	XPath        string `yaml:"xpath"`
	Text         string `yaml:"text"`
	TextContains string `yaml:"textContains"`
	Tag          string `yaml:"tag"`
}

// UnmarshalYAML allows a Locator to be written as a scalar (text contained
// in any element) or as a mapping with a single strategy key.
func (l *Locator) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*l = TextContains("", node.Value)
		return nil
	}

	var raw locatorRaw
	if err := node.Decode(&raw); err != nil {
		return err
	}

	var found []Locator
	if raw.Name != "" {
		found = append(found, Name(raw.Name))
	}
	if raw.ID != "" {
		found = append(found, ID(raw.ID))
	}
	if raw.CSS != "" {
		found = append(found, CSS(raw.CSS))
	}
	if raw.XPath != "" {
		found = append(found, XPath(raw.XPath))
	}
	if raw.Text != "" {
		found = append(found, Text(raw.Tag, raw.Text))
	}
	if raw.TextContains != "" {
		found = append(found, TextContains(raw.Tag, raw.TextContains))
	}

	switch len(found) {
	case 0:
		return fmt.Errorf("line %d: locator needs one of name, id, css, xpath, text, textContains", node.Line)
	case 1:
		*l = found[0]
		return nil
	default:
		return fmt.Errorf("line %d: locator has %d strategies, want one", node.Line, len(found))
	}
}
