package mock

import (
	"strings"
	"time"

	"github.com/automationqa/journey-runner/pkg/flow"
)

// Node is one scripted DOM element.
type Node struct {
	Tag  string
	Name string
	ID   string
	Text string
	// Queries lists CSS selectors and XPath expressions that match this node verbatim.
	Queries []string

	Hidden   bool
	Disabled bool
	// AppearAfter delays the node's presence relative to page load.
	AppearAfter time.Duration
	// StaleOnAction makes every interaction report a detached element.
	StaleOnAction bool

	Options []string // for select elements

	OnClick  func(s *Session)
	OnSelect func(s *Session, label string)

	// runtime state, reset on every page load
	value    string
	selected string
	detached bool
}

// Matches reports whether loc resolves to this node.
func (n *Node) Matches(loc flow.Locator) bool {
	tagOK := loc.Tag == "" || strings.EqualFold(loc.Tag, n.Tag)
	switch loc.Strategy {
	case flow.ByName:
		return n.Name != "" && n.Name == loc.Value
	case flow.ByID:
		return n.ID != "" && n.ID == loc.Value
	case flow.ByExactText:
		return tagOK && strings.Join(strings.Fields(n.Text), " ") == loc.Value
	case flow.ByTextContains:
		return tagOK && strings.Contains(n.Text, loc.Value)
	case flow.ByCSS, flow.ByStructuralQuery:
		for _, q := range n.Queries {
			if q == loc.Value {
				return true
			}
		}
	}
	return false
}

func (n *Node) describe() string {
	switch {
	case n.Name != "":
		return n.Tag + "[name=" + n.Name + "]"
	case n.ID != "":
		return n.Tag + "#" + n.ID
	default:
		return n.Tag + "(" + n.Text + ")"
	}
}

// Page is a scripted document served at a path.
type Page struct {
	Path  string
	Nodes []*Node
}

// instantiate returns fresh copies of the page's nodes for one page load.
func (p *Page) instantiate() []*Node {
	nodes := make([]*Node, len(p.Nodes))
	for i, n := range p.Nodes {
		c := *n
		c.value, c.selected, c.detached = "", "", false
		nodes[i] = &c
	}
	return nodes
}

// Button is a convenience constructor for a clickable button.
func Button(text string, onClick func(s *Session)) *Node {
	return &Node{Tag: "button", Text: text, OnClick: onClick}
}

// Input is a convenience constructor for a named input field.
func Input(name string) *Node {
	return &Node{Tag: "input", Name: name}
}

// Select is a convenience constructor for a select element.
func Select(name, id string, options ...string) *Node {
	return &Node{Tag: "select", Name: name, ID: id, Options: options}
}
