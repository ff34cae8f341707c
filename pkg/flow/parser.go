package flow

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ParseError represents a parsing error with location info.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Library resolves flow names that a scenario file references but does not define.
type Library map[string]Flow

// ParseFile parses a single scenario YAML file.
func ParseFile(path string, lib Library) (*Scenario, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is user-provided scenario file
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data, path, lib)
}

// ParseDir parses every .yaml/.yml file under dir, sorted by path.
func ParseDir(dir string, lib Library) ([]Scenario, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	scenarios := make([]Scenario, 0, len(files))
	for _, f := range files {
		s, err := ParseFile(f, lib)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, *s)
	}
	return scenarios, nil
}

type scenarioFile struct {
	Name        string               `yaml:"name"`
	Description string               `yaml:"description"`
	Tags        []string             `yaml:"tags"`
	Flows       map[string]yaml.Node `yaml:"flows"`
	Steps       []yaml.Node          `yaml:"steps"`
}

type parser struct {
	path  string
	lib   Library
	local map[string]Flow
}

// Parse parses scenario YAML content.
func Parse(data []byte, sourcePath string, lib Library) (*Scenario, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, &ParseError{Path: sourcePath, Line: 1, Message: "empty scenario file"}
	}

	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &ParseError{Path: sourcePath, Message: fmt.Sprintf("invalid scenario: %v", err)}
	}

	p := &parser{path: sourcePath, lib: lib, local: make(map[string]Flow)}

	names := make([]string, 0, len(file.Flows))
	for name := range file.Flows {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		node := file.Flows[name]
		f, err := p.parseFlow(name, &node)
		if err != nil {
			return nil, err
		}
		p.local[name] = f
	}

	s := &Scenario{
		Name:        file.Name,
		Description: file.Description,
		Tags:        file.Tags,
		SourcePath:  sourcePath,
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	}
	if len(file.Steps) == 0 {
		return nil, &ParseError{Path: sourcePath, Message: "scenario has no steps"}
	}

	for i := range file.Steps {
		item, err := p.parseItem(&file.Steps[i])
		if err != nil {
			return nil, err
		}
		s.Items = append(s.Items, item)
	}

	if err := s.Validate(); err != nil {
		return nil, &ParseError{Path: sourcePath, Message: err.Error()}
	}
	return s, nil
}

func (p *parser) errorf(node *yaml.Node, format string, args ...interface{}) error {
	return &ParseError{Path: p.path, Line: node.Line, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parseFlow(name string, node *yaml.Node) (Flow, error) {
	if node.Kind != yaml.SequenceNode {
		return Flow{}, p.errorf(node, "flow %q must be a list of steps", name)
	}
	f := Flow{Name: name}
	for _, child := range node.Content {
		key, value, err := p.singleKey(child)
		if err != nil {
			return Flow{}, err
		}
		if key == "flow" || key == "checkpoint" {
			return Flow{}, p.errorf(child, "flow %q: %s is not allowed inside a flow", name, key)
		}
		st, err := p.parseStep(key, value)
		if err != nil {
			return Flow{}, err
		}
		f.Steps = append(f.Steps, st)
	}
	return f, nil
}

func (p *parser) parseItem(node *yaml.Node) (Item, error) {
	key, value, err := p.singleKey(node)
	if err != nil {
		return Item{}, err
	}
	switch key {
	case "flow":
		f, err := p.resolveFlow(value)
		if err != nil {
			return Item{}, err
		}
		return Use(f), nil
	case "checkpoint":
		cp, err := p.parseCheckpoint(value)
		if err != nil {
			return Item{}, err
		}
		return Item{Checkpoint: &cp}, nil
	default:
		st, err := p.parseStep(key, value)
		if err != nil {
			return Item{}, err
		}
		return Do(st), nil
	}
}

// singleKey extracts the command name of a "- command: {...}" entry.
func (p *parser) singleKey(node *yaml.Node) (string, *yaml.Node, error) {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return "", nil, p.errorf(node, "entry must be a mapping with exactly one command")
	}
	return node.Content[0].Value, node.Content[1], nil
}

func (p *parser) resolveFlow(node *yaml.Node) (Flow, error) {
	if node.Kind != yaml.ScalarNode {
		return Flow{}, p.errorf(node, "flow reference must be a name")
	}
	if f, ok := p.local[node.Value]; ok {
		return f, nil
	}
	if f, ok := p.lib[node.Value]; ok {
		return f, nil
	}
	return Flow{}, p.errorf(node, "unknown flow %q", node.Value)
}

type conditionRaw struct {
	Clickable       *Locator `yaml:"clickable"`
	Visible         *Locator `yaml:"visible"`
	Present         *Locator `yaml:"present"`
	AddressContains string   `yaml:"addressContains"`
	DialogPresent   bool     `yaml:"dialogPresent"`
}

func (r conditionRaw) condition() (*Condition, int) {
	var found []Condition
	if r.Clickable != nil {
		found = append(found, Clickable(*r.Clickable))
	}
	if r.Visible != nil {
		found = append(found, Visible(*r.Visible))
	}
	if r.Present != nil {
		found = append(found, Present(*r.Present))
	}
	if r.AddressContains != "" {
		found = append(found, AddressContains(r.AddressContains))
	}
	if r.DialogPresent {
		found = append(found, DialogPresent())
	}
	if len(found) != 1 {
		return nil, len(found)
	}
	return &found[0], 1
}

type checkpointRaw struct {
	Name         string        `yaml:"name"`
	Timeout      time.Duration `yaml:"timeout"`
	conditionRaw `yaml:",inline"`
}

func (p *parser) parseCheckpoint(node *yaml.Node) (Checkpoint, error) {
	var raw checkpointRaw
	if err := node.Decode(&raw); err != nil {
		return Checkpoint{}, p.errorf(node, "invalid checkpoint: %v", err)
	}
	c, n := raw.condition()
	if c == nil {
		return Checkpoint{}, p.errorf(node, "checkpoint needs exactly one condition, got %d", n)
	}
	return Checkpoint{Name: raw.Name, Condition: *c, Timeout: raw.Timeout}, nil
}

// stepRaw holds every field a step command may carry.
type stepRaw struct {
	Name       string         `yaml:"name"`
	Optional   bool           `yaml:"optional"`
	Timeout    time.Duration  `yaml:"timeout"`
	PostDelay  *time.Duration `yaml:"postDelay"`
	Locator    *Locator       `yaml:"locator"`
	Text       string         `yaml:"text"`
	Label      string         `yaml:"label"`
	Path       string         `yaml:"path"`
	Contains   string         `yaml:"contains"`
	Credential string         `yaml:"credential"`
	Wait       *conditionRaw  `yaml:"wait"`
	Target     *Locator       `yaml:"target"`
	Actions    []Action       `yaml:"actions"`
}

func (p *parser) parseCredential(node *yaml.Node, ref string) (*CredentialRef, error) {
	role, field, ok := strings.Cut(ref, ".")
	if !ok || role == "" {
		return nil, p.errorf(node, "credential %q must be role.identifier or role.secret", ref)
	}
	return &CredentialRef{Role: role, Field: CredentialField(field)}, nil
}

func (p *parser) parseStep(command string, node *yaml.Node) (Step, error) {
	var raw stepRaw
	if err := node.Decode(&raw); err != nil {
		return Step{}, p.errorf(node, "invalid %s: %v", command, err)
	}

	needLocator := func() (Locator, error) {
		if raw.Locator == nil {
			return Locator{}, p.errorf(node, "%s needs a locator", command)
		}
		return *raw.Locator, nil
	}

	var st Step
	switch command {
	case "click":
		l, err := needLocator()
		if err != nil {
			return Step{}, err
		}
		st = Click(raw.Name, l)
	case "press":
		l, err := needLocator()
		if err != nil {
			return Step{}, err
		}
		st = Press(raw.Name, l)
	case "fill", "type":
		l, err := needLocator()
		if err != nil {
			return Step{}, err
		}
		if command == "fill" {
			st = Fill(raw.Name, l, raw.Text)
		} else {
			st = Type(raw.Name, l, raw.Text)
		}
		if raw.Credential != "" {
			ref, err := p.parseCredential(node, raw.Credential)
			if err != nil {
				return Step{}, err
			}
			st.Actions = []Action{{Type: ActionSendText, Credential: ref}}
		}
	case "choose":
		l, err := needLocator()
		if err != nil {
			return Step{}, err
		}
		st = Choose(raw.Name, l, raw.Label)
	case "open":
		st = Open(raw.Name, raw.Path)
	case "awaitAddress":
		st = AwaitAddress(raw.Name, raw.Contains)
	case "acceptDialog":
		st = AcceptDialogIfPresent(raw.Name, raw.Timeout)
	case "step":
		st = Step{Name: raw.Name, Target: raw.Target, Actions: raw.Actions}
		if raw.Wait != nil {
			c, n := raw.Wait.condition()
			if c == nil {
				return Step{}, p.errorf(node, "wait needs exactly one condition, got %d", n)
			}
			st.Condition = c
		}
	default:
		return Step{}, p.errorf(node, "unknown command: %s", command)
	}

	if raw.Optional {
		st.Optional = true
	}
	if raw.Timeout > 0 {
		st.Timeout = raw.Timeout
	}
	if raw.PostDelay != nil {
		st.PostDelay = raw.PostDelay
	}
	if err := st.Validate(); err != nil {
		return Step{}, p.errorf(node, "%v", err)
	}
	return st, nil
}
