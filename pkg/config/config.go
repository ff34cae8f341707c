// Package config handles configuration for journey-runner.
//
// Values are layered: command-line flags over JOURNEY_* environment
// variables over the config file over defaults. Credentials and driver
// paths only ever come from these sources.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported drivers
const (
	DriverWebDriver = "webdriver"
	DriverChromedp  = "chromedp"
	DriverMock      = "mock"
)

// Defaults
const (
	DefaultDriver         = DriverWebDriver
	DefaultTimeout        = 15 * time.Second
	DefaultPostDelay      = time.Second
	DefaultDialogTimeout  = 3 * time.Second
	DefaultPollInterval   = 250 * time.Millisecond
	DefaultOutputDir      = "reports"
	defaultDriverBinary   = "chromedriver"
	envPrefix             = "JOURNEY_"
	envCredentialPrefix   = "JOURNEY_CRED_"
	envCredentialIdentity = "_IDENTIFIER"
	envCredentialSecret   = "_SECRET"
)

// DefaultBrowserArgs are passed to the browser when none are configured.
var DefaultBrowserArgs = []string{"--start-maximized", "--remote-allow-origins=*"}

// Config represents the workspace configuration (journey.yaml).
type Config struct {
	// Application under test
	BaseURL string `yaml:"baseUrl"`

	// Browser
	Driver      string   `yaml:"driver"`      // webdriver, chromedp, mock
	DriverPath  string   `yaml:"driverPath"`  // chromedriver or chrome binary
	RemoteURL   string   `yaml:"remoteUrl"`   // attach instead of launching
	Headless    bool     `yaml:"headless"`    // run without a window
	BrowserArgs []string `yaml:"browserArgs"` // extra browser switches

	// Timing
	DefaultTimeout Duration `yaml:"defaultTimeout"`
	PostDelay      Duration `yaml:"postDelay"`
	DialogTimeout  Duration `yaml:"dialogTimeout"`
	TeardownDelay  Duration `yaml:"teardownDelay"`
	PollInterval   Duration `yaml:"pollInterval"`

	// Scenario selection
	Scenarios   []string `yaml:"scenarios"`   // scenario files or directories
	IncludeTags []string `yaml:"includeTags"` // Tags to include
	ExcludeTags []string `yaml:"excludeTags"` // Tags to exclude

	OutputDir string `yaml:"outputDir"`

	Credentials map[string]Credential `yaml:"credentials"` // by role

	Mock MockConfig `yaml:"mock"`
}

// MockConfig configures the in-memory demo portal used by the mock driver.
// Its accounts are what the portal accepts; they are separate from
// Credentials, which are what the scenarios type.
type MockConfig struct {
	Accounts map[string]Credential `yaml:"accounts"`
}

// Credential is the login for one role.
type Credential struct {
	Identifier string `yaml:"identifier"`
	Secret     string `yaml:"secret"`
}

// Duration is a time.Duration that reads either a Go duration string
// ("15s") or an integer number of milliseconds from YAML.
type Duration struct {
	time.Duration
	set bool
}

// Dur creates a set Duration.
func Dur(d time.Duration) Duration {
	return Duration{Duration: d, set: true}
}

// IsSet reports whether the value came from a file, the environment or Dur.
func (d Duration) IsSet() bool {
	return d.set
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Dur(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// ParseDuration parses "1500ms", "2s" or a bare integer in milliseconds.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("negative duration %q", s)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadFromDir looks for journey.yaml or journey.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{"journey.yaml", "journey.yml"} {
		configPath := filepath.Join(dir, name)
		if _, err := os.Stat(configPath); err == nil {
			return Load(configPath)
		}
	}

	// No config file found, return empty config
	return &Config{}, nil
}

// ApplyEnv overlays JOURNEY_* variables from environ (os.Environ format).
// Credentials are read from JOURNEY_CRED_<ROLE>_IDENTIFIER and
// JOURNEY_CRED_<ROLE>_SECRET; the role is lower-cased and underscores
// become dashes.
func (c *Config) ApplyEnv(environ []string) error {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) {
			continue
		}

		if strings.HasPrefix(key, envCredentialPrefix) {
			c.applyCredentialEnv(strings.TrimPrefix(key, envCredentialPrefix), value)
			continue
		}

		var err error
		switch strings.TrimPrefix(key, envPrefix) {
		case "BASE_URL":
			c.BaseURL = value
		case "DRIVER":
			c.Driver = value
		case "DRIVER_PATH":
			c.DriverPath = value
		case "REMOTE_URL":
			c.RemoteURL = value
		case "OUTPUT_DIR":
			c.OutputDir = value
		case "HEADLESS":
			c.Headless, err = strconv.ParseBool(value)
		case "DEFAULT_TIMEOUT":
			err = setDuration(&c.DefaultTimeout, value)
		case "POST_DELAY":
			err = setDuration(&c.PostDelay, value)
		case "DIALOG_TIMEOUT":
			err = setDuration(&c.DialogTimeout, value)
		case "TEARDOWN_DELAY":
			err = setDuration(&c.TeardownDelay, value)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) applyCredentialEnv(rest, value string) {
	var role string
	var secret bool
	switch {
	case strings.HasSuffix(rest, envCredentialIdentity):
		role = strings.TrimSuffix(rest, envCredentialIdentity)
	case strings.HasSuffix(rest, envCredentialSecret):
		role = strings.TrimSuffix(rest, envCredentialSecret)
		secret = true
	default:
		return
	}
	if role == "" {
		return
	}
	role = strings.ReplaceAll(strings.ToLower(role), "_", "-")

	if c.Credentials == nil {
		c.Credentials = make(map[string]Credential)
	}
	cred := c.Credentials[role]
	if secret {
		cred.Secret = value
	} else {
		cred.Identifier = value
	}
	c.Credentials[role] = cred
}

func setDuration(d *Duration, value string) error {
	parsed, err := ParseDuration(value)
	if err != nil {
		return err
	}
	*d = Dur(parsed)
	return nil
}

// WithDefaults fills every unset field and returns c.
func (c *Config) WithDefaults() *Config {
	if c.Driver == "" {
		c.Driver = DefaultDriver
	}
	if c.DriverPath == "" && c.Driver == DriverWebDriver && c.RemoteURL == "" {
		c.DriverPath = DefaultDriverPath()
	}
	if c.BrowserArgs == nil {
		c.BrowserArgs = append([]string(nil), DefaultBrowserArgs...)
	}
	if !c.DefaultTimeout.IsSet() {
		c.DefaultTimeout = Dur(DefaultTimeout)
	}
	if !c.PostDelay.IsSet() {
		c.PostDelay = Dur(DefaultPostDelay)
	}
	if !c.DialogTimeout.IsSet() {
		c.DialogTimeout = Dur(DefaultDialogTimeout)
	}
	if !c.TeardownDelay.IsSet() {
		c.TeardownDelay = Dur(0)
	}
	if !c.PollInterval.IsSet() {
		c.PollInterval = Dur(DefaultPollInterval)
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	return c
}

// Validate checks the values a run depends on.
func (c *Config) Validate() error {
	var problems []string

	if c.BaseURL == "" {
		problems = append(problems, "baseUrl is required")
	} else if u, err := url.Parse(c.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("baseUrl %q must be an absolute http(s) URL", c.BaseURL))
	}

	switch c.Driver {
	case DriverWebDriver, DriverChromedp, DriverMock:
	default:
		problems = append(problems, fmt.Sprintf("unknown driver %q (want webdriver, chromedp or mock)", c.Driver))
	}

	if c.RemoteURL != "" {
		if u, err := url.Parse(c.RemoteURL); err != nil || u.Scheme == "" || u.Host == "" {
			problems = append(problems, fmt.Sprintf("remoteUrl %q is not a URL", c.RemoteURL))
		}
	}

	if c.DefaultTimeout.Duration <= 0 {
		problems = append(problems, "defaultTimeout must be positive")
	}
	if c.PollInterval.Duration <= 0 {
		problems = append(problems, "pollInterval must be positive")
	}

	for _, role := range c.Roles() {
		cred := c.Credentials[role]
		if cred.Identifier == "" || cred.Secret == "" {
			problems = append(problems, fmt.Sprintf("credentials for role %q need both identifier and secret", role))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Roles returns the configured credential roles, sorted.
func (c *Config) Roles() []string {
	roles := make([]string, 0, len(c.Credentials))
	for role := range c.Credentials {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}
