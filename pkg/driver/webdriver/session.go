package webdriver

import (
	"context"
	"errors"
	"fmt"

	"github.com/automationqa/journey-runner/pkg/core"
	"github.com/automationqa/journey-runner/pkg/flow"
	"github.com/automationqa/journey-runner/pkg/logger"
)

var (
	_ core.Launcher      = (*Launcher)(nil)
	_ core.Session       = (*Session)(nil)
	_ core.Screenshotter = (*Session)(nil)
	_ core.Element       = (*Element)(nil)
)

// Launcher starts Chrome sessions through chromedriver.
type Launcher struct{}

// NewLauncher creates a WebDriver launcher.
func NewLauncher() *Launcher {
	return &Launcher{}
}

// Launch starts chromedriver (unless cfg.RemoteURL points at a running
// one) and opens a new browser session.
func (l *Launcher) Launch(ctx context.Context, cfg core.LaunchConfig) (core.Session, error) {
	var svc *Service
	serverURL := cfg.RemoteURL
	if serverURL == "" {
		svc = NewService(cfg.DriverPath)
		if err := svc.Start(ctx); err != nil {
			return nil, err
		}
		serverURL = svc.URL()
	}

	client := NewClient(serverURL)
	if err := client.Connect(ctx, Capabilities(cfg)); err != nil {
		if svc != nil {
			svc.Stop()
		}
		return nil, err
	}
	logger.Debug("webdriver session %s on %s", client.SessionID(), serverURL)
	return &Session{client: client, service: svc}, nil
}

// Capabilities builds the W3C capabilities for a Chrome session.
// Prompts are left open so the runner can observe and handle them.
func Capabilities(cfg core.LaunchConfig) map[string]interface{} {
	args := make([]string, 0, len(cfg.BrowserArgs)+1)
	args = append(args, cfg.BrowserArgs...)
	if cfg.Headless {
		args = append(args, "--headless=new")
	}
	return map[string]interface{}{
		"browserName":             "chrome",
		"unhandledPromptBehavior": "ignore",
		"goog:chromeOptions": map[string]interface{}{
			"args": args,
		},
	}
}

// Session is a live WebDriver browser session.
type Session struct {
	client  *Client
	service *Service
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.client.Navigate(ctx, url)
}

func (s *Session) CurrentAddress(ctx context.Context) (string, error) {
	return s.client.CurrentURL(ctx)
}

func (s *Session) Find(ctx context.Context, loc flow.Locator) (core.Element, error) {
	using, value := loc.Query()
	id, err := s.client.FindElement(ctx, using, value)
	if err != nil {
		return nil, err
	}
	return &Element{client: s.client, id: id}, nil
}

// DialogPresent probes the alert endpoint; "no such alert" means none is open.
func (s *Session) DialogPresent(ctx context.Context) (bool, error) {
	_, err := s.client.AlertText(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, core.ErrNoDialog) {
		return false, nil
	}
	return false, err
}

func (s *Session) DialogText(ctx context.Context) (string, error) {
	return s.client.AlertText(ctx)
}

func (s *Session) AcceptDialog(ctx context.Context) error {
	return s.client.AcceptAlert(ctx)
}

func (s *Session) DismissDialog(ctx context.Context) error {
	return s.client.DismissAlert(ctx)
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	return s.client.Screenshot(ctx)
}

// Quit deletes the session and stops chromedriver if this session started it.
// A session the browser already dropped is not an error.
func (s *Session) Quit(ctx context.Context) error {
	err := s.client.Disconnect(ctx)
	if s.service != nil {
		s.service.Stop()
		s.service = nil
	}
	if err != nil && !isGone(err) {
		return fmt.Errorf("quit session: %w", err)
	}
	return nil
}

// Element is a WebDriver element reference.
type Element struct {
	client *Client
	id     string
}

func (e *Element) IsVisible(ctx context.Context) (bool, error) {
	return e.client.IsElementDisplayed(ctx, e.id)
}

func (e *Element) IsInteractable(ctx context.Context) (bool, error) {
	visible, err := e.client.IsElementDisplayed(ctx, e.id)
	if err != nil || !visible {
		return false, err
	}
	return e.client.IsElementEnabled(ctx, e.id)
}

func (e *Element) Click(ctx context.Context) error {
	return e.client.ClickElement(ctx, e.id)
}

func (e *Element) SendText(ctx context.Context, text string) error {
	return e.client.SendKeysToElement(ctx, e.id, text)
}

// SelectOptionByLabel clicks the child option whose visible text is label.
func (e *Element) SelectOptionByLabel(ctx context.Context, label string) error {
	option, err := e.client.FindChildElement(ctx, e.id, flow.UsingXPath, flow.OptionQuery(label))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("option %q: %w", label, err)
		}
		return err
	}
	return e.client.ClickElement(ctx, option)
}
