package core

import (
	"context"

	"github.com/automationqa/journey-runner/pkg/flow"
)

//go:generate mockgen -destination=../driver/mock/mocks/mock_core.go -package=mocks github.com/automationqa/journey-runner/pkg/core Launcher,Session,Element

// LaunchConfig carries what a Launcher needs to start a browser.
type LaunchConfig struct {
	DriverPath  string   // local driver binary (chromedriver, chrome)
	RemoteURL   string   // attach to an already running driver or browser instead
	BrowserArgs []string // extra browser command-line switches
	Headless    bool
}

// Launcher starts browser sessions.
// Implementations: webdriver (chromedriver over HTTP), chromedp (DevTools), mock.
type Launcher interface {
	Launch(ctx context.Context, cfg LaunchConfig) (Session, error)
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(ctx context.Context, cfg LaunchConfig) (Session, error)

// Launch calls f.
func (f LauncherFunc) Launch(ctx context.Context, cfg LaunchConfig) (Session, error) {
	return f(ctx, cfg)
}

// Session is one live browser. It is owned by a single runner for one
// scenario and must be released with Quit.
//
// Find returns ErrNotFound when no element matches. DialogText,
// AcceptDialog and DismissDialog return ErrNoDialog when none is open.
type Session interface {
	Navigate(ctx context.Context, url string) error
	CurrentAddress(ctx context.Context) (string, error)
	Find(ctx context.Context, loc flow.Locator) (Element, error)

	DialogPresent(ctx context.Context) (bool, error)
	DialogText(ctx context.Context) (string, error)
	AcceptDialog(ctx context.Context) error
	DismissDialog(ctx context.Context) error

	Quit(ctx context.Context) error
}

// Element is a resolved handle to a DOM node. Methods return ErrStale
// once the node has been detached from the document.
type Element interface {
	IsVisible(ctx context.Context) (bool, error)
	IsInteractable(ctx context.Context) (bool, error)
	Click(ctx context.Context) error
	SendText(ctx context.Context, text string) error
	SelectOptionByLabel(ctx context.Context, label string) error
}

// Screenshotter is implemented by sessions that can capture the viewport as PNG.
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}
