// Package devtools drives Chrome directly over the DevTools protocol using chromedp.
package devtools

import (
	"context"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/automationqa/journey-runner/pkg/core"
	"github.com/automationqa/journey-runner/pkg/logger"
)

var _ core.Launcher = (*Launcher)(nil)

// Launcher starts a Chrome process (or attaches to one) per session.
type Launcher struct{}

// NewLauncher creates a DevTools launcher.
func NewLauncher() *Launcher {
	return &Launcher{}
}

// Launch allocates a browser and opens one tab. With cfg.RemoteURL set it
// attaches to a running browser's DevTools endpoint instead of starting one.
func (l *Launcher) Launch(ctx context.Context, cfg core.LaunchConfig) (core.Session, error) {
	// The browser must not die with ctx; Quit owns its lifetime.
	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if cfg.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
	} else {
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), AllocatorOptions(cfg)...)
	}
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Debug),
		chromedp.WithErrorf(logger.Debug),
	)

	s := newSession(tabCtx, func() {
		tabCancel()
		allocCancel()
	})
	chromedp.ListenTarget(tabCtx, s.handleEvent)

	// The first Run starts the browser and binds it to tabCtx, so it cannot
	// run under ctx directly.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(tabCtx) }()
	select {
	case err := <-started:
		if err != nil {
			s.cancel()
			return nil, err
		}
	case <-ctx.Done():
		s.cancel()
		return nil, ctx.Err()
	}
	logger.Debug("devtools browser started (remote=%q headless=%v)", cfg.RemoteURL, cfg.Headless)
	return s, nil
}

// AllocatorOptions builds chromedp's exec allocator options from cfg.
// BrowserArgs are "--name" or "--name=value" switches.
func AllocatorOptions(cfg core.LaunchConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Flag("headless", cfg.Headless))
	if cfg.DriverPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.DriverPath))
	}
	for _, arg := range cfg.BrowserArgs {
		name, value, ok := parseSwitch(arg)
		if !ok {
			continue
		}
		opts = append(opts, chromedp.Flag(name, value))
	}
	return opts
}

func parseSwitch(arg string) (string, interface{}, bool) {
	arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
	if arg == "" {
		return "", nil, false
	}
	if name, value, found := strings.Cut(arg, "="); found {
		return name, value, true
	}
	return arg, true, true
}
