package devtools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/automationqa/journey-runner/pkg/core"
	"github.com/automationqa/journey-runner/pkg/flow"
)

var (
	_ core.Session       = (*Session)(nil)
	_ core.Screenshotter = (*Session)(nil)
	_ core.Element       = (*Element)(nil)
)

// Session is one chromedp tab. Dialog state and the current address are
// tracked from page events, since script evaluation blocks while a
// JavaScript dialog is open.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	mainFrame cdp.FrameID
	address   string
	dialog    *string
	opened    chan struct{} // closed when a dialog opens

	quitOnce sync.Once
	quitErr  error
}

func newSession(ctx context.Context, cancel context.CancelFunc) *Session {
	return &Session{ctx: ctx, cancel: cancel, opened: make(chan struct{})}
}

// handleEvent is registered with chromedp.ListenTarget and must not block.
func (s *Session) handleEvent(ev interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev := ev.(type) {
	case *page.EventJavascriptDialogOpening:
		msg := ev.Message
		s.dialog = &msg
		select {
		case <-s.opened:
		default:
			close(s.opened)
		}
	case *page.EventJavascriptDialogClosed:
		s.dialog = nil
		s.opened = make(chan struct{})
	case *page.EventFrameNavigated:
		if ev.Frame == nil || ev.Frame.ParentID != "" {
			return
		}
		s.mainFrame = ev.Frame.ID
		s.address = ev.Frame.URL + ev.Frame.URLFragment
	case *page.EventNavigatedWithinDocument:
		if s.mainFrame == "" || ev.FrameID == s.mainFrame {
			s.address = ev.URL
		}
	}
}

func (s *Session) dialogOpened() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

// run executes actions on the tab, bounded by the caller's ctx.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return mapError(err)
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *Session) CurrentAddress(ctx context.Context) (string, error) {
	s.mu.Lock()
	addr := s.address
	s.mu.Unlock()
	if addr != "" {
		return addr, nil
	}
	err := s.run(ctx, chromedp.Location(&addr))
	return addr, err
}

func (s *Session) Find(ctx context.Context, loc flow.Locator) (core.Element, error) {
	using, value := loc.Query()
	by := chromedp.BySearch
	if using == flow.UsingCSS {
		by = chromedp.ByQuery
	}

	var nodes []*cdp.Node
	if err := s.run(ctx, chromedp.Nodes(value, &nodes, by, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%s: %w", loc.Describe(), core.ErrNotFound)
	}
	return &Element{session: s, node: nodes[0]}, nil
}

func (s *Session) DialogPresent(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialog != nil, nil
}

func (s *Session) DialogText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dialog == nil {
		return "", core.ErrNoDialog
	}
	return *s.dialog, nil
}

func (s *Session) AcceptDialog(ctx context.Context) error {
	return s.handleDialog(ctx, true)
}

func (s *Session) DismissDialog(ctx context.Context) error {
	return s.handleDialog(ctx, false)
}

func (s *Session) handleDialog(ctx context.Context, accept bool) error {
	if ok, _ := s.DialogPresent(ctx); !ok {
		return core.ErrNoDialog
	}
	return s.run(ctx, page.HandleJavaScriptDialog(accept))
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := s.run(ctx, chromedp.CaptureScreenshot(&buf))
	return buf, err
}

// Quit closes the browser. It is safe to call more than once.
func (s *Session) Quit(ctx context.Context) error {
	s.quitOnce.Do(func() {
		done := make(chan error, 1)
		go func() { done <- chromedp.Cancel(s.ctx) }()
		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				s.quitErr = err
			}
		case <-ctx.Done():
			s.quitErr = ctx.Err()
		}
		s.cancel()
	})
	return s.quitErr
}

// Element is a DOM node resolved in a Session.
type Element struct {
	session *Session
	node    *cdp.Node
}

const stateScript = `function() {
	if (!this.isConnected) return "stale";
	const s = window.getComputedStyle(this);
	if (s.display === "none" || s.visibility === "hidden" || this.getClientRects().length === 0) return "hidden";
	if (this.disabled) return "disabled";
	return "ok";
}`

const selectScript = `function(label) {
	const opt = Array.from(this.options || []).find(o => o.textContent.trim() === label);
	if (!opt) return false;
	const setter = Object.getOwnPropertyDescriptor(HTMLSelectElement.prototype, "value").set;
	setter.call(this, opt.value);
	this.dispatchEvent(new Event("input", { bubbles: true }));
	this.dispatchEvent(new Event("change", { bubbles: true }));
	return true;
}`

func (e *Element) call(ctx context.Context, fn string, res interface{}, args ...interface{}) error {
	return e.session.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(e.node.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()
		return chromedp.CallFunctionOn(fn, res,
			func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
				return p.WithObjectID(obj.ObjectID)
			},
			args...,
		).Do(ctx)
	}))
}

func (e *Element) state(ctx context.Context) (string, error) {
	var state string
	if err := e.call(ctx, stateScript, &state); err != nil {
		return "", err
	}
	if state == "stale" {
		return "", core.ErrStale
	}
	return state, nil
}

func (e *Element) IsVisible(ctx context.Context) (bool, error) {
	state, err := e.state(ctx)
	return state == "ok" || state == "disabled", err
}

func (e *Element) IsInteractable(ctx context.Context) (bool, error) {
	state, err := e.state(ctx)
	return state == "ok", err
}

// Click dispatches a real mouse click. A click that opens a JavaScript
// dialog returns as soon as the dialog appears; the input event itself
// only completes once the dialog is handled.
func (e *Element) Click(ctx context.Context) error {
	if _, err := e.state(ctx); err != nil {
		return err
	}
	opened := e.session.dialogOpened()
	done := make(chan error, 1)
	go func() { done <- e.session.run(ctx, chromedp.MouseClickNode(e.node)) }()
	select {
	case err := <-done:
		return err
	case <-opened:
		return nil
	}
}

func (e *Element) SendText(ctx context.Context, text string) error {
	if _, err := e.state(ctx); err != nil {
		return err
	}
	return e.session.run(ctx, chromedp.KeyEventNode(e.node, text))
}

func (e *Element) SelectOptionByLabel(ctx context.Context, label string) error {
	var ok bool
	if err := e.call(ctx, selectScript, &ok, label); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("option %q: %w", label, core.ErrNotFound)
	}
	return nil
}

// mapError translates DevTools protocol errors into driver sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "No node with given id"),
		strings.Contains(msg, "Could not find node with given id"),
		strings.Contains(msg, "Node is detached"):
		return fmt.Errorf("%w: %v", core.ErrStale, err)
	case strings.Contains(msg, "No dialog is showing"):
		return fmt.Errorf("%w: %v", core.ErrNoDialog, err)
	}
	return err
}
