// Package mock provides a scripted in-memory browser for running scenarios
// without a real browser.
package mock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/automationqa/journey-runner/pkg/core"
	"github.com/automationqa/journey-runner/pkg/flow"
)

// pngHeader is returned as the screenshot body.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Browser is a mock implementation of core.Launcher. Pages are registered
// by path; every Launch opens a new Session over the same pages.
type Browser struct {
	BaseURL string

	// LaunchErr makes Launch fail.
	LaunchErr error
	// FindErr makes every Find fail with a non-transient error.
	FindErr error
	// QuitErr is returned by Session.Quit (the session is still released).
	QuitErr error

	mu       sync.Mutex
	pages    map[string]*Page
	launched int
	quit     int
	live     int
	maxLive  int
	last     *Session
}

// NewBrowser creates an empty mock browser.
func NewBrowser(baseURL string) *Browser {
	return &Browser{
		BaseURL: strings.TrimRight(baseURL, "/"),
		pages:   make(map[string]*Page),
	}
}

// AddPage registers a page, replacing any page at the same path.
func (b *Browser) AddPage(p *Page) *Browser {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pages[p.Path] = p
	return b
}

// Launch opens a new session at about:blank.
func (b *Browser) Launch(ctx context.Context, cfg core.LaunchConfig) (core.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.LaunchErr != nil {
		return nil, b.LaunchErr
	}
	b.launched++
	b.live++
	if b.live > b.maxLive {
		b.maxLive = b.live
	}
	s := &Session{browser: b, cfg: cfg, address: "about:blank", values: make(map[string]string)}
	b.last = s
	return s, nil
}

// Launched returns how many sessions were started.
func (b *Browser) Launched() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.launched
}

// Quits returns how many times Quit was called across sessions.
func (b *Browser) Quits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.quit
}

// Live returns the number of sessions not yet quit.
func (b *Browser) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.live
}

// MaxLive returns the highest number of simultaneously live sessions.
func (b *Browser) MaxLive() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxLive
}

// LastSession returns the most recently launched session.
func (b *Browser) LastSession() *Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

type dialog struct {
	text      string
	at        time.Time
	onAccept  func(s *Session)
	onDismiss func(s *Session)
}

type pendingNav struct {
	path string
	at   time.Time
}

// Session is one scripted browser session. It implements core.Session and
// core.Screenshotter.
type Session struct {
	browser *Browser
	cfg     core.LaunchConfig

	mu       sync.Mutex
	address  string
	nodes    []*Node
	loadedAt time.Time
	dialog   *dialog
	pending  *pendingNav
	quit     bool
	calls    []string
	values   map[string]string // last value typed or selected, keyed by node description
	state    map[string]string
}

// Config returns the launch configuration the session was started with.
func (s *Session) Config() core.LaunchConfig { return s.cfg }

// Calls returns the recorded interactions in order.
func (s *Session) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Value returns the last value typed into or selected on the node matching loc.
func (s *Session) Value(loc flow.Locator) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.nodes {
		if n.Matches(loc) {
			if n.selected != "" {
				return n.selected
			}
			return n.value
		}
	}
	return ""
}

// Field returns the value of a named input on the current page.
func (s *Session) Field(name string) string {
	return s.Value(flow.Name(name))
}

// Set stores application state that survives navigation.
func (s *Session) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		s.state = make(map[string]string)
	}
	s.state[key] = value
}

// Get reads application state stored with Set.
func (s *Session) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state[key]
}

func (s *Session) record(format string, args ...interface{}) {
	s.calls = append(s.calls, fmt.Sprintf(format, args...))
}

// load replaces the document. Callers hold s.mu.
func (s *Session) load(path string) {
	for _, n := range s.nodes {
		n.detached = true
	}
	s.browser.mu.Lock()
	page := s.browser.pages[path]
	base := s.browser.BaseURL
	s.browser.mu.Unlock()

	s.address = base + path
	s.loadedAt = time.Now()
	s.nodes = nil
	if page != nil {
		s.nodes = page.instantiate()
	}
}

// tick applies navigations and dialogs that have come due. Callers hold s.mu.
func (s *Session) tick() {
	if s.pending != nil && !time.Now().Before(s.pending.at) {
		path := s.pending.path
		s.pending = nil
		s.load(path)
	}
}

func (s *Session) dialogOpen() bool {
	return s.dialog != nil && !time.Now().Before(s.dialog.at)
}

// Go performs an in-app navigation to path, as a click handler would.
func (s *Session) Go(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(path)
}

// GoAfter schedules an in-app navigation, like a redirect on a timer.
func (s *Session) GoAfter(path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &pendingNav{path: path, at: time.Now().Add(d)}
}

// ShowDialog opens a native dialog after delay. onAccept and onDismiss may be nil.
func (s *Session) ShowDialog(text string, delay time.Duration, onAccept, onDismiss func(s *Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialog = &dialog{text: text, at: time.Now().Add(delay), onAccept: onAccept, onDismiss: onDismiss}
}

// Reveal makes hidden nodes matching loc visible on the current page.
func (s *Session) Reveal(loc flow.Locator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.nodes {
		if n.Matches(loc) {
			n.Hidden = false
		}
	}
}

// Hide hides nodes matching loc on the current page.
func (s *Session) Hide(loc flow.Locator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.nodes {
		if n.Matches(loc) {
			n.Hidden = true
		}
	}
}

var errClosed = errors.New("mock: session already quit")

func (s *Session) alive() error {
	if s.quit {
		return errClosed
	}
	return nil
}

// Navigate loads a page by absolute URL or path.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.alive(); err != nil {
		return err
	}
	path := strings.TrimPrefix(url, s.browser.BaseURL)
	if path == "" {
		path = "/"
	}
	s.record("navigate %s", path)
	s.pending = nil
	s.load(path)
	return nil
}

// CurrentAddress returns the address of the current page.
func (s *Session) CurrentAddress(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.alive(); err != nil {
		return "", err
	}
	s.tick()
	return s.address, nil
}

// Find returns the first present node matching loc in document order.
func (s *Session) Find(ctx context.Context, loc flow.Locator) (core.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.alive(); err != nil {
		return nil, err
	}
	if s.browser.FindErr != nil {
		return nil, s.browser.FindErr
	}
	s.tick()
	since := time.Since(s.loadedAt)
	for _, n := range s.nodes {
		if n.AppearAfter > since {
			continue
		}
		if n.Matches(loc) {
			return &element{s: s, n: n}, nil
		}
	}
	return nil, core.ErrNotFound
}

// DialogPresent reports whether a dialog is open.
func (s *Session) DialogPresent(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.alive(); err != nil {
		return false, err
	}
	return s.dialogOpen(), nil
}

// DialogText returns the open dialog's message.
func (s *Session) DialogText(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dialogOpen() {
		return "", core.ErrNoDialog
	}
	return s.dialog.text, nil
}

func (s *Session) closeDialog(accept bool) error {
	s.mu.Lock()
	if !s.dialogOpen() {
		s.mu.Unlock()
		return core.ErrNoDialog
	}
	d := s.dialog
	s.dialog = nil
	hook := d.onDismiss
	if accept {
		hook = d.onAccept
		s.record("accept dialog %q", d.text)
	} else {
		s.record("dismiss dialog %q", d.text)
	}
	s.mu.Unlock()

	if hook != nil {
		hook(s)
	}
	return nil
}

// AcceptDialog accepts the open dialog.
func (s *Session) AcceptDialog(ctx context.Context) error { return s.closeDialog(true) }

// DismissDialog dismisses the open dialog.
func (s *Session) DismissDialog(ctx context.Context) error { return s.closeDialog(false) }

// Screenshot returns a placeholder PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.alive(); err != nil {
		return nil, err
	}
	return append([]byte(nil), pngHeader...), nil
}

// Quit releases the session. Every call is counted so tests can assert
// teardown happened exactly once.
func (s *Session) Quit(ctx context.Context) error {
	s.mu.Lock()
	wasLive := !s.quit
	s.quit = true
	s.record("quit")
	s.mu.Unlock()

	b := s.browser
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quit++
	if wasLive {
		b.live--
	}
	return b.QuitErr
}

// Closed reports whether the session has been quit.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quit
}
