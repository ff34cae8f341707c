package devtools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automationqa/journey-runner/pkg/core"
	"github.com/automationqa/journey-runner/pkg/flow"
)

func TestHandleEvent_DialogLifecycle(t *testing.T) {
	s := newSession(context.Background(), func() {})
	ctx := context.Background()

	present, err := s.DialogPresent(ctx)
	require.NoError(t, err)
	assert.False(t, present)
	_, err = s.DialogText(ctx)
	assert.ErrorIs(t, err, core.ErrNoDialog)

	opened := s.dialogOpened()
	s.handleEvent(&page.EventJavascriptDialogOpening{Message: "Complaint submitted successfully!", Type: page.DialogTypeAlert})

	select {
	case <-opened:
	default:
		t.Fatal("opened channel not closed")
	}
	text, err := s.DialogText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Complaint submitted successfully!", text)

	// a second dialog before close must not panic on the closed channel
	s.handleEvent(&page.EventJavascriptDialogOpening{Message: "again"})

	s.handleEvent(&page.EventJavascriptDialogClosed{Result: true})
	present, _ = s.DialogPresent(ctx)
	assert.False(t, present)

	select {
	case <-s.dialogOpened():
		t.Fatal("fresh channel should be open")
	default:
	}
}

func TestHandleEvent_AddressTracking(t *testing.T) {
	s := newSession(context.Background(), func() {})
	ctx := context.Background()

	s.handleEvent(&page.EventFrameNavigated{Frame: &cdp.Frame{ID: "main", URL: "http://localhost:5173/login"}})
	s.handleEvent(&page.EventFrameNavigated{Frame: &cdp.Frame{ID: "ad", ParentID: "main", URL: "http://ads.example/"}})

	addr, err := s.CurrentAddress(ctx)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173/login", addr)

	s.handleEvent(&page.EventNavigatedWithinDocument{FrameID: "main", URL: "http://localhost:5173/dashboard"})
	addr, _ = s.CurrentAddress(ctx)
	assert.Equal(t, "http://localhost:5173/dashboard", addr)

	s.handleEvent(&page.EventNavigatedWithinDocument{FrameID: "ad", URL: "http://ads.example/next"})
	addr, _ = s.CurrentAddress(ctx)
	assert.Equal(t, "http://localhost:5173/dashboard", addr)
}

func TestHandleDialog_NoneOpen(t *testing.T) {
	s := newSession(context.Background(), func() {})
	assert.ErrorIs(t, s.AcceptDialog(context.Background()), core.ErrNoDialog)
	assert.ErrorIs(t, s.DismissDialog(context.Background()), core.ErrNoDialog)
}

func TestDialogPresent_CancelledContext(t *testing.T) {
	s := newSession(context.Background(), func() {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.DialogPresent(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil))
	assert.ErrorIs(t, mapError(errors.New("No node with given id found (-32000)")), core.ErrStale)
	assert.ErrorIs(t, mapError(errors.New("Could not find node with given id (-32000)")), core.ErrStale)
	assert.ErrorIs(t, mapError(errors.New("No dialog is showing (-32602)")), core.ErrNoDialog)

	other := errors.New("websocket closed")
	assert.Equal(t, other, mapError(other))
}

func TestParseSwitch(t *testing.T) {
	tests := []struct {
		arg       string
		wantName  string
		wantValue interface{}
		wantOK    bool
	}{
		{"--no-sandbox", "no-sandbox", true, true},
		{"--window-size=1280,800", "window-size", "1280,800", true},
		{"disable-gpu", "disable-gpu", true, true},
		{"  ", "", nil, false},
		{"--", "", nil, false},
	}
	for _, tt := range tests {
		name, value, ok := parseSwitch(tt.arg)
		assert.Equal(t, tt.wantOK, ok, tt.arg)
		assert.Equal(t, tt.wantName, name, tt.arg)
		assert.Equal(t, tt.wantValue, value, tt.arg)
	}
}

func TestAllocatorOptions(t *testing.T) {
	base := len(AllocatorOptions(core.LaunchConfig{}))
	assert.Equal(t, len(chromedp.DefaultExecAllocatorOptions)+1, base)

	opts := AllocatorOptions(core.LaunchConfig{
		DriverPath:  "/usr/bin/chromium",
		BrowserArgs: []string{"--no-sandbox", "", "--window-size=1280,800"},
		Headless:    true,
	})
	assert.Equal(t, base+3, len(opts))
}

// chromeBinary finds a local Chrome for the browser-backed test.
func chromeBinary() string {
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

const dialogPage = `<!doctype html>
<html><body>
<h1>Raise Complaint</h1>
<select id="hostel"><option value="">Select</option><option value="a">Hall A</option></select>
<input name="title">
<button id="hidden" style="display:none">Hidden</button>
<button onclick="alert('Complaint submitted successfully!')">Submit</button>
</body></html>`

func TestSession_AgainstChrome(t *testing.T) {
	if testing.Short() {
		t.Skip("browser test skipped in short mode")
	}
	chrome := chromeBinary()
	if chrome == "" {
		t.Skip("no Chrome binary on PATH")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, dialogPage)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	sess, err := NewLauncher().Launch(ctx, core.LaunchConfig{
		DriverPath:  chrome,
		BrowserArgs: []string{"--no-sandbox"},
		Headless:    true,
	})
	require.NoError(t, err)
	defer sess.Quit(context.Background())

	require.NoError(t, sess.Navigate(ctx, server.URL+"/raise-complaint"))
	addr, err := sess.CurrentAddress(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(addr, "/raise-complaint"), addr)

	_, err = sess.Find(ctx, flow.Text("button", "Missing"))
	assert.ErrorIs(t, err, core.ErrNotFound)

	hidden, err := sess.Find(ctx, flow.ID("hidden"))
	require.NoError(t, err)
	visible, err := hidden.IsVisible(ctx)
	require.NoError(t, err)
	assert.False(t, visible)

	sel, err := sess.Find(ctx, flow.ID("hostel"))
	require.NoError(t, err)
	require.NoError(t, sel.SelectOptionByLabel(ctx, "Hall A"))
	assert.ErrorIs(t, sel.SelectOptionByLabel(ctx, "Hall Z"), core.ErrNotFound)

	title, err := sess.Find(ctx, flow.Name("title"))
	require.NoError(t, err)
	require.NoError(t, title.SendText(ctx, "Broken fan"))

	submit, err := sess.Find(ctx, flow.Text("button", "Submit"))
	require.NoError(t, err)
	require.NoError(t, submit.Click(ctx))

	present, err := sess.DialogPresent(ctx)
	require.NoError(t, err)
	require.True(t, present)
	text, err := sess.DialogText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Complaint submitted successfully!", text)
	require.NoError(t, sess.AcceptDialog(ctx))

	shot, err := sess.(core.Screenshotter).Screenshot(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, shot)

	assert.NoError(t, sess.Quit(ctx))
	assert.NoError(t, sess.Quit(ctx), "second Quit is a no-op")
}
