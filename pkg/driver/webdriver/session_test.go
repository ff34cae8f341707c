package webdriver

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/automationqa/journey-runner/pkg/core"
	"github.com/automationqa/journey-runner/pkg/flow"
)

func element(id string) map[string]interface{} {
	return map[string]interface{}{"value": map[string]interface{}{w3cElementKey: id}}
}

func launchRemote(t *testing.T, handler func(w http.ResponseWriter, r *http.Request) bool) (*fakeDriver, core.Session) {
	t.Helper()
	f, server := newFakeDriver(t, handler)
	s, err := NewLauncher().Launch(context.Background(), core.LaunchConfig{RemoteURL: server.URL, Headless: true})
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	return f, s
}

func TestCapabilities(t *testing.T) {
	caps := Capabilities(core.LaunchConfig{BrowserArgs: []string{"--window-size=1280,800"}, Headless: true})
	if caps["unhandledPromptBehavior"] != "ignore" {
		t.Errorf("prompts must stay open, got %v", caps["unhandledPromptBehavior"])
	}
	opts := caps["goog:chromeOptions"].(map[string]interface{})
	args := opts["args"].([]string)
	if len(args) != 2 || args[1] != "--headless=new" {
		t.Errorf("args = %v", args)
	}

	caps = Capabilities(core.LaunchConfig{})
	if args := caps["goog:chromeOptions"].(map[string]interface{})["args"].([]string); len(args) != 0 {
		t.Errorf("headed args = %v", args)
	}
}

func TestSession_FindAndAct(t *testing.T) {
	f, s := launchRemote(t, func(w http.ResponseWriter, r *http.Request) bool {
		switch r.Method + " " + r.URL.Path {
		case "POST /session/s1/element":
			writeJSON(w, element("e1"))
		case "GET /session/s1/element/e1/displayed", "GET /session/s1/element/e1/enabled":
			writeJSON(w, map[string]interface{}{"value": true})
		case "POST /session/s1/element/e1/click", "POST /session/s1/element/e1/value":
			writeJSON(w, map[string]interface{}{"value": nil})
		default:
			return false
		}
		return true
	})
	ctx := context.Background()

	el, err := s.Find(ctx, flow.Name("email"))
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	body := f.body("POST /session/s1/element")
	if body["using"] != flow.UsingCSS || body["value"] != `[name="email"]` {
		t.Errorf("find body = %v", body)
	}

	ok, err := el.IsInteractable(ctx)
	if err != nil || !ok {
		t.Errorf("IsInteractable = %v, %v", ok, err)
	}
	if err := el.SendText(ctx, "student@example.com"); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	if got := f.body("POST /session/s1/element/e1/value")["text"]; got != "student@example.com" {
		t.Errorf("sent text = %v", got)
	}
	if err := el.Click(ctx); err != nil {
		t.Errorf("Click failed: %v", err)
	}
}

func TestSession_InteractableHiddenSkipsEnabled(t *testing.T) {
	f, s := launchRemote(t, func(w http.ResponseWriter, r *http.Request) bool {
		switch r.URL.Path {
		case "/session/s1/element":
			writeJSON(w, element("e1"))
		case "/session/s1/element/e1/displayed":
			writeJSON(w, map[string]interface{}{"value": false})
		default:
			return false
		}
		return true
	})
	el, err := s.Find(context.Background(), flow.ID("rollNumber"))
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	ok, err := el.IsInteractable(context.Background())
	if err != nil || ok {
		t.Errorf("IsInteractable = %v, %v", ok, err)
	}
	if f.called("GET /session/s1/element/e1/enabled") {
		t.Error("enabled should not be queried for a hidden element")
	}
}

func TestSession_SelectOptionByLabel(t *testing.T) {
	f, s := launchRemote(t, func(w http.ResponseWriter, r *http.Request) bool {
		switch r.Method + " " + r.URL.Path {
		case "POST /session/s1/element":
			writeJSON(w, element("sel"))
		case "POST /session/s1/element/sel/element":
			writeJSON(w, element("opt"))
		case "POST /session/s1/element/opt/click":
			writeJSON(w, map[string]interface{}{"value": nil})
		default:
			return false
		}
		return true
	})
	ctx := context.Background()
	el, err := s.Find(ctx, flow.ID("universitySelect"))
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if err := el.SelectOptionByLabel(ctx, "Thapar University"); err != nil {
		t.Fatalf("SelectOptionByLabel failed: %v", err)
	}
	body := f.body("POST /session/s1/element/sel/element")
	if body["using"] != flow.UsingXPath || body["value"] != flow.OptionQuery("Thapar University") {
		t.Errorf("option query = %v", body)
	}
	if !f.called("POST /session/s1/element/opt/click") {
		t.Error("option was not clicked")
	}
}

func TestSession_SelectMissingOption(t *testing.T) {
	_, s := launchRemote(t, func(w http.ResponseWriter, r *http.Request) bool {
		switch r.URL.Path {
		case "/session/s1/element":
			writeJSON(w, element("sel"))
		case "/session/s1/element/sel/element":
			writeError(w, http.StatusNotFound, codeNoSuchElement, "no option")
		default:
			return false
		}
		return true
	})
	el, _ := s.Find(context.Background(), flow.ID("hostel"))
	err := el.SelectOptionByLabel(context.Background(), "Hall Z")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSession_Dialogs(t *testing.T) {
	var open atomic.Bool
	open.Store(true)
	f, s := launchRemote(t, func(w http.ResponseWriter, r *http.Request) bool {
		switch r.Method + " " + r.URL.Path {
		case "GET /session/s1/alert/text":
			if !open.Load() {
				writeError(w, http.StatusNotFound, codeNoSuchAlert, "no such alert")
				return true
			}
			writeJSON(w, map[string]interface{}{"value": "Complaint submitted successfully!"})
		case "POST /session/s1/alert/accept":
			open.Store(false)
			writeJSON(w, map[string]interface{}{"value": nil})
		default:
			return false
		}
		return true
	})
	ctx := context.Background()

	present, err := s.DialogPresent(ctx)
	if err != nil || !present {
		t.Fatalf("DialogPresent = %v, %v", present, err)
	}
	text, err := s.DialogText(ctx)
	if err != nil || text != "Complaint submitted successfully!" {
		t.Errorf("DialogText = %q, %v", text, err)
	}
	if err := s.AcceptDialog(ctx); err != nil {
		t.Fatalf("AcceptDialog failed: %v", err)
	}
	present, err = s.DialogPresent(ctx)
	if err != nil || present {
		t.Errorf("DialogPresent after accept = %v, %v", present, err)
	}
	if err := s.DismissDialog(ctx); err == nil {
		t.Error("DismissDialog with no dialog should fail")
	}
	if !f.called("POST /session/s1/alert/dismiss") {
		t.Error("dismiss endpoint not called")
	}
}

func TestSession_NavigateAndAddress(t *testing.T) {
	f, s := launchRemote(t, func(w http.ResponseWriter, r *http.Request) bool {
		switch r.Method + " " + r.URL.Path {
		case "POST /session/s1/url":
			writeJSON(w, map[string]interface{}{"value": nil})
		case "GET /session/s1/url":
			writeJSON(w, map[string]interface{}{"value": "http://localhost:5173/login"})
		default:
			return false
		}
		return true
	})
	ctx := context.Background()
	if err := s.Navigate(ctx, "http://localhost:5173/login"); err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	if got := f.body("POST /session/s1/url")["url"]; got != "http://localhost:5173/login" {
		t.Errorf("navigate body = %v", got)
	}
	addr, err := s.CurrentAddress(ctx)
	if err != nil || addr != "http://localhost:5173/login" {
		t.Errorf("CurrentAddress = %q, %v", addr, err)
	}
}

func TestSession_QuitToleratesClosedBrowser(t *testing.T) {
	f, s := launchRemote(t, func(w http.ResponseWriter, r *http.Request) bool {
		if r.Method == http.MethodDelete {
			writeError(w, http.StatusNotFound, codeInvalidID, "session deleted")
			return true
		}
		return false
	})
	if err := s.Quit(context.Background()); err != nil {
		t.Errorf("Quit = %v, want nil", err)
	}
	if !f.called("DELETE /session/s1") {
		t.Error("DELETE not sent")
	}
}

func TestSession_QuitReportsOtherErrors(t *testing.T) {
	_, s := launchRemote(t, func(w http.ResponseWriter, r *http.Request) bool {
		if r.Method == http.MethodDelete {
			writeError(w, http.StatusInternalServerError, "unknown error", "boom")
			return true
		}
		return false
	})
	if err := s.Quit(context.Background()); err == nil {
		t.Error("Quit should report driver errors")
	}
}

func TestLauncher_ConnectFailure(t *testing.T) {
	_, server := newFakeDriver(t, func(w http.ResponseWriter, r *http.Request) bool {
		writeError(w, http.StatusInternalServerError, "session not created", "Chrome failed to start")
		return true
	})
	_, err := NewLauncher().Launch(context.Background(), core.LaunchConfig{RemoteURL: server.URL})
	if err == nil {
		t.Fatal("expected launch error")
	}
}

func TestService_MissingBinary(t *testing.T) {
	svc := NewService("/nonexistent/chromedriver")
	if err := svc.Start(context.Background()); err == nil {
		svc.Stop()
		t.Fatal("expected start error")
	}
	// Stop on a service that never started is safe
	svc.Stop()
}

func TestFreePort(t *testing.T) {
	port, err := freePort()
	if err != nil || port <= 0 {
		t.Errorf("freePort = %d, %v", port, err)
	}
}
