package webdriver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/automationqa/journey-runner/pkg/core"
	"github.com/automationqa/journey-runner/pkg/flow"
)

// writeJSON encodes data as JSON to the response writer.
func writeJSON(w http.ResponseWriter, data interface{}) {
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.WriteHeader(status)
	writeJSON(w, map[string]interface{}{
		"value": map[string]interface{}{"error": code, "message": msg},
	})
}

// fakeDriver is a small W3C endpoint with one session "s1".
type fakeDriver struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]map[string]interface{}
	handler  func(w http.ResponseWriter, r *http.Request) bool
}

func newFakeDriver(t *testing.T, handler func(w http.ResponseWriter, r *http.Request) bool) (*fakeDriver, *httptest.Server) {
	t.Helper()
	f := &fakeDriver{bodies: map[string]map[string]interface{}{}, handler: handler}
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	return f, server
}

func (f *fakeDriver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	var body map[string]interface{}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, key)
	f.bodies[key] = body
	f.mu.Unlock()

	if f.handler != nil && f.handler(w, r) {
		return
	}
	switch key {
	case "POST /session":
		writeJSON(w, map[string]interface{}{
			"value": map[string]interface{}{"sessionId": "s1", "capabilities": map[string]interface{}{}},
		})
	case "DELETE /session/s1":
		writeJSON(w, map[string]interface{}{"value": nil})
	case "GET /status":
		writeJSON(w, map[string]interface{}{"value": map[string]interface{}{"ready": true}})
	default:
		writeError(w, http.StatusNotFound, "unknown command", key)
	}
}

func (f *fakeDriver) body(key string) map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func (f *fakeDriver) called(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r == key {
			return true
		}
	}
	return false
}

func connected(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client := NewClient(server.URL)
	if err := client.Connect(context.Background(), map[string]interface{}{"browserName": "chrome"}); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	return client
}

func TestClient_Connect(t *testing.T) {
	f, server := newFakeDriver(t, nil)
	client := connected(t, server)

	if client.SessionID() != "s1" {
		t.Errorf("Expected sessionID 's1', got '%s'", client.SessionID())
	}
	caps, _ := f.body("POST /session")["capabilities"].(map[string]interface{})
	always, _ := caps["alwaysMatch"].(map[string]interface{})
	if always["browserName"] != "chrome" {
		t.Errorf("alwaysMatch not sent: %v", caps)
	}
}

func TestClient_ConnectWithoutSessionID(t *testing.T) {
	_, server := newFakeDriver(t, func(w http.ResponseWriter, r *http.Request) bool {
		if r.URL.Path == "/session" {
			writeJSON(w, map[string]interface{}{"value": map[string]interface{}{}})
			return true
		}
		return false
	})
	err := NewClient(server.URL).Connect(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "no session ID") {
		t.Errorf("Expected missing session error, got %v", err)
	}
}

func TestClient_Disconnect(t *testing.T) {
	f, server := newFakeDriver(t, nil)
	client := connected(t, server)

	if err := client.Disconnect(context.Background()); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if !f.called("DELETE /session/s1") {
		t.Error("Expected DELETE to be called")
	}
	if client.SessionID() != "" {
		t.Error("session ID should be cleared")
	}
	// second call is a no-op
	if err := client.Disconnect(context.Background()); err != nil {
		t.Errorf("second Disconnect: %v", err)
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	_, server := newFakeDriver(t, func(w http.ResponseWriter, r *http.Request) bool {
		switch r.URL.Path {
		case "/session/s1/element":
			writeError(w, http.StatusNotFound, codeNoSuchElement, "Unable to locate element")
		case "/session/s1/element/e1/click":
			writeError(w, http.StatusNotFound, codeStaleElement, "element is not attached")
		case "/session/s1/alert/text":
			writeError(w, http.StatusNotFound, codeNoSuchAlert, "no such alert")
		default:
			return false
		}
		return true
	})
	client := connected(t, server)
	ctx := context.Background()

	_, err := client.FindElement(ctx, flow.UsingCSS, "#missing")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("FindElement error = %v, want ErrNotFound", err)
	}
	var we *Error
	if !errors.As(err, &we) || we.Status != http.StatusNotFound {
		t.Errorf("Expected *Error with HTTP status, got %#v", err)
	}

	if err := client.ClickElement(ctx, "e1"); !errors.Is(err, core.ErrStale) {
		t.Errorf("ClickElement error = %v, want ErrStale", err)
	}
	if _, err := client.AlertText(ctx); !errors.Is(err, core.ErrNoDialog) {
		t.Errorf("AlertText error = %v, want ErrNoDialog", err)
	}
}

func TestClient_Status(t *testing.T) {
	_, server := newFakeDriver(t, nil)
	ready, err := NewClient(server.URL).Status(context.Background())
	if err != nil || !ready {
		t.Errorf("Status = %v, %v", ready, err)
	}
}

func TestClient_CancelledContext(t *testing.T) {
	_, server := newFakeDriver(t, nil)
	client := connected(t, server)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.CurrentURL(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("CurrentURL error = %v, want context.Canceled", err)
	}
}

func TestClient_Screenshot(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	_, server := newFakeDriver(t, func(w http.ResponseWriter, r *http.Request) bool {
		if r.URL.Path == "/session/s1/screenshot" {
			writeJSON(w, map[string]interface{}{"value": base64.StdEncoding.EncodeToString(png)})
			return true
		}
		return false
	})
	data, err := connected(t, server).Screenshot(context.Background())
	if err != nil {
		t.Fatalf("Screenshot failed: %v", err)
	}
	if string(data) != string(png) {
		t.Errorf("Screenshot = %v", data)
	}
}

func TestExtractElementID(t *testing.T) {
	if id := extractElementID(map[string]interface{}{w3cElementKey: "w3c"}); id != "w3c" {
		t.Errorf("W3C id = %q", id)
	}
	if id := extractElementID(map[string]interface{}{"ELEMENT": "legacy"}); id != "legacy" {
		t.Errorf("legacy id = %q", id)
	}
	if id := extractElementID(map[string]interface{}{}); id != "" {
		t.Errorf("empty id = %q", id)
	}
}
