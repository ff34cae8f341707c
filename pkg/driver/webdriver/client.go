// Package webdriver drives Chrome through chromedriver using the W3C
// WebDriver HTTP protocol.
package webdriver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/automationqa/journey-runner/pkg/core"
)

// W3C element identifier key
const w3cElementKey = "element-6066-11e4-a52e-4f735466cecf"

// W3C error codes the session maps onto driver sentinels.
const (
	codeNoSuchElement = "no such element"
	codeStaleElement  = "stale element reference"
	codeNoSuchAlert   = "no such alert"
	codeNoSuchWindow  = "no such window"
	codeInvalidID     = "invalid session id"
)

// Error is a WebDriver error response.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is maps protocol errors onto the driver sentinels so callers can use errors.Is.
func (e *Error) Is(target error) bool {
	switch target {
	case core.ErrNotFound:
		return e.Code == codeNoSuchElement
	case core.ErrStale:
		return e.Code == codeStaleElement
	case core.ErrNoDialog:
		return e.Code == codeNoSuchAlert
	}
	return false
}

// Client is a minimal W3C WebDriver client bound to one session.
type Client struct {
	serverURL string
	sessionID string
	client    *http.Client
}

// NewClient creates a client for the driver at serverURL.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimSuffix(serverURL, "/"),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SessionID returns the active session, empty before Connect.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Connect creates a new browser session.
func (c *Client) Connect(ctx context.Context, capabilities map[string]interface{}) error {
	body := map[string]interface{}{
		"capabilities": map[string]interface{}{
			"alwaysMatch": capabilities,
		},
	}

	resp, err := c.post(ctx, "/session", body)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	value, ok := resp["value"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("create session: invalid response format")
	}
	sessionID, _ := value["sessionId"].(string)
	if sessionID == "" {
		return fmt.Errorf("create session: no session ID in response")
	}
	c.sessionID = sessionID
	return nil
}

// Disconnect deletes the session. It is a no-op when none was created.
func (c *Client) Disconnect(ctx context.Context) error {
	if c.sessionID == "" {
		return nil
	}
	_, err := c.delete(ctx, c.sessionPath())
	c.sessionID = ""
	return err
}

// Status reports whether the driver is ready to create sessions.
func (c *Client) Status(ctx context.Context) (bool, error) {
	resp, err := c.get(ctx, "/status")
	if err != nil {
		return false, err
	}
	value, _ := resp["value"].(map[string]interface{})
	ready, _ := value["ready"].(bool)
	return ready, nil
}

// Navigate loads url in the current top-level browsing context.
func (c *Client) Navigate(ctx context.Context, url string) error {
	_, err := c.post(ctx, c.sessionPath()+"/url", map[string]interface{}{"url": url})
	return err
}

// CurrentURL returns the address of the current page.
func (c *Client) CurrentURL(ctx context.Context) (string, error) {
	resp, err := c.get(ctx, c.sessionPath()+"/url")
	if err != nil {
		return "", err
	}
	url, _ := resp["value"].(string)
	return url, nil
}

// FindElement finds the first element matching the query.
func (c *Client) FindElement(ctx context.Context, using, value string) (string, error) {
	return c.findFrom(ctx, c.sessionPath()+"/element", using, value)
}

// FindChildElement finds an element relative to parent.
func (c *Client) FindChildElement(ctx context.Context, parent, using, value string) (string, error) {
	return c.findFrom(ctx, c.elementPath(parent)+"/element", using, value)
}

func (c *Client) findFrom(ctx context.Context, path, using, value string) (string, error) {
	resp, err := c.post(ctx, path, map[string]interface{}{
		"using": using,
		"value": value,
	})
	if err != nil {
		return "", err
	}
	elem, ok := resp["value"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid element response")
	}
	id := extractElementID(elem)
	if id == "" {
		return "", fmt.Errorf("element ID not found in response")
	}
	return id, nil
}

// ClickElement clicks an element.
func (c *Client) ClickElement(ctx context.Context, elementID string) error {
	_, err := c.post(ctx, c.elementPath(elementID)+"/click", map[string]interface{}{})
	return err
}

// SendKeysToElement types text into an element.
func (c *Client) SendKeysToElement(ctx context.Context, elementID, text string) error {
	_, err := c.post(ctx, c.elementPath(elementID)+"/value", map[string]interface{}{
		"text": text,
	})
	return err
}

// IsElementDisplayed checks if element is displayed.
func (c *Client) IsElementDisplayed(ctx context.Context, elementID string) (bool, error) {
	return c.boolValue(ctx, c.elementPath(elementID)+"/displayed")
}

// IsElementEnabled checks if element is enabled.
func (c *Client) IsElementEnabled(ctx context.Context, elementID string) (bool, error) {
	return c.boolValue(ctx, c.elementPath(elementID)+"/enabled")
}

// AlertText returns the text of the open user prompt.
func (c *Client) AlertText(ctx context.Context) (string, error) {
	resp, err := c.get(ctx, c.sessionPath()+"/alert/text")
	if err != nil {
		return "", err
	}
	text, _ := resp["value"].(string)
	return text, nil
}

// AcceptAlert accepts the open user prompt.
func (c *Client) AcceptAlert(ctx context.Context) error {
	_, err := c.post(ctx, c.sessionPath()+"/alert/accept", map[string]interface{}{})
	return err
}

// DismissAlert dismisses the open user prompt.
func (c *Client) DismissAlert(ctx context.Context) error {
	_, err := c.post(ctx, c.sessionPath()+"/alert/dismiss", map[string]interface{}{})
	return err
}

// Screenshot captures the viewport as PNG.
func (c *Client) Screenshot(ctx context.Context) ([]byte, error) {
	resp, err := c.get(ctx, c.sessionPath()+"/screenshot")
	if err != nil {
		return nil, err
	}
	data, ok := resp["value"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid screenshot response")
	}
	return base64.StdEncoding.DecodeString(data)
}

// Helper methods

func (c *Client) sessionPath() string {
	return "/session/" + c.sessionID
}

func (c *Client) elementPath(elementID string) string {
	return c.sessionPath() + "/element/" + elementID
}

func (c *Client) boolValue(ctx context.Context, path string) (bool, error) {
	resp, err := c.get(ctx, path)
	if err != nil {
		return false, err
	}
	v, _ := resp["value"].(bool)
	return v, nil
}

func (c *Client) get(ctx context.Context, path string) (map[string]interface{}, error) {
	return c.request(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (map[string]interface{}, error) {
	return c.request(ctx, http.MethodPost, path, body)
}

func (c *Client) delete(ctx context.Context, path string) (map[string]interface{}, error) {
	return c.request(ctx, http.MethodDelete, path, nil)
}

func (c *Client) request(ctx context.Context, method, path string, body interface{}) (map[string]interface{}, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response (HTTP %d): %w", resp.StatusCode, err)
	}

	// Check for WebDriver error
	if errValue, ok := result["value"].(map[string]interface{}); ok {
		if code, ok := errValue["error"].(string); ok {
			msg, _ := errValue["message"].(string)
			return result, &Error{Status: resp.StatusCode, Code: code, Message: msg}
		}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return result, &Error{Status: resp.StatusCode, Code: "unknown error", Message: http.StatusText(resp.StatusCode)}
	}
	return result, nil
}

func extractElementID(value map[string]interface{}) string {
	// W3C format
	if id, ok := value[w3cElementKey].(string); ok {
		return id
	}
	// Legacy format
	if id, ok := value["ELEMENT"].(string); ok {
		return id
	}
	return ""
}

// isGone reports errors meaning the browser window or session no longer exists.
func isGone(err error) bool {
	var we *Error
	if errors.As(err, &we) {
		return we.Code == codeNoSuchWindow || we.Code == codeInvalidID
	}
	return false
}
