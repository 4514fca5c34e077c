package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ServerClient calls the orchestration server's trigger endpoint and health
// check from the agent side.
type ServerClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewServerClient builds a client targeting the server at baseURL,
// authenticating with token.
func NewServerClient(baseURL, token string) *ServerClient {
	return &ServerClient{baseURL: baseURL, token: token, http: &http.Client{Timeout: 30 * time.Second}}
}

// WaitHealthy polls the server's health endpoint until it succeeds or ctx
// is done, gating the agent's Initializing -> Ready transition.
func (c *ServerClient) WaitHealthy(ctx context.Context) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
		if err == nil {
			if resp, err := c.http.Do(req); err == nil {
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					return nil
				}
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// TriggerInsertion is one insertion instruction returned by the declarative
// trigger endpoint.
type TriggerInsertion struct {
	TargetField  string      `json:"target_field"`
	Content      string      `json:"content"`
	Mode         string      `json:"mode"`
	Type         string      `json:"type,omitempty"`
	Navigation   string      `json:"navigation,omitempty"`
	Label        string      `json:"label,omitempty"`
	InsertMethod string      `json:"insert_method,omitempty"`
	ClickBefore  *PointCoord `json:"click_before,omitempty"`
}

// PointCoord is a screen coordinate as it appears on the wire.
type PointCoord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// TriggerResponse is the declarative trigger's terminal outcome.
type TriggerResponse struct {
	Status       string             `json:"status"`
	Insertions   []TriggerInsertion `json:"insertions,omitempty"`
	ErrorMessage string             `json:"error_message,omitempty"`
}

// VisualWorkflowSummary is the subset of a visual workflow's fields the
// agent needs to build its hotkey table at startup.
type VisualWorkflowSummary struct {
	ID      string `json:"id"`
	Hotkey  string `json:"hotkey"`
	Enabled bool   `json:"enabled"`
}

// ListVisualWorkflows fetches every registered visual workflow so the
// agent can build a hotkey -> id table at startup.
func (c *ServerClient) ListVisualWorkflows(ctx context.Context) ([]VisualWorkflowSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/visual-workflows", nil)
	if err != nil {
		return nil, fmt.Errorf("building visual workflow list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling visual workflow list endpoint: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading visual workflow list response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("visual workflow list returned %d: %s", resp.StatusCode, string(data))
	}

	var out struct {
		Workflows []VisualWorkflowSummary `json:"workflows"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("visual workflow list response is not valid JSON: %w", err)
	}
	return out.Workflows, nil
}

// VisualExecuteResponse mirrors the interpreter's Result as it appears on
// the wire from the visual workflow execute endpoint.
type VisualExecuteResponse struct {
	Status       string         `json:"status"`
	FailedStepID string         `json:"failed_step_id,omitempty"`
	ErrorCode    string         `json:"error_code,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Environment  map[string]any `json:"environment,omitempty"`
}

// ExecuteVisual triggers server-side execution of the visual workflow
// identified by id. The server owns the desktop IO driving read_coords and
// write_coords steps; the agent only needs the terminal result for logging.
func (c *ServerClient) ExecuteVisual(ctx context.Context, id string) (*VisualExecuteResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/visual-workflows/"+id+"/execute", bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, fmt.Errorf("building visual execute request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling visual execute endpoint: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading visual execute response: %w", err)
	}

	var out VisualExecuteResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("visual execute response is not valid JSON: %w", err)
	}
	return &out, nil
}

// ReportPickerCoordinates posts the cursor position captured during a
// picker session to the server, completing whichever session the
// dashboard most recently activated — the server targets a single
// "current" session rather than requiring the agent to echo its id back.
func (c *ServerClient) ReportPickerCoordinates(ctx context.Context, x, y int) error {
	body, err := json.Marshal(map[string]int{"x": x, "y": y})
	if err != nil {
		return fmt.Errorf("encoding picker coordinates request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/picker/coordinates", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building picker coordinates request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling picker coordinates endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("picker coordinates report returned %d: %s", resp.StatusCode, string(data))
	}
	return nil
}

// Trigger posts ctx to /api/trigger and returns the parsed response.
func (c *ServerClient) Trigger(ctx context.Context, hotkey string, capturedCtx Context) (*TriggerResponse, error) {
	body, err := json.Marshal(map[string]any{
		"hotkey": hotkey,
		"context": map[string]string{
			"selected_text": capturedCtx.SelectedText,
			"clipboard":     capturedCtx.Clipboard,
			"window_title":  capturedCtx.WindowTitle,
			"user_id":       capturedCtx.UserID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding trigger request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/trigger", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building trigger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling trigger endpoint: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading trigger response: %w", err)
	}

	var out TriggerResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("trigger response is not valid JSON: %w", err)
	}
	return &out, nil
}
