// Package agentclient calls the agent dispatcher's local callback server
// from the visual interpreter's write_coords step. It is the C2→C4 channel
// described in the data-flow overview, distinct from the C4→C3 trigger call.
package agentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	apperrors "github.com/deskbridge/deskbridge/pkg/errors"
)

// Client posts insertion requests to the agent's callback server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a Client targeting the agent callback server at baseURL
// (e.g. "http://127.0.0.1:8765").
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// WriteCoordsRequest is the payload accepted by the agent's
// /execute/write_coords endpoint.
type WriteCoordsRequest struct {
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Content      string `json:"content"`
	InsertMethod string `json:"insert_method"`
	KeySequence  string `json:"key_sequence,omitempty"`
}

// WriteCoordsResponse mirrors the agent's success/error envelope.
type WriteCoordsResponse struct {
	Status      string `json:"status"`
	Coordinates struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"coordinates"`
	Error string `json:"error,omitempty"`
}

// WriteCoords performs the write_coords call. It fails with AgentUnreachable
// on transport errors, AgentTimeout on context/timeout, and surfaces the
// agent's own error string otherwise.
func (c *Client) WriteCoords(ctx context.Context, req WriteCoordsRequest) (*WriteCoordsResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.Wrap(err, "encoding write_coords request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute/write_coords", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, "building write_coords request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		var netErr net.Error
		if ctx.Err() != nil || (apperrors.As(err, &netErr) && netErr.Timeout()) {
			return nil, &apperrors.ConnectorError{Connector: "agent", Code: apperrors.ConnectorTimeout, Message: "AgentTimeout", Cause: err}
		}
		return nil, &apperrors.ConnectorError{Connector: "agent", Code: apperrors.ConnectorConnection, Message: "AgentUnreachable", Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.Wrap(err, "reading agent response")
	}

	var out WriteCoordsResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &apperrors.ConnectorError{Connector: "agent", Code: apperrors.ConnectorInvalidResponse, Message: "agent response is not valid JSON"}
	}

	if resp.StatusCode >= 400 || out.Status == "error" {
		msg := out.Error
		if msg == "" {
			msg = fmt.Sprintf("agent returned HTTP %d", resp.StatusCode)
		}
		return nil, &apperrors.ConnectorError{Connector: "agent", Code: apperrors.ConnectorHTTP, StatusCode: resp.StatusCode, Message: msg}
	}

	return &out, nil
}
