package server

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/deskbridge/deskbridge/internal/config"
	"github.com/deskbridge/deskbridge/internal/httputil"
	"github.com/deskbridge/deskbridge/internal/tracing"
	"github.com/deskbridge/deskbridge/internal/workflow"
	"github.com/deskbridge/deskbridge/internal/workflow/validate"
)

var triggerTracer = tracing.Tracer("deskbridge/server")

type triggerRequest struct {
	Hotkey  string            `json:"hotkey"`
	Context triggerContextDTO `json:"context"`
}

type triggerContextDTO struct {
	SelectedText string `json:"selected_text"`
	Clipboard    string `json:"clipboard"`
	WindowTitle  string `json:"window_title"`
	UserID       string `json:"user_id"`
	ActiveField  string `json:"active_field"`
}

// handleTrigger dispatches a declarative workflow by hotkey. A terminal
// workflow outcome (success or error) is always HTTP 200, per the
// declarative path's contract; only an unknown hotkey is a 404.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	ctx, span := triggerTracer.Start(r.Context(), "trigger")
	defer span.End()

	var req triggerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	span.SetAttributes(attribute.String("hotkey", req.Hotkey))

	wf, ok := s.declarativeByKey[config.NormalizeHotkey(req.Hotkey)]
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "unknown hotkey")
		return
	}
	span.SetAttributes(attribute.String("workflow_id", wf.ID), attribute.String("connector", wf.Connector))

	trigCtx := workflow.TriggerContext{
		Hotkey:       req.Hotkey,
		SelectedText: req.Context.SelectedText,
		Clipboard:    req.Context.Clipboard,
		WindowTitle:  req.Context.WindowTitle,
		UserID:       req.Context.UserID,
		ActiveField:  req.Context.ActiveField,
	}

	boundInput := trigCtx.SelectedText
	if boundInput == "" {
		boundInput = trigCtx.Clipboard
	}
	minLen, maxLen := 0, 0
	if wf.Input.MinLength != nil {
		minLen = *wf.Input.MinLength
	}
	if wf.Input.MaxLength != nil {
		maxLen = *wf.Input.MaxLength
	}
	if err := validate.InputLength(boundInput, minLen, maxLen); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := workflow.ExecuteDeclarative(ctx, wf, s.connectors, trigCtx)
	span.SetAttributes(attribute.String("status", result.Status))
	if result.Status != "success" {
		span.SetStatus(codes.Error, result.ErrorMessage)
	}

	s.audit.Record(AuditEntry{
		WorkflowID: wf.ID,
		Connector:  wf.Connector,
		Status:     AuditStatus(result.Status),
	})

	httputil.WriteJSON(w, http.StatusOK, result)
}

// handleListWorkflows lists the loaded declarative workflows.
func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"workflows": s.declarative})
}
