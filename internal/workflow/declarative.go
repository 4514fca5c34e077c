package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/itchyny/gojq"

	"github.com/deskbridge/deskbridge/internal/config"
	"github.com/deskbridge/deskbridge/internal/connector"
	"github.com/deskbridge/deskbridge/internal/workflow/validate"
)

// TriggerContext is the captured-at-hotkey-time context passed to a
// declarative workflow: selection, clipboard, active window, user id.
type TriggerContext struct {
	Hotkey       string
	SelectedText string
	Clipboard    string
	WindowTitle  string
	UserID       string
	ActiveField  string
}

// templateEnv projects a TriggerContext into the environment the
// declarative request template and output content templates render
// against: {input_text, user_id, window_title, active_field}.
func (c TriggerContext) templateEnv() Environment {
	input := c.SelectedText
	if input == "" {
		input = c.Clipboard
	}
	return Environment{
		"input_text":   input,
		"user_id":      c.UserID,
		"window_title": c.WindowTitle,
		"active_field": c.ActiveField,
	}
}

// ExecuteDeclarative renders wf's request template, calls its connector,
// extracts response fields by JSON-path, renders each output's content
// template, and returns the ordered insertion list the agent will apply.
// Whitelist violations and connector failures are folded into the result's
// error status rather than returned as a Go error, per the declarative
// path's HTTP-200-on-terminal-outcome contract.
func ExecuteDeclarative(ctx context.Context, wf config.DeclarativeWorkflow, registry *connector.Registry, trigCtx TriggerContext) *DeclarativeResult {
	executionID := uuid.NewString()
	env := trigCtx.templateEnv()

	rendered := Render(wf.RequestTemplate, env)
	var payload map[string]any
	if err := json.Unmarshal([]byte(rendered), &payload); err != nil {
		return &DeclarativeResult{ExecutionID: executionID, Status: "error", ErrorMessage: fmt.Sprintf("request template did not render valid JSON: %v", err)}
	}

	conn, err := registry.Get(wf.Connector)
	if err != nil {
		return &DeclarativeResult{ExecutionID: executionID, Status: "error", ErrorMessage: err.Error()}
	}

	resp, err := conn.Execute(ctx, wf.Endpoint, payload, wf.Method)
	if err != nil {
		return &DeclarativeResult{ExecutionID: executionID, Status: "error", ErrorMessage: err.Error()}
	}

	insertions := make([]Insertion, 0, len(wf.Outputs))
	for _, out := range wf.Outputs {
		if err := validate.Whitelist(wf.Whitelist, out.TargetField); err != nil {
			return &DeclarativeResult{ExecutionID: executionID, Status: "error", ErrorMessage: err.Error()}
		}

		extracted, err := extractJSONPath(resp, out.ResponsePath)
		if err != nil {
			return &DeclarativeResult{ExecutionID: executionID, Status: "error", ErrorMessage: fmt.Sprintf("extracting %s: %v", out.ResponsePath, err)}
		}

		extractEnv := make(Environment, len(env)+1)
		for k, v := range env {
			extractEnv[k] = v
		}
		extractEnv["value"] = extracted

		content := out.ContentTemplate
		if content == "" {
			content = fmt.Sprint(extracted)
		} else {
			content = Render(content, extractEnv)
		}

		mode := out.Mode
		if mode == "" {
			mode = string(ModeReplace)
		}

		if err := validate.Response(content); err != nil {
			return &DeclarativeResult{ExecutionID: executionID, Status: "error", ErrorMessage: err.Error()}
		}

		if out.Type == "icd10" {
			if err := validate.ICD10(content); err != nil {
				return &DeclarativeResult{ExecutionID: executionID, Status: "error", ErrorMessage: err.Error()}
			}
		}

		label, err := renderLabel(out, resp, extractEnv)
		if err != nil {
			return &DeclarativeResult{ExecutionID: executionID, Status: "error", ErrorMessage: err.Error()}
		}

		insertions = append(insertions, Insertion{
			TargetField:  out.TargetField,
			Content:      content,
			Mode:         InsertionMode(mode),
			Type:         InsertionType(out.Type),
			Navigation:   out.Navigation,
			Label:        label,
			ClickBefore:  clickBeforePoint(out.ClickBefore),
			InsertMethod: out.InsertMethod,
		})
	}

	return &DeclarativeResult{ExecutionID: executionID, Status: "success", Insertions: insertions}
}

// renderLabel derives an output's display label. When out.LabelPath is set
// it is extracted from the full connector response independently of
// ResponsePath (e.g. an ICD-10 code's human-readable name living alongside
// its code), then rendered through LabelTemplate if one is given, with
// "label_value" bound to the extracted value in env. With no LabelPath, the
// static Label field is used verbatim.
func renderLabel(out config.OutputSpec, resp map[string]any, env Environment) (string, error) {
	if out.LabelPath == "" {
		return out.Label, nil
	}

	labelValue, err := extractJSONPath(resp, out.LabelPath)
	if err != nil {
		return "", fmt.Errorf("extracting label %s: %v", out.LabelPath, err)
	}

	if out.LabelTemplate == "" {
		return fmt.Sprint(labelValue), nil
	}

	labelEnv := make(Environment, len(env)+1)
	for k, v := range env {
		labelEnv[k] = v
	}
	labelEnv["label_value"] = labelValue
	return Render(out.LabelTemplate, labelEnv), nil
}

func clickBeforePoint(p *config.Point) *Point {
	if p == nil {
		return nil
	}
	return &Point{X: p.X, Y: p.Y}
}

// extractJSONPath evaluates a gojq expression (e.g. ".icd10.code") against
// the connector's parsed JSON response.
func extractJSONPath(resp map[string]any, path string) (any, error) {
	query, err := gojq.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON path %q: %w", path, err)
	}

	iter := query.Run(resp)
	v, ok := iter.Next()
	if !ok {
		return nil, fmt.Errorf("path %q produced no value", path)
	}
	if err, ok := v.(error); ok {
		return nil, err
	}
	return v, nil
}
