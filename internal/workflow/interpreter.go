package workflow

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/deskbridge/deskbridge/internal/agentclient"
	"github.com/deskbridge/deskbridge/internal/connector"
	"github.com/deskbridge/deskbridge/internal/desktop"
	applog "github.com/deskbridge/deskbridge/internal/log"
	"github.com/google/uuid"
)

var digitRun = regexp.MustCompile(`\d+`)

// Interpreter executes visual workflows: an ordered list of enabled steps
// threading a variable Environment, short-circuiting on the first step
// error.
type Interpreter struct {
	Desktop     desktop.IO
	Connectors  *connector.Registry
	Agent       *agentclient.Client
	Logger      *slog.Logger
}

// NewInterpreter builds an Interpreter. A nil logger falls back to
// slog.Default().
func NewInterpreter(d desktop.IO, connectors *connector.Registry, agent *agentclient.Client, logger *slog.Logger) *Interpreter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interpreter{Desktop: d, Connectors: connectors, Agent: agent, Logger: logger}
}

// Execute runs wf's enabled steps in order over an environment seeded from
// initialVars. Modifier keys are released unconditionally on return,
// regardless of outcome — the only required clean-up.
func (in *Interpreter) Execute(ctx context.Context, wf *VisualWorkflow, initialVars map[string]any) *Result {
	executionID := uuid.NewString()
	env := NewEnvironment(initialVars)
	defer func() {
		if err := in.Desktop.ReleaseModifiers(); err != nil {
			in.Logger.Warn("releasing modifier keys", applog.EventKey, "modifier_release_failed", "error", err)
		}
	}()

	for _, step := range wf.Steps {
		if !step.Enabled {
			continue
		}

		in.Logger.Debug("executing step", applog.StepIDKey, step.ID, "kind", step.Kind, "execution_id", executionID)
		if stepErr := in.runStep(ctx, step, env); stepErr != nil {
			return &Result{
				ExecutionID:  executionID,
				Status:       "error",
				FailedStepID: step.ID,
				ErrorCode:    string(stepErr.Code),
				ErrorMessage: stepErr.Message,
				Environment:  env,
			}
		}
	}

	return &Result{ExecutionID: executionID, Status: "success", Environment: env}
}

func (in *Interpreter) runStep(ctx context.Context, step Step, env Environment) *StepError {
	switch step.Kind {
	case StepReadCoords:
		return in.runReadCoords(step.ReadCoords, env)
	case StepLookupExcel:
		return in.runLookupExcel(step.LookupExcel, env)
	case StepLookupDB, StepLookupAPI:
		return newStepError(ErrNotImplemented, "%s is a reserved step kind", step.Kind)
	case StepFormatWithLLM:
		return in.runFormatWithLLM(ctx, step.FormatWithLLM, env)
	case StepWriteCoords:
		return in.runWriteCoords(ctx, step.WriteCoords, env)
	case StepTranscribeAudio:
		return in.runTranscribeAudio(step.TranscribeAudio, env)
	case StepRecordAudio:
		return in.runRecordAudio(step.RecordAudio, env)
	default:
		return newStepError(ErrNotImplemented, "unknown step kind %q", step.Kind)
	}
}

func (in *Interpreter) runReadCoords(p *ReadCoordsParams, env Environment) *StepError {
	img, err := in.Desktop.Screenshot(desktop.Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height})
	if err != nil {
		return newStepError(ErrNoTextFound, "capturing screen region: %v", err)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return newStepError(ErrNoTextFound, "read_coords region has zero width or height")
	}

	text, err := in.Desktop.OCR(img)
	if err != nil {
		return newStepError(ErrNoTextFound, "OCR failed: %v", err)
	}
	if text == "" {
		return newStepError(ErrNoTextFound, "OCR produced no text")
	}

	if p.ExtractNumbers {
		match := digitRun.FindString(text)
		if match == "" {
			return newStepError(ErrNoNumbersFound, "no digit run found in OCR text")
		}
		text = match
	}

	env.SetString(p.OutputVariable, text)
	return nil
}

func (in *Interpreter) runLookupExcel(p *LookupExcelParams, env Environment) *StepError {
	searchValue, ok := env.GetString(p.SearchValueVariable)
	if !ok {
		return newStepError(ErrMissingVariable, "search value variable %q not set", p.SearchValueVariable)
	}

	row, stepErr := excelLookup(p.FilePath, p.SheetName, p.SearchColumn, searchValue, p.ReturnColumns)
	if stepErr != nil {
		return stepErr
	}

	env.SetMapping(p.OutputVariable, row)
	return nil
}

func (in *Interpreter) runFormatWithLLM(ctx context.Context, p *FormatWithLLMParams, env Environment) *StepError {
	input, ok := env[p.InputVariable]
	if !ok {
		return newStepError(ErrMissingVariable, "input variable %q not set", p.InputVariable)
	}

	conn, err := in.Connectors.Get(p.Connector)
	if err != nil {
		return newStepError(ErrConnectorFailed, "%v", err)
	}

	fields, stepErr := formatWithLLM(ctx, conn, p.Endpoint, input, p.Fields)
	if stepErr != nil {
		return stepErr
	}

	env.SetMapping(p.OutputVariable, fields)
	return nil
}

func (in *Interpreter) runWriteCoords(ctx context.Context, p *WriteCoordsParams, env Environment) *StepError {
	content := Render(p.ContentTemplate, env)

	resp, err := in.Agent.WriteCoords(ctx, agentWriteCoordsRequest(p, content))
	if err != nil {
		return connectorErrToStepError(err)
	}
	_ = resp
	return nil
}

func (in *Interpreter) runTranscribeAudio(p *TranscribeAudioParams, env Environment) *StepError {
	transcription, ok := env.GetString("transcription")
	if !ok {
		return newStepError(ErrMissingVariable, "no transcription supplied; the interpreter never owns the microphone")
	}
	env.SetString(p.OutputVariable, transcription)
	return nil
}

func (in *Interpreter) runRecordAudio(p *RecordAudioParams, env Environment) *StepError {
	env.SetString(p.OutputVariable, "RECORDING_PLACEHOLDER")
	return nil
}
