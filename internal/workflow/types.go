package workflow

import (
	"encoding/json"
	"fmt"
	"time"
)

// StepKind is the closed set of visual-workflow step discriminants. Unknown
// tags are rejected at load time.
type StepKind string

// UnmarshalJSON rejects any tag outside the closed set, so a workflow
// carrying an unknown step kind fails to decode.
func (k *StepKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch StepKind(s) {
	case StepReadCoords, StepLookupExcel, StepLookupDB, StepLookupAPI,
		StepFormatWithLLM, StepWriteCoords, StepTranscribeAudio, StepRecordAudio:
		*k = StepKind(s)
		return nil
	}
	return fmt.Errorf("unknown step kind %q", s)
}

const (
	StepReadCoords     StepKind = "read_coords"
	StepLookupExcel    StepKind = "lookup_excel"
	StepLookupDB       StepKind = "lookup_db"
	StepLookupAPI      StepKind = "lookup_api"
	StepFormatWithLLM  StepKind = "format_with_llm"
	StepWriteCoords    StepKind = "write_coords"
	StepTranscribeAudio StepKind = "transcribe_audio"
	StepRecordAudio    StepKind = "record_audio"
)

// Step is a tagged union: a shared prelude (id, kind, enabled, name) plus
// exactly one populated type-specific parameter block, selected by Kind.
// JSON persistence keys the block under the kind's own field name so the
// discriminant is visible on the wire without a separate envelope.
type Step struct {
	ID      string   `json:"id"`
	Kind    StepKind `json:"kind"`
	Enabled bool     `json:"enabled"`
	Name    string   `json:"name,omitempty"`

	ReadCoords      *ReadCoordsParams      `json:"read_coords,omitempty"`
	LookupExcel     *LookupExcelParams     `json:"lookup_excel,omitempty"`
	FormatWithLLM   *FormatWithLLMParams   `json:"format_with_llm,omitempty"`
	WriteCoords     *WriteCoordsParams     `json:"write_coords,omitempty"`
	TranscribeAudio *TranscribeAudioParams `json:"transcribe_audio,omitempty"`
	RecordAudio     *RecordAudioParams     `json:"record_audio,omitempty"`
}

// ReadCoordsParams captures a screen rectangle, OCRs it, and optionally
// extracts the first contiguous digit run.
type ReadCoordsParams struct {
	X              int    `json:"x"`
	Y              int    `json:"y"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	OutputVariable string `json:"output_variable"`
	ExtractNumbers bool   `json:"extract_numbers"`
}

// LookupExcelParams opens a workbook and projects the first matching row.
type LookupExcelParams struct {
	FilePath            string   `json:"file_path"`
	SheetName           string   `json:"sheet_name,omitempty"`
	SearchColumn        string   `json:"search_column"`
	SearchValueVariable string   `json:"search_value_variable"`
	ReturnColumns       []string `json:"return_columns"`
	OutputVariable      string   `json:"output_variable"`
}

// FormatWithLLMParams sends env[InputVariable] to a completion endpoint and
// parses the response into a string→string field mapping.
type FormatWithLLMParams struct {
	InputVariable  string            `json:"input_variable"`
	OutputVariable string            `json:"output_variable"`
	Fields         map[string]string `json:"fields"` // field name -> human description
	Connector      string            `json:"connector"`
	Endpoint       string            `json:"endpoint"`
}

// WriteCoordsParams renders ContentTemplate and posts an insertion to the
// agent dispatcher's local callback endpoint.
type WriteCoordsParams struct {
	X              int    `json:"x"`
	Y              int    `json:"y"`
	ContentTemplate string `json:"content_template"`
	InsertMethod   string `json:"insert_method"`
	KeySequence    string `json:"key_sequence,omitempty"`
}

// TranscribeAudioParams names where a caller-supplied transcription, if
// present, is copied.
type TranscribeAudioParams struct {
	OutputVariable string `json:"output_variable"`
}

// RecordAudioParams names where the sentinel placeholder is written.
type RecordAudioParams struct {
	OutputVariable string `json:"output_variable"`
}

// VisualWorkflow is an ordered step graph, CRUD-managed and persisted to a
// single JSON file rewritten atomically.
type VisualWorkflow struct {
	ID        string    `json:"id"`
	Hotkey    string    `json:"hotkey,omitempty"`
	Enabled   bool      `json:"enabled"`
	Steps     []Step    `json:"steps"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Result is the interpreter's terminal outcome for one execution.
type Result struct {
	ExecutionID  string         `json:"execution_id"`
	Status       string         `json:"status"` // "success" | "error"
	FailedStepID string         `json:"failed_step_id,omitempty"`
	ErrorCode    string         `json:"error_code,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Environment  map[string]any `json:"environment"`
}

// InsertionMode is how an insertion instruction's content replaces existing
// control contents.
type InsertionMode string

const (
	ModeReplace InsertionMode = "replace"
	ModeAppend  InsertionMode = "append"
	ModePrepend InsertionMode = "prepend"
)

// InsertionType distinguishes plain text from an ICD-10 code insertion that
// also carries a human-readable label.
type InsertionType string

const (
	TypeText  InsertionType = "text"
	TypeICD10 InsertionType = "icd10"
)

// Point is a screen coordinate, reused across picker and pre-click fields.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Insertion describes one UI write returned to the agent: a target field,
// its content, how it replaces existing content, and optional navigation.
type Insertion struct {
	TargetField  string        `json:"target_field"`
	Content      string        `json:"content"`
	Mode         InsertionMode `json:"mode"`
	Type         InsertionType `json:"type,omitempty"`
	Navigation   string        `json:"navigation,omitempty"`
	Label        string        `json:"label,omitempty"`
	ClickBefore  *Point        `json:"click_before,omitempty"`
	InsertMethod string        `json:"insert_method,omitempty"`
}

// DeclarativeResult is the outcome of running the declarative workflow path.
type DeclarativeResult struct {
	ExecutionID  string      `json:"execution_id"`
	Status       string      `json:"status"`
	Insertions   []Insertion `json:"insertions,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
}
