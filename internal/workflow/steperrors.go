package workflow

import "fmt"

// StepErrorCode is the machine-readable code surfaced in a step failure.
type StepErrorCode string

const (
	ErrNoNumbersFound StepErrorCode = "NoNumbersFound"
	ErrNoTextFound     StepErrorCode = "NoTextFound"
	ErrFileNotFound    StepErrorCode = "FileNotFound"
	ErrNoMatch         StepErrorCode = "NoMatch"
	ErrUnknownColumn   StepErrorCode = "UnknownColumn"
	ErrNotImplemented  StepErrorCode = "NotImplemented"
	ErrAgentUnreachable StepErrorCode = "AgentUnreachable"
	ErrAgentTimeout    StepErrorCode = "AgentTimeout"
	ErrConnectorFailed StepErrorCode = "ConnectorFailed"
	ErrMissingVariable StepErrorCode = "MissingVariable"
)

// StepError is a single step's terminal failure; it short-circuits the
// interpreter but never propagates as a Go error to the server boundary.
type StepError struct {
	Code    StepErrorCode
	Message string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newStepError(code StepErrorCode, format string, args ...any) *StepError {
	return &StepError{Code: code, Message: fmt.Sprintf(format, args...)}
}
