package agent

import "fmt"

type ErrorType string

const (
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeTool       ErrorType = "TOOL"
	ErrTypeStore      ErrorType = "STORE"
)

type AgentError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AgentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("agent %s error: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("agent %s error: %s", e.Type, e.Message)
}

func (e *AgentError) Unwrap() error {
	return e.Cause
}

func NewValidationError(msg string) *AgentError {
	return &AgentError{Type: ErrTypeValidation, Message: msg}
}

func NewToolError(msg string, cause error) *AgentError {
	return &AgentError{Type: ErrTypeTool, Message: msg, Cause: cause}
}

func NewStoreError(msg string, cause error) *AgentError {
	return &AgentError{Type: ErrTypeStore, Message: msg, Cause: cause}
}

// IsValidation reports whether err is an agent input validation failure.
func IsValidation(err error) bool {
	ae, ok := err.(*AgentError)
	return ok && ae.Type == ErrTypeValidation
}
