package llm

import (
	"errors"
	"fmt"
)

// ErrNotConfigured signals that no completion provider credentials are set.
var ErrNotConfigured = errors.New("no LLM provider configured (need GEMINI_API_KEY or GROQ_API_KEY)")

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeProvider   ErrorType = "PROVIDER"
	ErrTypeEmbedding  ErrorType = "EMBEDDING"
	ErrTypeValidation ErrorType = "VALIDATION"
)

type LLMError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *LLMError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("LLM %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("LLM %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *LLMError) Unwrap() error {
	return e.Cause
}

func NewProviderError(operation, msg string, cause error) *LLMError {
	return &LLMError{Type: ErrTypeProvider, Operation: operation, Message: msg, Cause: cause}
}

func NewEmbeddingError(msg string, cause error) *LLMError {
	return &LLMError{Type: ErrTypeEmbedding, Operation: "embedding", Message: msg, Cause: cause}
}
