package rag

import "fmt"

type ErrorType string

const (
	ErrTypeConfig    ErrorType = "CONFIG"
	ErrTypeEmbedding ErrorType = "EMBEDDING"
	ErrTypeIndex     ErrorType = "INDEX"
	ErrTypeStore     ErrorType = "STORE"
)

type RAGError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *RAGError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("RAG %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("RAG %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *RAGError) Unwrap() error {
	return e.Cause
}

func NewConfigError(msg string) *RAGError {
	return &RAGError{Type: ErrTypeConfig, Operation: "config", Message: msg}
}

func NewEmbeddingError(operation, msg string, cause error) *RAGError {
	return &RAGError{Type: ErrTypeEmbedding, Operation: operation, Message: msg, Cause: cause}
}

func NewIndexError(operation, msg string, cause error) *RAGError {
	return &RAGError{Type: ErrTypeIndex, Operation: operation, Message: msg, Cause: cause}
}

func NewStoreError(operation, msg string, cause error) *RAGError {
	return &RAGError{Type: ErrTypeStore, Operation: operation, Message: msg, Cause: cause}
}
