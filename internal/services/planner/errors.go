package planner

import "fmt"

type ErrorType string

const (
	ErrTypeValidation   ErrorType = "VALIDATION"
	ErrTypeUnrepairable ErrorType = "UNREPAIRABLE"
	ErrTypeStore        ErrorType = "STORE"
)

type PlannerError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *PlannerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("planner %s error: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("planner %s error: %s", e.Type, e.Message)
}

func (e *PlannerError) Unwrap() error {
	return e.Cause
}

func NewValidationError(msg string) *PlannerError {
	return &PlannerError{Type: ErrTypeValidation, Message: msg}
}

func NewUnrepairableError(msg string, cause error) *PlannerError {
	return &PlannerError{Type: ErrTypeUnrepairable, Message: msg, Cause: cause}
}

func NewStoreError(msg string, cause error) *PlannerError {
	return &PlannerError{Type: ErrTypeStore, Message: msg, Cause: cause}
}

// IsValidation reports whether err is a planner validation or repair failure,
// which handlers map to a 422.
func IsValidation(err error) bool {
	pe, ok := err.(*PlannerError)
	return ok && (pe.Type == ErrTypeValidation || pe.Type == ErrTypeUnrepairable)
}
