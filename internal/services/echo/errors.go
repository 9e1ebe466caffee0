package echo

import "fmt"

// TransientError signals a simulated outage; the handler maps it to a 503 so
// clients can exercise their retry logic against a realistic failure.
type TransientError struct {
	Attempt int
	Total   int
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("Service temporarily unavailable (attempt %d/%d)", e.Attempt, e.Total)
}

type EchoError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *EchoError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("echo %s error: %s (caused by: %v)", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("echo %s error: %s", e.Operation, e.Message)
}

func (e *EchoError) Unwrap() error {
	return e.Cause
}

func NewEchoError(operation, msg string, cause error) *EchoError {
	return &EchoError{Operation: operation, Message: msg, Cause: cause}
}
