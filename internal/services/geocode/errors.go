package geocode

import (
	"errors"
	"fmt"
)

// ErrNotConfigured signals a missing Mapbox API key; handlers map it to a 503.
var ErrNotConfigured = errors.New("geocoding is not configured: set MAPBOX_API_KEY")

type GeocodeError struct {
	Message    string
	Validation bool
	Cause      error
}

func (e *GeocodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("geocode error: %s (caused by: %v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("geocode error: %s", e.Message)
}

func (e *GeocodeError) Unwrap() error {
	return e.Cause
}

func NewValidationError(msg string) *GeocodeError {
	return &GeocodeError{Message: msg, Validation: true}
}

func NewLookupError(msg string, cause error) *GeocodeError {
	return &GeocodeError{Message: msg, Cause: cause}
}

// IsValidation reports whether err is a coordinate validation failure.
func IsValidation(err error) bool {
	ge, ok := err.(*GeocodeError)
	return ok && ge.Validation
}
