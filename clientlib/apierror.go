package clientlib

import (
	"encoding/json"
	"fmt"
)

// APIError is returned for any non-2xx response. Message carries the
// human-readable text extracted from the response body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// parseAPIError pulls a message out of an error body. The backend normally
// answers with {"detail": "..."}, but validation layers can turn detail into
// a list of objects carrying a msg field, and some proxies answer with a
// plain {"message": "..."} instead.
func parseAPIError(status int, body []byte) *APIError {
	fallback := fmt.Sprintf("Request failed with status %d", status)

	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return &APIError{Status: status, Message: fallback}
	}

	if len(envelope.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(envelope.Detail, &detail); err == nil && detail != "" {
			return &APIError{Status: status, Message: detail}
		}

		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 && items[0].Msg != "" {
			return &APIError{Status: status, Message: items[0].Msg}
		}
	}

	if envelope.Message != "" {
		return &APIError{Status: status, Message: envelope.Message}
	}
	return &APIError{Status: status, Message: fallback}
}
