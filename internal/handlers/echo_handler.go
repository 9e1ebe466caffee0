// File: internal/handlers/echo_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/routelab/route-planner/internal/services/echo"
)

type EchoHandler struct {
	EchoService *echo.Service
}

func NewEchoHandler(es *echo.Service) *EchoHandler {
	return &EchoHandler{EchoService: es}
}

// Status is a liveness probe for the echo service.
func (h *EchoHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Echo service is running"})
}

// Echo handles the flaky echo demo: a 503 with the attempt count until the
// per-message failure budget is spent, then the echoed message.
func (h *EchoHandler) Echo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message   string `json:"message"`
		ClientKey string `json:"client_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, "message is required", http.StatusUnprocessableEntity)
		return
	}

	result, err := h.EchoService.Echo(r.Context(), req.ClientKey, req.Message)
	if err != nil {
		var transient *echo.TransientError
		if errors.As(err, &transient) {
			writeError(w, transient.Error(), http.StatusServiceUnavailable)
			return
		}
		writeError(w, "Could not process echo request", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Reset clears attempt tracking for a client.
func (h *EchoHandler) Reset(w http.ResponseWriter, r *http.Request) {
	clientKey := mux.Vars(r)["client_key"]

	deleted, err := h.EchoService.Reset(r.Context(), clientKey)
	if err != nil {
		writeError(w, "Could not reset echo attempts", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deleted":    deleted,
		"client_key": clientKey,
	})
}
