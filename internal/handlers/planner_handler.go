// File: internal/handlers/planner_handler.go
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/routelab/route-planner/internal/services/planner"
)

type PlannerHandler struct {
	PlannerService *planner.Service
}

func NewPlannerHandler(ps *planner.Service) *PlannerHandler {
	return &PlannerHandler{PlannerService: ps}
}

// GeneratePlan builds and persists a route plan for the request.
func (h *PlannerHandler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req planner.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusUnprocessableEntity)
		return
	}

	plan, err := h.PlannerService.GeneratePlan(r.Context(), &req)
	if err != nil {
		if planner.IsValidation(err) {
			writeError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		writeError(w, "Could not generate route plan", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// ValidatePlan checks (and repairs) arbitrary plan JSON.
func (h *PlannerHandler) ValidatePlan(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, "could not read request body", http.StatusBadRequest)
		return
	}

	result, err := planner.ValidatePayload(raw)
	if err != nil {
		if planner.IsValidation(err) {
			writeError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		writeError(w, "Could not validate plan", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// History lists recently generated plans.
func (h *PlannerHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	items, err := h.PlannerService.History(r.Context(), limit)
	if err != nil {
		writeError(w, "Could not load plan history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  items,
		"total": len(items),
	})
}
