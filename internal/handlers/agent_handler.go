// File: internal/handlers/agent_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/routelab/route-planner/internal/services/agent"
	"github.com/routelab/route-planner/internal/services/rag"
)

type AgentHandler struct {
	AgentService *agent.Service
	Retriever    rag.Retriever
}

func NewAgentHandler(as *agent.Service, retriever rag.Retriever) *AgentHandler {
	return &AgentHandler{AgentService: as, Retriever: retriever}
}

// ValidateRoute runs the route validation/optimization pipeline.
func (h *AgentHandler) ValidateRoute(w http.ResponseWriter, r *http.Request) {
	var req agent.RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusUnprocessableEntity)
		return
	}

	result, err := h.AgentService.ValidateRoute(r.Context(), &req)
	if err != nil {
		if agent.IsValidation(err) {
			writeError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		writeError(w, "Could not validate route", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// History lists past agent runs, optionally filtered by route slug.
func (h *AgentHandler) History(w http.ResponseWriter, r *http.Request) {
	routeSlug := r.URL.Query().Get("route_slug")
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	items, err := h.AgentService.History(r.Context(), routeSlug, limit)
	if err != nil {
		writeError(w, "Could not load agent history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  items,
		"total": len(items),
	})
}

// Routes lists canned example routes for trying out the validator.
func (h *AgentHandler) Routes(w http.ResponseWriter, r *http.Request) {
	routes := h.AgentService.ExampleRoutes()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"routes": routes,
		"total":  len(routes),
	})
}

// Search exposes the knowledge base retriever directly.
func (h *AgentHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, "Query cannot be empty", http.StatusBadRequest)
		return
	}

	k := 5
	if v := r.URL.Query().Get("k"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 1 && parsed <= 20 {
			k = parsed
		}
	}

	if h.Retriever == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"results": []rag.Context{}, "query": query, "total": 0,
		})
		return
	}

	results, err := h.Retriever.Search(r.Context(), query, k)
	if err != nil {
		writeError(w, "Could not search the knowledge base", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []rag.Context{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"query":   query,
		"total":   len(results),
	})
}
