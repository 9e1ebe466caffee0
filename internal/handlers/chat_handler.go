// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/routelab/route-planner/internal/services/agent"
)

type ChatHandler struct {
	AgentService *agent.Service
}

func NewChatHandler(as *agent.Service) *ChatHandler {
	return &ChatHandler{AgentService: as}
}

// Chat answers a free-form logistics question through the chat agent.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusUnprocessableEntity)
		return
	}
	if n := len(strings.TrimSpace(req.Question)); n < 1 || n > 2000 {
		writeError(w, "question must be between 1 and 2000 characters", http.StatusUnprocessableEntity)
		return
	}

	result, err := h.AgentService.Chat(r.Context(), req.Question)
	if err != nil {
		if agent.IsValidation(err) {
			writeError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		writeError(w, "Chat agent error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
