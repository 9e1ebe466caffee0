// File: internal/handlers/gemini_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/routelab/route-planner/internal/services/llm"
)

// GeminiHandler proxies prompt-to-content generation to the configured LLM
// provider. The Provider may be nil when no API key is set.
type GeminiHandler struct {
	Provider llm.Provider
}

func NewGeminiHandler(provider llm.Provider) *GeminiHandler {
	return &GeminiHandler{Provider: provider}
}

// Generate proxies a prompt to the provider and returns the content.
func (h *GeminiHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if h.Provider == nil {
		writeError(w, "LLM provider not configured. Please set GEMINI_API_KEY or GROQ_API_KEY.", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		writeError(w, "prompt is required", http.StatusUnprocessableEntity)
		return
	}

	content, err := h.Provider.Complete(r.Context(), req.Prompt)
	if err != nil {
		writeError(w, "Content generation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"content": strings.TrimSpace(content),
		"model":   h.Provider.ModelName(),
	})
}

// Status reports whether an LLM provider is configured.
func (h *GeminiHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"configured": h.Provider != nil,
	}
	if h.Provider != nil {
		status["model"] = h.Provider.ModelName()
	}
	writeJSON(w, http.StatusOK, status)
}
