// File: internal/services/agent/chat.go
package agent

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/routelab/route-planner/internal/services/rag"
)

var (
	locationPattern = regexp.MustCompile(`\b(?:in|at|for)\s+([a-z\s,.-]+?)(?:\?|$|\s+(?:check|today|now|please))`)
	distancePattern = regexp.MustCompile(`(\d+)\s*(?:km|kilometer)`)
	stopsPattern    = regexp.MustCompile(`(\d+)\s*stop`)
)

var knownPlaces = []string{
	"cairo", "alexandria", "san francisco", "los angeles", "new york",
	"chicago", "houston", "london", "paris", "tokyo", "dubai", "singapore",
	"boston", "seattle", "miami", "dallas", "denver",
}

// Chat answers a free-form question: keyword-driven tool selection, RAG
// retrieval, and an LLM answer grounded on the gathered context. Without a
// provider it falls back to a deterministic summary of the tool output.
func (s *Service) Chat(ctx context.Context, question string) (*ChatResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, NewValidationError("question cannot be empty")
	}

	lower := strings.ToLower(question)
	var toolCalls []ToolCall
	var sections []string

	if containsAny(lower, "weather", "temperature", "rain", "conditions", "forecast") {
		location := extractLocation(lower, "san francisco")
		report := s.weather.Check(ctx, location)
		out := fmt.Sprintf("%s: %s, %.0f°C, wind %.0f km/h. %s",
			report.Location, report.Conditions, report.TemperatureC,
			report.WindSpeedKmh, strings.Join(report.Recommendations, " "))
		toolCalls = append(toolCalls, ToolCall{
			Tool:          "check_weather_conditions",
			Arguments:     map[string]interface{}{"location": location},
			OutputPreview: preview(out, 200),
		})
		sections = append(sections, "## Weather\n\n"+out)
	}

	if containsAny(lower, "calculate", "metrics", "distance", "fuel", "cost") {
		distanceKm := float64(extractInt(distancePattern, lower, 100))
		stops := extractInt(stopsPattern, lower, 5)
		vehicleType := VehicleVan
		if strings.Contains(lower, "truck") {
			vehicleType = VehicleTruck
		} else if strings.Contains(lower, "motorcycle") {
			vehicleType = VehicleMotorcycle
		}

		if metrics, err := ComputeRouteMetrics(distanceKm, stops, 0, vehicleType); err == nil {
			out := fmt.Sprintf("%.0fkm with %d stops by %s: %.1fh total, %.1fL fuel, %.2f EUR, %.1fkg CO2. %s",
				metrics.DistanceKm, stops, vehicleType, metrics.TotalHours,
				metrics.FuelConsumptionLiters, metrics.TotalCostEUR, metrics.CO2Kg,
				strings.Join(metrics.Recommendations, " "))
			toolCalls = append(toolCalls, ToolCall{
				Tool: "calculate_route_metrics",
				Arguments: map[string]interface{}{
					"distance_km": distanceKm, "stops": stops, "vehicle_type": vehicleType,
				},
				OutputPreview: preview(out, 200),
			})
			sections = append(sections, "## Route Metrics\n\n"+out)
		}
	}

	if containsAny(lower, "traffic", "congestion", "delay", "rush hour") {
		at := time.Now()
		if strings.Contains(lower, "morning") {
			at = time.Date(at.Year(), at.Month(), at.Day(), 8, 0, 0, 0, at.Location())
		} else if strings.Contains(lower, "afternoon") || strings.Contains(lower, "evening") {
			at = time.Date(at.Year(), at.Month(), at.Day(), 17, 0, 0, 0, at.Location())
		}
		report := CheckTraffic(at)
		out := fmt.Sprintf("%s (%d%% expected delay). %s",
			report.CongestionLevel, report.EstimatedDelayPct, report.Recommendation)
		toolCalls = append(toolCalls, ToolCall{
			Tool:          "check_traffic_conditions",
			Arguments:     map[string]interface{}{"time_of_day": at.Format("15:04")},
			OutputPreview: preview(out, 200),
		})
		sections = append(sections, "## Traffic\n\n"+out)
	}

	if containsAny(lower, "optimize", "sequence", "arrange") {
		sections = append(sections,
			"## Optimization\n\nFor route optimization, submit a route request with stops, priorities, and time windows to the validation endpoint.")
	}

	contexts, rerr := s.retrieveContexts(ctx, question)
	if rerr == nil && len(contexts) > 0 {
		var lines []string
		for _, doc := range contexts {
			lines = append(lines, fmt.Sprintf("- (%s) %s", doc.Source, preview(doc.Content, 200)))
		}
		sections = append(sections, "## Knowledge Base\n\n"+strings.Join(lines, "\n"))
	}

	answer := s.chatAnswer(ctx, question, sections)

	result := &ChatResult{
		Answer:      answer,
		AnswerHTML:  renderMarkdown(answer),
		ToolCalls:   toolCalls,
		RAGContexts: contexts,
	}
	if result.ToolCalls == nil {
		result.ToolCalls = []ToolCall{}
	}
	if result.RAGContexts == nil {
		result.RAGContexts = []rag.Context{}
	}
	return result, nil
}

func (s *Service) chatAnswer(ctx context.Context, question string, sections []string) string {
	gathered := "No tools were needed for this question."
	if len(sections) > 0 {
		gathered = strings.Join(sections, "\n\n")
	}

	if s.provider != nil {
		prompt := fmt.Sprintf(`You are an expert logistics route planning assistant.

Answer the user's question based on the information provided below. Use clear
markdown headings, bullet points, and short paragraphs. Do not call any tools;
the information has already been retrieved for you.

Retrieved Information:
%s

Question: %s`, gathered, question)

		if answer, err := s.provider.Complete(ctx, prompt); err == nil {
			return strings.TrimSpace(answer)
		} else {
			s.logger.Warn("chat completion failed, using deterministic answer", "error", err)
		}
	}

	if len(sections) > 0 {
		return gathered
	}
	return "I can help with weather lookups, route metrics, traffic analysis, stop optimization, and logistics best practices. Ask about a specific route or concern."
}

func (s *Service) retrieveContexts(ctx context.Context, question string) ([]rag.Context, error) {
	if s.retriever == nil {
		return nil, nil
	}
	return s.retriever.Search(ctx, question, s.topK)
}

func renderMarkdown(source string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(source), &buf); err != nil {
		return ""
	}
	return buf.String()
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func extractLocation(lower, fallback string) string {
	if m := locationPattern.FindStringSubmatch(lower); m != nil {
		return strings.TrimSpace(m[1])
	}
	for _, place := range knownPlaces {
		if strings.Contains(lower, place) {
			return place
		}
	}
	return fallback
}

func extractInt(pattern *regexp.Regexp, s string, fallback int) int {
	if m := pattern.FindStringSubmatch(s); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return v
		}
	}
	return fallback
}
