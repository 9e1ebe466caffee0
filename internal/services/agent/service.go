// File: internal/services/agent/service.go
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/routelab/route-planner/internal/domain"
	"github.com/routelab/route-planner/internal/repository/agentrun"
	"github.com/routelab/route-planner/internal/services/llm"
	"github.com/routelab/route-planner/internal/services/rag"
)

// Service orchestrates the route validation pipeline: deterministic tools,
// RAG retrieval, an optional LLM pass, and run persistence. The LLM provider
// and retriever may be nil; the pipeline degrades gracefully without them.
type Service struct {
	runs      agentrun.AgentRunRepository
	retriever rag.Retriever
	provider  llm.CompletionProvider
	weather   *WeatherClient
	topK      int
	logger    Logger
}

func NewService(
	runs agentrun.AgentRunRepository,
	retriever rag.Retriever,
	provider llm.CompletionProvider,
	weather *WeatherClient,
	topK int,
	logger Logger,
) *Service {
	if topK < 1 {
		topK = 3
	}
	return &Service{
		runs:      runs,
		retriever: retriever,
		provider:  provider,
		weather:   weather,
		topK:      topK,
		logger:    logger,
	}
}

// ValidateRoute runs the validation/optimization pipeline over a route request.
func (s *Service) ValidateRoute(ctx context.Context, req *RouteRequest) (*ValidationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var toolCalls []ToolCall

	// Weather at the depot.
	weather := s.weather.Check(ctx, req.StartLocation)
	toolCalls = append(toolCalls, ToolCall{
		Tool:          "check_weather_conditions",
		Arguments:     map[string]interface{}{"location": req.StartLocation},
		OutputPreview: fmt.Sprintf("%s, %.0f°C, %s", weather.Status, weather.TemperatureC, weather.Conditions),
	})

	// Distance and metrics.
	distanceKm := EstimateRouteDistance(req)
	metrics, err := ComputeRouteMetrics(distanceKm, len(req.Stops), 0, req.VehicleType)
	if err != nil {
		return nil, err
	}
	toolCalls = append(toolCalls, ToolCall{
		Tool: "calculate_route_metrics",
		Arguments: map[string]interface{}{
			"distance_km":  metrics.DistanceKm,
			"stops":        len(req.Stops),
			"vehicle_type": metrics.VehicleType,
		},
		OutputPreview: fmt.Sprintf("%.1fh total, %.2f EUR, %.1fkg CO2",
			metrics.TotalHours, metrics.TotalCostEUR, metrics.CO2Kg),
	})

	// Time window and constraint validation.
	issues := ValidateTimeWindows(req)
	toolCalls = append(toolCalls, ToolCall{
		Tool:          "validate_time_windows",
		Arguments:     map[string]interface{}{"route_id": req.RouteID},
		OutputPreview: fmt.Sprintf("%d issue(s) found", len(issues)),
	})

	// Traffic at the planned departure.
	var traffic *TrafficReport
	if start, perr := time.Parse(time.RFC3339, req.PlannedStartTime); perr == nil {
		traffic = CheckTraffic(start)
		toolCalls = append(toolCalls, ToolCall{
			Tool:          "check_traffic_conditions",
			Arguments:     map[string]interface{}{"time_of_day": start.Format("15:04")},
			OutputPreview: traffic.CongestionLevel,
		})
	}

	// Stop sequence optimization.
	var optimizedOrder []string
	if req.Task == TaskOptimizeRoute || req.Task == TaskValidateAndRecommend {
		optimizedOrder = OptimizeStops(req.Stops)
		toolCalls = append(toolCalls, ToolCall{
			Tool:          "optimize_stop_sequence",
			Arguments:     map[string]interface{}{"stops": len(req.Stops)},
			OutputPreview: strings.Join(optimizedOrder, ","),
		})
	}

	// RAG retrieval for operating guidance.
	var ragContexts []rag.Context
	if s.retriever != nil {
		query := fmt.Sprintf("%s %s delivery logistics best practices", req.StartLocation, req.VehicleType)
		contexts, rerr := s.retriever.Search(ctx, query, s.topK)
		if rerr != nil {
			s.logger.Warn("knowledge base retrieval failed", "error", rerr)
		} else if len(contexts) > 0 {
			ragContexts = contexts
			toolCalls = append(toolCalls, ToolCall{
				Tool:          "rag_retrieval",
				Arguments:     map[string]interface{}{"query": query, "k": s.topK},
				OutputPreview: fmt.Sprintf("Retrieved %d relevant document(s)", len(contexts)),
			})
		}
	}

	recommendations := append([]string{}, metrics.Recommendations...)
	recommendations = append(recommendations, weather.Recommendations...)
	if traffic != nil && traffic.DelayFactor > 1.3 {
		issues = append(issues, fmt.Sprintf("departure falls in %s (%s)", traffic.Period, traffic.CongestionLevel))
		recommendations = append(recommendations, traffic.Recommendation)
	}

	result := &ValidationResult{
		IsValid:            len(issues) == 0,
		Issues:             issues,
		Recommendations:    recommendations,
		ActionPlan:         buildActionPlan(req, optimizedOrder),
		OptimizedStopOrder: optimizedOrder,
		ToolCalls:          toolCalls,
		RAGContexts:        ragContexts,
	}
	result.EstimatedDurationHours = &metrics.TotalHours
	result.EstimatedDistanceKm = &metrics.DistanceKm

	// Optional LLM pass over the gathered evidence.
	var insight string
	if s.provider != nil {
		insight = s.llmInsight(ctx, req, metrics, weather, issues, ragContexts)
		if insight != "" {
			result.UsedLLM = true
			result.Recommendations = append(result.Recommendations, insight)
			result.ToolCalls = append(result.ToolCalls, ToolCall{
				Tool:          "llm_insight",
				Arguments:     map[string]interface{}{"route_id": req.RouteID},
				OutputPreview: preview(insight, 100),
			})
		}
	}

	if result.IsValid {
		result.Summary = fmt.Sprintf("Route %s is valid with %d stops. Estimated duration: %.1fh. %d recommendation(s) provided.",
			req.RouteID, len(req.Stops), metrics.TotalHours, len(result.Recommendations))
	} else {
		result.Summary = fmt.Sprintf("Route %s has %d issue(s) that must be addressed before execution.",
			req.RouteID, len(result.Issues))
	}

	if err := s.persistRun(ctx, req, result, insight); err != nil {
		// persistence failures are logged, not surfaced; the verdict is still useful
		s.logger.Error("could not persist agent run", "route_id", req.RouteID, "error", err)
	}
	return result, nil
}

func buildActionPlan(req *RouteRequest, optimizedOrder []string) []string {
	plan := []string{
		fmt.Sprintf("Load vehicle at %s before %s", req.StartLocation, req.PlannedStartTime),
		"Confirm delivery windows with high-priority customers",
	}
	if len(optimizedOrder) > 0 {
		plan = append(plan, "Follow optimized stop order: "+strings.Join(optimizedOrder, " → "))
	} else {
		plan = append(plan, fmt.Sprintf("Execute %d stops in planned sequence", len(req.Stops)))
	}
	plan = append(plan, "Report completion status to dispatch after final stop")
	return plan
}

func (s *Service) llmInsight(
	ctx context.Context,
	req *RouteRequest,
	metrics *RouteMetrics,
	weather *WeatherReport,
	issues []string,
	ragContexts []rag.Context,
) string {
	var b strings.Builder
	b.WriteString("You are an expert logistics route validation advisor.\n\n")
	fmt.Fprintf(&b, "Route %s departs %s at %s with %d stops by %s.\n",
		req.RouteID, req.StartLocation, req.PlannedStartTime, len(req.Stops), req.VehicleType)
	fmt.Fprintf(&b, "Estimated: %.1fkm, %.1fh total, %.2f EUR, %.1fkg CO2.\n",
		metrics.DistanceKm, metrics.TotalHours, metrics.TotalCostEUR, metrics.CO2Kg)
	fmt.Fprintf(&b, "Weather at depot: %s, %.0f°C, wind %.0f km/h.\n",
		weather.Conditions, weather.TemperatureC, weather.WindSpeedKmh)
	if len(issues) > 0 {
		b.WriteString("Known issues:\n")
		for _, issue := range issues {
			b.WriteString("- " + issue + "\n")
		}
	}
	if len(ragContexts) > 0 {
		b.WriteString("Relevant documentation:\n")
		for _, doc := range ragContexts {
			fmt.Fprintf(&b, "- (%s) %s\n", doc.Source, preview(doc.Content, 200))
		}
	}
	b.WriteString("\nProvide one concise strategic recommendation (2-3 sentences) for the dispatcher.")

	answer, err := s.provider.Complete(ctx, b.String())
	if err != nil {
		s.logger.Warn("LLM insight generation failed", "error", err)
		return ""
	}
	return strings.TrimSpace(answer)
}

func (s *Service) persistRun(ctx context.Context, req *RouteRequest, result *ValidationResult, insight string) error {
	toolCalls, err := json.Marshal(result.ToolCalls)
	if err != nil {
		return err
	}
	recs, err := json.Marshal(result.Recommendations)
	if err != nil {
		return err
	}
	contexts, err := json.Marshal(result.RAGContexts)
	if err != nil {
		return err
	}

	run := &domain.AgentRun{
		RouteSlug:          req.RouteID,
		AudienceRole:       "dispatcher",
		AudienceExperience: "advanced",
		Summary:            result.Summary,
		LLMInsight:         insight,
		RecommendedActions: string(recs),
		ToolCalls:          string(toolCalls),
		RAGContexts:        string(contexts),
		UsedLLM:            result.UsedLLM,
	}
	_, err = s.runs.Create(ctx, run)
	return err
}

// History lists past agent runs, optionally filtered by route slug.
func (s *Service) History(ctx context.Context, routeSlug string, limit int) ([]HistoryItem, error) {
	runs, err := s.runs.FindRecent(ctx, routeSlug, limit)
	if err != nil {
		return nil, NewStoreError("could not load agent history", err)
	}

	items := make([]HistoryItem, 0, len(runs))
	for _, run := range runs {
		items = append(items, HistoryItem{
			ID:                 run.ID,
			RouteSlug:          run.RouteSlug,
			AudienceRole:       run.AudienceRole,
			AudienceExperience: run.AudienceExperience,
			Summary:            run.Summary,
			LLMInsight:         run.LLMInsight,
			UsedLLM:            run.UsedLLM,
			CreatedAt:          run.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return items, nil
}

// ExampleRoutes returns canned routes for exercising the validator.
func (s *Service) ExampleRoutes() []ExampleRoute {
	return []ExampleRoute{
		{
			RouteID:          "RT-001",
			Name:             "Downtown Morning Delivery",
			StartLocation:    "San Francisco Depot",
			PlannedStartTime: "2025-12-24T07:00:00Z",
			NumStops:         8,
			Description:      "High-priority deliveries in downtown SF during morning hours",
		},
		{
			RouteID:          "RT-002",
			Name:             "Suburban Afternoon Route",
			StartLocation:    "Oakland Warehouse",
			PlannedStartTime: "2025-12-24T13:00:00Z",
			NumStops:         12,
			Description:      "Standard deliveries in suburban areas with flexible time windows",
		},
		{
			RouteID:          "RT-003",
			Name:             "Express Cross-City",
			StartLocation:    "San Jose Distribution Center",
			PlannedStartTime: "2025-12-24T10:00:00Z",
			NumStops:         5,
			Description:      "Urgent deliveries across multiple cities",
		},
	}
}

// preview truncates to at most max runes so multi-byte text is never cut
// mid-character.
func preview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
