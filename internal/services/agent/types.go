// File: internal/services/agent/types.go
package agent

import (
	"strings"
	"time"

	"github.com/routelab/route-planner/internal/services/rag"
)

// Delivery priority levels.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Task kinds accepted by ValidateRoute.
const (
	TaskValidateRoute        = "validate_route"
	TaskOptimizeRoute        = "optimize_route"
	TaskValidateAndRecommend = "validate_and_recommend"
)

// Logger defines the logging interface used by the agent service.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// DeliveryStop is a single delivery stop in a route.
type DeliveryStop struct {
	StopID             string   `json:"stop_id"`
	Location           string   `json:"location"`
	SequenceNumber     int      `json:"sequence_number"`
	TimeWindowStart    string   `json:"time_window_start,omitempty"`
	TimeWindowEnd      string   `json:"time_window_end,omitempty"`
	Priority           string   `json:"priority,omitempty"`
	ServiceTimeMinutes int      `json:"service_time_minutes,omitempty"`
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
}

// OperationalConstraints bound the route execution.
type OperationalConstraints struct {
	MaxRouteDurationHours *float64 `json:"max_route_duration_hours,omitempty"`
	DriverShiftEnd        string   `json:"driver_shift_end,omitempty"`
	VehicleCapacity       *float64 `json:"vehicle_capacity,omitempty"`
	Notes                 string   `json:"notes,omitempty"`
}

// RouteRequest is a complete route planning request from a dispatcher.
type RouteRequest struct {
	RouteID          string                  `json:"route_id"`
	StartLocation    string                  `json:"start_location"`
	PlannedStartTime string                  `json:"planned_start_time"`
	VehicleID        string                  `json:"vehicle_id,omitempty"`
	VehicleType      string                  `json:"vehicle_type,omitempty"`
	StartLatitude    *float64                `json:"start_latitude,omitempty"`
	StartLongitude   *float64                `json:"start_longitude,omitempty"`
	Stops            []DeliveryStop          `json:"stops"`
	Constraints      *OperationalConstraints `json:"constraints,omitempty"`
	Task             string                  `json:"task"`
}

func (r *RouteRequest) Validate() error {
	if strings.TrimSpace(r.RouteID) == "" {
		return NewValidationError("route_id is required")
	}
	if strings.TrimSpace(r.StartLocation) == "" {
		return NewValidationError("start_location is required")
	}
	if _, err := time.Parse(time.RFC3339, r.PlannedStartTime); err != nil {
		return NewValidationError("planned_start_time must be an ISO8601 datetime")
	}
	if len(r.Stops) == 0 {
		return NewValidationError("at least one stop is required")
	}
	for i := range r.Stops {
		stop := &r.Stops[i]
		if strings.TrimSpace(stop.StopID) == "" {
			return NewValidationError("every stop needs a stop_id")
		}
		if stop.Priority == "" {
			stop.Priority = PriorityNormal
		}
		switch stop.Priority {
		case PriorityLow, PriorityNormal, PriorityHigh:
		default:
			return NewValidationError("stop priority must be low, normal or high")
		}
	}
	switch r.Task {
	case TaskValidateRoute, TaskOptimizeRoute, TaskValidateAndRecommend:
	default:
		return NewValidationError("task must be validate_route, optimize_route or validate_and_recommend")
	}
	if r.VehicleType == "" {
		r.VehicleType = VehicleVan
	}
	return nil
}

// ToolCall is a trace of one tool invocation the agent performed.
type ToolCall struct {
	Tool          string                 `json:"tool"`
	Arguments     map[string]interface{} `json:"arguments"`
	OutputPreview string                 `json:"output_preview"`
}

// ValidationResult is the agent's route validation/optimization verdict.
type ValidationResult struct {
	IsValid                bool          `json:"is_valid"`
	Issues                 []string      `json:"issues"`
	Recommendations        []string      `json:"recommendations"`
	ActionPlan             []string      `json:"action_plan"`
	OptimizedStopOrder     []string      `json:"optimized_stop_order,omitempty"`
	Summary                string        `json:"summary"`
	EstimatedDurationHours *float64      `json:"estimated_duration_hours,omitempty"`
	EstimatedDistanceKm    *float64      `json:"estimated_distance_km,omitempty"`
	ToolCalls              []ToolCall    `json:"tool_calls,omitempty"`
	RAGContexts            []rag.Context `json:"rag_contexts,omitempty"`
	UsedLLM                bool          `json:"used_llm"`
}

// HistoryItem is the condensed view of a stored agent run.
type HistoryItem struct {
	ID                 uint   `json:"id"`
	RouteSlug          string `json:"route_slug"`
	AudienceRole       string `json:"audience_role"`
	Summary            string `json:"summary"`
	LLMInsight         string `json:"llm_insight,omitempty"`
	UsedLLM            bool   `json:"used_llm"`
	CreatedAt          string `json:"created_at"`
	AudienceExperience string `json:"audience_experience,omitempty"`
}

// ExampleRoute describes a canned route for exercising the validator.
type ExampleRoute struct {
	RouteID          string `json:"route_id"`
	Name             string `json:"name"`
	StartLocation    string `json:"start_location"`
	PlannedStartTime string `json:"planned_start_time"`
	NumStops         int    `json:"num_stops"`
	Description      string `json:"description"`
}

// ChatResult is the response from the chat agent.
type ChatResult struct {
	Answer      string        `json:"answer"`
	AnswerHTML  string        `json:"answer_html,omitempty"`
	ToolCalls   []ToolCall    `json:"tool_calls"`
	RAGContexts []rag.Context `json:"rag_contexts"`
}
