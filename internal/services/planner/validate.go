// File: internal/services/planner/validate.go
package planner

import (
	"encoding/json"
	"time"
)

// ValidatePayload checks arbitrary plan JSON against the plan schema. When the
// payload is missing required pieces it repairs them with sensible defaults
// and records a message per repair; a payload that still fails after repair is
// rejected as unrepairable.
func ValidatePayload(raw json.RawMessage) (*ValidationResult, error) {
	if plan, err := decodePlan(raw); err == nil {
		return &ValidationResult{Plan: *plan, Repaired: false, Messages: []string{}}, nil
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, NewUnrepairableError("payload is not a JSON object", err)
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}

	messages := []string{}
	repaired := false

	if _, ok := payload["goal"]; !ok {
		payload["goal"] = "Route optimization"
		messages = append(messages, "Added default goal")
		repaired = true
	}
	if _, ok := payload["audience"]; !ok {
		payload["audience"] = map[string]interface{}{
			"role":             "Driver",
			"experience_level": ExperienceIntermediate,
		}
		messages = append(messages, "Added default audience")
		repaired = true
	}
	if steps, ok := payload["steps"].([]interface{}); !ok || len(steps) == 0 {
		payload["steps"] = []interface{}{
			map[string]interface{}{
				"title":               "Initial Assessment",
				"description":         "Assess the route requirements and constraints.",
				"owner":               "Route Planner",
				"duration_minutes":    30,
				"acceptance_criteria": []interface{}{},
			},
		}
		messages = append(messages, "Added default step")
		repaired = true
	}
	if _, ok := payload["risks"]; !ok {
		payload["risks"] = []interface{}{}
	}

	rebuilt, err := json.Marshal(payload)
	if err != nil {
		return nil, NewUnrepairableError("unable to repair plan", err)
	}
	plan, err := decodePlan(rebuilt)
	if err != nil {
		return nil, NewUnrepairableError("unable to repair plan", err)
	}
	return &ValidationResult{Plan: *plan, Repaired: repaired, Messages: messages}, nil
}

// decodePlan parses plan JSON, fills schema defaults and validates.
func decodePlan(raw json.RawMessage) (*RoutePlan, error) {
	var plan RoutePlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, NewValidationError("plan payload is not valid JSON: " + err.Error())
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	if plan.Version == "" {
		plan.Version = PlanVersion
	}
	plan.normalize()
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}
