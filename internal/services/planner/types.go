package planner

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Experience levels accepted for a plan audience.
const (
	ExperienceBeginner     = "beginner"
	ExperienceIntermediate = "intermediate"
	ExperienceAdvanced     = "advanced"
)

// PlanVersion stamps generated plans so stored runs can be migrated later.
const PlanVersion = "1.0.0"

// Logger defines the logging interface used by the planner service.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// PlanRequest is the payload accepted from the UI when requesting a route plan.
type PlanRequest struct {
	Goal               string `json:"goal"`
	AudienceRole       string `json:"audience_role"`
	AudienceExperience string `json:"audience_experience"`
	PrimaryRisk        string `json:"primary_risk,omitempty"`
}

func (r *PlanRequest) Validate() error {
	if n := len(strings.TrimSpace(r.Goal)); n < 3 || n > 160 {
		return NewValidationError("goal must be between 3 and 160 characters")
	}
	if n := len(strings.TrimSpace(r.AudienceRole)); n < 2 || n > 64 {
		return NewValidationError("audience_role must be between 2 and 64 characters")
	}
	if !validExperience(r.AudienceExperience) {
		return NewValidationError("audience_experience must be beginner, intermediate or advanced")
	}
	if len(r.PrimaryRisk) > 160 {
		return NewValidationError("primary_risk must be at most 160 characters")
	}
	return nil
}

// RouteAudience describes who the route plan is designed for.
type RouteAudience struct {
	Role            string `json:"role"`
	ExperienceLevel string `json:"experience_level"`
}

// RouteStep is an individual step in the generated route plan.
type RouteStep struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Owner              string   `json:"owner"`
	DurationMinutes    int      `json:"duration_minutes"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
}

func (s *RouteStep) validate() error {
	if n := len(s.Title); n < 3 || n > 120 {
		return NewValidationError("step title must be between 3 and 120 characters")
	}
	if n := len(s.Description); n < 10 || n > 500 {
		return NewValidationError(fmt.Sprintf("step %q description must be between 10 and 500 characters", s.Title))
	}
	if n := len(s.Owner); n < 2 || n > 60 {
		return NewValidationError(fmt.Sprintf("step %q owner must be between 2 and 60 characters", s.Title))
	}
	if s.DurationMinutes < 5 || s.DurationMinutes > 480 {
		return NewValidationError(fmt.Sprintf("step %q duration must be between 5 and 480 minutes", s.Title))
	}
	return nil
}

// RoutePlan is the top-level route plan returned to the frontend.
type RoutePlan struct {
	Goal      string        `json:"goal"`
	Audience  RouteAudience `json:"audience"`
	CreatedAt time.Time     `json:"created_at"`
	Version   string        `json:"version"`
	Steps     []RouteStep   `json:"steps"`
	Risks     []string      `json:"risks"`
}

// Validate enforces the plan invariants, including unique step titles.
func (p *RoutePlan) Validate() error {
	if n := len(strings.TrimSpace(p.Goal)); n < 3 || n > 160 {
		return NewValidationError("goal must be between 3 and 160 characters")
	}
	if n := len(strings.TrimSpace(p.Audience.Role)); n < 2 || n > 64 {
		return NewValidationError("audience role must be between 2 and 64 characters")
	}
	if !validExperience(p.Audience.ExperienceLevel) {
		return NewValidationError("audience experience_level must be beginner, intermediate or advanced")
	}
	if len(p.Steps) == 0 {
		return NewValidationError("plan must contain at least one step")
	}

	seen := make(map[string]struct{}, len(p.Steps))
	for i := range p.Steps {
		if err := p.Steps[i].validate(); err != nil {
			return err
		}
		if _, dup := seen[p.Steps[i].Title]; dup {
			return NewValidationError("step titles must be unique within a plan")
		}
		seen[p.Steps[i].Title] = struct{}{}
	}
	return nil
}

// normalize trims empty acceptance criteria, mirroring what the UI submits.
func (p *RoutePlan) normalize() {
	for i := range p.Steps {
		criteria := p.Steps[i].AcceptanceCriteria[:0]
		for _, c := range p.Steps[i].AcceptanceCriteria {
			if trimmed := strings.TrimSpace(c); trimmed != "" {
				criteria = append(criteria, trimmed)
			}
		}
		p.Steps[i].AcceptanceCriteria = criteria
	}
}

// ValidationResult is returned after validating or repairing arbitrary payloads.
type ValidationResult struct {
	Plan     RoutePlan `json:"plan"`
	Repaired bool      `json:"repaired"`
	Messages []string  `json:"messages"`
}

// HistoryItem is the condensed view of a stored route run.
type HistoryItem struct {
	ID                 uint            `json:"id"`
	Goal               string          `json:"goal"`
	AudienceRole       string          `json:"audience_role"`
	AudienceExperience string          `json:"audience_experience"`
	Summary            string          `json:"summary"`
	Plan               json.RawMessage `json:"plan"`
}

func validExperience(level string) bool {
	switch level {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
		return true
	}
	return false
}
