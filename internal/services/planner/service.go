// File: internal/services/planner/service.go
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/routelab/route-planner/internal/domain"
	"github.com/routelab/route-planner/internal/repository/routerun"
)

// Service builds deterministic route plans and persists each generated run.
type Service struct {
	runs   routerun.RouteRunRepository
	logger Logger
}

func NewService(runs routerun.RouteRunRepository, logger Logger) *Service {
	return &Service{runs: runs, logger: logger}
}

// BuildPlan generates a structured route plan based on the request
// parameters. The step templates are fixed; one step varies with the
// audience experience level.
func (s *Service) BuildPlan(req *PlanRequest) *RoutePlan {
	steps := []RouteStep{
		{
			Title:           "Route Assessment",
			Description:     "Analyze the delivery requirements, destinations, and time constraints for the route.",
			Owner:           "Route Planner",
			DurationMinutes: 30,
			AcceptanceCriteria: []string{
				"All delivery addresses verified",
				"Time windows confirmed with customers",
			},
		},
		{
			Title:           "Vehicle Selection",
			Description:     "Select appropriate vehicle based on cargo size, weight, and delivery requirements.",
			Owner:           "Fleet Manager",
			DurationMinutes: 15,
			AcceptanceCriteria: []string{
				"Vehicle capacity matches cargo requirements",
				"Vehicle inspection completed",
			},
		},
		{
			Title:           "Route Optimization",
			Description:     "Optimize the delivery sequence to minimize travel time and fuel consumption.",
			Owner:           "Route Planner",
			DurationMinutes: 45,
			AcceptanceCriteria: []string{
				"Route sequence minimizes total distance",
				"Traffic patterns considered",
			},
		},
	}

	steps = append(steps, experienceStep(req.AudienceExperience))

	steps = append(steps, RouteStep{
		Title:           "Dispatch Execution",
		Description:     "Execute the route dispatch and monitor progress throughout delivery operations.",
		Owner:           "Dispatch Coordinator",
		DurationMinutes: 60,
		AcceptanceCriteria: []string{
			"Driver departed on schedule",
			"First delivery completed successfully",
		},
	})

	risks := []string{}
	if req.PrimaryRisk != "" {
		risks = append(risks, req.PrimaryRisk)
	}
	risks = append(risks,
		"Traffic delays may impact delivery windows",
		"Vehicle breakdown could require backup dispatch",
	)

	return &RoutePlan{
		Goal: req.Goal,
		Audience: RouteAudience{
			Role:            req.AudienceRole,
			ExperienceLevel: req.AudienceExperience,
		},
		CreatedAt: time.Now().UTC(),
		Version:   PlanVersion,
		Steps:     steps,
		Risks:     risks,
	}
}

func experienceStep(level string) RouteStep {
	switch level {
	case ExperienceBeginner:
		return RouteStep{
			Title:           "Driver Briefing",
			Description:     "Provide detailed briefing to the driver including route maps, customer instructions, and safety protocols.",
			Owner:           "Dispatch Coordinator",
			DurationMinutes: 30,
			AcceptanceCriteria: []string{
				"Driver acknowledges route details",
				"Safety checklist completed",
			},
		}
	case ExperienceIntermediate:
		return RouteStep{
			Title:           "Customer Notification",
			Description:     "Send delivery notifications to customers with estimated arrival times.",
			Owner:           "Customer Service",
			DurationMinutes: 20,
			AcceptanceCriteria: []string{
				"All customers notified",
				"Special instructions documented",
			},
		}
	default: // advanced
		return RouteStep{
			Title:           "Performance Metrics Setup",
			Description:     "Configure tracking and KPI monitoring for route efficiency analysis.",
			Owner:           "Operations Analyst",
			DurationMinutes: 25,
			AcceptanceCriteria: []string{
				"Real-time tracking enabled",
				"Performance dashboards configured",
			},
		}
	}
}

// GeneratePlan validates the request, builds the plan and persists the run.
func (s *Service) GeneratePlan(ctx context.Context, req *PlanRequest) (*RoutePlan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	plan := s.BuildPlan(req)

	encoded, err := json.Marshal(plan)
	if err != nil {
		return nil, NewStoreError("could not serialize plan", err)
	}

	run := &domain.RouteRun{
		Goal:               req.Goal,
		AudienceRole:       req.AudienceRole,
		AudienceExperience: req.AudienceExperience,
		PrimaryRisk:        req.PrimaryRisk,
		IncludeRisks:       req.PrimaryRisk != "",
		Summary: fmt.Sprintf("Route plan for %s targeting %s (%s)",
			req.Goal, req.AudienceRole, req.AudienceExperience),
		Plan: string(encoded),
	}
	if _, err := s.runs.Create(ctx, run); err != nil {
		return nil, NewStoreError("could not persist route run", err)
	}

	s.logger.Info("route plan generated", "goal", req.Goal, "steps", len(plan.Steps))
	return plan, nil
}

// History returns recently generated route plans, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]HistoryItem, error) {
	runs, err := s.runs.FindRecent(ctx, limit)
	if err != nil {
		return nil, NewStoreError("could not load route run history", err)
	}

	items := make([]HistoryItem, 0, len(runs))
	for _, run := range runs {
		items = append(items, HistoryItem{
			ID:                 run.ID,
			Goal:               run.Goal,
			AudienceRole:       run.AudienceRole,
			AudienceExperience: run.AudienceExperience,
			Summary:            run.Summary,
			Plan:               json.RawMessage(run.Plan),
		})
	}
	return items, nil
}
