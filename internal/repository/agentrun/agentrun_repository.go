package agentrun

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/routelab/route-planner/internal/domain"
)

type gormAgentRunRepository struct {
	db *gorm.DB
}

func NewAgentRunRepository(db *gorm.DB) AgentRunRepository {
	return &gormAgentRunRepository{db: db}
}

func (r *gormAgentRunRepository) Create(ctx context.Context, run *domain.AgentRun) (*domain.AgentRun, error) {
	if run == nil {
		return nil, errors.New("agent run cannot be nil")
	}
	if run.RouteSlug == "" {
		return nil, errors.New("agent run route slug is required")
	}

	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		log.Printf("[AgentRunRepository] Database error creating agent run for route %q: %v", run.RouteSlug, err)
		return nil, errors.New("database error creating agent run")
	}
	return run, nil
}

// FindRecent returns the newest runs first, optionally filtered by route slug.
func (r *gormAgentRunRepository) FindRecent(ctx context.Context, routeSlug string, limit int) ([]domain.AgentRun, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit)
	if routeSlug != "" {
		query = query.Where("route_slug = ?", routeSlug)
	}

	var runs []domain.AgentRun
	if err := query.Find(&runs).Error; err != nil {
		log.Printf("[AgentRunRepository] Database error fetching recent agent runs: %v", err)
		return nil, errors.New("database error fetching agent runs")
	}
	return runs, nil
}
