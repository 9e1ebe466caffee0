package agentrun

import (
	"context"

	"github.com/routelab/route-planner/internal/domain"
)

// AgentRunRepository handles persisted agent execution history.
type AgentRunRepository interface {
	Create(ctx context.Context, run *domain.AgentRun) (*domain.AgentRun, error)
	FindRecent(ctx context.Context, routeSlug string, limit int) ([]domain.AgentRun, error)
}
