package routerun

import (
	"context"

	"github.com/routelab/route-planner/internal/domain"
)

// RouteRunRepository handles persisted route plan runs.
type RouteRunRepository interface {
	Create(ctx context.Context, run *domain.RouteRun) (*domain.RouteRun, error)
	FindRecent(ctx context.Context, limit int) ([]domain.RouteRun, error)
	CountAll(ctx context.Context) (int64, error)
}
