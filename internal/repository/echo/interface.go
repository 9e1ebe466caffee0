package echo

import (
	"context"

	"github.com/routelab/route-planner/internal/domain"
)

// AttemptRepository handles echo attempt tracking for the flaky echo demo.
type AttemptRepository interface {
	FindByClientKeyAndMessage(ctx context.Context, clientKey, message string) (*domain.EchoAttempt, error)
	Create(ctx context.Context, attempt *domain.EchoAttempt) (*domain.EchoAttempt, error)
	Update(ctx context.Context, attempt *domain.EchoAttempt) error
	DeleteByClientKey(ctx context.Context, clientKey string) (int64, error)
}
