package routerun

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/routelab/route-planner/internal/domain"
)

type gormRouteRunRepository struct {
	db *gorm.DB
}

func NewRouteRunRepository(db *gorm.DB) RouteRunRepository {
	return &gormRouteRunRepository{db: db}
}

func (r *gormRouteRunRepository) Create(ctx context.Context, run *domain.RouteRun) (*domain.RouteRun, error) {
	if run == nil {
		return nil, errors.New("route run cannot be nil")
	}
	if run.Goal == "" {
		return nil, errors.New("route run goal is required")
	}

	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		log.Printf("[RouteRunRepository] Database error creating route run: %v", err)
		return nil, errors.New("database error creating route run")
	}
	return run, nil
}

func (r *gormRouteRunRepository) FindRecent(ctx context.Context, limit int) ([]domain.RouteRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var runs []domain.RouteRun
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		log.Printf("[RouteRunRepository] Database error fetching recent runs: %v", err)
		return nil, errors.New("database error fetching route runs")
	}
	return runs, nil
}

func (r *gormRouteRunRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.RouteRun{}).Count(&count).Error; err != nil {
		log.Printf("[RouteRunRepository] Database error counting route runs: %v", err)
		return 0, errors.New("database error counting route runs")
	}
	return count, nil
}
