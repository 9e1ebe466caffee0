package echo

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/routelab/route-planner/internal/domain"
)

var ErrAttemptNotFound = errors.New("echo attempt not found")

type gormAttemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &gormAttemptRepository{db: db}
}

func (r *gormAttemptRepository) FindByClientKeyAndMessage(ctx context.Context, clientKey, message string) (*domain.EchoAttempt, error) {
	if clientKey == "" {
		return nil, errors.New("invalid client key")
	}

	var attempt domain.EchoAttempt
	err := r.db.WithContext(ctx).
		Where("client_key = ? AND message = ?", clientKey, message).
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		log.Printf("[EchoRepository] Database error finding attempt for client %q: %v", clientKey, err)
		return nil, errors.New("database error fetching echo attempt")
	}
	return &attempt, nil
}

func (r *gormAttemptRepository) Create(ctx context.Context, attempt *domain.EchoAttempt) (*domain.EchoAttempt, error) {
	if attempt == nil || attempt.ClientKey == "" {
		return nil, errors.New("invalid echo attempt")
	}

	if err := r.db.WithContext(ctx).Create(attempt).Error; err != nil {
		log.Printf("[EchoRepository] Database error creating attempt for client %q: %v", attempt.ClientKey, err)
		return nil, errors.New("database error creating echo attempt")
	}
	return attempt, nil
}

func (r *gormAttemptRepository) Update(ctx context.Context, attempt *domain.EchoAttempt) error {
	if attempt == nil || attempt.ID == 0 {
		return errors.New("invalid echo attempt")
	}

	if err := r.db.WithContext(ctx).Save(attempt).Error; err != nil {
		log.Printf("[EchoRepository] Database error updating attempt ID %d: %v", attempt.ID, err)
		return errors.New("database error updating echo attempt")
	}
	return nil
}

func (r *gormAttemptRepository) DeleteByClientKey(ctx context.Context, clientKey string) (int64, error) {
	if clientKey == "" {
		return 0, errors.New("invalid client key")
	}

	result := r.db.WithContext(ctx).
		Where("client_key = ?", clientKey).
		Delete(&domain.EchoAttempt{})
	if result.Error != nil {
		log.Printf("[EchoRepository] Database error deleting attempts for client %q: %v", clientKey, result.Error)
		return 0, errors.New("database error deleting echo attempts")
	}
	return result.RowsAffected, nil
}
