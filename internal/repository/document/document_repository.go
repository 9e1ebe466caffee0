package document

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/routelab/route-planner/internal/domain"
)

type gormChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) ChunkRepository {
	return &gormChunkRepository{db: db}
}

func (r *gormChunkRepository) FindAll(ctx context.Context) ([]domain.DocumentChunk, error) {
	var chunks []domain.DocumentChunk
	err := r.db.WithContext(ctx).Order("id ASC").Find(&chunks).Error
	if err != nil {
		log.Printf("[ChunkRepository] Database error fetching chunks: %v", err)
		return nil, errors.New("database error fetching document chunks")
	}
	return chunks, nil
}

func (r *gormChunkRepository) FindBySlug(ctx context.Context, slug string) ([]domain.DocumentChunk, error) {
	if slug == "" {
		return nil, errors.New("invalid slug")
	}

	var chunks []domain.DocumentChunk
	err := r.db.WithContext(ctx).Where("slug = ?", slug).Order("id ASC").Find(&chunks).Error
	if err != nil {
		log.Printf("[ChunkRepository] Database error fetching chunks for slug %q: %v", slug, err)
		return nil, errors.New("database error fetching document chunks")
	}
	return chunks, nil
}

func (r *gormChunkRepository) Create(ctx context.Context, chunk *domain.DocumentChunk) (*domain.DocumentChunk, error) {
	if chunk == nil || chunk.Slug == "" || chunk.Content == "" {
		return nil, errors.New("invalid document chunk")
	}

	if err := r.db.WithContext(ctx).Create(chunk).Error; err != nil {
		log.Printf("[ChunkRepository] Database error creating chunk for slug %q: %v", chunk.Slug, err)
		return nil, errors.New("database error creating document chunk")
	}
	return chunk, nil
}

func (r *gormChunkRepository) UpdateEmbedding(ctx context.Context, chunkID uint, embedding string) error {
	if chunkID == 0 {
		return errors.New("invalid chunk ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.DocumentChunk{}).
		Where("id = ?", chunkID).
		Update("embedding", embedding)
	if result.Error != nil {
		log.Printf("[ChunkRepository] Database error updating embedding for chunk ID %d: %v", chunkID, result.Error)
		return errors.New("database error updating chunk embedding")
	}
	if result.RowsAffected == 0 {
		return errors.New("document chunk not found")
	}
	return nil
}

func (r *gormChunkRepository) DeleteBySlug(ctx context.Context, slug string) (int64, error) {
	if slug == "" {
		return 0, errors.New("invalid slug")
	}

	result := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&domain.DocumentChunk{})
	if result.Error != nil {
		log.Printf("[ChunkRepository] Database error deleting chunks for slug %q: %v", slug, result.Error)
		return 0, errors.New("database error deleting document chunks")
	}
	return result.RowsAffected, nil
}

func (r *gormChunkRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.DocumentChunk{}).Count(&count).Error; err != nil {
		log.Printf("[ChunkRepository] Database error counting chunks: %v", err)
		return 0, errors.New("database error counting document chunks")
	}
	return count, nil
}
