package document

import (
	"context"

	"github.com/routelab/route-planner/internal/domain"
)

// ChunkRepository handles stored document chunks for the retrieval index.
type ChunkRepository interface {
	FindAll(ctx context.Context) ([]domain.DocumentChunk, error)
	FindBySlug(ctx context.Context, slug string) ([]domain.DocumentChunk, error)
	Create(ctx context.Context, chunk *domain.DocumentChunk) (*domain.DocumentChunk, error)
	UpdateEmbedding(ctx context.Context, chunkID uint, embedding string) error
	DeleteBySlug(ctx context.Context, slug string) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}
