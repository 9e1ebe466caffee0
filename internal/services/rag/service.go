// File: internal/services/rag/service.go
package rag

import (
	"context"

	"github.com/routelab/route-planner/internal/domain"
	"github.com/routelab/route-planner/internal/repository/document"
)

// Service retrieves context from document chunks stored in the database,
// running an exact flat-index search over their embeddings. Chunks ingested
// without an embedding are embedded lazily on first retrieval and written
// back, so the index survives ingest runs done before the embedding model
// was configured.
type Service struct {
	chunks   document.ChunkRepository
	embedder Embedder
	logger   Logger
}

func NewService(chunks document.ChunkRepository, embedder Embedder, logger Logger) *Service {
	return &Service{chunks: chunks, embedder: embedder, logger: logger}
}

func (s *Service) Search(ctx context.Context, query string, k int) ([]Context, error) {
	if query == "" {
		return nil, NewIndexError("search", "query cannot be empty", nil)
	}
	if s.embedder == nil {
		// No embedding model means no semantic search; callers treat an
		// empty result set as "no context available".
		s.logger.Warn("retrieval skipped, no embedder configured")
		return nil, nil
	}

	entries, err := s.loadEntries(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	queryVector, err := s.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, NewEmbeddingError("search", "failed to embed query", err)
	}

	results := newFlatIndex(entries).Search(queryVector, k)
	s.logger.Debug("retrieval completed", "query_len", len(query), "results", len(results))
	return results, nil
}

// loadEntries reads all chunks and backfills missing embeddings.
func (s *Service) loadEntries(ctx context.Context) ([]indexEntry, error) {
	chunks, err := s.chunks.FindAll(ctx)
	if err != nil {
		return nil, NewStoreError("load", "failed to load document chunks", err)
	}

	entries := make([]indexEntry, 0, len(chunks))
	for i := range chunks {
		vector, err := s.ensureEmbedding(ctx, &chunks[i])
		if err != nil {
			s.logger.Warn("skipping chunk without embedding", "chunk_id", chunks[i].ID, "error", err)
			continue
		}
		entries = append(entries, indexEntry{
			Content: chunks[i].Content,
			Source:  chunks[i].Source,
			Vector:  vector,
		})
	}
	return entries, nil
}

func (s *Service) ensureEmbedding(ctx context.Context, chunk *domain.DocumentChunk) ([]float32, error) {
	vector, err := DecodeVector(chunk.Embedding)
	if err != nil {
		return nil, NewStoreError("decode", "stored embedding is corrupt", err)
	}
	if len(vector) > 0 {
		return vector, nil
	}

	vector, err = s.embedder.CreateEmbedding(ctx, chunk.Content)
	if err != nil {
		return nil, NewEmbeddingError("backfill", "failed to embed chunk", err)
	}

	encoded, err := EncodeVector(vector)
	if err != nil {
		return nil, NewStoreError("encode", "failed to serialize embedding", err)
	}
	if err := s.chunks.UpdateEmbedding(ctx, chunk.ID, encoded); err != nil {
		// The vector is still usable for this query even if the write-back failed.
		s.logger.Warn("failed to persist backfilled embedding", "chunk_id", chunk.ID, "error", err)
	}
	chunk.Embedding = encoded
	return vector, nil
}
