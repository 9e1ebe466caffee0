// File: internal/services/rag/pinecone.go
package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/routelab/route-planner/retry"
)

// PineconeConfig configures the optional external vector index.
type PineconeConfig struct {
	APIKey    string
	IndexHost string
	Namespace string

	MaxRetries int
	RetryDelay time.Duration
}

func DefaultPineconeConfig() *PineconeConfig {
	return &PineconeConfig{
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
	}
}

func (c *PineconeConfig) Validate() error {
	if c.APIKey == "" {
		return NewConfigError("pinecone API key is required")
	}
	if c.IndexHost == "" {
		return NewConfigError("pinecone index host is required")
	}
	if c.Namespace == "" {
		return NewConfigError("pinecone namespace is required")
	}
	return nil
}

// PineconeRetriever serves the same Retriever interface as the flat index,
// backed by a hosted Pinecone index instead of document_chunks embeddings.
type PineconeRetriever struct {
	index    *pinecone.IndexConnection
	embedder Embedder
	policy   retry.Policy
	logger   Logger
}

func NewPineconeRetriever(cfg *PineconeConfig, embedder Embedder, logger Logger) (*PineconeRetriever, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, NewConfigError("pinecone retriever requires an embedder")
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: cfg.APIKey})
	if err != nil {
		return nil, NewIndexError("connect", "failed to create pinecone client", err)
	}

	index, err := client.Index(pinecone.NewIndexConnParams{
		Host:      cfg.IndexHost,
		Namespace: cfg.Namespace,
	})
	if err != nil {
		return nil, NewIndexError("connect", "failed to open index connection", err)
	}

	attempts := cfg.MaxRetries
	if attempts < 1 {
		attempts = 3
	}

	logger.Info("pinecone retriever initialized", "host", cfg.IndexHost, "namespace", cfg.Namespace)
	return &PineconeRetriever{
		index:    index,
		embedder: embedder,
		policy:   retry.Policy{Attempts: attempts, Delay: cfg.RetryDelay},
		logger:   logger,
	}, nil
}

func (p *PineconeRetriever) Search(ctx context.Context, query string, k int) ([]Context, error) {
	if query == "" {
		return nil, NewIndexError("search", "query cannot be empty", nil)
	}
	if k <= 0 {
		k = 3
	}

	vector, err := p.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, NewEmbeddingError("search", "failed to embed query", err)
	}

	resp, err := retry.DoValue(ctx, p.policy, func(ctx context.Context) (*pinecone.QueryVectorsResponse, error) {
		return p.index.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
			Vector:          vector,
			TopK:            uint32(k),
			IncludeMetadata: true,
		})
	})
	if err != nil {
		p.logger.Error("pinecone query failed", "error", err)
		return nil, NewIndexError("search", "vector query failed", err)
	}

	results := make([]Context, 0, len(resp.Matches))
	for _, match := range resp.Matches {
		if match == nil || match.Vector == nil {
			continue
		}
		results = append(results, Context{
			Content: metadataString(match.Vector.Metadata, "content"),
			Source:  metadataString(match.Vector.Metadata, "source"),
			Score:   float64(match.Score),
		})
	}

	p.logger.Debug("pinecone retrieval completed", "results", len(results))
	return results, nil
}

// Upsert pushes a chunk's vector into the index; used by the ingest command.
func (p *PineconeRetriever) Upsert(ctx context.Context, id string, vector []float32, content, source string) error {
	metadata, err := structpb.NewStruct(map[string]interface{}{
		"content": content,
		"source":  source,
	})
	if err != nil {
		return NewIndexError("upsert", "failed to build metadata", err)
	}

	return retry.Do(ctx, p.policy, func(ctx context.Context) error {
		_, err := p.index.UpsertVectors(ctx, []*pinecone.Vector{{
			Id:       id,
			Values:   &vector,
			Metadata: metadata,
		}})
		if err != nil {
			return fmt.Errorf("upsert vector %s: %w", id, err)
		}
		return nil
	})
}

func metadataString(metadata *pinecone.Metadata, key string) string {
	if metadata == nil {
		return ""
	}
	field, ok := metadata.Fields[key]
	if !ok || field == nil {
		return ""
	}
	return field.GetStringValue()
}
