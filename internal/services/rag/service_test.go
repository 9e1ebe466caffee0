package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/routelab/route-planner/internal/domain"
	"github.com/routelab/route-planner/internal/repository/document"
	"github.com/routelab/route-planner/internal/services"
)

// fakeEmbedder maps known texts to fixed vectors so distances are predictable.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0}, nil
}

func newChunkRepo(t *testing.T) document.ChunkRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.DocumentChunk{}))
	return document.NewChunkRepository(db)
}

func seedChunk(t *testing.T, repo document.ChunkRepository, source, content, embedding string) *domain.DocumentChunk {
	t.Helper()
	chunk, err := repo.Create(context.Background(), &domain.DocumentChunk{
		Slug:      "logistics-guide",
		Source:    source,
		Content:   content,
		Embedding: embedding,
	})
	require.NoError(t, err)
	return chunk
}

func TestSearchRanksByDistance(t *testing.T) {
	t.Parallel()

	repo := newChunkRepo(t)
	seedChunk(t, repo, "a.md", "near", "[1, 0]")
	seedChunk(t, repo, "b.md", "far", "[10, 0]")
	seedChunk(t, repo, "c.md", "middle", "[3, 0]")

	embedder := &fakeEmbedder{vectors: map[string][]float32{"query": {0, 0}}}
	svc := NewService(repo, embedder, &services.NoOpLogger{})

	results, err := svc.Search(context.Background(), "query", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "near", results[0].Content)
	assert.Equal(t, 1.0, results[0].Score)
	assert.Equal(t, "middle", results[1].Content)
	assert.Equal(t, 9.0, results[1].Score)
}

func TestSearchSkipsMismatchedDimensions(t *testing.T) {
	t.Parallel()

	repo := newChunkRepo(t)
	seedChunk(t, repo, "a.md", "good", "[1, 0]")
	seedChunk(t, repo, "b.md", "odd dims", "[1, 0, 0]")

	embedder := &fakeEmbedder{vectors: map[string][]float32{"query": {0, 0}}}
	svc := NewService(repo, embedder, &services.NoOpLogger{})

	results, err := svc.Search(context.Background(), "query", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].Content)
}

func TestSearchBackfillsMissingEmbeddings(t *testing.T) {
	t.Parallel()

	repo := newChunkRepo(t)
	seeded := seedChunk(t, repo, "a.md", "unembedded chunk", "")

	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"query":            {0, 0},
		"unembedded chunk": {2, 0},
	}}
	svc := NewService(repo, embedder, &services.NoOpLogger{})

	results, err := svc.Search(context.Background(), "query", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 4.0, results[0].Score)

	// the backfilled vector is written back so the next query skips embedding
	chunks, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, seeded.ID, chunks[0].ID)
	assert.Equal(t, "[2,0]", chunks[0].Embedding)

	before := embedder.calls
	_, err = svc.Search(context.Background(), "query", 5)
	require.NoError(t, err)
	assert.Equal(t, before+1, embedder.calls) // only the query is embedded
}

func TestSearchWithoutEmbedderReturnsNothing(t *testing.T) {
	t.Parallel()

	repo := newChunkRepo(t)
	seedChunk(t, repo, "a.md", "content", "[1, 0]")

	svc := NewService(repo, nil, &services.NoOpLogger{})
	results, err := svc.Search(context.Background(), "query", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchEmptyQueryRejected(t *testing.T) {
	t.Parallel()

	svc := NewService(newChunkRepo(t), &fakeEmbedder{}, &services.NoOpLogger{})
	_, err := svc.Search(context.Background(), "", 3)
	require.Error(t, err)
}

func TestSearchEmbeddingFailure(t *testing.T) {
	t.Parallel()

	repo := newChunkRepo(t)
	seedChunk(t, repo, "a.md", "content", "[1, 0]")

	embedder := &fakeEmbedder{err: errors.New("quota exceeded")}
	svc := NewService(repo, embedder, &services.NoOpLogger{})

	_, err := svc.Search(context.Background(), "query", 3)
	require.Error(t, err)
	var ragErr *RAGError
	require.ErrorAs(t, err, &ragErr)
	assert.Equal(t, ErrTypeEmbedding, ragErr.Type)
}

func TestFlatIndexEmptyAndSmallK(t *testing.T) {
	t.Parallel()

	assert.Nil(t, newFlatIndex(nil).Search([]float32{1}, 3))

	idx := newFlatIndex([]indexEntry{{Content: "only", Vector: []float32{1}}})
	assert.Nil(t, idx.Search([]float32{1}, 0))
	assert.Len(t, idx.Search([]float32{1}, 10), 1)
}

func TestVectorRoundTrip(t *testing.T) {
	t.Parallel()

	encoded, err := EncodeVector([]float32{0.5, -1.25})
	require.NoError(t, err)
	decoded, err := DecodeVector(encoded)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -1.25}, decoded)

	empty, err := DecodeVector("")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = DecodeVector("{not a vector}")
	assert.Error(t, err)
}
