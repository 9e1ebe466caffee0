// File: cmd/ingest/main.go
//
// Ingests logistics documentation into the retrieval index. Reads .md and
// .txt files from a directory, splits them into overlapping chunks, stores
// the chunks in the database and, when an LLM provider is configured, embeds
// them. With PINECONE_* set the vectors are also upserted into the hosted
// index.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/routelab/route-planner/internal/config"
	"github.com/routelab/route-planner/internal/domain"
	"github.com/routelab/route-planner/internal/repository/document"
	"github.com/routelab/route-planner/internal/services"
	"github.com/routelab/route-planner/internal/services/llm"
	"github.com/routelab/route-planner/internal/services/rag"
)

func main() {
	dataDir := flag.String("dir", "data", "directory holding .md/.txt documents to ingest")
	chunkSize := flag.Int("chunk-size", 500, "soft chunk size in characters")
	overlap := flag.Int("overlap", 50, "overlap between consecutive chunks in characters")
	flag.Parse()

	fmt.Println("=== Document Ingestion ===")

	cfg := config.Load()
	logger := services.NewLogger("ingest")

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}
	if err := db.AutoMigrate(&domain.DocumentChunk{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}
	chunks := document.NewChunkRepository(db)

	var embedder rag.Embedder
	if cfg.HasLLM() {
		llmCfg := llm.DefaultConfig()
		llmCfg.GeminiAPIKey = cfg.GeminiAPIKey
		llmCfg.GeminiModel = cfg.GeminiModel
		llmCfg.GroqAPIKey = cfg.GroqAPIKey
		llmCfg.GroqModel = cfg.GroqModel
		llmCfg.EmbeddingModel = cfg.EmbeddingModelName

		provider, err := llm.NewProvider(llmCfg, logger)
		if err != nil {
			log.Fatalf("Failed to initialize LLM provider: %v", err)
		}
		embedder = provider
	} else {
		fmt.Println("No LLM provider configured; chunks are stored without embeddings")
		fmt.Println("and will be embedded lazily on first retrieval.")
	}

	var pineconeIndex *rag.PineconeRetriever
	if cfg.HasPinecone() {
		if embedder == nil {
			log.Fatal("Pinecone upsert requires an embedding provider")
		}
		pineconeCfg := rag.DefaultPineconeConfig()
		pineconeCfg.APIKey = cfg.PineconeAPIKey
		pineconeCfg.IndexHost = cfg.PineconeIndexHost
		pineconeCfg.Namespace = cfg.PineconeNamespace

		pineconeIndex, err = rag.NewPineconeRetriever(pineconeCfg, embedder, logger)
		if err != nil {
			log.Fatalf("Failed to initialize Pinecone: %v", err)
		}
	}

	files, err := findDocuments(*dataDir)
	if err != nil {
		log.Fatalf("Could not read data directory: %v", err)
	}
	if len(files) == 0 {
		fmt.Printf("No .md or .txt files found in %s\n", *dataDir)
		return
	}
	fmt.Printf("Found %d document(s) to ingest\n", len(files))

	ctx := context.Background()
	total := 0
	for _, path := range files {
		n, err := ingestFile(ctx, chunks, embedder, pineconeIndex, path, *chunkSize, *overlap)
		if err != nil {
			log.Fatalf("Failed to ingest %s: %v", path, err)
		}
		total += n
	}

	fmt.Printf("Ingested %d total chunks from %d documents\n", total, len(files))
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL != "" {
		return gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open("routeplanner.db"), &gorm.Config{})
}

func findDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".md", ".txt":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func ingestFile(
	ctx context.Context,
	chunks document.ChunkRepository,
	embedder rag.Embedder,
	index *rag.PineconeRetriever,
	path string,
	chunkSize, overlap int,
) (int, error) {
	fmt.Printf("Processing %s...\n", filepath.Base(path))

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	slug := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	// re-ingesting a document replaces its previous chunks
	if _, err := chunks.DeleteBySlug(ctx, slug); err != nil {
		return 0, err
	}

	pieces := rag.ChunkDocument(string(raw), chunkSize, overlap)
	fmt.Printf("  Split into %d chunks\n", len(pieces))

	for i, content := range pieces {
		chunk := &domain.DocumentChunk{
			Slug:    slug,
			Source:  filepath.Base(path),
			Content: content,
		}

		var vector []float32
		if embedder != nil {
			vector, err = embedder.CreateEmbedding(ctx, content)
			if err != nil {
				return 0, fmt.Errorf("embed chunk %d: %w", i, err)
			}
			encoded, err := rag.EncodeVector(vector)
			if err != nil {
				return 0, err
			}
			chunk.Embedding = encoded
		}

		stored, err := chunks.Create(ctx, chunk)
		if err != nil {
			return 0, err
		}

		if index != nil {
			id := fmt.Sprintf("%s_chunk_%d", slug, i)
			if err := index.Upsert(ctx, id, vector, content, filepath.Base(path)); err != nil {
				return 0, fmt.Errorf("upsert chunk %d (db id %d): %w", i, stored.ID, err)
			}
		}
	}

	fmt.Printf("  Ingested %d chunks from %s\n", len(pieces), filepath.Base(path))
	return len(pieces), nil
}
