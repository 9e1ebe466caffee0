package rag

import "context"

// Context is one retrieved knowledge-base chunk with its relevance score.
// For the flat index the score is a squared L2 distance (lower is closer);
// for Pinecone it is the index's similarity score (higher is closer). Either
// way results come back best-first.
type Context struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}

// Retriever answers semantic search queries over the knowledge base.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]Context, error)
}

// Embedder turns text into a vector. Satisfied by llm.Provider.
type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Logger defines the logging interface used across the RAG services.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
