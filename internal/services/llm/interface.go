package llm

import "context"

// CompletionProvider handles single-shot chat completions.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// EmbeddingProvider handles text embeddings.
type EmbeddingProvider interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Provider combines completion and embedding capabilities.
type Provider interface {
	CompletionProvider
	EmbeddingProvider
	// ModelName reports the completion model in use, for status endpoints.
	ModelName() string
}

// Logger defines the logging interface used by LLM providers.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
