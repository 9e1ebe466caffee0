package llm

import (
	"fmt"
	"time"
)

// OpenAI-compatible endpoints for the supported providers.
const (
	GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	GroqBaseURL   = "https://api.groq.com/openai/v1"
)

type Config struct {
	// Provider credentials. Gemini wins when both are set.
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string

	// EmbeddingModel must match the model the document index was built with.
	EmbeddingModel string

	// Model parameters
	Temperature float32
	MaxTokens   int

	// Retry behavior for provider calls
	MaxRetries int
	RetryDelay time.Duration
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" && c.GroqAPIKey == "" {
		return ErrNotConfigured
	}
	if c.GeminiAPIKey != "" && c.GeminiModel == "" {
		return fmt.Errorf("gemini model is required")
	}
	if c.GroqAPIKey != "" && c.GroqModel == "" {
		return fmt.Errorf("groq model is required")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		GeminiModel:    "gemini-2.0-flash",
		GroqModel:      "llama-3.3-70b-versatile",
		EmbeddingModel: "text-embedding-004",
		Temperature:    0.7,
		MaxTokens:      1024,
		MaxRetries:     2,
		RetryDelay:     400 * time.Millisecond,
	}
}
