// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	Environment string

	// DatabaseURL selects Postgres when set; an empty value falls back to a
	// local sqlite file so the labs run without a database server.
	DatabaseURL string
	CORSOrigins []string

	// LLM providers. Gemini is preferred, Groq is the fallback; both are
	// reached through their OpenAI-compatible endpoints.
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string

	// EmbeddingModelName must match the model the document index was built with.
	EmbeddingModelName string
	RetrievalTopK      int

	// Optional Pinecone-backed retriever. When unset the in-process flat
	// index over document_chunks is used.
	PineconeAPIKey    string
	PineconeIndexHost string
	PineconeNamespace string

	// External tool APIs used by the agent.
	OpenWeatherAPIKey string
	MapboxAPIKey      string
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8000"),
		Environment:        env,
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		CORSOrigins:        splitOrigins(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:8080,http://localhost")),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GroqAPIKey:         getEnv("GROQ_API_KEY", ""),
		GroqModel:          getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "text-embedding-004"),
		RetrievalTopK:      getEnvAsInt("RAG_TOPK", 3),
		PineconeAPIKey:     getEnv("PINECONE_API_KEY", ""),
		PineconeIndexHost:  getEnv("PINECONE_INDEX_HOST", ""),
		PineconeNamespace:  getEnv("PINECONE_NAMESPACE", "logistics-docs"),
		OpenWeatherAPIKey:  getEnv("OPENWEATHER_API_KEY", ""),
		MapboxAPIKey:       getEnv("MAPBOX_API_KEY", ""),
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
		if cfg.GeminiAPIKey == "" && cfg.GroqAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY or GROQ_API_KEY")
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// HasLLM reports whether at least one completion provider is configured.
func (c *Config) HasLLM() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != ""
}

// HasPinecone reports whether the external vector index can be used.
func (c *Config) HasPinecone() bool {
	return c.PineconeAPIKey != "" && c.PineconeIndexHost != ""
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}
