// File: cmd/diagnostic/main.go
//
// Connectivity check for the external services the backend depends on.
// Run it after editing .env to confirm the keys actually work before
// starting the server.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/routelab/route-planner/internal/config"
	"github.com/routelab/route-planner/internal/services"
	"github.com/routelab/route-planner/internal/services/agent"
	"github.com/routelab/route-planner/internal/services/geocode"
	"github.com/routelab/route-planner/internal/services/llm"
	"github.com/routelab/route-planner/internal/services/rag"
)

func main() {
	fmt.Println("🚀 Route planner connectivity diagnostic")

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg := config.Load()
	logger := services.NewLogger("diagnostic")
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	checkLLM(ctx, cfg, logger)
	checkPinecone(ctx, cfg, logger)
	checkWeather(ctx, cfg, logger)
	checkGeocoding(ctx, cfg, logger)

	fmt.Println("Done.")
}

func checkLLM(ctx context.Context, cfg *config.Config, logger services.Logger) {
	if !cfg.HasLLM() {
		fmt.Println("⚠️  LLM: no GEMINI_API_KEY or GROQ_API_KEY set, skipping")
		return
	}

	llmCfg := llm.DefaultConfig()
	llmCfg.GeminiAPIKey = cfg.GeminiAPIKey
	llmCfg.GeminiModel = cfg.GeminiModel
	llmCfg.GroqAPIKey = cfg.GroqAPIKey
	llmCfg.GroqModel = cfg.GroqModel
	llmCfg.EmbeddingModel = cfg.EmbeddingModelName

	provider, err := llm.NewProvider(llmCfg, logger)
	if err != nil {
		fmt.Printf("❌ LLM: provider setup failed: %v\n", err)
		return
	}

	start := time.Now()
	content, err := provider.Complete(ctx, "Reply with the single word: pong")
	if err != nil {
		fmt.Printf("❌ LLM: completion failed: %v\n", err)
		return
	}
	fmt.Printf("✅ LLM: %s answered in %s (%q)\n", provider.ModelName(), time.Since(start).Round(time.Millisecond), content)

	start = time.Now()
	vector, err := provider.CreateEmbedding(ctx, "route planning diagnostic")
	if err != nil {
		fmt.Printf("❌ LLM: embedding failed: %v\n", err)
		return
	}
	fmt.Printf("✅ LLM: embedding dimension %d in %s\n", len(vector), time.Since(start).Round(time.Millisecond))
}

func checkPinecone(ctx context.Context, cfg *config.Config, logger services.Logger) {
	if !cfg.HasPinecone() {
		fmt.Println("⚠️  Pinecone: PINECONE_API_KEY or PINECONE_INDEX_HOST not set, skipping")
		return
	}
	if !cfg.HasLLM() {
		fmt.Println("❌ Pinecone: configured but no embedding provider available")
		return
	}

	llmCfg := llm.DefaultConfig()
	llmCfg.GeminiAPIKey = cfg.GeminiAPIKey
	llmCfg.GroqAPIKey = cfg.GroqAPIKey
	llmCfg.EmbeddingModel = cfg.EmbeddingModelName
	provider, err := llm.NewProvider(llmCfg, logger)
	if err != nil {
		fmt.Printf("❌ Pinecone: embedder setup failed: %v\n", err)
		return
	}

	pineconeCfg := rag.DefaultPineconeConfig()
	pineconeCfg.APIKey = cfg.PineconeAPIKey
	pineconeCfg.IndexHost = cfg.PineconeIndexHost
	pineconeCfg.Namespace = cfg.PineconeNamespace

	retriever, err := rag.NewPineconeRetriever(pineconeCfg, provider, logger)
	if err != nil {
		fmt.Printf("❌ Pinecone: connection failed: %v\n", err)
		return
	}

	start := time.Now()
	results, err := retriever.Search(ctx, "route planning", 1)
	if err != nil {
		fmt.Printf("❌ Pinecone: query failed: %v\n", err)
		return
	}
	fmt.Printf("✅ Pinecone: query returned %d result(s) in %s\n", len(results), time.Since(start).Round(time.Millisecond))
}

func checkWeather(ctx context.Context, cfg *config.Config, logger services.Logger) {
	client := agent.NewWeatherClient(cfg.OpenWeatherAPIKey, logger)
	report := client.Check(ctx, "Berlin")
	if cfg.OpenWeatherAPIKey == "" {
		fmt.Printf("⚠️  Weather: no OPENWEATHER_API_KEY, simulated report for Berlin (%s)\n", report.Conditions)
		return
	}
	fmt.Printf("✅ Weather: Berlin %.1f°C, %s\n", report.TemperatureC, report.Conditions)
}

func checkGeocoding(ctx context.Context, cfg *config.Config, logger services.Logger) {
	if cfg.MapboxAPIKey == "" {
		fmt.Println("⚠️  Geocoding: no MAPBOX_API_KEY set, skipping")
		return
	}
	svc := geocode.NewService(cfg.MapboxAPIKey, logger)
	result, err := svc.Reverse(ctx, 52.52, 13.405)
	if err != nil {
		fmt.Printf("❌ Geocoding: %v\n", err)
		return
	}
	fmt.Printf("✅ Geocoding: 52.52,13.405 resolves to %s\n", result.Formatted)
}
