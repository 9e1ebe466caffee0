// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/routelab/route-planner/internal/config"
	"github.com/routelab/route-planner/internal/domain"
	"github.com/routelab/route-planner/internal/handlers"
	"github.com/routelab/route-planner/internal/middleware"
	"github.com/routelab/route-planner/internal/ratelimit"
	"github.com/routelab/route-planner/internal/repository/agentrun"
	"github.com/routelab/route-planner/internal/repository/document"
	echorepo "github.com/routelab/route-planner/internal/repository/echo"
	"github.com/routelab/route-planner/internal/repository/routerun"
	"github.com/routelab/route-planner/internal/services"
	"github.com/routelab/route-planner/internal/services/agent"
	"github.com/routelab/route-planner/internal/services/echo"
	"github.com/routelab/route-planner/internal/services/geocode"
	"github.com/routelab/route-planner/internal/services/llm"
	"github.com/routelab/route-planner/internal/services/planner"
	"github.com/routelab/route-planner/internal/services/rag"
)

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL != "" {
		return gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open("routeplanner.db"), &gorm.Config{})
}

func main() {
	cfg := config.Load()
	logger := services.NewLogger("server")

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(
		&domain.EchoAttempt{},
		&domain.RouteRun{},
		&domain.DocumentChunk{},
		&domain.AgentRun{},
	); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Repositories ---
	echoRepo := echorepo.NewAttemptRepository(db)
	routeRunRepo := routerun.NewRouteRunRepository(db)
	chunkRepo := document.NewChunkRepository(db)
	agentRunRepo := agentrun.NewAgentRunRepository(db)

	// --- LLM provider (optional) ---
	var provider llm.Provider
	if cfg.HasLLM() {
		llmCfg := llm.DefaultConfig()
		llmCfg.GeminiAPIKey = cfg.GeminiAPIKey
		llmCfg.GeminiModel = cfg.GeminiModel
		llmCfg.GroqAPIKey = cfg.GroqAPIKey
		llmCfg.GroqModel = cfg.GroqModel
		llmCfg.EmbeddingModel = cfg.EmbeddingModelName

		provider, err = llm.NewProvider(llmCfg, services.NewLogger("llm"))
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize LLM provider: %v", err)
		}
	} else {
		logger.Warn("no LLM provider configured, AI features run in degraded mode")
	}

	// --- Retriever: Pinecone when configured, flat index otherwise ---
	var retriever rag.Retriever
	var embedder rag.Embedder
	if provider != nil {
		embedder = provider
	}
	if cfg.HasPinecone() {
		pineconeCfg := rag.DefaultPineconeConfig()
		pineconeCfg.APIKey = cfg.PineconeAPIKey
		pineconeCfg.IndexHost = cfg.PineconeIndexHost
		pineconeCfg.Namespace = cfg.PineconeNamespace

		retriever, err = rag.NewPineconeRetriever(pineconeCfg, embedder, services.NewLogger("pinecone"))
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize Pinecone retriever: %v", err)
		}
	} else {
		retriever = rag.NewService(chunkRepo, embedder, services.NewLogger("rag"))
	}

	// --- Services ---
	echoService := echo.NewService(echoRepo, services.NewLogger("echo"))
	plannerService := planner.NewService(routeRunRepo, services.NewLogger("planner"))
	weatherClient := agent.NewWeatherClient(cfg.OpenWeatherAPIKey, services.NewLogger("weather"))
	agentService := agent.NewService(agentRunRepo, retriever, provider, weatherClient, cfg.RetrievalTopK, services.NewLogger("agent"))
	geocodeService := geocode.NewService(cfg.MapboxAPIKey, services.NewLogger("geocode"))

	// --- Handlers ---
	healthHandler := handlers.NewHealthHandler()
	echoHandler := handlers.NewEchoHandler(echoService)
	plannerHandler := handlers.NewPlannerHandler(plannerService)
	agentHandler := handlers.NewAgentHandler(agentService, retriever)
	chatHandler := handlers.NewChatHandler(agentService)
	geminiHandler := handlers.NewGeminiHandler(provider)
	geocodingHandler := handlers.NewGeocodingHandler(geocodeService)

	// --- Router Setup ---
	r := mux.NewRouter()
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	r.HandleFunc("/health", healthHandler.Health).Methods("GET")
	r.HandleFunc("/echo", echoHandler.Status).Methods("GET")
	r.HandleFunc("/echo", echoHandler.Echo).Methods("POST")
	r.HandleFunc("/echo/reset/{client_key}", echoHandler.Reset).Methods("DELETE")

	r.HandleFunc("/planner/route", plannerHandler.GeneratePlan).Methods("POST")
	r.HandleFunc("/planner/route/validate", plannerHandler.ValidatePlan).Methods("POST")
	r.HandleFunc("/planner/route/history", plannerHandler.History).Methods("GET")

	r.HandleFunc("/gemini/generate", geminiHandler.Generate).Methods("POST")
	r.HandleFunc("/gemini/status", geminiHandler.Status).Methods("GET")

	r.HandleFunc("/geocoding/reverse", geocodingHandler.Reverse).Methods("POST")

	// The AI endpoints call external providers, so they get rate limited.
	limiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultAIConfig())
	defer limiter.Close()

	ai := r.PathPrefix("/ai").Subrouter()
	ai.Use(middleware.RateLimitMiddleware(limiter, "ai"))
	ai.HandleFunc("/validate-route", agentHandler.ValidateRoute).Methods("POST")
	ai.HandleFunc("/history", agentHandler.History).Methods("GET")
	ai.HandleFunc("/routes", agentHandler.Routes).Methods("GET")
	ai.HandleFunc("/search", agentHandler.Search).Methods("GET")
	ai.HandleFunc("/chat", chatHandler.Chat).Methods("POST")

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.ServerPort, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	logger.Info("server stopped")
}
