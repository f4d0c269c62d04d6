package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"faqgraph/backend/internal/adapter"
	"faqgraph/backend/internal/chat"
	"faqgraph/backend/internal/graph"
	"faqgraph/backend/internal/ingest"
	"faqgraph/backend/internal/rag"
	"faqgraph/backend/internal/server"
	"faqgraph/backend/pkg/config"
	"faqgraph/backend/pkg/logger"
)

func main() {
	// Load configuration first so the logger knows the environment
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...")

	// One graph client per process lifetime; a connection failure here is
	// fatal, never silently retried
	ctx := context.Background()
	client, err := graph.NewClient(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer client.Close(context.Background())

	// Capabilities
	llm := adapter.NewLLMAdapter(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ChatModel)
	embedder := adapter.NewEmbeddingAdapter(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDim)

	chunker, err := ingest.NewTokenChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatal("Failed to initialize chunker", zap.Error(err))
	}

	// Core components
	repo := graph.NewRepository(client)
	extractor := ingest.NewLLMExtractor(llm, nil)
	pipeline := ingest.NewPipeline(repo, chunker, embedder, extractor, cfg.VectorIndexName)
	dispatcher := rag.NewDispatcher(repo, embedder, llm, cfg.VectorIndexName, 5)
	orchestrator := chat.NewOrchestrator(repo, llm, dispatcher, cfg.HistoryWindow)

	router := server.New(repo, orchestrator, pipeline, dispatcher, cfg).Router()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
