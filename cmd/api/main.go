package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"notechat-ai/internal/config"
	"notechat-ai/internal/http"
	"notechat-ai/internal/indexer"
	"notechat-ai/internal/llm"
	"notechat-ai/internal/notes"
	"notechat-ai/internal/rag"
	"notechat-ai/internal/search"
	"notechat-ai/internal/service"
	"notechat-ai/internal/storage"
	"notechat-ai/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API provides RAG (Retrieval-Augmented Generation) functionality for querying indexed markdown notes.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: NoteChat AI API
//   description: |
//     RAG (Retrieval-Augmented Generation) API for querying indexed markdown notes.
//     The API allows you to ask questions, run exact-match searches, and get answers
//     based on content indexed from your notes directory.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	noteRepo := storage.NewNoteRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Ensure collection exists with correct vector size
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// The embedding model is loaded lazily on first use, so a cold inference
	// server does not block startup.
	modelLoader := llm.NewModelLoader(cfg.EmbeddingBaseURL)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize, modelLoader)

	// Create indexing pipeline
	scanner := notes.NewScanner(cfg.NotesRoot)
	indexerPipeline := indexer.NewPipeline(
		scanner,
		noteRepo,
		chunkRepo,
		embedder,
		vectorStore,
		cfg.QdrantCollection,
		cfg.ChunkCharLimit,
	)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	// Create RAG engine
	retriever := rag.NewRetriever(embedder, vectorStore, cfg.QdrantCollection)
	ragEngine := rag.NewEngine(
		retriever,
		llmClient,
		cfg.RetrieveLimit,
		cfg.ContentThreshold,
		cfg.FilenameThreshold,
	)
	slog.Info("RAG engine initialized")

	// Create exact-match searcher and chat service
	searcher := search.NewSearcher(cfg.NotesRoot, cfg.RipgrepPath)
	chatService := service.NewChatService(llmClient)

	// Create router with dependencies
	deps := &http.Deps{
		ChatService:      chatService,
		RAGEngine:        ragEngine,
		Searcher:         searcher,
		Indexer:          indexerPipeline,
		VectorStore:      vectorStore,
		CollectionName:   cfg.QdrantCollection,
		SearchMaxResults: cfg.SearchMaxResults,
	}
	router := http.NewRouter(deps)

	// Start indexing in background after router is ready
	go func() {
		indexCtx := context.Background()
		slog.Info("Starting background indexing of notes", "root", cfg.NotesRoot)
		stats, err := indexerPipeline.IndexAll(indexCtx)
		if err != nil {
			slog.Error("Indexing failed", "error", err)
			return
		}
		slog.Info("Indexing completed",
			"indexed", stats.Indexed,
			"skipped", stats.Skipped,
			"failed", stats.Failed,
		)
	}()

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
