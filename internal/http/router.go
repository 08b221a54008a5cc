package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"notechat-ai/internal/handlers"
	"notechat-ai/internal/rag"
	"notechat-ai/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService      service.ChatService
	RAGEngine        rag.Engine
	Searcher         handlers.ExactSearcher
	Indexer          handlers.Indexer
	VectorStore      handlers.CollectionChecker
	CollectionName   string
	SearchMaxResults int
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(RequestID)
	r.Use(ConversationID)
	r.Use(LoggerMiddleware)

	chatHandler := handlers.NewChatHandler(deps.ChatService)
	askHandler := handlers.NewAskHandler(deps.RAGEngine)
	searchHandler := handlers.NewSearchHandler(deps.Searcher, deps.SearchMaxResults)
	indexHandler := handlers.NewIndexHandler(deps.Indexer)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.CollectionName)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/chat", chatHandler)
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Method(http.MethodPost, "/search", searchHandler)
		r.Method(http.MethodPost, "/index", indexHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
