package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"notechat-ai/internal/contextutil"
	"notechat-ai/internal/indexer"
)

// Indexer runs note indexing.
// This interface is defined from the handler's perspective (consumer-first).
type Indexer interface {
	IndexAll(ctx context.Context) (indexer.Stats, error)
	IndexGlob(ctx context.Context, pattern string) (indexer.Stats, error)
}

// IndexHandler handles HTTP requests to (re)index notes.
type IndexHandler struct {
	pipeline Indexer
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(pipeline Indexer) *IndexHandler {
	return &IndexHandler{
		pipeline: pipeline,
	}
}

// IndexRequest represents the HTTP request payload for indexing.
// An empty body or empty glob indexes the whole notes root.
type IndexRequest struct {
	Glob string `json:"glob,omitempty"`
}

// IndexResponse represents the HTTP response payload for indexing.
type IndexResponse struct {
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// ServeHTTP handles HTTP requests to (re)index notes.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var stats indexer.Stats
	var err error
	if req.Glob != "" {
		stats, err = h.pipeline.IndexGlob(ctx, req.Glob)
	} else {
		stats, err = h.pipeline.IndexAll(ctx)
	}
	if err != nil {
		logger.ErrorContext(ctx, "indexing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Indexing failed")
		return
	}

	writeJSON(w, http.StatusOK, IndexResponse{
		Indexed: stats.Indexed,
		Skipped: stats.Skipped,
		Failed:  stats.Failed,
	})
}
