package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"notechat-ai/internal/contextutil"
	"notechat-ai/internal/rag"
)

// AskHandler handles HTTP requests for RAG queries.
type AskHandler struct {
	ragEngine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(ragEngine rag.Engine) *AskHandler {
	return &AskHandler{
		ragEngine: ragEngine,
	}
}

// AskRequest represents the HTTP request payload for RAG queries.
// This mirrors rag.AskRequest but is defined here for HTTP layer separation.
type AskRequest struct {
	Question string `json:"question"`
	Limit    int    `json:"limit,omitempty"`
}

// ReferenceResponse represents a reference in the HTTP response.
type ReferenceResponse struct {
	Filename   string  `json:"filename"`
	Path       string  `json:"path"`
	ChunkIndex int     `json:"chunk_index"`
	Similarity float32 `json:"similarity"`
}

// AskResponse represents the HTTP response payload for RAG queries.
type AskResponse struct {
	Answer     string              `json:"answer"`
	References []ReferenceResponse `json:"references"`
}

// ServeHTTP handles HTTP requests for RAG queries.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		logger.WarnContext(ctx, "empty question in request")
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}
	if req.Limit < 0 {
		req.Limit = 0
	}

	ragResp, err := h.ragEngine.Ask(ctx, rag.AskRequest{
		Question: req.Question,
		Limit:    req.Limit,
	})
	if err != nil {
		h.handleRAGError(w, ctx, err, "Failed to process RAG query")
		return
	}

	references := make([]ReferenceResponse, len(ragResp.References))
	for i, ref := range ragResp.References {
		references[i] = ReferenceResponse{
			Filename:   ref.Filename,
			Path:       ref.Path,
			ChunkIndex: ref.ChunkIndex,
			Similarity: ref.Similarity,
		}
	}

	writeJSON(w, http.StatusOK, AskResponse{
		Answer:     ragResp.Answer,
		References: references,
	})
}

// handleRAGError maps RAG engine errors to appropriate HTTP status codes.
func (h *AskHandler) handleRAGError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "RAG engine error", "error", err)

	errMsg := strings.ToLower(err.Error())

	// Vector store errors -> 503
	if strings.Contains(errMsg, "vector store") ||
		strings.Contains(errMsg, "qdrant") ||
		strings.Contains(errMsg, "failed to search") ||
		strings.Contains(errMsg, "channel search failed") {
		writeError(w, http.StatusServiceUnavailable, "Vector store unavailable")
		return
	}

	// LLM/embedding errors -> 502
	if strings.Contains(errMsg, "embed") ||
		strings.Contains(errMsg, "llm") {
		writeError(w, http.StatusBadGateway, "External service error")
		return
	}

	// Blank question slipping past handler validation -> 400
	if strings.Contains(errMsg, "cannot be blank") {
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	writeError(w, http.StatusInternalServerError, defaultMsg)
}
