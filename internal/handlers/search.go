package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"notechat-ai/internal/contextutil"
	"notechat-ai/internal/search"
)

// ExactSearcher runs exact-match searches over the notes root.
// This interface is defined from the handler's perspective (consumer-first).
type ExactSearcher interface {
	Search(ctx context.Context, pattern string, flags []string, maxResults int) (*search.Result, error)
}

// SearchHandler handles HTTP requests for exact-match searches.
type SearchHandler struct {
	searcher   ExactSearcher
	maxResults int
}

// NewSearchHandler creates a new SearchHandler. maxResults caps the result
// list for every request.
func NewSearchHandler(searcher ExactSearcher, maxResults int) *SearchHandler {
	return &SearchHandler{
		searcher:   searcher,
		maxResults: maxResults,
	}
}

// SearchRequest represents the HTTP request payload for exact-match searches.
type SearchRequest struct {
	Pattern string   `json:"pattern"`
	Flags   []string `json:"flags,omitempty"`
}

// SearchResponse represents the HTTP response payload for exact-match searches.
type SearchResponse struct {
	Results      []string `json:"results"`
	TotalMatches int      `json:"total_matches"`
	Limited      bool     `json:"limited"`
}

// ServeHTTP handles HTTP requests for exact-match searches.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Pattern) == "" {
		logger.WarnContext(ctx, "empty pattern in request")
		writeError(w, http.StatusBadRequest, "Pattern is required")
		return
	}

	result, err := h.searcher.Search(ctx, req.Pattern, req.Flags, h.maxResults)
	if err != nil {
		logger.ErrorContext(ctx, "search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Results:      result.Results,
		TotalMatches: result.TotalMatches,
		Limited:      result.Limited,
	})
}
