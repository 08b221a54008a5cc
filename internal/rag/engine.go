package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks notechat-ai/internal/rag Engine
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_client.go -package=mocks notechat-ai/internal/rag ChatClient

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"notechat-ai/internal/contextutil"
	"notechat-ai/internal/llm"
)

// ChatClient is the LLM surface the engine needs for answer generation.
type ChatClient interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Engine provides RAG (Retrieval-Augmented Generation) functionality.
type Engine interface {
	// Ask answers a question by retrieving relevant chunks and generating an answer.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
	// Retrieve returns the raw retrieval results without LLM generation.
	Retrieve(ctx context.Context, question string, limit int) ([]Result, error)
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	retriever         *Retriever
	llmClient         ChatClient
	limit             int
	contentThreshold  float32
	filenameThreshold float32
}

// NewEngine creates a new RAG engine. limit and the per-channel thresholds
// are the configured defaults; AskRequest.Limit can lower or raise the limit
// per request up to maxLimit.
func NewEngine(
	retriever *Retriever,
	llmClient ChatClient,
	limit int,
	contentThreshold float32,
	filenameThreshold float32,
) Engine {
	return &ragEngine{
		retriever:         retriever,
		llmClient:         llmClient,
		limit:             limit,
		contentThreshold:  contentThreshold,
		filenameThreshold: filenameThreshold,
	}
}

// maxLimit caps per-request retrieval limits.
const maxLimit = 20

// Retrieve returns the retrieval results for a question.
func (e *ragEngine) Retrieve(ctx context.Context, question string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = e.limit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return e.retriever.Query(ctx, question, limit, e.contentThreshold, e.filenameThreshold)
}

// Ask answers a question using RAG.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	logger.InfoContext(ctx, "RAG query started", "question", req.Question, "limit", req.Limit)

	results, err := e.Retrieve(ctx, req.Question, req.Limit)
	if err != nil {
		logger.ErrorContext(ctx, "retrieval failed", "error", err)
		return AskResponse{}, fmt.Errorf("retrieval failed: %w", err)
	}

	if len(results) == 0 {
		logger.InfoContext(ctx, "no relevant chunks found")
		return AskResponse{
			Answer:     "I couldn't find any relevant information in your notes to answer this question.",
			References: []Reference{},
		}, nil
	}

	// Format context string
	var contextBuilder strings.Builder
	contextBuilder.WriteString("--- Context from notes ---\n\n")
	for _, result := range results {
		contextBuilder.WriteString(fmt.Sprintf("File: %s (chunk %d)\n", result.Path, result.ChunkIndex))
		contextBuilder.WriteString(fmt.Sprintf("Content: %s\n\n", result.Text))
	}
	contextBuilder.WriteString("--- End Context ---")

	contextString := contextBuilder.String()

	systemPrompt := "You are a helpful assistant that answers questions based on the provided context from the user's notes. " +
		"Answer the question using only the information from the context below. If the context doesn't contain " +
		"enough information to answer the question, say so. Cite specific files when possible."

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf("%s\n\n%s", req.Question, contextString)},
	}

	logger.DebugContext(ctx, "sending request to LLM",
		"chunks_included", len(results),
		"context_length", len(contextString),
	)

	answer, err := e.llmClient.ChatWithMessages(ctx, messages, llm.ChatParams{
		Temperature: 0.7,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err)
		return AskResponse{}, fmt.Errorf("failed to get LLM response: %w", err)
	}

	references := make([]Reference, 0, len(results))
	for _, result := range results {
		filename := result.Filename
		if filename == "" {
			filename = filepath.Base(result.Path)
		}
		references = append(references, Reference{
			Filename:   filename,
			Path:       result.Path,
			ChunkIndex: result.ChunkIndex,
			Similarity: result.Similarity,
		})
	}

	logger.InfoContext(ctx, "RAG query completed", "chunks_used", len(results), "answer_length", len(answer))

	return AskResponse{
		Answer:     answer,
		References: references,
	}, nil
}
