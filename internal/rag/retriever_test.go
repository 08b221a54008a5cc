package rag

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/mock/gomock"

	llmmocks "notechat-ai/internal/llm/mocks"
	"notechat-ai/internal/vectorstore"
	vsmocks "notechat-ai/internal/vectorstore/mocks"
)

func newTestRetriever(t *testing.T) (*Retriever, *llmmocks.MockEmbedder, *vsmocks.MockVectorStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	embedder := llmmocks.NewMockEmbedder(ctrl)
	vectorStore := vsmocks.NewMockVectorStore(ctrl)
	return NewRetriever(embedder, vectorStore, "notes"), embedder, vectorStore
}

func TestRetriever_Query_BlankText(t *testing.T) {
	retriever, _, _ := newTestRetriever(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := retriever.Query(context.Background(), text, 10, 0.3, 0.5); err == nil {
			t.Errorf("Query(%q) expected validation error, got nil", text)
		}
	}
}

func TestRetriever_Query_InvalidLimit(t *testing.T) {
	retriever, _, _ := newTestRetriever(t)

	if _, err := retriever.Query(context.Background(), "question", 0, 0.3, 0.5); err == nil {
		t.Error("Query() with limit 0 expected error, got nil")
	}
}

func TestRetriever_Query_MergeDedupSort(t *testing.T) {
	retriever, embedder, vectorStore := newTestRetriever(t)
	ctx := context.Background()
	queryVec := []float32{0.1, 0.2}

	embedder.EXPECT().EmbedQuery(gomock.Any(), "release plan").Return(queryVec, nil)

	vectorStore.EXPECT().
		Search(gomock.Any(), "notes", vectorstore.VectorText, queryVec, 10, float32(0.3)).
		Return([]vectorstore.SearchResult{
			{PointID: "a", Score: 0.9, Meta: map[string]any{"filename": "plan.md", "path": "plan.md", "chunk_index": int64(0), "text": "release steps"}},
			{PointID: "b", Score: 0.5, Meta: map[string]any{"filename": "notes.md", "path": "sub/notes.md", "chunk_index": int64(2), "text": "misc"}},
		}, nil)
	vectorStore.EXPECT().
		Search(gomock.Any(), "notes", vectorstore.VectorFilename, queryVec, 10, float32(0.3)).
		Return([]vectorstore.SearchResult{
			{PointID: "b", Score: 0.85, Meta: map[string]any{"filename": "notes.md", "path": "sub/notes.md", "chunk_index": int64(2), "text": "misc"}},
			{PointID: "c", Score: 0.31, Meta: map[string]any{"filename": "other.md", "path": "other.md", "chunk_index": int64(1), "text": "other"}},
		}, nil)

	results, err := retriever.Query(ctx, "release plan", 10, 0.3, 0.3)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Query() returned %d results, want 3", len(results))
	}

	// Point b appears in both channels; the first occurrence (text channel)
	// wins, so its similarity is 0.5, not 0.85
	wantOrder := []struct {
		path       string
		chunkIndex int
		similarity float32
	}{
		{"plan.md", 0, 0.9},
		{"sub/notes.md", 2, 0.5},
		{"other.md", 1, 0.31},
	}
	for i, want := range wantOrder {
		got := results[i]
		if got.Path != want.path || got.ChunkIndex != want.chunkIndex || got.Similarity != want.similarity {
			t.Errorf("result[%d] = {%s %d %v}, want {%s %d %v}",
				i, got.Path, got.ChunkIndex, got.Similarity, want.path, want.chunkIndex, want.similarity)
		}
	}
}

func TestRetriever_Query_StrictThreshold(t *testing.T) {
	retriever, embedder, vectorStore := newTestRetriever(t)
	queryVec := []float32{0.1}

	embedder.EXPECT().EmbedQuery(gomock.Any(), gomock.Any()).Return(queryVec, nil)

	// A score exactly at the threshold must be excluded
	vectorStore.EXPECT().
		Search(gomock.Any(), "notes", vectorstore.VectorText, queryVec, 5, float32(0.3)).
		Return([]vectorstore.SearchResult{
			{PointID: "boundary", Score: 0.3, Meta: map[string]any{}},
		}, nil)
	vectorStore.EXPECT().
		Search(gomock.Any(), "notes", vectorstore.VectorFilename, queryVec, 5, float32(0.5)).
		Return(nil, nil)

	results, err := retriever.Query(context.Background(), "question", 5, 0.3, 0.5)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Query() returned %d results, want 0 (boundary score excluded)", len(results))
	}
}

func TestRetriever_Query_TruncatesToLimit(t *testing.T) {
	retriever, embedder, vectorStore := newTestRetriever(t)
	queryVec := []float32{0.1}

	embedder.EXPECT().EmbedQuery(gomock.Any(), gomock.Any()).Return(queryVec, nil)
	vectorStore.EXPECT().
		Search(gomock.Any(), "notes", vectorstore.VectorText, queryVec, 2, float32(0.1)).
		Return([]vectorstore.SearchResult{
			{PointID: "a", Score: 0.8, Meta: map[string]any{}},
			{PointID: "b", Score: 0.6, Meta: map[string]any{}},
		}, nil)
	vectorStore.EXPECT().
		Search(gomock.Any(), "notes", vectorstore.VectorFilename, queryVec, 2, float32(0.1)).
		Return([]vectorstore.SearchResult{
			{PointID: "c", Score: 0.7, Meta: map[string]any{}},
		}, nil)

	results, err := retriever.Query(context.Background(), "question", 2, 0.1, 0.1)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Query() returned %d results, want 2", len(results))
	}
	if results[0].Similarity != 0.8 || results[1].Similarity != 0.7 {
		t.Errorf("Query() kept scores %v, %v; want the two highest (0.8, 0.7)",
			results[0].Similarity, results[1].Similarity)
	}
}

func TestRetriever_Query_ChannelError(t *testing.T) {
	retriever, embedder, vectorStore := newTestRetriever(t)
	queryVec := []float32{0.1}

	embedder.EXPECT().EmbedQuery(gomock.Any(), gomock.Any()).Return(queryVec, nil)
	vectorStore.EXPECT().
		Search(gomock.Any(), "notes", vectorstore.VectorText, queryVec, 5, float32(0.3)).
		Return(nil, nil).
		AnyTimes()
	vectorStore.EXPECT().
		Search(gomock.Any(), "notes", vectorstore.VectorFilename, queryVec, 5, float32(0.5)).
		Return(nil, fmt.Errorf("connection refused"))

	if _, err := retriever.Query(context.Background(), "question", 5, 0.3, 0.5); err == nil {
		t.Error("Query() expected error when a channel fails, got nil")
	}
}

func TestRetriever_Query_EmbedError(t *testing.T) {
	retriever, embedder, _ := newTestRetriever(t)

	embedder.EXPECT().EmbedQuery(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("model not loaded"))

	if _, err := retriever.Query(context.Background(), "question", 5, 0.3, 0.5); err == nil {
		t.Error("Query() expected error when embedding fails, got nil")
	}
}
