package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"notechat-ai/internal/contextutil"
	"notechat-ai/internal/llm"
	"notechat-ai/internal/vectorstore"
)

// Retriever answers semantic queries over the indexed notes. Every query runs
// two channels against the same query embedding: one over chunk text vectors
// and one over filename vectors, each with its own similarity threshold.
type Retriever struct {
	embedder    llm.Embedder
	vectorStore vectorstore.VectorStore
	collection  string
}

// NewRetriever creates a new dual-channel retriever.
func NewRetriever(embedder llm.Embedder, vectorStore vectorstore.VectorStore, collection string) *Retriever {
	return &Retriever{
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
	}
}

// Query retrieves up to limit chunks relevant to the query text. Both
// channels are limited to `limit` before merging, so a chunk that would rank
// in a global top-k across channels can be displaced by its own channel's
// cutoff. Merged results are deduplicated by point ID (first occurrence
// wins), sorted by similarity descending, and truncated to limit.
func (r *Retriever) Query(ctx context.Context, text string, limit int, contentThreshold, filenameThreshold float32) ([]Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("query text cannot be blank")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	queryVector, err := r.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	var textResults, filenameResults []vectorstore.SearchResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		textResults, err = r.vectorStore.Search(gctx, r.collection, vectorstore.VectorText, queryVector, limit, contentThreshold)
		if err != nil {
			return fmt.Errorf("text channel search failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		filenameResults, err = r.vectorStore.Search(gctx, r.collection, vectorstore.VectorFilename, queryVector, limit, filenameThreshold)
		if err != nil {
			return fmt.Errorf("filename channel search failed: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The store's threshold is inclusive; the contract here is strictly
	// greater, so boundary scores are dropped client-side
	merged := make([]vectorstore.SearchResult, 0, len(textResults)+len(filenameResults))
	seen := make(map[string]bool)
	appendAbove := func(results []vectorstore.SearchResult, threshold float32) {
		for _, result := range results {
			if result.Score <= threshold {
				continue
			}
			if seen[result.PointID] {
				continue
			}
			seen[result.PointID] = true
			merged = append(merged, result)
		}
	}
	appendAbove(textResults, contentThreshold)
	appendAbove(filenameResults, filenameThreshold)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}

	results := make([]Result, 0, len(merged))
	for _, item := range merged {
		filename, _ := item.Meta["filename"].(string)
		path, _ := item.Meta["path"].(string)
		title, _ := item.Meta["title"].(string)
		chunkText, _ := item.Meta["text"].(string)
		attrs, _ := item.Meta["frontmatter"].(map[string]any)

		results = append(results, Result{
			Filename:    filename,
			Path:        path,
			Title:       title,
			ChunkIndex:  metaInt(item.Meta["chunk_index"]),
			Text:        chunkText,
			Frontmatter: attrs,
			Similarity:  item.Score,
		})
	}

	logger.DebugContext(ctx, "retrieval completed",
		"text_channel", len(textResults),
		"filename_channel", len(filenameResults),
		"merged", len(results),
	)
	return results, nil
}

// metaInt converts a payload number to int. Qdrant integer payloads come back
// as int64; JSON round-trips produce float64.
func metaInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
