package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks notechat-ai/internal/llm Embedder

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Role prefixes required by nomic-style embedding models. Queries and
// documents are embedded into the same space but with different task
// prefixes, so the same text produces different vectors per role.
const (
	queryPrefix    = "search_query: "
	documentPrefix = "search_document: "
)

// memoCacheSize bounds the in-process embedding memo. Re-indexing an
// unchanged notes tree is the hot path, so most lookups should hit.
const memoCacheSize = 4096

// Embedder produces embedding vectors for queries and documents.
type Embedder interface {
	// EmbedQuery embeds text with the search query role prefix.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// EmbedDocument embeds text with the search document role prefix.
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingsClient is a client for an OpenAI-compatible embeddings API.
type EmbeddingsClient struct {
	BaseURL      string
	APIKey       string
	Model        string
	ExpectedSize int // Expected vector size for validation

	client    *http.Client
	loader    *ModelLoader
	loadGroup singleflight.Group
	loaded    atomic.Bool
	memo      *lru.Cache[string, []float32]
}

// NewEmbeddingsClient creates a new embeddings client.
// expectedSize is the expected vector size (from QDRANT_VECTOR_SIZE config);
// all returned embeddings are validated against it. loader may be nil, in
// which case the model is assumed to be loaded already.
func NewEmbeddingsClient(baseURL, apiKey, model string, expectedSize int, loader *ModelLoader) *EmbeddingsClient {
	memo, _ := lru.New[string, []float32](memoCacheSize)
	return &EmbeddingsClient{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		Model:        model,
		ExpectedSize: expectedSize,
		client:       newHTTPClient(),
		loader:       loader,
		memo:         memo,
	}
}

// EmbeddingsRequest represents the request payload for embeddings API.
type EmbeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingData represents a single embedding in the response.
type EmbeddingData struct {
	Embedding []float64 `json:"embedding"`
}

// EmbeddingsResponse represents the response from the embeddings API.
type EmbeddingsResponse struct {
	Data []EmbeddingData `json:"data"`
}

// EmbedQuery embeds text with the search query role prefix.
func (c *EmbeddingsClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return c.embed(ctx, queryPrefix, text)
}

// EmbedDocument embeds text with the search document role prefix.
func (c *EmbeddingsClient) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return c.embed(ctx, documentPrefix, text)
}

// embed returns the vector for the prefixed text, consulting the memo first.
func (c *EmbeddingsClient) embed(ctx context.Context, prefix, text string) ([]float32, error) {
	key := memoKey(c.Model, prefix, text)
	if vec, ok := c.memo.Get(key); ok {
		return vec, nil
	}

	if err := c.ensureLoaded(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure embedding model: %w", err)
	}

	vectors, err := c.embedTexts(ctx, []string{prefix + text})
	if err != nil {
		return nil, err
	}

	c.memo.Add(key, vectors[0])
	return vectors[0], nil
}

// ensureLoaded lazily loads the embedding model, collapsing concurrent
// callers into a single load request. Unlike sync.Once, a failed load can
// be retried on the next call.
func (c *EmbeddingsClient) ensureLoaded(ctx context.Context) error {
	if c.loader == nil || c.loaded.Load() {
		return nil
	}

	_, err, _ := c.loadGroup.Do(c.Model, func() (any, error) {
		if c.loaded.Load() {
			return nil, nil
		}
		if err := c.loader.LoadModel(ctx, c.Model, nil); err != nil {
			return nil, err
		}
		c.loaded.Store(true)
		return nil, nil
	})
	return err
}

// embedTexts generates embeddings for the given texts.
// Returns a slice of float32 vectors, one per input text.
// Validates that all returned vectors match the expected size.
func (c *EmbeddingsClient) embedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	url := fmt.Sprintf("%s/v1/embeddings", c.BaseURL)

	payload := EmbeddingsRequest{
		Model: c.Model,
		Input: texts,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var embeddingsResp EmbeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(embeddingsResp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddingsResp.Data))
	}

	// Convert []float64 to []float32 and validate size
	result := make([][]float32, len(embeddingsResp.Data))
	for i, data := range embeddingsResp.Data {
		if len(data.Embedding) != c.ExpectedSize {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(data.Embedding), c.ExpectedSize)
		}

		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		result[i] = vec
	}

	return result, nil
}

// memoKey derives a cache key from model, role prefix, and text.
func memoKey(model, prefix, text string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(prefix))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
