package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks notechat-ai/internal/vectorstore VectorStore

import "context"

// Named vectors carried by every point. Each chunk is embedded twice: once
// over its text and once over its source filename, enabling two independent
// retrieval channels against the same record.
const (
	VectorText     = "text"
	VectorFilename = "filename"
)

// Point represents a vector point with named vectors and metadata.
type Point struct {
	ID      string
	Vectors map[string][]float32
	Meta    map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search ranks points by cosine similarity of the named vector against
	// the query, keeping only scores above scoreThreshold, up to limit rows.
	Search(ctx context.Context, collection, vectorName string, query []float32, limit int, scoreThreshold float32) ([]SearchResult, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error
}
