package indexer

// Chunk represents a bounded slice of a markdown document's body.
type Chunk struct {
	Index int    // Position within the file's processing order (starts at 0)
	Text  string // Chunk text content
}

// Stats summarizes one bulk indexing run.
type Stats struct {
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
