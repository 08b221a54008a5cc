package storage

import "time"

// NoteRecord represents one indexed markdown file.
// The checksum is a SHA-256 hex digest of the whole raw file; it gates
// re-indexing and is shared by every chunk of the file.
type NoteRecord struct {
	ID          string         // UUID
	Path        string         // Path to the markdown file, unique per note
	Title       string         // Extracted display title
	Checksum    string         // SHA-256 hex string of raw file content
	Frontmatter map[string]any // Parsed YAML front-matter, nil when absent
	UpdatedAt   time.Time
}

// ChunkRecord represents one chunk of a note, indexed for vector search.
// The ID doubles as the Qdrant point ID.
type ChunkRecord struct {
	ID         string // UUID (same as Qdrant point ID)
	NoteID     string // UUID (foreign key to notes.id)
	ChunkIndex int    // Position within the note's processing order (starts at 0)
	Text       string // Chunk text content
}
