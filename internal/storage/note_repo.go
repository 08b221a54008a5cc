package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_note_store.go -package=mocks notechat-ai/internal/storage NoteStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// NoteStore defines the interface for note storage operations.
type NoteStore interface {
	// GetByPath gets a note by its file path.
	// Returns nil and ErrNotFound if not found.
	GetByPath(ctx context.Context, path string) (*NoteRecord, error)
	// Upsert inserts a new note or updates an existing one.
	Upsert(ctx context.Context, note *NoteRecord) error
	// DeleteByPath removes a note record by its file path.
	DeleteByPath(ctx context.Context, path string) error
}

// NoteRepo provides methods for note operations.
// It implements the NoteStore interface.
type NoteRepo struct {
	db *sql.DB
}

// NewNoteRepo creates a new NoteRepo.
func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{db: db}
}

// DB exposes the underlying database handle.
func (r *NoteRepo) DB() *sql.DB {
	return r.db
}

// GetByPath gets a note by its file path.
// Returns nil and ErrNotFound if not found.
func (r *NoteRepo) GetByPath(ctx context.Context, path string) (*NoteRecord, error) {
	var note NoteRecord
	var frontmatterJSON sql.NullString
	var updatedAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, path, title, checksum, frontmatter, updated_at FROM notes WHERE path = ?",
		path,
	).Scan(&note.ID, &note.Path, &note.Title, &note.Checksum, &frontmatterJSON, &updatedAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query note %s: %w", path, err)
	}

	if frontmatterJSON.Valid {
		if err := json.Unmarshal([]byte(frontmatterJSON.String), &note.Frontmatter); err != nil {
			return nil, fmt.Errorf("failed to decode frontmatter for %s: %w", path, err)
		}
	}

	// Parse updated_at DATETIME string
	note.UpdatedAt, err = time.Parse("2006-01-02 15:04:05", updatedAtStr)
	if err != nil {
		// Try alternative format (SQLite might use different format)
		note.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
		}
	}

	return &note, nil
}

// Upsert inserts a new note or updates an existing one.
// If the note doesn't exist (by path), generates a new UUID unless one is
// set. If it exists, updates title, checksum, frontmatter and updated_at
// while preserving the ID.
func (r *NoteRepo) Upsert(ctx context.Context, note *NoteRecord) error {
	existing, err := r.GetByPath(ctx, note.Path)
	if err != nil && err != ErrNotFound {
		return fmt.Errorf("failed to check existing note: %w", err)
	}

	var frontmatterJSON any
	if note.Frontmatter != nil {
		encoded, err := json.Marshal(note.Frontmatter)
		if err != nil {
			return fmt.Errorf("failed to encode frontmatter for %s: %w", note.Path, err)
		}
		frontmatterJSON = string(encoded)
	}

	if existing != nil {
		note.ID = existing.ID
		_, err = r.db.ExecContext(ctx,
			"UPDATE notes SET title = ?, checksum = ?, frontmatter = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			note.Title, note.Checksum, frontmatterJSON, note.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update note %s: %w", note.Path, err)
		}
		return nil
	}

	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO notes (id, path, title, checksum, frontmatter) VALUES (?, ?, ?, ?, ?)",
		note.ID, note.Path, note.Title, note.Checksum, frontmatterJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert note %s: %w", note.Path, err)
	}
	return nil
}

// DeleteByPath removes a note record by its file path.
// Deleting a missing note is not an error.
func (r *NoteRepo) DeleteByPath(ctx context.Context, path string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("failed to delete note %s: %w", path, err)
	}
	return nil
}
