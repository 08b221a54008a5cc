package storage

import (
	"context"
	"reflect"
	"testing"
)

func TestNoteRepo_GetByPath_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Notes.GetByPath(context.Background(), "missing.md")
	if err != ErrNotFound {
		t.Errorf("GetByPath() error = %v, want ErrNotFound", err)
	}
}

func TestNoteRepo_UpsertAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	note := &NoteRecord{
		Path:     "journal/today.md",
		Title:    "Today",
		Checksum: "abc123",
		Frontmatter: map[string]any{
			"tags": []any{"journal"},
		},
	}

	if err := db.Notes.Upsert(ctx, note); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if note.ID == "" {
		t.Fatal("Upsert() should assign an ID to a new note")
	}

	got, err := db.Notes.GetByPath(ctx, "journal/today.md")
	if err != nil {
		t.Fatalf("GetByPath() error = %v", err)
	}
	if got.ID != note.ID || got.Title != "Today" || got.Checksum != "abc123" {
		t.Errorf("GetByPath() = %+v", got)
	}
	if !reflect.DeepEqual(got.Frontmatter, note.Frontmatter) {
		t.Errorf("GetByPath() frontmatter = %v, want %v", got.Frontmatter, note.Frontmatter)
	}
}

func TestNoteRepo_Upsert_PreservesIDOnUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	note := &NoteRecord{Path: "a.md", Title: "A", Checksum: "v1"}
	if err := db.Notes.Upsert(ctx, note); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	firstID := note.ID

	updated := &NoteRecord{Path: "a.md", Title: "A updated", Checksum: "v2"}
	if err := db.Notes.Upsert(ctx, updated); err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}

	got, err := db.Notes.GetByPath(ctx, "a.md")
	if err != nil {
		t.Fatalf("GetByPath() error = %v", err)
	}
	if got.ID != firstID {
		t.Errorf("Upsert() changed the note ID: %s -> %s", firstID, got.ID)
	}
	if got.Checksum != "v2" || got.Title != "A updated" {
		t.Errorf("Upsert() did not update fields: %+v", got)
	}
}

func TestNoteRepo_NilFrontmatter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	note := &NoteRecord{Path: "plain.md", Checksum: "c"}
	if err := db.Notes.Upsert(ctx, note); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := db.Notes.GetByPath(ctx, "plain.md")
	if err != nil {
		t.Fatalf("GetByPath() error = %v", err)
	}
	if got.Frontmatter != nil {
		t.Errorf("GetByPath() frontmatter = %v, want nil", got.Frontmatter)
	}
}

func TestNoteRepo_DeleteByPath(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	note := &NoteRecord{Path: "gone.md", Checksum: "c"}
	if err := db.Notes.Upsert(ctx, note); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := db.Notes.DeleteByPath(ctx, "gone.md"); err != nil {
		t.Fatalf("DeleteByPath() error = %v", err)
	}
	if _, err := db.Notes.GetByPath(ctx, "gone.md"); err != ErrNotFound {
		t.Errorf("GetByPath() after delete error = %v, want ErrNotFound", err)
	}

	// Deleting again is not an error.
	if err := db.Notes.DeleteByPath(ctx, "gone.md"); err != nil {
		t.Errorf("DeleteByPath() on missing note error = %v", err)
	}
}
