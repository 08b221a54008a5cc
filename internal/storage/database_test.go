package storage

import (
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *testDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	return &testDB{
		Notes:  NewNoteRepo(db),
		Chunks: NewChunkRepo(db),
	}
}

type testDB struct {
	Notes  *NoteRepo
	Chunks *ChunkRepo
}

func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	for i := 0; i < 3; i++ {
		if err := Migrate(db); err != nil {
			t.Fatalf("Migrate() run %d error = %v", i, err)
		}
	}
}
