package indexer

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"notechat-ai/internal/contextutil"
	"notechat-ai/internal/frontmatter"
	"notechat-ai/internal/llm"
	"notechat-ai/internal/notes"
	"notechat-ai/internal/storage"
	"notechat-ai/internal/vectorstore"
)

// Pipeline orchestrates the indexing of markdown files into SQLite and Qdrant.
type Pipeline struct {
	scanner     *notes.Scanner
	noteRepo    storage.NoteStore
	chunkRepo   storage.ChunkStore
	embedder    llm.Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	chunkLimit  int
}

// NewPipeline creates a new indexing pipeline.
func NewPipeline(
	scanner *notes.Scanner,
	noteRepo storage.NoteStore,
	chunkRepo storage.ChunkStore,
	embedder llm.Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	chunkLimit int,
) *Pipeline {
	return &Pipeline{
		scanner:     scanner,
		noteRepo:    noteRepo,
		chunkRepo:   chunkRepo,
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		chunkLimit:  chunkLimit,
	}
}

// IndexFile indexes a single note file identified by its path relative to the
// notes root. It returns false without touching any store when the file's
// checksum matches the stored record. On change it replaces the note's chunk
// rows and vector points with a freshly chunked and embedded set. The
// delete-then-insert replacement is not atomic; a failure mid-way leaves the
// note partially indexed until the next run. The note's checksum is written
// last, so a partial run always fails the checksum gate on rerun.
func (p *Pipeline) IndexFile(ctx context.Context, relPath string) (bool, error) {
	logger := contextutil.LoggerFromContext(ctx)

	absPath := filepath.Join(p.scanner.Root(), filepath.FromSlash(relPath))

	content, err := os.ReadFile(absPath)
	if err != nil {
		return false, fmt.Errorf("failed to read file %s: %w", absPath, err)
	}

	// Checksum of the raw bytes is the sole change gate. Touching mtime or
	// changing the chunk limit does not trigger re-indexing.
	checksum := fmt.Sprintf("%x", sha256.Sum256(content))

	existingNote, err := p.noteRepo.GetByPath(ctx, relPath)
	if err != nil && err != storage.ErrNotFound {
		return false, fmt.Errorf("failed to check existing note: %w", err)
	}

	if existingNote != nil && existingNote.Checksum == checksum {
		logger.DebugContext(ctx, "skipping unchanged file", "path", relPath, "checksum", checksum)
		return false, nil
	}

	attrs, body, err := frontmatter.Extract(string(content))
	if err != nil {
		return false, fmt.Errorf("failed to parse front matter of %s: %w", relPath, err)
	}

	filename := filepath.Base(relPath)
	title := ExtractTitle([]byte(body), filename)
	chunks := ChunkMarkdown(body, p.chunkLimit)

	var noteID string
	if existingNote != nil {
		noteID = existingNote.ID
	} else {
		noteID = uuid.New().String()
	}

	noteRecord := &storage.NoteRecord{
		ID:          noteID,
		Path:        relPath,
		Title:       title,
		Checksum:    checksum,
		Frontmatter: attrs,
	}

	// Chunk rows reference the note row, so a new note needs its row before
	// any chunk insert. The checksum stays empty until the chunk set is
	// fully written; a failed run never satisfies the checksum gate, so the
	// next run re-indexes the file.
	if existingNote == nil {
		pending := *noteRecord
		pending.Checksum = ""
		if err := p.noteRepo.Upsert(ctx, &pending); err != nil {
			return false, fmt.Errorf("failed to upsert note: %w", err)
		}
	}

	// Remove the stale chunk set before inserting the new one
	if existingNote != nil {
		oldChunkIDs, err := p.chunkRepo.ListIDsByNote(ctx, noteID)
		if err != nil {
			return false, fmt.Errorf("failed to list old chunk IDs: %w", err)
		}

		if len(oldChunkIDs) > 0 {
			if err := p.vectorStore.Delete(ctx, p.collection, oldChunkIDs); err != nil {
				logger.WarnContext(ctx, "failed to delete old chunks from vector store", "error", err, "count", len(oldChunkIDs))
				// Continue anyway, the new chunks get fresh IDs
			}

			if err := p.chunkRepo.DeleteByNote(ctx, noteID); err != nil {
				return false, fmt.Errorf("failed to delete old chunks: %w", err)
			}
		}
	}

	if len(chunks) == 0 {
		if err := p.noteRepo.Upsert(ctx, noteRecord); err != nil {
			return false, fmt.Errorf("failed to upsert note: %w", err)
		}
		logger.WarnContext(ctx, "no chunks generated", "path", relPath)
		return true, nil
	}

	points := make([]vectorstore.Point, 0, len(chunks))
	for _, chunk := range chunks {
		textVec, err := p.embedder.EmbedDocument(ctx, chunk.Text)
		if err != nil {
			return false, fmt.Errorf("failed to embed chunk %d of %s: %w", chunk.Index, relPath, err)
		}

		// The filename embedding repeats per chunk; the embedder's memo
		// makes it one upstream call per file
		filenameVec, err := p.embedder.EmbedDocument(ctx, filename)
		if err != nil {
			return false, fmt.Errorf("failed to embed filename of %s: %w", relPath, err)
		}

		chunkID := uuid.New().String()
		chunkRecord := &storage.ChunkRecord{
			ID:         chunkID,
			NoteID:     noteID,
			ChunkIndex: chunk.Index,
			Text:       chunk.Text,
		}
		if err := p.chunkRepo.Insert(ctx, chunkRecord); err != nil {
			return false, fmt.Errorf("failed to insert chunk: %w", err)
		}

		meta := map[string]any{
			"filename":    filename,
			"path":        relPath,
			"chunk_index": chunk.Index,
			"text":        chunk.Text,
			"checksum":    checksum,
			"title":       title,
		}
		if len(attrs) > 0 {
			meta["frontmatter"] = attrs
		}

		points = append(points, vectorstore.Point{
			ID: chunkID,
			Vectors: map[string][]float32{
				vectorstore.VectorText:     textVec,
				vectorstore.VectorFilename: filenameVec,
			},
			Meta: meta,
		})
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return false, fmt.Errorf("failed to upsert vectors: %w", err)
	}

	// The checksum is recorded only after every chunk row and vector point
	// is persisted; until then the stored record keeps its previous value
	// and a rerun replaces whatever the failed attempt left behind
	if err := p.noteRepo.Upsert(ctx, noteRecord); err != nil {
		return false, fmt.Errorf("failed to record note checksum: %w", err)
	}

	logger.InfoContext(ctx, "indexed note", "path", relPath, "chunks", len(chunks), "title", title)
	return true, nil
}

// IndexGlob indexes every markdown file matching the glob pattern, resolved
// relative to the notes root. Directories, non-markdown files, and drawing
// sidecars are ignored. Per-file failures are logged and counted but do not
// abort the walk.
func (p *Pipeline) IndexGlob(ctx context.Context, pattern string) (Stats, error) {
	matches, err := filepath.Glob(filepath.Join(p.scanner.Root(), pattern))
	if err != nil {
		return Stats{}, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	relPaths := make([]string, 0, len(matches))
	for _, absPath := range matches {
		info, err := os.Stat(absPath)
		if err != nil || info.IsDir() || !notes.Indexable(absPath) {
			continue
		}
		relPath, err := filepath.Rel(p.scanner.Root(), absPath)
		if err != nil {
			continue
		}
		relPaths = append(relPaths, filepath.ToSlash(relPath))
	}

	return p.indexFiles(ctx, relPaths)
}

// IndexAll scans the notes root and indexes all markdown files.
func (p *Pipeline) IndexAll(ctx context.Context) (Stats, error) {
	scannedFiles, err := p.scanner.ScanAll(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to scan notes root: %w", err)
	}

	relPaths := make([]string, 0, len(scannedFiles))
	for _, file := range scannedFiles {
		relPaths = append(relPaths, file.RelPath)
	}

	return p.indexFiles(ctx, relPaths)
}

// indexFiles runs IndexFile sequentially over the given relative paths,
// accumulating per-file outcomes.
func (p *Pipeline) indexFiles(ctx context.Context, relPaths []string) (Stats, error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "starting indexing", "total_files", len(relPaths))

	var stats Stats
	for _, relPath := range relPaths {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		indexed, err := p.IndexFile(ctx, relPath)
		if err != nil {
			stats.Failed++
			logger.ErrorContext(ctx, "failed to index file", "path", relPath, "error", err)
			continue
		}

		if indexed {
			stats.Indexed++
		} else {
			stats.Skipped++
		}
	}

	logger.InfoContext(ctx, "indexing completed",
		"total_files", len(relPaths),
		"indexed", stats.Indexed,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
	return stats, nil
}
