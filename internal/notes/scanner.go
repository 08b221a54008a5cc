package notes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScannedFile represents a markdown file found during a notes root scan.
type ScannedFile struct {
	RelPath string // Relative path from the notes root (e.g., "projects/meeting-notes.md")
	AbsPath string // Absolute file path
}

// Scanner walks a notes root for indexable markdown files.
type Scanner struct {
	root string
}

// NewScanner creates a scanner rooted at the given notes directory.
func NewScanner(root string) *Scanner {
	return &Scanner{root: root}
}

// Root returns the notes root directory.
func (s *Scanner) Root() string {
	return s.root
}

// Indexable reports whether a file path should be indexed. Non-markdown files
// and ".excalidraw.md" drawing sidecars are skipped.
func Indexable(path string) bool {
	if filepath.Ext(path) != ".md" {
		return false
	}
	return !strings.HasSuffix(path, ".excalidraw.md")
}

// ScanAll walks the notes root and returns all indexable markdown files.
func (s *Scanner) ScanAll(ctx context.Context) ([]ScannedFile, error) {
	var scannedFiles []ScannedFile

	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			// Skip .obsidian directory (Obsidian configuration)
			if info.Name() == ".obsidian" {
				return filepath.SkipDir
			}
			return nil
		}

		if !Indexable(path) {
			return nil
		}

		relPath, err := filepath.Rel(s.root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}

		scannedFiles = append(scannedFiles, ScannedFile{
			RelPath: filepath.ToSlash(relPath),
			AbsPath: path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan notes root %s: %w", s.root, err)
	}

	return scannedFiles, nil
}
