package indexer

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func assertChunkSizes(t *testing.T, chunks []Chunk, charLimit int) {
	t.Helper()
	for i, chunk := range chunks {
		if n := utf8.RuneCountInString(chunk.Text); n > charLimit {
			t.Errorf("chunk[%d] size = %d runes, exceeds limit %d", i, n, charLimit)
		}
	}
}

func assertSequentialIndices(t *testing.T, chunks []Chunk) {
	t.Helper()
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk[%d].Index = %d, want %d", i, chunk.Index, i)
		}
	}
}

func TestChunkMarkdown_FitsInOneChunk(t *testing.T) {
	text := "# Heading\n\nShort content."
	chunks := ChunkMarkdown(text, 1000)

	if len(chunks) != 1 {
		t.Fatalf("ChunkMarkdown() = %d chunks, want 1", len(chunks))
	}
	if chunks[0].Index != 0 || chunks[0].Text != text {
		t.Errorf("ChunkMarkdown() = %+v, want the whole text at index 0", chunks[0])
	}
}

func TestChunkMarkdown_EmptyAndWhitespace(t *testing.T) {
	// Empty and whitespace-only input yields an empty list. This is a
	// deliberate choice, tested explicitly.
	for _, text := range []string{"", "   ", "\n\n\t\n"} {
		if chunks := ChunkMarkdown(text, 100); len(chunks) != 0 {
			t.Errorf("ChunkMarkdown(%q) = %d chunks, want 0", text, len(chunks))
		}
	}
}

func TestChunkMarkdown_SplitsAtHeadings(t *testing.T) {
	text := "intro text\n## First\nbody one\n## Second\nbody two"
	chunks := ChunkMarkdown(text, 25)

	if len(chunks) < 2 {
		t.Fatalf("ChunkMarkdown() = %d chunks, want at least 2", len(chunks))
	}
	assertChunkSizes(t, chunks, 25)
	assertSequentialIndices(t, chunks)

	// The heading marker stays with its own section.
	var found bool
	for _, chunk := range chunks {
		if strings.HasPrefix(chunk.Text, "## Second") {
			found = true
		}
		if strings.HasSuffix(chunk.Text, "\n##") || strings.HasSuffix(chunk.Text, "##") {
			t.Errorf("chunk %q ends with a detached heading marker", chunk.Text)
		}
	}
	if !found {
		t.Error("no chunk starts with the second heading marker")
	}
}

func TestChunkMarkdown_ParagraphAccumulation(t *testing.T) {
	text := "aaaa\n\nbbbb\n\ncccc\n\ndddd"
	chunks := ChunkMarkdown(text, 10)

	// Each paragraph is 4 runes; two fit per chunk with the restored "\n\n".
	want := []string{"aaaa\n\nbbbb", "cccc\n\ndddd"}
	got := make([]string, len(chunks))
	for i, chunk := range chunks {
		got[i] = chunk.Text
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ChunkMarkdown() = %q, want %q", got, want)
	}
	assertSequentialIndices(t, chunks)
}

func TestChunkMarkdown_OversizedParagraphRecurses(t *testing.T) {
	// The middle paragraph exceeds the limit on its own and must be
	// re-chunked by a finer separator (sentence breaks).
	big := strings.Repeat("word word word. ", 10) // 160 runes
	text := "short one\n\n" + big + "\n\nshort two"

	chunks := ChunkMarkdown(text, 40)
	assertChunkSizes(t, chunks, 40)
	assertSequentialIndices(t, chunks)

	if len(chunks) < 4 {
		t.Errorf("ChunkMarkdown() = %d chunks, want the oversized paragraph split out", len(chunks))
	}
}

func TestChunkMarkdown_FixedSizeFallback(t *testing.T) {
	// A limit smaller than a single word forces the fallback: no separator
	// can help, so the text is sliced into ceil(len/limit) pieces.
	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := ChunkMarkdown(text, 5)

	if len(chunks) != 6 {
		t.Fatalf("ChunkMarkdown() = %d chunks, want 6", len(chunks))
	}
	assertChunkSizes(t, chunks, 5)
	assertSequentialIndices(t, chunks)

	if joined := joinChunks(chunks); joined != text {
		t.Errorf("fixed-size slices reassemble to %q, want %q", joined, text)
	}
}

func TestChunkMarkdown_FallbackTerminates(t *testing.T) {
	// One giant line with no sentence breaks at all must terminate via
	// fixed-size slicing, not recurse unboundedly.
	text := strings.Repeat("x", 5000)
	chunks := ChunkMarkdown(text, 100)

	if len(chunks) != 50 {
		t.Fatalf("ChunkMarkdown() = %d chunks, want 50", len(chunks))
	}
	assertChunkSizes(t, chunks, 100)
}

func TestChunkMarkdown_ApproximateReconstruction(t *testing.T) {
	text := "# Notes\n\nFirst paragraph with some words.\n\nSecond paragraph here.\n\n## Detail\n\nThird paragraph, a bit longer than the others, to force splits."
	chunks := ChunkMarkdown(text, 60)

	assertChunkSizes(t, chunks, 60)
	assertSequentialIndices(t, chunks)

	// Concatenating chunks in index order reconstructs the body up to
	// separator characters consumed by the splitting scheme.
	joined := joinChunks(chunks)
	for _, word := range strings.Fields(strings.ReplaceAll(text, "\n", " ")) {
		if !strings.Contains(joined, strings.TrimSuffix(word, ".")) {
			t.Errorf("reconstructed text is missing %q", word)
		}
	}
}

func TestChunkMarkdown_Deterministic(t *testing.T) {
	text := "# A\n\none two three. four five six.\n\n## B\n\nseven eight nine"
	first := ChunkMarkdown(text, 30)
	second := ChunkMarkdown(text, 30)

	if !reflect.DeepEqual(first, second) {
		t.Error("ChunkMarkdown() is not deterministic for identical input")
	}
}

func TestChunkMarkdown_MultibyteRunes(t *testing.T) {
	text := strings.Repeat("日本語のテキスト。", 30)
	chunks := ChunkMarkdown(text, 20)

	assertChunkSizes(t, chunks, 20)
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk.Text) {
			t.Errorf("chunk[%d] is not valid UTF-8", i)
		}
	}
}

func joinChunks(chunks []Chunk) string {
	var b strings.Builder
	for _, chunk := range chunks {
		b.WriteString(chunk.Text)
	}
	return b.String()
}
