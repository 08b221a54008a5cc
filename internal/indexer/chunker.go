package indexer

import (
	"strings"
	"unicode/utf8"
)

// maxSplitDepth bounds the recursive re-chunking of oversized segments.
// Pathological input (one giant line with no sentence breaks) degrades to
// fixed-size slicing instead of recursing forever.
const maxSplitDepth = 10

// splitter is one strategy for breaking text at a textual separator.
// Heading splitters cut strictly before the heading marker so the marker
// stays with its section.
type splitter struct {
	sep     string
	heading bool
}

// splitters are tried in priority order: heading levels 1-6, paragraph
// breaks, line breaks, then sentence breaks.
var splitters = []splitter{
	{sep: "\n# ", heading: true},
	{sep: "\n## ", heading: true},
	{sep: "\n### ", heading: true},
	{sep: "\n#### ", heading: true},
	{sep: "\n##### ", heading: true},
	{sep: "\n###### ", heading: true},
	{sep: "\n\n"},
	{sep: "\n"},
	{sep: ". "},
}

// ChunkMarkdown splits markdown text into ordered chunks whose rune count
// never exceeds charLimit. Empty or whitespace-only text yields an empty
// list. The function is pure: identical input and limit always produce
// identical output.
func ChunkMarkdown(text string, charLimit int) []Chunk {
	if charLimit < 1 {
		charLimit = 1
	}

	pieces := chunkText(text, charLimit, 0)

	chunks := make([]Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = Chunk{Index: i, Text: piece}
	}
	return chunks
}

// chunkText does the actual splitting and returns chunk texts in order.
// Indices are assigned by the caller once the full output is known.
func chunkText(text string, charLimit, depth int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= charLimit {
		return []string{text}
	}
	if depth >= maxSplitDepth {
		return sliceFixed(text, charLimit)
	}

	for _, sp := range splitters {
		segments := split(text, sp)
		if !usable(segments, charLimit) {
			continue
		}
		return accumulate(segments, sp, charLimit, depth)
	}

	// No separator can subdivide this text.
	return sliceFixed(text, charLimit)
}

// split breaks text at the separator. For heading splitters the consumed
// marker is re-attached to the segment it introduced.
func split(text string, sp splitter) []string {
	segments := strings.Split(text, sp.sep)
	if sp.heading {
		marker := sp.sep[1:] // drop the leading newline, keep "# "
		for i := 1; i < len(segments); i++ {
			segments[i] = marker + segments[i]
		}
	}
	return segments
}

// usable reports whether a split can make progress: it must produce more
// than one segment, and at least one segment must fit within the limit.
func usable(segments []string, charLimit int) bool {
	if len(segments) < 2 {
		return false
	}
	for _, seg := range segments {
		if utf8.RuneCountInString(seg) <= charLimit {
			return true
		}
	}
	return false
}

// accumulate greedily packs segments into chunks up to charLimit. A segment
// that alone exceeds the limit flushes the buffer and is re-chunked
// recursively, so an oversized paragraph falls through to the next finer
// separator.
func accumulate(segments []string, sp splitter, charLimit, depth int) []string {
	// Heading-anchored splits already carry their marker; only the consumed
	// newline is restored when joining. Other tiers re-attach the separator.
	joiner := sp.sep
	if sp.heading {
		joiner = "\n"
	}
	joinerLen := utf8.RuneCountInString(joiner)

	var out []string
	var buf strings.Builder
	bufLen := 0

	flush := func() {
		if bufLen > 0 {
			out = append(out, buf.String())
			buf.Reset()
			bufLen = 0
		}
	}

	for _, seg := range segments {
		segLen := utf8.RuneCountInString(seg)

		if segLen > charLimit {
			flush()
			out = append(out, chunkText(seg, charLimit, depth+1)...)
			continue
		}

		if bufLen == 0 {
			buf.WriteString(seg)
			bufLen = segLen
			continue
		}

		if bufLen+joinerLen+segLen > charLimit {
			flush()
			buf.WriteString(seg)
			bufLen = segLen
			continue
		}

		buf.WriteString(joiner)
		buf.WriteString(seg)
		bufLen += joinerLen + segLen
	}
	flush()

	return out
}

// sliceFixed cuts text into charLimit-sized rune slices with no semantic
// awareness. Last-resort fallback.
func sliceFixed(text string, charLimit int) []string {
	runes := []rune(text)
	out := make([]string, 0, (len(runes)+charLimit-1)/charLimit)
	for start := 0; start < len(runes); start += charLimit {
		end := start + charLimit
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}
