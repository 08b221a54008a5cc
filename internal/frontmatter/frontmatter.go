// Package frontmatter separates optional YAML front-matter from a markdown
// document's body.
package frontmatter

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Has reports whether the text opens with a YAML front-matter block.
func Has(text string) bool {
	s := strings.TrimPrefix(text, "\ufeff")
	if !strings.HasPrefix(s, delimiter) {
		return false
	}
	rest := s[len(delimiter):]
	if rest != "" && rest[0] != '\n' && !strings.HasPrefix(rest, "\r\n") {
		// Something like "---foo" is a thematic break candidate, not front-matter.
		return false
	}
	return strings.Contains(rest, "\n"+delimiter)
}

// Extract splits the text into parsed front-matter attributes and the
// remaining body. When no front-matter block is present, attrs is nil and
// the body is the trimmed whole text. A malformed YAML block is an error.
func Extract(text string) (map[string]any, string, error) {
	if !Has(text) {
		return nil, strings.TrimSpace(text), nil
	}

	s := strings.TrimPrefix(text, "\ufeff")
	parts := strings.SplitN(s, delimiter, 3)
	if len(parts) < 3 {
		return nil, strings.TrimSpace(text), nil
	}

	attrs := make(map[string]any)
	if err := yaml.Unmarshal([]byte(parts[1]), &attrs); err != nil {
		return nil, "", fmt.Errorf("failed to parse front-matter: %w", err)
	}
	if len(attrs) == 0 {
		attrs = nil
	}

	return attrs, strings.TrimSpace(parts[2]), nil
}
