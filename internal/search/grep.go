// Package search runs exact-match searches over the notes root by shelling
// out to ripgrep. It complements the semantic retriever for queries where
// the user wants literal occurrences, not related passages.
package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"notechat-ai/internal/contextutil"
)

// noMatchesMarker is returned as the sole result line when the search ran
// fine but nothing matched.
const noMatchesMarker = "No matches found"

// Result holds the outcome of an exact-match search.
type Result struct {
	// Results are the raw output lines, possibly truncated, with a trailing
	// summary line when truncation occurred.
	Results []string `json:"results"`
	// TotalMatches is the match count before truncation.
	TotalMatches int `json:"total_matches"`
	// Limited reports whether the result list was truncated.
	Limited bool `json:"limited"`
}

// Searcher runs ripgrep against a fixed root directory. The root is set at
// construction and is never caller-overridable, so a request cannot escape
// the notes root.
type Searcher struct {
	root   string
	binary string
}

// NewSearcher creates a searcher over the given root. binary is the ripgrep
// executable name or path; empty means "rg" from PATH.
func NewSearcher(root, binary string) *Searcher {
	if binary == "" {
		binary = "rg"
	}
	return &Searcher{
		root:   root,
		binary: binary,
	}
}

// Search runs ripgrep with the given pattern and extra flags, returning up
// to maxResults output lines. Flags come first so they cannot displace the
// pattern or root positional arguments.
func (s *Searcher) Search(ctx context.Context, pattern string, flags []string, maxResults int) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("search pattern cannot be blank")
	}

	args := make([]string, 0, len(flags)+6)
	args = append(args, flags...)
	args = append(args, "--line-number", "--with-filename", "--no-heading", "--color=never", pattern, s.root)

	cmd := exec.CommandContext(ctx, s.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to run %s: %w", s.binary, err)
		}

		// Exit code 1 is ripgrep's "no matches" outcome, not a failure
		if exitErr.ExitCode() == 1 {
			logger.DebugContext(ctx, "search found no matches", "pattern", pattern)
			return &Result{
				Results:      []string{noMatchesMarker},
				TotalMatches: 0,
				Limited:      false,
			}, nil
		}

		return nil, fmt.Errorf("%s exited with code %d: %s", s.binary, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
	}

	lines := splitLines(stdout.String())
	total := len(lines)
	if total == 0 {
		return &Result{
			Results:      []string{noMatchesMarker},
			TotalMatches: 0,
			Limited:      false,
		}, nil
	}

	limited := false
	if maxResults >= 0 && total > maxResults {
		remaining := total - maxResults
		lines = append(lines[:maxResults:maxResults], fmt.Sprintf("... and %d more matches", remaining))
		limited = true
	}

	logger.DebugContext(ctx, "search completed", "pattern", pattern, "total_matches", total, "limited", limited)
	return &Result{
		Results:      lines,
		TotalMatches: total,
		Limited:      limited,
	}, nil
}

// splitLines splits output into non-blank lines.
func splitLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
