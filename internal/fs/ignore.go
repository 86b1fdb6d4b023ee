package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoreFileName is read from the root of an import and merged with the
// configured patterns.
const IgnoreFileName = ".ffgignore"

// defaultIgnorePatterns are always applied regardless of config or .ffgignore.
var defaultIgnorePatterns = []string{IgnoreFileName}

// ignorePattern is a parsed ignore pattern with its matching strategy.
type ignorePattern struct {
	pattern   string
	matchPath bool // true = match against relative path; false = match against basename only
}

// IgnoreMatcher checks file paths against a set of ignore patterns.
// Patterns without '/' match against the file's basename only.
// Patterns with '/' match against the full relative path and may use '**'
// to span directories, e.g. "**/node_modules" or "build/**/*.o".
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank lines, lines starting with '#', and malformed globs are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	all := make([]string, 0, len(defaultIgnorePatterns)+len(rawPatterns))
	all = append(all, defaultIgnorePatterns...)
	all = append(all, rawPatterns...)

	var patterns []ignorePattern
	for _, raw := range all {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		raw = strings.TrimSuffix(raw, "/")
		if !doublestar.ValidatePattern(raw) {
			continue
		}
		patterns = append(patterns, ignorePattern{
			pattern:   raw,
			matchPath: strings.Contains(raw, "/"),
		})
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Match reports whether the given relative path should be ignored.
// relativePath may use either separator and is relative to the import root.
func (m *IgnoreMatcher) Match(relativePath string) bool {
	if relativePath == "" || len(m.patterns) == 0 {
		return false
	}

	normalized := filepath.ToSlash(relativePath)
	basename := filepath.Base(relativePath)

	for _, p := range m.patterns {
		target := basename
		if p.matchPath {
			target = normalized
		}
		// Patterns were validated on construction, so the error is always nil.
		if matched, _ := doublestar.Match(p.pattern, target); matched {
			return true
		}
	}
	return false
}

// ParseIgnoreFile reads an ignore file and returns the raw pattern strings.
// Returns nil and no error if the file does not exist.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
