package naming

import (
	"path/filepath"
	"strings"
)

// DenyMatcher checks uploaded file names against a set of glob patterns.
// Matching is case-insensitive and uses the base name only.
type DenyMatcher struct {
	patterns []string
}

// NewDenyMatcher creates a DenyMatcher from raw pattern strings.
// Blank entries and entries starting with '#' are skipped.
func NewDenyMatcher(rawPatterns []string) *DenyMatcher {
	var patterns []string
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		patterns = append(patterns, strings.ToLower(raw))
	}
	return &DenyMatcher{patterns: patterns}
}

// Match reports whether name is denied.
func (m *DenyMatcher) Match(name string) bool {
	if len(m.patterns) == 0 {
		return false
	}
	base := strings.ToLower(filepath.Base(name))
	for _, p := range m.patterns {
		matched, err := filepath.Match(p, base)
		if err != nil {
			// Skip malformed patterns.
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
