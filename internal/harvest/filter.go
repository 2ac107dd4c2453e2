package harvest

import "strings"

// ContentFilter rejects article bodies containing any of a configured set of
// words. Boards occasionally carry recurring administrative boilerplate
// (recruitment results, bid announcements) that is never worth storing; the
// word list names those markers.
type ContentFilter struct {
	words []string
}

// NewContentFilter builds a filter from the given words. Blank entries are
// dropped; an empty list blocks nothing.
func NewContentFilter(words []string) *ContentFilter {
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			kept = append(kept, w)
		}
	}
	return &ContentFilter{words: kept}
}

// Match reports the first configured word found in content. The match is a
// plain substring test, not token-based, so multi-word phrases work too.
func (f *ContentFilter) Match(content string) (string, bool) {
	for _, w := range f.words {
		if strings.Contains(content, w) {
			return w, true
		}
	}
	return "", false
}
