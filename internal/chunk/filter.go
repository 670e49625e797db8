package chunk

import (
	"strings"

	"github.com/athorburn/concordia/internal/model"
)

// KeywordFilter discards chunks unlikely to mention a tracked event so the
// extractor issues fewer calls. Missing a relevant chunk that lacks an
// exact keyword is an accepted cost trade-off, not a correctness bug: the
// extractor remains the authoritative relevance check.
type KeywordFilter struct {
	// expanded keyword sets per event, lowercased, including individual
	// words of compound keywords
	keywords map[model.EventID][]string
}

// NewKeywordFilter builds a filter over the event registry
func NewKeywordFilter(events []model.Event) *KeywordFilter {
	f := &KeywordFilter{keywords: make(map[model.EventID][]string, len(events))}
	for _, e := range events {
		f.keywords[e.ID] = expandKeywords(e.Keywords)
	}
	return f
}

// Relevant reports whether the chunk plausibly mentions the event. Pure
// function of its inputs; matching is case-insensitive substring.
func (f *KeywordFilter) Relevant(c model.Chunk, eventID model.EventID) bool {
	keywords, ok := f.keywords[eventID]
	if !ok {
		return false
	}
	text := strings.ToLower(c.Text)
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// expandKeywords lowercases each keyword and adds the individual words of
// compound keywords, dropping short words that would match everywhere
func expandKeywords(keywords []string) []string {
	seen := make(map[string]bool)
	var expanded []string
	add := func(kw string) {
		if len(kw) > 3 && !seen[kw] {
			seen[kw] = true
			expanded = append(expanded, kw)
		}
	}
	for _, kw := range keywords {
		lower := strings.ToLower(kw)
		add(lower)
		for _, word := range strings.Fields(lower) {
			add(word)
		}
	}
	return expanded
}
