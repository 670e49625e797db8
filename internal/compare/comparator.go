package compare

import (
	"sort"

	"github.com/athorburn/concordia/internal/model"
)

// BuildPairs forms one ComparisonPair per (event, non-Lincoln author) where
// both that author and Lincoln have an aggregated extraction for the event.
// Authors without a same-event Lincoln counterpart produce no pair; that is
// a documented exclusion, not an error. Output order is canonical event
// order, then other_author ascending, so downstream indices are
// reproducible across runs.
//
// The input is expected to be aggregated: one extraction per (author,
// event). Should multiple Lincoln-variant authors survive aggregation for
// an event, the one with the most claims represents Lincoln (ties to the
// lexicographically smallest author).
func BuildPairs(extractions []model.EventExtraction) []model.ComparisonPair {
	byEvent := make(map[model.EventID][]model.EventExtraction)
	for _, ext := range extractions {
		byEvent[ext.Event] = append(byEvent[ext.Event], ext)
	}

	var pairs []model.ComparisonPair
	for _, event := range model.Events() {
		group := byEvent[event.ID]

		var lincoln *model.EventExtraction
		var others []model.EventExtraction
		for i := range group {
			ext := group[i]
			if !model.IsLincoln(ext.Author) {
				others = append(others, ext)
				continue
			}
			if lincoln == nil ||
				len(ext.Claims) > len(lincoln.Claims) ||
				(len(ext.Claims) == len(lincoln.Claims) && ext.Author < lincoln.Author) {
				lincoln = &group[i]
			}
		}
		if lincoln == nil || len(lincoln.Claims) == 0 {
			continue
		}

		sort.Slice(others, func(i, j int) bool {
			return others[i].Author < others[j].Author
		})

		for _, other := range others {
			if len(other.Claims) == 0 {
				continue
			}
			pairs = append(pairs, model.ComparisonPair{
				EventID:     event.ID,
				EventName:   event.Name,
				Lincoln:     *lincoln,
				Other:       other,
				OtherAuthor: other.Author,
			})
		}
	}

	return pairs
}
