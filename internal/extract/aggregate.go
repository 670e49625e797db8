package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/athorburn/concordia/internal/model"
)

// Aggregate merges per-chunk extractions into one canonical extraction per
// (author, event). Claims and key quotes concatenate in discovery order
// with exact-string duplicates dropped; temporal details union with later
// values winning on key collision; tone comes from the member with the
// longest claim list. Output order is canonical event order, then author
// ascending, so downstream indices are reproducible.
func Aggregate(extractions []model.EventExtraction) []model.EventExtraction {
	type groupKey struct {
		event  model.EventID
		author string
	}

	groups := make(map[groupKey][]model.EventExtraction)
	var order []groupKey
	for _, ext := range extractions {
		k := groupKey{event: ext.Event, author: ext.Author}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], ext)
	}

	sort.SliceStable(order, func(i, j int) bool {
		oi, oj := model.EventOrder(order[i].event), model.EventOrder(order[j].event)
		if oi != oj {
			return oi < oj
		}
		return order[i].author < order[j].author
	})

	var merged []model.EventExtraction
	for _, k := range order {
		merged = append(merged, mergeGroup(k.event, k.author, groups[k]))
	}
	return merged
}

func mergeGroup(event model.EventID, author string, members []model.EventExtraction) model.EventExtraction {
	out := model.EventExtraction{
		ID:     fmt.Sprintf("agg_%s_%s", event, slug(author)),
		Event:  event,
		Author: author,
	}

	best := members[0]
	seenClaims := make(map[string]bool)
	seenQuotes := make(map[string]bool)
	seenDocs := make(map[string]bool)
	var docs []string

	for _, m := range members {
		for _, c := range m.Claims {
			if !seenClaims[c] {
				seenClaims[c] = true
				out.Claims = append(out.Claims, c)
			}
		}
		for _, q := range m.KeyQuotes {
			if !seenQuotes[q] {
				seenQuotes[q] = true
				out.KeyQuotes = append(out.KeyQuotes, q)
			}
		}
		if len(m.TemporalDetails) > 0 {
			if out.TemporalDetails == nil {
				out.TemporalDetails = make(map[string]string)
			}
			for k, v := range m.TemporalDetails {
				out.TemporalDetails[k] = v
			}
		}
		if m.SourceDocument != "" && !seenDocs[m.SourceDocument] {
			seenDocs[m.SourceDocument] = true
			docs = append(docs, m.SourceDocument)
		}
		if len(m.Claims) > len(best.Claims) {
			best = m
		}
	}

	out.Tone = best.Tone
	out.SourceDocument = strings.Join(docs, "; ")
	return out
}

func slug(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}
