package model

import (
	"fmt"
	"strings"
)

// Tone classifies the author's attitude toward an event
type Tone string

const (
	ToneNeutral     Tone = "neutral"
	ToneCelebratory Tone = "celebratory"
	ToneSomber      Tone = "somber"
	ToneDefensive   Tone = "defensive"
	ToneSympathetic Tone = "sympathetic"
	ToneCritical    Tone = "critical"
	ToneDescriptive Tone = "descriptive"
)

// Tones returns the closed tone set
func Tones() []Tone {
	return []Tone{
		ToneNeutral, ToneCelebratory, ToneSomber,
		ToneDefensive, ToneSympathetic, ToneCritical, ToneDescriptive,
	}
}

// ValidTone reports whether t is a member of the closed tone set
func ValidTone(t Tone) bool {
	for _, known := range Tones() {
		if t == known {
			return true
		}
	}
	return false
}

// EventExtraction is the structured account of one event by one author,
// produced per chunk by the extractor and one-per-(author,event) after
// aggregation.
type EventExtraction struct {
	ID              string            `json:"id"`
	Event           EventID           `json:"event"`
	Author          string            `json:"author"`
	Claims          []string          `json:"claims"`
	TemporalDetails map[string]string `json:"temporal_details,omitempty"`
	Tone            Tone              `json:"tone"`
	KeyQuotes       []string          `json:"key_quotes,omitempty"`
	SourceChunk     string            `json:"source_chunk,omitempty"`
	SourceDocument  string            `json:"source_document,omitempty"`
}

// Validate enforces the closed enumerations. A violation is a schema
// failure to be retried by the caller, never coerced.
func (e *EventExtraction) Validate() error {
	if !ValidEventID(e.Event) {
		return fmt.Errorf("event %q is not one of the tracked events", e.Event)
	}
	if !ValidTone(e.Tone) {
		return fmt.Errorf("tone %q is not in the allowed set %v", e.Tone, Tones())
	}
	if e.Author == "" {
		return fmt.Errorf("author is required")
	}
	return nil
}

// IsLincoln reports whether an author string refers to Lincoln. Matching is
// case-insensitive on the substring; author strings are not canonicalized
// upstream, so name variants like "A. Lincoln" pass through this check.
func IsLincoln(author string) bool {
	return strings.Contains(strings.ToLower(author), "lincoln")
}
