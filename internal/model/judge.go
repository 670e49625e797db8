package model

import "fmt"

// ContradictionType is the closed classification of disagreement between
// two accounts
type ContradictionType string

const (
	ContradictionFactual      ContradictionType = "Factual"
	ContradictionInterpretive ContradictionType = "Interpretive"
	ContradictionOmission     ContradictionType = "Omission"
	ContradictionNone         ContradictionType = "None"
)

// ValidContradictionType reports membership in the closed set
func ValidContradictionType(t ContradictionType) bool {
	switch t {
	case ContradictionFactual, ContradictionInterpretive, ContradictionOmission, ContradictionNone:
		return true
	}
	return false
}

// PromptStrategy selects which judge instruction template is used
type PromptStrategy string

const (
	StrategyZeroShot       PromptStrategy = "zero_shot"
	StrategyChainOfThought PromptStrategy = "chain_of_thought"
	StrategyFewShot        PromptStrategy = "few_shot"
)

// Strategies returns all judge prompt strategies
func Strategies() []PromptStrategy {
	return []PromptStrategy{StrategyZeroShot, StrategyChainOfThought, StrategyFewShot}
}

// ComparisonPair matches Lincoln's aggregated account of an event with one
// other author's aggregated account of the same event.
type ComparisonPair struct {
	EventID     EventID         `json:"event_id"`
	EventName   string          `json:"event_name"`
	Lincoln     EventExtraction `json:"lincoln_extraction"`
	Other       EventExtraction `json:"other_extraction"`
	OtherAuthor string          `json:"other_author"`
}

// ID returns the pair's stable identity, reproducible across runs
func (p ComparisonPair) ID() string {
	return fmt.Sprintf("%s_%s_%s", p.EventID, p.Lincoln.Author, p.OtherAuthor)
}

// JudgeResult is the judge's verdict on one comparison pair
type JudgeResult struct {
	PairID           string            `json:"pair_id"`
	EventID          EventID           `json:"event_id"`
	OtherAuthor      string            `json:"other_author"`
	ConsistencyScore int               `json:"consistency_score"`
	Contradiction    ContradictionType `json:"contradiction_type"`
	Reasoning        string            `json:"reasoning"`
	KeyDifferences   []string          `json:"key_differences,omitempty"`
	KeySimilarities  []string          `json:"key_similarities,omitempty"`
	Strategy         PromptStrategy    `json:"strategy,omitempty"`
}

// Validate enforces the score range and contradiction enum. An out-of-range
// score from the generation layer is a schema violation, never clamped.
func (r *JudgeResult) Validate() error {
	if r.ConsistencyScore < 0 || r.ConsistencyScore > 100 {
		return fmt.Errorf("consistency_score %d outside [0,100]", r.ConsistencyScore)
	}
	if !ValidContradictionType(r.Contradiction) {
		return fmt.Errorf("contradiction_type %q is not one of Factual, Interpretive, Omission, None", r.Contradiction)
	}
	if r.Reasoning == "" {
		return fmt.Errorf("reasoning is required")
	}
	return nil
}

// HumanLabel is an out-of-band human rating of a comparison pair, used by
// the inter-rater agreement experiment
type HumanLabel struct {
	PairID           string `json:"pair_id"`
	EventName        string `json:"event_name,omitempty"`
	ConsistencyScore *int   `json:"consistency_score"` // nil until labeled
	Category         string `json:"category,omitempty"` // "Consistent" or "Contradictory"
	Notes            string `json:"notes,omitempty"`
}
