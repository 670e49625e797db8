package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Stage artifact names. Each pipeline stage persists its full output
// collection under one of these keys, which is what makes a new process
// able to resume from the last completed stage.
const (
	StageDocuments    = "documents"
	StageExtractions  = "extractions"
	StageAggregated   = "aggregated_extractions"
	StagePairs        = "comparison_pairs"
	StageJudgeResults = "judge_results"
	StageManualLabels = "manual_labels"

	ExperimentPromptRobustness = "experiment_1_prompt_robustness"
	ExperimentSelfConsistency  = "experiment_2_self_consistency"
	ExperimentHumanAlignment   = "experiment_3_human_alignment"
)

// ErrNotFound is returned by Load when no artifact exists for a stage.
// Callers treat it as "nothing to resume from", not a failure.
var ErrNotFound = errors.New("stage artifact not found")

// Store is durable key-addressed JSON storage for stage outputs
type Store struct {
	dir string
}

// New creates a store rooted at dir
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's root directory
func (s *Store) Dir() string {
	return s.dir
}

// Load reads the artifact for a stage into v. Returns ErrNotFound when the
// stage has never been persisted.
func (s *Store) Load(stage string, v any) error {
	data, err := os.ReadFile(s.path(stage))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, stage)
		}
		return fmt.Errorf("read %s: %w", stage, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", stage, err)
	}
	return nil
}

// Exists reports whether a stage artifact has been persisted
func (s *Store) Exists(stage string) bool {
	_, err := os.Stat(s.path(stage))
	return err == nil
}

// Save persists v as the artifact for a stage. The write goes through a
// temp file and rename so a crash mid-write never leaves a truncated
// artifact behind.
func (s *Store) Save(stage string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", stage, err)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp := s.path(stage) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", stage, err)
	}
	if err := os.Rename(tmp, s.path(stage)); err != nil {
		return fmt.Errorf("commit %s: %w", stage, err)
	}
	return nil
}

func (s *Store) path(stage string) string {
	return filepath.Join(s.dir, stage+".json")
}
