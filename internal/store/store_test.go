package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/athorburn/concordia/internal/model"
)

func TestStore_SaveAndLoad(t *testing.T) {
	s := New(t.TempDir())

	in := []model.EventExtraction{
		{
			ID:     "abc",
			Event:  model.EventGettysburgAddress,
			Author: "John G. Nicolay",
			Claims: []string{"The address was delivered at the cemetery dedication."},
			Tone:   model.ToneDescriptive,
		},
	}

	if err := s.Save(StageExtractions, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	var out []model.EventExtraction
	if err := s.Load(StageExtractions, &out); err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(out) != 1 {
		t.Fatalf("expected 1 extraction, got %d", len(out))
	}
	if out[0].Event != model.EventGettysburgAddress || out[0].Author != "John G. Nicolay" {
		t.Errorf("round trip mangled record: %+v", out[0])
	}
}

func TestStore_LoadMissingStage(t *testing.T) {
	s := New(t.TempDir())

	var out []model.JudgeResult
	err := s.Load(StageJudgeResults, &out)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ExistsAndOverwrite(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nested", "data"))

	if s.Exists(StageDocuments) {
		t.Fatal("stage should not exist before save")
	}

	if err := s.Save(StageDocuments, []model.NormalizedDocument{{ID: "a", Text: "x", Source: model.SourceLoC}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !s.Exists(StageDocuments) {
		t.Fatal("stage should exist after save")
	}

	// Overwrite with a larger collection and read it back
	docs := []model.NormalizedDocument{
		{ID: "a", Text: "x", Source: model.SourceLoC},
		{ID: "b", Text: "y", Source: model.SourceGutenberg},
	}
	if err := s.Save(StageDocuments, docs); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	var out []model.NormalizedDocument
	if err := s.Load(StageDocuments, &out); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("expected 2 documents after overwrite, got %d", len(out))
	}
}
