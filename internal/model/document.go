package model

import "fmt"

// Source identifies which collection a document was acquired from
type Source string

const (
	SourceGutenberg Source = "gutenberg" // Project Gutenberg books by other authors
	SourceLoC       Source = "loc"       // Library of Congress documents by Lincoln
)

// NormalizedDocument is the canonical record shape shared by both sources.
// Immutable once produced by the normalizer.
type NormalizedDocument struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Text   string `json:"text"`
	Source Source `json:"source"`
	URL    string `json:"url"`
}

// Validate checks the normalizer's output contract
func (d *NormalizedDocument) Validate() error {
	if d.Text == "" {
		return fmt.Errorf("document %s: empty text", d.ID)
	}
	if d.Source != SourceGutenberg && d.Source != SourceLoC {
		return fmt.Errorf("document %s: unknown source %q", d.ID, d.Source)
	}
	return nil
}

// Chunk is a bounded window of a document's text. Index establishes
// document-local ordering only.
type Chunk struct {
	DocumentID    string `json:"document_id"`
	Index         int    `json:"index"`
	Text          string `json:"text"`
	TokenEstimate int    `json:"token_estimate"`
}

// Ref returns the chunk's stable identity within a run
func (c Chunk) Ref() string {
	return fmt.Sprintf("%s_chunk_%d", c.DocumentID, c.Index)
}
