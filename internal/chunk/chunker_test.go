package chunk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/athorburn/concordia/internal/model"
)

func doc(id, text string) model.NormalizedDocument {
	return model.NormalizedDocument{ID: id, Title: id, Author: "Test", Text: text, Source: model.SourceGutenberg}
}

func TestSplit_ShortDocumentYieldsSingleChunk(t *testing.T) {
	c := NewChunker(3000, 0)
	d := doc("short", "The president spoke briefly at the dedication.")

	chunks := c.Split(d)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != d.Text {
		t.Errorf("single chunk must equal the whole text")
	}
	if chunks[0].Index != 0 {
		t.Errorf("expected index 0, got %d", chunks[0].Index)
	}
}

func TestSplit_CoverageReconstructsText(t *testing.T) {
	// Build a long document of well-formed paragraphs
	var paras []string
	for i := 0; i < 120; i++ {
		paras = append(paras, fmt.Sprintf("Paragraph %d recounts the events of that November evening in considerable detail, as the returns arrived by telegraph.", i))
	}
	text := strings.Join(paras, "\n\n")

	c := NewChunker(200, 0)
	chunks := c.Split(doc("long", text))

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	var parts []string
	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("chunk %d has index %d", i, ch.Index)
		}
		parts = append(parts, ch.Text)
	}
	if got := strings.Join(parts, "\n\n"); got != text {
		t.Errorf("concatenated chunks do not reconstruct the document text")
	}
}

func TestSplit_OverlapCarriesTailForward(t *testing.T) {
	var paras []string
	for i := 0; i < 60; i++ {
		paras = append(paras, fmt.Sprintf("Sentence number %d describing the bombardment of the fort in Charleston harbor.", i))
	}
	text := strings.Join(paras, "\n\n")

	c := NewChunker(150, 0.2)
	chunks := c.Split(doc("overlap", text))
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Each chunk after the first must start with text present near the end
	// of its predecessor
	for i := 1; i < len(chunks); i++ {
		head := chunks[i].Text
		if len(head) > 40 {
			head = head[:40]
		}
		if !strings.Contains(chunks[i-1].Text, strings.TrimSpace(head)) {
			t.Errorf("chunk %d does not overlap its predecessor", i)
		}
	}
}

func TestSplit_OversizedParagraphFallsBackToSentences(t *testing.T) {
	// One giant paragraph, no blank lines
	var b strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&b, "Clause %d of the account continues without a paragraph break. ", i)
	}

	c := NewChunker(100, 0)
	chunks := c.Split(doc("giant", b.String()))
	if len(chunks) < 2 {
		t.Fatalf("expected oversized paragraph to be split, got %d chunks", len(chunks))
	}
	for _, ch := range chunks {
		if ch.TokenEstimate > 3*c.tokenBudget {
			t.Errorf("chunk %d grossly exceeds budget: %d tokens", ch.Index, ch.TokenEstimate)
		}
	}
}

func TestEstimateTokens_MonotonicWithLength(t *testing.T) {
	short := EstimateTokens("four score and seven")
	long := EstimateTokens("four score and seven years ago our fathers brought forth")
	if short >= long {
		t.Errorf("token estimate not monotonic: %d >= %d", short, long)
	}
	if EstimateTokens("") != 0 {
		t.Errorf("empty text should estimate 0 tokens")
	}
}
