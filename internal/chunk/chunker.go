package chunk

import (
	"regexp"
	"strings"

	"github.com/athorburn/concordia/internal/model"
)

// Chunker splits document text into bounded windows sized for the
// extraction context budget. Splits land on paragraph boundaries where
// possible, then sentence boundaries, then hard character positions as a
// last resort.
type Chunker struct {
	tokenBudget int
	overlap     float64 // fraction of the budget carried into the next chunk
}

// NewChunker creates a chunker with the given token budget and overlap
// fraction
func NewChunker(tokenBudget int, overlap float64) *Chunker {
	if tokenBudget <= 0 {
		tokenBudget = 3000
	}
	if overlap < 0 {
		overlap = 0
	}
	return &Chunker{tokenBudget: tokenBudget, overlap: overlap}
}

var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// Split produces the ordered chunk sequence for a document. A document
// under budget yields exactly one chunk holding the whole text.
func (c *Chunker) Split(doc model.NormalizedDocument) []model.Chunk {
	// The budget gates context-window fit, so it only needs to be
	// monotonic with text length. Roughly 4/3 tokens per whitespace word.
	charBudget := c.tokenBudget * 3 // ~3 chars per token on English prose

	if EstimateTokens(doc.Text) <= c.tokenBudget {
		return []model.Chunk{{
			DocumentID:    doc.ID,
			Index:         0,
			Text:          doc.Text,
			TokenEstimate: EstimateTokens(doc.Text),
		}}
	}

	var pieces []string
	for _, para := range paragraphSplit.Split(doc.Text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) > charBudget {
			pieces = append(pieces, splitOversized(para, charBudget)...)
		} else {
			pieces = append(pieces, para)
		}
	}

	overlapChars := int(float64(charBudget) * c.overlap)

	var chunks []model.Chunk
	var current strings.Builder
	flush := func() {
		text := strings.TrimSpace(current.String())
		if text == "" {
			return
		}
		chunks = append(chunks, model.Chunk{
			DocumentID:    doc.ID,
			Index:         len(chunks),
			Text:          text,
			TokenEstimate: EstimateTokens(text),
		})
		current.Reset()
		if overlapChars > 0 && len(text) > overlapChars {
			current.WriteString(text[len(text)-overlapChars:])
		}
	}

	for _, piece := range pieces {
		if current.Len() > 0 && current.Len()+len(piece) > charBudget {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(piece)
	}
	flush()

	return chunks
}

// splitOversized breaks a paragraph that alone exceeds the budget.
// Sentence boundaries are preferred; a sentence longer than the budget is
// cut at hard character positions.
func splitOversized(para string, charBudget int) []string {
	var pieces []string
	var current strings.Builder

	for _, sentence := range splitSentences(para) {
		if len(sentence) > charBudget {
			if current.Len() > 0 {
				pieces = append(pieces, current.String())
				current.Reset()
			}
			for start := 0; start < len(sentence); start += charBudget {
				end := start + charBudget
				if end > len(sentence) {
					end = len(sentence)
				}
				pieces = append(pieces, sentence[start:end])
			}
			continue
		}
		if current.Len() > 0 && current.Len()+len(sentence)+1 > charBudget {
			pieces = append(pieces, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}
	return pieces
}

// splitSentences splits on terminator-plus-space, good enough for the
// 19th-century prose in this corpus
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(text) || text[i+1] == ' ' || text[i+1] == '\n' {
				if s := strings.TrimSpace(current.String()); s != "" {
					sentences = append(sentences, s)
				}
				current.Reset()
			}
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// EstimateTokens approximates the token count of text. Deterministic and
// monotonic with length; exactness is not required since it only gates the
// context-window check.
func EstimateTokens(text string) int {
	return len(strings.Fields(text)) * 4 / 3
}
