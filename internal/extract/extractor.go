package extract

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/athorburn/concordia/internal/chunk"
	"github.com/athorburn/concordia/internal/llm"
	"github.com/athorburn/concordia/internal/model"
	"github.com/athorburn/concordia/internal/worker"
)

// extractionResponse is the schema the extraction call must satisfy
type extractionResponse struct {
	Relevant        bool              `json:"relevant"`
	Event           model.EventID     `json:"event"`
	Author          string            `json:"author"`
	Claims          []string          `json:"claims"`
	TemporalDetails map[string]string `json:"temporal_details"`
	Tone            model.Tone        `json:"tone"`
	KeyQuotes       []string          `json:"key_quotes"`
}

// Validate enforces the closed enums. A response that declares the chunk
// irrelevant carries no payload and passes as-is.
func (r *extractionResponse) Validate() error {
	if !r.Relevant {
		return nil
	}
	if !model.ValidEventID(r.Event) {
		return fmt.Errorf("event %q is not one of the tracked events", r.Event)
	}
	if !model.ValidTone(r.Tone) {
		return fmt.Errorf("tone %q is not in the allowed set %v", r.Tone, model.Tones())
	}
	return nil
}

// FailedItem records a permanent per-item extraction or judging failure,
// reported in aggregate without aborting the batch
type FailedItem struct {
	Item  string `json:"item"`
	Event string `json:"event,omitempty"`
	Err   string `json:"error"`
}

// Extractor issues one schema-constrained call per (chunk, event) candidate
// that passes the keyword filter. Calls share no mutable state, so they fan
// out over a bounded worker pool.
type Extractor struct {
	provider    llm.Provider
	chunker     *chunk.Chunker
	filter      *chunk.KeywordFilter
	workers     int
	maxAttempts int
	logger      *zap.Logger
}

// NewExtractor creates an extractor
func NewExtractor(provider llm.Provider, chunker *chunk.Chunker, filter *chunk.KeywordFilter, workers, maxAttempts int, logger *zap.Logger) *Extractor {
	if workers <= 0 {
		workers = 3
	}
	return &Extractor{
		provider:    provider,
		chunker:     chunker,
		filter:      filter,
		workers:     workers,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

type candidate struct {
	doc   model.NormalizedDocument
	chunk model.Chunk
	event model.Event
}

type outcome struct {
	extraction *model.EventExtraction
	failure    *FailedItem
}

// resumeKey identifies a (chunk, event) unit of work across runs
func resumeKey(chunkRef string, eventID model.EventID) string {
	return chunkRef + "|" + string(eventID)
}

// Run extracts event accounts from every document. Prior results are
// honored: a (chunk, event) already present in prior is not re-issued and
// its stored record is returned unchanged. The returned slice contains
// prior and new extractions; failures list the candidates whose calls
// permanently failed.
func (e *Extractor) Run(ctx context.Context, docs []model.NormalizedDocument, prior []model.EventExtraction) ([]model.EventExtraction, []FailedItem) {
	done := make(map[string]bool, len(prior))
	for _, ext := range prior {
		if ext.SourceChunk != "" {
			done[resumeKey(ext.SourceChunk, ext.Event)] = true
		}
	}

	var candidates []candidate
	for _, doc := range docs {
		chunks := e.chunker.Split(doc)
		for _, event := range model.Events() {
			for _, c := range chunks {
				if done[resumeKey(c.Ref(), event.ID)] {
					continue
				}
				if !e.filter.Relevant(c, event.ID) {
					continue
				}
				candidates = append(candidates, candidate{doc: doc, chunk: c, event: event})
			}
		}
	}

	e.logger.Info("extraction candidates selected",
		zap.Int("documents", len(docs)),
		zap.Int("candidates", len(candidates)),
		zap.Int("resumed", len(prior)))

	outcomes := worker.Run(ctx, e.workers, candidates, e.extractOne)

	results := append([]model.EventExtraction(nil), prior...)
	var failures []FailedItem
	for _, o := range outcomes {
		if o.extraction != nil {
			results = append(results, *o.extraction)
		}
		if o.failure != nil {
			failures = append(failures, *o.failure)
		}
	}

	if len(failures) > 0 {
		e.logger.Warn("extraction completed with permanent failures", zap.Int("failed", len(failures)))
	}
	return results, failures
}

// extractOne runs the structured call for a single candidate. A "not
// relevant" verdict is a definitive result, not a failure: the keyword
// filter only pre-screens, the model is the authoritative check.
func (e *Extractor) extractOne(ctx context.Context, cand candidate) outcome {
	req := llm.Request{
		System:      llm.ExtractionSystem,
		Prompt:      llm.BuildExtractionPrompt(cand.chunk.Text, cand.event, cand.doc.Title, cand.doc.Author),
		Temperature: -1,
	}

	var resp extractionResponse
	if err := llm.CallStructured(ctx, e.provider, req, e.maxAttempts, &resp, e.logger); err != nil {
		e.logger.Warn("extraction failed",
			zap.String("chunk", cand.chunk.Ref()),
			zap.String("event", string(cand.event.ID)),
			zap.Error(err))
		return outcome{failure: &FailedItem{
			Item:  cand.chunk.Ref(),
			Event: string(cand.event.ID),
			Err:   err.Error(),
		}}
	}

	if !resp.Relevant || len(resp.Claims) == 0 {
		e.logger.Debug("chunk judged irrelevant",
			zap.String("chunk", cand.chunk.Ref()),
			zap.String("event", string(cand.event.ID)))
		return outcome{}
	}

	// Event and author come from the pipeline, not the model; the model
	// confirming them is checked by Validate, but the canonical values win.
	return outcome{extraction: &model.EventExtraction{
		ID:              uuid.NewString(),
		Event:           cand.event.ID,
		Author:          cand.doc.Author,
		Claims:          resp.Claims,
		TemporalDetails: resp.TemporalDetails,
		Tone:            resp.Tone,
		KeyQuotes:       resp.KeyQuotes,
		SourceChunk:     cand.chunk.Ref(),
		SourceDocument:  cand.doc.Title,
	}}
}
