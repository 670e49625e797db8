package compare

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/athorburn/concordia/internal/extract"
	"github.com/athorburn/concordia/internal/llm"
	"github.com/athorburn/concordia/internal/model"
	"github.com/athorburn/concordia/internal/worker"
)

// judgeResponse is the schema the judge call must satisfy
type judgeResponse struct {
	ConsistencyScore int                     `json:"consistency_score"`
	Contradiction    model.ContradictionType `json:"contradiction_type"`
	Reasoning        string                  `json:"reasoning"`
	KeyDifferences   []string                `json:"key_differences"`
	KeySimilarities  []string                `json:"key_similarities"`
}

// Validate enforces the score range and contradiction enum. An out-of-range
// score is a schema violation to be retried with feedback, never clamped.
func (r *judgeResponse) Validate() error {
	if r.ConsistencyScore < 0 || r.ConsistencyScore > 100 {
		return fmt.Errorf("consistency_score %d outside [0,100]", r.ConsistencyScore)
	}
	if !model.ValidContradictionType(r.Contradiction) {
		return fmt.Errorf("contradiction_type %q is not one of Factual, Interpretive, Omission, None", r.Contradiction)
	}
	if r.Reasoning == "" {
		return fmt.Errorf("reasoning is required")
	}
	return nil
}

// Judge scores pairwise consistency between extractions. Stateless across
// calls; the prompt strategy and temperature are explicit inputs, and any
// non-determinism comes from the generation layer.
type Judge struct {
	provider    llm.Provider
	workers     int
	maxAttempts int
	logger      *zap.Logger
}

// NewJudge creates a judge
func NewJudge(provider llm.Provider, workers, maxAttempts int, logger *zap.Logger) *Judge {
	if workers <= 0 {
		workers = 3
	}
	return &Judge{
		provider:    provider,
		workers:     workers,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Options configure one batch of judge calls. A zero Temperature defers to
// the provider's configured default.
type Options struct {
	Strategy    model.PromptStrategy
	Temperature float32
}

// Run judges every pair not already present in prior. Returns prior plus
// new results, and the pairs that permanently failed. A per-pair failure is
// logged and skipped; it never aborts the batch.
func (j *Judge) Run(ctx context.Context, pairs []model.ComparisonPair, prior []model.JudgeResult, opts Options) ([]model.JudgeResult, []extract.FailedItem) {
	if opts.Strategy == "" {
		opts.Strategy = model.StrategyZeroShot
	}

	done := make(map[string]bool, len(prior))
	for _, r := range prior {
		done[r.PairID] = true
	}

	var todo []model.ComparisonPair
	for _, p := range pairs {
		if !done[p.ID()] {
			todo = append(todo, p)
		}
	}

	j.logger.Info("judging pairs",
		zap.Int("pairs", len(todo)),
		zap.Int("resumed", len(prior)),
		zap.String("strategy", string(opts.Strategy)))

	type outcome struct {
		result  *model.JudgeResult
		failure *extract.FailedItem
	}

	outcomes := worker.Run(ctx, j.workers, todo, func(ctx context.Context, pair model.ComparisonPair) outcome {
		result, err := j.JudgePair(ctx, pair, opts)
		if err != nil {
			j.logger.Warn("judge call failed",
				zap.String("pair", pair.ID()),
				zap.Error(err))
			return outcome{failure: &extract.FailedItem{
				Item:  pair.ID(),
				Event: string(pair.EventID),
				Err:   err.Error(),
			}}
		}
		return outcome{result: result}
	})

	results := append([]model.JudgeResult(nil), prior...)
	var failures []extract.FailedItem
	for _, o := range outcomes {
		if o.result != nil {
			results = append(results, *o.result)
		}
		if o.failure != nil {
			failures = append(failures, *o.failure)
		}
	}

	if len(failures) > 0 {
		j.logger.Warn("judging completed with permanent failures", zap.Int("failed", len(failures)))
	}
	return results, failures
}

// JudgePair issues one schema-constrained comparison call
func (j *Judge) JudgePair(ctx context.Context, pair model.ComparisonPair, opts Options) (*model.JudgeResult, error) {
	if opts.Strategy == "" {
		opts.Strategy = model.StrategyZeroShot
	}
	if opts.Temperature == 0 {
		opts.Temperature = -1
	}

	req := llm.Request{
		System:      llm.JudgeSystem,
		Prompt:      llm.BuildJudgePrompt(pair, opts.Strategy),
		Temperature: opts.Temperature,
	}

	var resp judgeResponse
	if err := llm.CallStructured(ctx, j.provider, req, j.maxAttempts, &resp, j.logger); err != nil {
		return nil, err
	}

	return &model.JudgeResult{
		PairID:           pair.ID(),
		EventID:          pair.EventID,
		OtherAuthor:      pair.OtherAuthor,
		ConsistencyScore: resp.ConsistencyScore,
		Contradiction:    resp.Contradiction,
		Reasoning:        resp.Reasoning,
		KeyDifferences:   resp.KeyDifferences,
		KeySimilarities:  resp.KeySimilarities,
		Strategy:         opts.Strategy,
	}, nil
}
