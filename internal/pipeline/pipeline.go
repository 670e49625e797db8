package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/athorburn/concordia/internal/cache"
	"github.com/athorburn/concordia/internal/chunk"
	"github.com/athorburn/concordia/internal/compare"
	"github.com/athorburn/concordia/internal/extract"
	"github.com/athorburn/concordia/internal/fetch"
	"github.com/athorburn/concordia/internal/llm"
	"github.com/athorburn/concordia/internal/model"
	"github.com/athorburn/concordia/internal/stats"
	"github.com/athorburn/concordia/internal/store"
	"github.com/athorburn/concordia/internal/util"
	"github.com/athorburn/concordia/internal/worker"
)

// Pipeline orchestrates the three stages: acquisition, extraction, and
// judging, plus the validation experiments over the judge's output. Every
// stage persists its full result set before the next stage starts, so a
// failed or interrupted run resumes from the last completed stage.
type Pipeline struct {
	config    *model.Config
	store     *store.Store
	provider  llm.Provider
	gutenberg *fetch.GutenbergScraper
	loc       *fetch.LoCScraper
	extractor *extract.Extractor
	judge     *compare.Judge
	renderer  *Renderer
	runID     string
	logger    *zap.Logger
}

// New creates a pipeline from configuration. The LLM provider is only
// required for the extraction, judging, and validation stages; acquisition
// works without one.
func New(cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var fetchCache cache.Cache
	if cfg.Cache.Enabled {
		fetchCache = cache.NewLayeredCache(30*time.Minute, cfg.Cache.Dir, cfg.Cache.TTL)
	}
	fetcher := fetch.New(fetch.Options{
		Timeout:      cfg.HTTP.Timeout,
		UserAgent:    cfg.HTTP.UserAgent,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		Robots:       util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout),
		Limiter:      worker.NewLimiter(cfg.HTTP.RequestsPerSecond, 1),
		Cache:        fetchCache,
		CacheTTL:     cfg.Cache.TTL,
		Logger:       logger,
	})

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	chunker := chunk.NewChunker(cfg.Chunk.TokenBudget, cfg.Chunk.Overlap)
	filter := chunk.NewKeywordFilter(model.Events())

	return &Pipeline{
		config:    cfg,
		store:     store.New(cfg.Data.Dir),
		provider:  provider,
		gutenberg: fetch.NewGutenbergScraper(fetcher, logger),
		loc:       fetch.NewLoCScraper(fetcher, logger),
		extractor: extract.NewExtractor(provider, chunker, filter,
			cfg.Concurrency.ExtractionWorkers, cfg.LLM.MaxRetries, logger),
		judge: compare.NewJudge(provider,
			cfg.Concurrency.JudgeWorkers, cfg.LLM.MaxRetries, logger),
		renderer: NewRenderer(),
		runID:    uuid.NewString(),
		logger:   logger,
	}, nil
}

// Acquire downloads and normalizes the corpus from both sources. An
// existing documents artifact is returned as-is; delete it to force a
// re-scrape. Individual documents that cannot be acquired are skipped and
// logged, never fatal; acquiring nothing at all is fatal.
func (p *Pipeline) Acquire(ctx context.Context) ([]model.NormalizedDocument, error) {
	var docs []model.NormalizedDocument
	err := p.store.Load(store.StageDocuments, &docs)
	if err == nil {
		p.logger.Info("documents already acquired",
			zap.Int("documents", len(docs)), zap.String("run_id", p.runID))
		return docs, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	p.logger.Info("acquiring corpus", zap.String("run_id", p.runID))

	books, skippedBooks := p.gutenberg.ScrapeAll(ctx, fetch.DefaultGutenbergBooks)
	locDocs, skippedLoC := p.loc.ScrapeAll(ctx, fetch.DefaultLoCDocuments)
	docs = append(books, locDocs...)

	if len(docs) == 0 {
		return nil, fmt.Errorf("acquisition produced no documents (%d books and %d loc items skipped)",
			len(skippedBooks), len(skippedLoC))
	}
	for _, id := range skippedBooks {
		p.logger.Warn("gutenberg book skipped", zap.String("book_id", id))
	}
	for _, u := range skippedLoC {
		p.logger.Warn("loc document skipped", zap.String("url", u))
	}

	if err := p.store.Save(store.StageDocuments, docs); err != nil {
		return nil, fmt.Errorf("save documents: %w", err)
	}
	p.logger.Info("acquisition complete",
		zap.Int("documents", len(docs)),
		zap.Int("gutenberg", len(books)),
		zap.Int("loc", len(locDocs)))
	return docs, nil
}

// Extract runs LLM event extraction over all acquired documents, then
// aggregates the per-chunk extractions into one canonical account per
// (event, author). Previously extracted chunk/event items are skipped, so
// a re-run only pays for work not yet done.
func (p *Pipeline) Extract(ctx context.Context) ([]model.EventExtraction, error) {
	var docs []model.NormalizedDocument
	if err := p.store.Load(store.StageDocuments, &docs); err != nil {
		return nil, fmt.Errorf("load documents (run acquire first): %w", err)
	}

	var prior []model.EventExtraction
	if err := p.store.Load(store.StageExtractions, &prior); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load prior extractions: %w", err)
	}

	extractions, failures := p.extractor.Run(ctx, docs, prior)
	if err := p.store.Save(store.StageExtractions, extractions); err != nil {
		return nil, fmt.Errorf("save extractions: %w", err)
	}
	for _, f := range failures {
		p.logger.Warn("extraction item failed permanently",
			zap.String("item", f.Item), zap.String("event", f.Event), zap.String("error", f.Err))
	}

	aggregated := extract.Aggregate(extractions)
	if err := p.store.Save(store.StageAggregated, aggregated); err != nil {
		return nil, fmt.Errorf("save aggregated extractions: %w", err)
	}

	p.logger.Info("extraction complete",
		zap.Int("extractions", len(extractions)),
		zap.Int("aggregated", len(aggregated)),
		zap.Int("failed", len(failures)))
	return aggregated, nil
}

// Judge builds the comparison pairs from the aggregated extractions and
// scores every pair not already judged
func (p *Pipeline) Judge(ctx context.Context) ([]model.JudgeResult, error) {
	var aggregated []model.EventExtraction
	if err := p.store.Load(store.StageAggregated, &aggregated); err != nil {
		return nil, fmt.Errorf("load aggregated extractions (run extract first): %w", err)
	}

	pairs := compare.BuildPairs(aggregated)
	if err := p.store.Save(store.StagePairs, pairs); err != nil {
		return nil, fmt.Errorf("save pairs: %w", err)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no comparison pairs: need a Lincoln account and at least one other account of the same event")
	}

	var prior []model.JudgeResult
	if err := p.store.Load(store.StageJudgeResults, &prior); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load prior judge results: %w", err)
	}

	results, failures := p.judge.Run(ctx, pairs, prior, compare.Options{
		Strategy: model.StrategyZeroShot,
	})
	if err := p.store.Save(store.StageJudgeResults, results); err != nil {
		return nil, fmt.Errorf("save judge results: %w", err)
	}

	p.logger.Info("judging complete",
		zap.Int("pairs", len(pairs)),
		zap.Int("results", len(results)),
		zap.Int("failed", len(failures)))
	return results, nil
}

// ValidationOutcome bundles the three experiment results. Alignment is nil
// when the manual labels are still unlabeled; the other two always run.
type ValidationOutcome struct {
	Robustness      model.PromptRobustnessResult `json:"prompt_robustness"`
	SelfConsistency model.SelfConsistencyResult  `json:"self_consistency"`
	Alignment       *model.HumanAlignmentResult  `json:"human_alignment,omitempty"`
}

// Validate runs the three validation experiments over a sample of judged
// pairs. The sample is the first SampleSize pairs in deterministic pair
// order, so repeated runs measure the same thing.
func (p *Pipeline) Validate(ctx context.Context) (*ValidationOutcome, error) {
	var pairs []model.ComparisonPair
	if err := p.store.Load(store.StagePairs, &pairs); err != nil {
		return nil, fmt.Errorf("load pairs (run judge first): %w", err)
	}
	var results []model.JudgeResult
	if err := p.store.Load(store.StageJudgeResults, &results); err != nil {
		return nil, fmt.Errorf("load judge results (run judge first): %w", err)
	}

	sample := pairs
	if len(sample) > p.config.Validation.SampleSize {
		sample = sample[:p.config.Validation.SampleSize]
	}
	p.logger.Info("running validation experiments",
		zap.Int("sample_pairs", len(sample)), zap.String("run_id", p.runID))

	robustness, err := p.promptRobustness(ctx, sample)
	if err != nil {
		return nil, fmt.Errorf("prompt robustness: %w", err)
	}
	if err := p.store.Save(store.ExperimentPromptRobustness, robustness); err != nil {
		return nil, fmt.Errorf("save prompt robustness: %w", err)
	}

	selfConsistency, err := p.selfConsistency(ctx, sample)
	if err != nil {
		return nil, fmt.Errorf("self consistency: %w", err)
	}
	if err := p.store.Save(store.ExperimentSelfConsistency, selfConsistency); err != nil {
		return nil, fmt.Errorf("save self consistency: %w", err)
	}

	alignment, err := p.humanAlignment(sample, results)
	if err != nil {
		return nil, fmt.Errorf("human alignment: %w", err)
	}
	if alignment != nil {
		if err := p.store.Save(store.ExperimentHumanAlignment, alignment); err != nil {
			return nil, fmt.Errorf("save human alignment: %w", err)
		}
	}

	return &ValidationOutcome{
		Robustness:      robustness,
		SelfConsistency: selfConsistency,
		Alignment:       alignment,
	}, nil
}

// promptRobustness judges the sample once per prompt strategy and compares
// score stability across strategies
func (p *Pipeline) promptRobustness(ctx context.Context, sample []model.ComparisonPair) (model.PromptRobustnessResult, error) {
	scoresByStrategy := make(map[model.PromptStrategy][]int, 3)
	for _, strategy := range model.Strategies() {
		p.logger.Info("robustness pass", zap.String("strategy", string(strategy)))
		results, failures := p.judge.Run(ctx, sample, nil, compare.Options{Strategy: strategy})
		if len(failures) > 0 {
			p.logger.Warn("robustness pass had failures",
				zap.String("strategy", string(strategy)), zap.Int("failed", len(failures)))
		}
		scoresByStrategy[strategy] = stats.Scores(results)
	}
	return stats.PromptRobustness(scoresByStrategy)
}

// selfConsistency re-judges every sampled pair several times at elevated
// temperature and measures per-pair score spread
func (p *Pipeline) selfConsistency(ctx context.Context, sample []model.ComparisonPair) (model.SelfConsistencyResult, error) {
	runs := p.config.Validation.SelfConsistencyRuns
	temp := p.config.Validation.SelfConsistencyTemperature

	runsByPair := make(map[string][]int, len(sample))
	for _, pair := range sample {
		for run := 0; run < runs; run++ {
			result, err := p.judge.JudgePair(ctx, pair, compare.Options{
				Strategy:    model.StrategyZeroShot,
				Temperature: temp,
			})
			if err != nil {
				p.logger.Warn("self-consistency run failed",
					zap.String("pair", pair.ID()), zap.Int("run", run+1), zap.Error(err))
				continue
			}
			runsByPair[pair.ID()] = append(runsByPair[pair.ID()], result.ConsistencyScore)
		}
		if len(runsByPair[pair.ID()]) < 2 {
			return model.SelfConsistencyResult{}, fmt.Errorf(
				"pair %s: only %d of %d runs succeeded", pair.ID(), len(runsByPair[pair.ID()]), runs)
		}
	}
	return stats.SelfConsistency(runsByPair)
}

// humanAlignment compares judge scores against manual labels. When no
// label file exists yet, a template is written for the rater to fill in
// and the experiment is deferred (nil result, no error).
func (p *Pipeline) humanAlignment(sample []model.ComparisonPair, results []model.JudgeResult) (*model.HumanAlignmentResult, error) {
	var labels []model.HumanLabel
	err := p.store.Load(store.StageManualLabels, &labels)
	if errors.Is(err, store.ErrNotFound) {
		labels = labelTemplate(sample)
		if err := p.store.Save(store.StageManualLabels, labels); err != nil {
			return nil, fmt.Errorf("write label template: %w", err)
		}
		p.logger.Info("manual label template created; fill in consistency_score and re-run validate",
			zap.String("stage", store.StageManualLabels), zap.Int("pairs", len(labels)))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load manual labels: %w", err)
	}

	judgeScores := make(map[string]int, len(results))
	for _, r := range results {
		judgeScores[r.PairID] = r.ConsistencyScore
	}

	alignment, err := stats.HumanAlignment(labels, judgeScores)
	if err != nil {
		if errors.Is(err, stats.ErrInsufficientData) {
			p.logger.Warn("not enough labeled pairs for the alignment experiment", zap.Error(err))
			return nil, nil
		}
		return nil, err
	}
	return &alignment, nil
}

// labelTemplate creates an unlabeled entry per sampled pair
func labelTemplate(sample []model.ComparisonPair) []model.HumanLabel {
	labels := make([]model.HumanLabel, len(sample))
	for i, pair := range sample {
		labels[i] = model.HumanLabel{
			PairID:    pair.ID(),
			EventName: pair.EventName,
		}
	}
	return labels
}

// Report renders the markdown report from whatever stage artifacts exist.
// Judge results are required; experiment sections appear only for
// experiments that have run.
func (p *Pipeline) Report(outPath string) error {
	var results []model.JudgeResult
	if err := p.store.Load(store.StageJudgeResults, &results); err != nil {
		return fmt.Errorf("load judge results (run judge first): %w", err)
	}

	data := ReportData{RunID: p.runID, Results: results}

	var robustness model.PromptRobustnessResult
	if err := p.store.Load(store.ExperimentPromptRobustness, &robustness); err == nil {
		data.Robustness = &robustness
	}
	var selfConsistency model.SelfConsistencyResult
	if err := p.store.Load(store.ExperimentSelfConsistency, &selfConsistency); err == nil {
		data.SelfConsistency = &selfConsistency
	}
	var alignment model.HumanAlignmentResult
	if err := p.store.Load(store.ExperimentHumanAlignment, &alignment); err == nil {
		data.Alignment = &alignment
	}

	if err := p.renderer.Render(data, outPath); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	p.logger.Info("report written", zap.String("path", outPath))
	return nil
}
