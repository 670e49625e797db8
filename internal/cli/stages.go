package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/athorburn/concordia/internal/pipeline"
)

var (
	stageTimeout time.Duration
	reportPath   string
)

// acquireCmd represents the acquire command
var acquireCmd = &cobra.Command{
	Use:   "acquire",
	Short: "Download and normalize the document corpus",
	Long: `Acquire downloads the Project Gutenberg books and Library of Congress
documents, strips publisher boilerplate, and persists one normalized record
per document.

Downloads respect robots.txt and are rate limited per host. Fetched pages
are cached, and an already-acquired corpus is left untouched; delete the
documents artifact from the data directory to force a re-scrape.

Example:
  concordia acquire
  concordia acquire --data-dir ./data --no-cache`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage(func(ctx context.Context, p *pipeline.Pipeline) error {
			docs, err := p.Acquire(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Acquired %d documents\n", len(docs))
			return nil
		})
	},
}

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract per-event claims from every document",
	Long: `Extract chunks each acquired document, filters chunks by event keywords,
and issues one schema-validated LLM call per surviving (chunk, event)
candidate. Per-chunk extractions are then aggregated into one canonical
account per (event, author).

Already-extracted items are skipped on re-runs, so an interrupted
extraction resumes where it stopped.

Requires OPENAI_API_KEY (or --llm-provider mock for dry runs).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage(func(ctx context.Context, p *pipeline.Pipeline) error {
			aggregated, err := p.Extract(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Aggregated %d (event, author) accounts\n", len(aggregated))
			return nil
		})
	},
}

// judgeCmd represents the judge command
var judgeCmd = &cobra.Command{
	Use:   "judge",
	Short: "Score pairwise consistency of Lincoln vs. other authors",
	Long: `Judge pairs Lincoln's account of each event with every other author's
account of the same event and asks the LLM judge for a consistency score
(0-100), a contradiction classification, and reasoning.

Already-judged pairs are skipped on re-runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage(func(ctx context.Context, p *pipeline.Pipeline) error {
			results, err := p.Judge(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Judged %d pairs\n", len(results))
			return nil
		})
	},
}

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the statistical validation experiments",
	Long: `Validate runs three experiments over a sample of judged pairs:

1. Prompt robustness: re-judge the sample under zero-shot,
   chain-of-thought, and few-shot prompts and compare score stability.
2. Self-consistency: re-judge each sampled pair several times at elevated
   temperature and measure per-pair score spread.
3. Human alignment: compare judge scores against manual labels using
   Cohen's kappa, mean absolute difference, and Pearson correlation.

The first run writes an unlabeled manual_labels template into the data
directory; fill in the consistency scores and run validate again to get
the alignment numbers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage(func(ctx context.Context, p *pipeline.Pipeline) error {
			outcome, err := p.Validate(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Most stable prompt strategy: %s\n", outcome.Robustness.StabilityRanking[0])
			fmt.Printf("Judge reliability: %s (mean per-pair stddev %.2f)\n",
				outcome.SelfConsistency.Reliability, outcome.SelfConsistency.AggregateMeanStdDev)
			if outcome.Alignment != nil {
				fmt.Printf("Human alignment: kappa %.3f over %d labeled pairs\n",
					outcome.Alignment.CohensKappa, outcome.Alignment.SampleSize)
			} else {
				fmt.Println("Human alignment deferred: label the manual_labels file and re-run validate")
			}
			return nil
		})
	},
}

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the markdown consistency report",
	Long: `Report renders a markdown summary of the judge results: descriptive
statistics, the score histogram, the contradiction distribution, per-event
results, and whichever validation experiments have run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage(func(ctx context.Context, p *pipeline.Pipeline) error {
			if err := p.Report(reportPath); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", reportPath)
			return nil
		})
	},
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline end to end",
	Long: `Run executes acquire, extract, judge, and validate in order, then
renders the report. Stages that already completed are resumed, not
repeated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage(func(ctx context.Context, p *pipeline.Pipeline) error {
			if _, err := p.Acquire(ctx); err != nil {
				return fmt.Errorf("acquire: %w", err)
			}
			if _, err := p.Extract(ctx); err != nil {
				return fmt.Errorf("extract: %w", err)
			}
			if _, err := p.Judge(ctx); err != nil {
				return fmt.Errorf("judge: %w", err)
			}
			if _, err := p.Validate(ctx); err != nil {
				return fmt.Errorf("validate: %w", err)
			}
			if err := p.Report(reportPath); err != nil {
				return fmt.Errorf("report: %w", err)
			}
			fmt.Printf("Pipeline complete; wrote %s\n", reportPath)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(acquireCmd, extractCmd, judgeCmd, validateCmd, reportCmd, runCmd)

	rootCmd.PersistentFlags().DurationVar(&stageTimeout, "timeout", 30*time.Minute, "overall stage timeout")
	reportCmd.Flags().StringVar(&reportPath, "out", "report.md", "output markdown path")
	runCmd.Flags().StringVar(&reportPath, "out", "report.md", "output markdown path")
}

// runStage wires the pipeline and executes one stage under the timeout
func runStage(fn func(context.Context, *pipeline.Pipeline) error) error {
	p, logger, err := newPipeline()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), stageTimeout)
	defer cancel()
	return fn(ctx, p)
}
