package pipeline

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/athorburn/concordia/internal/model"
	"github.com/athorburn/concordia/internal/stats"
)

// ReportData is everything the renderer needs. Experiment fields are nil
// when that experiment has not run.
type ReportData struct {
	RunID           string
	Results         []model.JudgeResult
	Robustness      *model.PromptRobustnessResult
	SelfConsistency *model.SelfConsistencyResult
	Alignment       *model.HumanAlignmentResult
}

// Renderer writes the markdown validation report. It is a pure consumer of
// the statistics engine; nothing here feeds back into scoring.
type Renderer struct {
	now func() time.Time
}

// NewRenderer creates a renderer
func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// Render writes the report to path
func (r *Renderer) Render(data ReportData, path string) error {
	md, err := r.Markdown(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(md), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Markdown renders the report body
func (r *Renderer) Markdown(data ReportData) (string, error) {
	var b strings.Builder

	b.WriteString("# Historical Consistency Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", r.now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Run: `%s`\n\n", data.RunID)

	if err := r.writeScores(&b, data.Results); err != nil {
		return "", err
	}
	r.writeContradictions(&b, data.Results)
	r.writePerEvent(&b, data.Results)

	if data.Robustness != nil {
		r.writeRobustness(&b, data.Robustness)
	}
	if data.SelfConsistency != nil {
		r.writeSelfConsistency(&b, data.SelfConsistency)
	}
	if data.Alignment != nil {
		r.writeAlignment(&b, data.Alignment)
	}

	return b.String(), nil
}

func (r *Renderer) writeScores(b *strings.Builder, results []model.JudgeResult) error {
	scores := stats.Scores(results)
	described, err := stats.Describe(scores)
	if err != nil {
		return fmt.Errorf("describe scores: %w", err)
	}

	b.WriteString("## Consistency Scores\n\n")
	fmt.Fprintf(b, "- Pairs judged: %d\n", described.Count)
	fmt.Fprintf(b, "- Mean: %.1f\n", described.Mean)
	fmt.Fprintf(b, "- Std dev: %.2f\n", described.StdDev)
	fmt.Fprintf(b, "- Range: %d to %d\n\n", described.Min, described.Max)

	b.WriteString("| Score band | Pairs |\n|---|---|\n")
	for _, bucket := range stats.HistogramOf(scores) {
		fmt.Fprintf(b, "| %d-%d | %d |\n", bucket.Low, bucket.High, bucket.Count)
	}
	b.WriteString("\n")
	return nil
}

func (r *Renderer) writeContradictions(b *strings.Builder, results []model.JudgeResult) {
	dist := stats.ContradictionDistribution(results)

	b.WriteString("## Contradiction Types\n\n")
	b.WriteString("| Type | Pairs |\n|---|---|\n")
	for _, t := range []model.ContradictionType{
		model.ContradictionNone,
		model.ContradictionFactual,
		model.ContradictionInterpretive,
		model.ContradictionOmission,
	} {
		fmt.Fprintf(b, "| %s | %d |\n", t, dist[t])
	}
	b.WriteString("\n")
}

func (r *Renderer) writePerEvent(b *strings.Builder, results []model.JudgeResult) {
	byEvent := make(map[model.EventID][]model.JudgeResult)
	for _, res := range results {
		byEvent[res.EventID] = append(byEvent[res.EventID], res)
	}

	b.WriteString("## Per-Event Results\n\n")
	b.WriteString("| Event | Other author | Score | Contradiction |\n|---|---|---|---|\n")
	for _, event := range model.Events() {
		rows := byEvent[event.ID]
		sort.Slice(rows, func(i, j int) bool { return rows[i].OtherAuthor < rows[j].OtherAuthor })
		for _, row := range rows {
			fmt.Fprintf(b, "| %s | %s | %d | %s |\n",
				event.Name, row.OtherAuthor, row.ConsistencyScore, row.Contradiction)
		}
	}
	b.WriteString("\n")
}

func (r *Renderer) writeRobustness(b *strings.Builder, result *model.PromptRobustnessResult) {
	b.WriteString("## Experiment 1: Prompt Robustness\n\n")
	fmt.Fprintf(b, "Overall mean across strategies: %.1f\n\n", result.OverallMean)
	b.WriteString("| Strategy | Mean | Std dev | N |\n|---|---|---|---|\n")
	for _, strategy := range result.StabilityRanking {
		s := result.PerStrategy[strategy]
		fmt.Fprintf(b, "| %s | %.1f | %.2f | %d |\n", strategy, s.Mean, s.StdDev, s.Count)
	}
	fmt.Fprintf(b, "\nMost stable strategy: **%s**\n\n", result.StabilityRanking[0])
}

func (r *Renderer) writeSelfConsistency(b *strings.Builder, result *model.SelfConsistencyResult) {
	b.WriteString("## Experiment 2: Self-Consistency\n\n")
	fmt.Fprintf(b, "- Runs per pair: %d\n", result.RunsPerPair)
	fmt.Fprintf(b, "- Mean per-pair std dev: %.2f\n", result.AggregateMeanStdDev)
	fmt.Fprintf(b, "- Mean per-pair range: %.1f\n", result.AggregateMeanRange)
	fmt.Fprintf(b, "- Reliability: **%s**\n\n", result.Reliability)

	pairIDs := make([]string, 0, len(result.PerPair))
	for id := range result.PerPair {
		pairIDs = append(pairIDs, id)
	}
	sort.Strings(pairIDs)

	b.WriteString("| Pair | Mean | Std dev | Range |\n|---|---|---|---|\n")
	for _, id := range pairIDs {
		pc := result.PerPair[id]
		fmt.Fprintf(b, "| %s | %.1f | %.2f | %d |\n", id, pc.Mean, pc.StdDev, pc.Range)
	}
	b.WriteString("\n")
}

func (r *Renderer) writeAlignment(b *strings.Builder, result *model.HumanAlignmentResult) {
	b.WriteString("## Experiment 3: Human Alignment\n\n")
	fmt.Fprintf(b, "- Labeled pairs used: %d\n", result.SampleSize)
	fmt.Fprintf(b, "- Cohen's kappa: %.3f\n", result.CohensKappa)
	fmt.Fprintf(b, "- Mean absolute difference: %.2f\n", result.MeanAbsoluteDifference)
	fmt.Fprintf(b, "- Pearson correlation: %.3f\n\n", result.PearsonCorrelation)
}
