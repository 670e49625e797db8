package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/athorburn/concordia/internal/model"
)

// Reliability bands on the aggregate mean per-pair standard deviation
const (
	reliabilityHighBelow = 3.0
	reliabilityLowAbove  = 8.0
)

// PromptRobustness ranks judge prompt strategies by score stability over
// parallel runs on the same sample. Lower standard deviation ranks first;
// ties break by mean closeness to the cross-strategy mean.
func PromptRobustness(scoresByStrategy map[model.PromptStrategy][]int) (model.PromptRobustnessResult, error) {
	if len(scoresByStrategy) == 0 {
		return model.PromptRobustnessResult{}, fmt.Errorf("%w: no strategy runs", ErrInsufficientData)
	}

	perStrategy := make(map[model.PromptStrategy]model.ScoreStats, len(scoresByStrategy))
	var all []int
	for strategy, scores := range scoresByStrategy {
		stats, err := Describe(scores)
		if err != nil {
			return model.PromptRobustnessResult{}, fmt.Errorf("strategy %s: %w", strategy, err)
		}
		perStrategy[strategy] = stats
		all = append(all, scores...)
	}
	overallMean, _ := Mean(all)

	ranking := make([]model.PromptStrategy, 0, len(perStrategy))
	for strategy := range perStrategy {
		ranking = append(ranking, strategy)
	}
	sort.Slice(ranking, func(i, j int) bool {
		si, sj := perStrategy[ranking[i]], perStrategy[ranking[j]]
		if si.StdDev != sj.StdDev {
			return si.StdDev < sj.StdDev
		}
		di := math.Abs(si.Mean - overallMean)
		dj := math.Abs(sj.Mean - overallMean)
		if di != dj {
			return di < dj
		}
		return ranking[i] < ranking[j]
	})

	return model.PromptRobustnessResult{
		PerStrategy:      perStrategy,
		StabilityRanking: ranking,
		OverallMean:      overallMean,
	}, nil
}

// SelfConsistency summarizes repeated-run score spread per pair and
// classifies the judge's reliability against the fixed bands on the
// aggregate mean standard deviation.
func SelfConsistency(runsByPair map[string][]int) (model.SelfConsistencyResult, error) {
	if len(runsByPair) == 0 {
		return model.SelfConsistencyResult{}, fmt.Errorf("%w: no repeated runs", ErrInsufficientData)
	}

	perPair := make(map[string]model.PairConsistency, len(runsByPair))
	runs := 0
	var stdDevs, ranges []float64
	for pairID, scores := range runsByPair {
		if len(scores) < 2 {
			return model.SelfConsistencyResult{}, fmt.Errorf("%w: pair %s has %d runs, need at least 2", ErrInsufficientData, pairID, len(scores))
		}
		mean, _ := Mean(scores)
		stdDev, err := SampleStdDev(scores)
		if err != nil {
			return model.SelfConsistencyResult{}, fmt.Errorf("pair %s: %w", pairID, err)
		}
		lo, hi := scores[0], scores[0]
		for _, s := range scores {
			if s < lo {
				lo = s
			}
			if s > hi {
				hi = s
			}
		}

		perPair[pairID] = model.PairConsistency{
			PairID: pairID,
			Scores: scores,
			Mean:   mean,
			StdDev: stdDev,
			Range:  hi - lo,
		}
		stdDevs = append(stdDevs, stdDev)
		ranges = append(ranges, float64(hi-lo))
		if len(scores) > runs {
			runs = len(scores)
		}
	}

	meanStdDev := meanFloat(stdDevs)
	result := model.SelfConsistencyResult{
		PerPair:             perPair,
		AggregateMeanStdDev: meanStdDev,
		AggregateMeanRange:  meanFloat(ranges),
		RunsPerPair:         runs,
	}

	switch {
	case meanStdDev < reliabilityHighBelow:
		result.Reliability = model.ReliabilityHigh
	case meanStdDev <= reliabilityLowAbove:
		result.Reliability = model.ReliabilityMedium
	default:
		result.Reliability = model.ReliabilityLow
	}
	return result, nil
}

// HumanAlignment compares judge scores with human labels over the pairs
// that have both. Sampled pairs missing a label or a judge result are
// excluded from the sample, not errors; the effective sample size actually
// used is recorded in the result.
func HumanAlignment(labels []model.HumanLabel, judgeScores map[string]int) (model.HumanAlignmentResult, error) {
	var human, machine []int
	for _, label := range labels {
		if label.ConsistencyScore == nil {
			continue
		}
		score, ok := judgeScores[label.PairID]
		if !ok {
			continue
		}
		human = append(human, *label.ConsistencyScore)
		machine = append(machine, score)
	}

	if len(human) < 2 {
		return model.HumanAlignmentResult{}, fmt.Errorf("%w: only %d labeled pairs with judge results, need at least 2", ErrInsufficientData, len(human))
	}

	kappa, err := CohensKappa(human, machine)
	if err != nil {
		return model.HumanAlignmentResult{}, fmt.Errorf("cohen's kappa: %w", err)
	}
	mad, err := MeanAbsoluteDifference(human, machine)
	if err != nil {
		return model.HumanAlignmentResult{}, fmt.Errorf("mean absolute difference: %w", err)
	}
	pearson, err := PearsonCorrelation(human, machine)
	if err != nil {
		return model.HumanAlignmentResult{}, fmt.Errorf("pearson correlation: %w", err)
	}

	return model.HumanAlignmentResult{
		CohensKappa:            kappa,
		MeanAbsoluteDifference: mad,
		PearsonCorrelation:     pearson,
		SampleSize:             len(human),
	}, nil
}

func meanFloat(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
