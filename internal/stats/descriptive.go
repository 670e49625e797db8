package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/athorburn/concordia/internal/model"
)

// ErrInsufficientData is returned when a computation has too few inputs to
// be meaningful. A silently-wrong validation metric is worse than a visible
// failure, so nothing in this package returns 0 or NaN for degenerate
// input.
var ErrInsufficientData = errors.New("insufficient data")

// Mean returns the arithmetic mean of scores
func Mean(scores []int) (float64, error) {
	if len(scores) == 0 {
		return 0, fmt.Errorf("%w: mean of empty set", ErrInsufficientData)
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores)), nil
}

// SampleVariance returns the sample (n-1) variance of scores. Requires at
// least 2 data points.
func SampleVariance(scores []int) (float64, error) {
	if len(scores) < 2 {
		return 0, fmt.Errorf("%w: variance needs at least 2 points, have %d", ErrInsufficientData, len(scores))
	}
	mean, _ := Mean(scores)
	var ss float64
	for _, s := range scores {
		d := float64(s) - mean
		ss += d * d
	}
	return ss / float64(len(scores)-1), nil
}

// SampleStdDev returns the sample (n-1) standard deviation of scores.
// Requires at least 2 data points.
func SampleStdDev(scores []int) (float64, error) {
	v, err := SampleVariance(scores)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// Describe computes descriptive statistics over a score set. A single
// score is a legal descriptive set and reports zero spread; an empty set
// is an error.
func Describe(scores []int) (model.ScoreStats, error) {
	if len(scores) == 0 {
		return model.ScoreStats{}, fmt.Errorf("%w: describe of empty set", ErrInsufficientData)
	}

	mean, _ := Mean(scores)
	stats := model.ScoreStats{
		Mean:  mean,
		Min:   scores[0],
		Max:   scores[0],
		Count: len(scores),
	}
	for _, s := range scores {
		if s < stats.Min {
			stats.Min = s
		}
		if s > stats.Max {
			stats.Max = s
		}
	}

	if len(scores) > 1 {
		stats.Variance, _ = SampleVariance(scores)
		stats.StdDev = math.Sqrt(stats.Variance)
	}
	return stats, nil
}

// HistogramOf buckets scores into the fixed 4-band histogram over [0,100].
// Bands are inclusive-low/exclusive-high except the top band, which
// includes 100.
func HistogramOf(scores []int) model.Histogram {
	h := model.Histogram{
		{Low: 0, High: 25},
		{Low: 25, High: 50},
		{Low: 50, High: 75},
		{Low: 75, High: 100},
	}
	for _, s := range scores {
		switch {
		case s < 25:
			h[0].Count++
		case s < 50:
			h[1].Count++
		case s < 75:
			h[2].Count++
		default:
			h[3].Count++
		}
	}
	return h
}

// Scores projects the consistency scores out of a result collection
func Scores(results []model.JudgeResult) []int {
	scores := make([]int, len(results))
	for i, r := range results {
		scores[i] = r.ConsistencyScore
	}
	return scores
}

// ContradictionDistribution counts judge results per contradiction type
func ContradictionDistribution(results []model.JudgeResult) map[model.ContradictionType]int {
	dist := make(map[model.ContradictionType]int)
	for _, r := range results {
		dist[r.Contradiction]++
	}
	return dist
}
