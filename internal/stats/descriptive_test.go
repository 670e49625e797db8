package stats

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athorburn/concordia/internal/model"
)

func TestDescribe_SingleResultSet(t *testing.T) {
	// A single judged pair reports its own score with zero spread
	stats, err := Describe([]int{85})
	require.NoError(t, err)
	assert.Equal(t, 85.0, stats.Mean)
	assert.Equal(t, 0.0, stats.StdDev)
	assert.Equal(t, 85, stats.Min)
	assert.Equal(t, 85, stats.Max)
	assert.Equal(t, 1, stats.Count)
}

func TestDescribe_SampleConvention(t *testing.T) {
	// Pins the sample (n-1) standard deviation convention
	stats, err := Describe([]int{40, 42, 38, 41, 39})
	require.NoError(t, err)
	assert.Equal(t, 40.0, stats.Mean)
	assert.InDelta(t, 1.5811, stats.StdDev, 0.0001)
	assert.InDelta(t, 2.5, stats.Variance, 0.0001)
	assert.Equal(t, 38, stats.Min)
	assert.Equal(t, 42, stats.Max)
}

func TestDescribe_EmptySetFailsLoudly(t *testing.T) {
	_, err := Describe(nil)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestSampleStdDev_RequiresTwoPoints(t *testing.T) {
	_, err := SampleStdDev([]int{50})
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = SampleVariance(nil)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestHistogramOf_BucketBoundaries(t *testing.T) {
	// Boundaries are inclusive-low/exclusive-high except the top bucket,
	// which includes 100
	h := HistogramOf([]int{0, 24, 25, 49, 50, 74, 75, 99, 100})

	assert.Equal(t, 2, h[0].Count) // 0, 24
	assert.Equal(t, 2, h[1].Count) // 25, 49
	assert.Equal(t, 2, h[2].Count) // 50, 74
	assert.Equal(t, 3, h[3].Count) // 75, 99, 100
}

func TestContradictionDistribution(t *testing.T) {
	results := []model.JudgeResult{
		{Contradiction: model.ContradictionNone},
		{Contradiction: model.ContradictionFactual},
		{Contradiction: model.ContradictionNone},
		{Contradiction: model.ContradictionOmission},
	}
	dist := ContradictionDistribution(results)
	assert.Equal(t, 2, dist[model.ContradictionNone])
	assert.Equal(t, 1, dist[model.ContradictionFactual])
	assert.Equal(t, 1, dist[model.ContradictionOmission])
	assert.Equal(t, 0, dist[model.ContradictionInterpretive])
}

func TestMean_ErrorWrapped(t *testing.T) {
	_, err := Mean(nil)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}
