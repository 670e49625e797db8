package stats

import (
	"fmt"
	"math"
)

// kappaBand maps a 0-100 score into the fixed categorical bands used for
// inter-rater agreement: 0-25, 26-50, 51-75, 76-100 (inclusive upper
// bounds)
func kappaBand(score int) int {
	switch {
	case score <= 25:
		return 0
	case score <= 50:
		return 1
	case score <= 75:
		return 2
	default:
		return 3
	}
}

// CohensKappa computes chance-corrected categorical agreement between two
// raters over the fixed score bands: kappa = (p_o - p_e) / (1 - p_e),
// where p_o is the observed agreement proportion and p_e the expected
// agreement under independence given each rater's marginal distribution.
func CohensKappa(a, b []int) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("rating sets differ in length: %d vs %d", len(a), len(b))
	}
	if len(a) < 2 {
		return 0, fmt.Errorf("%w: kappa needs at least 2 rated items, have %d", ErrInsufficientData, len(a))
	}

	n := float64(len(a))
	var observed float64
	var marginA, marginB [4]float64
	for i := range a {
		ca, cb := kappaBand(a[i]), kappaBand(b[i])
		if ca == cb {
			observed++
		}
		marginA[ca]++
		marginB[cb]++
	}

	po := observed / n
	var pe float64
	for c := 0; c < 4; c++ {
		pe += (marginA[c] / n) * (marginB[c] / n)
	}

	// Both raters used a single identical category everywhere; chance
	// agreement is certain and so is observed agreement
	if pe == 1 {
		return 1.0, nil
	}
	return (po - pe) / (1 - pe), nil
}

// PearsonCorrelation computes the linear correlation of two score
// sequences. Requires at least 2 points and nonzero spread on both sides.
func PearsonCorrelation(a, b []int) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("score sets differ in length: %d vs %d", len(a), len(b))
	}
	if len(a) < 2 {
		return 0, fmt.Errorf("%w: correlation needs at least 2 points, have %d", ErrInsufficientData, len(a))
	}

	meanA, _ := Mean(a)
	meanB, _ := Mean(b)

	var cov, varA, varB float64
	for i := range a {
		da := float64(a[i]) - meanA
		db := float64(b[i]) - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0, fmt.Errorf("%w: correlation undefined for constant scores", ErrInsufficientData)
	}
	return cov / math.Sqrt(varA*varB), nil
}

// MeanAbsoluteDifference computes the mean absolute difference between
// paired scores
func MeanAbsoluteDifference(a, b []int) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("score sets differ in length: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("%w: no paired scores", ErrInsufficientData)
	}
	var sum float64
	for i := range a {
		sum += math.Abs(float64(a[i]) - float64(b[i]))
	}
	return sum / float64(len(a)), nil
}
