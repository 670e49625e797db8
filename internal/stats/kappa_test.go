package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCohensKappa_SameBandsPerfectAgreement(t *testing.T) {
	// Scores land in the same band per item even though the raw numbers
	// differ, so categorical agreement is perfect
	human := []int{20, 30, 60, 80}
	machine := []int{22, 28, 58, 85}

	kappa, err := CohensKappa(human, machine)
	require.NoError(t, err)
	assert.Equal(t, 1.0, kappa)
}

func TestCohensKappa_OneBandDisagreement(t *testing.T) {
	// 24 sits in band 0-25, 26 crosses into 26-50
	human := []int{24, 30, 60, 80}
	machine := []int{26, 28, 58, 85}

	kappa, err := CohensKappa(human, machine)
	require.NoError(t, err)
	assert.Less(t, kappa, 1.0)
	assert.InDelta(t, 2.0/3.0, kappa, 0.0001)
}

func TestCohensKappa_DegenerateSingleCategory(t *testing.T) {
	// Both raters always in the top band: chance agreement is certain,
	// kappa defined as 1 instead of 0/0
	kappa, err := CohensKappa([]int{80, 90, 100}, []int{76, 88, 95})
	require.NoError(t, err)
	assert.Equal(t, 1.0, kappa)
}

func TestCohensKappa_LengthMismatch(t *testing.T) {
	_, err := CohensKappa([]int{10, 20}, []int{10})
	assert.Error(t, err)
}

func TestCohensKappa_TooFewItems(t *testing.T) {
	_, err := CohensKappa([]int{50}, []int{50})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestPearsonCorrelation(t *testing.T) {
	human := []int{20, 30, 60, 80}
	machine := []int{22, 28, 58, 85}

	r, err := PearsonCorrelation(human, machine)
	require.NoError(t, err)
	assert.Greater(t, r, 0.99)

	inverted := []int{80, 70, 40, 20} // 100 - human, a perfect reflection
	r, err = PearsonCorrelation(human, inverted)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, r, 0.0001)
}

func TestPearsonCorrelation_ConstantScores(t *testing.T) {
	_, err := PearsonCorrelation([]int{50, 50, 50}, []int{10, 20, 30})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestMeanAbsoluteDifference(t *testing.T) {
	mad, err := MeanAbsoluteDifference([]int{20, 30, 60, 80}, []int{22, 28, 58, 85})
	require.NoError(t, err)
	assert.InDelta(t, 2.75, mad, 0.0001)
}

func TestKappaBand(t *testing.T) {
	cases := map[int]int{0: 0, 25: 0, 26: 1, 50: 1, 51: 2, 75: 2, 76: 3, 100: 3}
	for score, band := range cases {
		assert.Equal(t, band, kappaBand(score), "score %d", score)
	}
}
