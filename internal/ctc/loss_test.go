package ctc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/platecrnn/internal/tensor"
)

func TestLoss_PerfectPrediction(t *testing.T) {
	// [N=1, T=2, C=2]: class 1 certain at every step; target [1].
	probs, err := tensor.FromData([]float32{
		0, 1,
		0, 1,
	}, 1, 2, 2)
	require.NoError(t, err)

	loss, perSample, err := Loss(probs, [][]int{{1}}, []int{2}, []int{1}, Blank)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, loss, 1e-6)
	require.Len(t, perSample, 1)
	assert.InDelta(t, 0.0, perSample[0], 1e-6)
}

func TestLoss_UniformDistributions(t *testing.T) {
	// Uniform over {blank, 1} with T=2, target [1]. Valid alignments are
	// (1,1), (blank,1), (1,blank), each with probability 0.25, so
	// p = 0.75 and loss = -ln(0.75).
	probs, err := tensor.FromData([]float32{
		0.5, 0.5,
		0.5, 0.5,
	}, 1, 2, 2)
	require.NoError(t, err)

	loss, _, err := Loss(probs, [][]int{{1}}, []int{2}, []int{1}, Blank)
	require.NoError(t, err)
	assert.InDelta(t, -math.Log(0.75), loss, 1e-6)
}

func TestLoss_RepeatedCharacterNeedsBlank(t *testing.T) {
	// Target [1,1] with T=3: the only valid alignment is (1, blank, 1),
	// so under uniform distributions p = 0.5^3.
	probs, err := tensor.FromData([]float32{
		0.5, 0.5,
		0.5, 0.5,
		0.5, 0.5,
	}, 1, 3, 2)
	require.NoError(t, err)

	loss, _, err := Loss(probs, [][]int{{1, 1}}, []int{3}, []int{2}, Blank)
	require.NoError(t, err)
	assert.InDelta(t, -math.Log(0.125), loss, 1e-6)
}

func TestLoss_IgnoresLabelPadding(t *testing.T) {
	probs, err := tensor.FromData([]float32{
		0, 1,
		0, 1,
	}, 1, 2, 2)
	require.NoError(t, err)

	// Dense label padded with blanks past the true length.
	loss, _, err := Loss(probs, [][]int{{1, 0, 0, 0}}, []int{2}, []int{1}, Blank)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, loss, 1e-6)
}

func TestLoss_MeanOverBatch(t *testing.T) {
	single, err := tensor.FromData([]float32{
		0.5, 0.5,
		0.5, 0.5,
	}, 1, 2, 2)
	require.NoError(t, err)
	double, err := tensor.FromData([]float32{
		0.5, 0.5,
		0.5, 0.5,
		0.5, 0.5,
		0.5, 0.5,
	}, 2, 2, 2)
	require.NoError(t, err)

	one, _, err := Loss(single, [][]int{{1}}, []int{2}, []int{1}, Blank)
	require.NoError(t, err)
	two, perSample, err := Loss(double, [][]int{{1}, {1}}, []int{2, 2}, []int{1, 1}, Blank)
	require.NoError(t, err)
	assert.InDelta(t, one, two, 1e-9)
	require.Len(t, perSample, 2)
	assert.InDelta(t, perSample[0], perSample[1], 1e-9)
}

func TestLoss_BetterAlignmentScoresLower(t *testing.T) {
	aligned, err := tensor.FromData([]float32{
		0.1, 0.9,
		0.9, 0.1,
	}, 1, 2, 2)
	require.NoError(t, err)
	misaligned, err := tensor.FromData([]float32{
		0.9, 0.1,
		0.9, 0.1,
	}, 1, 2, 2)
	require.NoError(t, err)

	good, _, err := Loss(aligned, [][]int{{1}}, []int{2}, []int{1}, Blank)
	require.NoError(t, err)
	bad, _, err := Loss(misaligned, [][]int{{1}}, []int{2}, []int{1}, Blank)
	require.NoError(t, err)
	assert.Less(t, good, bad)
}

func TestLoss_Errors(t *testing.T) {
	probs, err := tensor.FromData([]float32{
		0.5, 0.5,
		0.5, 0.5,
	}, 1, 2, 2)
	require.NoError(t, err)

	tests := []struct {
		name      string
		labels    [][]int
		inputLens []int
		labelLens []int
	}{
		{"label len >= input len", [][]int{{1, 1}}, []int{2}, []int{2}},
		{"input len too large", [][]int{{1}}, []int{3}, []int{1}},
		{"input len zero", [][]int{{1}}, []int{0}, []int{0}},
		{"blank in label", [][]int{{0}}, []int{2}, []int{1}},
		{"code out of range", [][]int{{5}}, []int{2}, []int{1}},
		{"batch mismatch", [][]int{{1}, {1}}, []int{2}, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Loss(probs, tt.labels, tt.inputLens, tt.labelLens, Blank)
			require.Error(t, err)
		})
	}
}
