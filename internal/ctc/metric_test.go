package ctc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/platecrnn/internal/tensor"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		name string
		a, b []int
		want int
	}{
		{"identical", []int{1, 2, 3}, []int{1, 2, 3}, 0},
		{"empty vs full", nil, []int{1, 2, 3}, 3},
		{"full vs empty", []int{1, 2}, nil, 2},
		{"substitution", []int{1, 2, 3}, []int{1, 9, 3}, 1},
		{"insertion", []int{1, 3}, []int{1, 2, 3}, 1},
		{"mixed", []int{4, 1, 2, 2, 5}, []int{1, 2, 3}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
		})
	}
}

func TestCERMetric_IdenticalSequences(t *testing.T) {
	m := NewCERMetric()
	m.AddPair([]int{1, 2, 3}, []int{1, 2, 3})
	assert.Zero(t, m.Distance())
	assert.InDelta(t, 0.0, m.Result(), 1e-9)
}

func TestCERMetric_EmptyPrediction(t *testing.T) {
	// A fully-blank decode contributes its full true length.
	m := NewCERMetric()
	m.AddPair(nil, []int{1, 2, 3})
	assert.Equal(t, 3, m.Distance())
	assert.Equal(t, 3, m.Chars())
	assert.InDelta(t, 1.0, m.Result(), 1e-9)
}

func TestCERMetric_ZeroChars(t *testing.T) {
	m := NewCERMetric()
	assert.InDelta(t, 1.0, m.Result(), 1e-9)

	m.AddPair([]int{1, 2}, nil)
	// Still no true characters: defined as maximal error, not a failure.
	assert.InDelta(t, 1.0, m.Result(), 1e-9)
}

func TestCERMetric_AccumulatesAcrossBatches(t *testing.T) {
	m := NewCERMetric()
	m.AddPair([]int{1, 2, 3}, []int{1, 2, 3}) // distance 0, 3 chars
	m.AddPair(nil, []int{1, 2, 3})            // distance 3, 3 chars
	assert.InDelta(t, 0.5, m.Result(), 1e-9)

	// Running sums, not an average of per-batch ratios: a third batch with
	// one long wrong label shifts the result toward its length.
	m.AddPair(nil, []int{1, 2, 3, 4, 5, 6})
	assert.InDelta(t, 9.0/12.0, m.Result(), 1e-9)

	m.Reset()
	assert.Zero(t, m.Distance())
	assert.Zero(t, m.Chars())
	assert.InDelta(t, 1.0, m.Result(), 1e-9)
}

func TestCERMetric_Update(t *testing.T) {
	// [N=2, T=3, C=3]: sample 0 decodes to [1,2], sample 1 to [1].
	probs, err := tensor.FromData([]float32{
		0.1, 0.8, 0.1,
		0.9, 0.05, 0.05,
		0.1, 0.1, 0.8,

		0.1, 0.8, 0.1,
		0.2, 0.7, 0.1,
		0.9, 0.05, 0.05,
	}, 2, 3, 3)
	require.NoError(t, err)

	labels := [][]int{
		{1, 2, 0, 0}, // true [1,2]
		{1, 2, 0, 0}, // true [1,2], predicted [1] -> distance 1
	}
	m := NewCERMetric()
	require.NoError(t, m.Update(probs, labels, []int{3, 3}, []int{2, 2}))
	assert.Equal(t, 1, m.Distance())
	assert.Equal(t, 4, m.Chars())
	assert.InDelta(t, 0.25, m.Result(), 1e-9)
}

func TestCERMetric_UpdateErrors(t *testing.T) {
	probs, err := tensor.FromData(make([]float32, 6), 1, 2, 3)
	require.NoError(t, err)

	m := NewCERMetric()
	require.Error(t, m.Update(probs, [][]int{{1}, {2}}, []int{2}, []int{1, 1}))
	require.Error(t, m.Update(probs, [][]int{{1}}, []int{2}, []int{4}))
}
