package ctc

import (
	"fmt"

	"github.com/MeKo-Tech/platecrnn/internal/tensor"
)

// CERMetric accumulates the character error rate over an evaluation epoch:
// the total edit distance between decoded and true sequences divided by the
// total true character count. Averaging per-batch ratios would bias the
// result for variable-length labels, so the metric keeps running sums and is
// reset at epoch boundaries.
//
// CERMetric is not safe for concurrent use.
type CERMetric struct {
	distance int
	chars    int
}

// NewCERMetric returns a zeroed accumulator.
func NewCERMetric() *CERMetric {
	return &CERMetric{}
}

// Update greedily decodes a batch of predictions and accumulates edit
// distance against the true (padding-stripped) label sequences.
func (m *CERMetric) Update(probs tensor.Tensor, labels [][]int, inputLens, labelLens []int) error {
	decoded, err := GreedyDecode(probs, inputLens, Blank)
	if err != nil {
		return err
	}
	if len(labels) != len(decoded) || len(labelLens) != len(decoded) {
		return fmt.Errorf("batch size mismatch: %d predictions, %d labels, %d label lengths",
			len(decoded), len(labels), len(labelLens))
	}
	for b := range decoded {
		lblLen := labelLens[b]
		if lblLen < 0 || lblLen > len(labels[b]) {
			return fmt.Errorf("sample %d: label length %d outside [0, %d]", b, lblLen, len(labels[b]))
		}
		m.AddPair(decoded[b].Collapsed, labels[b][:lblLen])
	}
	return nil
}

// AddPair accumulates one already-decoded prediction against a true
// (unpadded) sequence.
func (m *CERMetric) AddPair(pred, truth []int) {
	m.distance += Levenshtein(pred, truth)
	m.chars += len(truth)
}

// Result returns distance/chars, or exactly 1.0 when the window contains no
// true characters.
func (m *CERMetric) Result() float64 {
	if m.chars == 0 {
		return 1.0
	}
	return float64(m.distance) / float64(m.chars)
}

// Distance returns the accumulated edit distance.
func (m *CERMetric) Distance() int { return m.distance }

// Chars returns the accumulated true character count.
func (m *CERMetric) Chars() int { return m.chars }

// Reset zeroes the running sums for a new epoch.
func (m *CERMetric) Reset() {
	m.distance = 0
	m.chars = 0
}

// Levenshtein computes the edit distance between two code sequences using a
// two-row dynamic program.
func Levenshtein(a, b []int) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
