// Package ctc implements the sequence-alignment pieces of CTC training:
// greedy decoding, the alignment loss, and a character-error-rate metric.
package ctc

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/platecrnn/internal/tensor"
)

// Blank is the reserved class index for the CTC blank symbol.
const Blank = 0

// Decoded holds the greedy decoding of one sample: the raw per-timestep
// argmax indices and the collapsed label sequence with per-character
// probabilities.
type Decoded struct {
	Timesteps []int
	Collapsed []int
	Probs     []float64
}

// argmax returns index of max value and the value.
func argmax(v []float32) (int, float32) {
	if len(v) == 0 {
		return -1, 0
	}
	idx := 0
	maxVal := v[0]
	for i := 1; i < len(v); i++ {
		if v[i] > maxVal {
			maxVal = v[i]
			idx = i
		}
	}
	return idx, maxVal
}

// probOfIndex returns the probability of v[idx]. Softmax outputs are used
// as-is; anything else (e.g. raw logits from an exported model) goes through
// a stable softmax first.
func probOfIndex(v []float32, idx int) float64 {
	if len(v) == 0 || idx < 0 || idx >= len(v) {
		return 0
	}
	var sum float64
	minV, maxV := v[0], v[0]
	for _, x := range v {
		sum += float64(x)
		if x < minV {
			minV = x
		}
		if x > maxV {
			maxV = x
		}
	}
	if sum > 0.99 && sum < 1.01 && minV >= 0 && maxV <= 1 {
		return float64(v[idx])
	}
	m := maxV
	var denom float64
	for _, x := range v {
		denom += math.Exp(float64(x - m))
	}
	if denom == 0 {
		return 0
	}
	return math.Exp(float64(v[idx]-m)) / denom
}

// Collapse removes repeated consecutive indices and blanks. probs, when
// non-nil, must parallel indices; the surviving entries are returned
// alongside the collapsed sequence.
func Collapse(indices []int, probs []float64, blank int) ([]int, []float64) {
	outIdx := make([]int, 0, len(indices))
	var outProb []float64
	if probs != nil {
		outProb = make([]float64, 0, len(probs))
	}
	prev := -1
	for i, idx := range indices {
		if idx == blank {
			prev = idx
			continue
		}
		if idx == prev {
			continue
		}
		outIdx = append(outIdx, idx)
		if probs != nil && i < len(probs) {
			outProb = append(outProb, probs[i])
		}
		prev = idx
	}
	return outIdx, outProb
}

// GreedyDecode decodes per-timestep class distributions of shape [N, T, C]
// by argmax followed by repeat-collapsing and blank removal. inputLens, when
// non-nil, limits each sample to its true (pre-padding) number of timesteps.
func GreedyDecode(probs tensor.Tensor, inputLens []int, blank int) ([]Decoded, error) {
	if probs.Rank() != 3 {
		return nil, fmt.Errorf("expected [N, T, C] distributions, got shape %v", probs.Shape)
	}
	n, tDim, cDim := probs.Dim(0), probs.Dim(1), probs.Dim(2)
	if inputLens != nil && len(inputLens) != n {
		return nil, fmt.Errorf("got %d input lengths for %d samples", len(inputLens), n)
	}

	out := make([]Decoded, n)
	perBatch := tDim * cDim
	for b := range n {
		steps := tDim
		if inputLens != nil {
			steps = inputLens[b]
			if steps < 0 || steps > tDim {
				return nil, fmt.Errorf("sample %d: input length %d outside [0, %d]", b, steps, tDim)
			}
		}
		indices := make([]int, steps)
		stepProbs := make([]float64, steps)
		for t := range steps {
			off := b*perBatch + t*cDim
			cls := probs.Data[off : off+cDim]
			idx, _ := argmax(cls)
			indices[t] = idx
			stepProbs[t] = probOfIndex(cls, idx)
		}
		collapsed, collProbs := Collapse(indices, stepProbs, blank)
		out[b] = Decoded{Timesteps: indices, Collapsed: collapsed, Probs: collProbs}
	}
	return out, nil
}

// SequenceConfidence returns the average per-character probability, 0 if empty.
func SequenceConfidence(charProbs []float64) float64 {
	if len(charProbs) == 0 {
		return 0
	}
	var s float64
	for _, p := range charProbs {
		s += p
	}
	return s / float64(len(charProbs))
}
