package ctc

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/platecrnn/internal/tensor"
)

// negInf stands in for log(0) in the forward recursion.
var negInf = math.Inf(-1)

// Loss computes the connectionist temporal classification loss for a batch:
// the per-sample negative log-likelihood summed over all alignments that
// collapse to the target, averaged over the batch. probs is [N, T, C]
// per-timestep class distributions, labels are dense (possibly padded) code
// sequences, inputLens and labelLens the true sequence lengths.
//
// A sample whose label length is not strictly smaller than its input length
// has no valid alignment and is an error, not an infinite loss: the
// preprocessor is supposed to have filtered it.
func Loss(probs tensor.Tensor, labels [][]int, inputLens, labelLens []int, blank int) (float64, []float64, error) {
	if probs.Rank() != 3 {
		return 0, nil, fmt.Errorf("expected [N, T, C] distributions, got shape %v", probs.Shape)
	}
	n, tDim, cDim := probs.Dim(0), probs.Dim(1), probs.Dim(2)
	if len(labels) != n || len(inputLens) != n || len(labelLens) != n {
		return 0, nil, fmt.Errorf("batch size mismatch: %d samples, %d labels, %d input lengths, %d label lengths",
			n, len(labels), len(inputLens), len(labelLens))
	}

	perSample := make([]float64, n)
	var total float64
	for b := range n {
		inLen, lblLen := inputLens[b], labelLens[b]
		if inLen <= 0 || inLen > tDim {
			return 0, nil, fmt.Errorf("sample %d: input length %d outside (0, %d]", b, inLen, tDim)
		}
		if lblLen < 0 || lblLen > len(labels[b]) {
			return 0, nil, fmt.Errorf("sample %d: label length %d outside [0, %d]", b, lblLen, len(labels[b]))
		}
		if lblLen >= inLen {
			return 0, nil, fmt.Errorf("sample %d: label length %d >= input length %d, no valid alignment", b, lblLen, inLen)
		}
		target := labels[b][:lblLen]
		for i, c := range target {
			if c <= 0 || c >= cDim {
				return 0, nil, fmt.Errorf("sample %d: label code %d at %d outside (0, %d)", b, c, i, cDim)
			}
		}
		nll := forwardNLL(probs.Data[b*tDim*cDim:(b+1)*tDim*cDim], tDim, cDim, inLen, target, blank)
		perSample[b] = nll
		total += nll
	}
	return total / float64(n), perSample, nil
}

// forwardNLL runs the log-space forward recursion over the blank-extended
// target l' of length 2L+1 and returns -log p(target | distributions).
func forwardNLL(data []float32, tDim, cDim, inLen int, target []int, blank int) float64 {
	s := 2*len(target) + 1
	// ext maps positions of l': even -> blank, odd -> target char.
	ext := func(i int) int {
		if i%2 == 0 {
			return blank
		}
		return target[i/2]
	}
	logY := func(t, c int) float64 {
		p := float64(data[t*cDim+c])
		if p <= 0 {
			return negInf
		}
		return math.Log(p)
	}

	alpha := make([]float64, s)
	next := make([]float64, s)
	for i := range alpha {
		alpha[i] = negInf
	}
	alpha[0] = logY(0, blank)
	if s > 1 {
		alpha[1] = logY(0, ext(1))
	}

	for t := 1; t < inLen; t++ {
		for i := range s {
			sum := alpha[i]
			if i >= 1 {
				sum = logAdd(sum, alpha[i-1])
			}
			// Skip transition is allowed unless it would merge a
			// repeated character or land on a blank.
			if i >= 2 && ext(i) != blank && ext(i) != ext(i-2) {
				sum = logAdd(sum, alpha[i-2])
			}
			next[i] = sum + logY(t, ext(i))
		}
		alpha, next = next, alpha
	}

	logP := alpha[s-1]
	if s > 1 {
		logP = logAdd(logP, alpha[s-2])
	}
	return -logP
}

// logAdd returns log(exp(a) + exp(b)) without overflow.
func logAdd(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	if a < b {
		a, b = b, a
	}
	return a + math.Log1p(math.Exp(b-a))
}
