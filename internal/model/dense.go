package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/MeKo-Tech/platecrnn/internal/tensor"
)

// TimeDistribute turns the conv stack's [B, H, W, C] feature map into a
// timestep sequence [B, W, H*C]: the width axis becomes time and each
// column's height and channel axes collapse into one feature vector.
type TimeDistribute struct{}

// Apply maps [B, H, W, C] to [B, W, H*C].
func (TimeDistribute) Apply(in tensor.Tensor) (tensor.Tensor, error) {
	if err := in.ValidateNHWC(); err != nil {
		return tensor.Tensor{}, err
	}
	n, h, w, c := in.Dim(0), in.Dim(1), in.Dim(2), in.Dim(3)
	out, err := tensor.New(int64(n), int64(w), int64(h*c))
	if err != nil {
		return tensor.Tensor{}, err
	}
	for bi := range n {
		for j := range w {
			for i := range h {
				src := ((bi*h+i)*w + j) * c
				dst := (bi*w+j)*h*c + i*c
				copy(out.Data[dst:dst+c], in.Data[src:src+c])
			}
		}
	}
	return out, nil
}

// Projection is the classification head: a per-timestep linear map to the
// alphabet size followed by a softmax.
type Projection struct {
	inDim   int
	classes int
	weights []float32 // [classes][inDim]
	bias    []float32
}

// NewProjection builds the head for the given feature and class counts.
func NewProjection(inDim, classes int, rng *rand.Rand) (*Projection, error) {
	if inDim <= 0 || classes <= 1 {
		return nil, fmt.Errorf("projection: invalid dims %d -> %d", inDim, classes)
	}
	p := &Projection{
		inDim:   inDim,
		classes: classes,
		weights: make([]float32, classes*inDim),
		bias:    make([]float32, classes),
	}
	glorotInit(p.weights, inDim, classes, rng)
	return p, nil
}

// Apply maps [B, T, F] to [B, T, classes] with each timestep normalized to a
// probability distribution.
func (p *Projection) Apply(in tensor.Tensor) (tensor.Tensor, error) {
	if in.Rank() != 3 {
		return tensor.Tensor{}, fmt.Errorf("projection expects [B, T, F], got shape %v", in.Shape)
	}
	if in.Dim(2) != p.inDim {
		return tensor.Tensor{}, fmt.Errorf("projection expects %d features, got %d", p.inDim, in.Dim(2))
	}
	n, tDim := in.Dim(0), in.Dim(1)
	out, err := tensor.New(int64(n), int64(tDim), int64(p.classes))
	if err != nil {
		return tensor.Tensor{}, err
	}

	logits := make([]float32, p.classes)
	for bi := range n {
		for t := range tDim {
			x := in.Data[(bi*tDim+t)*p.inDim : (bi*tDim+t+1)*p.inDim]
			for k := range p.classes {
				acc := p.bias[k]
				wOff := k * p.inDim
				for i, xi := range x {
					acc += p.weights[wOff+i] * xi
				}
				logits[k] = acc
			}
			softmaxInto(out.Data[(bi*tDim+t)*p.classes:(bi*tDim+t+1)*p.classes], logits)
		}
	}
	return out, nil
}

// softmaxInto writes a numerically stable softmax of logits into dst.
func softmaxInto(dst, logits []float32) {
	m := logits[0]
	for _, v := range logits[1:] {
		if v > m {
			m = v
		}
	}
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - m))
		dst[i] = float32(e)
		sum += e
	}
	for i := range dst {
		dst[i] = float32(float64(dst[i]) / sum)
	}
}
