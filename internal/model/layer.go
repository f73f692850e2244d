// Package model assembles the convolutional-recurrent network that turns a
// fixed-height plate image into a per-timestep distribution over the
// alphabet. Layers are forward-only building blocks; training orchestration
// lives outside this repository.
package model

import (
	"math"
	"math/rand"

	"github.com/MeKo-Tech/platecrnn/internal/tensor"
)

// Layer is a composable unit of the network: one tensor in, one tensor out.
type Layer interface {
	Apply(t tensor.Tensor) (tensor.Tensor, error)
}

func relu(x float32) float32 {
	if x < 0 {
		return 0
	}
	return x
}

func sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(float64(-x))))
}

func tanh32(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}

// heInit fills w with He-normal values for a layer with fanIn inputs.
func heInit(w []float32, fanIn int, rng *rand.Rand) {
	std := math.Sqrt(2 / float64(fanIn))
	for i := range w {
		w[i] = float32(rng.NormFloat64() * std)
	}
}

// glorotInit fills w with Glorot-uniform values.
func glorotInit(w []float32, fanIn, fanOut int, rng *rand.Rand) {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	for i := range w {
		w[i] = float32((rng.Float64()*2 - 1) * limit)
	}
}

// ceilDiv returns ceil(a/b) for positive b.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// samePad returns the total padding needed so that a windowed op with the
// given kernel and stride emits ceil(in/stride) outputs.
func samePad(in, kernel, stride int) int {
	out := ceilDiv(in, stride)
	pad := (out-1)*stride + kernel - in
	if pad < 0 {
		pad = 0
	}
	return pad
}
