package tensor

import (
	"errors"
	"fmt"
)

// Tensor is a dense float32 tensor in row-major layout. Image batches use
// NHWC ([N, H, W, C]), timestep sequences use [N, T, F].
type Tensor struct {
	Data  []float32
	Shape []int64
}

// New allocates a zero tensor for the given shape.
func New(shape ...int64) (Tensor, error) {
	n := int64(1)
	for i, d := range shape {
		if d <= 0 {
			return Tensor{}, fmt.Errorf("dimension %d must be > 0, got %d", i, d)
		}
		n *= d
	}
	return Tensor{Data: make([]float32, n), Shape: append([]int64(nil), shape...)}, nil
}

// FromData wraps existing data after checking it matches the shape.
func FromData(data []float32, shape ...int64) (Tensor, error) {
	if data == nil {
		return Tensor{}, errors.New("nil data")
	}
	n := int64(1)
	for _, d := range shape {
		n *= d
	}
	if int64(len(data)) != n {
		return Tensor{}, fmt.Errorf("data length %d != %d for shape %v", len(data), n, shape)
	}
	return Tensor{Data: data, Shape: append([]int64(nil), shape...)}, nil
}

// NewImageBatch stacks per-image NHWC buffers into [N, H, W, C]. All images
// must share the same geometry.
func NewImageBatch(images [][]float32, h, w, c int) (Tensor, error) {
	if len(images) == 0 {
		return Tensor{}, errors.New("empty batch")
	}
	per := h * w * c
	out := make([]float32, per*len(images))
	for i, d := range images {
		if len(d) != per {
			return Tensor{}, fmt.Errorf("image %d has length %d, want %d", i, len(d), per)
		}
		copy(out[i*per:(i+1)*per], d)
	}
	return Tensor{
		Data:  out,
		Shape: []int64{int64(len(images)), int64(h), int64(w), int64(c)},
	}, nil
}

// Rank returns the number of dimensions.
func (t Tensor) Rank() int { return len(t.Shape) }

// Dim returns dimension i, or 0 when out of range.
func (t Tensor) Dim(i int) int {
	if i < 0 || i >= len(t.Shape) {
		return 0
	}
	return int(t.Shape[i])
}

// Elems returns the total number of elements implied by the shape.
func (t Tensor) Elems() int {
	n := 1
	for _, d := range t.Shape {
		n *= int(d)
	}
	return n
}

// ValidateNHWC ensures the tensor is a well-formed [N, H, W, C] image batch.
func (t Tensor) ValidateNHWC() error {
	if len(t.Shape) != 4 {
		return fmt.Errorf("shape rank %d != 4", len(t.Shape))
	}
	for i, v := range t.Shape {
		if v <= 0 {
			return fmt.Errorf("dimension %d must be > 0, got %d", i, v)
		}
	}
	if len(t.Data) != t.Elems() {
		return fmt.Errorf("tensor data length %d != expected %d for shape %v",
			len(t.Data), t.Elems(), t.Shape)
	}
	return nil
}

// At reads element [n, i, j, k] of an NHWC tensor without bounds checking
// beyond the slice itself.
func (t Tensor) At(n, i, j, k int) float32 {
	h, w, c := int(t.Shape[1]), int(t.Shape[2]), int(t.Shape[3])
	return t.Data[((n*h+i)*w+j)*c+k]
}

// Set writes element [n, i, j, k] of an NHWC tensor.
func (t Tensor) Set(n, i, j, k int, v float32) {
	h, w, c := int(t.Shape[1]), int(t.Shape[2]), int(t.Shape[3])
	t.Data[((n*h+i)*w+j)*c+k] = v
}

// Stats computes min/max/mean for debug output.
func Stats(data []float32) (minVal, maxVal, mean float32) {
	if len(data) == 0 {
		return 0, 0, 0
	}
	minVal, maxVal = data[0], data[0]
	var sum float64
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
		sum += float64(v)
	}
	mean = float32(sum / float64(len(data)))
	return minVal, maxVal, mean
}
