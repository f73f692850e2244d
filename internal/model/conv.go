package model

import (
	"fmt"
	"math/rand"

	"github.com/MeKo-Tech/platecrnn/internal/config"
	"github.com/MeKo-Tech/platecrnn/internal/mempool"
	"github.com/MeKo-Tech/platecrnn/internal/tensor"
)

// ConvBlock is one feature-extractor stage: convolution with "same" padding,
// optional (inference-mode) batch normalization, "same"-padded max pooling
// and a ReLU. Input and output are NHWC.
type ConvBlock struct {
	cfg  config.ConvBlockConfig
	inCh int

	// weights laid out [features][kh][kw][inCh], biases per feature.
	weights []float32
	bias    []float32

	// Folded batch-norm: y = scale*x + shift per feature. Identity when
	// the block has batch_norm disabled or freshly initialized stats.
	bnScale []float32
	bnShift []float32
}

// NewConvBlock builds a block for the given input channel count.
func NewConvBlock(cfg config.ConvBlockConfig, inCh int, rng *rand.Rand) (*ConvBlock, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("conv block: %w", err)
	}
	if inCh <= 0 {
		return nil, fmt.Errorf("conv block: input channels must be positive, got %d", inCh)
	}
	k := cfg.KernelSize
	b := &ConvBlock{
		cfg:     cfg,
		inCh:    inCh,
		weights: make([]float32, cfg.Features*k*k*inCh),
		bias:    make([]float32, cfg.Features),
		bnScale: make([]float32, cfg.Features),
		bnShift: make([]float32, cfg.Features),
	}
	heInit(b.weights, k*k*inCh, rng)
	for f := range b.bnScale {
		b.bnScale[f] = 1
	}
	return b, nil
}

// OutHeight returns the feature-map height this block emits for an input height.
func (b *ConvBlock) OutHeight(h int) int {
	return ceilDiv(ceilDiv(h, b.cfg.StrideH), b.cfg.PoolStrideH)
}

// OutWidth returns the feature-map width this block emits for an input width.
func (b *ConvBlock) OutWidth(w int) int {
	return ceilDiv(ceilDiv(w, b.cfg.StrideW), b.cfg.PoolStrideW)
}

// Features returns the block's output channel count.
func (b *ConvBlock) Features() int { return b.cfg.Features }

// Apply runs conv -> batch norm -> max pool -> ReLU.
func (b *ConvBlock) Apply(in tensor.Tensor) (tensor.Tensor, error) {
	if err := in.ValidateNHWC(); err != nil {
		return tensor.Tensor{}, err
	}
	if in.Dim(3) != b.inCh {
		return tensor.Tensor{}, fmt.Errorf("conv block expects %d channels, got %d", b.inCh, in.Dim(3))
	}

	conv, err := b.convolve(in)
	if err != nil {
		return tensor.Tensor{}, err
	}
	defer mempool.PutFloat32(conv.Data)
	return b.pool(conv)
}

// convolve computes the "same"-padded strided convolution with the folded
// batch-norm applied. The returned tensor's buffer comes from the mempool.
func (b *ConvBlock) convolve(in tensor.Tensor) (tensor.Tensor, error) {
	n, h, w := in.Dim(0), in.Dim(1), in.Dim(2)
	k := b.cfg.KernelSize
	outH := ceilDiv(h, b.cfg.StrideH)
	outW := ceilDiv(w, b.cfg.StrideW)
	padTop := samePad(h, k, b.cfg.StrideH) / 2
	padLeft := samePad(w, k, b.cfg.StrideW) / 2

	features := b.cfg.Features
	out := mempool.GetZeroedFloat32(n * outH * outW * features)
	for bi := range n {
		for oi := range outH {
			for oj := range outW {
				base := ((bi*outH+oi)*outW + oj) * features
				for f := range features {
					acc := b.bias[f]
					wBase := f * k * k * b.inCh
					for ki := range k {
						ii := oi*b.cfg.StrideH - padTop + ki
						if ii < 0 || ii >= h {
							continue
						}
						for kj := range k {
							jj := oj*b.cfg.StrideW - padLeft + kj
							if jj < 0 || jj >= w {
								continue
							}
							inBase := ((bi*h+ii)*w + jj) * b.inCh
							wOff := wBase + (ki*k+kj)*b.inCh
							for c := range b.inCh {
								acc += in.Data[inBase+c] * b.weights[wOff+c]
							}
						}
					}
					out[base+f] = b.bnScale[f]*acc + b.bnShift[f]
				}
			}
		}
	}
	return tensor.FromData(out, int64(n), int64(outH), int64(outW), int64(features))
}

// pool applies "same"-padded max pooling followed by ReLU.
func (b *ConvBlock) pool(in tensor.Tensor) (tensor.Tensor, error) {
	n, h, w, c := in.Dim(0), in.Dim(1), in.Dim(2), in.Dim(3)
	outH := ceilDiv(h, b.cfg.PoolStrideH)
	outW := ceilDiv(w, b.cfg.PoolStrideW)
	padTop := samePad(h, b.cfg.PoolH, b.cfg.PoolStrideH) / 2
	padLeft := samePad(w, b.cfg.PoolW, b.cfg.PoolStrideW) / 2

	out, err := tensor.New(int64(n), int64(outH), int64(outW), int64(c))
	if err != nil {
		return tensor.Tensor{}, err
	}
	for bi := range n {
		for oi := range outH {
			for oj := range outW {
				for ch := range c {
					first := true
					var best float32
					for ki := range b.cfg.PoolH {
						ii := oi*b.cfg.PoolStrideH - padTop + ki
						if ii < 0 || ii >= h {
							continue
						}
						for kj := range b.cfg.PoolW {
							jj := oj*b.cfg.PoolStrideW - padLeft + kj
							if jj < 0 || jj >= w {
								continue
							}
							v := in.At(bi, ii, jj, ch)
							if first || v > best {
								best = v
								first = false
							}
						}
					}
					out.Set(bi, oi, oj, ch, relu(best))
				}
			}
		}
	}
	return out, nil
}
