package config

import (
	"fmt"

	"github.com/MeKo-Tech/platecrnn/internal/alphabet"
)

// ConvBlockConfig describes one convolutional stage of the feature
// extractor: a strided "same"-padded convolution, optional batch
// normalization, and "same"-padded max pooling.
type ConvBlockConfig struct {
	Features    int  `mapstructure:"features" yaml:"features" json:"features"`
	KernelSize  int  `mapstructure:"kernel_size" yaml:"kernel_size" json:"kernel_size"`
	StrideH     int  `mapstructure:"stride_h" yaml:"stride_h" json:"stride_h"`
	StrideW     int  `mapstructure:"stride_w" yaml:"stride_w" json:"stride_w"`
	PoolH       int  `mapstructure:"pool_h" yaml:"pool_h" json:"pool_h"`
	PoolW       int  `mapstructure:"pool_w" yaml:"pool_w" json:"pool_w"`
	PoolStrideH int  `mapstructure:"pool_stride_h" yaml:"pool_stride_h" json:"pool_stride_h"`
	PoolStrideW int  `mapstructure:"pool_stride_w" yaml:"pool_stride_w" json:"pool_stride_w"`
	BatchNorm   bool `mapstructure:"batch_norm" yaml:"batch_norm" json:"batch_norm"`
}

// Validate fails fast on a malformed block.
func (c ConvBlockConfig) Validate() error {
	if c.Features <= 0 {
		return fmt.Errorf("features must be positive, got %d", c.Features)
	}
	if c.KernelSize <= 0 {
		return fmt.Errorf("kernel_size must be positive, got %d", c.KernelSize)
	}
	if c.StrideH <= 0 || c.StrideW <= 0 {
		return fmt.Errorf("strides must be positive, got %dx%d", c.StrideH, c.StrideW)
	}
	if c.PoolH <= 0 || c.PoolW <= 0 {
		return fmt.Errorf("pool window must be positive, got %dx%d", c.PoolH, c.PoolW)
	}
	if c.PoolStrideH <= 0 || c.PoolStrideW <= 0 {
		return fmt.Errorf("pool strides must be positive, got %dx%d", c.PoolStrideH, c.PoolStrideW)
	}
	return nil
}

// RecurrentLayerConfig describes one bidirectional recurrent layer.
type RecurrentLayerConfig struct {
	Units   int     `mapstructure:"units" yaml:"units" json:"units"`
	Dropout float64 `mapstructure:"dropout" yaml:"dropout" json:"dropout"`
}

// Params is the shared architecture and data-encoding configuration. The
// preprocessor and the model both read it, so the width-downsampling factor
// used for sequence-length estimation stays consistent with the layers that
// produce it.
type Params struct {
	ImageHeight       int    `mapstructure:"image_height" yaml:"image_height" json:"image_height"`
	ImageWidth        int    `mapstructure:"image_width" yaml:"image_width" json:"image_width"`
	Channels          int    `mapstructure:"channels" yaml:"channels" json:"channels"`
	MaxCharsPerString int    `mapstructure:"max_chars_per_string" yaml:"max_chars_per_string" json:"max_chars_per_string"`
	NPool             int    `mapstructure:"n_pool" yaml:"n_pool" json:"n_pool"`
	CSVDelimiter      string `mapstructure:"csv_delimiter" yaml:"csv_delimiter" json:"csv_delimiter"`
	SplitDelimiter    string `mapstructure:"split_delimiter" yaml:"split_delimiter" json:"split_delimiter"`

	ConvBlocks      []ConvBlockConfig      `mapstructure:"conv_blocks" yaml:"conv_blocks" json:"conv_blocks"`
	RecurrentLayers []RecurrentLayerConfig `mapstructure:"recurrent_layers" yaml:"recurrent_layers" json:"recurrent_layers"`

	// Alphabet is attached by the caller after loading, not read from the
	// config file.
	Alphabet *alphabet.Alphabet `mapstructure:"-" yaml:"-" json:"-"`
}

// DefaultParams returns the stock architecture: three conv blocks halving
// the height each time, the last one keeping the width, then two
// bidirectional recurrent layers.
func DefaultParams() Params {
	return Params{
		ImageHeight:       64,
		ImageWidth:        256,
		Channels:          3,
		MaxCharsPerString: 10,
		NPool:             4,
		CSVDelimiter:      ";",
		SplitDelimiter:    "|",
		ConvBlocks: []ConvBlockConfig{
			{Features: 32, KernelSize: 3, StrideH: 1, StrideW: 1, PoolH: 2, PoolW: 2, PoolStrideH: 2, PoolStrideW: 2, BatchNorm: true},
			{Features: 64, KernelSize: 3, StrideH: 1, StrideW: 1, PoolH: 2, PoolW: 2, PoolStrideH: 2, PoolStrideW: 2, BatchNorm: true},
			{Features: 128, KernelSize: 3, StrideH: 1, StrideW: 1, PoolH: 2, PoolW: 2, PoolStrideH: 2, PoolStrideW: 1, BatchNorm: true},
		},
		RecurrentLayers: []RecurrentLayerConfig{
			{Units: 256, Dropout: 0.5},
			{Units: 256, Dropout: 0.5},
		},
	}
}

// PoolStrideProduct is the total width downsampling of the conv stack:
// conv width strides times pool width strides across all blocks.
func (p *Params) PoolStrideProduct() int {
	prod := 1
	for _, b := range p.ConvBlocks {
		prod *= b.StrideW * b.PoolStrideW
	}
	return prod
}

// HeightStrideProduct is the total height downsampling of the conv stack.
func (p *Params) HeightStrideProduct() int {
	prod := 1
	for _, b := range p.ConvBlocks {
		prod *= b.StrideH * b.PoolStrideH
	}
	return prod
}

// Validate checks the architecture parameters, including that NPool agrees
// with the width downsampling the conv blocks actually perform.
func (p *Params) Validate() error {
	if p.ImageHeight <= 0 || p.ImageWidth <= 0 || p.Channels <= 0 {
		return fmt.Errorf("image shape must be positive, got %dx%dx%d",
			p.ImageHeight, p.ImageWidth, p.Channels)
	}
	if p.MaxCharsPerString <= 0 {
		return fmt.Errorf("max_chars_per_string must be positive, got %d", p.MaxCharsPerString)
	}
	if p.CSVDelimiter == "" {
		return fmt.Errorf("csv_delimiter must not be empty")
	}
	if p.SplitDelimiter == "" {
		return fmt.Errorf("split_delimiter must not be empty")
	}
	if len(p.ConvBlocks) == 0 {
		return fmt.Errorf("at least one conv block is required")
	}
	for i, b := range p.ConvBlocks {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("conv block %d: %w", i, err)
		}
	}
	if len(p.RecurrentLayers) == 0 {
		return fmt.Errorf("at least one recurrent layer is required")
	}
	for i, r := range p.RecurrentLayers {
		if r.Units <= 0 {
			return fmt.Errorf("recurrent layer %d: units must be positive, got %d", i, r.Units)
		}
		if r.Dropout < 0 || r.Dropout >= 1 {
			return fmt.Errorf("recurrent layer %d: dropout %.2f outside [0, 1)", i, r.Dropout)
		}
	}
	if got := p.PoolStrideProduct(); p.NPool != got {
		return fmt.Errorf("n_pool is %d but the conv blocks downsample width by %d", p.NPool, got)
	}
	return nil
}

// InputLength estimates how many timesteps the model emits for an image of
// the given pixel size after it is scaled to ImageHeight with preserved
// aspect ratio and clamped at ImageWidth. Degenerate geometry yields zero.
func (p *Params) InputLength(width, height int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	scaled := float64(p.ImageHeight) * float64(width) / float64(height)
	if limit := float64(p.ImageWidth); scaled > limit {
		scaled = limit
	}
	return int(scaled) / p.NPool
}
