package model

import (
	"fmt"
	"math/rand"

	"github.com/MeKo-Tech/platecrnn/internal/config"
	"github.com/MeKo-Tech/platecrnn/internal/ctc"
	"github.com/MeKo-Tech/platecrnn/internal/tensor"
)

// Network is the full recognition model: a stack of convolutional blocks,
// a reshape of the feature map into a timestep sequence, bidirectional
// recurrent layers, and a softmax projection onto the alphabet.
type Network struct {
	params *config.Params
	convs  []*ConvBlock
	rnns   []*BiLSTM
	proj   *Projection
}

// New builds a network from the architecture parameters. The alphabet must
// be attached to the params; it fixes the output class count (units plus
// the blank).
func New(p *config.Params, seed int64) (*Network, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Alphabet == nil {
		return nil, fmt.Errorf("network: params carry no alphabet")
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // weight init, not crypto

	n := &Network{params: p}

	inCh := p.Channels
	for i, cfg := range p.ConvBlocks {
		blk, err := NewConvBlock(cfg, inCh, rng)
		if err != nil {
			return nil, fmt.Errorf("conv block %d: %w", i, err)
		}
		n.convs = append(n.convs, blk)
		inCh = cfg.Features
	}

	featDim := n.featureHeight() * inCh
	for i, cfg := range p.RecurrentLayers {
		rnn, err := NewBiLSTM(cfg.Units, featDim, cfg.Dropout, rng)
		if err != nil {
			return nil, fmt.Errorf("recurrent layer %d: %w", i, err)
		}
		n.rnns = append(n.rnns, rnn)
		featDim = rnn.OutDim()
	}

	proj, err := NewProjection(featDim, p.Alphabet.Size(), rng)
	if err != nil {
		return nil, err
	}
	n.proj = proj

	return n, nil
}

// featureHeight is the height of the conv stack's output for the configured
// input height.
func (n *Network) featureHeight() int {
	h := n.params.ImageHeight
	for _, blk := range n.convs {
		h = blk.OutHeight(h)
	}
	return h
}

// OutputTimesteps reports the sequence length the network produces for an
// input of the given pixel width. Because the conv stack uses same padding,
// this is never smaller than the floor-based estimate from
// Params.InputLength.
func (n *Network) OutputTimesteps(width int) int {
	w := width
	for _, blk := range n.convs {
		w = blk.OutWidth(w)
	}
	return w
}

// Classes is the size of the output distribution, alphabet units plus blank.
func (n *Network) Classes() int {
	return n.proj.classes
}

// Forward runs the model on a batch of images [N, H, W, C] and returns
// per-timestep class distributions [N, T, classes].
func (n *Network) Forward(images tensor.Tensor) (tensor.Tensor, error) {
	if err := images.ValidateNHWC(); err != nil {
		return tensor.Tensor{}, err
	}
	if images.Dim(1) != n.params.ImageHeight || images.Dim(3) != n.params.Channels {
		return tensor.Tensor{}, fmt.Errorf("network expects [N, %d, W, %d] input, got shape %v",
			n.params.ImageHeight, n.params.Channels, images.Shape)
	}

	cur := images
	var err error
	for i, blk := range n.convs {
		if cur, err = blk.Apply(cur); err != nil {
			return tensor.Tensor{}, fmt.Errorf("conv block %d: %w", i, err)
		}
	}
	if cur, err = (TimeDistribute{}).Apply(cur); err != nil {
		return tensor.Tensor{}, err
	}
	for i, rnn := range n.rnns {
		if cur, err = rnn.Apply(cur); err != nil {
			return tensor.Tensor{}, fmt.Errorf("recurrent layer %d: %w", i, err)
		}
	}
	return n.proj.Apply(cur)
}

// ForwardTraining runs the model and evaluates the alignment-free loss
// against the encoded labels. It returns the distributions alongside the
// batch-mean loss.
func (n *Network) ForwardTraining(
	images tensor.Tensor,
	labels [][]int,
	inputLens, labelLens []int,
) (tensor.Tensor, float64, error) {
	probs, err := n.Forward(images)
	if err != nil {
		return tensor.Tensor{}, 0, err
	}
	loss, _, err := ctc.Loss(probs, labels, inputLens, labelLens, ctc.Blank)
	if err != nil {
		return tensor.Tensor{}, 0, err
	}
	return probs, loss, nil
}

// Infer runs the model for decoding. The per-sample input lengths pass
// through unchanged so callers can hand them straight to the greedy decoder.
func (n *Network) Infer(images tensor.Tensor, inputLens []int) (tensor.Tensor, []int, error) {
	if len(inputLens) != images.Dim(0) {
		return tensor.Tensor{}, nil, fmt.Errorf("network: %d input lengths for batch of %d",
			len(inputLens), images.Dim(0))
	}
	probs, err := n.Forward(images)
	if err != nil {
		return tensor.Tensor{}, nil, err
	}
	tDim := probs.Dim(1)
	for i, l := range inputLens {
		if l <= 0 || l > tDim {
			return tensor.Tensor{}, nil, fmt.Errorf("network: input length %d of sample %d outside [1, %d]",
				l, i, tDim)
		}
	}
	return probs, inputLens, nil
}
