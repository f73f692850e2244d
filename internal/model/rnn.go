package model

import (
	"fmt"
	"math/rand"

	"github.com/MeKo-Tech/platecrnn/internal/tensor"
)

// lstmCell holds one direction's parameters. Gate order in the stacked
// weight matrices is input, forget, cell, output.
type lstmCell struct {
	units, inDim int
	wx           []float32 // [4*units][inDim]
	wh           []float32 // [4*units][units]
	bias         []float32 // [4*units]
}

func newLSTMCell(units, inDim int, rng *rand.Rand) *lstmCell {
	c := &lstmCell{
		units: units,
		inDim: inDim,
		wx:    make([]float32, 4*units*inDim),
		wh:    make([]float32, 4*units*units),
		bias:  make([]float32, 4*units),
	}
	glorotInit(c.wx, inDim, units, rng)
	glorotInit(c.wh, units, units, rng)
	// Forget-gate bias starts at 1 so early steps retain state.
	for u := range units {
		c.bias[units+u] = 1
	}
	return c
}

// step advances one timestep. x is the input vector, h and cell are the
// recurrent state, updated in place.
func (c *lstmCell) step(x, h, cell, gates []float32) {
	for g := range 4 * c.units {
		acc := c.bias[g]
		xOff := g * c.inDim
		for i, xi := range x {
			acc += c.wx[xOff+i] * xi
		}
		hOff := g * c.units
		for i, hi := range h {
			acc += c.wh[hOff+i] * hi
		}
		gates[g] = acc
	}
	u := c.units
	for i := range u {
		in := sigmoid(gates[i])
		forget := sigmoid(gates[u+i])
		cand := tanh32(gates[2*u+i])
		out := sigmoid(gates[3*u+i])
		cell[i] = forget*cell[i] + in*cand
		h[i] = out * tanh32(cell[i])
	}
}

// BiLSTM processes a timestep sequence in both directions and concatenates
// the per-step hidden states. Dropout is configuration carried for training
// parity; the forward pass here is deterministic.
type BiLSTM struct {
	units   int
	inDim   int
	dropout float64
	fwd     *lstmCell
	bwd     *lstmCell
}

// NewBiLSTM builds a bidirectional layer with the given unit count.
func NewBiLSTM(units, inDim int, dropout float64, rng *rand.Rand) (*BiLSTM, error) {
	if units <= 0 {
		return nil, fmt.Errorf("bilstm: units must be positive, got %d", units)
	}
	if inDim <= 0 {
		return nil, fmt.Errorf("bilstm: input dim must be positive, got %d", inDim)
	}
	if dropout < 0 || dropout >= 1 {
		return nil, fmt.Errorf("bilstm: dropout %.2f outside [0, 1)", dropout)
	}
	return &BiLSTM{
		units:   units,
		inDim:   inDim,
		dropout: dropout,
		fwd:     newLSTMCell(units, inDim, rng),
		bwd:     newLSTMCell(units, inDim, rng),
	}, nil
}

// OutDim returns the concatenated feature size per timestep.
func (l *BiLSTM) OutDim() int { return 2 * l.units }

// Apply maps [B, T, F] to [B, T, 2*units].
func (l *BiLSTM) Apply(in tensor.Tensor) (tensor.Tensor, error) {
	if in.Rank() != 3 {
		return tensor.Tensor{}, fmt.Errorf("bilstm expects [B, T, F], got shape %v", in.Shape)
	}
	if in.Dim(2) != l.inDim {
		return tensor.Tensor{}, fmt.Errorf("bilstm expects %d features, got %d", l.inDim, in.Dim(2))
	}
	n, tDim := in.Dim(0), in.Dim(1)
	out, err := tensor.New(int64(n), int64(tDim), int64(2*l.units))
	if err != nil {
		return tensor.Tensor{}, err
	}

	u := l.units
	for bi := range n {
		h := make([]float32, u)
		cell := make([]float32, u)
		gates := make([]float32, 4*u)
		for t := range tDim {
			x := in.Data[(bi*tDim+t)*l.inDim : (bi*tDim+t+1)*l.inDim]
			l.fwd.step(x, h, cell, gates)
			copy(out.Data[(bi*tDim+t)*2*u:], h)
		}

		clear(h)
		clear(cell)
		for t := tDim - 1; t >= 0; t-- {
			x := in.Data[(bi*tDim+t)*l.inDim : (bi*tDim+t+1)*l.inDim]
			l.bwd.step(x, h, cell, gates)
			copy(out.Data[(bi*tDim+t)*2*u+u:], h)
		}
	}
	return out, nil
}
