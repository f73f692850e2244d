package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/platecrnn/internal/tensor"
)

func TestNewBiLSTM_Invalid(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name         string
		units, inDim int
		dropout      float64
	}{
		{"zero units", 0, 4, 0},
		{"zero input dim", 4, 0, 0},
		{"negative dropout", 4, 4, -0.1},
		{"dropout one", 4, 4, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBiLSTM(tt.units, tt.inDim, tt.dropout, rng)
			require.Error(t, err)
		})
	}
}

func TestBiLSTM_Apply_Shape(t *testing.T) {
	l, err := NewBiLSTM(6, 4, 0.5, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 12, l.OutDim())

	in, err := tensor.New(2, 5, 4)
	require.NoError(t, err)
	for i := range in.Data {
		in.Data[i] = float32(i%5)/5 - 0.5
	}

	out, err := l.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 5, 12}, out.Shape)
}

func TestBiLSTM_Apply_Deterministic(t *testing.T) {
	in, err := tensor.New(1, 4, 3)
	require.NoError(t, err)
	for i := range in.Data {
		in.Data[i] = float32(i) / 12
	}

	a, err := NewBiLSTM(5, 3, 0, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	b, err := NewBiLSTM(5, 3, 0, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	outA, err := a.Apply(in)
	require.NoError(t, err)
	outB, err := b.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, outA.Data, outB.Data)
}

func TestBiLSTM_Apply_BatchIndependence(t *testing.T) {
	l, err := NewBiLSTM(4, 3, 0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	single, err := tensor.New(1, 3, 3)
	require.NoError(t, err)
	for i := range single.Data {
		single.Data[i] = float32(i) / 9
	}

	batch, err := tensor.New(2, 3, 3)
	require.NoError(t, err)
	copy(batch.Data[:9], single.Data)
	copy(batch.Data[9:], single.Data)

	outSingle, err := l.Apply(single)
	require.NoError(t, err)
	outBatch, err := l.Apply(batch)
	require.NoError(t, err)

	assert.Equal(t, outSingle.Data, outBatch.Data[:len(outSingle.Data)])
	assert.Equal(t, outSingle.Data, outBatch.Data[len(outSingle.Data):])
}

func TestBiLSTM_Apply_WrongRank(t *testing.T) {
	l, err := NewBiLSTM(4, 3, 0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	in, err := tensor.New(2, 3)
	require.NoError(t, err)
	_, err = l.Apply(in)
	require.Error(t, err)
}
