package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsNonPositiveDims(t *testing.T) {
	_, err := New(2, 0, 3)
	require.Error(t, err)
}

func TestFromData_LengthMismatch(t *testing.T) {
	_, err := FromData(make([]float32, 5), 2, 3)
	require.Error(t, err)

	ten, err := FromData(make([]float32, 6), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ten.Shape)
}

func TestNewImageBatch(t *testing.T) {
	imgs := [][]float32{
		make([]float32, 2*3*1),
		make([]float32, 2*3*1),
	}
	ten, err := NewImageBatch(imgs, 2, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 2, 3, 1}, ten.Shape)
	require.NoError(t, ten.ValidateNHWC())

	_, err = NewImageBatch([][]float32{make([]float32, 5)}, 2, 3, 1)
	require.Error(t, err)

	_, err = NewImageBatch(nil, 2, 3, 1)
	require.Error(t, err)
}

func TestAtSet_NHWCIndexing(t *testing.T) {
	ten, err := New(1, 2, 3, 2)
	require.NoError(t, err)
	ten.Set(0, 1, 2, 1, 7)
	assert.InDelta(t, 7.0, ten.At(0, 1, 2, 1), 1e-9)
	// last element of the buffer
	assert.InDelta(t, 7.0, ten.Data[len(ten.Data)-1], 1e-9)
}

func TestStats(t *testing.T) {
	minV, maxV, mean := Stats([]float32{1, 2, 3})
	assert.InDelta(t, 1.0, minV, 1e-6)
	assert.InDelta(t, 3.0, maxV, 1e-6)
	assert.InDelta(t, 2.0, mean, 1e-6)

	minV, maxV, mean = Stats(nil)
	assert.Zero(t, minV)
	assert.Zero(t, maxV)
	assert.Zero(t, mean)
}
