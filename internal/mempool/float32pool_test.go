package mempool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFloat32_Length(t *testing.T) {
	buf := GetFloat32(10)
	require.Len(t, buf, 10)
	assert.GreaterOrEqual(t, cap(buf), 1024)
	PutFloat32(buf)
}

func TestGetFloat32_ReuseAfterPut(t *testing.T) {
	buf := GetFloat32(2048)
	PutFloat32(buf)
	again := GetFloat32(2000)
	require.Len(t, again, 2000)
	PutFloat32(again)
}

func TestPutFloat32_Nil(t *testing.T) {
	assert.NotPanics(t, func() { PutFloat32(nil) })
}

func TestGetZeroedFloat32(t *testing.T) {
	buf := GetFloat32(64)
	for i := range buf {
		buf[i] = 42
	}
	PutFloat32(buf)

	zeroed := GetZeroedFloat32(64)
	for _, v := range zeroed {
		require.Zero(t, v)
	}
	PutFloat32(zeroed)
}

func TestSizeClass(t *testing.T) {
	assert.Equal(t, 1024, sizeClass(1))
	assert.Equal(t, 1024, sizeClass(1024))
	assert.Equal(t, 2048, sizeClass(1025))
}
