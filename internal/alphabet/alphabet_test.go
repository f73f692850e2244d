package alphabet

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_AssignsDenseCodesFromOne(t *testing.T) {
	a, err := New([]string{"A", "B", "1"})
	require.NoError(t, err)

	assert.Equal(t, 4, a.Size()) // 3 units + blank

	code, err := a.Encode("A")
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	code, err = a.Encode("1")
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		units []string
	}{
		{"empty set", nil},
		{"empty unit", []string{"A", ""}},
		{"duplicate unit", []string{"A", "A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.units)
			require.Error(t, err)
		})
	}
}

func TestEncode_UnknownCharacter(t *testing.T) {
	a, err := New([]string{"A"})
	require.NoError(t, err)

	_, err = a.Encode("Z")
	require.Error(t, err)

	var unknown *UnknownCharacterError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Z", unknown.Unit)
}

func TestDecode(t *testing.T) {
	a, err := New([]string{"A", "B"})
	require.NoError(t, err)

	u, err := a.Decode(BlankCode)
	require.NoError(t, err)
	assert.Empty(t, u, "blank decodes to empty string")

	u, err = a.Decode(2)
	require.NoError(t, err)
	assert.Equal(t, "B", u)

	_, err = a.Decode(3)
	require.Error(t, err)
	_, err = a.Decode(-1)
	require.Error(t, err)
}

func TestRoundTrip_EncodeDecode(t *testing.T) {
	units := []string{"0", "7", "A", "B", "W"}
	a, err := New(units)
	require.NoError(t, err)

	for _, u := range units {
		code, err := a.Encode(u)
		require.NoError(t, err)
		got, err := a.Decode(code)
		require.NoError(t, err)
		assert.Equal(t, u, got)
	}
}

func TestSaveLoad_IdenticalCodec(t *testing.T) {
	a, err := New([]string{"A", "B", "C", "1", "2"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "alphabet_lookup.json")
	require.NoError(t, a.Save(path))

	b, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, a.Size(), b.Size())
	assert.Equal(t, a.Units(), b.Units())

	for _, u := range a.Units() {
		ca, err := a.Encode(u)
		require.NoError(t, err)
		cb, err := b.Encode(u)
		require.NoError(t, err)
		assert.Equal(t, ca, cb)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
