package recognizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/platecrnn/internal/alphabet"
	"github.com/MeKo-Tech/platecrnn/internal/config"
	"github.com/MeKo-Tech/platecrnn/internal/tensor"
)

func TestNew_ConfigErrors(t *testing.T) {
	_, err := New(Config{AlphabetPath: "a.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model path")

	_, err = New(Config{ModelPath: "model.onnx"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alphabet path")

	cfg := DefaultConfig()
	cfg.ModelPath = "/nonexistent/model.onnx"
	cfg.AlphabetPath = "/nonexistent/alphabet.json"
	_, err = New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func testRecognizer(t *testing.T) *Recognizer {
	t.Helper()
	a, err := alphabet.New([]string{"1", "2", "A", "B"})
	require.NoError(t, err)

	p := config.DefaultParams()
	p.ImageHeight = 10
	p.ImageWidth = 100
	p.NPool = 4
	return &Recognizer{
		config:   Config{Params: p},
		alphabet: a,
	}
}

func TestDecode(t *testing.T) {
	r := testRecognizer(t)

	// [1, 4, 5]: argmax sequence A A blank B with alphabet codes
	// 1="1" 2="2" 3="A" 4="B".
	probs, err := tensor.FromData([]float32{
		0.1, 0.0, 0.0, 0.8, 0.1,
		0.1, 0.0, 0.0, 0.8, 0.1,
		0.9, 0.0, 0.0, 0.05, 0.05,
		0.1, 0.0, 0.0, 0.1, 0.8,
	}, 1, 4, 5)
	require.NoError(t, err)

	res, err := r.decode(probs, 16)
	require.NoError(t, err)
	assert.Equal(t, "AB", res.Text)
	assert.Equal(t, []int{3, 4}, res.Codes)
	assert.Len(t, res.CharConfidences, 2)
	assert.InDelta(t, 0.8, res.Confidence, 1e-6)
	assert.Equal(t, 16, res.Width)
}

func TestDecode_ContentWidthLimitsTimesteps(t *testing.T) {
	r := testRecognizer(t)

	// Last timestep strongly predicts "B" but lies beyond the content.
	probs, err := tensor.FromData([]float32{
		0.1, 0.0, 0.0, 0.8, 0.1,
		0.9, 0.0, 0.0, 0.05, 0.05,
		0.0, 0.0, 0.0, 0.0, 1.0,
	}, 1, 3, 5)
	require.NoError(t, err)

	res, err := r.decode(probs, 8) // 8/4 = 2 timesteps
	require.NoError(t, err)
	assert.Equal(t, "A", res.Text)
}

func TestRecognize_NilImage(t *testing.T) {
	r := testRecognizer(t)
	_, err := r.Recognize(nil)
	require.Error(t, err)
}
