package preprocess

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageSize_PNG(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "probe.png", 120, 40)

	w, h, err := ImageSize(path)
	require.NoError(t, err)
	assert.Equal(t, 120, w)
	assert.Equal(t, 40, h)
}

func TestImageSize_Missing(t *testing.T) {
	_, _, err := ImageSize(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
}

func TestImageSize_NotAnImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	_, _, err := ImageSize(path)
	require.Error(t, err)
}
