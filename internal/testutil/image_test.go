package testutil

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePlateImage(t *testing.T) {
	cfg := DefaultPlateImageConfig("AB123")
	img := GeneratePlateImage(cfg)

	b := img.Bounds()
	assert.Equal(t, cfg.Width, b.Dx())
	assert.Equal(t, cfg.Height, b.Dy())

	// Text pixels darken at least part of the white plate.
	dark := 0
	for y := range b.Dy() {
		for x := range b.Dx() {
			r, g, bb, _ := img.At(x, y).RGBA()
			if r < 0x8000 && g < 0x8000 && bb < 0x8000 {
				dark++
			}
		}
	}
	assert.Positive(t, dark, "expected some dark text pixels")
}

func TestSavePlateImage(t *testing.T) {
	dir := t.TempDir()
	path := SavePlateImage(t, dir, "plate.png", DefaultPlateImageConfig("XY9"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWriteDatasetFixture(t *testing.T) {
	fx := WriteDatasetFixture(t, []string{"AB1", "CD2"}, ";", "|")

	data, err := os.ReadFile(fx.CSV) //nolint:gosec // G304: test-owned path
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], ";|A|B|1|")
	assert.Contains(t, lines[1], ";|C|D|2|")
}
