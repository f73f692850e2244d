// Package testutil generates synthetic plate images and dataset fixtures
// for tests.
package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// PlateImageConfig holds configuration for generating plate test images.
type PlateImageConfig struct {
	Text       string
	Width      int
	Height     int
	Background color.Color
	Foreground color.Color
	FontFace   font.Face
}

// DefaultPlateImageConfig returns the stock configuration: white plate,
// black text, a wide rectangle like a real plate crop.
func DefaultPlateImageConfig(text string) PlateImageConfig {
	return PlateImageConfig{
		Text:       text,
		Width:      160,
		Height:     40,
		Background: color.White,
		Foreground: color.Black,
		FontFace:   basicfont.Face7x13,
	}
}

// GeneratePlateImage creates a synthetic plate image with centered text.
func GeneratePlateImage(config PlateImageConfig) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, config.Width, config.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{config.Background}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{config.Foreground},
		Face: config.FontFace,
	}
	textWidth := font.MeasureString(config.FontFace, config.Text).Ceil()
	textHeight := config.FontFace.Metrics().Height.Ceil()
	x := (config.Width - textWidth) / 2
	y := (config.Height + textHeight) / 2
	drawer.Dot = fixed.P(x, y)
	drawer.DrawString(config.Text)

	return img
}

// SavePlateImage writes a generated plate to disk as PNG and returns its path.
func SavePlateImage(t *testing.T, dir, name string, config PlateImageConfig) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))

	file, err := os.Create(path) //nolint:gosec // G304: Test file creation with controlled path
	require.NoError(t, err, "Failed to create file %s", path)
	defer func() {
		require.NoError(t, file.Close())
	}()

	require.NoError(t, png.Encode(file, GeneratePlateImage(config)))
	return path
}
