package utils

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/platecrnn/internal/mempool"
)

// NormalizeImage normalizes an image for recognition:
// - Converts to RGB (removes alpha channel)
// - Scales pixel values from 0-255 to 0-1
// - Lays pixels out row-major with channels innermost (HWC).
func NormalizeImage(img image.Image) ([]float32, int, int, error) {
	return NormalizeImageIntoBuffer(img, nil)
}

// NormalizeImageIntoBuffer normalizes an image into the provided buffer if it
// has sufficient capacity. If buf is nil or too small, a new buffer is
// allocated. Returns the slice used and the image width and height.
func NormalizeImageIntoBuffer(img image.Image, buf []float32) ([]float32, int, int, error) {
	if img == nil {
		return nil, 0, 0, &ImageProcessingError{Operation: "normalize", Err: errors.New("input image is nil")}
	}

	// Convert to NRGBA to ensure we have RGB channels
	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, 0, 0, &ImageProcessingError{Operation: "normalize", Err: errors.New("invalid image dimensions")}
	}

	needed := 3 * width * height
	if buf == nil || cap(buf) < needed {
		buf = make([]float32, needed)
	}
	data := buf[:needed]
	for y := range height {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+4*width]
		for x := range width {
			idx := (y*width + x) * 3
			data[idx] = float32(row[4*x]) / 255.0
			data[idx+1] = float32(row[4*x+1]) / 255.0
			data[idx+2] = float32(row[4*x+2]) / 255.0
		}
	}
	return data, width, height, nil
}

// NormalizeImagePooled normalizes an image using memory pooling for the
// output buffer. The caller should return the buffer to the pool via
// mempool.PutFloat32 when done.
func NormalizeImagePooled(img image.Image) ([]float32, int, int, error) {
	if img == nil {
		return nil, 0, 0, &ImageProcessingError{Operation: "normalize", Err: errors.New("input image is nil")}
	}
	b := img.Bounds()
	buf := mempool.GetFloat32(3 * b.Dx() * b.Dy())
	data, w, h, err := NormalizeImageIntoBuffer(img, buf)
	if err != nil {
		mempool.PutFloat32(buf)
		return nil, 0, 0, err
	}
	return data, w, h, nil
}
