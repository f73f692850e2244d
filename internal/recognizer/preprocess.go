package recognizer

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/platecrnn/internal/tensor"
	"github.com/MeKo-Tech/platecrnn/internal/utils"
)

// ResizeForRecognition scales an image to the target height while preserving
// aspect ratio, clamps the width at maxWidth and pads the right edge with
// black up to maxWidth so the model sees a fixed input shape. Returns the
// padded image and the scaled content width before padding.
func ResizeForRecognition(img image.Image, targetHeight, maxWidth int) (image.Image, int, error) {
	if img == nil {
		return nil, 0, errors.New("input image is nil")
	}
	if targetHeight <= 0 || maxWidth <= 0 {
		return nil, 0, fmt.Errorf("invalid target size %dx%d", maxWidth, targetHeight)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, 0, errors.New("empty input image")
	}

	scale := float64(targetHeight) / float64(h)
	newW := int(float64(w) * scale)
	if newW < 1 {
		newW = 1
	}
	if newW > maxWidth {
		newW = maxWidth
	}

	resized := imaging.Resize(img, newW, targetHeight, imaging.Lanczos)
	if newW == maxWidth {
		return resized, newW, nil
	}

	canvas := imaging.New(maxWidth, targetHeight, color.Black)
	canvas = imaging.Paste(canvas, resized, image.Pt(0, 0))
	return canvas, newW, nil
}

// NormalizeForRecognition converts a resized image into a [1, H, W, 3]
// float32 tensor in [0, 1]. The tensor's buffer comes from the memory pool;
// callers return it via mempool.PutFloat32 once inference is done.
func NormalizeForRecognition(img image.Image) (tensor.Tensor, []float32, error) {
	data, w, h, err := utils.NormalizeImagePooled(img)
	if err != nil {
		return tensor.Tensor{}, nil, err
	}
	ten, err := tensor.FromData(data, 1, int64(h), int64(w), 3)
	if err != nil {
		return tensor.Tensor{}, nil, err
	}
	return ten, data, nil
}
