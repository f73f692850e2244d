package preprocess

import (
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for geometry probing
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
)

// ImageSize reads an image's width and height from its header without
// decoding pixel data, so geometry lookups stay cheap during offline
// preprocessing and never run inside the training loop.
func ImageSize(path string) (width, height int, err error) {
	f, err := os.Open(path) //nolint:gosec // G304: reading user-provided image path is expected
	if err != nil {
		return 0, 0, fmt.Errorf("open image: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "Error closing image file: %v\n", cerr)
		}
	}()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image header %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("degenerate image geometry %dx%d: %s", cfg.Width, cfg.Height, path)
	}
	return cfg.Width, cfg.Height, nil
}
