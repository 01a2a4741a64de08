package media

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// loadStillNative decodes a static image with the pure-Go decoders.
// It is the fallback for the FFmpeg single-frame path, covering builds
// or files where FFmpeg can't produce a stream.
func loadStillNative(path string) (Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return Frame{}, fmt.Errorf("media: opening %s failed: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Frame{}, fmt.Errorf("media: decoding %s failed: %w", path, err)
	}

	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return Frame{Pix: rgba.Pix, W: b.Dx(), H: b.Dy()}, nil
}
