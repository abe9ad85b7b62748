package integrations

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Cover dimensions match typical e-reader screens.
const (
	coverMaxWidth  = 600
	coverMaxHeight = 800
)

// MakeCover scales a page image down to cover size and re-encodes it as
// JPEG. Only the EPUB export path uses this; merge output is never
// re-encoded.
func MakeCover(pageData []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(pageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover page: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	scale := 1.0
	if w := float64(coverMaxWidth) / float64(width); w < scale {
		scale = w
	}
	if h := float64(coverMaxHeight) / float64(height); h < scale {
		scale = h
	}

	dstW := int(float64(width) * scale)
	dstH := int(float64(height) * scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode cover: %w", err)
	}

	return buf.Bytes(), nil
}
