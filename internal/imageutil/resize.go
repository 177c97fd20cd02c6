// file: internal/imageutil/resize.go
// version: 1.0.0
// guid: 98129933-c87e-44f5-b328-7e684cb165fc

package imageutil

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Resize scales image content to the requested dimensions using Lanczos
// resampling. With both width and height set the image is resized to exactly
// that size; with only one set the other is computed to preserve the aspect
// ratio. With neither set, or when the decoded source reports a zero
// dimension, the original bytes are returned untouched.
func Resize(content []byte, width, height int) ([]byte, error) {
	if width <= 0 && height <= 0 {
		return content, nil
	}

	img, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image for resize: %w", err)
	}

	resized, ok := scale(img, width, height)
	if !ok {
		return content, nil
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, encodeFormat(format), imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}
	return buf.Bytes(), nil
}

// scale resizes a decoded image, reporting false when the source must be
// served as-is. A source with a zero dimension would divide by zero in the
// aspect ratio computation, so it is passed through unresized.
func scale(img image.Image, width, height int) (image.Image, bool) {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return img, false
	}
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return imaging.Resize(img, width, height, imaging.Lanczos), true
}

// encodeFormat keeps the source format when re-encoding, falling back to JPEG
// for anything imaging cannot write.
func encodeFormat(format string) imaging.Format {
	switch format {
	case "png":
		return imaging.PNG
	case "gif":
		return imaging.GIF
	default:
		return imaging.JPEG
	}
}
