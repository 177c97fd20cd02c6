// file: internal/imageutil/imageutil_test.go
// version: 1.0.0
// guid: 37d236fc-cf11-4d0c-9664-8246a10bef1b

package imageutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func decodeSize(t *testing.T, content []byte) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestValidExactMinimum(t *testing.T) {
	if !Valid(pngBytes(t, 10, 10), 10, "test", "123") {
		t.Error("10x10 image should pass with minDim=10")
	}
}

func TestValidBelowMinimum(t *testing.T) {
	if Valid(pngBytes(t, 9, 9), 10, "test", "123") {
		t.Error("9x9 image should fail with minDim=10")
	}
	if Valid(pngBytes(t, 1, 1), 10, "test", "123") {
		t.Error("1x1 placeholder should fail")
	}
	if Valid(pngBytes(t, 100, 9), 10, "test", "123") {
		t.Error("either dimension below minimum should fail")
	}
}

func TestValidEmpty(t *testing.T) {
	if Valid(nil, 10, "test", "123") {
		t.Error("nil content should fail")
	}
	if Valid([]byte{}, 10, "test", "123") {
		t.Error("empty content should fail")
	}
}

func TestValidGarbage(t *testing.T) {
	if Valid([]byte("this is not an image"), 10, "test", "123") {
		t.Error("non-image content should fail")
	}
}

func TestResizeBothDimensions(t *testing.T) {
	out, err := Resize(pngBytes(t, 200, 100), 50, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w, h := decodeSize(t, out)
	if w != 50 || h != 50 {
		t.Errorf("expected 50x50, got %dx%d", w, h)
	}
}

func TestResizePreservesAspectRatio(t *testing.T) {
	out, err := Resize(pngBytes(t, 200, 100), 0, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w, h := decodeSize(t, out)
	if w != 100 || h != 50 {
		t.Errorf("expected 100x50, got %dx%d", w, h)
	}

	out, err = Resize(pngBytes(t, 200, 100), 100, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w, h = decodeSize(t, out)
	if w != 100 || h != 50 {
		t.Errorf("expected 100x50, got %dx%d", w, h)
	}
}

func TestResizeNoDimensionsReturnsOriginal(t *testing.T) {
	src := pngBytes(t, 60, 40)
	out, err := Resize(src, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(src, out) {
		t.Error("expected original bytes back when no dimensions requested")
	}
}

func TestResizeGarbage(t *testing.T) {
	if _, err := Resize([]byte("not an image"), 50, 50); err == nil {
		t.Error("expected error resizing non-image content")
	}
}

func TestScaleZeroDimensionSource(t *testing.T) {
	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))
	out, resized := scale(empty, 50, 0)
	if resized {
		t.Error("zero-dimension source should be passed through unresized")
	}
	if out != image.Image(empty) {
		t.Error("expected the source image back")
	}
}

func TestResizeKeepsPNGFormat(t *testing.T) {
	out, err := Resize(pngBytes(t, 40, 40), 20, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if format != "png" {
		t.Errorf("expected png output for png input, got %q", format)
	}
}
