// file: internal/imageutil/validate.go
// version: 1.0.0
// guid: 42d08b4a-5bd5-4aa6-918d-57cce016b09f

package imageutil

import (
	"bytes"
	"image"
	"log/slog"

	// Register decoders for the formats cover providers return.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// DefaultMinDimension filters out the 1x1 placeholder images some providers
// return instead of a 404.
const DefaultMinDimension = 10

// Valid reports whether content is a decodable image with both dimensions of
// at least minDim pixels. It never panics; corrupt or unsupported data is
// simply rejected. The provider name and ISBN are only used for logging.
func Valid(content []byte, minDim int, provider, isbn string) bool {
	if len(content) == 0 {
		slog.Debug("empty image data", "provider", provider, "isbn", isbn)
		return false
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		slog.Debug("invalid image data", "provider", provider, "isbn", isbn, "error", err)
		return false
	}

	if cfg.Width < minDim || cfg.Height < minDim {
		slog.Debug("placeholder image dimensions",
			"provider", provider, "isbn", isbn,
			"width", cfg.Width, "height", cfg.Height)
		return false
	}
	return true
}
