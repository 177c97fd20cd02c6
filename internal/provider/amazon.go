// file: internal/provider/amazon.go
// version: 1.0.0
// guid: 4975c3d9-750f-4ab5-8191-f95d23eae8ff

package provider

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/viper"

	"github.com/rero/rero-invenio-thumbnails/internal/fetch"
	"github.com/rero/rero-invenio-thumbnails/internal/isbn"
	"github.com/rero/rero-invenio-thumbnails/internal/imageutil"
)

const amazonBaseURL = "https://images-na.ssl-images-amazon.com"

// Amazon fetches product images from the static Amazon image host. The host
// only understands ISBN-10, so ISBN-13 input is converted first. The country
// code selects the marketplace ("08" = amazon.com) and the size code the
// rendition ("SCLZZZZZZZ" is the ~500x500 standard image).
type Amazon struct {
	baseURL string
	country string
	size    string
}

func init() {
	Register("amazon", func() Provider { return NewAmazon() })
}

// NewAmazon creates an Amazon provider using the configured marketplace and
// image size.
func NewAmazon() *Amazon {
	country := viper.GetString("amazon.country")
	if country == "" {
		country = "08"
	}
	size := viper.GetString("amazon.size")
	if size == "" {
		size = "SCLZZZZZZZ"
	}
	return &Amazon{baseURL: amazonBaseURL, country: country, size: size}
}

// NewAmazonWithBaseURL creates a provider with a custom base URL (for testing).
func NewAmazonWithBaseURL(baseURL string) *Amazon {
	return &Amazon{
		baseURL: strings.TrimRight(baseURL, "/"),
		country: "08",
		size:    "SCLZZZZZZZ",
	}
}

// Name implements Provider.
func (a *Amazon) Name() string { return "amazon" }

// BaseURL implements Provider.
func (a *Amazon) BaseURL() string { return a.baseURL }

// ThumbnailURL implements Provider.
func (a *Amazon) ThumbnailURL(identifier string) (string, error) {
	clean := isbn.Normalize(identifier)
	isbn10, err := isbn.ToISBN10(clean)
	if err != nil {
		return "", fmt.Errorf("cannot build Amazon image URL: %w", err)
	}

	url := fmt.Sprintf("%s/images/P/%s.%s._%s_.jpg", a.baseURL, isbn10, a.country, a.size)
	// Amazon rejects requests without a browser-like User-Agent.
	headers := map[string]string{
		"User-Agent":      "Mozilla/5.0",
		"Accept-Language": "en-US,en;q=0.9",
	}

	resp, err := fetch.Get(url, headers, fetch.DefaultTimeout)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return "", nil
	}
	content, err := readBody(resp)
	if err != nil {
		return "", err
	}
	if !imageutil.Valid(content, minDimension(), a.Name(), isbn10) {
		return "", nil
	}
	return url, nil
}
