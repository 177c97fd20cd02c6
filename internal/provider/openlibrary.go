// file: internal/provider/openlibrary.go
// version: 1.0.0
// guid: e830dfe7-1d2d-4afb-a4cc-cb72e241e868

package provider

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rero/rero-invenio-thumbnails/internal/fetch"
	"github.com/rero/rero-invenio-thumbnails/internal/isbn"
	"github.com/rero/rero-invenio-thumbnails/internal/imageutil"
)

const openLibraryBaseURL = "https://covers.openlibrary.org"

// OpenLibrary fetches covers from the Open Library Covers API. The
// default=false parameter makes the API answer 404 instead of a placeholder
// image when no cover exists.
type OpenLibrary struct {
	baseURL string
	size    string
}

func init() {
	Register("open library", func() Provider { return NewOpenLibrary() })
}

// NewOpenLibrary creates an Open Library provider requesting large covers.
func NewOpenLibrary() *OpenLibrary {
	return &OpenLibrary{baseURL: openLibraryBaseURL, size: "L"}
}

// NewOpenLibraryWithBaseURL creates a provider with a custom base URL (for testing).
func NewOpenLibraryWithBaseURL(baseURL string) *OpenLibrary {
	return &OpenLibrary{baseURL: strings.TrimRight(baseURL, "/"), size: "L"}
}

// Name implements Provider.
func (o *OpenLibrary) Name() string { return "open library" }

// BaseURL implements Provider.
func (o *OpenLibrary) BaseURL() string { return o.baseURL }

// ThumbnailURL implements Provider.
func (o *OpenLibrary) ThumbnailURL(identifier string) (string, error) {
	clean := isbn.Normalize(identifier)
	url := fmt.Sprintf("%s/b/isbn/%s-%s.jpg?default=false", o.baseURL, clean, o.size)

	resp, err := fetch.Get(url, nil, fetch.DefaultTimeout)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return "", nil
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		resp.Body.Close()
		return "", nil
	}

	content, err := readBody(resp)
	if err != nil {
		return "", err
	}
	if !imageutil.Valid(content, minDimension(), o.Name(), clean) {
		return "", nil
	}
	return url, nil
}
