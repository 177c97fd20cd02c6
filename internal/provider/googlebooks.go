// file: internal/provider/googlebooks.go
// version: 1.0.0
// guid: e47f9389-3947-42a9-9083-517a08c6ac8c

package provider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rero/rero-invenio-thumbnails/internal/fetch"
	"github.com/rero/rero-invenio-thumbnails/internal/isbn"
	"github.com/rero/rero-invenio-thumbnails/internal/imageutil"
)

const googleBooksBaseURL = "https://books.google.com/books"

// GoogleBooks fetches preview thumbnails through the Google Books viewapi
// endpoint, which answers in JSONP callback format.
type GoogleBooks struct {
	baseURL string
}

func init() {
	Register("google books", func() Provider { return NewGoogleBooks() })
}

// NewGoogleBooks creates a Google Books provider.
func NewGoogleBooks() *GoogleBooks {
	return &GoogleBooks{baseURL: googleBooksBaseURL}
}

// NewGoogleBooksWithBaseURL creates a provider with a custom base URL (for testing).
func NewGoogleBooksWithBaseURL(baseURL string) *GoogleBooks {
	return &GoogleBooks{baseURL: strings.TrimRight(baseURL, "/")}
}

// Name implements Provider.
func (g *GoogleBooks) Name() string { return "google books" }

// BaseURL implements Provider.
func (g *GoogleBooks) BaseURL() string { return g.baseURL }

type googleBooksEntry struct {
	ThumbnailURL string `json:"thumbnail_url"`
}

// stripJSONP unwraps a `book({...});` payload to its JSON body.
func stripJSONP(text string) (string, bool) {
	start := strings.Index(text, "(")
	end := strings.LastIndex(text, ")")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return text[start+1 : end], true
}

// ThumbnailURL implements Provider.
func (g *GoogleBooks) ThumbnailURL(identifier string) (string, error) {
	clean := isbn.Normalize(identifier)
	url := fmt.Sprintf("%s?jscmd=viewapi&callback=book&bibkeys=%s", g.baseURL, clean)

	resp, err := fetch.Get(url, nil, fetch.DefaultTimeout)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return "", nil
	}
	body, err := readBody(resp)
	if err != nil {
		return "", err
	}

	jsonText, ok := stripJSONP(strings.TrimSpace(string(body)))
	if !ok {
		return "", fmt.Errorf("unexpected Google Books JSONP format for ISBN %s", clean)
	}

	var entries map[string]googleBooksEntry
	if err := json.Unmarshal([]byte(jsonText), &entries); err != nil {
		return "", fmt.Errorf("failed to parse Google Books JSONP payload: %w", err)
	}

	thumbnailURL := entries[clean].ThumbnailURL
	if thumbnailURL == "" {
		return "", nil
	}

	// The viewapi endpoint sometimes advertises thumbnails that do not
	// exist, so the URL has to be probed before success is declared.
	imgResp, err := fetch.Get(thumbnailURL, nil, fetch.DefaultTimeout)
	if err != nil {
		return "", nil
	}
	if imgResp.StatusCode != http.StatusOK {
		imgResp.Body.Close()
		return "", nil
	}
	content, err := readBody(imgResp)
	if err != nil {
		return "", nil
	}
	if !imageutil.Valid(content, minDimension(), g.Name(), clean) {
		return "", nil
	}
	return thumbnailURL, nil
}
