// file: internal/provider/googleapi.go
// version: 1.0.0
// guid: 461bbcbd-50d2-4a9a-b6d7-7cdd8ae93eae

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

const googleAPIBaseURL = "https://www.googleapis.com/books/v1/volumes"

// GoogleAPI fetches thumbnails through the Google Books volumes API. Only an
// unambiguous single-volume match is accepted.
type GoogleAPI struct {
	baseURL string
}

func init() {
	Register("google api", func() Provider { return NewGoogleAPI() })
}

// NewGoogleAPI creates a Google Books API provider.
func NewGoogleAPI() *GoogleAPI {
	return &GoogleAPI{baseURL: googleAPIBaseURL}
}

// NewGoogleAPIWithBaseURL creates a provider with a custom base URL (for testing).
func NewGoogleAPIWithBaseURL(baseURL string) *GoogleAPI {
	return &GoogleAPI{baseURL: strings.TrimRight(baseURL, "/")}
}

// Name implements Provider.
func (g *GoogleAPI) Name() string { return "google api" }

// BaseURL implements Provider.
func (g *GoogleAPI) BaseURL() string { return g.baseURL }

type googleVolumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			ImageLinks struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// ThumbnailURL implements Provider.
func (g *GoogleAPI) ThumbnailURL(identifier string) (string, error) {
	clean := isbn.Normalize(identifier)
	url := fmt.Sprintf("%s?q=isbn:%s", g.baseURL, clean)

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

	var volumes googleVolumesResponse
	if err := json.Unmarshal(body, &volumes); err != nil {
		return "", fmt.Errorf("failed to parse Google Books API response: %w", err)
	}
	// Ambiguous multi-matches are rejected rather than guessed at.
	if volumes.TotalItems != 1 || len(volumes.Items) == 0 {
		return "", nil
	}
	thumbnailURL := volumes.Items[0].VolumeInfo.ImageLinks.Thumbnail
	if thumbnailURL == "" {
		return "", nil
	}

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
