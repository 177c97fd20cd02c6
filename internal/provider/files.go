// file: internal/provider/files.go
// version: 1.0.0
// guid: ac7302f4-142b-47a2-a452-8b1625ba7be1

package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rero/rero-invenio-thumbnails/internal/config"
	"github.com/rero/rero-invenio-thumbnails/internal/isbn"
)

// filesExtensions are the image extensions the files provider searches for,
// in priority order.
var filesExtensions = []string{".jpg", ".jpeg", ".png"}

// Files serves thumbnails from a local directory. It is the only provider
// that can answer without touching the network, so the image materializer
// gives it a fast-path opportunity before consulting the chain.
type Files struct {
	dir       string
	publicURL string
}

func init() {
	Register("files", func() Provider { return NewFiles() })
}

// NewFiles creates a files provider from the application configuration.
func NewFiles() *Files {
	return &Files{
		dir:       config.AppConfig.FilesDir,
		publicURL: config.AppConfig.PublicURL,
	}
}

// NewFilesWithDir creates a files provider rooted at a specific directory.
func NewFilesWithDir(dir, publicURL string) *Files {
	return &Files{dir: dir, publicURL: publicURL}
}

// Name implements Provider.
func (f *Files) Name() string { return "files" }

// BaseURL implements Provider.
func (f *Files) BaseURL() string { return f.publicURL }

// Path returns the local file path of the thumbnail for isbn, or "" when no
// file exists. The HTTP boundary uses it to serve bytes directly.
func (f *Files) Path(identifier string) string {
	clean := isbn.Normalize(identifier)
	if f.dir == "" {
		return ""
	}
	if info, err := os.Stat(f.dir); err != nil || !info.IsDir() {
		return ""
	}
	for _, ext := range filesExtensions {
		path := filepath.Join(f.dir, clean+ext)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// ThumbnailURL implements Provider. The returned URL points at this
// service's own thumbnail endpoint rather than an external source.
func (f *Files) ThumbnailURL(identifier string) (string, error) {
	clean := isbn.Normalize(identifier)
	if f.Path(clean) == "" {
		return "", nil
	}
	base := strings.TrimRight(f.publicURL, "/")
	if base == "" {
		base = "http://localhost"
	}
	return fmt.Sprintf("%s/api/thumbnails/%s", base, clean), nil
}
