// file: internal/provider/bnf.go
// version: 1.0.0
// guid: 9f4c94b6-f908-48a4-834b-f64f0a0ee2e7

package provider

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rero/rero-invenio-thumbnails/internal/fetch"
	"github.com/rero/rero-invenio-thumbnails/internal/isbn"
	"github.com/rero/rero-invenio-thumbnails/internal/imageutil"
)

const (
	bnfBaseURL    = "http://catalogue.bnf.fr/couverture"
	bnfSRUBaseURL = "https://catalogue.bnf.fr/api/SRU"
)

// BNF fetches covers from the Bibliothèque nationale de France. The lookup
// is two-step: the ISBN is first converted to an ARK identifier through the
// SRU API, then the cover URL is built from the ARK and probed.
type BNF struct {
	baseURL    string
	sruBaseURL string
	appName    string
	coverPage  int
}

func init() {
	Register("bnf", func() Provider { return NewBNF() })
}

// NewBNF creates a BNF provider requesting front covers.
func NewBNF() *BNF {
	return &BNF{
		baseURL:    bnfBaseURL,
		sruBaseURL: bnfSRUBaseURL,
		appName:    "NE",
		coverPage:  1,
	}
}

// NewBNFWithBaseURLs creates a provider with custom endpoints (for testing).
func NewBNFWithBaseURLs(baseURL, sruBaseURL string) *BNF {
	return &BNF{
		baseURL:    strings.TrimRight(baseURL, "/"),
		sruBaseURL: strings.TrimRight(sruBaseURL, "/"),
		appName:    "NE",
		coverPage:  1,
	}
}

// Name implements Provider.
func (b *BNF) Name() string { return "bnf" }

// BaseURL implements Provider.
func (b *BNF) BaseURL() string { return b.baseURL }

// isbnToARK queries the BNF SRU API and extracts the ARK identifier from the
// UNIMARC record's id attribute. Returns "" when no record matches.
func (b *BNF) isbnToARK(cleanISBN string) (string, error) {
	sruURL := fmt.Sprintf(
		"%s?version=1.2&operation=searchRetrieve&query=%s&recordSchema=unimarcxchange&maximumRecords=1",
		b.sruBaseURL,
		url.QueryEscape(fmt.Sprintf(`bib.isbn all "%s"`, cleanISBN)),
	)

	resp, err := fetch.Get(sruURL, nil, 10*time.Second)
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
	return arkFromSRU(body), nil
}

// arkFromSRU scans the SRU XML for a MARC record element carrying an id
// attribute, which holds the ARK.
func arkFromSRU(body []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "record" {
			continue
		}
		for _, attr := range se.Attr {
			if attr.Name.Local == "id" && attr.Value != "" {
				return attr.Value
			}
		}
	}
}

// ThumbnailURL implements Provider.
func (b *BNF) ThumbnailURL(identifier string) (string, error) {
	clean := isbn.Normalize(identifier)

	ark, err := b.isbnToARK(clean)
	if err != nil {
		return "", err
	}
	if ark == "" {
		return "", nil
	}

	coverURL := fmt.Sprintf("%s?appName=%s&idArk=%s&couverture=%d", b.baseURL, b.appName, ark, b.coverPage)
	resp, err := fetch.Get(coverURL, nil, 10*time.Second)
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
	if !imageutil.Valid(content, minDimension(), b.Name(), clean) {
		return "", nil
	}
	return coverURL, nil
}
