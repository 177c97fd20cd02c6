// file: internal/provider/dnb.go
// version: 1.0.0
// guid: 62c143c6-b30e-4f12-b77a-40d2ebad242e

package provider

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rero/rero-invenio-thumbnails/internal/fetch"
	"github.com/rero/rero-invenio-thumbnails/internal/isbn"
	"github.com/rero/rero-invenio-thumbnails/internal/imageutil"
)

const (
	dnbBaseURL    = "https://portal.dnb.de/opac/mvb/cover"
	dnbSRUBaseURL = "https://services.dnb.de/sru/dnb"
)

// dnbURLKeywords mark a MARC 856$u value as a cover link.
var dnbURLKeywords = []string{"cover", "thumbnail", "bild"}

// dnbNoteKeywords mark a MARC 856$x note as describing a cover link.
var dnbNoteKeywords = []string{"cover", "umschlag", "thumbnail"}

// DNB fetches covers from the Deutsche Nationalbibliothek. Candidate cover
// URLs are extracted from MARC21-XML records returned by the SRU interface
// and validated before being returned.
type DNB struct {
	baseURL    string
	sruBaseURL string
}

func init() {
	Register("dnb", func() Provider { return NewDNB() })
}

// NewDNB creates a DNB provider.
func NewDNB() *DNB {
	return &DNB{baseURL: dnbBaseURL, sruBaseURL: dnbSRUBaseURL}
}

// NewDNBWithBaseURLs creates a provider with custom endpoints (for testing).
func NewDNBWithBaseURLs(baseURL, sruBaseURL string) *DNB {
	return &DNB{
		baseURL:    strings.TrimRight(baseURL, "/"),
		sruBaseURL: strings.TrimRight(sruBaseURL, "/"),
	}
}

// Name implements Provider.
func (d *DNB) Name() string { return "dnb" }

// BaseURL implements Provider.
func (d *DNB) BaseURL() string { return d.baseURL }

type sruSearchResponse struct {
	Records []sruRecord `xml:"records>record"`
}

type sruRecord struct {
	Datafields []marcDatafield `xml:"recordData>record>datafield"`
}

type marcDatafield struct {
	Tag       string         `xml:"tag,attr"`
	Subfields []marcSubfield `xml:"subfield"`
}

type marcSubfield struct {
	Code string `xml:"code,attr"`
	Text string `xml:",chardata"`
}

func (f marcDatafield) subfield(code string) string {
	for _, sf := range f.Subfields {
		if sf.Code == code {
			return strings.TrimSpace(sf.Text)
		}
	}
	return ""
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// ThumbnailURL implements Provider. Cover URLs are searched in MARC field
// 856 (Electronic Location and Access); as a fallback, records carrying an
// ISBN in field 020 are probed through the static DNB cover endpoint.
func (d *DNB) ThumbnailURL(identifier string) (string, error) {
	clean := isbn.Normalize(identifier)
	if clean == "" {
		return "", nil
	}

	sruURL := fmt.Sprintf(
		"%s?version=1.1&operation=searchRetrieve&query=isbn=%s&recordSchema=MARC21-xml&maximumRecords=1",
		d.sruBaseURL, clean)

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

	var sru sruSearchResponse
	if err := xml.Unmarshal(body, &sru); err != nil {
		return "", fmt.Errorf("failed to parse DNB SRU response: %w", err)
	}

	for _, record := range sru.Records {
		for _, field := range record.Datafields {
			if field.Tag != "856" {
				continue
			}
			candidate := field.subfield("u")
			if candidate == "" {
				continue
			}
			if containsAny(strings.ToLower(candidate), dnbURLKeywords) {
				if d.validCover(candidate, clean) {
					return candidate, nil
				}
				continue
			}
			if note := strings.ToLower(field.subfield("x")); note != "" && containsAny(note, dnbNoteKeywords) {
				if d.validCover(candidate, clean) {
					return candidate, nil
				}
			}
		}

		// Some records only carry the ISBN; the static cover endpoint may
		// still have an image for it.
		for _, field := range record.Datafields {
			if field.Tag != "020" || field.subfield("a") == "" {
				continue
			}
			constructed := fmt.Sprintf("%s?isbn=%s", d.baseURL, clean)
			if d.validCover(constructed, clean) {
				return constructed, nil
			}
		}
	}
	return "", nil
}

// validCover downloads a candidate URL and confirms it is a real image.
func (d *DNB) validCover(url, cleanISBN string) bool {
	resp, err := fetch.Get(url, nil, 10*time.Second)
	if err != nil {
		return false
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return false
	}
	content, err := readBody(resp)
	if err != nil {
		return false
	}
	return imageutil.Valid(content, minDimension(), d.Name(), cleanISBN)
}
