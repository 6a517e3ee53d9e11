package domain

import (
	"strings"
	"time"
)

// SourceType classifies the institutional site a page belongs to.
type SourceType string

// Known source types, inferred from URL and title keywords.
const (
	SourceTypeFaculty    SourceType = "faculty"
	SourceTypeDepartment SourceType = "department"
	SourceTypeLibrary    SourceType = "library"
	SourceTypeAdmissions SourceType = "admissions"
	SourceTypeWeb        SourceType = "web"
)

// CrawlTarget describes one bounded crawl run.
type CrawlTarget struct {
	// Seeds are the starting URLs. Multi-seed crawls share one visited
	// set and one page budget, processed in seed order.
	Seeds []string

	// AllowedDomains restricts traversal to these hosts. A subdomain of
	// an allowed domain is also allowed. Empty means the seed hosts only.
	AllowedDomains []string

	// MaxDepth is the maximum link distance from a seed. Zero crawls the
	// seeds only.
	MaxDepth int

	// MaxPages caps the number of pages fetched over the whole run.
	MaxPages int

	// Timeout bounds each individual page fetch.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// Validate checks the target limits.
func (t CrawlTarget) Validate() error {
	if len(t.Seeds) == 0 {
		return ErrInvalidInput
	}
	if t.MaxDepth < 0 || t.MaxPages < 1 {
		return ErrInvalidInput
	}
	return nil
}

// CrawledDocument is one extracted page. It is transient: the segmenter
// consumes it immediately after the crawl.
type CrawledDocument struct {
	// URL is the normalised page address.
	URL string

	// Title is the page title, or a host-derived fallback.
	Title string

	// Content is the extracted main text with navigation, scripts and
	// chrome removed.
	Content string

	// SourceType is inferred from the URL and title.
	SourceType SourceType

	// CrawledAt is when the page was fetched.
	CrawledAt time.Time

	// Links are the absolute, normalised outbound links found on the page.
	Links []string
}

// ContentLength returns the extracted text length in characters.
func (d CrawledDocument) ContentLength() int {
	return len(d.Content)
}

// sourceTypeKeywords maps URL/title substrings to source types, checked
// in order so the more specific classes win.
var sourceTypeKeywords = []struct {
	keyword string
	typ     SourceType
}{
	{"library", SourceTypeLibrary},
	{"knjiznica", SourceTypeLibrary},
	{"admission", SourceTypeAdmissions},
	{"enrol", SourceTypeAdmissions},
	{"upisi", SourceTypeAdmissions},
	{"department", SourceTypeDepartment},
	{"odjel", SourceTypeDepartment},
	{"zavod", SourceTypeDepartment},
	{"faculty", SourceTypeFaculty},
	{"fakultet", SourceTypeFaculty},
	{"staff", SourceTypeFaculty},
	{"nastavnici", SourceTypeFaculty},
}

// InferSourceType classifies a page from its URL and title.
func InferSourceType(url, title string) SourceType {
	haystack := strings.ToLower(url + " " + title)
	for _, kw := range sourceTypeKeywords {
		if strings.Contains(haystack, kw.keyword) {
			return kw.typ
		}
	}
	return SourceTypeWeb
}
