// Package crawler implements bounded crawling of institutional websites:
// a goquery-backed page fetcher/extractor and an iterative frontier
// traversal with a visited set keyed by normalised URL.
package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/campusrag/campusrag/internal/core/domain"
)

// Default fetcher configuration.
const (
	DefaultFetchTimeout = 15 * time.Second
	DefaultUserAgent    = "campusrag/1.0 (+https://github.com/campusrag/campusrag)"

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 2 << 20
)

// chromeSelector matches page chrome removed before text extraction.
const chromeSelector = "script, style, noscript, nav, header, footer, aside, iframe, form, svg"

// Fetcher retrieves one page and extracts its title, main text and
// outbound links. Fetches are paced by a shared rate limiter to bound
// load on target sites.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// FetcherConfig holds fetcher configuration.
type FetcherConfig struct {
	// Timeout bounds each request (default 15s).
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// RequestsPerSecond paces fetches (default 4).
	RequestsPerSecond float64
}

// NewFetcher creates a page fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultFetchTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 4
	}

	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		userAgent: cfg.UserAgent,
	}
}

// Fetch retrieves the page at rawURL and extracts a document from it.
// Non-HTML responses fail with domain.ErrNotHTML. The userAgent argument
// overrides the configured one when non-empty.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, userAgent string) (*domain.CrawledDocument, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if userAgent == "" {
		userAgent = f.userAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "application/xhtml") {
		return nil, fmt.Errorf("fetch %s: content type %q: %w", rawURL, contentType, domain.ErrNotHTML)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}

	// The final URL after redirects is the document's identity.
	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	normalized, err := NormalizeURL(finalURL)
	if err != nil {
		normalized = finalURL
	}

	title := extractTitle(doc, normalized)

	doc.Find(chromeSelector).Remove()
	links := extractLinks(doc, resp.Request.URL)
	content := normalizeWhitespace(doc.Find("body").Text())

	return &domain.CrawledDocument{
		URL:        normalized,
		Title:      title,
		Content:    content,
		SourceType: domain.InferSourceType(normalized, title),
		CrawledAt:  time.Now(),
		Links:      links,
	}, nil
}

// extractTitle returns the page title, falling back to the host name.
func extractTitle(doc *goquery.Document, pageURL string) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title != "" {
		return title
	}
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		return u.Host
	}
	return pageURL
}

// extractLinks collects absolute, normalised http(s) outbound links,
// deduplicated in document order.
func extractLinks(doc *goquery.Document, base *url.URL) []string {
	var links []string
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") ||
			strings.HasPrefix(href, "javascript:") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}

		normalized, err := NormalizeURL(abs.String())
		if err != nil {
			return
		}
		if _, dup := seen[normalized]; dup {
			return
		}
		seen[normalized] = struct{}{}
		links = append(links, normalized)
	})

	return links
}

// NormalizeURL canonicalises a URL for visited-set comparison: the
// fragment is stripped, the trailing slash trimmed and the host
// lowercased.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidInput, rawURL)
	}

	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	// Keep a bare root slash when a query follows, so the canonical form
	// stays host/?query rather than host?query.
	if u.Path != "/" || u.RawQuery == "" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}
	return u.String(), nil
}

// normalizeWhitespace collapses runs of whitespace and trims each line,
// dropping empty lines.
func normalizeWhitespace(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
