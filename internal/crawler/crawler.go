package crawler

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/campusrag/campusrag/internal/core/domain"
	"github.com/campusrag/campusrag/internal/core/ports/driven"
	"github.com/campusrag/campusrag/internal/logger"
)

// Ensure Crawler implements the interface.
var _ driven.Crawler = (*Crawler)(nil)

// Traversal limits.
const (
	// MaxLinksPerPage caps how many outbound links are followed per page.
	MaxLinksPerPage = 10

	// MinContentLength is the threshold below which a page is discarded
	// as noise.
	MinContentLength = 100
)

// disallowedExtensions lists binary file extensions that are never fetched.
var disallowedExtensions = map[string]struct{}{
	".pdf": {}, ".zip": {}, ".doc": {}, ".docx": {}, ".ppt": {}, ".pptx": {},
	".xls": {}, ".xlsx": {}, ".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {},
	".mp4": {}, ".mp3": {}, ".exe": {}, ".rar": {}, ".tar": {}, ".gz": {},
}

// PageFetcher retrieves and extracts one page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL, userAgent string) (*domain.CrawledDocument, error)
}

// Crawler traverses the link graph reachable from seed URLs under hard
// depth and page limits. Traversal is iterative over an explicit
// frontier so deep or cyclic site structures cannot exhaust the stack.
// One run fetches sequentially; independent runs share no mutable state.
type Crawler struct {
	fetcher PageFetcher
}

// New creates a crawler driving the given fetcher.
func New(fetcher PageFetcher) *Crawler {
	return &Crawler{fetcher: fetcher}
}

// frontierItem is one pending URL with its link distance from a seed.
type frontierItem struct {
	url   string
	depth int
}

// Crawl performs one bounded run. Multi-seed targets share one visited
// set and one page budget, processed in seed order. Fetch failures are
// recorded in the report and skipped; the run never aborts on a single
// page.
func (c *Crawler) Crawl(ctx context.Context, target domain.CrawlTarget) ([]domain.CrawledDocument, *domain.CrawlReport, error) {
	if err := target.Validate(); err != nil {
		return nil, nil, fmt.Errorf("crawl target: %w", err)
	}

	allowed, err := c.allowedHosts(target)
	if err != nil {
		return nil, nil, err
	}

	visited := make(map[string]struct{})
	frontier := make([]frontierItem, 0, len(target.Seeds))
	for _, seed := range target.Seeds {
		frontier = append(frontier, frontierItem{url: seed, depth: 0})
	}

	report := &domain.CrawlReport{BySourceType: make(map[domain.SourceType]int)}
	var docs []domain.CrawledDocument
	var totalContent int
	fetched := 0

	logger.Section("Crawl")
	logger.Info("Seeds: %d, maxDepth: %d, maxPages: %d", len(target.Seeds), target.MaxDepth, target.MaxPages)

	for len(frontier) > 0 && fetched < target.MaxPages {
		if err := ctx.Err(); err != nil {
			return docs, report, err
		}

		item := frontier[0]
		frontier = frontier[1:]

		normalized, err := NormalizeURL(item.url)
		if err != nil {
			logger.Debug("Skipping unparseable URL %q: %v", item.url, err)
			continue
		}
		if _, ok := visited[normalized]; ok {
			continue
		}
		visited[normalized] = struct{}{}

		if !c.urlAllowed(normalized, allowed) {
			// A discovered link outside the allowlist is routine; a seed
			// outside it is a caller mistake worth reporting.
			if item.depth == 0 {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", normalized, domain.ErrDisallowedURL))
			}
			logger.Debug("Skipping disallowed URL: %s", normalized)
			continue
		}

		fetchCtx, cancel := ctx, context.CancelFunc(func() {})
		if target.Timeout > 0 {
			fetchCtx, cancel = context.WithTimeout(ctx, target.Timeout)
		}

		doc, err := c.fetcher.Fetch(fetchCtx, normalized, target.UserAgent)
		cancel()
		fetched++
		if err != nil {
			logger.Warn("Fetch failed for %s: %v", normalized, err)
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", normalized, err))
			continue
		}

		if doc.ContentLength() > MinContentLength {
			docs = append(docs, *doc)
			totalContent += doc.ContentLength()
			report.BySourceType[doc.SourceType]++
			logger.Debug("Kept %s (%d chars, %s)", doc.URL, doc.ContentLength(), doc.SourceType)
		} else {
			logger.Debug("Dropped %s: %d chars below threshold", doc.URL, doc.ContentLength())
		}

		if item.depth < target.MaxDepth {
			followed := 0
			for _, link := range doc.Links {
				if followed >= MaxLinksPerPage {
					break
				}
				if _, ok := visited[link]; ok {
					continue
				}
				if !c.urlAllowed(link, allowed) {
					continue
				}
				frontier = append(frontier, frontierItem{url: link, depth: item.depth + 1})
				followed++
			}
		}
	}

	report.Documents = len(docs)
	report.URLsVisited = fetched
	if len(docs) > 0 {
		report.AvgContentLength = float64(totalContent) / float64(len(docs))
	}

	logger.Info("Crawl done: %d documents from %d fetches, %d errors",
		report.Documents, report.URLsVisited, len(report.Errors))
	return docs, report, nil
}

// allowedHosts builds the host allowlist: the configured domains, or the
// seed hosts when none are configured.
func (c *Crawler) allowedHosts(target domain.CrawlTarget) ([]string, error) {
	if len(target.AllowedDomains) > 0 {
		hosts := make([]string, len(target.AllowedDomains))
		for i, d := range target.AllowedDomains {
			hosts[i] = strings.ToLower(strings.TrimPrefix(d, "www."))
		}
		return hosts, nil
	}

	var hosts []string
	for _, seed := range target.Seeds {
		u, err := url.Parse(seed)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("%w: seed %q", domain.ErrInvalidInput, seed)
		}
		hosts = append(hosts, strings.ToLower(strings.TrimPrefix(u.Host, "www.")))
	}
	return hosts, nil
}

// urlAllowed reports whether a normalised URL is within the domain
// allowlist and free of disallowed binary extensions.
func (c *Crawler) urlAllowed(normalized string, allowed []string) bool {
	u, err := url.Parse(normalized)
	if err != nil {
		return false
	}

	host := strings.TrimPrefix(u.Host, "www.")
	ok := false
	for _, a := range allowed {
		if host == a || strings.HasSuffix(host, "."+a) {
			ok = true
			break
		}
	}
	if !ok {
		return false
	}

	ext := strings.ToLower(path.Ext(u.Path))
	if _, bad := disallowedExtensions[ext]; bad {
		return false
	}
	return true
}
