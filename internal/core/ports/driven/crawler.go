package driven

import (
	"context"

	"github.com/campusrag/campusrag/internal/core/domain"
)

// Crawler performs one bounded crawl run over the link graph reachable
// from the target's seeds. A page failure is recorded in the report and
// skipped; the run itself only fails on invalid input or cancellation.
type Crawler interface {
	// Crawl fetches pages breadth-first from the seeds, honouring the
	// target's depth, page and domain limits. Returned documents all
	// exceed the minimum content length.
	Crawl(ctx context.Context, target domain.CrawlTarget) ([]domain.CrawledDocument, *domain.CrawlReport, error)
}
