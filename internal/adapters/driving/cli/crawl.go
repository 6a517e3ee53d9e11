package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/campusrag/campusrag/internal/core/domain"
)

var (
	crawlDepth    int
	crawlMaxPages int
	crawlDomains  []string
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [seed-url...]",
	Short: "Crawl websites and rebuild the search index",
	Long: `Crawls the given seed URLs (or the configured crawl.seeds when none
are given), splits the extracted text into chunks, embeds them and
rebuilds the vector collection.

Crawling stays within the seed domains by default; --domain replaces
the allowlist with the given domains.`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().IntVar(&crawlDepth, "depth", 0, "link depth to follow from each seed")
	crawlCmd.Flags().IntVar(&crawlMaxPages, "max-pages", 0, "page budget per crawl target")
	crawlCmd.Flags().StringArrayVar(&crawlDomains, "domain", nil, "allowed domain, replaces the seed-host allowlist (repeatable)")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	seeds := args
	if len(seeds) == 0 {
		seeds = configStore.GetStringSlice("crawl.seeds")
	}
	if len(seeds) == 0 {
		return fmt.Errorf("no seed URLs given and none configured under crawl.seeds")
	}

	depth := crawlDepth
	if depth <= 0 {
		if depth = configStore.GetInt("crawl.max_depth"); depth <= 0 {
			depth = 2
		}
	}
	maxPages := crawlMaxPages
	if maxPages <= 0 {
		if maxPages = configStore.GetInt("crawl.max_pages"); maxPages <= 0 {
			maxPages = 30
		}
	}

	// One target per seed so disjoint sites crawl in parallel.
	targets := make([]domain.CrawlTarget, 0, len(seeds))
	for _, seed := range seeds {
		targets = append(targets, domain.CrawlTarget{
			Seeds:          []string{seed},
			AllowedDomains: crawlDomains,
			MaxDepth:       depth,
			MaxPages:       maxPages,
		})
	}

	ctx := cmd.Context()
	jobID, err := ingestOrchestrator.Start(ctx, targets)
	if err != nil {
		return fmt.Errorf("start ingestion: %w", err)
	}

	cmd.Printf("Ingestion job %s started (%d seeds, depth %d, %d pages per seed)\n",
		jobID, len(seeds), depth, maxPages)

	job, err := waitForIngest(ctx, cmd, jobID)
	if err != nil {
		return err
	}

	if job.State == domain.JobStateFailed {
		return fmt.Errorf("ingestion failed: %s", job.Error)
	}

	// Persist the fitted model so ask/search work in later processes.
	if tfidfModel != nil {
		if err := tfidfModel.Save(modelPath); err != nil {
			return fmt.Errorf("save embedding model: %w", err)
		}
	}

	printCrawlSummary(cmd, job)
	return nil
}

// waitForIngest polls the job until it finishes.
func waitForIngest(ctx context.Context, cmd *cobra.Command, jobID string) (*domain.IngestJob, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var lastState domain.JobState
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		job, err := ingestOrchestrator.Status(ctx, jobID)
		if err != nil {
			return nil, fmt.Errorf("poll job: %w", err)
		}
		if job.State != lastState {
			lastState = job.State
			cmd.Printf("  %s...\n", job.State)
		}
		if job.State == domain.JobStateCompleted || job.State == domain.JobStateFailed {
			return job, nil
		}
	}
}

func printCrawlSummary(cmd *cobra.Command, job *domain.IngestJob) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	cmd.Println()
	cmd.Printf("%s %d documents, %d chunks indexed in %s\n",
		green("Done:"), job.Documents, job.Chunks,
		job.FinishedAt.Sub(job.StartedAt).Round(time.Millisecond))

	for _, src := range job.Sources {
		cmd.Printf("  %-40s %3d documents, %4d chunks", src.Seed, src.Documents, src.Chunks)
		if src.Errors > 0 {
			cmd.Printf("  %s", yellow(fmt.Sprintf("(%d pages skipped)", src.Errors)))
		}
		cmd.Println()
	}
}
