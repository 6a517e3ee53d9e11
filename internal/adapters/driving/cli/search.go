package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/campusrag/campusrag/internal/core/domain"
)

var (
	searchLimit        int
	searchSourceType   string
	searchMinRelevance float64
	searchJSON         bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the indexed websites",
	Long: `Performs semantic search over the indexed chunks and prints the
closest matches with their source pages and relevance scores.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().StringVar(&searchSourceType, "source", "", "restrict to one source type (faculty, department, library, admissions, web)")
	searchCmd.Flags().Float64Var(&searchMinRelevance, "min-relevance", 0, "drop results below this relevance (0..1)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	opts := domain.SearchOptions{
		Limit:        searchLimit,
		SourceType:   domain.SourceType(searchSourceType),
		MinRelevance: searchMinRelevance,
	}

	results, err := searchService.Search(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	for i, r := range results {
		cmd.Printf("[%d] %s  %s\n", i+1, bold(r.Metadata.Title),
			faint(fmt.Sprintf("(%.0f%%, %s)", r.Relevance*100, r.Metadata.SourceType)))
		cmd.Printf("    %s\n", r.Metadata.URL)
		cmd.Printf("    %s\n\n", snippetLine(r.Content))
	}
	return nil
}

// snippetLine flattens a chunk to one display line.
func snippetLine(text string) string {
	const limit = 160
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > limit {
		text = string(runes[:limit]) + "..."
	}
	return text
}
