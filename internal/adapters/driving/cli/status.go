package cli

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index and service health",
	Long: `Reports the state of the vector collection, the embedding model and
the language model service.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	cmd.Printf("Collection:      %s\n", vectorStore.Collection())
	if count, err := vectorStore.Count(ctx); err != nil {
		cmd.Printf("Vector store:    %s (%v)\n", red("unreachable"), err)
	} else {
		cmd.Printf("Vector store:    %s (%d chunks indexed)\n", green("ok"), count)
	}

	cmd.Printf("Embedding:       %s", embedder.ModelName())
	if dims := embedder.Dimensions(); dims > 0 {
		cmd.Printf(" (%d dimensions)", dims)
	} else {
		cmd.Printf(" (not fitted, run crawl first)")
	}
	cmd.Println()

	if llmService == nil {
		cmd.Printf("Language model:  %s\n", red("disabled"))
		return nil
	}
	if err := llmService.Ping(ctx); err != nil {
		cmd.Printf("Language model:  %s (%v)\n", red("unreachable"), err)
		cmd.Println("Answers will degrade to retrieved passages until the model is back.")
		return nil
	}
	cmd.Printf("Language model:  %s (%s)\n", green("ok"), llmService.ModelName())

	if models, err := llmService.ListModels(ctx); err == nil && len(models) > 0 {
		cmd.Printf("Models on host:  %v\n", models)
	}
	return nil
}
