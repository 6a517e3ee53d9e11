package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/campusrag/campusrag/internal/core/domain"
)

var askInteractive bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed websites",
	Long: `Answers a question using passages retrieved from the indexed websites
and the configured language model. Sources are cited with every answer.

With --interactive (or no question), starts a conversation loop that
keeps recent exchanges as context for follow-up questions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&askInteractive, "interactive", "i", false, "start an interactive conversation")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if len(args) == 1 && !askInteractive {
		return askOnce(cmd, args[0], nil)
	}
	return askLoop(cmd)
}

func askOnce(cmd *cobra.Command, question string, history []domain.ChatMessage) error {
	answer, err := answerService.Ask(cmd.Context(), question, history)
	if err != nil {
		return fmt.Errorf("answer: %w", err)
	}
	printAnswer(cmd, answer)
	return nil
}

// askLoop runs an interactive conversation, carrying recent exchanges
// as history.
func askLoop(cmd *cobra.Command) error {
	cmd.Println("Ask about the indexed websites. Empty line or Ctrl-D exits.")
	cmd.Println()

	var history []domain.ChatMessage
	scanner := bufio.NewScanner(cmd.InOrStdin())
	prompt := color.New(color.FgCyan, color.Bold).SprintFunc()

	for {
		cmd.Printf("%s ", prompt(">"))
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			return nil
		}

		answer, err := answerService.Ask(cmd.Context(), question, history)
		if err != nil {
			cmd.PrintErrf("error: %v\n", err)
			continue
		}
		printAnswer(cmd, answer)

		history = append(history,
			domain.ChatMessage{Role: domain.RoleUser, Content: question},
			domain.ChatMessage{Role: domain.RoleAssistant, Content: answer.Text},
		)
	}
}

func printAnswer(cmd *cobra.Command, answer *domain.Answer) {
	if answer.Degraded {
		color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(),
			"(language model unavailable, showing retrieved passages)")
	}

	cmd.Println()
	cmd.Println(answer.Text)
	cmd.Println()

	if len(answer.Sources) > 0 {
		faint := color.New(color.Faint).FprintfFunc()
		faint(cmd.OutOrStdout(), "Sources:\n")
		for _, src := range answer.Sources {
			faint(cmd.OutOrStdout(), "  %s (%s, %.0f%%)\n", src.Title, src.URL, src.Relevance*100)
		}
	}

	color.New(color.Faint).Fprintf(cmd.OutOrStdout(), "Answered in %s\n",
		answer.ProcessingTime.Round(10*time.Millisecond))
	cmd.Println()
}
