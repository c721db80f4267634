// ABOUTME: CLI commands for personal records.
// ABOUTME: Supports list, check (record if it beats the best), and seen subcommands.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/journey/internal/models"
)

var (
	prExercise string
	prType     string
	prNotes    string
)

var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Manage personal records",
	Long: `Personal records. A max_weight PR is recorded automatically whenever
'journey exercise add' beats your previous best; use 'pr check' for any
other kind of record. Every PR is kept as history.

EXAMPLES:

  journey pr list
  journey pr list --exercise "Bench Press"
  journey pr check "5k Run" 1320 --type best_time_sec
  journey pr seen                         # Acknowledge new PRs`,
}

var prListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List personal records",
	RunE: func(cmd *cobra.Command, args []string) error {
		prs, err := repo.ListPRs(cmd.Context(), prExercise, prType)
		if err != nil {
			return fmt.Errorf("failed to list PRs: %w", err)
		}

		if len(prs) == 0 {
			fmt.Println("No PRs found.")
			return nil
		}

		for _, p := range prs {
			printPR(p)
		}
		return nil
	},
}

var prCheckCmd = &cobra.Command{
	Use:   "check <exercise> <value>",
	Short: "Record a PR if the value beats the current best",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid value: %s", args[1])
		}

		pr, err := svc.CheckAndAddPR(cmd.Context(), args[0], prType, value, prNotes)
		if err != nil {
			return fmt.Errorf("failed to check PR: %w", err)
		}

		if pr == nil {
			fmt.Printf("No new PR: %.1f does not beat your best %s for %s.\n", value, prType, args[0])
			return nil
		}
		color.Magenta("🏆 New PR: %s %s %.1f", pr.ExerciseName, pr.PRType, pr.Value)
		printPR(pr)
		return nil
	},
}

var prSeenCmd = &cobra.Command{
	Use:   "seen",
	Short: "Mark every new PR as seen",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := svc.MarkPRsSeen(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to mark PRs seen: %w", err)
		}
		color.Green("✓ Marked %d PRs as seen", n)
		return nil
	},
}

func printPR(p *models.PR) {
	marker := " "
	if p.IsNew {
		marker = color.MagentaString("★")
	}
	fmt.Printf("  %s %s %s %s %s %8.1f%s\n",
		marker,
		faint.Sprint(shortID(p.ID)),
		faint.Sprint(p.Date.Format(models.DayLayout)),
		padRight(p.ExerciseName, 20),
		padRight(p.PRType, 12),
		p.Value,
		notesSuffix(p.Notes))
}

func init() {
	prListCmd.Flags().StringVar(&prExercise, "exercise", "", "filter by exercise name")
	prListCmd.Flags().StringVar(&prType, "type", "", "filter by PR type")

	prCheckCmd.Flags().StringVar(&prType, "type", models.PRTypeMaxWeight, "PR type")
	prCheckCmd.Flags().StringVar(&prNotes, "notes", "", "notes for the record")

	prCmd.AddCommand(prListCmd, prCheckCmd, prSeenCmd)
	rootCmd.AddCommand(prCmd)
}
