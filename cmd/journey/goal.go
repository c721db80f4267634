// ABOUTME: CLI commands for goals.
// ABOUTME: Supports add, list, update, and delete subcommands with progress display.
package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/journey/internal/metrics"
	"github.com/harperreed/journey/internal/models"
	"github.com/harperreed/journey/internal/tracker"
)

var (
	goalType     string
	goalTarget   float64
	goalCurrent  float64
	goalDeadline string
	goalStatus   string
	goalUnset    string
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage goals",
	Long: `Set goals and track progress toward them. Progress is current/target,
capped at 100%.

STATUSES:

  active, completed, paused

EXAMPLES:

  journey goal add bench_press 120 --current 90 --deadline 2026-06-30
  journey goal list --status active
  journey goal update abc123 --current 95
  journey goal update abc123 --status completed`,
}

var goalAddCmd = &cobra.Command{
	Use:   "add <type> <target>",
	Short: "Add a goal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid target: %s", args[1])
		}

		g := models.NewGoal(args[0], target, goalCurrent)
		if goalDeadline != "" {
			d, err := models.ParseDay(goalDeadline)
			if err != nil {
				return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", goalDeadline)
			}
			g.WithDeadline(d)
		}

		if err := repo.CreateGoal(cmd.Context(), g); err != nil {
			return fmt.Errorf("failed to create goal: %w", err)
		}

		color.Green("✓ Added goal %s", g.Type)
		printGoal(tracker.GoalProgress{Goal: g, Progress: metrics.GoalProgress(*g)})
		return nil
	},
}

var goalListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List goals with progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		var status *models.GoalStatus
		if goalStatus != "" {
			if !models.IsValidGoalStatus(goalStatus) {
				return fmt.Errorf("unknown goal status: %s (use active, completed, paused)", goalStatus)
			}
			gs := models.GoalStatus(goalStatus)
			status = &gs
		}

		goals, err := svc.Goals(cmd.Context(), status)
		if err != nil {
			return fmt.Errorf("failed to list goals: %w", err)
		}

		if len(goals) == 0 {
			fmt.Println("No goals found.")
			return nil
		}

		for _, gp := range goals {
			printGoal(gp)
		}
		return nil
	},
}

var goalUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a goal",
	Long: `Update fields of a goal. Only the flags you pass are changed.
Use --unset deadline to clear the deadline.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unset := unsetFields(goalUnset)
		p := models.GoalPatch{
			Type:         changed(cmd, "type", goalType),
			TargetValue:  changed(cmd, "target", goalTarget),
			CurrentValue: changed(cmd, "current", goalCurrent),
		}
		if cmd.Flags().Changed("status") {
			if !models.IsValidGoalStatus(goalStatus) {
				return fmt.Errorf("unknown goal status: %s (use active, completed, paused)", goalStatus)
			}
			p.Status = models.Value(models.GoalStatus(goalStatus))
		}
		switch {
		case unset["deadline"]:
			p.Deadline = models.Null[time.Time]()
		case cmd.Flags().Changed("deadline"):
			d, err := models.ParseDay(goalDeadline)
			if err != nil {
				return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", goalDeadline)
			}
			p.Deadline = models.Value(d)
		}

		g, err := repo.UpdateGoal(cmd.Context(), args[0], p)
		if err != nil {
			return fmt.Errorf("failed to update goal: %w", err)
		}

		color.Green("✓ Updated goal")
		printGoal(tracker.GoalProgress{Goal: g, Progress: metrics.GoalProgress(*g)})
		return nil
	},
}

var goalDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a goal",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		g, err := repo.GetGoal(ctx, args[0])
		if err != nil {
			return fmt.Errorf("goal not found: %s", args[0])
		}

		if err := repo.DeleteGoal(ctx, g.ID.String()); err != nil {
			return fmt.Errorf("failed to delete goal: %w", err)
		}

		color.Yellow("✗ Deleted goal %s", g.Type)
		return nil
	},
}

func progressBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func printGoal(gp tracker.GoalProgress) {
	g := gp.Goal
	deadline := ""
	if g.Deadline != nil {
		deadline = faint.Sprintf("  by %s", g.Deadline.Format(models.DayLayout))
	}
	fmt.Printf("  %s %s %s %5.1f%%  %.1f / %.1f  %s%s\n",
		faint.Sprint(shortID(g.ID)),
		padRight(g.Type, 16),
		progressBar(gp.Progress, 20),
		gp.Progress,
		g.CurrentValue, g.TargetValue,
		g.Status,
		deadline)
}

func init() {
	goalAddCmd.Flags().Float64Var(&goalCurrent, "current", 0, "current value")
	goalAddCmd.Flags().StringVar(&goalDeadline, "deadline", "", "deadline (YYYY-MM-DD)")

	goalListCmd.Flags().StringVar(&goalStatus, "status", "", "filter by status")

	goalUpdateCmd.Flags().StringVar(&goalType, "type", "", "what the goal measures")
	goalUpdateCmd.Flags().Float64Var(&goalTarget, "target", 0, "target value")
	goalUpdateCmd.Flags().Float64Var(&goalCurrent, "current", 0, "current value")
	goalUpdateCmd.Flags().StringVar(&goalDeadline, "deadline", "", "deadline (YYYY-MM-DD)")
	goalUpdateCmd.Flags().StringVar(&goalStatus, "status", "", "active, completed or paused")
	goalUpdateCmd.Flags().StringVar(&goalUnset, "unset", "", "comma-separated optional fields to clear (deadline)")

	goalCmd.AddCommand(goalAddCmd, goalListCmd, goalUpdateCmd, goalDeleteCmd)
	rootCmd.AddCommand(goalCmd)
}
