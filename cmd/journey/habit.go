// ABOUTME: CLI commands for daily habits.
// ABOUTME: Supports log (merge into the day's record), show, list, and delete subcommands.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/journey/internal/apperr"
	"github.com/harperreed/journey/internal/metrics"
	"github.com/harperreed/journey/internal/models"
	"github.com/harperreed/journey/internal/storage"
)

var (
	habitDate       string
	habitWater      int
	habitSteps      int
	habitCreatine   bool
	habitStretching bool
	habitSleep      float64
	habitSince      string
	habitLimit      int
)

var habitCmd = &cobra.Command{
	Use:     "habit",
	Aliases: []string{"h"},
	Short:   "Manage daily habits",
	Long: `Log daily habits. Each day has one habit record, and logging again
merges the new values into it.

SCORE:

  The daily score is the share of logged habits that met their target:
    water       >= 2000 ml
    steps       >= 8000
    creatine    taken
    stretching  done
    sleep       >= 7 hours

EXAMPLES:

  journey habit log --water 2500 --creatine
  journey habit log --steps 9000 --sleep 7.5
  journey habit log --date 2026-03-10 --stretching=false
  journey habit show`,
}

var habitLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Log habits for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		day, err := parseDayOr(habitDate, svc.Now())
		if err != nil {
			return err
		}

		p := models.HabitPatch{
			WaterMl:    changed(cmd, "water", habitWater),
			Steps:      changed(cmd, "steps", habitSteps),
			Creatine:   changed(cmd, "creatine", habitCreatine),
			Stretching: changed(cmd, "stretching", habitStretching),
			SleepHours: changed(cmd, "sleep", habitSleep),
		}
		if !p.TouchesScore() {
			return fmt.Errorf("nothing to log: pass at least one of --water, --steps, --creatine, --stretching, --sleep")
		}

		existing, err := repo.GetHabitByDate(ctx, day)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("failed to load habits: %w", err)
		}

		var h *models.Habit
		if existing != nil {
			h, err = repo.UpdateHabit(ctx, existing.ID.String(), p)
			if err != nil {
				return fmt.Errorf("failed to log habits: %w", err)
			}
		} else {
			h = models.NewHabit(day)
			if err := p.ApplyTo(h); err != nil {
				return fmt.Errorf("failed to log habits: %w", err)
			}
			if err := repo.CreateHabit(ctx, h); err != nil {
				return fmt.Errorf("failed to log habits: %w", err)
			}
		}

		color.Green("✓ Logged habits")
		printHabit(h)
		return nil
	},
}

var habitShowCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show habits for a day (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := ""
		if len(args) == 1 {
			date = args[0]
		}
		day, err := parseDayOr(date, svc.Now())
		if err != nil {
			return err
		}

		h, err := repo.GetHabitByDate(cmd.Context(), day)
		if errors.Is(err, apperr.ErrNotFound) {
			fmt.Printf("No habits logged for %s.\n", day.Format(models.DayLayout))
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load habits: %w", err)
		}

		color.Cyan("Habits for %s", day.Format(models.DayLayout))
		check := func(label string, logged, met bool, value string) {
			mark := faint.Sprint("·")
			switch {
			case logged && met:
				mark = color.GreenString("✓")
			case logged:
				mark = color.RedString("✗")
			}
			fmt.Printf("  %s %s %s\n", mark, padRight(label, 11), value)
		}
		if h.WaterMl != nil {
			check("Water", true, *h.WaterMl >= metrics.WaterTargetMl, fmt.Sprintf("%d ml", *h.WaterMl))
		} else {
			check("Water", false, false, "")
		}
		if h.Steps != nil {
			check("Steps", true, *h.Steps >= metrics.StepsTarget, fmt.Sprintf("%d", *h.Steps))
		} else {
			check("Steps", false, false, "")
		}
		check("Creatine", h.Creatine != nil, h.Creatine != nil && *h.Creatine, "")
		check("Stretching", h.Stretching != nil, h.Stretching != nil && *h.Stretching, "")
		if h.SleepHours != nil {
			check("Sleep", true, *h.SleepHours >= metrics.SleepTargetHour, fmt.Sprintf("%.1f h", *h.SleepHours))
		} else {
			check("Sleep", false, false, "")
		}
		fmt.Printf("  Score %d/100\n", h.Score)
		return nil
	},
}

var habitListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List habit logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		since, err := sinceFlag(habitSince)
		if err != nil {
			return err
		}

		habits, err := repo.ListHabits(cmd.Context(), storage.Query{From: since, Limit: habitLimit})
		if err != nil {
			return fmt.Errorf("failed to list habits: %w", err)
		}

		if len(habits) == 0 {
			fmt.Println("No habits found.")
			return nil
		}

		for _, h := range habits {
			printHabit(h)
		}
		return nil
	},
}

var habitDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a habit log",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := repo.GetHabit(ctx, args[0])
		if err != nil {
			return fmt.Errorf("habit not found: %s", args[0])
		}

		if err := repo.DeleteHabit(ctx, h.ID.String()); err != nil {
			return fmt.Errorf("failed to delete habit: %w", err)
		}

		color.Yellow("✗ Deleted habits for %s", h.Date.Format(models.DayLayout))
		return nil
	},
}

func printHabit(h *models.Habit) {
	var parts string
	if h.WaterMl != nil {
		parts += fmt.Sprintf("  water %d ml", *h.WaterMl)
	}
	if h.Steps != nil {
		parts += fmt.Sprintf("  steps %d", *h.Steps)
	}
	if h.Creatine != nil {
		parts += fmt.Sprintf("  creatine %t", *h.Creatine)
	}
	if h.Stretching != nil {
		parts += fmt.Sprintf("  stretching %t", *h.Stretching)
	}
	if h.SleepHours != nil {
		parts += fmt.Sprintf("  sleep %.1f h", *h.SleepHours)
	}
	fmt.Printf("  %s %s score %3d%s\n",
		faint.Sprint(shortID(h.ID)),
		faint.Sprint(h.Date.Format(models.DayLayout)),
		h.Score,
		parts)
}

func init() {
	habitLogCmd.Flags().StringVar(&habitDate, "date", "", "day to log (YYYY-MM-DD, default today)")
	habitLogCmd.Flags().IntVar(&habitWater, "water", 0, "water in ml")
	habitLogCmd.Flags().IntVar(&habitSteps, "steps", 0, "step count")
	habitLogCmd.Flags().BoolVar(&habitCreatine, "creatine", false, "creatine taken")
	habitLogCmd.Flags().BoolVar(&habitStretching, "stretching", false, "stretching done")
	habitLogCmd.Flags().Float64Var(&habitSleep, "sleep", 0, "hours slept")

	habitListCmd.Flags().StringVar(&habitSince, "since", "", "only days on or after this day (YYYY-MM-DD)")
	habitListCmd.Flags().IntVarP(&habitLimit, "limit", "n", 14, "max number of results")

	habitCmd.AddCommand(habitLogCmd, habitShowCmd, habitListCmd, habitDeleteCmd)
	rootCmd.AddCommand(habitCmd)
}
