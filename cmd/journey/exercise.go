// ABOUTME: CLI commands for exercises within gym sessions.
// ABOUTME: Supports add (with automatic PR detection), update, delete, and history subcommands.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/journey/internal/models"
)

var (
	exerciseName   string
	exerciseSets   int
	exerciseReps   int
	exerciseWeight float64
	exerciseRest   int
	exercisePhoto  string
	exerciseUnset  string
)

var exerciseCmd = &cobra.Command{
	Use:     "exercise",
	Aliases: []string{"ex"},
	Short:   "Manage exercises",
	Long: `Record exercises inside a gym session. Volume (sets x reps x weight)
is computed automatically, and a max_weight PR is recorded whenever the
weight beats your previous best for that exercise.

EXAMPLES:

  journey exercise add abc123 "Bench Press" --sets 3 --reps 5 --weight 80
  journey exercise update def456 --weight 82.5
  journey exercise history "Bench Press"`,
}

var exerciseAddCmd = &cobra.Command{
	Use:   "add <session-id> <name>",
	Short: "Add an exercise to a gym session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := repo.GetGymSession(ctx, args[0])
		if err != nil {
			return fmt.Errorf("gym session not found: %s", args[0])
		}

		e := models.NewExercise(s.ID, args[1], exerciseSets, exerciseReps, exerciseWeight)
		if cmd.Flags().Changed("rest") {
			e.WithRest(exerciseRest)
		}
		if exercisePhoto != "" {
			photo, err := readPhoto(exercisePhoto)
			if err != nil {
				return err
			}
			e.WithPhoto(photo)
		}

		result, err := svc.LogExercise(ctx, e)
		if err != nil {
			return fmt.Errorf("failed to add exercise: %w", err)
		}

		color.Green("✓ Added %s", e.ExerciseName)
		printExercise(e)
		if result.PR != nil {
			color.Magenta("🏆 New PR: %s %.1f kg", result.PR.ExerciseName, result.PR.Value)
		}
		return nil
	},
}

var exerciseUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an exercise",
	Long: `Update fields of an exercise. Only the flags you pass are changed.
Use --unset to clear optional fields (rest, photo).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unset := unsetFields(exerciseUnset)
		p := models.ExercisePatch{
			ExerciseName: changed(cmd, "name", exerciseName),
			Sets:         changed(cmd, "sets", exerciseSets),
			Reps:         changed(cmd, "reps", exerciseReps),
			WeightKg:     changed(cmd, "weight", exerciseWeight),
			RestSec:      optionalField(cmd, "rest", exerciseRest, unset),
		}
		switch {
		case unset["photo"]:
			p.Photo = models.Null[[]byte]()
		case exercisePhoto != "":
			photo, err := readPhoto(exercisePhoto)
			if err != nil {
				return err
			}
			p.Photo = models.Value(photo)
		}

		e, err := repo.UpdateExercise(cmd.Context(), args[0], p)
		if err != nil {
			return fmt.Errorf("failed to update exercise: %w", err)
		}

		color.Green("✓ Updated exercise")
		printExercise(e)
		return nil
	},
}

var exerciseDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete an exercise",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := repo.GetExercise(ctx, args[0])
		if err != nil {
			return fmt.Errorf("exercise not found: %s", args[0])
		}

		if err := repo.DeleteExercise(ctx, e.ID.String()); err != nil {
			return fmt.Errorf("failed to delete exercise: %w", err)
		}

		color.Yellow("✗ Deleted %s", e.ExerciseName)
		printExercise(e)
		return nil
	},
}

var exerciseHistoryCmd = &cobra.Command{
	Use:   "history <name>",
	Short: "Show every logged instance of an exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := svc.ExerciseHistory(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}

		if len(history) == 0 {
			fmt.Printf("No history for %s.\n", args[0])
			return nil
		}

		color.Cyan("%s (%d entries)", history[0].ExerciseName, len(history))
		for _, e := range history {
			printExercise(e)
		}
		return nil
	},
}

func printExercise(e *models.Exercise) {
	rest := ""
	if e.RestSec != nil {
		rest = faint.Sprintf("  rest %ds", *e.RestSec)
	}
	fmt.Printf("  %s %s %dx%d @ %.1f kg  volume %.0f%s\n",
		faint.Sprint(shortID(e.ID)),
		padRight(e.ExerciseName, 20),
		e.Sets, e.Reps, e.WeightKg,
		e.Volume,
		rest)
}

func addExerciseFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&exerciseSets, "sets", 0, "number of sets")
	cmd.Flags().IntVar(&exerciseReps, "reps", 0, "reps per set")
	cmd.Flags().Float64VarP(&exerciseWeight, "weight", "w", 0, "weight in kg")
	cmd.Flags().IntVar(&exerciseRest, "rest", 0, "rest between sets in seconds")
	cmd.Flags().StringVar(&exercisePhoto, "photo", "", "path to a photo")
}

func init() {
	addExerciseFlags(exerciseAddCmd)

	addExerciseFlags(exerciseUpdateCmd)
	exerciseUpdateCmd.Flags().StringVar(&exerciseName, "name", "", "exercise name")
	exerciseUpdateCmd.Flags().StringVar(&exerciseUnset, "unset", "", "comma-separated optional fields to clear (rest, photo)")

	exerciseCmd.AddCommand(exerciseAddCmd, exerciseUpdateCmd, exerciseDeleteCmd, exerciseHistoryCmd)
	rootCmd.AddCommand(exerciseCmd)
}
