// ABOUTME: CLI commands for gym sessions.
// ABOUTME: Supports add, list, show, update, delete, week, and streak subcommands.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/journey/internal/metrics"
	"github.com/harperreed/journey/internal/models"
	"github.com/harperreed/journey/internal/storage"
)

var (
	gymAt        string
	gymType      string
	gymDuration  int
	gymCardio    string
	gymCardioMin int
	gymIntensity int
	gymNotes     string
	gymUnset     string
	gymSince     string
	gymLimit     int
	gymWeekStart string
)

var gymCmd = &cobra.Command{
	Use:     "gym",
	Aliases: []string{"g"},
	Short:   "Manage gym sessions",
	Long: `Track gym sessions. Exercises are added to a session with
'journey exercise add'.

WORKFLOW:

  1. Create a session:    journey gym add strength --duration 60
  2. Add exercises to it: journey exercise add abc123 "Squat" --sets 5 --reps 5 --weight 100
  3. View the session:    journey gym show abc123

WORKOUT TYPES:

  strength, cardio, mixed, flexibility

CARDIO TYPES:

  treadmill, bike, elliptical, rowing, stairs, swimming, running, other

Deleting a session deletes its exercises too.`,
}

var gymAddCmd = &cobra.Command{
	Use:   "add <type>",
	Short: "Add a gym session",
	Long: `Add a gym session.

Examples:
  journey gym add strength --duration 60 --intensity 7
  journey gym add cardio --cardio rowing --cardio-min 20
  journey gym add mixed --at "2026-03-10 18:30" --notes "Leg day"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !models.IsValidWorkoutType(args[0]) {
			return fmt.Errorf("unknown workout type: %s (use strength, cardio, mixed, flexibility)", args[0])
		}

		s := models.NewGymSession(models.WorkoutType(args[0])).
			WithDatetime(svc.Now()).
			WithDuration(gymDuration).
			WithIntensity(gymIntensity)
		if gymAt != "" {
			t, err := parseTime(gymAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", gymAt)
			}
			s.WithDatetime(t)
		}
		if gymCardio != "" {
			s.WithCardio(models.CardioType(gymCardio), gymCardioMin)
		}
		if gymNotes != "" {
			s.WithNotes(gymNotes)
		}

		if err := repo.CreateGymSession(cmd.Context(), s); err != nil {
			return fmt.Errorf("failed to create gym session: %w", err)
		}

		color.Green("✓ Added %s session", s.WorkoutType)
		printGymSession(s)
		return nil
	},
}

var gymListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List gym sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		since, err := sinceFlag(gymSince)
		if err != nil {
			return err
		}

		sessions, err := repo.ListGymSessions(cmd.Context(), storage.Query{From: since, Limit: gymLimit})
		if err != nil {
			return fmt.Errorf("failed to list gym sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No gym sessions found.")
			return nil
		}

		for _, s := range sessions {
			printGymSession(s)
		}
		return nil
	},
}

var gymShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a gym session with its exercises",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := repo.GetGymSessionWithExercises(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("gym session not found: %s", args[0])
		}

		color.Cyan("%s session", s.WorkoutType)
		fmt.Printf("  ID:        %s\n", s.ID.String())
		fmt.Printf("  When:      %s\n", s.Datetime.Format("2006-01-02 15:04"))
		fmt.Printf("  Duration:  %d min\n", s.DurationMin)
		fmt.Printf("  Intensity: %d/10\n", s.Intensity)
		if s.CardioType != nil {
			minutes := 0
			if s.CardioMin != nil {
				minutes = *s.CardioMin
			}
			fmt.Printf("  Cardio:    %s, %d min\n", *s.CardioType, minutes)
		}
		if s.Notes != nil && *s.Notes != "" {
			fmt.Printf("  Notes:     %s\n", *s.Notes)
		}

		if len(s.Exercises) == 0 {
			fmt.Println()
			fmt.Println("  No exercises recorded.")
			return nil
		}

		fmt.Println()
		fmt.Println("  Exercises:")
		var total float64
		for i := range s.Exercises {
			printExercise(&s.Exercises[i])
			total += s.Exercises[i].Volume
		}
		fmt.Printf("  %s\n", faint.Sprintf("Total volume %.0f kg", total))
		return nil
	},
}

var gymUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a gym session",
	Long: `Update fields of a gym session. Only the flags you pass are changed.
Use --unset to clear optional fields (cardio, cardio-min, notes).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unset := unsetFields(gymUnset)
		p := models.GymSessionPatch{
			DurationMin: changed(cmd, "duration", gymDuration),
			Intensity:   changed(cmd, "intensity", gymIntensity),
			CardioType:  optionalField(cmd, "cardio", models.CardioType(gymCardio), unset),
			CardioMin:   optionalField(cmd, "cardio-min", gymCardioMin, unset),
			Notes:       optionalField(cmd, "notes", gymNotes, unset),
		}
		if cmd.Flags().Changed("type") {
			if !models.IsValidWorkoutType(gymType) {
				return fmt.Errorf("unknown workout type: %s", gymType)
			}
			p.WorkoutType = models.Value(models.WorkoutType(gymType))
		}
		if cmd.Flags().Changed("at") {
			t, err := parseTime(gymAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", gymAt)
			}
			p.Datetime = models.Value(t)
		}

		s, err := repo.UpdateGymSession(cmd.Context(), args[0], p)
		if err != nil {
			return fmt.Errorf("failed to update gym session: %w", err)
		}

		color.Green("✓ Updated gym session")
		printGymSession(s)
		return nil
	},
}

var gymDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a gym session and its exercises",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := repo.GetGymSessionWithExercises(ctx, args[0])
		if err != nil {
			return fmt.Errorf("gym session not found: %s", args[0])
		}

		if err := repo.DeleteGymSession(ctx, s.ID.String()); err != nil {
			return fmt.Errorf("failed to delete gym session: %w", err)
		}

		color.Yellow("✗ Deleted %s session and %d exercises", s.WorkoutType, len(s.Exercises))
		printGymSession(s)
		return nil
	},
}

var gymWeekCmd = &cobra.Command{
	Use:   "week",
	Short: "Count gym sessions in a week",
	Long: `Count gym sessions in the week starting on --start (default: the
current week, starting on the configured week_start day).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := metrics.WeekStart(svc.Now(), cfg.GetWeekStart())
		if gymWeekStart != "" {
			d, err := models.ParseDay(gymWeekStart)
			if err != nil {
				return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", gymWeekStart)
			}
			start = d
		}

		count, err := svc.WeeklyGymCount(cmd.Context(), start)
		if err != nil {
			return fmt.Errorf("failed to count sessions: %w", err)
		}

		fmt.Printf("%d sessions in the week of %s\n", count, start.Format(models.DayLayout))
		return nil
	},
}

var gymStreakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show consecutive gym days",
	RunE: func(cmd *cobra.Command, args []string) error {
		streak, err := svc.GymStreak(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to compute streak: %w", err)
		}

		if streak == 0 {
			fmt.Println("No active streak.")
			return nil
		}
		color.Green("🔥 %d day streak", streak)
		return nil
	},
}

func printGymSession(s *models.GymSession) {
	extra := ""
	if s.CardioType != nil {
		extra = fmt.Sprintf("  %s", *s.CardioType)
		if s.CardioMin != nil {
			extra += fmt.Sprintf(" %d min", *s.CardioMin)
		}
	}
	fmt.Printf("  %s %s %s %3d min  intensity %d%s%s\n",
		faint.Sprint(shortID(s.ID)),
		faint.Sprint(s.Datetime.Format("2006-01-02 15:04")),
		padRight(string(s.WorkoutType), 11),
		s.DurationMin,
		s.Intensity,
		extra,
		notesSuffix(s.Notes))
}

func addGymFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&gymAt, "at", "", "timestamp (YYYY-MM-DD HH:MM, default now)")
	cmd.Flags().IntVarP(&gymDuration, "duration", "d", 0, "duration in minutes")
	cmd.Flags().StringVar(&gymCardio, "cardio", "", "cardio type")
	cmd.Flags().IntVar(&gymCardioMin, "cardio-min", 0, "cardio minutes")
	cmd.Flags().IntVar(&gymIntensity, "intensity", models.DefaultIntensity, "intensity 1-10")
	cmd.Flags().StringVar(&gymNotes, "notes", "", "session notes")
}

func init() {
	addGymFlags(gymAddCmd)

	addGymFlags(gymUpdateCmd)
	gymUpdateCmd.Flags().StringVar(&gymType, "type", "", "workout type")
	gymUpdateCmd.Flags().StringVar(&gymUnset, "unset", "", "comma-separated optional fields to clear (cardio, cardio-min, notes)")

	gymListCmd.Flags().StringVar(&gymSince, "since", "", "only sessions on or after this day (YYYY-MM-DD)")
	gymListCmd.Flags().IntVarP(&gymLimit, "limit", "n", 20, "max number of results")

	gymWeekCmd.Flags().StringVar(&gymWeekStart, "start", "", "first day of the week (YYYY-MM-DD)")

	gymCmd.AddCommand(gymAddCmd, gymListCmd, gymShowCmd, gymUpdateCmd, gymDeleteCmd, gymWeekCmd, gymStreakCmd)
	rootCmd.AddCommand(gymCmd)
}
