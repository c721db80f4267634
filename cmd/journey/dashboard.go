// ABOUTME: CLI commands for the at-a-glance dashboard and weight plateau check.
// ABOUTME: The dashboard is built from a freshly refreshed state facade.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/journey/internal/cache"
	"github.com/harperreed/journey/internal/metrics"
	"github.com/harperreed/journey/internal/state"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Show a summary of your progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := cache.NewRistrettoCache()
		if err != nil {
			return fmt.Errorf("failed to create cache: %w", err)
		}
		defer rc.Close()

		facade := state.New(svc, rc)
		if err := facade.RefreshAll(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load data: %w", err)
		}
		printDashboard(facade.Dashboard())
		return nil
	},
}

var plateauCmd = &cobra.Command{
	Use:   "plateau",
	Short: "Check whether your weight has stalled",
	Long: fmt.Sprintf(`Check the most recent check-ins for a weight plateau: at least %d
check-ins, and the last %d spread no more than %.1f kg.`, metrics.PlateauMinRecords, metrics.PlateauWindow, metrics.PlateauMaxSpread),
	RunE: func(cmd *cobra.Command, args []string) error {
		plateau, err := svc.Plateau(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to check plateau: %w", err)
		}

		if plateau {
			color.Yellow("Plateau: your recent check-ins spread no more than %.1f kg.", metrics.PlateauMaxSpread)
			return nil
		}
		color.Green("✓ No plateau detected")
		return nil
	},
}

func printDashboard(d state.Dashboard) {
	color.Cyan("Journey dashboard")

	if d.CurrentWeight != nil {
		change := ""
		if d.WeightChange != nil {
			change = faint.Sprintf("  (%+.1f kg)", *d.WeightChange)
		}
		fmt.Printf("  Weight      %.1f kg%s\n", *d.CurrentWeight, change)
		fmt.Printf("  BMI         %.1f %s\n", *d.BMI, d.BMICategory)
	} else {
		fmt.Printf("  Weight      %s\n", faint.Sprint("no check-ins yet"))
	}

	fmt.Printf("  Today       %.0f kcal  P %.0f  C %.0f  F %.0f  %d ml\n",
		d.Today.Calories, d.Today.Protein, d.Today.Carbs, d.Today.Fat, d.Today.WaterMl)
	fmt.Printf("  Gym         %d sessions in the last 7 days, %d day streak\n", d.WeeklyGymCount, d.GymStreak)
	fmt.Printf("  Habits      %d/100\n", d.HabitScore)
	if d.Plateau {
		color.Yellow("  Plateau     weight has stalled")
	}
	if d.NewPRs > 0 {
		color.Magenta("  🏆 %d new PRs (journey pr list)", d.NewPRs)
	}

	if len(d.ActiveGoals) > 0 {
		fmt.Println()
		fmt.Println("  Active goals:")
		for _, gp := range d.ActiveGoals {
			printGoal(gp)
		}
	}
}

func init() {
	rootCmd.AddCommand(dashboardCmd, plateauCmd)
}
