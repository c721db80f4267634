// ABOUTME: CLI commands for meals and daily nutrition totals.
// ABOUTME: Supports add, list, update, delete, and totals subcommands.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/journey/internal/models"
	"github.com/harperreed/journey/internal/storage"
)

var (
	mealAt       string
	mealType     string
	mealCalories float64
	mealProtein  float64
	mealCarbs    float64
	mealFat      float64
	mealWater    int
	mealNotes    string
	mealPhoto    string
	mealUnset    string
	mealSince    string
	mealLimit    int
	mealDate     string
)

var mealCmd = &cobra.Command{
	Use:     "meal",
	Aliases: []string{"m"},
	Short:   "Manage meals",
	Long: `Log meals with their macros and see daily nutrition totals.

MEAL TYPES:

  breakfast, lunch, dinner, snack

EXAMPLES:

  journey meal add lunch --kcal 650 --protein 40 --carbs 70 --fat 20
  journey meal add snack --kcal 180 --at "2026-03-10 16:00" --notes "apple"
  journey meal totals                     # Today's totals
  journey meal totals --date 2026-03-10
  journey meal update abc123 --kcal 700 --unset notes`,
}

var mealAddCmd = &cobra.Command{
	Use:   "add <type>",
	Short: "Log a meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !models.IsValidMealType(args[0]) {
			return fmt.Errorf("unknown meal type: %s (use %s)", args[0], mealTypeList())
		}

		m := models.NewMeal(models.MealType(args[0])).
			WithDatetime(svc.Now()).
			WithMacros(mealCalories, mealProtein, mealCarbs, mealFat)
		if mealAt != "" {
			t, err := parseTime(mealAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", mealAt)
			}
			m.WithDatetime(t)
		}
		if cmd.Flags().Changed("water") {
			m.WithWater(mealWater)
		}
		if mealNotes != "" {
			m.WithNotes(mealNotes)
		}
		if mealPhoto != "" {
			photo, err := readPhoto(mealPhoto)
			if err != nil {
				return err
			}
			m.WithPhoto(photo)
		}

		if err := repo.CreateMeal(cmd.Context(), m); err != nil {
			return fmt.Errorf("failed to create meal: %w", err)
		}

		color.Green("✓ Logged %s", m.MealType)
		printMeal(m)
		return nil
	},
}

var mealListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List meals",
	RunE: func(cmd *cobra.Command, args []string) error {
		since, err := sinceFlag(mealSince)
		if err != nil {
			return err
		}

		meals, err := repo.ListMeals(cmd.Context(), storage.Query{From: since, Limit: mealLimit})
		if err != nil {
			return fmt.Errorf("failed to list meals: %w", err)
		}

		if len(meals) == 0 {
			fmt.Println("No meals found.")
			return nil
		}

		for _, m := range meals {
			printMeal(m)
		}
		return nil
	},
}

var mealUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a meal",
	Long: `Update fields of a meal. Only the flags you pass are changed.
Use --unset to clear optional fields (water, notes, photo).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unset := unsetFields(mealUnset)
		p := models.MealPatch{
			Calories: changed(cmd, "kcal", mealCalories),
			Protein:  changed(cmd, "protein", mealProtein),
			Carbs:    changed(cmd, "carbs", mealCarbs),
			Fat:      changed(cmd, "fat", mealFat),
			WaterMl:  optionalField(cmd, "water", mealWater, unset),
			Notes:    optionalField(cmd, "notes", mealNotes, unset),
		}
		if cmd.Flags().Changed("type") {
			if !models.IsValidMealType(mealType) {
				return fmt.Errorf("unknown meal type: %s (use %s)", mealType, mealTypeList())
			}
			p.MealType = models.Value(models.MealType(mealType))
		}
		if cmd.Flags().Changed("at") {
			t, err := parseTime(mealAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", mealAt)
			}
			p.Datetime = models.Value(t)
		}
		switch {
		case unset["photo"]:
			p.Photo = models.Null[[]byte]()
		case mealPhoto != "":
			photo, err := readPhoto(mealPhoto)
			if err != nil {
				return err
			}
			p.Photo = models.Value(photo)
		}

		m, err := repo.UpdateMeal(cmd.Context(), args[0], p)
		if err != nil {
			return fmt.Errorf("failed to update meal: %w", err)
		}

		color.Green("✓ Updated meal")
		printMeal(m)
		return nil
	},
}

var mealDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a meal",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		m, err := repo.GetMeal(ctx, args[0])
		if err != nil {
			return fmt.Errorf("meal not found: %s", args[0])
		}

		if err := repo.DeleteMeal(ctx, m.ID.String()); err != nil {
			return fmt.Errorf("failed to delete meal: %w", err)
		}

		color.Yellow("✗ Deleted %s", m.MealType)
		printMeal(m)
		return nil
	},
}

var mealTotalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Show nutrition totals for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseDayOr(mealDate, svc.Now())
		if err != nil {
			return err
		}

		totals, err := svc.DailyTotals(cmd.Context(), day)
		if err != nil {
			return fmt.Errorf("failed to compute totals: %w", err)
		}

		color.Cyan("Nutrition for %s", day.Format(models.DayLayout))
		fmt.Printf("  Calories  %.0f kcal\n", totals.Calories)
		fmt.Printf("  Protein   %.1f g\n", totals.Protein)
		fmt.Printf("  Carbs     %.1f g\n", totals.Carbs)
		fmt.Printf("  Fat       %.1f g\n", totals.Fat)
		fmt.Printf("  Water     %d ml\n", totals.WaterMl)
		fmt.Printf("  %s\n", faint.Sprintf("%d meals", totals.Meals))
		return nil
	},
}

func mealTypeList() string {
	names := make([]string, 0, len(models.AllMealTypes))
	for _, mt := range models.AllMealTypes {
		names = append(names, string(mt))
	}
	return strings.Join(names, ", ")
}

func printMeal(m *models.Meal) {
	water := ""
	if m.WaterMl != nil {
		water = fmt.Sprintf("  %d ml", *m.WaterMl)
	}
	fmt.Printf("  %s %s %s %6.0f kcal  P %.0f  C %.0f  F %.0f%s%s\n",
		faint.Sprint(shortID(m.ID)),
		faint.Sprint(m.Datetime.Format("2006-01-02 15:04")),
		padRight(string(m.MealType), 9),
		m.Calories, m.Protein, m.Carbs, m.Fat,
		water,
		notesSuffix(m.Notes))
}

func addMealFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&mealAt, "at", "", "timestamp (YYYY-MM-DD HH:MM, default now)")
	cmd.Flags().Float64Var(&mealCalories, "kcal", 0, "calories")
	cmd.Flags().Float64Var(&mealProtein, "protein", 0, "protein in grams")
	cmd.Flags().Float64Var(&mealCarbs, "carbs", 0, "carbohydrates in grams")
	cmd.Flags().Float64Var(&mealFat, "fat", 0, "fat in grams")
	cmd.Flags().IntVar(&mealWater, "water", 0, "water in ml")
	cmd.Flags().StringVar(&mealNotes, "notes", "", "notes for the meal")
	cmd.Flags().StringVar(&mealPhoto, "photo", "", "path to a photo of the meal")
}

func init() {
	addMealFlags(mealAddCmd)

	addMealFlags(mealUpdateCmd)
	mealUpdateCmd.Flags().StringVar(&mealType, "type", "", "meal type")
	mealUpdateCmd.Flags().StringVar(&mealUnset, "unset", "", "comma-separated optional fields to clear (water, notes, photo)")

	mealListCmd.Flags().StringVar(&mealSince, "since", "", "only meals on or after this day (YYYY-MM-DD)")
	mealListCmd.Flags().IntVarP(&mealLimit, "limit", "n", 20, "max number of results")

	mealTotalsCmd.Flags().StringVar(&mealDate, "date", "", "day to total (YYYY-MM-DD, default today)")

	mealCmd.AddCommand(mealAddCmd, mealListCmd, mealUpdateCmd, mealDeleteCmd, mealTotalsCmd)
	rootCmd.AddCommand(mealCmd)
}
