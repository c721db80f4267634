// ABOUTME: CLI commands for body check-ins.
// ABOUTME: Supports add, list, update, and delete subcommands.
package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/journey/internal/apperr"
	"github.com/harperreed/journey/internal/models"
	"github.com/harperreed/journey/internal/storage"
)

// heightSettingKey holds the default height used when --height is omitted.
const heightSettingKey = "height_cm"

var (
	checkinDate   string
	checkinHeight float64
	checkinWeight float64
	checkinWaist  float64
	checkinNotes  string
	checkinUnset  string
	checkinSince  string
	checkinLimit  int
)

var checkinCmd = &cobra.Command{
	Use:     "checkin",
	Aliases: []string{"ci"},
	Short:   "Manage body check-ins",
	Long: `Track weight, height and waist over time. BMI and its category are
computed automatically on every check-in.

HEIGHT:

  The first check-in needs --height. After that the height defaults to the
  "height_cm" setting, or to the height of your latest check-in.

EXAMPLES:

  journey checkin add 82.5 --height 180
  journey checkin add 81.9 --waist 88 --date 2026-03-01
  journey checkin list --since 2026-01-01
  journey checkin update abc123 --weight 82.1
  journey checkin update abc123 --unset waist,notes`,
}

var checkinAddCmd = &cobra.Command{
	Use:   "add <weight-kg>",
	Short: "Add a check-in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		weight, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid weight: %s", args[0])
		}

		date, err := parseDayOr(checkinDate, svc.Now())
		if err != nil {
			return err
		}

		height := checkinHeight
		if !cmd.Flags().Changed("height") {
			height, err = defaultHeight(ctx)
			if err != nil {
				return err
			}
		}

		c := models.NewCheckIn(date, height, weight)
		if cmd.Flags().Changed("waist") {
			c.WithWaist(checkinWaist)
		}
		if checkinNotes != "" {
			c.WithNotes(checkinNotes)
		}

		if err := repo.CreateCheckIn(ctx, c); err != nil {
			return fmt.Errorf("failed to create check-in: %w", err)
		}

		color.Green("✓ Checked in")
		printCheckIn(c)
		return nil
	},
}

var checkinListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List check-ins",
	RunE: func(cmd *cobra.Command, args []string) error {
		since, err := sinceFlag(checkinSince)
		if err != nil {
			return err
		}

		checkIns, err := repo.ListCheckIns(cmd.Context(), storage.Query{From: since, Limit: checkinLimit})
		if err != nil {
			return fmt.Errorf("failed to list check-ins: %w", err)
		}

		if len(checkIns) == 0 {
			fmt.Println("No check-ins found.")
			return nil
		}

		for _, c := range checkIns {
			printCheckIn(c)
		}
		return nil
	},
}

var checkinUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a check-in",
	Long: `Update fields of a check-in. Only the flags you pass are changed.
Use --unset to clear optional fields (waist, notes).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unset := unsetFields(checkinUnset)
		p := models.CheckInPatch{
			HeightCm: changed(cmd, "height", checkinHeight),
			WeightKg: changed(cmd, "weight", checkinWeight),
			WaistCm:  optionalField(cmd, "waist", checkinWaist, unset),
			Notes:    optionalField(cmd, "notes", checkinNotes, unset),
		}
		if cmd.Flags().Changed("date") {
			d, err := models.ParseDay(checkinDate)
			if err != nil {
				return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", checkinDate)
			}
			p.Date = models.Value(d)
		}

		c, err := repo.UpdateCheckIn(cmd.Context(), args[0], p)
		if err != nil {
			return fmt.Errorf("failed to update check-in: %w", err)
		}

		color.Green("✓ Updated check-in")
		printCheckIn(c)
		return nil
	},
}

var checkinDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a check-in",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		c, err := repo.GetCheckIn(ctx, args[0])
		if err != nil {
			return fmt.Errorf("check-in not found: %s", args[0])
		}

		if err := repo.DeleteCheckIn(ctx, c.ID.String()); err != nil {
			return fmt.Errorf("failed to delete check-in: %w", err)
		}

		color.Yellow("✗ Deleted check-in")
		printCheckIn(c)
		return nil
	},
}

// defaultHeight resolves the height for a check-in without --height.
func defaultHeight(ctx context.Context) (float64, error) {
	v, err := repo.GetSetting(ctx, heightSettingKey)
	switch {
	case err == nil:
		h, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return 0, fmt.Errorf("invalid %s setting: %q", heightSettingKey, v)
		}
		return h, nil
	case !errors.Is(err, apperr.ErrNotFound):
		return 0, fmt.Errorf("failed to read %s setting: %w", heightSettingKey, err)
	}

	latest, err := repo.ListCheckIns(ctx, storage.Query{Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("failed to list check-ins: %w", err)
	}
	if len(latest) == 0 {
		return 0, fmt.Errorf("no height known: pass --height or run 'journey settings set %s <cm>'", heightSettingKey)
	}
	return latest[0].HeightCm, nil
}

func printCheckIn(c *models.CheckIn) {
	waist := ""
	if c.WaistCm != nil {
		waist = fmt.Sprintf("  waist %.1f cm", *c.WaistCm)
	}
	fmt.Printf("  %s %s %.1f kg  BMI %.1f %s%s%s\n",
		faint.Sprint(shortID(c.ID)),
		faint.Sprint(c.Date.Format(models.DayLayout)),
		c.WeightKg,
		c.BMI,
		padRight(string(c.BMICategory), 11),
		waist,
		notesSuffix(c.Notes))
}

func init() {
	checkinAddCmd.Flags().StringVar(&checkinDate, "date", "", "day of the check-in (YYYY-MM-DD, default today)")
	checkinAddCmd.Flags().Float64Var(&checkinHeight, "height", 0, "height in cm")
	checkinAddCmd.Flags().Float64Var(&checkinWaist, "waist", 0, "waist in cm")
	checkinAddCmd.Flags().StringVar(&checkinNotes, "notes", "", "notes for the check-in")

	checkinListCmd.Flags().StringVar(&checkinSince, "since", "", "only check-ins on or after this day (YYYY-MM-DD)")
	checkinListCmd.Flags().IntVarP(&checkinLimit, "limit", "n", 20, "max number of results")

	checkinUpdateCmd.Flags().StringVar(&checkinDate, "date", "", "day of the check-in (YYYY-MM-DD)")
	checkinUpdateCmd.Flags().Float64Var(&checkinHeight, "height", 0, "height in cm")
	checkinUpdateCmd.Flags().Float64Var(&checkinWeight, "weight", 0, "weight in kg")
	checkinUpdateCmd.Flags().Float64Var(&checkinWaist, "waist", 0, "waist in cm")
	checkinUpdateCmd.Flags().StringVar(&checkinNotes, "notes", "", "notes for the check-in")
	checkinUpdateCmd.Flags().StringVar(&checkinUnset, "unset", "", "comma-separated optional fields to clear (waist, notes)")

	checkinCmd.AddCommand(checkinAddCmd, checkinListCmd, checkinUpdateCmd, checkinDeleteCmd)
	rootCmd.AddCommand(checkinCmd)
}
