// ABOUTME: CLI commands for key/value settings stored alongside the data.
// ABOUTME: Supports get, set, list, and delete subcommands.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/journey/internal/apperr"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"set"},
	Short:   "Manage settings",
	Long: `Settings are key/value preferences stored with your data, so they are
exported, imported and migrated along with it.

KNOWN KEYS:

  height_cm   default height for 'journey checkin add'

EXAMPLES:

  journey settings set height_cm 180
  journey settings get height_cm
  journey settings list`,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := repo.GetSetting(cmd.Context(), args[0])
		if errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("setting not found: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to get setting: %w", err)
		}
		fmt.Println(value)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := repo.SetSetting(cmd.Context(), args[0], args[1]); err != nil {
			return fmt.Errorf("failed to set setting: %w", err)
		}
		color.Green("✓ Set %s = %s", args[0], args[1])
		return nil
	},
}

var settingsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := repo.ListSettings(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list settings: %w", err)
		}

		if len(settings) == 0 {
			fmt.Println("No settings found.")
			return nil
		}

		for _, s := range settings {
			fmt.Printf("  %s %s\n", padRight(s.Key, 16), s.Value)
		}
		return nil
	},
}

var settingsDeleteCmd = &cobra.Command{
	Use:     "delete <key>",
	Aliases: []string{"rm"},
	Short:   "Delete a setting",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := repo.DeleteSetting(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return fmt.Errorf("setting not found: %s", args[0])
			}
			return fmt.Errorf("failed to delete setting: %w", err)
		}
		color.Yellow("✗ Deleted setting %s", args[0])
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd, settingsListCmd, settingsDeleteCmd)
	rootCmd.AddCommand(settingsCmd)
}
