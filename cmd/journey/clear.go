// ABOUTME: CLI command for deleting all tracked data.
// ABOUTME: Settings survive; everything else is removed in one transaction.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var clearSkipConfirm bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all tracked data",
	Long: `Delete every check-in, meal, gym session, exercise, habit, goal and PR.
Settings are kept. This cannot be undone; export first if you want a backup:

  journey export json -o backup.json
  journey clear --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearSkipConfirm {
			ok, err := confirm("Delete all journey data?")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Canceled.")
				return nil
			}
		}

		if err := repo.ClearAll(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear data: %w", err)
		}
		color.Yellow("✗ Deleted all data")
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearSkipConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}
