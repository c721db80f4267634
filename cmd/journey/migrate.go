// ABOUTME: CLI command for copying all data between storage backends.
// ABOUTME: Exports the current backend and imports it into the other in one transaction.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/harperreed/journey/internal/config"
	"github.com/harperreed/journey/internal/storage"
)

var (
	migrateTo     string
	migrateForce  bool
	migrateSwitch bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy all data to another storage backend",
	Long: `Copy every record from the current backend to another one.

BACKENDS:

  sqlite   single file: <data_dir>/journey.db (default)
  badger   key-value store: <data_dir>/kv/

IDs are preserved and the destination receives either everything or nothing.
A destination that already holds data is refused unless --force is given, in
which case its records (not its settings) are cleared first.

EXAMPLES:

  journey migrate --to badger             # Copy into badger
  journey migrate --to badger --switch    # ...and make it the configured backend
  journey migrate --to sqlite --force     # Overwrite an existing sqlite database`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		to := strings.ToLower(migrateTo)

		if to != config.BackendSQLite && to != config.BackendBadger {
			return fmt.Errorf("unknown backend: %s (use sqlite or badger)", migrateTo)
		}
		if to == cfg.GetBackend() {
			return fmt.Errorf("already using %s", to)
		}

		path, err := cfg.StoragePath(to)
		if err != nil {
			return err
		}
		exists, err := destinationExists(to, path)
		if err != nil {
			return err
		}
		if exists && !migrateForce {
			return fmt.Errorf("destination %s already has data (use --force to overwrite)", path)
		}

		dst, err := cfg.OpenBackend(to)
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", to, err)
		}
		defer func() {
			if err := dst.Close(); err != nil {
				log.Warnf("migrate: close %s: %v", to, err)
			}
		}()

		if exists {
			if err := dst.ClearAll(ctx); err != nil {
				return fmt.Errorf("failed to clear destination: %w", err)
			}
		}

		summary, err := storage.MigrateData(ctx, repo, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Migrated %s → %s", cfg.GetBackend(), to)
		fmt.Printf("  Check-ins:    %d\n", summary.CheckIns)
		fmt.Printf("  Meals:        %d\n", summary.Meals)
		fmt.Printf("  Gym sessions: %d\n", summary.GymSessions)
		fmt.Printf("  Exercises:    %d\n", summary.Exercises)
		fmt.Printf("  Habits:       %d\n", summary.Habits)
		fmt.Printf("  Goals:        %d\n", summary.Goals)
		fmt.Printf("  PRs:          %d\n", summary.PRs)
		fmt.Printf("  Settings:     %d\n", summary.Settings)

		if migrateSwitch {
			cfg.Backend = to
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			color.Green("✓ Backend set to %s in %s", to, config.GetConfigPath())
		} else {
			fmt.Println()
			fmt.Printf("Set \"backend\": %q in %s to use it.\n", to, config.GetConfigPath())
		}
		return nil
	},
}

// destinationExists reports whether a backend already has files at path.
func destinationExists(backend, path string) (bool, error) {
	if backend == config.BackendBadger {
		return storage.IsDirNonEmpty(path)
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size() > 0, nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend (sqlite or badger)")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "overwrite a destination that already has data")
	migrateCmd.Flags().BoolVar(&migrateSwitch, "switch", false, "make the destination the configured backend")
	_ = migrateCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(migrateCmd)
}
