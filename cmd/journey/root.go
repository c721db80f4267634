// ABOUTME: Root Cobra command for journey CLI.
// ABOUTME: Loads config, sets up logging and opens storage via PersistentPre/PostRunE.
package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/harperreed/journey/internal/config"
	"github.com/harperreed/journey/internal/logging"
	"github.com/harperreed/journey/internal/storage"
	"github.com/harperreed/journey/internal/tracker"
)

var (
	cfg  *config.Config
	repo storage.Repository
	svc  *tracker.Service
)

var rootCmd = &cobra.Command{
	Use:   "journey",
	Short: "Personal fitness and nutrition tracker",
	Long: `Journey is a CLI tool for tracking your fitness journey.

WHAT IT TRACKS:

  Check-ins    height, weight and waist with automatic BMI
  Meals        calories, protein, carbs, fat and water
  Gym          sessions with exercises, volume and automatic PRs
  Habits       water, steps, creatine, stretching and sleep, scored daily
  Goals        target values with progress

QUICK START:

  $ journey checkin add 82.5 --height 180   # Log your weight
  $ journey meal add lunch --kcal 650 --protein 40
  $ journey gym add strength --duration 60  # Start a gym session
  $ journey exercise add abc123 "Bench Press" --sets 3 --reps 5 --weight 80
  $ journey habit log --water 2500 --creatine
  $ journey dashboard                       # See how you're doing

MCP INTEGRATION:

  Run 'journey mcp' to start the Model Context Protocol server for use with
  Claude Desktop or other MCP-compatible AI assistants. Add to your Claude
  config:

  {
    "mcpServers": {
      "journey": { "command": "journey", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  Data is stored in SQLite at ~/.local/share/journey/journey.db by default.
  Set "backend": "badger" in ~/.config/journey/config.json (or
  JOURNEY_BACKEND=badger) to use the Badger key-value store instead.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip storage for commands that don't need it
		if cmd.Name() == "help" || cmd.Name() == "install-skill" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logging.Setup(cfg.LoggerParams())

		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
		}
		svc = tracker.New(repo)
		log.Debugf("journey: opened %s storage in %s", cfg.GetBackend(), cfg.GetDataDir())
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeRepo()
	},
}

func closeRepo() error {
	if repo == nil {
		return nil
	}
	err := repo.Close()
	repo, svc = nil, nil
	return err
}

// Execute runs the root command and releases storage even when a command fails.
func Execute() error {
	err := rootCmd.Execute()
	if closeErr := closeRepo(); err == nil {
		err = closeErr
	}
	return err
}
