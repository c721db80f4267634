// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for Claude integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/journey/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants like Claude to log and read your journey data through
a standardized protocol. The server communicates via stdin/stdout.

CLAUDE DESKTOP CONFIGURATION:

  Add this to your Claude Desktop config (claude_desktop_config.json):

  {
    "mcpServers": {
      "journey": {
        "command": "journey",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  add_checkin         Record weight, height and waist (BMI computed)
  list_checkins       List recent check-ins
  add_meal            Log a meal with macros
  daily_totals        Nutrition totals for a day
  add_gym_session     Create a gym session
  list_gym_sessions   List recent gym sessions
  get_gym_session     Get a session with its exercises
  delete_gym_session  Delete a session and its exercises
  add_exercise        Add an exercise to a session (detects PRs)
  log_habit           Merge habit values into a day's record
  add_goal            Create a goal
  list_goals          List goals with progress
  list_prs            List personal records
  get_dashboard       At-a-glance summary

AVAILABLE RESOURCES:

  journey://dashboard   Dashboard summary
  journey://today       Everything logged today
  journey://recent      Recent activity`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(repo)
		if err != nil {
			return err
		}
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
