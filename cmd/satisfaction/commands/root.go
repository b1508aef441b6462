package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"satisfaction/internal/cli"
)

var (
	// Global flags
	envFile string
)

// rootCmd serves the dashboard when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "satisfaction",
	Short: "Customer satisfaction dashboard",
	Long: `Customer satisfaction dashboard.

Loads the ratings dataset once, derives year, month, day and rate_percent,
and serves a single page with year/month filters and a line chart.

Examples:
  satisfaction
  satisfaction serve --port 9000
  satisfaction dump
  satisfaction import --from data.json --db ./data/ratings.db`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return cli.LoadEnvFile(envFile)
	},
	RunE: runServe,
}

// Execute runs the selected command and logs its error once.
func Execute() error {
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		slog.Error("Command failed", "command", cmd.Name(), "error", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load (default .env if present)")
	addServeFlags(rootCmd)
}
