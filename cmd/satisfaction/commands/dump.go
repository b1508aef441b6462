package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"satisfaction/internal/cli"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the derived ratings table",
	Long: `Load and transform the ratings exactly as serve does, then print the
raw-data table shown at the bottom of the page.

Example:
  satisfaction dump --data-file data.json`,
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringVar(&serveDataFile, "data-file", "", "ratings JSON file (overrides DATA_FILE)")
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg)

	table, err := cli.LoadTable(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), table.String())
	return err
}
