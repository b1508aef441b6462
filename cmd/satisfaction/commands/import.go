package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"satisfaction/internal/cli"
	"satisfaction/internal/log"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy a JSON ratings file into the SQLite database",
	Long: `Validate a JSON ratings file and store its rows in the SQLite database
used by DATA_BACKEND=sqlite. Existing rows are replaced unless --append is set.

Example:
  satisfaction import --from data.json --db ./data/ratings.db`,
	RunE: runImport,
}

var (
	importFrom   string
	importDB     string
	importAppend bool
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importFrom, "from", "", "JSON file to import (default DATA_FILE)")
	importCmd.Flags().StringVar(&importDB, "db", "", "SQLite database path (default SQLITE_DB_PATH)")
	importCmd.Flags().BoolVar(&importAppend, "append", false, "keep existing rows")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentBackend)

	from := importFrom
	if from == "" {
		from = cfg.DataFile
	}
	db := importDB
	if db == "" {
		db = cfg.SQLiteDBPath
	}
	if from == "" || db == "" {
		return fmt.Errorf("both a source file and a database path are required")
	}

	n, err := cli.ImportJSON(cmd.Context(), from, db, !importAppend)
	if err != nil {
		return err
	}
	logger.Info("Import finished", log.FieldOperation, log.OpImport, log.FieldRecords, n, "from", from, "db", db)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d ratings into %s\n", n, db)
	return err
}
