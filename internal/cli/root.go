package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "taskseq",
	Short: "Maintenance CLI for workflow-manager task sequencing",
	Long: `taskseq maintains the per-project task numbering of a workflow-manager
SQLite database. It backfills the project_sequence column so that each
project's live tasks are numbered 1..N in creation order, guarantees
uniqueness with a composite index, and verifies the invariant afterwards.

Intended to be run by an operator with exclusive access to the database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to the workflow-manager database (overrides TASKSEQ_DB_PATH)")
}
