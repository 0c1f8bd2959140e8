package cli

import (
	"fmt"

	"github.com/lmoreno/taskseq/internal/db"
	"github.com/lmoreno/taskseq/internal/sequence"
	"github.com/spf13/cobra"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Assign per-project sequence numbers to all live tasks",
	Long: `Backfill numbers every non-deleted task 1..N within its project, in
ascending creation order, writing the result to the project_sequence column.

All updates commit as a single transaction; a failure mid-run leaves no row
changed. Afterwards the unique (project_id, project_sequence) index is
created if missing, and the count of sequenced tasks is reported.

Rerunning recomputes the numbering from scratch and deterministically
reproduces the same mapping as long as no tasks were added or removed.
Do not run against a database with live writers.`,
	RunE: runBackfill,
}

var backfillDryRun bool

func init() {
	rootCmd.AddCommand(backfillCmd)
	backfillCmd.Flags().BoolVar(&backfillDryRun, "dry-run", false, "Print the planned assignments without writing anything")
}

func runBackfill(cmd *cobra.Command, args []string) error {
	database, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	out := cmd.OutOrStdout()

	result, err := sequence.Backfill(database, out, backfillDryRun)
	if err != nil {
		return err
	}

	if result.DryRun {
		fmt.Fprintf(out, "\nDry run: %d task(s) across %d project(s) would be assigned. No changes made.\n",
			len(result.Assignments), result.Projects)
		return nil
	}

	if result.IndexCreated {
		fmt.Fprintf(out, "\n✓ Unique index %s created\n", db.TaskSequenceIndex)
	} else {
		fmt.Fprintf(out, "\n✓ Unique index %s already present\n", db.TaskSequenceIndex)
	}
	fmt.Fprintf(out, "✓ %d task(s) now carry a project_sequence\n", result.SequencedCount)

	return nil
}
