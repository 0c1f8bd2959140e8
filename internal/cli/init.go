package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lmoreno/taskseq/internal/db"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a fresh development database",
	Long: `Init creates a workflow-manager development database with the tasks
schema. Use --seed to populate it with demo tasks spread across a few
projects, including some soft-deleted rows, for exercising backfill
and verify locally.`,
	RunE: runInit,
}

var initSeed int

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().IntVar(&initSeed, "seed", 0, "Insert this many demo tasks after creating the schema")
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := resolveDBPath(cmd)
	if err != nil {
		return err
	}

	database, err := db.Open(path)
	if err != nil {
		return err
	}
	defer database.Close()

	applied, err := database.MigrateWithInfo()
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	out := cmd.OutOrStdout()

	if len(applied) == 0 {
		fmt.Fprintln(out, "Database is up to date. No migrations to apply.")
	} else {
		for _, m := range applied {
			fmt.Fprintf(out, "✓ Applied migration: %s\n", m)
		}
	}

	if initSeed > 0 {
		if err := seedTasks(database, initSeed); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Seeded %d demo task(s) in %s\n", initSeed, path)
	}

	return nil
}

// seedTasks inserts n demo tasks across three projects with staggered
// creation times. Every fifth task is soft-deleted.
func seedTasks(database *db.DB, n int) error {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		projectID := 1 + i%3
		createdAt := base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339)

		var deletedAt any
		if i%5 == 4 {
			deletedAt = base.Add(time.Duration(n+i) * time.Minute).Format(time.RFC3339)
		}

		_, err := tx.Exec(`
			INSERT INTO tasks (id, project_id, title, created_at, deleted_at)
			VALUES (?, ?, ?, ?, ?)
		`, uuid.New().String(), projectID, fmt.Sprintf("Demo task %d", i+1), createdAt, deletedAt)
		if err != nil {
			return fmt.Errorf("failed to seed task %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}
