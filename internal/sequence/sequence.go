// Package sequence assigns per-project, gapless, 1-based ordinals to tasks
// in a workflow-manager database, ordered by creation time.
package sequence

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/lmoreno/taskseq/internal/db"
)

// Assignment is one planned (task, sequence) pair.
type Assignment struct {
	TaskID    string `json:"task_id" yaml:"task_id"`
	ProjectID int64  `json:"project_id" yaml:"project_id"`
	Seq       int    `json:"seq" yaml:"seq"`
}

// Result summarizes a backfill run.
type Result struct {
	Assignments    []Assignment
	Projects       int
	IndexCreated   bool
	SequencedCount int
	DryRun         bool
}

type rowQuerier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Plan computes the full assignment list: every non-deleted task, ordered by
// project then creation time, numbered 1..N within its project. Ties on
// created_at fall back to SQLite's default row order, which is stable within
// a single scan.
func Plan(q rowQuerier) ([]Assignment, error) {
	rows, err := q.Query(`
		SELECT id, project_id
		FROM tasks
		WHERE deleted_at IS NULL
		ORDER BY project_id, created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	next := make(map[int64]int)
	var assignments []Assignment

	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.TaskID, &a.ProjectID); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		next[a.ProjectID]++
		a.Seq = next[a.ProjectID]
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return assignments, nil
}

// Apply writes the planned sequences in a single transaction, emitting one
// progress line per task. A failure before commit leaves no row persisted.
func Apply(database *db.DB, assignments []Assignment, out io.Writer) error {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("UPDATE tasks SET project_sequence = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare update: %w", err)
	}
	defer stmt.Close()

	for _, a := range assignments {
		if _, err := stmt.Exec(a.Seq, a.TaskID); err != nil {
			return fmt.Errorf("failed to update task %s: %w", a.TaskID, err)
		}
		fmt.Fprintf(out, "Task %s (Project %d): #%d\n", a.TaskID, a.ProjectID, a.Seq)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sequence updates: %w", err)
	}
	return nil
}

// Backfill plans and applies the per-project sequences, ensures the unique
// (project_id, project_sequence) index, and verifies the sequenced-row count.
// With dryRun set it prints the plan and touches nothing.
func Backfill(database *db.DB, out io.Writer, dryRun bool) (*Result, error) {
	hasCol, err := db.HasColumn(database, "tasks", "project_sequence")
	if err != nil {
		return nil, err
	}
	if !hasCol {
		return nil, fmt.Errorf("database at %s has no project_sequence column on tasks", database.Path())
	}

	assignments, err := Plan(database)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Assignments: assignments,
		Projects:    countProjects(assignments),
		DryRun:      dryRun,
	}

	if dryRun {
		for _, a := range assignments {
			fmt.Fprintf(out, "Task %s (Project %d): #%d\n", a.TaskID, a.ProjectID, a.Seq)
		}
		return result, nil
	}

	if err := Apply(database, assignments, out); err != nil {
		return nil, err
	}

	created, err := db.EnsureTaskSequenceIndex(database)
	if err != nil {
		return nil, err
	}
	result.IndexCreated = created

	count, err := SequencedCount(database)
	if err != nil {
		return nil, err
	}
	result.SequencedCount = count

	return result, nil
}

// SequencedCount returns how many tasks carry a project_sequence value.
func SequencedCount(q rowQuerier) (int, error) {
	var count int
	err := q.QueryRow("SELECT COUNT(*) FROM tasks WHERE project_sequence IS NOT NULL").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sequenced tasks: %w", err)
	}
	return count, nil
}

func countProjects(assignments []Assignment) int {
	seen := make(map[int64]bool)
	for _, a := range assignments {
		seen[a.ProjectID] = true
	}
	return len(seen)
}
