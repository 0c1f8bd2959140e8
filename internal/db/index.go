package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// TaskSequenceIndex is the unique composite index guaranteeing that no two
// tasks in a project share a project_sequence value.
const TaskSequenceIndex = "task_project_sequence_idx"

type sqlExecutor interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// IndexExists reports whether a named index is present in the schema.
func IndexExists(exec sqlExecutor, name string) (bool, error) {
	var count int
	err := exec.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?", name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check for index %s: %w", name, err)
	}
	return count > 0, nil
}

// HasColumn reports whether a table has a column with the given name.
func HasColumn(exec sqlExecutor, table, column string) (bool, error) {
	var count int
	err := exec.QueryRow("SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to inspect columns of %s: %w", table, err)
	}
	return count > 0, nil
}

// EnsureTaskSequenceIndex creates the unique (project_id, project_sequence)
// index if it is not already present. Returns whether the index was newly
// created. A unique-constraint violation means the table already holds
// duplicate pairs and is reported as a distinct, fatal error; any other
// failure is fatal as-is.
func EnsureTaskSequenceIndex(exec sqlExecutor) (created bool, err error) {
	exists, err := IndexExists(exec, TaskSequenceIndex)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	_, err = exec.Exec(fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON tasks(project_id, project_sequence)",
		TaskSequenceIndex,
	))
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return false, fmt.Errorf("cannot create unique index %s: tasks table holds duplicate (project_id, project_sequence) pairs; run backfill first: %w",
				TaskSequenceIndex, err)
		}
		return false, fmt.Errorf("failed to create index %s: %w", TaskSequenceIndex, err)
	}

	return true, nil
}
