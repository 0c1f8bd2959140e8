package sequence

import (
	"database/sql"
	"fmt"
)

// ProjectReport describes one project whose stored sequences diverge from
// the expected creation-order numbering.
type ProjectReport struct {
	ProjectID     int64    `json:"project_id" yaml:"project_id"`
	Tasks         int      `json:"tasks" yaml:"tasks"`
	Problems      []string `json:"problems" yaml:"problems"`
	StoredLines   []string `json:"-" yaml:"-"`
	ExpectedLines []string `json:"-" yaml:"-"`
}

// VerifyReport is the outcome of checking the sequence invariant across the
// whole database.
type VerifyReport struct {
	ProjectsChecked int             `json:"projects_checked" yaml:"projects_checked"`
	LiveTasks       int             `json:"live_tasks" yaml:"live_tasks"`
	Problems        []ProjectReport `json:"problems" yaml:"problems"`
}

// OK reports whether every project satisfies the invariant.
func (r *VerifyReport) OK() bool {
	return len(r.Problems) == 0
}

type verifyTask struct {
	id     string
	seq    sql.NullInt64
	expect int
}

// VerifyProjects checks that, per project, the stored project_sequence values
// of non-deleted tasks are exactly 1..N in creation order, and that no
// deleted task carries a sequence.
func VerifyProjects(q rowQuerier) (*VerifyReport, error) {
	rows, err := q.Query(`
		SELECT id, project_id, project_sequence
		FROM tasks
		WHERE deleted_at IS NULL
		ORDER BY project_id, created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	report := &VerifyReport{}
	byProject := make(map[int64][]verifyTask)
	var projectOrder []int64

	for rows.Next() {
		var id string
		var projectID int64
		var seq sql.NullInt64
		if err := rows.Scan(&id, &projectID, &seq); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		if _, ok := byProject[projectID]; !ok {
			projectOrder = append(projectOrder, projectID)
		}
		byProject[projectID] = append(byProject[projectID], verifyTask{
			id:     id,
			seq:    seq,
			expect: len(byProject[projectID]) + 1,
		})
		report.LiveTasks++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	report.ProjectsChecked = len(projectOrder)

	for _, projectID := range projectOrder {
		tasks := byProject[projectID]
		pr := ProjectReport{ProjectID: projectID, Tasks: len(tasks)}
		seen := make(map[int64]string)

		for _, task := range tasks {
			expected := fmt.Sprintf("Task %s: #%d\n", task.id, task.expect)
			pr.ExpectedLines = append(pr.ExpectedLines, expected)

			if !task.seq.Valid {
				pr.StoredLines = append(pr.StoredLines, fmt.Sprintf("Task %s: (none)\n", task.id))
				pr.Problems = append(pr.Problems, fmt.Sprintf("task %s has no sequence", task.id))
				continue
			}
			pr.StoredLines = append(pr.StoredLines, fmt.Sprintf("Task %s: #%d\n", task.id, task.seq.Int64))

			if prev, dup := seen[task.seq.Int64]; dup {
				pr.Problems = append(pr.Problems, fmt.Sprintf("tasks %s and %s share sequence %d", prev, task.id, task.seq.Int64))
			}
			seen[task.seq.Int64] = task.id

			if task.seq.Int64 != int64(task.expect) {
				pr.Problems = append(pr.Problems, fmt.Sprintf("task %s has sequence %d, expected %d", task.id, task.seq.Int64, task.expect))
			}
		}

		if len(pr.Problems) > 0 {
			report.Problems = append(report.Problems, pr)
		}
	}

	if err := appendDeletedWithSequence(q, report); err != nil {
		return nil, err
	}

	return report, nil
}

// appendDeletedWithSequence flags soft-deleted tasks that still carry a
// sequence value. The backfill never assigns these; their presence means
// something else wrote the column.
func appendDeletedWithSequence(q rowQuerier, report *VerifyReport) error {
	rows, err := q.Query(`
		SELECT id, project_id, project_sequence
		FROM tasks
		WHERE deleted_at IS NOT NULL AND project_sequence IS NOT NULL
		ORDER BY project_id, created_at ASC
	`)
	if err != nil {
		return fmt.Errorf("failed to query deleted tasks: %w", err)
	}
	defer rows.Close()

	extra := make(map[int64][]string)
	var extraOrder []int64
	for rows.Next() {
		var id string
		var projectID, seq int64
		if err := rows.Scan(&id, &projectID, &seq); err != nil {
			return fmt.Errorf("failed to scan deleted task row: %w", err)
		}
		if _, ok := extra[projectID]; !ok {
			extraOrder = append(extraOrder, projectID)
		}
		extra[projectID] = append(extra[projectID], fmt.Sprintf("deleted task %s carries sequence %d", id, seq))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating deleted tasks: %w", err)
	}

	// Fold into existing project reports where one exists.
	for i := range report.Problems {
		projectID := report.Problems[i].ProjectID
		if problems, ok := extra[projectID]; ok {
			report.Problems[i].Problems = append(report.Problems[i].Problems, problems...)
			delete(extra, projectID)
		}
	}
	for _, projectID := range extraOrder {
		if problems, ok := extra[projectID]; ok {
			report.Problems = append(report.Problems, ProjectReport{ProjectID: projectID, Problems: problems})
		}
	}
	return nil
}
