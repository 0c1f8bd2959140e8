package sequence

import (
	"bytes"
	"strings"
	"testing"
)

func TestVerifyCleanAfterBackfill(t *testing.T) {
	database := newTestDB(t)

	insertTask(t, database, "task-a", 1, "2024-01-01T00:00:00Z", "")
	insertTask(t, database, "task-b", 1, "2024-01-02T00:00:00Z", "")
	insertTask(t, database, "task-c", 2, "2024-01-03T00:00:00Z", "")
	insertTask(t, database, "task-d", 2, "2024-01-04T00:00:00Z", "2024-02-01T00:00:00Z")

	var out bytes.Buffer
	if _, err := Backfill(database, &out, false); err != nil {
		t.Fatalf("backfill failed: %v", err)
	}

	report, err := VerifyProjects(database)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if !report.OK() {
		t.Fatalf("expected clean report, got problems: %+v", report.Problems)
	}
	if report.ProjectsChecked != 2 {
		t.Errorf("expected 2 projects checked, got %d", report.ProjectsChecked)
	}
	if report.LiveTasks != 3 {
		t.Errorf("expected 3 live tasks, got %d", report.LiveTasks)
	}
}

func TestVerifyDetectsUnsequencedAndGaps(t *testing.T) {
	database := newTestDB(t)

	insertTask(t, database, "task-a", 1, "2024-01-01T00:00:00Z", "")
	insertTask(t, database, "task-b", 1, "2024-01-02T00:00:00Z", "")
	insertTask(t, database, "task-c", 1, "2024-01-03T00:00:00Z", "")

	var out bytes.Buffer
	if _, err := Backfill(database, &out, false); err != nil {
		t.Fatalf("backfill failed: %v", err)
	}

	// Punch a hole: clear task-b, leaving 1,_,3.
	if _, err := database.Exec("UPDATE tasks SET project_sequence = NULL WHERE id = 'task-b'"); err != nil {
		t.Fatalf("failed to clear sequence: %v", err)
	}

	report, err := VerifyProjects(database)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if report.OK() {
		t.Fatal("expected verification to fail")
	}
	if len(report.Problems) != 1 {
		t.Fatalf("expected 1 broken project, got %d", len(report.Problems))
	}

	pr := report.Problems[0]
	if pr.ProjectID != 1 {
		t.Errorf("expected project 1, got %d", pr.ProjectID)
	}
	joined := strings.Join(pr.Problems, "; ")
	if !strings.Contains(joined, "task-b has no sequence") {
		t.Errorf("expected missing-sequence problem, got: %s", joined)
	}
}

func TestVerifyDetectsDuplicates(t *testing.T) {
	database := newTestDB(t)

	insertTask(t, database, "task-a", 1, "2024-01-01T00:00:00Z", "")
	insertTask(t, database, "task-b", 1, "2024-01-02T00:00:00Z", "")

	// Both stored as #1, no backfill, no index.
	if _, err := database.Exec("UPDATE tasks SET project_sequence = 1"); err != nil {
		t.Fatalf("failed to set sequences: %v", err)
	}

	report, err := VerifyProjects(database)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if report.OK() {
		t.Fatal("expected verification to fail")
	}
	joined := strings.Join(report.Problems[0].Problems, "; ")
	if !strings.Contains(joined, "share sequence 1") {
		t.Errorf("expected duplicate problem, got: %s", joined)
	}
}

func TestVerifyFlagsDeletedTaskWithSequence(t *testing.T) {
	database := newTestDB(t)

	insertTask(t, database, "task-a", 4, "2024-01-01T00:00:00Z", "")
	insertTask(t, database, "task-gone", 4, "2024-01-02T00:00:00Z", "2024-02-01T00:00:00Z")

	var out bytes.Buffer
	if _, err := Backfill(database, &out, false); err != nil {
		t.Fatalf("backfill failed: %v", err)
	}

	// Something other than backfill wrote a sequence onto a deleted row.
	if _, err := database.Exec("UPDATE tasks SET project_sequence = 9 WHERE id = 'task-gone'"); err != nil {
		t.Fatalf("failed to set sequence on deleted task: %v", err)
	}

	report, err := VerifyProjects(database)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if report.OK() {
		t.Fatal("expected verification to fail")
	}
	found := false
	for _, pr := range report.Problems {
		for _, problem := range pr.Problems {
			if strings.Contains(problem, "deleted task task-gone carries sequence 9") {
				found = true
			}
		}
	}
	if !found {
		t.Errorf("expected deleted-with-sequence problem, got: %+v", report.Problems)
	}
}

func TestVerifyStoredAndExpectedLinesForDiff(t *testing.T) {
	database := newTestDB(t)

	insertTask(t, database, "task-a", 1, "2024-01-01T00:00:00Z", "")
	insertTask(t, database, "task-b", 1, "2024-01-02T00:00:00Z", "")

	if _, err := database.Exec("UPDATE tasks SET project_sequence = 5 WHERE id = 'task-a'"); err != nil {
		t.Fatalf("failed to set sequence: %v", err)
	}

	report, err := VerifyProjects(database)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if report.OK() {
		t.Fatal("expected verification to fail")
	}

	pr := report.Problems[0]
	if len(pr.StoredLines) != 2 || len(pr.ExpectedLines) != 2 {
		t.Fatalf("expected 2 stored and 2 expected lines, got %d and %d", len(pr.StoredLines), len(pr.ExpectedLines))
	}
	if pr.StoredLines[0] != "Task task-a: #5\n" {
		t.Errorf("unexpected stored line: %q", pr.StoredLines[0])
	}
	if pr.ExpectedLines[0] != "Task task-a: #1\n" {
		t.Errorf("unexpected expected line: %q", pr.ExpectedLines[0])
	}
}

func TestCollectStats(t *testing.T) {
	database := newTestDB(t)

	insertTask(t, database, "task-a", 1, "2024-01-01T00:00:00Z", "")
	insertTask(t, database, "task-b", 1, "2024-01-02T00:00:00Z", "")
	insertTask(t, database, "task-c", 2, "2024-01-03T00:00:00Z", "")
	insertTask(t, database, "task-d", 3, "2024-01-04T00:00:00Z", "2024-02-01T00:00:00Z")

	var out bytes.Buffer
	if _, err := Backfill(database, &out, false); err != nil {
		t.Fatalf("backfill failed: %v", err)
	}

	stats, err := CollectStats(database)
	if err != nil {
		t.Fatalf("failed to collect stats: %v", err)
	}

	if stats.TotalTasks != 4 {
		t.Errorf("expected 4 total tasks, got %d", stats.TotalTasks)
	}
	if stats.LiveTasks != 3 {
		t.Errorf("expected 3 live tasks, got %d", stats.LiveTasks)
	}
	if stats.DeletedTasks != 1 {
		t.Errorf("expected 1 deleted task, got %d", stats.DeletedTasks)
	}
	if stats.SequencedTasks != 3 {
		t.Errorf("expected 3 sequenced tasks, got %d", stats.SequencedTasks)
	}
	if stats.UnsequencedLive != 0 {
		t.Errorf("expected 0 unsequenced live tasks, got %d", stats.UnsequencedLive)
	}
	if stats.Projects != 2 {
		t.Errorf("expected 2 live projects, got %d", stats.Projects)
	}
}
