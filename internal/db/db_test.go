package db

import (
	"path/filepath"
	"testing"
)

func TestOpenExistingRejectsMissingFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing.db")

	_, err := OpenExisting(dbPath)
	if err == nil {
		t.Fatal("expected OpenExisting to fail for a missing file")
	}
}

func TestOpenExistingOpensCreatedDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	database, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	database.Close()

	reopened, err := OpenExisting(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer reopened.Close()

	var count int
	if err := reopened.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&count); err != nil {
		t.Fatalf("tasks table missing after reopen: %v", err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	database, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	applied, err := database.MigrateWithInfo()
	if err != nil {
		t.Fatalf("first migrate failed: %v", err)
	}
	if len(applied) == 0 {
		t.Fatal("expected at least one migration to apply")
	}

	applied, err = database.MigrateWithInfo()
	if err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("expected no migrations on second run, got %v", applied)
	}
}
