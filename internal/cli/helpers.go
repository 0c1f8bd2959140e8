package cli

import (
	"fmt"

	"github.com/lmoreno/taskseq/internal/config"
	"github.com/lmoreno/taskseq/internal/db"
	"github.com/spf13/cobra"
)

// resolveDBPath returns the database path from the --db flag or config.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}

	if dbPath := cmd.Flag("db").Value.String(); dbPath != "" {
		return dbPath, nil
	}
	return cfg.DBPath, nil
}

// openDatabase opens an existing database resolved via flag/config.
// Maintenance commands must not create the database as a side effect.
func openDatabase(cmd *cobra.Command) (*db.DB, error) {
	path, err := resolveDBPath(cmd)
	if err != nil {
		return nil, err
	}
	return db.OpenExisting(path)
}

// outputFormat returns the effective output format from flag or config.
func outputFormat(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg.Output, nil
}
