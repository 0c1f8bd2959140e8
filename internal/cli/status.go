package cli

import (
	"fmt"

	"github.com/lmoreno/taskseq/internal/render"
	"github.com/lmoreno/taskseq/internal/sequence"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show task and sequencing counts",
	RunE:  runStatus,
}

var statusOutput string

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusOutput, "output", "", "Output format: table, json, or yaml")
}

func runStatus(cmd *cobra.Command, args []string) error {
	database, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	stats, err := sequence.CollectStats(database)
	if err != nil {
		return err
	}

	formatStr, err := outputFormat(cmd, statusOutput)
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	switch format {
	case render.FormatJSON:
		return render.RenderJSON(out, stats)
	case render.FormatYAML:
		return render.RenderYAML(out, stats)
	default:
		fmt.Fprintf(out, "Database: %s\n\n", database.Path())
		fmt.Fprintf(out, "  Projects:           %d\n", stats.Projects)
		fmt.Fprintf(out, "  Tasks:              %d\n", stats.TotalTasks)
		fmt.Fprintf(out, "  Live:               %d\n", stats.LiveTasks)
		fmt.Fprintf(out, "  Deleted:            %d\n", stats.DeletedTasks)
		fmt.Fprintf(out, "  Sequenced:          %d\n", stats.SequencedTasks)
		fmt.Fprintf(out, "  Unsequenced (live): %d\n", stats.UnsequencedLive)
		return nil
	}
}
