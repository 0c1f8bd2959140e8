package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/lmoreno/taskseq/internal/render"
	"github.com/lmoreno/taskseq/internal/sequence"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the per-project sequence invariant",
	Long: `Verify checks that every project's live tasks carry project_sequence
values 1..N in creation order, with no gaps or duplicates, and that no
soft-deleted task carries a sequence.

Exits with status 1 when the invariant does not hold.`,
	RunE: runVerify,
}

var (
	verifyOutput string
	verifyDiff   bool
)

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&verifyOutput, "output", "", "Output format: table, json, or yaml")
	verifyCmd.Flags().BoolVar(&verifyDiff, "diff", false, "Show a stored-vs-expected diff for each broken project")
}

func runVerify(cmd *cobra.Command, args []string) error {
	database, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	report, err := sequence.VerifyProjects(database)
	if err != nil {
		return err
	}

	formatStr, err := outputFormat(cmd, verifyOutput)
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
		if err := render.RenderJSON(out, report); err != nil {
			return err
		}
	case render.FormatYAML:
		if err := render.RenderYAML(out, report); err != nil {
			return err
		}
	default:
		printVerifyReport(cmd, report)
	}

	if !report.OK() {
		os.Exit(1)
	}
	return nil
}

func printVerifyReport(cmd *cobra.Command, report *sequence.VerifyReport) {
	out := cmd.OutOrStdout()

	if report.OK() {
		fmt.Fprintf(out, "✓ %d live task(s) across %d project(s) satisfy the sequence invariant\n",
			report.LiveTasks, report.ProjectsChecked)
		return
	}

	for _, pr := range report.Problems {
		fmt.Fprintf(out, "Project %d:\n", pr.ProjectID)
		for _, problem := range pr.Problems {
			fmt.Fprintf(out, "  ✗ %s\n", problem)
		}
		if verifyDiff && len(pr.ExpectedLines) > 0 {
			diff := difflib.UnifiedDiff{
				A:        pr.StoredLines,
				B:        pr.ExpectedLines,
				FromFile: "stored",
				ToFile:   "expected",
				Context:  3,
			}
			if diffText, err := difflib.GetUnifiedDiffString(diff); err == nil && diffText != "" {
				fmt.Fprintln(out, indent(diffText, "  "))
			}
		}
	}
	fmt.Fprintf(out, "\n%d of %d project(s) violate the sequence invariant\n",
		len(report.Problems), report.ProjectsChecked)
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
