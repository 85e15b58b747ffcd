package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/KaramelBytes/blogctl/internal/deploy"
	"github.com/spf13/cobra"
)

var (
	deployFailFast bool
	deployDryRun   bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Clean, generate, and publish the site, then reload the web server",
	Long: `Runs the five deploy steps in order: clean, generate, remove the published
directory, copy the output into it, and reload the web server.

Every step runs even when an earlier one failed and nothing is rolled back, so a
failed generate still leaves the published directory removed. Use --fail-fast to
stop at the first failure. The command exits non-zero if any step failed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := newSequencer(cfg, logger)
		if err != nil {
			return err
		}
		if deployFailFast {
			seq.FailFast = true
		}
		seq.DryRun = deployDryRun

		report, runErr := seq.Run(cmd.Context())
		printReport(cmd.OutOrStdout(), report)

		if err := deploy.NewHistory(cfg.HistoryDir()).Save(report); err != nil {
			logger.Warn("failed to save deploy report", "error", err)
		}
		if cfg.Metrics.Textfile != "" && !report.DryRun {
			if err := deploy.WriteTextfile(cfg.Metrics.Textfile, report); err != nil {
				logger.Warn("failed to write metrics textfile", "path", cfg.Metrics.Textfile, "error", err)
			}
		}
		if runErr != nil {
			return fmt.Errorf("deploy %s failed: %w", shortID(report.RunID), runErr)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deployCmd)
	deployCmd.Flags().BoolVar(&deployFailFast, "fail-fast", false, "stop at the first failed step")
	deployCmd.Flags().BoolVar(&deployDryRun, "dry-run", false, "record the steps without running them")
}

// printReport renders a deploy report as one line per step.
func printReport(w io.Writer, r *deploy.Report) {
	title := "Deploy " + shortID(r.RunID)
	if r.DryRun {
		title += " (dry run)"
	}
	fmt.Fprintln(w, title)
	for _, s := range r.Steps {
		switch s.Status {
		case deploy.StatusOK:
			fmt.Fprintf(w, "  ✓ %-9s %s\n", s.Name, s.Duration.Round(time.Millisecond))
		case deploy.StatusFailed:
			fmt.Fprintf(w, "  ✗ %-9s %s  %s\n", s.Name, s.Duration.Round(time.Millisecond), s.Error)
		default:
			fmt.Fprintf(w, "  - %-9s skipped\n", s.Name)
		}
	}
	if failed := r.Failed(); len(failed) > 0 {
		fmt.Fprintf(w, "⚠ %d of %d steps failed in %s\n", len(failed), len(r.Steps), r.Duration().Round(time.Millisecond))
		return
	}
	fmt.Fprintf(w, "✓ Done in %s\n", r.Duration().Round(time.Millisecond))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
