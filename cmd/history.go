package cmd

import (
	"fmt"
	"time"

	"github.com/KaramelBytes/blogctl/internal/deploy"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List past deploys, or show one in detail",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h := deploy.NewHistory(cfg.HistoryDir())
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			r, err := h.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "run_id: %s\nstarted: %s\n", r.RunID, r.StartedAt.Format(time.RFC3339))
			printReport(out, r)
			return nil
		}
		reports, err := h.List(historyLimit)
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			fmt.Fprintln(out, "(no deploys)")
			return nil
		}
		rows := make([][]string, 0, len(reports))
		for _, r := range reports {
			status := "ok"
			switch {
			case r.DryRun:
				status = "dry-run"
			case !r.OK():
				status = fmt.Sprintf("failed (%d)", len(r.Failed()))
			}
			rows = append(rows, []string{
				shortID(r.RunID),
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Duration().Round(time.Millisecond).String(),
				status,
			})
		}
		return writeTable(out, []string{"RUN", "STARTED", "DURATION", "STATUS"}, rows)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of deploys to show (0 for all)")
}
