package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nixlim/jarviz/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent downloads and capture sessions",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Entries to show per section")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, persistent, err := history.NewStore(cfg.Storage, logger.Named("history"))
	if err != nil {
		return fmt.Errorf("history error: %w", err)
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if !persistent {
		fmt.Fprintln(out, "History database unavailable; nothing recorded.")
		return nil
	}

	t := store.Totals()
	fmt.Fprintf(out, "%d downloads (%d failed, %s) · %d captures (%s events)\n\n",
		t.Downloads, t.FailedDownloads, humanize.Bytes(uint64(t.Bytes)),
		t.Captures, humanize.Comma(int64(t.Events)))

	now := time.Now()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DOWNLOADED\tREPO\tBRANCH\tRESULT")
	for _, d := range store.RecentDownloads(historyLimit) {
		result := humanize.Bytes(uint64(d.Bytes))
		if d.Status == history.StatusFailed {
			result = "failed: " + d.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", humanize.RelTime(d.At, now, "ago", "from now"), d.Repo, d.Branch, result)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CAPTURED\tMODE\tEVENTS\tDURATION\tFILE")
	for _, c := range store.RecentCaptures(historyLimit) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			humanize.RelTime(c.StartedAt, now, "ago", "from now"), c.Mode,
			humanize.Comma(int64(c.Events)), c.Duration().Round(time.Second), c.Path)
	}
	return tw.Flush()
}
