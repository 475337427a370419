package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nixlim/jarviz/internal/schedule"
)

var scheduleLimit int

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print countdowns to the next world events",
	Args:  cobra.NoArgs,
	RunE:  runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().IntVarP(&scheduleLimit, "limit", "n", 0, "Dated lines to read from the page (default: schedule.limit)")
}

func newScheduleClient() *schedule.Client {
	return schedule.NewClient(
		schedule.WithURL(cfg.Schedule.URL),
		schedule.WithLogger(logger.Named("schedule")),
	)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	limit := scheduleLimit
	if limit <= 0 {
		limit = cfg.Schedule.Limit
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	events, err := newScheduleClient().Fetch(ctx, limit)
	if err != nil {
		return err
	}

	now := time.Now()
	out := cmd.OutOrStdout()
	for _, line := range schedule.Lines(schedule.NextByKind(events), now) {
		fmt.Fprintln(out, line)
	}
	if len(events) > 0 {
		fmt.Fprintln(out)
	}
	for _, e := range events {
		label := e.Label
		if label == "" {
			label = string(e.Kind)
		}
		fmt.Fprintf(out, "%s  %8s  %s\n", e.StartsAt.Format("Mon 3:04 PM"), schedule.FormatCountdown(e.StartsAt, now), label)
	}
	return nil
}
