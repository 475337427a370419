package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nixlim/jarviz/internal/capture"
	"github.com/nixlim/jarviz/internal/config"
	"github.com/nixlim/jarviz/internal/history"
)

var (
	recordTarget   string
	recordMode     string
	recordRate     int
	recordOut      string
	recordDuration time.Duration
)

// stopSignals end long-running commands cleanly so output is flushed before exit.
var stopSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Record or inspect input capture logs",
}

var captureRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record pointer and keyboard input until interrupted",
	Long: `Record global pointer and keyboard input to a JSON-lines log while the
target window has focus. Stop with Ctrl+C or --duration.`,
	Args: cobra.NoArgs,
	RunE: runCaptureRecord,
}

var captureInspectCmd = &cobra.Command{
	Use:   "inspect <log>",
	Short: "Summarise a capture log",
	Args:  cobra.ExactArgs(1),
	RunE:  runCaptureInspect,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.AddCommand(captureRecordCmd, captureInspectCmd)

	captureRecordCmd.Flags().StringVarP(&recordTarget, "target", "t", "", "Foreground window title to match (default: capture.target_window)")
	captureRecordCmd.Flags().StringVarP(&recordMode, "mode", "m", "", `"event" or "fixed" (default: capture.mode)`)
	captureRecordCmd.Flags().IntVarP(&recordRate, "rate", "r", 0, "Fixed-mode pointer throttle in ms (default: capture.fixed_rate_ms)")
	captureRecordCmd.Flags().StringVarP(&recordOut, "out", "o", "", "Log path (default: a new file in capture.output_dir)")
	captureRecordCmd.Flags().DurationVarP(&recordDuration, "duration", "d", 0, "Stop after this long (default: until Ctrl+C)")
}

// recordConfig merges the flags over the capture config.
func recordConfig(cc config.CaptureConfig, now time.Time) capture.Config {
	c := capture.Config{
		TargetWindow: cc.TargetWindow,
		Mode:         capture.ParseMode(cc.Mode),
		FixedRateMS:  cc.FixedRateMS,
		OutputPath:   filepath.Join(config.ExpandPath(cc.OutputDir), "capture_"+now.Format("20060102_150405")+".jsonl"),
	}
	if recordTarget != "" {
		c.TargetWindow = recordTarget
	}
	if recordMode != "" {
		c.Mode = capture.ParseMode(recordMode)
	}
	if recordRate > 0 {
		c.FixedRateMS = max(1, min(250, recordRate))
	}
	if recordOut != "" {
		c.OutputPath = config.ExpandPath(recordOut)
	}
	return c
}

func runCaptureRecord(cmd *cobra.Command, args []string) error {
	store, _, err := history.NewStore(cfg.Storage, logger.Named("history"))
	if err != nil {
		return fmt.Errorf("history error: %w", err)
	}
	defer store.Close()

	rec := newRecorder(cfg.Capture, store, nil, logger)
	if !rec.Available() {
		return capture.ErrBackendUnavailable
	}
	stderr := cmd.ErrOrStderr()
	if !rec.SupportsForegroundGate() {
		fmt.Fprintln(stderr, "warning: foreground-window gating is unavailable; input from any window is recorded")
	}

	// Signals are caught before recording starts so none can skip the flush.
	ctx, stop := signal.NotifyContext(cmd.Context(), stopSignals...)
	defer stop()

	c := recordConfig(cfg.Capture, time.Now())
	if err := rec.Start(c); err != nil {
		return err
	}
	fmt.Fprintf(stderr, "Recording to %s (mode %s). Press Ctrl+C to stop.\n", c.OutputPath, c.Mode)

	if recordDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, recordDuration)
		defer cancel()
	}
	<-ctx.Done()

	if err := rec.Stop(); err != nil {
		return err
	}
	st := rec.Status()
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s events in %s\n",
		c.OutputPath, humanize.Comma(int64(st.EventsWritten)), time.Since(st.StartedAt).Round(time.Second))
	return nil
}

func runCaptureInspect(cmd *cobra.Command, args []string) error {
	sum, err := capture.Summarize(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s events over %.1fs\n", args[0], humanize.Comma(int64(sum.Total)), sum.Duration())

	types := make([]string, 0, len(sum.Counts))
	for t := range sum.Counts {
		types = append(types, string(t))
	}
	sort.Strings(types)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, t := range types {
		fmt.Fprintf(tw, "  %s\t%d\n", t, sum.Counts[capture.EventType(t)])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if sum.Malformed > 0 {
		fmt.Fprintf(out, "  %d malformed lines skipped\n", sum.Malformed)
	}
	return nil
}
