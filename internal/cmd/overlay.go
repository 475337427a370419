package cmd

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nixlim/jarviz/internal/schedule"
	"github.com/nixlim/jarviz/internal/settings"
	"github.com/nixlim/jarviz/internal/tui"
)

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Run the compact timer overlay",
	Long: `Run the compact timer overlay in the current terminal. The launcher starts
this in its own terminal window when the overlay is toggled on.`,
	Args: cobra.NoArgs,
	RunE: runOverlay,
}

func init() {
	rootCmd.AddCommand(overlayCmd)
}

func runOverlay(cmd *cobra.Command, args []string) error {
	s := settings.Defaults()
	if sPath, err := resolveSettingsPath(); err == nil {
		if loaded, err := settings.Load(sPath); err == nil {
			s = loaded
		} else {
			logger.Warn("settings load failed", zap.String("path", sPath), zap.Error(err))
		}
	}

	p := tea.NewProgram(tui.NewOverlayModel(s), tea.WithContext(cmd.Context()))
	client := newScheduleClient()
	refresh := time.Duration(cfg.Schedule.RefreshSeconds) * time.Second

	g, ctx := errgroup.WithContext(cmd.Context())
	ctx, cancel := context.WithCancel(ctx)
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return pollSchedule(ctx, client, cfg.Schedule.Limit, refresh, p.Send)
	})
	return g.Wait()
}

// pollSchedule fetches the schedule now and then every interval, handing each
// result to send until ctx is done.
func pollSchedule(ctx context.Context, client *schedule.Client, limit int, interval time.Duration, send func(tea.Msg)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		events, err := client.Fetch(fetchCtx, limit)
		cancel()
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			logger.Warn("schedule refresh failed", zap.Error(err))
		}
		send(tui.ScheduleUpdateMsg{Events: events, Err: err})

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
