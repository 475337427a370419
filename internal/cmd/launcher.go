package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nixlim/jarviz/internal/history"
	"github.com/nixlim/jarviz/internal/settings"
	"github.com/nixlim/jarviz/internal/tui"
)

func runLauncher(cmd *cobra.Command, args []string) error {
	sPath, err := resolveSettingsPath()
	if err != nil {
		return err
	}

	var opts []tui.ModelOption
	s, err := settings.Load(sPath)
	if err != nil {
		logger.Warn("settings load failed", zap.String("path", sPath), zap.Error(err))
		opts = append(opts, tui.WithNotice("settings: "+err.Error(), true))
	}

	store, persistent, err := history.NewStore(cfg.Storage, logger.Named("history"))
	if err != nil {
		return fmt.Errorf("history error: %w", err)
	}
	if !persistent && cfg.Storage.DBPath != "" {
		opts = append(opts, tui.WithNotice("history is in memory only: database unavailable", true))
	}

	a := newApp(cfg, store, persistent, logger)

	var once sync.Once
	shutdown := func() {
		once.Do(func() {
			if err := a.shutdown(); err != nil {
				logger.Warn("shutdown incomplete", zap.Error(err))
			}
		})
	}
	defer shutdown()
	opts = append(opts, tui.WithOnShutdown(shutdown))

	model := tui.NewModel(cfg, s, a.pages(s, sPath), opts...)

	var progOpts []tea.ProgramOption
	if s.StartMaximized {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	p := tea.NewProgram(model, progOpts...)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	watcher := settings.NewWatcher(sPath, func(s settings.Settings, err error) {
		p.Send(tui.SettingsChangedMsg{Settings: s, Err: err})
	}, settings.WithWatcherLogger(logger.Named("settings")))
	if err := watcher.Start(ctx); err != nil {
		logger.Warn("settings watcher disabled", zap.Error(err))
	}
	defer func() {
		if err := watcher.Stop(); err != nil {
			logger.Warn("stopping settings watcher", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			shutdown()
			p.Quit()
		case <-ctx.Done():
		}
	}()

	logger.Info("launcher started", zap.Bool("persistent_history", persistent), zap.String("settings", sPath))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
