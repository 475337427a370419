// Package cmd holds the jarviz command line. With no subcommand it launches
// the terminal launcher; the subcommands expose the same tools for scripts.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nixlim/jarviz/internal/config"
	"github.com/nixlim/jarviz/internal/logging"
	"github.com/nixlim/jarviz/internal/settings"
)

var (
	// Global flags
	configPath   string
	settingsPath string
	debug        bool

	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "jarviz",
	Short: "JARVIZ - a terminal control deck of small desktop utilities",
	Long: `JARVIZ is a keyboard-driven launcher for small utilities: a GitHub ZIP
downloader, an input capture recorder, a live screen preview, coding helpers
and game event timers.

Run without arguments to open the launcher. Press Ctrl+K inside it to search.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runLauncher,
}

// setup loads the config and builds the logger shared by every command.
func setup(cmd *cobra.Command) error {
	var (
		res *config.LoadResult
		err error
	)
	if configPath == "" {
		res, err = config.Load()
	} else {
		res, err = config.LoadFrom(config.ExpandPath(configPath))
	}
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "jarviz: config warning: %s\n", w)
	}
	cfg = res.Config

	l, err := logging.New(cfg.Log, debug)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "jarviz: logging disabled: %v\n", err)
		l = zap.NewNop()
	}
	logger = l.Named("jarviz")
	return nil
}

// resolveSettingsPath returns the --settings flag or the per-user default.
func resolveSettingsPath() (string, error) {
	if settingsPath != "" {
		return config.ExpandPath(settingsPath), nil
	}
	return settings.DefaultPath()
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "jarviz: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.toml (default ~/.config/jarviz/config.toml)")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Path to settings.json (default: per-user config dir)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log at debug level")
	rootCmd.SilenceErrors = true
}
