package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/nixlim/jarviz/internal/config"
	"github.com/nixlim/jarviz/internal/settings"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write default settings and create the capture directory",
	Long: `Write a default settings.json if none exists and create the capture output
directory. Existing settings are never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	sPath, err := resolveSettingsPath()
	if err != nil {
		return err
	}
	switch _, err := os.Stat(sPath); {
	case err == nil:
		fmt.Fprintf(out, "Settings already exist at %s. No changes needed.\n", sPath)
	case errors.Is(err, fs.ErrNotExist):
		if err := settings.Save(sPath, settings.Defaults()); err != nil {
			return err
		}
		fmt.Fprintf(out, "Settings written to %s\n", sPath)
	default:
		return fmt.Errorf("checking settings: %w", err)
	}

	dir := config.ExpandPath(cfg.Capture.OutputDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating capture directory: %w", err)
	}
	fmt.Fprintf(out, "Captures will be saved under %s\n", dir)
	return nil
}
