// Package config loads jarviz's TOML configuration. Every key is optional;
// missing keys keep their defaults and unknown keys produce warnings rather
// than errors.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Capture  CaptureConfig  `toml:"capture"`
	Download DownloadConfig `toml:"download"`
	Schedule ScheduleConfig `toml:"schedule"`
	Preview  PreviewConfig  `toml:"preview"`
	Overlay  OverlayConfig  `toml:"overlay"`
	Storage  StorageConfig  `toml:"storage"`
	Display  DisplayConfig  `toml:"display"`
	Log      LogConfig      `toml:"log"`
}

type CaptureConfig struct {
	TargetWindow   string `toml:"target_window"`
	Mode           string `toml:"mode"`
	FixedRateMS    int    `toml:"fixed_rate_ms"`
	GateIntervalMS int    `toml:"gate_interval_ms"`
	OutputDir      string `toml:"output_dir"`
	TailSize       int    `toml:"tail_size"`
}

type DownloadConfig struct {
	OutputDir      string `toml:"output_dir"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// TokenEnv names the environment variable holding a GitHub token.
	TokenEnv string `toml:"token_env"`
}

type ScheduleConfig struct {
	URL            string `toml:"url"`
	Limit          int    `toml:"limit"`
	RefreshSeconds int    `toml:"refresh_seconds"`
}

type PreviewConfig struct {
	FPS int `toml:"fps"`
	X   int `toml:"x"`
	Y   int `toml:"y"`
	W   int `toml:"w"`
	H   int `toml:"h"`
}

type OverlayConfig struct {
	// Terminal is the command prefix used to give the overlay its own
	// terminal window, e.g. "x-terminal-emulator -e". Empty runs it detached
	// from any terminal.
	Terminal           string `toml:"terminal"`
	StopTimeoutSeconds int    `toml:"stop_timeout_seconds"`
}

type StorageConfig struct {
	DBPath        string `toml:"db_path"`
	RetentionDays int    `toml:"retention_days"`
}

type DisplayConfig struct {
	PaletteLimit  int `toml:"palette_limit"`
	RefreshRateMS int `toml:"refresh_rate_ms"`
}

type LogConfig struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

type LoadResult struct {
	Config   Config
	Warnings []string
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Capture: CaptureConfig{
			TargetWindow:   "Diablo IV",
			Mode:           "event",
			FixedRateMS:    25,
			GateIntervalMS: 150,
			OutputDir:      "~/Documents/JARVIZ/captures",
			TailSize:       200,
		},
		Download: DownloadConfig{
			OutputDir:      "~/Downloads",
			TimeoutSeconds: 60,
			TokenEnv:       "GITHUB_TOKEN",
		},
		Schedule: ScheduleConfig{
			URL:            "https://helltides.com/schedule",
			Limit:          40,
			RefreshSeconds: 60,
		},
		Preview: PreviewConfig{
			FPS: 10,
			W:   800,
			H:   600,
		},
		Overlay: OverlayConfig{
			Terminal:           "x-terminal-emulator -e",
			StopTimeoutSeconds: 3,
		},
		Storage: StorageConfig{
			DBPath:        "~/.local/share/jarviz/jarviz.db",
			RetentionDays: 90,
		},
		Display: DisplayConfig{
			PaletteLimit:  30,
			RefreshRateMS: 1000,
		},
		Log: LogConfig{
			Path:  "",
			Level: "info",
		},
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "jarviz", "config.toml")
}

// DefaultPath returns ~/.config/jarviz/config.toml.
func DefaultPath() string {
	return defaultConfigPath()
}

func Load() (*LoadResult, error) {
	return LoadFrom(defaultConfigPath())
}

func LoadFrom(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &LoadResult{Config: DefaultConfig()}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	result, err := decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := validate(&result.Config); err != nil {
		return nil, err
	}
	return result, nil
}

func LoadFromString(data string) (*LoadResult, error) {
	if data == "" {
		return &LoadResult{Config: DefaultConfig()}, nil
	}
	result, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := validate(&result.Config); err != nil {
		return nil, err
	}
	return result, nil
}

// decode overlays data on the defaults. Keys absent from data are left alone,
// and keys the Config does not know are reported as warnings.
func decode(data string) (*LoadResult, error) {
	result := &LoadResult{Config: DefaultConfig()}
	md, err := toml.Decode(data, &result.Config)
	if err != nil {
		return nil, err
	}
	for _, key := range md.Undecoded() {
		result.Warnings = append(result.Warnings, fmt.Sprintf("unknown config key: %q", key.String()))
	}
	return result, nil
}

func validate(cfg *Config) error {
	var errs []string

	switch cfg.Capture.Mode {
	case "event", "fixed":
	default:
		errs = append(errs, fmt.Sprintf(`capture mode must be "event" or "fixed", got %q`, cfg.Capture.Mode))
	}
	if cfg.Capture.FixedRateMS < 1 {
		errs = append(errs, fmt.Sprintf("capture fixed_rate_ms must be positive, got %d", cfg.Capture.FixedRateMS))
	}
	if cfg.Capture.GateIntervalMS < 10 {
		errs = append(errs, fmt.Sprintf("capture gate_interval_ms must be at least 10, got %d", cfg.Capture.GateIntervalMS))
	}
	if cfg.Capture.TailSize < 1 {
		errs = append(errs, fmt.Sprintf("capture tail_size must be positive, got %d", cfg.Capture.TailSize))
	}

	if cfg.Download.TimeoutSeconds < 1 {
		errs = append(errs, fmt.Sprintf("download timeout_seconds must be positive, got %d", cfg.Download.TimeoutSeconds))
	}

	if cfg.Schedule.URL == "" {
		errs = append(errs, "schedule url must not be empty")
	}
	if cfg.Schedule.Limit < 1 {
		errs = append(errs, fmt.Sprintf("schedule limit must be positive, got %d", cfg.Schedule.Limit))
	}
	if cfg.Schedule.RefreshSeconds < 5 {
		errs = append(errs, fmt.Sprintf("schedule refresh_seconds must be at least 5, got %d", cfg.Schedule.RefreshSeconds))
	}

	if cfg.Preview.FPS < 1 || cfg.Preview.FPS > 30 {
		errs = append(errs, fmt.Sprintf("preview fps must be 1-30, got %d", cfg.Preview.FPS))
	}
	if cfg.Preview.W < 1 || cfg.Preview.H < 1 {
		errs = append(errs, fmt.Sprintf("preview w and h must be positive, got %dx%d", cfg.Preview.W, cfg.Preview.H))
	}
	if cfg.Preview.X < 0 || cfg.Preview.Y < 0 {
		errs = append(errs, fmt.Sprintf("preview x and y must not be negative, got %d,%d", cfg.Preview.X, cfg.Preview.Y))
	}

	if cfg.Overlay.StopTimeoutSeconds < 1 {
		errs = append(errs, fmt.Sprintf("overlay stop_timeout_seconds must be positive, got %d", cfg.Overlay.StopTimeoutSeconds))
	}

	if cfg.Storage.RetentionDays <= 0 {
		errs = append(errs, fmt.Sprintf("storage retention_days must be positive, got %d", cfg.Storage.RetentionDays))
	}

	if cfg.Display.PaletteLimit < 1 {
		errs = append(errs, fmt.Sprintf("display palette_limit must be positive, got %d", cfg.Display.PaletteLimit))
	}
	if cfg.Display.RefreshRateMS < 1 {
		errs = append(errs, fmt.Sprintf("display refresh_rate_ms must be positive, got %d", cfg.Display.RefreshRateMS))
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log level must be debug, info, warn or error, got %q", cfg.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation error: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
