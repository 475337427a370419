package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigParser_Defaults(t *testing.T) {
	result, err := LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("expected no error for missing config file, got: %v", err)
	}

	cfg := result.Config

	if cfg.Capture.TargetWindow != "Diablo IV" {
		t.Errorf("default target_window: want Diablo IV, got %s", cfg.Capture.TargetWindow)
	}
	if cfg.Capture.Mode != "event" {
		t.Errorf("default mode: want event, got %s", cfg.Capture.Mode)
	}
	if cfg.Capture.FixedRateMS != 25 {
		t.Errorf("default fixed_rate_ms: want 25, got %d", cfg.Capture.FixedRateMS)
	}
	if cfg.Capture.GateIntervalMS != 150 {
		t.Errorf("default gate_interval_ms: want 150, got %d", cfg.Capture.GateIntervalMS)
	}
	if cfg.Download.TimeoutSeconds != 60 {
		t.Errorf("default timeout_seconds: want 60, got %d", cfg.Download.TimeoutSeconds)
	}
	if cfg.Download.TokenEnv != "GITHUB_TOKEN" {
		t.Errorf("default token_env: want GITHUB_TOKEN, got %s", cfg.Download.TokenEnv)
	}
	if cfg.Schedule.Limit != 40 {
		t.Errorf("default schedule limit: want 40, got %d", cfg.Schedule.Limit)
	}
	if cfg.Preview.FPS != 10 || cfg.Preview.W != 800 || cfg.Preview.H != 600 {
		t.Errorf("default preview: got %+v", cfg.Preview)
	}
	if cfg.Overlay.Terminal != "x-terminal-emulator -e" || cfg.Overlay.StopTimeoutSeconds != 3 {
		t.Errorf("default overlay: got %+v", cfg.Overlay)
	}
	if cfg.Display.PaletteLimit != 30 {
		t.Errorf("default palette_limit: want 30, got %d", cfg.Display.PaletteLimit)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default log level: want info, got %s", cfg.Log.Level)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("defaults should not warn: %v", result.Warnings)
	}
}

func TestConfigParser_PartialConfig(t *testing.T) {
	tomlData := `
[capture]
mode = "fixed"
fixed_rate_ms = 40
`
	result, err := LoadFromString(tomlData)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := result.Config
	if cfg.Capture.Mode != "fixed" {
		t.Errorf("mode: want fixed, got %s", cfg.Capture.Mode)
	}
	if cfg.Capture.FixedRateMS != 40 {
		t.Errorf("fixed_rate_ms: want 40, got %d", cfg.Capture.FixedRateMS)
	}
	if cfg.Capture.TargetWindow != "Diablo IV" {
		t.Errorf("target_window should keep its default, got %q", cfg.Capture.TargetWindow)
	}
	if cfg.Capture.GateIntervalMS != 150 {
		t.Errorf("gate_interval_ms should keep its default, got %d", cfg.Capture.GateIntervalMS)
	}
	if cfg.Storage.RetentionDays != 90 {
		t.Errorf("untouched section should keep defaults, got %d", cfg.Storage.RetentionDays)
	}
}

func TestConfigParser_InvalidValue(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"unknown capture mode", "[capture]\nmode = \"sometimes\""},
		{"zero fixed rate", "[capture]\nfixed_rate_ms = 0"},
		{"gate interval too small", "[capture]\ngate_interval_ms = 5"},
		{"zero tail", "[capture]\ntail_size = 0"},
		{"zero timeout", "[download]\ntimeout_seconds = 0"},
		{"empty schedule url", "[schedule]\nurl = \"\""},
		{"refresh too fast", "[schedule]\nrefresh_seconds = 1"},
		{"fps over 30", "[preview]\nfps = 60"},
		{"zero width", "[preview]\nw = 0"},
		{"negative x", "[preview]\nx = -1"},
		{"zero overlay stop timeout", "[overlay]\nstop_timeout_seconds = 0"},
		{"zero retention", "[storage]\nretention_days = 0"},
		{"zero palette", "[display]\npalette_limit = 0"},
		{"bad log level", "[log]\nlevel = \"loud\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromString(tt.toml)
			if err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestConfigParser_TypeMismatch(t *testing.T) {
	if _, err := LoadFromString("[capture]\nfixed_rate_ms = \"fast\""); err == nil {
		t.Error("expected parse error for wrong value type")
	}
}

func TestConfigParser_UnknownKey(t *testing.T) {
	tomlData := `
[capture]
fixed_rate_ms = 30
colour = "red"

[mysterious_section]
foo = "bar"
`
	result, err := LoadFromString(tomlData)
	if err != nil {
		t.Fatalf("unknown keys should not cause errors, got: %v", err)
	}

	joined := strings.Join(result.Warnings, "\n")
	if !strings.Contains(joined, `"mysterious_section`) {
		t.Errorf("expected warning for mysterious_section, got %v", result.Warnings)
	}
	if !strings.Contains(joined, `"capture.colour"`) {
		t.Errorf("expected warning for capture.colour, got %v", result.Warnings)
	}
	if result.Config.Capture.FixedRateMS != 30 {
		t.Errorf("known keys should still be loaded: got %d", result.Config.Capture.FixedRateMS)
	}
}

func TestConfigParser_FileLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[download]
output_dir = "/tmp/zips"

[storage]
db_path = ""
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	result, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if result.Config.Download.OutputDir != "/tmp/zips" {
		t.Errorf("output_dir: want /tmp/zips, got %s", result.Config.Download.OutputDir)
	}
	if result.Config.Storage.DBPath != "" {
		t.Errorf("empty db_path should be kept, got %s", result.Config.Storage.DBPath)
	}
}

func TestConfigParser_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[capture\nmode = "), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfigParser_EmptyString(t *testing.T) {
	result, err := LoadFromString("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Config.Capture.FixedRateMS != 25 {
		t.Errorf("empty config should give defaults, got %d", result.Config.Capture.FixedRateMS)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandPath("~/x/y.db"); got != filepath.Join(home, "x", "y.db") {
		t.Errorf("got %s", got)
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path changed: %s", got)
	}
	if got := ExpandPath("~user/x"); got != "~user/x" {
		t.Errorf("~user form should be left alone: %s", got)
	}
}
