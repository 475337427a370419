// Package settings persists the user's launcher preferences as a small JSON
// file in the per-user config directory.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultAccent is the accent colour used until the user picks another.
const DefaultAccent = "#3aa3ff"

// ErrInvalidAccent is returned for accent values that are not #rgb or #rrggbb.
var ErrInvalidAccent = errors.New("accent must be a hex colour like #3aa3ff")

// Settings are the persisted preferences. All fields load and save
// symmetrically.
type Settings struct {
	Accent         string `json:"accent"`
	StartMaximized bool   `json:"start_maximized"`
	TesseractPath  string `json:"tesseract_path"`
}

// Defaults returns the settings used when no file exists.
func Defaults() Settings {
	return Settings{Accent: DefaultAccent}
}

var accentPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateAccent checks that s is a #rgb or #rrggbb colour.
func ValidateAccent(s string) error {
	if !accentPattern.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidAccent, s)
	}
	return nil
}

// Validate checks every field.
func (s Settings) Validate() error {
	return ValidateAccent(s.Accent)
}

// DefaultPath returns <user config dir>/JARVIZ/settings.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(dir, "JARVIZ", "settings.json"), nil
}

// Load reads the settings file at path. The returned Settings are always
// usable: a missing file yields Defaults with a nil error, and an unreadable
// or corrupt file yields Defaults together with an error describing why.
// Fields absent from the file keep their defaults.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Defaults(), nil
		}
		return Defaults(), fmt.Errorf("reading settings: %w", err)
	}

	s := Defaults()
	if err := json.Unmarshal(data, &s); err != nil {
		return Defaults(), fmt.Errorf("settings file %s is corrupt, using defaults: %w", path, err)
	}
	s.Accent = strings.TrimSpace(s.Accent)
	if err := ValidateAccent(s.Accent); err != nil {
		s.Accent = DefaultAccent
		return s, err
	}
	return s, nil
}

// Save validates s and writes it to path atomically, keeping the existing
// file's indentation.
func Save(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("permission denied creating directory %s", filepath.Dir(path))
		}
		return fmt.Errorf("creating settings directory: %w", err)
	}

	indent := "  "
	if existing, err := os.ReadFile(path); err == nil {
		indent = detectIndent(existing)
	}
	return writeAtomic(path, s, indent)
}
