package capture

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// commandProbe reads the foreground window title from an external helper
// command such as xdotool or osascript.
type commandProbe struct {
	name string
	args []string
}

func (p commandProbe) Supported() bool {
	_, err := exec.LookPath(p.name)
	return err == nil
}

func (p commandProbe) ForegroundTitle(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, p.name, p.args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.name, err)
	}
	return strings.TrimSpace(string(out)), nil
}
