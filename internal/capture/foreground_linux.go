//go:build linux

package capture

// NewPlatformProbe returns an X11 foreground probe backed by xdotool. When
// xdotool is not installed the probe reports itself unsupported and gating is
// disabled.
func NewPlatformProbe() ForegroundProbe {
	return commandProbe{
		name: "xdotool",
		args: []string{"getactivewindow", "getwindowname"},
	}
}
