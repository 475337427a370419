//go:build !linux && !darwin

package capture

// NewPlatformProbe returns a probe that disables foreground gating.
func NewPlatformProbe() ForegroundProbe {
	return NoForegroundProbe()
}
