//go:build !linux

package capture

// NewPlatformBackend returns a backend that reports itself unavailable.
func NewPlatformBackend() Backend {
	return unavailableBackend{}
}
