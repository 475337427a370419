//go:build !linux && !darwin

package grab

// NewPlatformGrabber returns a grabber that always fails with ErrUnsupported.
func NewPlatformGrabber() Grabber {
	return unsupportedGrabber{}
}
