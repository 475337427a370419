//go:build darwin

package grab

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
)

// screencaptureGrabber uses the macOS screencapture tool. It cannot write to
// stdout, so each grab goes through a temp file.
type screencaptureGrabber struct{}

// NewPlatformGrabber returns the screencapture-based grabber.
func NewPlatformGrabber() Grabber {
	return screencaptureGrabber{}
}

func (screencaptureGrabber) Available() bool {
	_, err := exec.LookPath("screencapture")
	return err == nil
}

func (screencaptureGrabber) Grab(ctx context.Context, r Region) (image.Image, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "jarviz-grab-*.png")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	_ = f.Close()
	defer os.Remove(path)

	rect := fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.W, r.H)
	if out, err := exec.CommandContext(ctx, "screencapture", "-x", "-R", rect, "-t", "png", path).CombinedOutput(); err != nil {
		return nil, fmt.Errorf("screencapture: %w: %s", err, out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading screenshot: %w", err)
	}
	return decodePNG(data)
}
