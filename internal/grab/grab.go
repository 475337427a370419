// Package grab captures a rectangle of the screen and renders it for the
// terminal preview page.
package grab

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os/exec"
)

// ErrUnsupported is returned when no screen grabber exists on this host.
var ErrUnsupported = errors.New("screen capture is not supported on this system")

// Region is a screen rectangle in pixels relative to the primary monitor.
type Region struct {
	X int `toml:"x"`
	Y int `toml:"y"`
	W int `toml:"w"`
	H int `toml:"h"`
}

// DefaultRegion is the initial preview rectangle.
var DefaultRegion = Region{X: 0, Y: 0, W: 800, H: 600}

// Validate rejects empty or negative rectangles.
func (r Region) Validate() error {
	if r.W <= 0 || r.H <= 0 {
		return fmt.Errorf("region size must be positive, got %dx%d", r.W, r.H)
	}
	if r.X < 0 || r.Y < 0 {
		return fmt.Errorf("region origin must not be negative, got %d,%d", r.X, r.Y)
	}
	return nil
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.W, r.H, r.X, r.Y)
}

// Grabber captures a screen region.
type Grabber interface {
	Available() bool
	Grab(ctx context.Context, r Region) (image.Image, error)
}

type unsupportedGrabber struct{}

func (unsupportedGrabber) Available() bool { return false }

func (unsupportedGrabber) Grab(context.Context, Region) (image.Image, error) {
	return nil, ErrUnsupported
}

// runPNG runs an external capture tool that writes PNG to stdout.
func runPNG(ctx context.Context, name string, args ...string) (image.Image, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return decodePNG(out)
}

func decodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding screenshot: %w", err)
	}
	return img, nil
}
