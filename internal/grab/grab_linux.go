//go:build linux

package grab

import (
	"context"
	"image"
	"os/exec"
)

// importGrabber shells out to ImageMagick's import on X11.
type importGrabber struct{}

// NewPlatformGrabber returns the ImageMagick-based grabber.
func NewPlatformGrabber() Grabber {
	return importGrabber{}
}

func (importGrabber) Available() bool {
	_, err := exec.LookPath("import")
	return err == nil
}

func (g importGrabber) Grab(ctx context.Context, r Region) (image.Image, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if !g.Available() {
		return nil, ErrUnsupported
	}
	return runPNG(ctx, "import", "-silent", "-window", "root", "-crop", r.String(), "+repage", "png:-")
}
