package grab

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const halfBlock = "▀"

// Render draws img as rows of upper-half-block cells, two pixels per cell,
// scaled to fit within cols x rows while keeping the aspect ratio.
func Render(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}

	w, h := fit(b.Dx(), b.Dy(), cols, rows*2)

	var sb strings.Builder
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x++ {
			top := sample(img, b, x, y, w, h)
			bottom := top
			if y+1 < h {
				bottom = sample(img, b, x, y+1, w, h)
			}
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render(halfBlock))
		}
		if y+2 < h {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// fit scales srcW x srcH down (never up) to fit maxW x maxH.
func fit(srcW, srcH, maxW, maxH int) (int, int) {
	w, h := srcW, srcH
	if w > maxW {
		h = h * maxW / w
		w = maxW
	}
	if h > maxH {
		w = w * maxH / h
		h = maxH
	}
	return max(w, 1), max(h, 1)
}

// sample returns the nearest source pixel for target (x, y) as #rrggbb.
func sample(img image.Image, b image.Rectangle, x, y, w, h int) string {
	sx := b.Min.X + x*b.Dx()/w
	sy := b.Min.Y + y*b.Dy()/h
	r, g, bl, _ := img.At(sx, sy).RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, bl>>8)
}
