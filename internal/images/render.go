package images

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderBlocks draws img with half-block characters, two pixel rows per
// terminal line. Images wider than maxWidth columns are sampled down.
func RenderBlocks(img image.Image, maxWidth int) string {
	if img == nil {
		return ""
	}
	b := img.Bounds()
	if b.Empty() {
		return ""
	}

	step := 1
	if maxWidth > 0 && b.Dx() > maxWidth {
		step = (b.Dx() + maxWidth - 1) / maxWidth
	}

	var out strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 * step {
		for x := b.Min.X; x < b.Max.X; x += step {
			style := lipgloss.NewStyle().Foreground(hexColor(img, x, y))
			if y+step < b.Max.Y {
				style = style.Background(hexColor(img, x, y+step))
			}
			out.WriteString(style.Render("▀"))
		}
		out.WriteString("\n")
	}
	return strings.TrimSuffix(out.String(), "\n")
}

func hexColor(img image.Image, x, y int) lipgloss.Color {
	r, g, b, _ := img.At(x, y).RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
