package palette

import (
	"image"
	stdcolor "image/color"

	"github.com/beddy70/image2pce/color"
	"github.com/ericpauley/go-quantize/quantize"
)

// SeedColors returns up to k representative RGB333 colors for levels using
// median-cut quantization. It is a diagnostic aid the emitters surface
// alongside the deterministic per-tile clustering in Build — a rough
// preview of what a single global palette would look like — and never
// feeds back into Build's assignment.
func SeedColors(levels *color.LevelImage, k int) []color.RGB333 {
	if k < 1 {
		k = 1
	}
	q := quantize.MedianCutQuantizer{}
	pal := q.Quantize(make(stdcolor.Palette, 0, k), &levelAdapter{levels})

	out := make([]color.RGB333, 0, len(pal))
	for _, c := range pal {
		r, g, b, _ := c.RGBA()
		out = append(out, color.Snap(uint8(r>>8), uint8(g>>8), uint8(b>>8)))
	}
	return out
}

// levelAdapter presents a color.LevelImage as a standard image.Image so it
// can be fed to the stdlib-shaped go-quantize API.
type levelAdapter struct {
	l *color.LevelImage
}

func (a *levelAdapter) ColorModel() stdcolor.Model {
	return stdcolor.RGBAModel
}

func (a *levelAdapter) Bounds() image.Rectangle {
	return image.Rect(0, 0, a.l.Width, a.l.Height)
}

func (a *levelAdapter) At(x, y int) stdcolor.Color {
	r, g, b := a.l.At(x, y).To8()
	return stdcolor.RGBA{R: r, G: g, B: b, A: 255}
}
