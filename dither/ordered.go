package dither

import (
	"math/rand"

	"github.com/beddy70/image2pce/color"
)

// orderedDither adds the Bayer-8 threshold map to each channel before
// snapping, gated per-pixel by mask.
func orderedDither(post *color.Image8, mask *Mask, rng *rand.Rand) *color.LevelImage {
	w, h := post.Width, post.Height
	out := color.NewLevelImage(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r8, g8, b8 := post.At(x, y)

			var vr, vg, vb float64
			if mask.Enabled(x, y) {
				off := bayerOffset(x, y)
				vr = clamp8(float64(r8) + off)
				vg = clamp8(float64(g8) + off)
				vb = clamp8(float64(b8) + off)
			} else {
				vr, vg, vb = float64(r8), float64(g8), float64(b8)
			}

			lr, _ := quantizeLevel(vr, rng)
			lg, _ := quantizeLevel(vg, rng)
			lb, _ := quantizeLevel(vb, rng)
			out.Set(x, y, color.RGB333{R: lr, G: lg, B: lb})
		}
	}

	return out
}
