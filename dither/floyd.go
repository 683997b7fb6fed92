package dither

import (
	"math/rand"

	"github.com/beddy70/image2pce/color"
)

// floydSteinberg scans in serpentine order (left-to-right on even rows,
// reversed on odd rows) to eliminate directional bias, and diffuses each
// pixel's quantization residual to its four canonical neighbors.
func floydSteinberg(post *color.Image8, mask *Mask, rng *rand.Rand) *color.LevelImage {
	w, h := post.Width, post.Height
	out := color.NewLevelImage(w, h)

	errR := newErrorBuffer(w, h)
	errG := newErrorBuffer(w, h)
	errB := newErrorBuffer(w, h)

	for y := 0; y < h; y++ {
		leftToRight := y%2 == 0
		dx := 1
		if !leftToRight {
			dx = -1
		}

		for i := 0; i < w; i++ {
			x := i
			if !leftToRight {
				x = w - 1 - i
			}

			r8, g8, b8 := post.At(x, y)
			enabled := mask.Enabled(x, y)

			var vr, vg, vb float64
			if enabled {
				vr = float64(r8) + errR[y][x+1]
				vg = float64(g8) + errG[y][x+1]
				vb = float64(b8) + errB[y][x+1]
			} else {
				vr, vg, vb = float64(r8), float64(g8), float64(b8)
			}

			lr, sr := quantizeLevel(vr, rng)
			lg, sg := quantizeLevel(vg, rng)
			lb, sb := quantizeLevel(vb, rng)
			out.Set(x, y, color.RGB333{R: lr, G: lg, B: lb})

			if !enabled {
				continue
			}

			diffuse(errR, x, y, dx, vr-sr)
			diffuse(errG, x, y, dx, vg-sg)
			diffuse(errB, x, y, dx, vb-sb)
		}
	}

	return out
}

func newErrorBuffer(w, h int) [][]float64 {
	buf := make([][]float64, h+1)
	for i := range buf {
		buf[i] = make([]float64, w+2)
	}
	return buf
}

// diffuse spreads a residual to the four canonical Floyd-Steinberg
// neighbors: 7/16 forward, 3/16 forward-down-opposite, 5/16 down, 1/16
// forward-down, mirroring the offsets for reversed (odd) rows.
func diffuse(buf [][]float64, x, y, dx int, err float64) {
	buf[y][x+1+dx] += err * 7.0 / 16.0
	buf[y+1][x+1-dx] += err * 3.0 / 16.0
	buf[y+1][x+1] += err * 5.0 / 16.0
	buf[y+1][x+1+dx] += err * 1.0 / 16.0
}
