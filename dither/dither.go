package dither

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/beddy70/image2pce/color"
)

const tieEpsilon = 1e-9

// clamp8 restricts v to [0, 255].
func clamp8(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return v
	}
}

// quantizeLevel maps an 8-bit-scale value to the nearest RGB333 level and
// returns the corresponding snapped 8-bit value for error accounting. Ties —
// a value exactly halfway between two levels — are broken by rng if
// supplied; this is the only place the dither seed is consulted, per
// spec.md §4.3.
func quantizeLevel(value float64, rng *rand.Rand) (level uint8, snapped8 float64) {
	v := clamp8(value)
	frac := v / step
	lower := math.Floor(frac)
	diff := frac - lower

	switch {
	case diff < 0.5-tieEpsilon:
		level = uint8(lower)
	case diff > 0.5+tieEpsilon:
		level = uint8(lower) + 1
	default:
		level = uint8(lower)
		if rng != nil && rng.Intn(2) == 1 {
			level++
		}
	}
	if level > color.Levels-1 {
		level = color.Levels - 1
	}
	return level, float64(level) * step
}

// Dither applies the configured dither mode to the post-curve 8-bit image,
// gated by mask, and returns the resulting RGB333 level image.
func Dither(post *color.Image8, mode Mode, mask *Mask, seed int64) (*color.LevelImage, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("dither: unknown mode %q", mode)
	}
	if err := mask.Validate(post.Width, post.Height); err != nil {
		return nil, err
	}

	switch mode {
	case None:
		return quantizeUnperturbed(post), nil
	case FloydSteinberg:
		rng := rand.New(rand.NewSource(seed))
		return floydSteinberg(post, mask, rng), nil
	case Ordered:
		rng := rand.New(rand.NewSource(seed))
		return orderedDither(post, mask, rng), nil
	default:
		return nil, fmt.Errorf("dither: unhandled mode %q", mode)
	}
}

func quantizeUnperturbed(post *color.Image8) *color.LevelImage {
	out := color.NewLevelImage(post.Width, post.Height)
	for y := 0; y < post.Height; y++ {
		for x := 0; x < post.Width; x++ {
			r, g, b := post.At(x, y)
			out.Set(x, y, color.Snap(r, g, b))
		}
	}
	return out
}
