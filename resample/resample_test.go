package resample

import (
	"image"
	stdcolor "image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c stdcolor.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestResampleStretchExactSize(t *testing.T) {
	src := solid(50, 30, stdcolor.RGBA{255, 0, 0, 255})
	out, err := Resample(src, Options{
		Width: 64, Height: 64, Algorithm: Lanczos3, KeepRatio: false,
		Background: stdcolor.RGBA{0, 0, 0, 255},
	})
	require.NoError(t, err)
	assert.Equal(t, 64, out.Bounds().Dx())
	assert.Equal(t, 64, out.Bounds().Dy())
}

func TestResampleKeepRatioLetterboxes(t *testing.T) {
	src := solid(300, 200, stdcolor.RGBA{0, 255, 0, 255})
	bg := stdcolor.RGBA{255, 0, 255, 255}
	out, err := Resample(src, Options{
		Width: 256, Height: 256, Algorithm: Nearest, KeepRatio: true,
		Background: bg,
	})
	require.NoError(t, err)
	assert.Equal(t, 256, out.Bounds().Dx())
	assert.Equal(t, 256, out.Bounds().Dy())

	// Top strip should be background-colored since the 300x200 source is
	// wider than tall and gets letterboxed top/bottom.
	top := out.At(128, 0)
	r, g, b, _ := top.RGBA()
	assert.InDelta(t, 255, r>>8, 2)
	assert.InDelta(t, 0, g>>8, 2)
	assert.InDelta(t, 255, b>>8, 2)
}

func TestResampleRejectsUnknownAlgorithm(t *testing.T) {
	src := solid(8, 8, stdcolor.RGBA{0, 0, 0, 255})
	_, err := Resample(src, Options{Width: 8, Height: 8, Algorithm: "bogus"})
	assert.Error(t, err)
}

func TestCompositeAvoidsHalo(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	// Fully transparent pixel should become the background color, not black.
	src.Set(0, 0, stdcolor.RGBA{0, 0, 0, 0})
	bg := stdcolor.RGBA{10, 20, 30, 255}
	out := compositeOverBackground(src, bg)
	r, g, b, a := out.At(0, 0).RGBA()
	assert.Equal(t, uint32(10), r>>8)
	assert.Equal(t, uint32(20), g>>8)
	assert.Equal(t, uint32(30), b>>8)
	assert.Equal(t, uint32(255), a>>8)
}
