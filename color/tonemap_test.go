package color

import (
	"image"
	stdcolor "image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTonemapIdentity(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, stdcolor.RGBA{0, 0, 0, 255})
	src.Set(1, 0, stdcolor.RGBA{255, 255, 255, 255})
	src.Set(0, 1, stdcolor.RGBA{128, 64, 32, 255})
	src.Set(1, 1, stdcolor.RGBA{16, 200, 90, 255})

	post, levels := Tonemap(src, Identity())

	r, g, b := post.At(1, 0)
	assert.Equal(t, [3]uint8{255, 255, 255}, [3]uint8{r, g, b})

	assert.Equal(t, RGB333{0, 0, 0}, levels.At(0, 0))
	assert.Equal(t, RGB333{7, 7, 7}, levels.At(1, 0))
}

func TestTonemapAppliesCurve(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.Set(0, 0, stdcolor.RGBA{100, 100, 100, 255})

	curve := Identity()
	curve[100] = 255

	post, levels := Tonemap(src, curve)
	r, _, _ := post.At(0, 0)
	assert.Equal(t, uint8(255), r)
	assert.Equal(t, uint8(7), levels.At(0, 0).R)
}
