package image2pce

import (
	"bytes"
	"context"
	stdimage "image"
	stdcolor "image/color"
	"testing"

	"github.com/beddy70/image2pce/color"
	"github.com/beddy70/image2pce/resample"
	"github.com/beddy70/image2pce/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c stdcolor.RGBA) *stdimage.RGBA {
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func quadrantImage(size int, colors [4]stdcolor.RGBA) *stdimage.RGBA {
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, size, size))
	half := size / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			q := 0
			if x >= half {
				q++
			}
			if y >= half {
				q += 2
			}
			img.SetRGBA(x, y, colors[q])
		}
	}
	return img
}

func checkerboardImage(size int, a, b stdcolor.RGBA) *stdimage.RGBA {
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			tx, ty := x/tile.Size, y/tile.Size
			c := a
			if (tx+ty)%2 != 0 {
				c = b
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func rampImage(w, h int) *stdimage.RGBA {
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / (w - 1))
			img.SetRGBA(x, y, stdcolor.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func baseTestConfig() Config {
	cfg := DefaultConfig()
	cfg.TilesWide, cfg.TilesHigh = 32, 32
	cfg.BATWidth, cfg.BATHeight = 32, 32
	cfg.Algorithm = resample.Nearest
	return cfg
}

func TestScenarioAllBlackImage(t *testing.T) {
	img := solidImage(256, 256, stdcolor.RGBA{A: 255})
	cfg := baseTestConfig()
	cfg.PaletteCount = 1
	cfg.ColorZero = FixedColorZero(color.RGB333{})

	conv := New()
	result, err := conv.Convert(context.Background(), img, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, result.UniqueCount)
	assert.False(t, result.Overflow)
	require.Len(t, result.Artifacts.Unique, 1)
	assert.Equal(t, [tile.PlaneBytes]byte{}, result.Artifacts.Unique[0])

	for _, e := range result.Artifacts.BAT.Entries {
		assert.Equal(t, uint8(0), e.Palette)
		assert.Equal(t, 0, e.UniqueIndex)
	}

	c0Word := color.RGB333{}.Word()
	for _, p := range result.Palettes {
		for _, c := range p {
			assert.Equal(t, c0Word, c.Word())
		}
	}
}

func TestScenarioFourQuadrants(t *testing.T) {
	colors := [4]stdcolor.RGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
	}
	img := quadrantImage(256, colors)
	cfg := baseTestConfig()
	cfg.PaletteCount = 4
	cfg.ColorZero = FixedColorZero(color.RGB333{})

	conv := New()
	result, err := conv.Convert(context.Background(), img, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.UniqueCount, "all four solid quadrants share one all-index-1 tile pattern")

	usedPalettes := map[int]bool{}
	for _, pal := range result.Assignment {
		usedPalettes[pal] = true
	}
	assert.Len(t, usedPalettes, 4)

	nonEmptyUnique := map[int]bool{}
	for i, empty := range result.EmptyTile {
		if !empty {
			nonEmptyUnique[result.TileToUnique[i]] = true
		}
	}
	assert.Equal(t, map[int]bool{1: true}, nonEmptyUnique)
}

func TestScenarioCheckerboardSinglePalette(t *testing.T) {
	a := stdcolor.RGBA{R: 255, A: 255}
	b := stdcolor.RGBA{B: 255, A: 255}
	img := checkerboardImage(256, a, b)
	cfg := baseTestConfig()
	cfg.PaletteCount = 1
	cfg.ColorZero = FixedColorZero(color.RGB333{})

	conv := New()
	result, err := conv.Convert(context.Background(), img, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.UniqueCount)
	assert.Equal(t, 0, result.Palettes[0].Index(color.RGB333{}))
	assert.NotEqual(t, -1, result.Palettes[0].Index(color.Snap(255, 0, 0)))
	assert.NotEqual(t, -1, result.Palettes[0].Index(color.Snap(0, 0, 255)))

	seen := map[int]bool{}
	for _, u := range result.TileToUnique {
		seen[u] = true
	}
	assert.Len(t, seen, 2)
}

func TestScenarioFloydSteinbergDeterministic(t *testing.T) {
	img := rampImage(256, 256)
	cfg := baseTestConfig()
	cfg.PaletteCount = 4
	cfg.DitherMode = "floyd-steinberg"
	cfg.Seed = 0
	cfg.ColorZero = FixedColorZero(color.RGB333{})

	run := func() []byte {
		conv := New()
		result, err := conv.Convert(context.Background(), img, cfg, nil)
		require.NoError(t, err)

		var bat, tiles, pal bytes.Buffer
		_, err = result.Artifacts.EncodeBinary(&bat, &tiles, &pal)
		require.NoError(t, err)
		return append(append(bat.Bytes(), tiles.Bytes()...), pal.Bytes()...)
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)
}

func TestScenarioLetterboxBackgroundStrip(t *testing.T) {
	src := solidImage(300, 200, stdcolor.RGBA{G: 255, A: 255})
	cfg := baseTestConfig()
	cfg.PaletteCount = 2
	cfg.KeepRatio = true
	magenta, err := color.ParseHex("#FF00FF")
	require.NoError(t, err)
	cfg.ColorZero = FixedColorZero(magenta)

	conv := New()
	result, err := conv.Convert(context.Background(), src, cfg, nil)
	require.NoError(t, err)

	// Top row of tiles is entirely letterbox padding: every entry there
	// must reference the always-present zero tile.
	for tx := 0; tx < 32; tx++ {
		e := result.Artifacts.BAT.Entries[tx]
		assert.Equal(t, 0, e.UniqueIndex, "tile (%d,0) should be background padding", tx)
	}

	r, g, b, _ := result.Preview.At(0, 0).RGBA()
	wantR, wantG, wantB := magenta.To8()
	assert.Equal(t, uint32(wantR), r>>8)
	assert.Equal(t, uint32(wantG), g>>8)
	assert.Equal(t, uint32(wantB), b>>8)
}

func TestConvertRejectsReentrantCall(t *testing.T) {
	img := solidImage(256, 256, stdcolor.RGBA{A: 255})
	cfg := baseTestConfig()
	conv := New()
	conv.state = Running

	_, err := conv.Convert(context.Background(), img, cfg, nil)
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, InvalidInput, perr.Kind)
}

func TestConvertReportsProgressForEveryStage(t *testing.T) {
	img := solidImage(256, 256, stdcolor.RGBA{A: 255})
	cfg := baseTestConfig()
	conv := New()

	var stages []string
	_, err := conv.Convert(context.Background(), img, cfg, func(p Progress) {
		stages = append(stages, p.Stage)
	})
	require.NoError(t, err)
	assert.Equal(t, stageOrder, stages)
	assert.Equal(t, Completed, conv.State())
}

func TestConvertHonorsCancellation(t *testing.T) {
	img := solidImage(256, 256, stdcolor.RGBA{A: 255})
	cfg := baseTestConfig()
	conv := New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conv.Convert(ctx, img, cfg, nil)
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, Cancelled, perr.Kind)
	assert.Equal(t, Failed, conv.State())
}
