package image2pce

import (
	"context"
	stdcolor "image/color"
	"testing"

	"github.com/beddy70/image2pce/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertBatchProcessesEverySource(t *testing.T) {
	cfg := baseTestConfig()
	cfg.ColorZero = FixedColorZero(color.RGB333{})

	sources := []BatchSource{
		{Path: "a.png", Image: solidImage(256, 256, stdcolor.RGBA{A: 255})},
		{Path: "b.png", Image: solidImage(256, 256, stdcolor.RGBA{R: 255, A: 255})},
		{Path: "c.png", Image: solidImage(256, 256, stdcolor.RGBA{G: 255, A: 255})},
	}

	items := ConvertBatch(context.Background(), sources, cfg, 2, nil)
	require.Len(t, items, 3)
	for i, item := range items {
		assert.Equal(t, sources[i].Path, item.Path)
		assert.NoError(t, item.Err)
		require.NotNil(t, item.Result)
	}
}

func TestConvertBatchReportsPerSourceFailure(t *testing.T) {
	cfg := baseTestConfig()
	badCfg := cfg
	badCfg.PaletteCount = 0 // fails validation for every source using it

	sources := []BatchSource{
		{Path: "ok.png", Image: solidImage(256, 256, stdcolor.RGBA{A: 255})},
	}

	items := ConvertBatch(context.Background(), sources, badCfg, 1, nil)
	require.Len(t, items, 1)
	assert.Error(t, items[0].Err)
	assert.Nil(t, items[0].Result)
}

func TestConvertBatchMarksUnstartedItemsCancelled(t *testing.T) {
	cfg := baseTestConfig()
	sources := make([]BatchSource, 8)
	for i := range sources {
		sources[i] = BatchSource{Path: "x.png", Image: solidImage(256, 256, stdcolor.RGBA{A: 255})}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := ConvertBatch(ctx, sources, cfg, 1, nil)
	require.Len(t, items, 8)
	for _, item := range items {
		assert.Error(t, item.Err)
	}
}
