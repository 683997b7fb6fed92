package image2pce

import (
	"testing"

	"github.com/beddy70/image2pce/color"
	"github.com/beddy70/image2pce/dither"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	assert.Nil(t, cfg.Validate())
}

func TestValidateRejectsTilesWideOutOfRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TilesWide = 16
	err := cfg.Validate()
	require.NotNil(t, err)
	assert.Equal(t, InvalidInput, err.Kind)
}

func TestValidateRejectsTilesHighOutOfRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TilesHigh = 128
	err := cfg.Validate()
	require.NotNil(t, err)
	assert.Equal(t, InvalidInput, err.Kind)
}

func TestValidateRejectsOffsetOutsideBAT(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BATWidth, cfg.BATHeight = 32, 32
	cfg.OffsetX = 8
	err := cfg.Validate()
	require.NotNil(t, err)
	assert.Equal(t, InvalidInput, err.Kind)
}

func TestValidateRejectsBadPaletteCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PaletteCount = 0
	assert.NotNil(t, cfg.Validate())

	cfg.PaletteCount = 17
	assert.NotNil(t, cfg.Validate())
}

func TestValidateRejectsUnknownDitherMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DitherMode = dither.Mode("mezzotint")
	assert.NotNil(t, cfg.Validate())
}

func TestValidateRejectsNonMonotonicCurve(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Curve[10] = cfg.Curve[9]
	assert.NotNil(t, cfg.Validate())
}

func TestValidateRejectsMismatchedConstraintsLength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Constraints = make([]int, 3)
	assert.NotNil(t, cfg.Validate())
}

func TestValidateRejectsOversizedVRAMBase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VRAMBase = 0x10000
	assert.NotNil(t, cfg.Validate())
}

func TestFixedColorZeroLetterboxBackground(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ColorZero = FixedColorZero(color.RGB333{R: 7, G: 0, B: 7})
	bg := cfg.letterboxBackground()
	assert.Equal(t, uint8(0xFF), bg.A)
	assert.NotEqual(t, uint8(0), bg.R)
}
