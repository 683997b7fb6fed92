package image2pce

import (
	stdcolor "image/color"

	"github.com/beddy70/image2pce/color"
	"github.com/beddy70/image2pce/dither"
	"github.com/beddy70/image2pce/emit"
	"github.com/beddy70/image2pce/resample"
)

// ColorZeroPolicyKind selects how the background/color-0 is determined.
type ColorZeroPolicyKind string

const (
	// ColorZeroAuto uses the dominant corner color of the resampled image
	// (spec's resolution of an otherwise underspecified heuristic).
	ColorZeroAuto ColorZeroPolicyKind = "auto"
	// ColorZeroFixed uses an explicitly supplied color.
	ColorZeroFixed ColorZeroPolicyKind = "fixed"
)

// ColorZeroPolicy is a closed variant: either "auto" or a fixed color.
type ColorZeroPolicy struct {
	Kind  ColorZeroPolicyKind
	Fixed color.RGB333
}

// AutoColorZero selects automatic background detection.
func AutoColorZero() ColorZeroPolicy {
	return ColorZeroPolicy{Kind: ColorZeroAuto}
}

// FixedColorZero pins the background to c.
func FixedColorZero(c color.RGB333) ColorZeroPolicy {
	return ColorZeroPolicy{Kind: ColorZeroFixed, Fixed: c}
}

// Valid reports whether p is one of the two closed variants.
func (p ColorZeroPolicy) Valid() bool {
	return p.Kind == ColorZeroAuto || p.Kind == ColorZeroFixed
}

// Config is the single immutable configuration value a conversion runs
// against. It owns the curve LUT, dither mask, and constraints vector for
// the duration of the call; the pipeline copies them defensively before the
// first stage runs.
type Config struct {
	// TilesWide and TilesHigh are the target image size in tiles.
	// TilesWide must be in [32,128], TilesHigh in [32,64].
	TilesWide, TilesHigh int

	Algorithm resample.Algorithm
	KeepRatio bool

	// BATWidth and BATHeight are the BAT grid size in tiles; OffsetX and
	// OffsetY place the image within that grid.
	BATWidth, BATHeight int
	OffsetX, OffsetY    int

	PaletteCount int

	DitherMode dither.Mode
	DitherMask *dither.Mask
	Seed       int64

	ColorZero    ColorZeroPolicy
	Transparency bool

	Curve color.ToneCurve

	// Constraints is an optional per-tile palette-group label vector of
	// length TilesWide*TilesHigh; -1 means unconstrained.
	Constraints []int

	VRAMBase uint32

	BATEndian     emit.Endianness
	TileEndian    emit.Endianness
	PaletteEndian emit.Endianness
}

// DefaultConfig returns a Config with the least surprising settings: no
// dithering, identity curve, auto background, little-endian streams, and
// the console's default VRAM base.
func DefaultConfig() Config {
	tw, th := 32, 32
	return Config{
		TilesWide:    tw,
		TilesHigh:    th,
		Algorithm:    resample.Lanczos3,
		KeepRatio:    false,
		BATWidth:     tw,
		BATHeight:    th,
		OffsetX:      0,
		OffsetY:      0,
		PaletteCount: 1,
		DitherMode:   dither.None,
		Seed:         0,
		ColorZero:    AutoColorZero(),
		Curve:        color.Identity(),
		VRAMBase:     0x4000,
	}
}

func (c Config) widthPx() int  { return c.TilesWide * 8 }
func (c Config) heightPx() int { return c.TilesHigh * 8 }

// Validate checks c against the ranges and shape constraints of spec.md §6,
// returning an InvalidInput error describing the first violation found.
func (c Config) Validate() *Error {
	if c.TilesWide < 32 || c.TilesWide > 128 {
		return newError(InvalidInput, "tiles wide %d out of range [32,128]", c.TilesWide)
	}
	if c.TilesHigh < 32 || c.TilesHigh > 64 {
		return newError(InvalidInput, "tiles high %d out of range [32,64]", c.TilesHigh)
	}
	if !c.Algorithm.Valid() {
		return newError(InvalidInput, "unknown resize algorithm %q", c.Algorithm)
	}
	if c.BATWidth <= 0 || c.BATHeight <= 0 {
		return newError(InvalidInput, "BAT dimensions must be positive, got %dx%d", c.BATWidth, c.BATHeight)
	}
	if c.OffsetX < 0 || c.OffsetY < 0 || c.OffsetX+c.TilesWide > c.BATWidth || c.OffsetY+c.TilesHigh > c.BATHeight {
		return newError(InvalidInput, "image %dx%d at offset (%d,%d) does not fit BAT grid %dx%d", c.TilesWide, c.TilesHigh, c.OffsetX, c.OffsetY, c.BATWidth, c.BATHeight)
	}
	if c.PaletteCount < 1 || c.PaletteCount > 16 {
		return newError(InvalidInput, "palette count %d out of range [1,16]", c.PaletteCount)
	}
	if !c.DitherMode.Valid() {
		return newError(InvalidInput, "unknown dither mode %q", c.DitherMode)
	}
	if !c.ColorZero.Valid() {
		return newError(InvalidInput, "unknown color-zero policy")
	}
	if err := c.Curve.Validate(); err != nil {
		return wrapError(InvalidInput, err, "invalid tone curve")
	}
	if c.DitherMask != nil {
		if err := c.DitherMask.Validate(c.widthPx(), c.heightPx()); err != nil {
			return wrapError(InvalidInput, err, "invalid dither mask")
		}
	}
	if c.Constraints != nil && len(c.Constraints) != c.TilesWide*c.TilesHigh {
		return newError(InvalidInput, "constraints length %d does not match tile count %d", len(c.Constraints), c.TilesWide*c.TilesHigh)
	}
	if c.VRAMBase > 0xFFFF {
		return newError(InvalidInput, "vram base 0x%X exceeds 16 bits", c.VRAMBase)
	}
	return nil
}

// letterboxBackground is the color used to pad and alpha-composite the
// resampled image. When the color-zero policy is fixed, it is that color;
// when auto, a neutral placeholder is used and the real C0 is sampled from
// the resampled image's corner afterward (see resolveBackground in
// pipeline.go).
func (c Config) letterboxBackground() stdcolor.RGBA {
	if c.ColorZero.Kind == ColorZeroFixed {
		r, g, b := c.ColorZero.Fixed.To8()
		return stdcolor.RGBA{R: r, G: g, B: b, A: 0xFF}
	}
	return stdcolor.RGBA{A: 0xFF}
}
