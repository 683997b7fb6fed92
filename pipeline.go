package image2pce

import (
	"context"
	stdimage "image"
	stdcolor "image/color"

	"github.com/beddy70/image2pce/color"
	"github.com/beddy70/image2pce/dither"
	"github.com/beddy70/image2pce/emit"
	"github.com/beddy70/image2pce/palette"
	"github.com/beddy70/image2pce/resample"
	"github.com/beddy70/image2pce/tile"
)

// Stage names, in dataflow order, matching spec.md §2.
const (
	StageResample = "resample"
	StageTonemap  = "tonemap"
	StageDither   = "dither"
	StagePalette  = "palette"
	StageAssemble = "assemble"
	StageDedupBAT = "dedup_bat"
	StageEmit     = "emit"
)

var stageOrder = []string{
	StageResample, StageTonemap, StageDither, StagePalette, StageAssemble, StageDedupBAT, StageEmit,
}

// Progress reports completion of one pipeline stage.
type Progress struct {
	Stage string
	Index int // 1-based position within stageOrder
	Total int
}

// ProgressFunc receives one Progress event after each stage completes. It
// may be nil.
type ProgressFunc func(Progress)

// Result is everything a conversion produces.
type Result struct {
	Preview      *stdimage.RGBA
	Palettes     [palette.MaxPalettes]palette.Palette
	Assignment   []int
	EmptyTile    []bool
	UniqueCount  int
	TileToUnique []int
	SeedColors   []color.RGB333
	Artifacts    emit.Artifacts
	Overflow     bool
}

func checkCancelled(ctx context.Context) *Error {
	select {
	case <-ctx.Done():
		return wrapError(Cancelled, ctx.Err(), "conversion cancelled")
	default:
		return nil
	}
}

func (c *Converter) runPipeline(ctx context.Context, source stdimage.Image, cfg Config, progress ProgressFunc) (*Result, *Error) {
	report := func(i int, stage string) {
		if progress != nil {
			progress(Progress{Stage: stage, Index: i, Total: len(stageOrder)})
		}
	}

	// Stage 1: resample. The color-zero policy resolves against the
	// resampled image's corner colors, so a neutral placeholder background
	// is used for compositing/letterboxing until then (spec.md §9 Open
	// Questions: "auto" is defined as the dominant corner color).
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	resampled, err := resample.Resample(source, resample.Options{
		Width:      cfg.widthPx(),
		Height:     cfg.heightPx(),
		Algorithm:  cfg.Algorithm,
		KeepRatio:  cfg.KeepRatio,
		Background: cfg.letterboxBackground(),
	})
	if err != nil {
		return nil, wrapError(InvalidInput, err, "resample failed")
	}
	c.logf("stage %s complete", StageResample)
	report(1, StageResample)

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	post, levels := color.Tonemap(resampled, cfg.Curve)
	c.logf("stage %s complete", StageTonemap)
	report(2, StageTonemap)

	bg := resolveBackground(cfg, levels)

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	ditheredLevels, derr := dither.Dither(post, cfg.DitherMode, cfg.DitherMask, cfg.Seed)
	if derr != nil {
		return nil, wrapError(InvalidInput, derr, "dither failed")
	}
	c.logf("stage %s complete", StageDither)
	report(3, StageDither)

	// Two-pass shape (spec.md §12): palettes are built from the undithered
	// level image so dithering never perturbs which palette a tile lands
	// on; the dithered levels are what actually gets assembled into tiles.
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	sets, tilesX, tilesY := palette.ExtractTileColors(levels, bg)
	built, perr := palette.Build(sets, bg, cfg.PaletteCount, cfg.Constraints)
	if perr != nil {
		return nil, wrapError(Internal, perr, "palette clustering failed")
	}
	seeds := palette.SeedColors(levels, cfg.PaletteCount)
	c.logf("stage %s complete: %d palettes used", StagePalette, built.Used)
	report(4, StagePalette)

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	tiles := tile.Assemble(ditheredLevels, built.Assignment, built.Palettes)
	emptyFlags := make([]bool, len(tiles))
	for i, t := range tiles {
		emptyFlags[i] = t.Empty()
	}
	c.logf("stage %s complete", StageAssemble)
	report(5, StageAssemble)

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	deduped := tile.Dedup(tiles)
	bat, cerr := tile.Compose(cfg.BATWidth, cfg.BATHeight, cfg.OffsetX, cfg.OffsetY, tilesX, tilesY, built.Assignment, deduped.TileToUnique)
	if cerr != nil {
		return nil, wrapError(InvalidInput, cerr, "BAT composition failed")
	}
	c.logf("stage %s complete: %d unique tiles", StageDedupBAT, len(deduped.Unique))
	report(6, StageDedupBAT)

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	artifacts := emit.Artifacts{
		BAT:           bat,
		Unique:        deduped.Unique,
		Palettes:      built.Palettes,
		VRAMBase:      cfg.VRAMBase,
		BATEndian:     cfg.BATEndian,
		TileEndian:    cfg.TileEndian,
		PaletteEndian: cfg.PaletteEndian,
	}
	_, overflow := bat.Words(cfg.VRAMBase)
	if overflow {
		c.logf("warning: %s", newError(VramOverflow, "unique tile count %d overflows VRAM base 0x%X", len(deduped.Unique), cfg.VRAMBase))
	}
	previewCfg := cfg
	if o, ok := source.(interface{ Opaque() bool }); ok && o.Opaque() {
		previewCfg.Transparency = false // a fully opaque source carries no alpha
	}
	preview := renderPreview(levels, ditheredLevels, previewCfg, built)
	c.logf("stage %s complete", StageEmit)
	report(7, StageEmit)

	return &Result{
		Preview:      preview,
		Palettes:     built.Palettes,
		Assignment:   built.Assignment,
		EmptyTile:    emptyFlags,
		UniqueCount:  len(deduped.Unique) - 1, // excludes the always-present zero tile, per spec.md §4.7
		TileToUnique: deduped.TileToUnique,
		SeedColors:   seeds,
		Artifacts:    artifacts,
		Overflow:     overflow,
	}, nil
}

// resolveBackground implements the color-zero policy: a fixed color is used
// as-is, "auto" takes the most frequent color among the four corner pixels
// of the resampled level image, ties going to the earliest of top-left,
// top-right, bottom-left, bottom-right.
func resolveBackground(cfg Config, levels *color.LevelImage) color.RGB333 {
	if cfg.ColorZero.Kind == ColorZeroFixed {
		return cfg.ColorZero.Fixed
	}
	if levels.Width == 0 || levels.Height == 0 {
		return color.RGB333{}
	}
	w, h := levels.Width-1, levels.Height-1
	corners := [4]color.RGB333{levels.At(0, 0), levels.At(w, 0), levels.At(0, h), levels.At(w, h)}
	best, bestCount := corners[0], 0
	for _, c := range corners {
		n := 0
		for _, o := range corners {
			if o == c {
				n++
			}
		}
		if n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

// renderPreview builds the W×H RGBA preview image from the dithered level
// image, mapping every pixel through its tile's assigned palette so the
// preview matches exactly what the round-trip decoder in emit would
// reconstruct (spec.md §8 property 7). When Transparency is set and the
// source carried alpha (runPipeline clears Transparency for a fully opaque
// source), background pixels render with alpha 0 in the preview only —
// palette entry 0 still occupies a hardware slot.
func renderPreview(levels, dithered *color.LevelImage, cfg Config, built palette.Result) *stdimage.RGBA {
	w, h := dithered.Width, dithered.Height
	tilesX := w / tile.Size
	out := stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))

	bg := resolveBackground(cfg, levels)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tx, ty := x/tile.Size, y/tile.Size
			p := built.Palettes[built.Assignment[ty*tilesX+tx]]
			c := dithered.At(x, y)
			idx := p.Index(c)
			if idx == -1 {
				idx = p.Nearest(c)
			}
			rc := p[idx]
			r, g, b := rc.To8()
			a := uint8(0xFF)
			if cfg.Transparency && idx == 0 && rc == bg {
				a = 0
			}
			out.SetRGBA(x, y, stdcolor.RGBA{R: r, G: g, B: b, A: a})
		}
	}

	return out
}
