// Command image2pce converts raster images into the tile/palette/BAT
// graphics format of a tile-based retro console.
package main

import (
	"bytes"
	"context"
	"fmt"
	stdimage "image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	image2pce "github.com/beddy70/image2pce"
	"github.com/beddy70/image2pce/cache"
	pcecolor "github.com/beddy70/image2pce/color"
	"github.com/beddy70/image2pce/dither"
	"github.com/beddy70/image2pce/emit"
	"github.com/beddy70/image2pce/resample"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "image2pce"
	app.Usage = "convert raster images to tile-console graphics"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		convertCommand(),
		batchCommand(),
		cacheClearCommand(),
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loggerFor(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "tiles-wide", Value: 32, Usage: "output width in tiles [32,128]"},
		&cli.IntFlag{Name: "tiles-high", Value: 32, Usage: "output height in tiles [32,64]"},
		&cli.StringFlag{Name: "algorithm", Value: string(resample.Lanczos3), Usage: "nearest, catmull-rom, lanczos3"},
		&cli.BoolFlag{Name: "keep-ratio", Usage: "letterbox instead of stretching"},
		&cli.IntFlag{Name: "bat-width", Usage: "BAT grid width in tiles (defaults to tiles-wide)"},
		&cli.IntFlag{Name: "bat-height", Usage: "BAT grid height in tiles (defaults to tiles-high)"},
		&cli.IntFlag{Name: "offset-x", Value: 0, Usage: "image offset within the BAT grid, in tiles"},
		&cli.IntFlag{Name: "offset-y", Value: 0, Usage: "image offset within the BAT grid, in tiles"},
		&cli.IntFlag{Name: "palettes", Value: 1, Usage: "palette count K in [1,16]"},
		&cli.StringFlag{Name: "dither", Value: string(dither.None), Usage: "none, floyd-steinberg, ordered"},
		&cli.Int64Flag{Name: "seed", Value: 0, Usage: "RNG seed for dither tie-breaks"},
		&cli.StringFlag{Name: "color-zero", Value: "auto", Usage: `"auto" or a hex color like #FF00FF`},
		&cli.BoolFlag{Name: "transparency", Usage: "treat color-zero as transparent in the preview"},
		&cli.UintFlag{Name: "vram-base", Value: 0x4000, Usage: "VRAM base address"},
		&cli.StringFlag{Name: "endian", Value: "little", Usage: "little or big, applies to BAT and palette streams"},
		&cli.BoolFlag{Name: "cache", Usage: "consult and populate the conversion cache"},
		&cli.StringFlag{Name: "cache-file", Value: "image2pce-cache.sqlite3", Usage: "cache database path"},
		&cli.StringFlag{Name: "out", Value: ".", Usage: "output directory"},
	}
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "convert a single image",
		ArgsUsage: "FILE",
		Flags:     commonFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
			}

			cfg, err := configFromFlags(c)
			if err != nil {
				return cli.NewExitError(err, 1)
			}

			path := c.Args().First()
			src, raw, err := decodeFile(path)
			if err != nil {
				return cli.NewExitError(err, 1)
			}

			var store *cache.Store
			var fingerprint string
			if c.Bool("cache") {
				store, err = cache.Open(c.String("cache-file"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer store.Close()

				fingerprint = cache.Fingerprint(raw, configFingerprint(cfg))
				if entry, ok, err := store.Get(fingerprint); err != nil {
					return cli.NewExitError(err, 1)
				} else if ok {
					return writeCachedEntry(c.String("out"), filepath.Base(path), entry)
				}
			}

			conv := image2pce.New(image2pce.WithLogger(loggerFor(c)))
			result, err := conv.Convert(context.Background(), src, cfg, nil)
			if err != nil {
				return cli.NewExitError(err, 1)
			}

			if err := writeResult(c.String("out"), filepath.Base(path), result); err != nil {
				return cli.NewExitError(err, 1)
			}

			if store != nil {
				var bat, tiles, pal bytes.Buffer
				if _, err := result.Artifacts.EncodeBinary(&bat, &tiles, &pal); err != nil {
					return cli.NewExitError(err, 1)
				}
				entry := cache.Entry{
					BAT:       bat.Bytes(),
					Tiles:     tiles.Bytes(),
					Palettes:  pal.Bytes(),
					VRAMBase:  cfg.VRAMBase,
					BATWidth:  cfg.BATWidth,
					BATHeight: cfg.BATHeight,
					Overflow:  result.Overflow,
				}
				if err := store.Put(fingerprint, entry); err != nil {
					return cli.NewExitError(err, 1)
				}
			}

			return nil
		},
	}
}

func batchCommand() *cli.Command {
	flags := append(commonFlags(), &cli.IntFlag{Name: "workers", Value: 0, Usage: "worker count, 0 = GOMAXPROCS"})
	return &cli.Command{
		Name:      "batch",
		Usage:     "convert every image in a directory",
		ArgsUsage: "DIRECTORY",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
			}

			cfg, err := configFromFlags(c)
			if err != nil {
				return cli.NewExitError(err, 1)
			}

			dir := c.Args().First()
			entries, err := ioutil.ReadDir(dir)
			if err != nil {
				return cli.NewExitError(err, 1)
			}

			var sources []image2pce.BatchSource
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				path := filepath.Join(dir, e.Name())
				img, _, err := decodeFile(path)
				if err != nil {
					continue // not a decodable image, skip
				}
				sources = append(sources, image2pce.BatchSource{Path: path, Image: img})
			}
			sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })

			items := image2pce.ConvertBatch(context.Background(), sources, cfg, c.Int("workers"), nil)

			var failed int
			for _, item := range items {
				if item.Err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", item.Path, item.Err)
					failed++
					continue
				}
				if err := writeResult(c.String("out"), filepath.Base(item.Path), item.Result); err != nil {
					return cli.NewExitError(err, 1)
				}
			}
			if failed > 0 {
				return cli.NewExitError(fmt.Sprintf("%d of %d conversions failed", failed, len(items)), 1)
			}
			return nil
		},
	}
}

func cacheClearCommand() *cli.Command {
	return &cli.Command{
		Name:      "cache-clear",
		Usage:     "remove one entry from the conversion cache",
		ArgsUsage: "FINGERPRINT",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "cache-file", Value: "image2pce-cache.sqlite3"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
			}
			store, err := cache.Open(c.String("cache-file"))
			if err != nil {
				return cli.NewExitError(err, 1)
			}
			defer store.Close()
			if err := store.Delete(c.Args().First()); err != nil {
				return cli.NewExitError(err, 1)
			}
			return nil
		},
	}
}

func decodeFile(path string) (stdimage.Image, []byte, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	img, _, err := stdimage.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, raw, nil
}

func configFromFlags(c *cli.Context) (image2pce.Config, error) {
	cfg := image2pce.DefaultConfig()
	cfg.TilesWide = c.Int("tiles-wide")
	cfg.TilesHigh = c.Int("tiles-high")
	cfg.Algorithm = resample.Algorithm(c.String("algorithm"))
	cfg.KeepRatio = c.Bool("keep-ratio")

	cfg.BATWidth = c.Int("bat-width")
	if cfg.BATWidth == 0 {
		cfg.BATWidth = cfg.TilesWide
	}
	cfg.BATHeight = c.Int("bat-height")
	if cfg.BATHeight == 0 {
		cfg.BATHeight = cfg.TilesHigh
	}
	cfg.OffsetX = c.Int("offset-x")
	cfg.OffsetY = c.Int("offset-y")

	cfg.PaletteCount = c.Int("palettes")
	cfg.DitherMode = dither.Mode(c.String("dither"))
	cfg.Seed = c.Int64("seed")
	cfg.Transparency = c.Bool("transparency")
	cfg.VRAMBase = uint32(c.Uint("vram-base"))

	colorZero := c.String("color-zero")
	if colorZero == "auto" {
		cfg.ColorZero = image2pce.AutoColorZero()
	} else {
		col, err := pcecolor.ParseHex(colorZero)
		if err != nil {
			return cfg, err
		}
		cfg.ColorZero = image2pce.FixedColorZero(col)
	}

	endian := emit.LittleEndian
	if strings.EqualFold(c.String("endian"), "big") {
		endian = emit.BigEndian
	}
	cfg.BATEndian = endian
	cfg.TileEndian = endian
	cfg.PaletteEndian = endian

	return cfg, nil
}

// configFingerprint serializes the parts of cfg that affect the output, for
// use as half of the cache key.
func configFingerprint(cfg image2pce.Config) []byte {
	return []byte(fmt.Sprintf("%d,%d,%s,%t,%d,%d,%d,%d,%d,%s,%d,%v,%t,%d,%d,%d,%d",
		cfg.TilesWide, cfg.TilesHigh, cfg.Algorithm, cfg.KeepRatio,
		cfg.BATWidth, cfg.BATHeight, cfg.OffsetX, cfg.OffsetY,
		cfg.PaletteCount, cfg.DitherMode, cfg.Seed, cfg.ColorZero, cfg.Transparency, cfg.VRAMBase,
		cfg.BATEndian, cfg.TileEndian, cfg.PaletteEndian))
}

func writeResult(outDir, base string, result *image2pce.Result) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	batFile, err := os.Create(filepath.Join(outDir, stem+".bat"))
	if err != nil {
		return err
	}
	defer batFile.Close()

	tilesFile, err := os.Create(filepath.Join(outDir, stem+".tiles"))
	if err != nil {
		return err
	}
	defer tilesFile.Close()

	palFile, err := os.Create(filepath.Join(outDir, stem+".palette"))
	if err != nil {
		return err
	}
	defer palFile.Close()

	if _, err := result.Artifacts.EncodeBinary(batFile, tilesFile, palFile); err != nil {
		return err
	}

	textFile, err := os.Create(filepath.Join(outDir, stem+".asm"))
	if err != nil {
		return err
	}
	defer textFile.Close()

	return result.Artifacts.EncodeText(textFile, len(result.EmptyTile), result.SeedColors)
}

func writeCachedEntry(outDir, base string, entry cache.Entry) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	if err := ioutil.WriteFile(filepath.Join(outDir, stem+".bat"), entry.BAT, 0o644); err != nil {
		return err
	}
	if err := ioutil.WriteFile(filepath.Join(outDir, stem+".tiles"), entry.Tiles, 0o644); err != nil {
		return err
	}
	return ioutil.WriteFile(filepath.Join(outDir, stem+".palette"), entry.Palettes, 0o644)
}
