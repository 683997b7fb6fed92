/*
Package palette builds the console's 16-color, 16-palette family from an
RGB333 level image: extracting each tile's color set, clustering tiles into
at most K palette groups under a 16-entry-per-group budget, and constructing
the final palettes with the background color fixed at index 0.
*/
package palette

import (
	"sort"

	"github.com/beddy70/image2pce/color"
)

// ColorsPerPalette is the hardware limit on distinct colors in one palette,
// including the reserved background entry at index 0.
const ColorsPerPalette = 16

// MaxPalettes is the hardware limit on simultaneous palette groups.
const MaxPalettes = 16

// TileSize is the edge length, in pixels, of one tile.
const TileSize = 8

// Palette is an ordered list of 16 RGB333 colors; index 0 is always the
// background color, identical across every palette.
type Palette [ColorsPerPalette]color.RGB333

// ColorSet is the set of distinct RGB333 colors within a tile, excluding the
// background color.
type ColorSet map[color.RGB333]struct{}

// ExtractTileColors partitions levels into TileSize×TileSize tiles and
// returns, for each tile in row-major order, the set of distinct RGB333
// colors present with bg removed (spec.md §4.4 Step 1).
func ExtractTileColors(levels *color.LevelImage, bg color.RGB333) (sets []ColorSet, tilesX, tilesY int) {
	tilesX = levels.Width / TileSize
	tilesY = levels.Height / TileSize
	sets = make([]ColorSet, tilesX*tilesY)

	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			set := make(ColorSet)
			for y := 0; y < TileSize; y++ {
				for x := 0; x < TileSize; x++ {
					c := levels.At(tx*TileSize+x, ty*TileSize+y)
					if c == bg {
						continue
					}
					set[c] = struct{}{}
				}
			}
			sets[ty*tilesX+tx] = set
		}
	}

	return sets, tilesX, tilesY
}

// build constructs a single Palette from a color union: index 0 is bg,
// indices 1..len(union) hold the union's colors sorted by ascending
// luminance (ties broken lexicographically by R, G, B), and the remainder
// is padded with bg. Order is deterministic but not otherwise significant.
func build(bg color.RGB333, union map[color.RGB333]struct{}) Palette {
	colors := make([]color.RGB333, 0, len(union))
	for c := range union {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool {
		li, lj := luminance(colors[i]), luminance(colors[j])
		if li != lj {
			return li < lj
		}
		if colors[i].R != colors[j].R {
			return colors[i].R < colors[j].R
		}
		if colors[i].G != colors[j].G {
			return colors[i].G < colors[j].G
		}
		return colors[i].B < colors[j].B
	})

	var p Palette
	p[0] = bg
	i := 1
	for _, c := range colors {
		if i >= ColorsPerPalette {
			break
		}
		p[i] = c
		i++
	}
	for ; i < ColorsPerPalette; i++ {
		p[i] = bg
	}
	return p
}

func luminance(c color.RGB333) int {
	return 299*int(c.R) + 587*int(c.G) + 114*int(c.B)
}

// Index returns the palette-local index of c, or -1 if c is not present.
func (p Palette) Index(c color.RGB333) int {
	for i, e := range p {
		if e == c {
			return i
		}
	}
	return -1
}

// Nearest returns the palette-local index whose color is closest to c in
// RGB333 space, ties broken toward the smaller index. Used by the tile
// assembler when a tile's overflow colors were never merged into its
// palette's union (spec.md §4.5).
func (p Palette) Nearest(c color.RGB333) int {
	best, bestDist := 0, -1
	for i, e := range p {
		d := color.DistSq(c, e)
		if bestDist == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
