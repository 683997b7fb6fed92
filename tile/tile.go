/*
Package tile implements the console's 8×8 planar tile format: assembling
per-tile palette-local pixel indices, encoding them into the four-bitplane
byte layout, deduplicating identical tiles, and composing the Block Address
Table that places them on the background grid.
*/
package tile

import "github.com/beddy70/image2pce/color"
import "github.com/beddy70/image2pce/palette"

// Size is the edge length, in pixels, of one tile.
const Size = 8

// Pixels is the number of pixels in one tile.
const Pixels = Size * Size

// PlaneBytes is the size, in bytes, of one tile's planar encoding: four
// bitplanes of eight bytes each.
const PlaneBytes = 32

// Tile is an 8×8 matrix of palette-local indices in [0, 16), row-major.
type Tile [Pixels]uint8

// Empty reports whether every pixel index is 0.
func (t Tile) Empty() bool {
	for _, v := range t {
		if v != 0 {
			return false
		}
	}
	return true
}

// EncodePlanar packs t into the console's 32-byte, four-bitplane layout:
// bytes [0:8) hold bit 0 of every pixel, [8:16) bit 1, [16:24) bit 2, and
// [24:32) bit 3, each byte packing one row with column 0 in the MSB.
func (t Tile) EncodePlanar() [PlaneBytes]byte {
	var out [PlaneBytes]byte
	for row := 0; row < Size; row++ {
		var b0, b1, b2, b3 byte
		for col := 0; col < Size; col++ {
			idx := t[row*Size+col]
			bit := byte(7 - col)
			if idx&0x1 != 0 {
				b0 |= 1 << bit
			}
			if idx&0x2 != 0 {
				b1 |= 1 << bit
			}
			if idx&0x4 != 0 {
				b2 |= 1 << bit
			}
			if idx&0x8 != 0 {
				b3 |= 1 << bit
			}
		}
		out[row] = b0
		out[Size+row] = b1
		out[2*Size+row] = b2
		out[3*Size+row] = b3
	}
	return out
}

// DecodePlanar is the inverse of EncodePlanar.
func DecodePlanar(b [PlaneBytes]byte) Tile {
	var t Tile
	for row := 0; row < Size; row++ {
		b0, b1, b2, b3 := b[row], b[Size+row], b[2*Size+row], b[3*Size+row]
		for col := 0; col < Size; col++ {
			bit := byte(7 - col)
			var idx uint8
			if b0&(1<<bit) != 0 {
				idx |= 0x1
			}
			if b1&(1<<bit) != 0 {
				idx |= 0x2
			}
			if b2&(1<<bit) != 0 {
				idx |= 0x4
			}
			if b3&(1<<bit) != 0 {
				idx |= 0x8
			}
			t[row*Size+col] = idx
		}
	}
	return t
}

// Assemble maps every pixel of levels to its palette-local index and
// returns the resulting tiles in row-major order. When a pixel's exact
// color is absent from its tile's assigned palette — the overflow case of
// spec.md §4.4 — the nearest palette entry is used instead, ties broken
// toward the smaller index (spec.md §4.5).
func Assemble(levels *color.LevelImage, assignment []int, palettes [palette.MaxPalettes]palette.Palette) []Tile {
	tilesX := levels.Width / Size
	tilesY := levels.Height / Size
	tiles := make([]Tile, tilesX*tilesY)

	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			idx := ty*tilesX + tx
			p := palettes[assignment[idx]]

			var t Tile
			for y := 0; y < Size; y++ {
				for x := 0; x < Size; x++ {
					c := levels.At(tx*Size+x, ty*Size+y)
					pi := p.Index(c)
					if pi == -1 {
						pi = p.Nearest(c)
					}
					t[y*Size+x] = uint8(pi)
				}
			}
			tiles[idx] = t
		}
	}

	return tiles
}
