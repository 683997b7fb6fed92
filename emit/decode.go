package emit

import (
	"fmt"
	stdimage "image"
	stdcolor "image/color"

	"github.com/beddy70/image2pce/palette"
	"github.com/beddy70/image2pce/tile"
)

// Decode reconstructs the region of a as an RGB image, starting at BAT tile
// offset (ox, oy) and spanning tilesX×tilesY tiles. It is the inverse of the
// assemble/dedup/compose chain and exists to verify round-trip fidelity
// (spec.md §8's decode-and-compare property): decoding the artifacts of a
// non-dithered, exact-fit conversion must reproduce the tonemapped preview
// exactly.
func Decode(a Artifacts, ox, oy, tilesX, tilesY int) (*stdimage.RGBA, error) {
	if ox < 0 || oy < 0 || ox+tilesX > a.BAT.Width || oy+tilesY > a.BAT.Height {
		return nil, fmt.Errorf("emit: region %dx%d at (%d,%d) does not fit BAT grid %dx%d", tilesX, tilesY, ox, oy, a.BAT.Width, a.BAT.Height)
	}

	out := stdimage.NewRGBA(stdimage.Rect(0, 0, tilesX*tile.Size, tilesY*tile.Size))

	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			entry := a.BAT.Entries[(oy+ty)*a.BAT.Width+(ox+tx)]
			if entry.UniqueIndex < 0 || entry.UniqueIndex >= len(a.Unique) {
				return nil, fmt.Errorf("emit: BAT entry at (%d,%d) references unique index %d out of range", ox+tx, oy+ty, entry.UniqueIndex)
			}
			if int(entry.Palette) >= palette.MaxPalettes {
				return nil, fmt.Errorf("emit: BAT entry at (%d,%d) references palette %d out of range", ox+tx, oy+ty, entry.Palette)
			}

			decoded := tile.DecodePlanar(a.Unique[entry.UniqueIndex])
			pal := a.Palettes[entry.Palette]

			for y := 0; y < tile.Size; y++ {
				for x := 0; x < tile.Size; x++ {
					idx := decoded[y*tile.Size+x]
					c := pal[idx]
					r, g, b := c.To8()
					out.SetRGBA(tx*tile.Size+x, ty*tile.Size+y, stdcolor.RGBA{R: r, G: g, B: b, A: 0xFF})
				}
			}
		}
	}

	return out, nil
}
