package emit

import (
	"fmt"
	"io"

	"github.com/beddy70/image2pce/color"
	"github.com/beddy70/image2pce/tile"
)

// EncodeText writes an assembler-style listing of a describing the
// generated data: dedup ratio and VRAM footprint as leading comments,
// then the BAT, tile, and palette contents as dw/db directives.
// sourceTileCount is the number of tiles before deduplication, used only
// to compute the reported ratio.
func (a Artifacts) EncodeText(w io.Writer, sourceTileCount int, seeds []color.RGB333) error {
	uniqueCount := len(a.Unique)
	ratio := 0.0
	if sourceTileCount > 0 {
		ratio = 100 * (1 - float64(uniqueCount)/float64(sourceTileCount))
	}
	fmt.Fprintf(w, "; image2pce listing\n")
	fmt.Fprintf(w, "; tiles: %d unique of %d source (%.1f%% deduplicated)\n", uniqueCount, sourceTileCount, ratio)
	fmt.Fprintf(w, "; vram: %d bytes at base 0x%04X\n", uniqueCount*tile.PlaneBytes, a.VRAMBase)
	if len(seeds) > 0 {
		fmt.Fprintf(w, "; seed colors:")
		for _, c := range seeds {
			fmt.Fprintf(w, " %s", c.Hex())
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	words, overflow := a.BAT.Words(a.VRAMBase)
	if overflow {
		fmt.Fprintln(w, "; warning: one or more BAT entries overflowed the addressable range")
	}
	fmt.Fprintf(w, "bat_%dx%d:\n", a.BAT.Width, a.BAT.Height)
	for i, word := range words {
		if i%8 == 0 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprint(w, "\tdw ")
		} else {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "0x%04X", word)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "tiles:")
	for i, pattern := range a.Unique {
		fmt.Fprintf(w, "\t; tile %d\n", i)
		for plane := 0; plane < 4; plane++ {
			fmt.Fprint(w, "\tdb ")
			for row := 0; row < tile.Size; row++ {
				if row > 0 {
					fmt.Fprint(w, ", ")
				}
				fmt.Fprintf(w, "0x%02X", pattern[plane*tile.Size+row])
			}
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "palettes:")
	for pi, p := range a.Palettes {
		fmt.Fprintf(w, "\t; palette %d\n\tdw ", pi)
		for ci, c := range p {
			if ci > 0 {
				fmt.Fprint(w, ", ")
			}
			fmt.Fprintf(w, "0x%04X", c.Word())
		}
		fmt.Fprintln(w)
	}

	return nil
}
