/*
Package emit produces the console's binary and text file formats from a
completed conversion: the Block Address Table, the deduplicated tile
stream, the palette table, and a human-readable assembler-style listing.
*/
package emit

import (
	"encoding/binary"
	"io"

	"github.com/beddy70/image2pce/palette"
	"github.com/beddy70/image2pce/tile"
)

// Endianness selects the byte order of the 16-bit BAT and palette words.
type Endianness int

const (
	LittleEndian Endianness = iota
	BigEndian
)

func (e Endianness) order() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Artifacts holds everything needed to emit the three binary streams and
// the text listing for one completed conversion.
type Artifacts struct {
	BAT          tile.BAT
	Unique       [][tile.PlaneBytes]byte
	Palettes     [palette.MaxPalettes]palette.Palette
	VRAMBase     uint32
	BATEndian    Endianness
	TileEndian   Endianness
	PaletteEndian Endianness
}

// EncodeWords writes words to w as 16-bit values in the given byte order.
func EncodeWords(w io.Writer, words []uint16, endian Endianness) error {
	order := endian.order()
	buf := make([]byte, 2*len(words))
	for i, word := range words {
		order.PutUint16(buf[i*2:], word)
	}
	_, err := w.Write(buf)
	return err
}

// EncodeTiles writes the deduplicated tile stream. The tile endianness flag
// has no effect on the byte layout: spec.md §4.5 fixes each plane row's
// byte order to MSB-first column regardless of the console's word
// endianness, since the stream is bit-planed bytes rather than 16-bit
// words. The parameter is accepted for interface symmetry with the other
// two streams and to leave room for a future word-oriented tile format.
func EncodeTiles(w io.Writer, unique [][tile.PlaneBytes]byte, _ Endianness) error {
	buf := make([]byte, len(unique)*tile.PlaneBytes)
	for i, pattern := range unique {
		copy(buf[i*tile.PlaneBytes:], pattern[:])
	}
	_, err := w.Write(buf)
	return err
}

// EncodePalettes writes exactly 16 palettes of 16 entries each (512 bytes)
// in the given byte order.
func EncodePalettes(w io.Writer, palettes [palette.MaxPalettes]palette.Palette, endian Endianness) error {
	words := make([]uint16, 0, palette.MaxPalettes*palette.ColorsPerPalette)
	for _, p := range palettes {
		for _, c := range p {
			words = append(words, c.Word())
		}
	}
	return EncodeWords(w, words, endian)
}

// EncodeBinary writes all three streams and reports whether any BAT entry
// overflowed the addressable VRAM range (spec.md §7's VramOverflow, a
// warning-category condition — the artifacts are still fully written).
func (a Artifacts) EncodeBinary(bat, tiles, palettes io.Writer) (overflow bool, err error) {
	words, overflow := a.BAT.Words(a.VRAMBase)
	if err = EncodeWords(bat, words, a.BATEndian); err != nil {
		return overflow, err
	}
	if err = EncodeTiles(tiles, a.Unique, a.TileEndian); err != nil {
		return overflow, err
	}
	if err = EncodePalettes(palettes, a.Palettes, a.PaletteEndian); err != nil {
		return overflow, err
	}
	return overflow, nil
}
