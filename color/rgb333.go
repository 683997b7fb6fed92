/*
Package color implements the RGB333 color space used by the target console:
three bits per channel, eight levels each, and the packed 16-bit color word
the hardware expects.
*/
package color

import "fmt"

// Levels is the number of discrete values a single RGB333 channel can hold.
const Levels = 8

// RGB333 is a color with three channels, each in [0, Levels).
type RGB333 struct {
	R, G, B uint8
}

// Word packs c into the console's 16-bit color format:
//
//	0000 0GGG RRRB BB00
func (c RGB333) Word() uint16 {
	return uint16(c.G&0x7)<<8 | uint16(c.R&0x7)<<5 | uint16(c.B&0x7)<<2
}

// FromWord unpacks a 16-bit color word into an RGB333 value.
func FromWord(w uint16) RGB333 {
	return RGB333{
		R: uint8(w>>5) & 0x7,
		G: uint8(w>>8) & 0x7,
		B: uint8(w>>2) & 0x7,
	}
}

// To8 expands each 3-bit channel to its representative 8-bit value, the
// inverse of Snap.
func (c RGB333) To8() (r, g, b uint8) {
	return levelTo8(c.R), levelTo8(c.G), levelTo8(c.B)
}

func levelTo8(level uint8) uint8 {
	return uint8((uint32(level)*255 + (Levels-1)/2) / (Levels - 1))
}

// Snap quantizes an 8-bit RGB triple to the nearest RGB333 value.
func Snap(r, g, b uint8) RGB333 {
	return RGB333{
		R: snapChannel(r),
		G: snapChannel(g),
		B: snapChannel(b),
	}
}

func snapChannel(v uint8) uint8 {
	// round(v * 7 / 255)
	return uint8((uint32(v)*(Levels-1) + 127) / 255)
}

// DistSq returns the squared Euclidean distance between two RGB333 colors in
// channel-level space.
func DistSq(a, b RGB333) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// Hex renders c as an 8-bit "#RRGGBB" string, the textual form used by the
// emitters' listing output.
func (c RGB333) Hex() string {
	r, g, b := c.To8()
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// ParseHex parses an "#RRGGBB" or "RRGGBB" 8-bit hex color and snaps it to
// RGB333.
func ParseHex(s string) (RGB333, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return RGB333{}, fmt.Errorf("color: invalid hex color %q", s)
	}
	var v [3]uint8
	for i := 0; i < 3; i++ {
		n, err := parseHexByte(s[i*2 : i*2+2])
		if err != nil {
			return RGB333{}, fmt.Errorf("color: invalid hex color %q: %w", s, err)
		}
		v[i] = n
	}
	return Snap(v[0], v[1], v[2]), nil
}

func parseHexByte(s string) (uint8, error) {
	var v uint8
	for _, c := range []byte(s) {
		var d uint8
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, fmt.Errorf("invalid hex digit %q", c)
		}
		v = v<<4 | d
	}
	return v, nil
}
