package dither

// bayer8 is the standard 8x8 ordered-dither threshold matrix, values in
// [0, 64).
var bayer8 = [8][8]int{
	{0, 32, 8, 40, 2, 34, 10, 42},
	{48, 16, 56, 24, 50, 18, 58, 26},
	{12, 44, 4, 36, 14, 46, 6, 38},
	{60, 28, 52, 20, 62, 30, 54, 22},
	{3, 35, 11, 43, 1, 33, 9, 41},
	{51, 19, 59, 27, 49, 17, 57, 25},
	{15, 47, 7, 39, 13, 45, 5, 37},
	{63, 31, 55, 23, 61, 29, 53, 21},
}

// step is the distance in 8-bit units between two adjacent RGB333 levels.
const step = 255.0 / 7.0

// bayerOffset returns the additive threshold term for (x, y), scaled to
// ±½ of the RGB333 quantization step as spec.md §4.3 requires.
func bayerOffset(x, y int) float64 {
	v := bayer8[y&7][x&7]
	// v ranges 0..63; center and normalize to (-0.5, 0.5)
	normalized := (float64(v)+0.5)/64.0 - 0.5
	return normalized * step
}
