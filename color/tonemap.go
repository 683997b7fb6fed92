package color

import "image"

// Image8 is a W×H 8-bit RGB image, three bytes per pixel, row-major.
type Image8 struct {
	Width, Height int
	Pix           []uint8
}

// NewImage8 allocates a zeroed Image8 of the given size.
func NewImage8(w, h int) *Image8 {
	return &Image8{Width: w, Height: h, Pix: make([]uint8, w*h*3)}
}

// At returns the 8-bit RGB triple at (x, y).
func (im *Image8) At(x, y int) (r, g, b uint8) {
	i := (y*im.Width + x) * 3
	return im.Pix[i], im.Pix[i+1], im.Pix[i+2]
}

// Set stores the 8-bit RGB triple at (x, y).
func (im *Image8) Set(x, y int, r, g, b uint8) {
	i := (y*im.Width + x) * 3
	im.Pix[i], im.Pix[i+1], im.Pix[i+2] = r, g, b
}

// LevelImage is a W×H image of RGB333 channel levels, each in [0, Levels),
// three bytes per pixel, row-major.
type LevelImage struct {
	Width, Height int
	Pix           []uint8
}

// NewLevelImage allocates a zeroed LevelImage of the given size.
func NewLevelImage(w, h int) *LevelImage {
	return &LevelImage{Width: w, Height: h, Pix: make([]uint8, w*h*3)}
}

// At returns the RGB333 color at (x, y).
func (im *LevelImage) At(x, y int) RGB333 {
	i := (y*im.Width + x) * 3
	return RGB333{R: im.Pix[i], G: im.Pix[i+1], B: im.Pix[i+2]}
}

// Set stores the RGB333 color at (x, y).
func (im *LevelImage) Set(x, y int, c RGB333) {
	i := (y*im.Width + x) * 3
	im.Pix[i], im.Pix[i+1], im.Pix[i+2] = c.R, c.G, c.B
}

// Tonemap applies curve to src and returns both the post-curve 8-bit image
// (consumed by the dither engine for error accounting) and the corresponding
// RGB333 level image, per spec.md §4.2.
func Tonemap(src image.Image, curve ToneCurve) (*Image8, *LevelImage) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	post := NewImage8(w, h)
	levels := NewLevelImage(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r16, g16, b16, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			r8 := curve.Apply(uint8(r16 >> 8))
			g8 := curve.Apply(uint8(g16 >> 8))
			b8 := curve.Apply(uint8(b16 >> 8))
			post.Set(x, y, r8, g8, b8)
			levels.Set(x, y, Snap(r8, g8, b8))
		}
	}

	return post, levels
}
