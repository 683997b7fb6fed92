package dither

import "fmt"

// Mask is a binary image, one byte per pixel, gating whether dithering is
// applied at a given location. A pixel value of 0 forces nearest-color
// quantization there regardless of dither Mode.
type Mask struct {
	Width, Height int
	Pix           []byte
}

// NewMask allocates a mask with every pixel enabled.
func NewMask(w, h int) *Mask {
	pix := make([]byte, w*h)
	for i := range pix {
		pix[i] = 1
	}
	return &Mask{Width: w, Height: h, Pix: pix}
}

// Enabled reports whether dithering is enabled at (x, y). A nil mask enables
// every pixel.
func (m *Mask) Enabled(x, y int) bool {
	if m == nil {
		return true
	}
	return m.Pix[y*m.Width+x] != 0
}

// Validate checks the mask dimensions match the expected image size, per the
// InvalidInput contract in spec.md §7.
func (m *Mask) Validate(width, height int) error {
	if m == nil {
		return nil
	}
	if m.Width != width || m.Height != height {
		return fmt.Errorf("dither: mask size %dx%d does not match image size %dx%d", m.Width, m.Height, width, height)
	}
	if len(m.Pix) != width*height {
		return fmt.Errorf("dither: mask pixel buffer has %d bytes, want %d", len(m.Pix), width*height)
	}
	return nil
}

// Clone returns a defensive, independent copy of m.
func (m *Mask) Clone() *Mask {
	if m == nil {
		return nil
	}
	pix := make([]byte, len(m.Pix))
	copy(pix, m.Pix)
	return &Mask{Width: m.Width, Height: m.Height, Pix: pix}
}
