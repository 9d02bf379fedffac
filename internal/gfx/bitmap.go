package gfx

// Bitmap is an indexed 8bpp pixel buffer with an attached palette. It backs
// full-screen background layers and the shared atlas of a Spriteset.
type Bitmap struct {
	width, height int
	pitch         int
	data          []uint8
	palette       *Palette
}

// NewBitmap creates an empty bitmap of the given dimensions.
func NewBitmap(width, height int) (*Bitmap, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrWrongSize
	}
	return &Bitmap{
		width:  width,
		height: height,
		pitch:  width,
		data:   make([]uint8, width*height),
	}, nil
}

func (b *Bitmap) Width() int  { return b.width }
func (b *Bitmap) Height() int { return b.height }
func (b *Bitmap) Pitch() int  { return b.pitch }

// Palette returns the attached palette, may be nil for raw atlases.
func (b *Bitmap) Palette() *Palette { return b.palette }

// SetPalette attaches a palette to the bitmap.
func (b *Bitmap) SetPalette(p *Palette) error {
	if p == nil {
		return ErrInvalidReference
	}
	b.palette = p
	return nil
}

// Pixel returns the color index at (x, y).
func (b *Bitmap) Pixel(x, y int) (uint8, error) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return 0, ErrIndexOutOfRange
	}
	return b.data[y*b.pitch+x], nil
}

// PixelAt is the unchecked accessor used by the compositors.
func (b *Bitmap) PixelAt(x, y int) uint8 {
	return b.data[y*b.pitch+x]
}

// SetPixel sets the color index at (x, y).
func (b *Bitmap) SetPixel(x, y int, index uint8) error {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return ErrIndexOutOfRange
	}
	b.data[y*b.pitch+x] = index
	return nil
}

// Row returns the pixel row at y as a slice aliasing the bitmap storage.
func (b *Bitmap) Row(y int) []uint8 {
	return b.data[y*b.pitch : y*b.pitch+b.width]
}

// SetRows copies raw pixel data into the region starting at (x, y).
func (b *Bitmap) SetRows(x, y, w, h int, pixels []uint8, pitch int) error {
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > b.width || y+h > b.height {
		return ErrWrongSize
	}
	if len(pixels) < (h-1)*pitch+w {
		return ErrWrongSize
	}
	for row := 0; row < h; row++ {
		copy(b.data[(y+row)*b.pitch+x:(y+row)*b.pitch+x+w], pixels[row*pitch:row*pitch+w])
	}
	return nil
}

// UsedMemory reports the approximate size of the pixel storage in bytes.
func (b *Bitmap) UsedMemory() int {
	return len(b.data)
}

// Clone creates a copy of the bitmap sharing no pixel storage. The palette
// reference is shared, matching the engine's ownership model.
func (b *Bitmap) Clone() *Bitmap {
	c := &Bitmap{
		width:   b.width,
		height:  b.height,
		pitch:   b.pitch,
		data:    make([]uint8, len(b.data)),
		palette: b.palette,
	}
	copy(c.data, b.data)
	return c
}
