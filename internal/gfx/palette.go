package gfx

// MaxPaletteEntries is the maximum number of colors a Palette can hold.
const MaxPaletteEntries = 256

// Color is a single RGB palette entry.
type Color [3]uint8

// RGB builds a Color from its components.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b}
}

// Palette holds the color table used by tilesets, spritesets and bitmaps to
// resolve indexed pixels. All range operations are saturating and leave the
// palette untouched when the range is invalid.
type Palette struct {
	colors [MaxPaletteEntries]Color
	num    int
}

// NewPalette creates an empty palette with num entries, up to 256.
func NewPalette(num int) (*Palette, error) {
	if num <= 0 || num > MaxPaletteEntries {
		return nil, ErrWrongSize
	}
	return &Palette{num: num}, nil
}

// Len returns the number of entries.
func (p *Palette) Len() int {
	return p.num
}

// Color returns the entry at index.
func (p *Palette) Color(index int) (Color, error) {
	if index < 0 || index >= p.num {
		return Color{}, ErrIndexOutOfRange
	}
	return p.colors[index], nil
}

// ColorAt is the unchecked accessor used by the compositors, which have
// already validated their pixel data against the palette length.
func (p *Palette) ColorAt(index uint8) Color {
	return p.colors[index]
}

// SetColor sets the entry at index.
func (p *Palette) SetColor(index int, c Color) error {
	if index < 0 || index >= p.num {
		return ErrIndexOutOfRange
	}
	p.colors[index] = c
	return nil
}

func (p *Palette) checkRange(first, count int) error {
	if first < 0 || count <= 0 || first+count > p.num {
		return ErrIndexOutOfRange
	}
	return nil
}

// AddColor brightens a range of entries by adding c, saturating at 255.
func (p *Palette) AddColor(first, count int, c Color) error {
	if err := p.checkRange(first, count); err != nil {
		return err
	}
	for i := first; i < first+count; i++ {
		for ch := 0; ch < 3; ch++ {
			v := int(p.colors[i][ch]) + int(c[ch])
			if v > 255 {
				v = 255
			}
			p.colors[i][ch] = uint8(v)
		}
	}
	return nil
}

// SubColor darkens a range of entries by subtracting c, saturating at 0.
func (p *Palette) SubColor(first, count int, c Color) error {
	if err := p.checkRange(first, count); err != nil {
		return err
	}
	for i := first; i < first+count; i++ {
		for ch := 0; ch < 3; ch++ {
			v := int(p.colors[i][ch]) - int(c[ch])
			if v < 0 {
				v = 0
			}
			p.colors[i][ch] = uint8(v)
		}
	}
	return nil
}

// ModColor modulates a range of entries with c (normalized product).
func (p *Palette) ModColor(first, count int, c Color) error {
	if err := p.checkRange(first, count); err != nil {
		return err
	}
	for i := first; i < first+count; i++ {
		for ch := 0; ch < 3; ch++ {
			p.colors[i][ch] = uint8(int(p.colors[i][ch]) * int(c[ch]) / 255)
		}
	}
	return nil
}

// Mix overwrites the palette with a blend of two source palettes.
// factor 0 yields src1, 255 yields src2.
func (p *Palette) Mix(src1, src2 *Palette, factor uint8) error {
	if src1 == nil || src2 == nil {
		return ErrInvalidReference
	}
	n := src1.num
	if src2.num < n {
		n = src2.num
	}
	if p.num < n {
		n = p.num
	}
	f := int(factor)
	for i := 0; i < n; i++ {
		for ch := 0; ch < 3; ch++ {
			a := int(src1.colors[i][ch])
			b := int(src2.colors[i][ch])
			p.colors[i][ch] = uint8(a + (b-a)*f/255)
		}
	}
	return nil
}

// Rotate shifts a range of entries by one position. With forward set the
// colors move towards higher indices, the last entry wrapping to first.
func (p *Palette) Rotate(first, count int, forward bool) error {
	if err := p.checkRange(first, count); err != nil {
		return err
	}
	if count == 1 {
		return nil
	}
	if forward {
		last := p.colors[first+count-1]
		copy(p.colors[first+1:first+count], p.colors[first:first+count-1])
		p.colors[first] = last
	} else {
		head := p.colors[first]
		copy(p.colors[first:first+count-1], p.colors[first+1:first+count])
		p.colors[first+count-1] = head
	}
	return nil
}

// InterpolateRange writes into p a linear interpolation between the same
// range of palettes a and b, weighted num/den. Used by the animation engine
// for smooth color cycles.
func (p *Palette) InterpolateRange(a, b *Palette, first, count, num, den int) error {
	if a == nil || b == nil {
		return ErrInvalidReference
	}
	if err := p.checkRange(first, count); err != nil {
		return err
	}
	if den <= 0 {
		return ErrWrongSize
	}
	for i := first; i < first+count; i++ {
		for ch := 0; ch < 3; ch++ {
			av := int(a.colors[i][ch])
			bv := int(b.colors[i][ch])
			p.colors[i][ch] = uint8(av + (bv-av)*num/den)
		}
	}
	return nil
}

// CopyFrom copies all entries of src into p.
func (p *Palette) CopyFrom(src *Palette) error {
	if src == nil {
		return ErrInvalidReference
	}
	p.colors = src.colors
	p.num = src.num
	return nil
}

// Clone creates a copy of the palette.
func (p *Palette) Clone() *Palette {
	c := *p
	return &c
}
