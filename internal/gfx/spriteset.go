package gfx

// SpriteEntry describes one sprite picture as a named rectangle into the
// spriteset's shared bitmap.
type SpriteEntry struct {
	Name string
	X, Y int
	W, H int
}

// Spriteset holds the graphic data used to render sprites: a shared atlas
// bitmap plus the rectangles of the individual pictures.
type Spriteset struct {
	bitmap  *Bitmap
	entries []SpriteEntry
}

// NewSpriteset creates a spriteset over the given atlas. Every entry
// rectangle must lie inside the bitmap.
func NewSpriteset(bitmap *Bitmap, entries []SpriteEntry) (*Spriteset, error) {
	if bitmap == nil {
		return nil, ErrInvalidReference
	}
	for _, e := range entries {
		if e.W <= 0 || e.H <= 0 || e.X < 0 || e.Y < 0 ||
			e.X+e.W > bitmap.Width() || e.Y+e.H > bitmap.Height() {
			return nil, ErrWrongSize
		}
	}
	s := &Spriteset{bitmap: bitmap}
	s.entries = make([]SpriteEntry, len(entries))
	copy(s.entries, entries)
	return s, nil
}

// NumPictures returns the number of pictures in the set.
func (s *Spriteset) NumPictures() int { return len(s.entries) }

// Palette returns the palette of the underlying atlas.
func (s *Spriteset) Palette() *Palette { return s.bitmap.Palette() }

// Entry returns the picture rectangle at index.
func (s *Spriteset) Entry(index int) (SpriteEntry, error) {
	if index < 0 || index >= len(s.entries) {
		return SpriteEntry{}, ErrIndexOutOfRange
	}
	return s.entries[index], nil
}

// FindPicture returns the index of the picture with the given name,
// or -1 when not found.
func (s *Spriteset) FindPicture(name string) int {
	for i, e := range s.entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// SetData replaces the rectangle and pixels of one picture. pitch is the
// number of bytes per source row.
func (s *Spriteset) SetData(index int, entry SpriteEntry, pixels []uint8, pitch int) error {
	if index < 0 || index >= len(s.entries) {
		return ErrIndexOutOfRange
	}
	if err := s.bitmap.SetRows(entry.X, entry.Y, entry.W, entry.H, pixels, pitch); err != nil {
		return err
	}
	s.entries[index] = entry
	return nil
}

// Pixel returns the color index at (x, y) inside a picture. The
// compositors validate the picture index beforehand.
func (s *Spriteset) Pixel(index, x, y int) uint8 {
	e := s.entries[index]
	return s.bitmap.PixelAt(e.X+x, e.Y+y)
}

// UsedMemory reports the approximate size of the atlas in bytes.
func (s *Spriteset) UsedMemory() int {
	return s.bitmap.UsedMemory()
}

// Clone creates a copy of the spriteset with its own atlas copy.
func (s *Spriteset) Clone() *Spriteset {
	c := &Spriteset{bitmap: s.bitmap.Clone()}
	c.entries = make([]SpriteEntry, len(s.entries))
	copy(c.entries, s.entries)
	return c
}
