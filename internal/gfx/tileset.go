package gfx

// TileAttrs carries the optional per-tile metadata of a tileset.
type TileAttrs struct {
	Type     uint8
	Priority bool
}

// Tileset holds the graphic tiles referenced by tilemap cells. Dimensions
// are fixed at creation; individual tile pixels may be replaced afterwards.
type Tileset struct {
	tileWidth  int
	tileHeight int
	numTiles   int
	pixels     []uint8 // tile-major, numTiles blocks of tileWidth*tileHeight
	palette    *Palette
	sequences  *SequencePack
	attrs      []TileAttrs
}

// NewTileset creates an empty tileset. Tile dimensions must be multiples
// of 8. The palette, sequence pack and attributes are all optional at
// creation time; a layer refuses tilesets without a palette at assignment.
func NewTileset(numTiles, width, height int, palette *Palette, sequences *SequencePack, attrs []TileAttrs) (*Tileset, error) {
	if numTiles <= 0 || width <= 0 || height <= 0 || width%8 != 0 || height%8 != 0 {
		return nil, ErrWrongSize
	}
	if attrs != nil && len(attrs) != numTiles {
		return nil, ErrWrongSize
	}
	t := &Tileset{
		tileWidth:  width,
		tileHeight: height,
		numTiles:   numTiles,
		pixels:     make([]uint8, numTiles*width*height),
		palette:    palette,
		sequences:  sequences,
	}
	if attrs != nil {
		t.attrs = make([]TileAttrs, numTiles)
		copy(t.attrs, attrs)
	}
	return t, nil
}

func (t *Tileset) TileWidth() int  { return t.tileWidth }
func (t *Tileset) TileHeight() int { return t.tileHeight }
func (t *Tileset) NumTiles() int   { return t.numTiles }

// Palette returns the attached palette.
func (t *Tileset) Palette() *Palette { return t.palette }

// SetPalette attaches a palette.
func (t *Tileset) SetPalette(p *Palette) error {
	if p == nil {
		return ErrInvalidReference
	}
	t.palette = p
	return nil
}

// Sequences returns the embedded sequence pack for tileset animation,
// may be nil.
func (t *Tileset) Sequences() *SequencePack { return t.sequences }

// Attrs returns the attributes of a tile. Tiles without explicit
// attributes report the zero value.
func (t *Tileset) Attrs(entry int) (TileAttrs, error) {
	if entry < 0 || entry >= t.numTiles {
		return TileAttrs{}, ErrIndexOutOfRange
	}
	if t.attrs == nil {
		return TileAttrs{}, nil
	}
	return t.attrs[entry], nil
}

// SetPixels replaces the pixel block of a single tile. pitch is the number
// of bytes per source row.
func (t *Tileset) SetPixels(entry int, data []uint8, pitch int) error {
	if entry < 0 || entry >= t.numTiles {
		return ErrIndexOutOfRange
	}
	if pitch < t.tileWidth || len(data) < (t.tileHeight-1)*pitch+t.tileWidth {
		return ErrWrongSize
	}
	base := entry * t.tileWidth * t.tileHeight
	for y := 0; y < t.tileHeight; y++ {
		copy(t.pixels[base+y*t.tileWidth:base+(y+1)*t.tileWidth], data[y*pitch:y*pitch+t.tileWidth])
	}
	return nil
}

// Pixel returns the color index at (x, y) inside a tile. Callers in the
// compositors have validated entry against the tilemap beforehand.
func (t *Tileset) Pixel(entry, x, y int) uint8 {
	return t.pixels[entry*t.tileWidth*t.tileHeight+y*t.tileWidth+x]
}

// UsedMemory reports the approximate size of the pixel storage in bytes.
func (t *Tileset) UsedMemory() int {
	return len(t.pixels)
}

// Clone creates a copy of the tileset. Pixels and attributes are copied,
// the palette and sequence pack references are shared.
func (t *Tileset) Clone() *Tileset {
	c := &Tileset{
		tileWidth:  t.tileWidth,
		tileHeight: t.tileHeight,
		numTiles:   t.numTiles,
		pixels:     make([]uint8, len(t.pixels)),
		palette:    t.palette,
		sequences:  t.sequences,
	}
	copy(c.pixels, t.pixels)
	if t.attrs != nil {
		c.attrs = make([]TileAttrs, len(t.attrs))
		copy(c.attrs, t.attrs)
	}
	return c
}
