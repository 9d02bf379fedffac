package gfx

// Tile flag bits, stored in the upper bits of each cell so the lower bits
// remain free for the tile index selector.
const (
	FlagFlipX    uint16 = 1 << 15 // horizontal flip
	FlagFlipY    uint16 = 1 << 14 // vertical flip
	FlagRotate   uint16 = 1 << 13 // row/column swap (Tiled compatibility)
	FlagPriority uint16 = 1 << 12 // tile drawn in front of sprites
	FlagMasked   uint16 = 1 << 11 // sprite not drawn inside the mask region

	flagTilesetShift        = 8
	FlagTilesetMask  uint16 = 7 << flagTilesetShift // 3-bit tileset selector
)

// MaxTilemapTilesets is the number of tileset slots addressable by the
// 3-bit selector in each cell.
const MaxTilemapTilesets = 8

// Tile is a single tilemap cell.
type Tile struct {
	Index uint16
	Flags uint16
}

// TilesetSlot extracts the tileset selector of the cell.
func (t Tile) TilesetSlot() int {
	return int(t.Flags&FlagTilesetMask) >> flagTilesetShift
}

// Tilemap holds the grid of cells defining a background layout plus up to
// eight tilesets selectable per cell.
type Tilemap struct {
	rows, cols int
	cells      []Tile
	tilesets   [MaxTilemapTilesets]*Tileset
	bgColor    Color
	hasBGColor bool
}

// NewTilemap creates a tilemap. cells may be nil for an empty map, or must
// hold exactly rows*cols entries. tileset is assigned to slot 0 and may be
// nil when it is attached later.
func NewTilemap(rows, cols int, cells []Tile, tileset *Tileset) (*Tilemap, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrWrongSize
	}
	if cells != nil && len(cells) != rows*cols {
		return nil, ErrWrongSize
	}
	m := &Tilemap{rows: rows, cols: cols}
	m.cells = make([]Tile, rows*cols)
	copy(m.cells, cells)
	m.tilesets[0] = tileset
	return m, nil
}

func (m *Tilemap) Rows() int { return m.rows }
func (m *Tilemap) Cols() int { return m.cols }

// Tileset returns the tileset in the given slot.
func (m *Tilemap) Tileset(slot int) (*Tileset, error) {
	if slot < 0 || slot >= MaxTilemapTilesets {
		return nil, ErrIndexOutOfRange
	}
	return m.tilesets[slot], nil
}

// SetTileset attaches a tileset to a selector slot.
func (m *Tilemap) SetTileset(slot int, t *Tileset) error {
	if slot < 0 || slot >= MaxTilemapTilesets {
		return ErrIndexOutOfRange
	}
	if t == nil {
		return ErrInvalidReference
	}
	m.tilesets[slot] = t
	return nil
}

// TilesetFor resolves which tileset renders the cell via its selector
// bits, falling back to slot 0 for unpopulated slots.
func (m *Tilemap) TilesetFor(t Tile) *Tileset {
	if ts := m.tilesets[t.TilesetSlot()]; ts != nil {
		return ts
	}
	return m.tilesets[0]
}

// Width returns the map width in pixels, 0 when no tileset is attached.
func (m *Tilemap) Width() int {
	if m.tilesets[0] == nil {
		return 0
	}
	return m.cols * m.tilesets[0].TileWidth()
}

// Height returns the map height in pixels, 0 when no tileset is attached.
func (m *Tilemap) Height() int {
	if m.tilesets[0] == nil {
		return 0
	}
	return m.rows * m.tilesets[0].TileHeight()
}

// Tile returns the cell at (row, col).
func (m *Tilemap) Tile(row, col int) (Tile, error) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return Tile{}, ErrIndexOutOfRange
	}
	return m.cells[row*m.cols+col], nil
}

// TileAt is the unchecked accessor used by the compositors.
func (m *Tilemap) TileAt(row, col int) Tile {
	return m.cells[row*m.cols+col]
}

// SetTile sets the cell at (row, col).
func (m *Tilemap) SetTile(row, col int, t Tile) error {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return ErrIndexOutOfRange
	}
	m.cells[row*m.cols+col] = t
	return nil
}

// CopyTiles copies a block of cells into another tilemap. Both regions
// must lie fully inside their maps.
func (m *Tilemap) CopyTiles(srcRow, srcCol, numRows, numCols int, dst *Tilemap, dstRow, dstCol int) error {
	if dst == nil {
		return ErrInvalidReference
	}
	if numRows <= 0 || numCols <= 0 ||
		srcRow < 0 || srcCol < 0 || srcRow+numRows > m.rows || srcCol+numCols > m.cols ||
		dstRow < 0 || dstCol < 0 || dstRow+numRows > dst.rows || dstCol+numCols > dst.cols {
		return ErrIndexOutOfRange
	}
	for r := 0; r < numRows; r++ {
		copy(dst.cells[(dstRow+r)*dst.cols+dstCol:(dstRow+r)*dst.cols+dstCol+numCols],
			m.cells[(srcRow+r)*m.cols+srcCol:(srcRow+r)*m.cols+srcCol+numCols])
	}
	return nil
}

// SetBGColor records the default background color carried by the map.
func (m *Tilemap) SetBGColor(c Color) {
	m.bgColor = c
	m.hasBGColor = true
}

// BGColor returns the background color and whether one was set.
func (m *Tilemap) BGColor() (Color, bool) {
	return m.bgColor, m.hasBGColor
}

// UsedMemory reports the approximate size of the cell storage in bytes.
func (m *Tilemap) UsedMemory() int {
	return len(m.cells) * 4
}

// Clone creates a copy of the tilemap. Cells are copied, tileset
// references are shared.
func (m *Tilemap) Clone() *Tilemap {
	c := *m
	c.cells = make([]Tile, len(m.cells))
	copy(c.cells, m.cells)
	return &c
}
