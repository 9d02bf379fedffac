package engine

import (
	"math"

	"github.com/chewxy/math32"

	"github.com/tilengo/tilengo/internal/gfx"
)

// contentKind tags the mutually exclusive content sources of a layer.
type contentKind int

const (
	contentNone contentKind = iota
	contentTilemap
	contentBitmap
	contentObjects
)

// renderMode tags the mutually exclusive sampling modes of a layer.
// Activating one deactivates the others.
type renderMode int

const (
	modePlain renderMode = iota
	modeScaling
	modeAffine
	modePixelMap
)

// PixelMap is one entry of a per-screen-pixel displacement table: the
// source coordinates sampled for that pixel, relative to the layer
// position.
type PixelMap struct {
	DX, DY int16
}

type affineParams struct {
	angle, dx, dy, sx, sy float32
}

type clipRect struct {
	x1, y1, x2, y2 int
}

// layer is the render state of one background plane slot.
type layer struct {
	content contentKind
	tilemap *gfx.Tilemap
	bitmap  *gfx.Bitmap
	objects *gfx.ObjectList
	palette *gfx.Palette // optional override

	x, y float64 // position, fractional for sub-pixel raster scroll

	mode           renderMode
	scaleX, scaleY float32
	aff            affineParams
	pixelMap       []PixelMap

	blend       BlendMode
	clip        clipRect
	clipEnabled bool
	mosaicW     int
	mosaicH     int
	colOffsets  []int
	priority    bool
	tileAnims   []tileAnim
	tileRemap   map[uint32]uint16 // animated tile substitutions, per tileset slot
	parallaxX   float32
	parallaxY   float32
	enabled     bool
}

// width returns the content width in pixels, 0 when unset.
func (l *layer) width() int {
	switch l.content {
	case contentTilemap:
		return l.tilemap.Width()
	case contentBitmap:
		return l.bitmap.Width()
	}
	return 0
}

func (l *layer) height() int {
	switch l.content {
	case contentTilemap:
		return l.tilemap.Height()
	case contentBitmap:
		return l.bitmap.Height()
	}
	return 0
}

// setPosition stores the scroll position, wrapped modulo content size so
// out-of-range coordinates never fail.
func (l *layer) setPosition(x, y float64) {
	if w := l.width(); w > 0 {
		x = math.Mod(x, float64(w))
		if x < 0 {
			x += float64(w)
		}
	}
	if h := l.height(); h > 0 {
		y = math.Mod(y, float64(h))
		if y < 0 {
			y += float64(h)
		}
	}
	l.x, l.y = x, y
}

func (l *layer) assignContent(kind contentKind) {
	l.content = kind
	if kind != contentTilemap {
		l.tilemap = nil
	}
	if kind != contentBitmap {
		l.bitmap = nil
	}
	if kind != contentObjects {
		l.objects = nil
	}
	if l.parallaxX == 0 && l.parallaxY == 0 {
		l.parallaxX, l.parallaxY = 1, 1
	}
	l.enabled = kind != contentNone
}

func (e *Engine) layerAt(index int) (*layer, error) {
	if index < 0 || index >= len(e.layers) {
		return nil, ErrIndexOutOfRange
	}
	return &e.layers[index], nil
}

// SetLayerTilemap configures a tiled background layer. The tilemap must
// carry a tileset with a palette.
func (e *Engine) SetLayerTilemap(index int, tm *gfx.Tilemap) error {
	l, err := e.layerAt(index)
	if err != nil {
		return e.fail(err)
	}
	if tm == nil {
		return e.fail(ErrInvalidReference)
	}
	ts, _ := tm.Tileset(0)
	if ts == nil || ts.Palette() == nil {
		return e.fail(ErrInvalidReference)
	}
	l.tilemap = tm
	l.assignContent(contentTilemap)
	l.initTileAnims()
	return nil
}

// SetLayer configures a tiled background layer with an explicit tileset
// override in slot 0; with a nil tileset the tilemap's own is kept.
func (e *Engine) SetLayer(index int, ts *gfx.Tileset, tm *gfx.Tilemap) error {
	if tm != nil && ts != nil {
		if err := tm.SetTileset(0, ts); err != nil {
			return e.fail(err)
		}
	}
	return e.SetLayerTilemap(index, tm)
}

// SetLayerBitmap configures a full-bitmap background layer.
func (e *Engine) SetLayerBitmap(index int, bm *gfx.Bitmap) error {
	l, err := e.layerAt(index)
	if err != nil {
		return e.fail(err)
	}
	if bm == nil || bm.Palette() == nil {
		return e.fail(ErrInvalidReference)
	}
	l.bitmap = bm
	l.assignContent(contentBitmap)
	return nil
}

// SetLayerObjects configures an object-list layer. Object layers are a
// placeholder content variant: accepted and tracked, never rendered.
func (e *Engine) SetLayerObjects(index int, list *gfx.ObjectList) error {
	l, err := e.layerAt(index)
	if err != nil {
		return e.fail(err)
	}
	if list == nil {
		return e.fail(ErrInvalidReference)
	}
	l.objects = list
	l.assignContent(contentObjects)
	return nil
}

// SetLayerPalette overrides the palette used to resolve the layer pixels.
func (e *Engine) SetLayerPalette(index int, p *gfx.Palette) error {
	l, err := e.layerAt(index)
	if err != nil {
		return e.fail(err)
	}
	if p == nil {
		return e.fail(ErrInvalidReference)
	}
	l.palette = p
	return nil
}

// SetLayerPosition scrolls the layer so that (x, y) of the content appears
// at the upper left corner of the viewport. Fractional positions are kept
// for sub-pixel raster scroll; coordinates wrap modulo content size.
func (e *Engine) SetLayerPosition(index int, x, y float64) error {
	l, err := e.layerAt(index)
	if err != nil {
		return e.fail(err)
	}
	l.setPosition(x, y)
	return nil
}

// SetLayerScaling activates the scaling render mode, deactivating affine
// transform and pixel mapping.
func (e *Engine) SetLayerScaling(index int, sx, sy float32) error {
	l, err := e.layerAt(index)
	if err != nil {
		return e.fail(err)
	}
	if sx <= 0 || sy <= 0 {
		return e.fail(ErrWrongSize)
	}
	l.mode = modeScaling
	l.scaleX, l.scaleY = sx, sy
	return nil
}

// SetLayerTransform activates the affine render mode (rotation plus
// scaling around a screen-space center), deactivating scaling and pixel
// mapping. angle is in degrees.
func (e *Engine) SetLayerTransform(index int, angle, dx, dy, sx, sy float32) error {
	l, err := e.layerAt(index)
	if err != nil {
		return e.fail(err)
	}
	if sx == 0 || sy == 0 {
		return e.fail(ErrWrongSize)
	}
	l.mode = modeAffine
	l.aff = affineParams{angle: angle, dx: dx, dy: dy, sx: sx, sy: sy}
	return nil
}

// SetLayerPixelMapping activates the pixel mapping render mode with one
// source displacement per screen pixel, deactivating scaling and affine
// transform. The table must hold width*height entries.
func (e *Engine) SetLayerPixelMapping(index int, table []PixelMap) error {
	l, err := e.layerAt(index)
	if err != nil {
		return e.fail(err)
	}
	if len(table) != e.width*e.height {
		return e.fail(ErrWrongSize)
	}
	l.mode = modePixelMap
	l.pixelMap = table
	return nil
}

// ResetLayerMode deactivates scaling, affine transform and pixel mapping,
// returning to the plain blit mode.
func (e *Engine) ResetLayerMode(index int) error {
	l, err := e.layerAt(index)
	if err != nil {
		return e.fail(err)
	}
	l.mode = modePlain
	l.pixelMap = nil
	return nil
}

// SetLayerBlendMode selects how the layer combines with the back buffer.
func (e *Engine) SetLayerBlendMode(index int, mode BlendMode) error {
	l, err := e.layerAt(index)
	if err != nil {
		return e.fail(err)
	}
	if mode < BlendNone || mode >= numBlendModes {
		return e.fail(ErrIndexOutOfRange)
	}
	l.blend = mode
	return nil
}

// SetLayerColumnOffset enables per-column vertical offsets, one entry per
// screen tile column. Pass nil to disable.
func (e *Engine) SetLayerColumnOffset(index int, offsets []int) error {
	l, err := e.layerAt(index)
	if err != nil {
		return e.fail(err)
	}
	l.colOffsets = offsets
	return nil
}

// SetLayerClip enables a clipping rectangle in screen space.
func (e *Engine) SetLayerClip(index, x1, y1, x2, y2 int) error {
	l, err := e.layerAt(index)
	if err != nil {
		return e.fail(err)
	}
	if x1 < 0 || y1 < 0 || x2 <= x1 || y2 <= y1 || x2 > e.width || y2 > e.height {
		return e.fail(ErrWrongSize)
	}
	l.clip = clipRect{x1: x1, y1: y1, x2: x2, y2: y2}
	l.clipEnabled = true
	return nil
}

// DisableLayerClip disables the clipping rectangle.
func (e *Engine) DisableLayerClip(index int) error {
	l, err := e.layerAt(index)
	if err != nil {
		return e.fail(err)
	}
	l.clipEnabled = false
	return nil
}

// SetLayerMosaic enables the mosaic effect with the given block size.
func (e *Engine) SetLayerMosaic(index, w, h int) error {
	l, err := e.layerAt(index)
	if err != nil {
		return e.fail(err)
	}
	if w <= 0 || h <= 0 {
		return e.fail(ErrWrongSize)
	}
	l.mosaicW, l.mosaicH = w, h
	return nil
}

// DisableLayerMosaic disables the mosaic effect.
func (e *Engine) DisableLayerMosaic(index int) error {
	l, err := e.layerAt(index)
	if err != nil {
		return e.fail(err)
	}
	l.mosaicW, l.mosaicH = 0, 0
	return nil
}

// DisableLayer hides the layer without releasing its content.
func (e *Engine) DisableLayer(index int) error {
	l, err := e.layerAt(index)
	if err != nil {
		return e.fail(err)
	}
	l.enabled = false
	return nil
}

// EnableLayer shows a previously disabled layer.
func (e *Engine) EnableLayer(index int) error {
	l, err := e.layerAt(index)
	if err != nil {
		return e.fail(err)
	}
	if l.content == contentNone {
		return e.fail(ErrInvalidReference)
	}
	l.enabled = true
	return nil
}

// SetLayerPriority raises the whole layer in front of regular sprites.
func (e *Engine) SetLayerPriority(index int, enable bool) error {
	l, err := e.layerAt(index)
	if err != nil {
		return e.fail(err)
	}
	l.priority = enable
	return nil
}

// SetLayerParallaxFactor sets the scroll-speed multipliers applied by
// SetWorldPosition.
func (e *Engine) SetLayerParallaxFactor(index int, x, y float32) error {
	l, err := e.layerAt(index)
	if err != nil {
		return e.fail(err)
	}
	l.parallaxX, l.parallaxY = x, y
	return nil
}

// LayerPalette returns the palette the layer resolves pixels with.
func (e *Engine) LayerPalette(index int) (*gfx.Palette, error) {
	l, err := e.layerAt(index)
	if err != nil {
		return nil, e.fail(err)
	}
	if p := l.activePalette(); p != nil {
		return p, nil
	}
	return nil, e.fail(ErrInvalidReference)
}

func (l *layer) activePalette() *gfx.Palette {
	if l.palette != nil {
		return l.palette
	}
	switch l.content {
	case contentTilemap:
		if ts, _ := l.tilemap.Tileset(0); ts != nil {
			return ts.Palette()
		}
	case contentBitmap:
		return l.bitmap.Palette()
	}
	return nil
}

// LayerWidth returns the pixel width of the layer content.
func (e *Engine) LayerWidth(index int) (int, error) {
	l, err := e.layerAt(index)
	if err != nil {
		return 0, e.fail(err)
	}
	return l.width(), nil
}

// LayerHeight returns the pixel height of the layer content.
func (e *Engine) LayerHeight(index int) (int, error) {
	l, err := e.layerAt(index)
	if err != nil {
		return 0, e.fail(err)
	}
	return l.height(), nil
}

// TileInfo describes the tile found at a pixel position inside a tilemap
// layer.
type TileInfo struct {
	Index    uint16
	Flags    uint16
	Row, Col int
	XOffset  int
	YOffset  int
	Color    uint8
	Type     uint8
	Empty    bool
}

// LayerTile looks up detailed info about the tile at pixel position
// (x, y) in tilemap space.
func (e *Engine) LayerTile(index, x, y int) (TileInfo, error) {
	l, err := e.layerAt(index)
	if err != nil {
		return TileInfo{}, e.fail(err)
	}
	if l.content != contentTilemap {
		return TileInfo{}, e.fail(ErrInvalidReference)
	}
	tm := l.tilemap
	w, h := tm.Width(), tm.Height()
	if w == 0 || h == 0 {
		return TileInfo{}, e.fail(ErrInvalidReference)
	}
	x, y = posMod(x, w), posMod(y, h)
	ts, _ := tm.Tileset(0)
	col, row := x/ts.TileWidth(), y/ts.TileHeight()
	px, py := x%ts.TileWidth(), y%ts.TileHeight()
	tile := tm.TileAt(row, col)

	info := TileInfo{
		Index:   tile.Index,
		Flags:   tile.Flags,
		Row:     row,
		Col:     col,
		XOffset: px,
		YOffset: py,
		Empty:   tile.Index == 0,
	}
	if !info.Empty {
		src := tm.TilesetFor(tile)
		if int(tile.Index) <= src.NumTiles() {
			info.Color = src.Pixel(int(tile.Index)-1, px, py)
			if attrs, err := src.Attrs(int(tile.Index) - 1); err == nil {
				info.Type = attrs.Type
			}
		}
	}
	return info, nil
}

// sampleSource maps a screen pixel through the layer's active render mode
// to source content coordinates. Returns false when the pixel maps outside
// a non-repeating source region (affine sampling still wraps, matching the
// repeating playfield behaviour of the plain modes).
func (l *layer) sampleSource(x, line, screenW int) (int, int) {
	if l.mosaicW > 1 {
		x -= x % l.mosaicW
	}
	if l.mosaicH > 1 {
		line -= line % l.mosaicH
	}
	switch l.mode {
	case modeScaling:
		return int(l.x) + int(float32(x)/l.scaleX), int(l.y) + int(float32(line)/l.scaleY)
	case modeAffine:
		rad := l.aff.angle * math32.Pi / 180
		sin, cos := math32.Sincos(rad)
		rx := float32(x) - l.aff.dx
		ry := float32(line) - l.aff.dy
		sx := (rx*cos + ry*sin) / l.aff.sx
		sy := (-rx*sin + ry*cos) / l.aff.sy
		return int(l.x) + int(l.aff.dx+sx), int(l.y) + int(l.aff.dy+sy)
	case modePixelMap:
		pm := l.pixelMap[line*screenW+x]
		return int(l.x) + int(pm.DX), int(l.y) + int(pm.DY)
	default:
		return int(l.x) + x, int(l.y) + line
	}
}

func posMod(v, m int) int {
	v %= m
	if v < 0 {
		v += m
	}
	return v
}
