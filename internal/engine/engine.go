// Package engine implements a scanline raster engine in the style of
// classic tile-based video hardware: background layers fed by tilemaps or
// bitmaps, a sprite plane with explicit z-ordering, palette color-cycle
// animation and a frame scheduler that invokes user callbacks between
// scanlines for raster effects.
package engine

import (
	"github.com/tilengo/tilengo/internal/gfx"
	"github.com/tilengo/tilengo/pkg/log"
)

// Engine is the context bundling every render resource: the layer, sprite
// and animation slot arrays, the configured resolution, callbacks and the
// render target. There is no hidden process-wide state; create one with
// New and release it with Close.
type Engine struct {
	width, height int

	layers     []layer
	sprites    []sprite
	animations []animation

	bgColor   gfx.Color
	bgEnabled bool
	bgBitmap  *gfx.Bitmap
	bgPalette *gfx.Palette

	target []uint8
	pitch  int

	rasterCB func(line int)
	frameCB  func(frame int)

	blendTables [numBlendModes]*blendTable
	customBlend BlendFunc

	maskTop, maskBottom int
	worldX, worldY      float64

	firstSprite int

	lastErr error
	log     log.Logger

	// per-scanline scratch, allocated once
	priColor    []gfx.Color
	priBlend    []BlendMode
	priSet      []bool
	spriteOwner []int16
}

// Opt configures an Engine during New.
type Opt func(*Engine)

// WithLogger installs a logger; the default discards everything.
func WithLogger(l log.Logger) Opt {
	return func(e *Engine) {
		e.log = l
	}
}

// WithBGColor presets the background color.
func WithBGColor(r, g, b uint8) Opt {
	return func(e *Engine) {
		e.bgColor = gfx.RGB(r, g, b)
	}
}

// New creates an engine with the given resolution and slot counts. Any of
// the slot counts may be zero.
func New(width, height, numLayers, numSprites, numAnimations int, opts ...Opt) (*Engine, error) {
	if width <= 0 || height <= 0 || numLayers < 0 || numSprites < 0 || numAnimations < 0 {
		return nil, ErrWrongSize
	}
	e := &Engine{
		width:      width,
		height:     height,
		layers:     make([]layer, numLayers),
		sprites:    make([]sprite, numSprites),
		animations: make([]animation, numAnimations),
		bgEnabled:  true,
		log:        log.NewNullLogger(),

		priColor:    make([]gfx.Color, width),
		priBlend:    make([]BlendMode, width),
		priSet:      make([]bool, width),
		spriteOwner: make([]int16, width),
	}
	// default paint order follows slot order until the caller rebuilds
	// the chain with SetFirstSprite/SetNextSprite
	e.firstSprite = -1
	if numSprites > 0 {
		e.firstSprite = 0
		for i := range e.sprites {
			e.sprites[i].next = i + 1
		}
		e.sprites[numSprites-1].next = -1
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log.Debugf("engine created %dx%d, %d layers, %d sprites, %d animations",
		width, height, numLayers, numSprites, numAnimations)
	return e, nil
}

func (e *Engine) Width() int  { return e.width }
func (e *Engine) Height() int { return e.height }

func (e *Engine) NumLayers() int     { return len(e.layers) }
func (e *Engine) NumSprites() int    { return len(e.sprites) }
func (e *Engine) NumAnimations() int { return len(e.animations) }

// SetLogLevel swaps the engine logger for a level-filtered one.
func (e *Engine) SetLogLevel(level log.Level) {
	e.log = log.NewLeveled(level)
}

// SetBGColor sets the solid color rendered beneath all layers.
func (e *Engine) SetBGColor(r, g, b uint8) {
	e.bgColor = gfx.RGB(r, g, b)
	e.bgEnabled = true
}

// SetBGColorFromTilemap assigns the background color carried inside a
// loaded tilemap.
func (e *Engine) SetBGColorFromTilemap(tm *gfx.Tilemap) error {
	if tm == nil {
		return e.fail(ErrInvalidReference)
	}
	c, ok := tm.BGColor()
	if !ok {
		return e.fail(ErrInvalidReference)
	}
	e.bgColor = c
	e.bgEnabled = true
	return nil
}

// DisableBGColor turns off background color rendering; the back buffer is
// left untouched where nothing else draws.
func (e *Engine) DisableBGColor() {
	e.bgEnabled = false
}

// SetBGBitmap sets a static full-screen bitmap drawn beneath all layers,
// or disables it with nil.
func (e *Engine) SetBGBitmap(bm *gfx.Bitmap) error {
	e.bgBitmap = bm
	return nil
}

// SetBGPalette overrides the palette used by the background bitmap.
func (e *Engine) SetBGPalette(p *gfx.Palette) error {
	if p == nil {
		return e.fail(ErrInvalidReference)
	}
	e.bgPalette = p
	return nil
}

// SetRasterCallback registers fn to be called once per scanline, before
// the line is composited. Any layer, sprite, palette or animation state
// mutated from the callback affects the remaining scanlines only. Set nil
// to disable.
func (e *Engine) SetRasterCallback(fn func(line int)) {
	e.rasterCB = fn
}

// SetFrameCallback registers fn to be called once per frame, after the
// last scanline. Set nil to disable.
func (e *Engine) SetFrameCallback(fn func(frame int)) {
	e.frameCB = fn
}

// SetSpritesMaskRegion defines the scanline range [top, bottom) in which
// sprites with masking enabled are not drawn. Equal values disable the
// region.
func (e *Engine) SetSpritesMaskRegion(top, bottom int) error {
	if top < 0 || bottom < top || bottom > e.height {
		return e.fail(ErrWrongSize)
	}
	e.maskTop, e.maskBottom = top, bottom
	return nil
}

// SetWorldPosition moves every enabled layer according to its parallax
// factor and re-resolves world-placed sprites, keeping them in sync
// against a shared world coordinate.
func (e *Engine) SetWorldPosition(x, y float64) {
	e.worldX, e.worldY = x, y
	for i := range e.layers {
		l := &e.layers[i]
		if l.content == contentNone {
			continue
		}
		l.setPosition(x*float64(l.parallaxX), y*float64(l.parallaxY))
	}
	for i := range e.sprites {
		s := &e.sprites[i]
		if !s.inWorld {
			continue
		}
		s.x = s.worldX - int(x)
		s.y = s.worldY - int(y)
	}
}

// SetWorld assigns every layer of a loaded world map to consecutive layer
// slots starting at first, applying the parallax factors carried by the
// map file. Scroll the whole set with SetWorldPosition.
func (e *Engine) SetWorld(first int, w *gfx.World) error {
	if w == nil {
		return e.fail(ErrInvalidReference)
	}
	if first < 0 || first+len(w.Layers) > len(e.layers) {
		return e.fail(ErrIndexOutOfRange)
	}
	for i, wl := range w.Layers {
		index := first + i
		switch {
		case wl.Tilemap != nil:
			if err := e.SetLayerTilemap(index, wl.Tilemap); err != nil {
				return err
			}
		case wl.Objects != nil:
			if err := e.SetLayerObjects(index, wl.Objects); err != nil {
				return err
			}
		default:
			return e.fail(ErrInvalidReference)
		}
		if err := e.SetLayerParallaxFactor(index, wl.ParallaxX, wl.ParallaxY); err != nil {
			return err
		}
	}
	e.log.Debugf("world assigned to layers %d..%d", first, first+len(w.Layers)-1)
	return nil
}

// ReleaseWorld clears a run of layer slots previously filled by SetWorld.
func (e *Engine) ReleaseWorld(first, count int) error {
	if first < 0 || count < 0 || first+count > len(e.layers) {
		return e.fail(ErrIndexOutOfRange)
	}
	for i := first; i < first+count; i++ {
		e.layers[i] = layer{}
	}
	return nil
}

// Close releases every slot and drops all registered resources. The engine
// must not be used afterwards.
func (e *Engine) Close() {
	for i := range e.layers {
		e.layers[i] = layer{}
	}
	for i := range e.sprites {
		e.sprites[i] = sprite{next: -1}
	}
	for i := range e.animations {
		e.animations[i] = animation{}
	}
	e.bgBitmap, e.bgPalette = nil, nil
	e.target = nil
	e.rasterCB, e.frameCB, e.customBlend = nil, nil, nil
	for i := range e.blendTables {
		e.blendTables[i] = nil
	}
	e.log.Debugf("engine closed")
}

// NumObjects counts the distinct graphic assets currently referenced by
// the engine slots.
func (e *Engine) NumObjects() int {
	n, _ := e.walkAssets()
	return n
}

// UsedMemory reports the approximate memory held by referenced assets,
// in bytes.
func (e *Engine) UsedMemory() int {
	_, mem := e.walkAssets()
	return mem
}

func (e *Engine) walkAssets() (int, int) {
	seen := make(map[interface{}]int)
	add := func(obj interface{}, size int) {
		if obj == nil {
			return
		}
		if _, ok := seen[obj]; !ok {
			seen[obj] = size
		}
	}
	addPalette := func(p *gfx.Palette) {
		if p != nil {
			add(p, p.Len()*3)
		}
	}
	addTileset := func(ts *gfx.Tileset) {
		if ts == nil {
			return
		}
		add(ts, ts.UsedMemory())
		addPalette(ts.Palette())
		if sp := ts.Sequences(); sp != nil {
			add(sp, sp.Count()*16)
		}
	}
	for i := range e.layers {
		l := &e.layers[i]
		if l.tilemap != nil {
			add(l.tilemap, l.tilemap.UsedMemory())
			for slot := 0; slot < gfx.MaxTilemapTilesets; slot++ {
				ts, _ := l.tilemap.Tileset(slot)
				addTileset(ts)
			}
		}
		if l.bitmap != nil {
			add(l.bitmap, l.bitmap.UsedMemory())
			addPalette(l.bitmap.Palette())
		}
		addPalette(l.palette)
	}
	for i := range e.sprites {
		s := &e.sprites[i]
		if s.spriteset != nil {
			add(s.spriteset, s.spriteset.UsedMemory())
			addPalette(s.spriteset.Palette())
		}
		addPalette(s.palette)
		if s.anim.sequence != nil {
			add(s.anim.sequence, s.anim.sequence.NumFrames()*8)
		}
	}
	for i := range e.animations {
		a := &e.animations[i]
		if a.enabled {
			addPalette(a.palette)
			addPalette(a.base)
			if a.sequence != nil {
				add(a.sequence, a.sequence.NumFrames()*8)
			}
		}
	}
	if e.bgBitmap != nil {
		add(e.bgBitmap, e.bgBitmap.UsedMemory())
		addPalette(e.bgBitmap.Palette())
	}
	addPalette(e.bgPalette)

	count, mem := 0, 0
	for _, size := range seen {
		count++
		mem += size
	}
	return count, mem
}
