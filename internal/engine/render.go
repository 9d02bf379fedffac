package engine

import "github.com/tilengo/tilengo/internal/gfx"

// SetRenderTarget points the engine at a caller-owned 32bpp RGBA buffer.
// pitch is in bytes; the buffer must hold pitch*height bytes.
func (e *Engine) SetRenderTarget(buf []uint8, pitch int) error {
	if buf == nil {
		return e.fail(ErrInvalidReference)
	}
	if pitch < e.width*4 || len(buf) < pitch*e.height {
		return e.fail(ErrWrongSize)
	}
	e.target = buf
	e.pitch = pitch
	return nil
}

// UpdateFrame renders one complete frame into the target buffer: advances
// every running animation one tick, then composites each scanline in turn,
// invoking the raster callback before every line and the frame callback
// after the last one. Sprite collision results become observable once
// UpdateFrame returns.
func (e *Engine) UpdateFrame(frame int) error {
	if e.target == nil {
		return e.fail(ErrInvalidReference)
	}
	e.stepAnimations()
	for i := range e.sprites {
		e.sprites[i].collidedNow = false
	}
	for line := 0; line < e.height; line++ {
		if e.rasterCB != nil {
			e.rasterCB(line)
		}
		e.renderScanline(line)
	}
	for i := range e.sprites {
		s := &e.sprites[i]
		s.collided = s.collidedNow
	}
	if e.frameCB != nil {
		e.frameCB(frame)
	}
	return nil
}

func (e *Engine) renderScanline(line int) {
	row := e.target[line*e.pitch : line*e.pitch+e.width*4]

	for x := 0; x < e.width; x++ {
		e.priSet[x] = false
		e.spriteOwner[x] = -1
	}

	e.paintBackground(line, row)

	// layers paint back to front: the highest index is the deepest plane
	for i := len(e.layers) - 1; i >= 0; i-- {
		e.paintLayerLine(&e.layers[i], line, row)
	}

	e.paintSpritesLine(line, row)

	// tiles flagged with priority were deferred; they end up in front of
	// regular sprites
	for x := 0; x < e.width; x++ {
		if e.priSet[x] {
			e.put(row, x, e.priColor[x], e.priBlend[x])
		}
	}
}

func (e *Engine) paintBackground(line int, row []uint8) {
	covered := 0
	if bm := e.bgBitmap; bm != nil {
		pal := e.bgPalette
		if pal == nil {
			pal = bm.Palette()
		}
		if pal != nil && line < bm.Height() {
			covered = bm.Width()
			if covered > e.width {
				covered = e.width
			}
			src := bm.Row(line)
			for x := 0; x < covered; x++ {
				e.put(row, x, pal.ColorAt(src[x]), BlendNone)
			}
		}
	}
	if !e.bgEnabled {
		return
	}
	for x := covered; x < e.width; x++ {
		e.put(row, x, e.bgColor, BlendNone)
	}
}

func (e *Engine) paintLayerLine(l *layer, line int, row []uint8) {
	if !l.enabled {
		return
	}
	x0, x1 := 0, e.width
	if l.clipEnabled {
		if line < l.clip.y1 || line >= l.clip.y2 {
			return
		}
		x0, x1 = l.clip.x1, l.clip.x2
	}
	pal := l.activePalette()
	if pal == nil {
		return
	}
	switch l.content {
	case contentTilemap:
		e.paintTilemapLine(l, pal, line, row, x0, x1)
	case contentBitmap:
		e.paintBitmapLine(l, pal, line, row, x0, x1)
	}
}

func (e *Engine) paintTilemapLine(l *layer, pal *gfx.Palette, line int, row []uint8, x0, x1 int) {
	tm := l.tilemap
	w, h := tm.Width(), tm.Height()
	if w == 0 || h == 0 {
		return
	}
	ts0, _ := tm.Tileset(0)
	tileW, tileH := ts0.TileWidth(), ts0.TileHeight()

	for x := x0; x < x1; x++ {
		sx, sy := l.sampleSource(x, line, e.width)
		if l.colOffsets != nil {
			sy += l.colOffsets[(x/tileW)%len(l.colOffsets)]
		}
		sx, sy = posMod(sx, w), posMod(sy, h)

		tile := tm.TileAt(sy/tileH, sx/tileW)
		if tile.Index == 0 {
			continue
		}
		if l.tileRemap != nil {
			if idx, ok := l.tileRemap[tileKey(tile.TilesetSlot(), tile.Index)]; ok {
				tile.Index = idx
			}
		}
		src := tm.TilesetFor(tile)
		entry := int(tile.Index) - 1
		if entry >= src.NumTiles() {
			continue
		}
		px, py := sx%tileW, sy%tileH
		if tile.Flags&gfx.FlagRotate != 0 {
			px, py = py, px
		}
		if tile.Flags&gfx.FlagFlipX != 0 {
			px = tileW - 1 - px
		}
		if tile.Flags&gfx.FlagFlipY != 0 {
			py = tileH - 1 - py
		}
		ci := src.Pixel(entry, px, py)
		if ci == 0 {
			continue
		}
		c := pal.ColorAt(ci)
		pri := l.priority || tile.Flags&gfx.FlagPriority != 0
		if !pri {
			if attrs, err := src.Attrs(entry); err == nil {
				pri = attrs.Priority
			}
		}
		if pri {
			e.priColor[x] = c
			e.priBlend[x] = l.blend
			e.priSet[x] = true
			continue
		}
		e.put(row, x, c, l.blend)
	}
}

func (e *Engine) paintBitmapLine(l *layer, pal *gfx.Palette, line int, row []uint8, x0, x1 int) {
	bm := l.bitmap
	w, h := bm.Width(), bm.Height()
	for x := x0; x < x1; x++ {
		sx, sy := l.sampleSource(x, line, e.width)
		sx, sy = posMod(sx, w), posMod(sy, h)
		ci := bm.PixelAt(sx, sy)
		if ci == 0 {
			continue
		}
		c := pal.ColorAt(ci)
		if l.priority {
			e.priColor[x] = c
			e.priBlend[x] = l.blend
			e.priSet[x] = true
			continue
		}
		e.put(row, x, c, l.blend)
	}
}

func (e *Engine) paintSpritesLine(line int, row []uint8) {
	masked := line >= e.maskTop && line < e.maskBottom
	for i := e.firstSprite; i != -1; i = e.sprites[i].next {
		s := &e.sprites[i]
		if !s.enabled || s.spriteset == nil {
			continue
		}
		if masked && s.flags&gfx.FlagMasked != 0 {
			continue
		}
		e.paintSpriteLine(int16(i), s, line, row)
	}
}

func (e *Engine) paintSpriteLine(id int16, s *sprite, line int, row []uint8) {
	entry, err := s.spriteset.Entry(s.picture)
	if err != nil {
		return
	}
	sw, sh := entry.W, entry.H
	dw, dh := sw, sh
	if s.scaling {
		dw = int(float32(sw) * s.scaleX)
		dh = int(float32(sh) * s.scaleY)
	}
	if dw <= 0 || dh <= 0 {
		return
	}
	x0 := s.x - int(s.pivotU*float32(dw))
	y0 := s.y - int(s.pivotV*float32(dh))
	dy := line - y0
	if dy < 0 || dy >= dh {
		return
	}
	sy := dy * sh / dh
	if s.flags&gfx.FlagFlipY != 0 {
		sy = sh - 1 - sy
	}

	pal := s.palette
	if pal == nil {
		pal = s.spriteset.Palette()
	}
	if pal == nil {
		return
	}

	for dx := 0; dx < dw; dx++ {
		x := x0 + dx
		if x < 0 || x >= e.width {
			continue
		}
		sx := dx * sw / dw
		if s.flags&gfx.FlagFlipX != 0 {
			sx = sw - 1 - sx
		}
		ci := s.spriteset.Pixel(s.picture, sx, sy)
		if ci == 0 {
			continue
		}
		if s.collision {
			if other := e.spriteOwner[x]; other != -1 {
				s.collidedNow = true
				e.sprites[other].collidedNow = true
			}
			e.spriteOwner[x] = id
		}
		c := pal.ColorAt(ci)
		if s.flags&gfx.FlagPriority != 0 {
			e.priColor[x] = c
			e.priBlend[x] = s.blend
			e.priSet[x] = true
			continue
		}
		e.put(row, x, c, s.blend)
	}
}

// put writes one pixel into the row, combining with the existing value
// when a blend mode is active. Output byte order is R, G, B, A.
func (e *Engine) put(row []uint8, x int, c gfx.Color, mode BlendMode) {
	off := x * 4
	if mode != BlendNone {
		if t := e.table(mode); t != nil {
			row[off+0] = t[uint16(c[0])<<8|uint16(row[off+0])]
			row[off+1] = t[uint16(c[1])<<8|uint16(row[off+1])]
			row[off+2] = t[uint16(c[2])<<8|uint16(row[off+2])]
			row[off+3] = 0xff
			return
		}
	}
	row[off+0] = c[0]
	row[off+1] = c[1]
	row[off+2] = c[2]
	row[off+3] = 0xff
}
