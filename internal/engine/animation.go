package engine

import "github.com/tilengo/tilengo/internal/gfx"

// spriteAnim drives a frame sequence attached to a sprite slot.
type spriteAnim struct {
	sequence *gfx.Sequence
	loop     int // 0 = forever
	frame    int
	counter  int
	running  bool
	paused   bool
}

// stripState is the per-strip countdown of a running color cycle.
type stripState struct {
	counter int
	elapsed int // blend mode only, ticks into the current rotation
}

// animation is one palette color-cycle slot. In blend mode the slot keeps
// a private clone of the palette (base) holding the discrete cycle state,
// and writes interpolated colors into the visible palette every tick.
type animation struct {
	enabled  bool
	paused   bool
	sequence *gfx.Sequence
	palette  *gfx.Palette // the palette being animated, visible to render
	base     *gfx.Palette // discrete state, blend mode only
	blend    bool
	strips   []stripState
}

func (e *Engine) animationAt(index int) (*animation, error) {
	if index < 0 || index >= len(e.animations) {
		return nil, ErrIndexOutOfRange
	}
	return &e.animations[index], nil
}

// SetPaletteAnimation starts a color-cycle animation on a palette. With
// blend enabled the rotated colors are interpolated every tick instead of
// stepping once per delay period.
func (e *Engine) SetPaletteAnimation(index int, p *gfx.Palette, seq *gfx.Sequence, blend bool) error {
	a, err := e.animationAt(index)
	if err != nil {
		return e.fail(err)
	}
	if p == nil || seq == nil {
		return e.fail(ErrInvalidReference)
	}
	if seq.Kind() != gfx.SequenceCycle {
		return e.fail(ErrInvalidReference)
	}
	if err := checkStrips(seq, p); err != nil {
		return e.fail(err)
	}
	a.enabled = true
	a.paused = false
	a.sequence = seq
	a.palette = p
	a.blend = blend
	a.base = nil
	if blend {
		a.base = p.Clone()
	}
	a.strips = make([]stripState, len(seq.Strips()))
	return nil
}

// checkStrips verifies every strip of a cycle fits inside the palette, so
// a running animation never hits a failing rotation.
func checkStrips(seq *gfx.Sequence, p *gfx.Palette) error {
	for _, strip := range seq.Strips() {
		if strip.Count == 0 || int(strip.First)+int(strip.Count) > p.Len() {
			return ErrIndexOutOfRange
		}
	}
	return nil
}

// SetPaletteAnimationSource swaps the palette an active cycle runs on.
func (e *Engine) SetPaletteAnimationSource(index int, p *gfx.Palette) error {
	a, err := e.animationAt(index)
	if err != nil {
		return e.fail(err)
	}
	if p == nil {
		return e.fail(ErrInvalidReference)
	}
	if !a.enabled {
		return e.fail(ErrInvalidReference)
	}
	if err := checkStrips(a.sequence, p); err != nil {
		return e.fail(err)
	}
	a.palette = p
	if a.blend {
		a.base = p.Clone()
	}
	return nil
}

// DisablePaletteAnimation stops the cycle, leaving the palette in its
// current colors.
func (e *Engine) DisablePaletteAnimation(index int) error {
	a, err := e.animationAt(index)
	if err != nil {
		return e.fail(err)
	}
	*a = animation{}
	return nil
}

// PausePaletteAnimation freezes the cycle without losing its position.
func (e *Engine) PausePaletteAnimation(index int) error {
	a, err := e.animationAt(index)
	if err != nil {
		return e.fail(err)
	}
	a.paused = true
	return nil
}

// ResumePaletteAnimation restarts a paused cycle.
func (e *Engine) ResumePaletteAnimation(index int) error {
	a, err := e.animationAt(index)
	if err != nil {
		return e.fail(err)
	}
	a.paused = false
	return nil
}

// PaletteAnimationActive reports whether the slot is running a cycle.
func (e *Engine) PaletteAnimationActive(index int) (bool, error) {
	a, err := e.animationAt(index)
	if err != nil {
		return false, e.fail(err)
	}
	return a.enabled, nil
}

// AvailableAnimation returns the index of the first idle animation slot,
// or -1 when all are running.
func (e *Engine) AvailableAnimation() int {
	for i := range e.animations {
		if !e.animations[i].enabled {
			return i
		}
	}
	return -1
}

// SetSpriteAnimation attaches a frame sequence to a sprite. loop is the
// number of repetitions, 0 for endless.
func (e *Engine) SetSpriteAnimation(index int, seq *gfx.Sequence, loop int) error {
	s, err := e.spriteAt(index)
	if err != nil {
		return e.fail(err)
	}
	if seq == nil || seq.Kind() != gfx.SequenceFrames || seq.NumFrames() == 0 {
		return e.fail(ErrInvalidReference)
	}
	if err := e.SetSpritePicture(index, seq.Frames()[0].Index); err != nil {
		return err
	}
	s.anim = spriteAnim{sequence: seq, loop: loop, running: true}
	return nil
}

// SpriteAnimationState reports whether the sprite's sequence is still
// running; false once a finite loop count has been exhausted.
func (e *Engine) SpriteAnimationState(index int) (bool, error) {
	s, err := e.spriteAt(index)
	if err != nil {
		return false, e.fail(err)
	}
	return s.anim.sequence != nil && s.anim.running, nil
}

// PauseSpriteAnimation freezes the sprite on its current frame.
func (e *Engine) PauseSpriteAnimation(index int) error {
	s, err := e.spriteAt(index)
	if err != nil {
		return e.fail(err)
	}
	s.anim.paused = true
	return nil
}

// ResumeSpriteAnimation restarts a paused sprite animation.
func (e *Engine) ResumeSpriteAnimation(index int) error {
	s, err := e.spriteAt(index)
	if err != nil {
		return e.fail(err)
	}
	s.anim.paused = false
	return nil
}

// DisableSpriteAnimation detaches the sequence; the sprite keeps showing
// its current picture.
func (e *Engine) DisableSpriteAnimation(index int) error {
	s, err := e.spriteAt(index)
	if err != nil {
		return e.fail(err)
	}
	s.anim = spriteAnim{}
	return nil
}

// stepAnimations advances every running animation by one tick. Called once
// per frame, before the first scanline.
func (e *Engine) stepAnimations() {
	for i := range e.animations {
		a := &e.animations[i]
		if !a.enabled || a.paused {
			continue
		}
		a.step()
	}
	for i := range e.layers {
		e.layers[i].stepTileAnims()
	}
	for i := range e.sprites {
		s := &e.sprites[i]
		if s.anim.sequence == nil || !s.anim.running || s.anim.paused {
			continue
		}
		e.stepSpriteAnim(i)
	}
}

func (a *animation) step() {
	strips := a.sequence.Strips()
	for i := range strips {
		strip := &strips[i]
		if strip.Delay <= 0 {
			continue
		}
		st := &a.strips[i]
		if a.blend {
			a.stepBlend(strip, st)
			continue
		}
		st.counter++
		if st.counter >= strip.Delay {
			st.counter = 0
			a.palette.Rotate(int(strip.First), int(strip.Count), strip.Dir != 0)
		}
	}
}

// stepBlend interpolates the visible palette between the discrete cycle
// position and the next one, committing the rotation when a full delay
// period has elapsed.
func (a *animation) stepBlend(strip *gfx.ColorStrip, st *stripState) {
	first, count := int(strip.First), int(strip.Count)
	st.elapsed++
	if st.elapsed >= strip.Delay {
		st.elapsed = 0
		a.base.Rotate(first, count, strip.Dir != 0)
		a.palette.InterpolateRange(a.base, a.base, first, count, 0, 1)
		return
	}
	next := a.base.Clone()
	next.Rotate(first, count, strip.Dir != 0)
	a.palette.InterpolateRange(a.base, next, first, count, st.elapsed, strip.Delay)
}

// tileAnim drives one tileset animation on a layer: while it runs, cells
// referencing the sequence target show the current frame's tile instead.
type tileAnim struct {
	seq     *gfx.Sequence
	slot    int
	frame   int
	counter int
}

// initTileAnims collects the frame sequences embedded in the tilemap's
// tilesets. Called whenever the layer gets a tilemap assigned.
func (l *layer) initTileAnims() {
	l.tileAnims = nil
	l.tileRemap = nil
	if l.content != contentTilemap {
		return
	}
	for slot := 0; slot < gfx.MaxTilemapTilesets; slot++ {
		ts, _ := l.tilemap.Tileset(slot)
		if ts == nil || ts.Sequences() == nil {
			continue
		}
		pack := ts.Sequences()
		for i := 0; i < pack.Count(); i++ {
			seq, _ := pack.Get(i)
			if seq.Kind() != gfx.SequenceFrames || seq.Target() == 0 {
				continue
			}
			l.tileAnims = append(l.tileAnims, tileAnim{seq: seq, slot: slot})
		}
	}
	if l.tileAnims == nil {
		return
	}
	l.tileRemap = make(map[uint32]uint16)
	for i := range l.tileAnims {
		ta := &l.tileAnims[i]
		l.tileRemap[tileKey(ta.slot, uint16(ta.seq.Target()))] = uint16(ta.seq.Frames()[0].Index)
	}
}

func tileKey(slot int, index uint16) uint32 {
	return uint32(slot)<<16 | uint32(index)
}

// stepTileAnims advances the tileset animations of the layer. Tile
// sequences loop forever.
func (l *layer) stepTileAnims() {
	for i := range l.tileAnims {
		ta := &l.tileAnims[i]
		frames := ta.seq.Frames()
		ta.counter++
		if ta.counter < frames[ta.frame].Delay {
			continue
		}
		ta.counter = 0
		ta.frame = (ta.frame + 1) % len(frames)
		l.tileRemap[tileKey(ta.slot, uint16(ta.seq.Target()))] = uint16(frames[ta.frame].Index)
	}
}

func (e *Engine) stepSpriteAnim(index int) {
	s := &e.sprites[index]
	frames := s.anim.sequence.Frames()
	s.anim.counter++
	if s.anim.counter < frames[s.anim.frame].Delay {
		return
	}
	s.anim.counter = 0
	s.anim.frame++
	if s.anim.frame >= len(frames) {
		s.anim.frame = 0
		if s.anim.loop > 0 {
			s.anim.loop--
			if s.anim.loop == 0 {
				s.anim.running = false
				return
			}
		}
	}
	if err := e.SetSpritePicture(index, frames[s.anim.frame].Index); err != nil {
		e.log.Errorf("sprite %d: animation frame %d out of range", index, frames[s.anim.frame].Index)
	}
}
