package engine

import "github.com/tilengo/tilengo/internal/gfx"

// sprite is the render state of one sprite slot. Paint order is an
// explicit singly linked list through next, rooted at Engine.firstSprite;
// the first sprite in the chain is drawn bottom-most.
type sprite struct {
	spriteset *gfx.Spriteset
	picture   int
	x, y      int

	// world-space placement; while inWorld is set the screen position is
	// re-resolved on every SetWorldPosition call
	worldX, worldY int
	inWorld        bool

	pivotU  float32
	pivotV  float32
	scaleX  float32
	scaleY  float32
	scaling bool
	flags   uint16
	blend   BlendMode
	palette *gfx.Palette // optional override

	collision   bool
	collided    bool // result of the last completed frame
	collidedNow bool // working value for the frame in progress

	enabled bool
	next    int

	anim spriteAnim
}

func (e *Engine) spriteAt(index int) (*sprite, error) {
	if index < 0 || index >= len(e.sprites) {
		return nil, ErrIndexOutOfRange
	}
	return &e.sprites[index], nil
}

// ConfigSprite enables a sprite with a spriteset and flags in one call.
func (e *Engine) ConfigSprite(index int, ss *gfx.Spriteset, flags uint16) error {
	if err := e.SetSpriteSet(index, ss); err != nil {
		return err
	}
	return e.SetSpriteFlags(index, flags)
}

// SetSpriteSet enables a sprite by assigning its graphic data.
func (e *Engine) SetSpriteSet(index int, ss *gfx.Spriteset) error {
	s, err := e.spriteAt(index)
	if err != nil {
		return e.fail(err)
	}
	if ss == nil || ss.Palette() == nil {
		return e.fail(ErrInvalidReference)
	}
	s.spriteset = ss
	if s.picture >= ss.NumPictures() {
		s.picture = 0
	}
	s.enabled = true
	return nil
}

// SetSpriteFlags replaces the sprite's flip/priority/mask flags.
func (e *Engine) SetSpriteFlags(index int, flags uint16) error {
	s, err := e.spriteAt(index)
	if err != nil {
		return e.fail(err)
	}
	s.flags = flags
	return nil
}

// EnableSpriteFlag sets or clears individual flags.
func (e *Engine) EnableSpriteFlag(index int, flag uint16, on bool) error {
	s, err := e.spriteAt(index)
	if err != nil {
		return e.fail(err)
	}
	if on {
		s.flags |= flag
	} else {
		s.flags &^= flag
	}
	return nil
}

// SetSpritePivot sets the normalized anchor point used as the origin for
// position and scaling. (0,0) is the top left corner, (1,1) the bottom
// right.
func (e *Engine) SetSpritePivot(index int, u, v float32) error {
	s, err := e.spriteAt(index)
	if err != nil {
		return e.fail(err)
	}
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return e.fail(ErrWrongSize)
	}
	s.pivotU, s.pivotV = u, v
	return nil
}

// SetSpritePosition places the sprite pivot at screen coordinates (x, y),
// detaching it from world space.
func (e *Engine) SetSpritePosition(index, x, y int) error {
	s, err := e.spriteAt(index)
	if err != nil {
		return e.fail(err)
	}
	s.x, s.y = x, y
	s.inWorld = false
	return nil
}

// SetSpriteWorldPosition places the sprite pivot in world space; the
// screen position keeps tracking the world position set on the engine.
func (e *Engine) SetSpriteWorldPosition(index, x, y int) error {
	s, err := e.spriteAt(index)
	if err != nil {
		return e.fail(err)
	}
	s.worldX, s.worldY = x, y
	s.inWorld = true
	s.x = x - int(e.worldX)
	s.y = y - int(e.worldY)
	return nil
}

// SetSpritePicture selects the picture of the assigned spriteset shown by
// the sprite.
func (e *Engine) SetSpritePicture(index, picture int) error {
	s, err := e.spriteAt(index)
	if err != nil {
		return e.fail(err)
	}
	if s.spriteset == nil {
		return e.fail(ErrInvalidReference)
	}
	if picture < 0 || picture >= s.spriteset.NumPictures() {
		return e.fail(ErrIndexOutOfRange)
	}
	s.picture = picture
	return nil
}

// SpritePicture returns the picture index currently shown.
func (e *Engine) SpritePicture(index int) (int, error) {
	s, err := e.spriteAt(index)
	if err != nil {
		return 0, e.fail(err)
	}
	return s.picture, nil
}

// SetSpritePalette overrides the palette used to resolve sprite pixels.
func (e *Engine) SetSpritePalette(index int, p *gfx.Palette) error {
	s, err := e.spriteAt(index)
	if err != nil {
		return e.fail(err)
	}
	if p == nil {
		return e.fail(ErrInvalidReference)
	}
	s.palette = p
	return nil
}

// SpritePalette returns the palette the sprite resolves pixels with.
func (e *Engine) SpritePalette(index int) (*gfx.Palette, error) {
	s, err := e.spriteAt(index)
	if err != nil {
		return nil, e.fail(err)
	}
	if s.palette != nil {
		return s.palette, nil
	}
	if s.spriteset != nil {
		return s.spriteset.Palette(), nil
	}
	return nil, e.fail(ErrInvalidReference)
}

// SetSpriteBlendMode selects how the sprite combines with the back buffer.
func (e *Engine) SetSpriteBlendMode(index int, mode BlendMode) error {
	s, err := e.spriteAt(index)
	if err != nil {
		return e.fail(err)
	}
	if mode < BlendNone || mode >= numBlendModes {
		return e.fail(ErrIndexOutOfRange)
	}
	s.blend = mode
	return nil
}

// SetSpriteScaling enables sprite scaling.
func (e *Engine) SetSpriteScaling(index int, sx, sy float32) error {
	s, err := e.spriteAt(index)
	if err != nil {
		return e.fail(err)
	}
	if sx <= 0 || sy <= 0 {
		return e.fail(ErrWrongSize)
	}
	s.scaleX, s.scaleY = sx, sy
	s.scaling = true
	return nil
}

// ResetSpriteScaling disables sprite scaling.
func (e *Engine) ResetSpriteScaling(index int) error {
	s, err := e.spriteAt(index)
	if err != nil {
		return e.fail(err)
	}
	s.scaling = false
	return nil
}

// AvailableSprite returns the index of the first unused sprite slot, or -1
// when all are taken.
func (e *Engine) AvailableSprite() int {
	for i := range e.sprites {
		if !e.sprites[i].enabled && e.sprites[i].spriteset == nil {
			return i
		}
	}
	return -1
}

// EnableSpriteCollision switches pixel-accurate collision detection for
// the sprite.
func (e *Engine) EnableSpriteCollision(index int, on bool) error {
	s, err := e.spriteAt(index)
	if err != nil {
		return e.fail(err)
	}
	s.collision = on
	if !on {
		s.collided, s.collidedNow = false, false
	}
	return nil
}

// SpriteCollision reports whether the sprite overlapped another
// collision-enabled sprite during the most recently completed frame.
func (e *Engine) SpriteCollision(index int) (bool, error) {
	s, err := e.spriteAt(index)
	if err != nil {
		return false, e.fail(err)
	}
	return s.collided, nil
}

// DisableSprite hides the sprite.
func (e *Engine) DisableSprite(index int) error {
	s, err := e.spriteAt(index)
	if err != nil {
		return e.fail(err)
	}
	s.enabled = false
	return nil
}

// SetFirstSprite designates the head of the paint chain; the first sprite
// is drawn bottom-most.
func (e *Engine) SetFirstSprite(index int) error {
	if _, err := e.spriteAt(index); err != nil {
		return e.fail(err)
	}
	e.firstSprite = index
	return nil
}

// SetNextSprite links next to be drawn right after index.
func (e *Engine) SetNextSprite(index, next int) error {
	s, err := e.spriteAt(index)
	if err != nil {
		return e.fail(err)
	}
	if next != -1 {
		if _, err := e.spriteAt(next); err != nil {
			return e.fail(err)
		}
	}
	s.next = next
	return nil
}

// EnableSpriteMasking excludes the sprite from the scanline region set
// with SetSpritesMaskRegion.
func (e *Engine) EnableSpriteMasking(index int, on bool) error {
	return e.EnableSpriteFlag(index, gfx.FlagMasked, on)
}

// SpriteState is a snapshot of one sprite slot.
type SpriteState struct {
	X, Y      int
	W, H      int
	Flags     uint16
	Palette   *gfx.Palette
	Spriteset *gfx.Spriteset
	Index     int
	Enabled   bool
	Collision bool
}

// SpriteState returns runtime info about the sprite.
func (e *Engine) SpriteState(index int) (SpriteState, error) {
	s, err := e.spriteAt(index)
	if err != nil {
		return SpriteState{}, e.fail(err)
	}
	st := SpriteState{
		X:         s.x,
		Y:         s.y,
		Flags:     s.flags,
		Spriteset: s.spriteset,
		Index:     s.picture,
		Enabled:   s.enabled,
		Collision: s.collision,
	}
	if s.spriteset != nil {
		st.Palette = s.spriteset.Palette()
		if entry, err := s.spriteset.Entry(s.picture); err == nil {
			st.W, st.H = entry.W, entry.H
			if s.scaling {
				st.W = int(float32(st.W) * s.scaleX)
				st.H = int(float32(st.H) * s.scaleY)
			}
		}
	}
	if s.palette != nil {
		st.Palette = s.palette
	}
	return st, nil
}
