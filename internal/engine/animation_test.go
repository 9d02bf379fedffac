package engine

import (
	"errors"
	"testing"

	"github.com/tilengo/tilengo/internal/gfx"
)

// twoFrameSpriteset builds pictures "f1" and "f2" over a shared atlas.
func twoFrameSpriteset(t *testing.T) *gfx.Spriteset {
	t.Helper()
	bm, _ := gfx.NewBitmap(16, 8)
	pal, _ := gfx.NewPalette(16)
	bm.SetPalette(pal)
	ss, err := gfx.NewSpriteset(bm, []gfx.SpriteEntry{
		{Name: "f1", X: 0, W: 8, H: 8},
		{Name: "f2", X: 8, W: 8, H: 8},
	})
	if err != nil {
		t.Fatal(err)
	}
	return ss
}

func TestSpriteAnimationTerminates(t *testing.T) {
	e := testEngine(t)
	testTarget(t, e)

	ss := twoFrameSpriteset(t)
	if err := e.SetSpriteSet(0, ss); err != nil {
		t.Fatal(err)
	}
	seq, err := gfx.NewSpriteSequence("walk", ss, "f", 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.SetSpriteAnimation(0, seq, 1); err != nil {
		t.Fatal(err)
	}

	// two frames of two ticks each, one loop: done after exactly 4 ticks
	for tick := 1; tick <= 4; tick++ {
		running, err := e.SpriteAnimationState(0)
		if err != nil {
			t.Fatal(err)
		}
		if !running {
			t.Fatalf("finished early, at tick %d", tick)
		}
		e.UpdateFrame(tick)
	}
	running, _ := e.SpriteAnimationState(0)
	if running {
		t.Error("state should report false after 4 ticks")
	}

	// a finished animation stops advancing the picture
	pic, _ := e.SpritePicture(0)
	e.UpdateFrame(5)
	if got, _ := e.SpritePicture(0); got != pic {
		t.Error("finished animation must not advance")
	}
}

func TestSpriteAnimationLoopsForever(t *testing.T) {
	e := testEngine(t)
	testTarget(t, e)

	ss := twoFrameSpriteset(t)
	e.SetSpriteSet(0, ss)
	seq, _ := gfx.NewSpriteSequence("walk", ss, "f", 1)
	if err := e.SetSpriteAnimation(0, seq, 0); err != nil {
		t.Fatal(err)
	}
	for tick := 0; tick < 10; tick++ {
		e.UpdateFrame(tick)
	}
	if running, _ := e.SpriteAnimationState(0); !running {
		t.Error("loop 0 must never finish")
	}
}

func TestSpriteAnimationPause(t *testing.T) {
	e := testEngine(t)
	testTarget(t, e)

	ss := twoFrameSpriteset(t)
	e.SetSpriteSet(0, ss)
	seq, _ := gfx.NewSpriteSequence("walk", ss, "f", 1)
	e.SetSpriteAnimation(0, seq, 0)

	if err := e.PauseSpriteAnimation(0); err != nil {
		t.Fatal(err)
	}
	pic, _ := e.SpritePicture(0)
	e.UpdateFrame(0)
	if got, _ := e.SpritePicture(0); got != pic {
		t.Error("paused animation must not advance")
	}
	if err := e.ResumeSpriteAnimation(0); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(1)
	if got, _ := e.SpritePicture(0); got == pic {
		t.Error("resumed animation should advance")
	}
}

func TestPaletteAnimationClassic(t *testing.T) {
	e := testEngine(t)
	testTarget(t, e)

	pal, _ := gfx.NewPalette(4)
	for i := 0; i < 4; i++ {
		pal.SetColor(i, gfx.RGB(uint8(i*10), 0, 0))
	}
	cycle, _ := gfx.NewCycle("c", []gfx.ColorStrip{{Delay: 2, First: 0, Count: 4, Dir: 1}})
	if err := e.SetPaletteAnimation(0, pal, cycle, false); err != nil {
		t.Fatal(err)
	}

	// nothing happens until the delay elapses
	e.UpdateFrame(0)
	if c, _ := pal.Color(0); c != gfx.RGB(0, 0, 0) {
		t.Errorf("tick 1: got %v", c)
	}
	e.UpdateFrame(1)
	if c, _ := pal.Color(0); c != gfx.RGB(30, 0, 0) {
		t.Errorf("tick 2 should rotate: got %v", c)
	}
}

func TestPaletteAnimationBlendMidpoint(t *testing.T) {
	e := testEngine(t)
	testTarget(t, e)

	pal, _ := gfx.NewPalette(2)
	pal.SetColor(0, gfx.RGB(0, 0, 0))
	pal.SetColor(1, gfx.RGB(100, 0, 0))
	cycle, _ := gfx.NewCycle("c", []gfx.ColorStrip{{Delay: 2, First: 0, Count: 2, Dir: 1}})
	if err := e.SetPaletteAnimation(0, pal, cycle, true); err != nil {
		t.Fatal(err)
	}

	// halfway through the delay each entry shows the mean of its current
	// and next color
	e.UpdateFrame(0)
	if c, _ := pal.Color(0); c != gfx.RGB(50, 0, 0) {
		t.Errorf("midpoint: got %v", c)
	}
	e.UpdateFrame(1)
	if c, _ := pal.Color(0); c != gfx.RGB(100, 0, 0) {
		t.Errorf("full rotation: got %v", c)
	}
}

func TestPaletteAnimationValidation(t *testing.T) {
	e := testEngine(t)
	pal, _ := gfx.NewPalette(4)
	frames, _ := gfx.NewSequence("f", 0, []gfx.SequenceFrame{{Index: 0, Delay: 1}})
	if err := e.SetPaletteAnimation(0, pal, frames, false); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("frame sequence is not a cycle: got %v", err)
	}
	cycle, _ := gfx.NewCycle("c", []gfx.ColorStrip{{Delay: 1, First: 0, Count: 2, Dir: 1}})
	if err := e.SetPaletteAnimation(5, pal, cycle, false); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("slot out of range: got %v", err)
	}
	wide, _ := gfx.NewCycle("w", []gfx.ColorStrip{{Delay: 1, First: 2, Count: 4, Dir: 1}})
	if err := e.SetPaletteAnimation(0, pal, wide, false); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("strip past the palette end: got %v", err)
	}
	if active, _ := e.PaletteAnimationActive(0); active {
		t.Error("failed call must leave the slot idle")
	}
}

func TestTilemapTileAnimation(t *testing.T) {
	e := testEngine(t)
	buf := testTarget(t, e)

	pal, _ := gfx.NewPalette(16)
	pal.SetColor(1, gfx.RGB(255, 0, 0))
	pal.SetColor(2, gfx.RGB(0, 0, 255))
	seq, err := gfx.NewSequence("tile0", 1, []gfx.SequenceFrame{
		{Index: 1, Delay: 1},
		{Index: 2, Delay: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	pack := gfx.NewSequencePack()
	pack.Add(seq)
	ts, err := gfx.NewTileset(2, 8, 8, pal, pack, nil)
	if err != nil {
		t.Fatal(err)
	}
	pixels := make([]uint8, 8*8)
	for i := range pixels {
		pixels[i] = 1
	}
	ts.SetPixels(0, pixels, 8)
	for i := range pixels {
		pixels[i] = 2
	}
	ts.SetPixels(1, pixels, 8)
	tm, _ := gfx.NewTilemap(testH/8, testW/8, nil, ts)
	for r := 0; r < testH/8; r++ {
		for col := 0; col < testW/8; col++ {
			tm.SetTile(r, col, gfx.Tile{Index: 1})
		}
	}
	if err := e.SetLayerTilemap(0, tm); err != nil {
		t.Fatal(err)
	}

	// the tick before the first scanline advances to the second frame
	e.UpdateFrame(0)
	if got := pixelAt(buf, 4, 4); got != gfx.RGB(0, 0, 255) {
		t.Errorf("tick 1 should show tile 2: got %v", got)
	}
	e.UpdateFrame(1)
	if got := pixelAt(buf, 4, 4); got != gfx.RGB(255, 0, 0) {
		t.Errorf("tick 2 should wrap back to tile 1: got %v", got)
	}
}

func TestPaletteAnimationPauseDisable(t *testing.T) {
	e := testEngine(t)
	testTarget(t, e)

	pal, _ := gfx.NewPalette(4)
	pal.SetColor(0, gfx.RGB(1, 0, 0))
	pal.SetColor(1, gfx.RGB(2, 0, 0))
	cycle, _ := gfx.NewCycle("c", []gfx.ColorStrip{{Delay: 1, First: 0, Count: 2, Dir: 1}})
	e.SetPaletteAnimation(0, pal, cycle, false)

	if err := e.PausePaletteAnimation(0); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(0)
	if c, _ := pal.Color(0); c != gfx.RGB(1, 0, 0) {
		t.Errorf("paused cycle must not rotate: got %v", c)
	}
	if err := e.ResumePaletteAnimation(0); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(1)
	if c, _ := pal.Color(0); c != gfx.RGB(2, 0, 0) {
		t.Errorf("resumed cycle should rotate: got %v", c)
	}

	if err := e.DisablePaletteAnimation(0); err != nil {
		t.Fatal(err)
	}
	if active, _ := e.PaletteAnimationActive(0); active {
		t.Error("slot should be idle after disable")
	}
	if got := e.AvailableAnimation(); got != 0 {
		t.Errorf("disabled slot should be available, got %d", got)
	}
}
