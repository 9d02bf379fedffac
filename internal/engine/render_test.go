package engine

import (
	"errors"
	"testing"

	"github.com/cespare/xxhash"

	"github.com/tilengo/tilengo/internal/gfx"
)

func TestSetRenderTargetValidation(t *testing.T) {
	e := testEngine(t)
	if err := e.SetRenderTarget(nil, testW*4); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("nil buffer: got %v", err)
	}
	buf := make([]uint8, testW*4*testH)
	if err := e.SetRenderTarget(buf, testW*3); !errors.Is(err, ErrWrongSize) {
		t.Errorf("pitch too small: got %v", err)
	}
	if err := e.SetRenderTarget(buf[:16], testW*4); !errors.Is(err, ErrWrongSize) {
		t.Errorf("buffer too small: got %v", err)
	}
	if err := e.SetRenderTarget(buf, testW*4); err != nil {
		t.Fatal(err)
	}
}

func TestBlendModes(t *testing.T) {
	tests := []struct {
		name string
		mode BlendMode
		want gfx.Color
	}{
		{"mix25", BlendMix25, gfx.RGB(85, 75, 25)},
		{"mix50", BlendMix50, gfx.RGB(110, 50, 50)},
		{"mix75", BlendMix75, gfx.RGB(135, 25, 75)},
		{"add", BlendAdd, gfx.RGB(220, 100, 100)},
		{"sub", BlendSub, gfx.RGB(0, 100, 0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := testEngine(t)
			buf := testTarget(t, e)
			e.SetBGColor(60, 100, 0) // destination

			ss := solidSpriteset(t, gfx.RGB(160, 0, 100)) // source
			if err := e.SetSpriteSet(0, ss); err != nil {
				t.Fatal(err)
			}
			e.SetSpritePosition(0, 0, 0)
			if err := e.SetSpriteBlendMode(0, tc.mode); err != nil {
				t.Fatal(err)
			}
			e.UpdateFrame(0)
			if got := pixelAt(buf, 2, 2); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCustomBlendFunction(t *testing.T) {
	e := testEngine(t)
	buf := testTarget(t, e)
	e.SetBGColor(10, 10, 10)
	e.SetCustomBlendFunction(func(src, dst uint8) uint8 { return dst })

	ss := solidSpriteset(t, gfx.RGB(200, 200, 200))
	e.SetSpriteSet(0, ss)
	e.SetSpritePosition(0, 0, 0)
	if err := e.SetSpriteBlendMode(0, BlendCustom); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(0)
	if got := pixelAt(buf, 2, 2); got != gfx.RGB(10, 10, 10) {
		t.Errorf("custom keep-destination: got %v", got)
	}
}

func TestPriorityTileOverSprite(t *testing.T) {
	e := testEngine(t)
	buf := testTarget(t, e)

	tm := solidTilemap(t, gfx.RGB(200, 0, 0))
	if err := e.SetLayerTilemap(0, tm); err != nil {
		t.Fatal(err)
	}
	ss := solidSpriteset(t, gfx.RGB(0, 200, 0))
	e.SetSpriteSet(0, ss)
	e.SetSpritePosition(0, 0, 0)

	e.UpdateFrame(0)
	if got := pixelAt(buf, 2, 2); got != gfx.RGB(0, 200, 0) {
		t.Fatalf("sprite should cover a plain tile: got %v", got)
	}

	// flagging the tile with priority moves it in front of the sprite
	tile := tm.TileAt(0, 0)
	tile.Flags |= gfx.FlagPriority
	tm.SetTile(0, 0, tile)
	e.UpdateFrame(1)
	if got := pixelAt(buf, 2, 2); got != gfx.RGB(200, 0, 0) {
		t.Errorf("priority tile should cover the sprite: got %v", got)
	}

	// a priority sprite beats the priority tile
	if err := e.SetSpriteFlags(0, gfx.FlagPriority); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(2)
	if got := pixelAt(buf, 2, 2); got != gfx.RGB(0, 200, 0) {
		t.Errorf("priority sprite should cover the priority tile: got %v", got)
	}
}

func TestLayerClip(t *testing.T) {
	e := testEngine(t)
	buf := testTarget(t, e)
	e.SetBGColor(0, 0, 0)

	if err := e.SetLayerTilemap(0, solidTilemap(t, gfx.RGB(255, 255, 255))); err != nil {
		t.Fatal(err)
	}
	if err := e.SetLayerClip(0, 8, 4, 16, 12); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(0)
	if got := pixelAt(buf, 10, 6); got != gfx.RGB(255, 255, 255) {
		t.Errorf("inside clip: got %v", got)
	}
	if got := pixelAt(buf, 2, 6); got != gfx.RGB(0, 0, 0) {
		t.Errorf("left of clip: got %v", got)
	}
	if got := pixelAt(buf, 10, 2); got != gfx.RGB(0, 0, 0) {
		t.Errorf("above clip: got %v", got)
	}

	if err := e.DisableLayerClip(0); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(1)
	if got := pixelAt(buf, 2, 6); got != gfx.RGB(255, 255, 255) {
		t.Errorf("clip disabled: got %v", got)
	}
}

func TestLayerScroll(t *testing.T) {
	e := testEngine(t)
	buf := testTarget(t, e)
	e.SetBGColor(0, 0, 0)

	// paint a single marker tile at map origin
	pal, _ := gfx.NewPalette(16)
	pal.SetColor(1, gfx.RGB(255, 255, 255))
	ts, _ := gfx.NewTileset(1, 8, 8, pal, nil, nil)
	pixels := make([]uint8, 8*8)
	for i := range pixels {
		pixels[i] = 1
	}
	ts.SetPixels(0, pixels, 8)
	tm, _ := gfx.NewTilemap(testH/8, testW/8, nil, ts)
	tm.SetTile(0, 0, gfx.Tile{Index: 1})

	if err := e.SetLayerTilemap(0, tm); err != nil {
		t.Fatal(err)
	}
	if err := e.SetLayerPosition(0, 4, 0); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(0)
	// scrolled 4 right: only the right half of the marker remains visible
	if got := pixelAt(buf, 0, 0); got != gfx.RGB(255, 255, 255) {
		t.Errorf("screen x 0 maps to source x 4: got %v", got)
	}
	if got := pixelAt(buf, 4, 0); got != gfx.RGB(0, 0, 0) {
		t.Errorf("screen x 4 maps past the marker: got %v", got)
	}
}

// markerTilemap builds a map with a single solid 8x8 tile at the origin,
// the rest of the cells empty.
func markerTilemap(t *testing.T, c gfx.Color) *gfx.Tilemap {
	t.Helper()
	pal, _ := gfx.NewPalette(16)
	pal.SetColor(1, c)
	ts, err := gfx.NewTileset(1, 8, 8, pal, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	pixels := make([]uint8, 8*8)
	for i := range pixels {
		pixels[i] = 1
	}
	ts.SetPixels(0, pixels, 8)
	tm, err := gfx.NewTilemap(testH/8, testW/8, nil, ts)
	if err != nil {
		t.Fatal(err)
	}
	tm.SetTile(0, 0, gfx.Tile{Index: 1})
	return tm
}

func TestLayerScaling(t *testing.T) {
	e := testEngine(t)
	buf := testTarget(t, e)
	e.SetBGColor(0, 0, 0)

	if err := e.SetLayerTilemap(0, markerTilemap(t, gfx.RGB(255, 255, 255))); err != nil {
		t.Fatal(err)
	}
	// scaling replaces a previously active transform
	if err := e.SetLayerTransform(0, 45, 0, 0, 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.SetLayerScaling(0, 2, 2); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(0)
	// at 2x the 8x8 marker covers 16x16 screen pixels
	if got := pixelAt(buf, 12, 4); got != gfx.RGB(255, 255, 255) {
		t.Errorf("screen x 12 maps to source x 6: got %v", got)
	}
	if got := pixelAt(buf, 4, 12); got != gfx.RGB(255, 255, 255) {
		t.Errorf("screen y 12 maps to source y 6: got %v", got)
	}
	if got := pixelAt(buf, 20, 4); got != gfx.RGB(0, 0, 0) {
		t.Errorf("screen x 20 maps past the marker: got %v", got)
	}

	if err := e.ResetLayerMode(0); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(1)
	if got := pixelAt(buf, 12, 4); got != gfx.RGB(0, 0, 0) {
		t.Errorf("plain blit restored: got %v", got)
	}
	if got := pixelAt(buf, 4, 4); got != gfx.RGB(255, 255, 255) {
		t.Errorf("marker should stay at 1x: got %v", got)
	}
}

func TestLayerMosaic(t *testing.T) {
	e := testEngine(t)
	buf := testTarget(t, e)

	bm, _ := gfx.NewBitmap(testW, testH)
	pal, _ := gfx.NewPalette(4)
	pal.SetColor(1, gfx.RGB(255, 255, 255))
	pal.SetColor(2, gfx.RGB(100, 100, 100))
	bm.SetPalette(pal)
	for y := 0; y < testH; y++ {
		for x := 0; x < testW; x++ {
			idx := uint8(2)
			if x == 0 || y == 0 {
				idx = 1
			}
			bm.SetPixel(x, y, idx)
		}
	}
	if err := e.SetLayerBitmap(0, bm); err != nil {
		t.Fatal(err)
	}
	if err := e.SetLayerMosaic(0, 4, 4); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(0)
	// every pixel of a 4x4 block repeats the block's top left source pixel
	if got := pixelAt(buf, 3, 3); got != gfx.RGB(255, 255, 255) {
		t.Errorf("(3,3) should quantize to (0,0): got %v", got)
	}
	if got := pixelAt(buf, 5, 5); got != gfx.RGB(100, 100, 100) {
		t.Errorf("(5,5) should quantize to (4,4): got %v", got)
	}

	if err := e.DisableLayerMosaic(0); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(1)
	if got := pixelAt(buf, 3, 3); got != gfx.RGB(100, 100, 100) {
		t.Errorf("mosaic disabled: got %v", got)
	}
}

func TestLayerColumnOffset(t *testing.T) {
	e := testEngine(t)
	buf := testTarget(t, e)
	e.SetBGColor(0, 0, 0)

	// row 0 solid, row 1 empty
	pal, _ := gfx.NewPalette(16)
	pal.SetColor(1, gfx.RGB(255, 255, 255))
	ts, _ := gfx.NewTileset(1, 8, 8, pal, nil, nil)
	pixels := make([]uint8, 8*8)
	for i := range pixels {
		pixels[i] = 1
	}
	ts.SetPixels(0, pixels, 8)
	tm, _ := gfx.NewTilemap(testH/8, testW/8, nil, ts)
	for col := 0; col < testW/8; col++ {
		tm.SetTile(0, col, gfx.Tile{Index: 1})
	}
	if err := e.SetLayerTilemap(0, tm); err != nil {
		t.Fatal(err)
	}
	if err := e.SetLayerColumnOffset(0, []int{0, 8, 0, 0}); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(0)
	if got := pixelAt(buf, 4, 0); got != gfx.RGB(255, 255, 255) {
		t.Errorf("unshifted column: got %v", got)
	}
	if got := pixelAt(buf, 10, 0); got != gfx.RGB(0, 0, 0) {
		t.Errorf("column 1 shifted down into the empty row: got %v", got)
	}
	if got := pixelAt(buf, 10, 8); got != gfx.RGB(255, 255, 255) {
		t.Errorf("column 1 wraps the solid row to line 8: got %v", got)
	}
}

func TestLayerPixelMapping(t *testing.T) {
	e := testEngine(t)
	buf := testTarget(t, e)
	e.SetBGColor(0, 0, 0)

	if err := e.SetLayerTilemap(0, markerTilemap(t, gfx.RGB(255, 255, 255))); err != nil {
		t.Fatal(err)
	}
	// map every screen pixel onto one source pixel inside the marker
	table := make([]PixelMap, testW*testH)
	for i := range table {
		table[i] = PixelMap{DX: 2, DY: 3}
	}
	if err := e.SetLayerPixelMapping(0, table); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(0)
	if got := pixelAt(buf, testW-1, testH-1); got != gfx.RGB(255, 255, 255) {
		t.Errorf("far corner should sample the marker: got %v", got)
	}
}

func TestBGBitmap(t *testing.T) {
	e := testEngine(t)
	buf := testTarget(t, e)

	bm, _ := gfx.NewBitmap(testW, testH)
	pal, _ := gfx.NewPalette(4)
	pal.SetColor(2, gfx.RGB(0, 0, 200))
	bm.SetPalette(pal)
	for y := 0; y < testH; y++ {
		for x := 0; x < testW; x++ {
			bm.SetPixel(x, y, 2)
		}
	}
	if err := e.SetBGBitmap(bm); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(0)
	if got := pixelAt(buf, 5, 5); got != gfx.RGB(0, 0, 200) {
		t.Errorf("got %v", got)
	}
}

func TestRenderDeterminism(t *testing.T) {
	render := func() uint64 {
		e := testEngine(t)
		buf := testTarget(t, e)
		e.SetBGColor(30, 40, 50)
		e.SetLayerTilemap(0, solidTilemap(t, gfx.RGB(80, 90, 100)))
		e.SetLayerBlendMode(0, BlendMix50)
		ss := solidSpriteset(t, gfx.RGB(200, 10, 20))
		e.SetSpriteSet(0, ss)
		e.SetSpritePosition(0, 7, 3)
		e.UpdateFrame(0)
		return xxhash.Sum64(buf)
	}
	if render() != render() {
		t.Error("identical scenes must produce identical frames")
	}
}
