package loader

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/tilengo/tilengo/internal/gfx"
)

// writeAtlas writes a paletted 16x8 png: left tile palette index 1, right
// tile palette index 2.
func writeAtlas(t *testing.T, dir, name string) {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 16, 8), color.Palette{
		color.RGBA{A: 255},
		color.RGBA{R: 255, A: 255},
		color.RGBA{G: 255, A: 255},
	})
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			idx := uint8(1)
			if x >= 8 {
				idx = 2
			}
			img.SetColorIndex(x, y, idx)
		}
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const testTSX = `<?xml version="1.0" encoding="UTF-8"?>
<tileset name="test" tilewidth="8" tileheight="8" tilecount="2" columns="2">
 <image source="atlas.png" width="16" height="8"/>
 <tile id="1">
  <properties>
   <property name="type" value="3"/>
   <property name="priority" value="true"/>
  </properties>
 </tile>
</tileset>`

const testTMX = `<?xml version="1.0" encoding="UTF-8"?>
<map width="2" height="2" backgroundcolor="#102030">
 <tileset firstgid="1" source="test.tsx"/>
 <layer name="main" width="2" height="2">
  <data encoding="csv">
   1,2,
   2147483649,0
  </data>
 </layer>
</map>`

func testLoader(t *testing.T) (*Loader, string) {
	t.Helper()
	dir := t.TempDir()
	ld := New()
	ld.SetLoadPath(dir)
	return ld, dir
}

func TestLoadBitmap(t *testing.T) {
	ld, dir := testLoader(t)
	writeAtlas(t, dir, "atlas.png")

	bm, err := ld.LoadBitmap("atlas.png")
	if err != nil {
		t.Fatal(err)
	}
	if bm.Width() != 16 || bm.Height() != 8 {
		t.Errorf("size: %dx%d", bm.Width(), bm.Height())
	}
	if bm.PixelAt(0, 0) != 1 || bm.PixelAt(8, 0) != 2 {
		t.Error("pixel indexes not preserved")
	}
	pal := bm.Palette()
	if pal == nil {
		t.Fatal("palette missing")
	}
	if c, _ := pal.Color(1); c != gfx.RGB(255, 0, 0) {
		t.Errorf("palette entry 1: %v", c)
	}

	if _, err := ld.LoadBitmap("missing.png"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("got %v", err)
	}
}

func TestLoadTileset(t *testing.T) {
	ld, dir := testLoader(t)
	writeAtlas(t, dir, "atlas.png")
	writeFile(t, dir, "test.tsx", testTSX)

	ts, err := ld.LoadTileset("test.tsx")
	if err != nil {
		t.Fatal(err)
	}
	if ts.NumTiles() != 2 || ts.TileWidth() != 8 || ts.TileHeight() != 8 {
		t.Fatalf("geometry: %d tiles of %dx%d", ts.NumTiles(), ts.TileWidth(), ts.TileHeight())
	}
	if got := ts.Pixel(0, 0, 0); got != 1 {
		t.Errorf("tile 0 pixel: %d", got)
	}
	if got := ts.Pixel(1, 0, 0); got != 2 {
		t.Errorf("tile 1 pixel: %d", got)
	}
	attrs, err := ts.Attrs(1)
	if err != nil {
		t.Fatal(err)
	}
	if attrs.Type != 3 || !attrs.Priority {
		t.Errorf("attrs: %+v", attrs)
	}
}

func TestLoadTilemap(t *testing.T) {
	ld, dir := testLoader(t)
	writeAtlas(t, dir, "atlas.png")
	writeFile(t, dir, "test.tsx", testTSX)
	writeFile(t, dir, "map.tmx", testTMX)

	tm, err := ld.LoadTilemap("map.tmx", "main")
	if err != nil {
		t.Fatal(err)
	}
	if tm.Rows() != 2 || tm.Cols() != 2 {
		t.Fatalf("size: %dx%d", tm.Rows(), tm.Cols())
	}
	if got := tm.TileAt(0, 0); got.Index != 1 || got.Flags != 0 {
		t.Errorf("cell (0,0): %+v", got)
	}
	if got := tm.TileAt(0, 1); got.Index != 2 {
		t.Errorf("cell (0,1): %+v", got)
	}
	// gid 2147483649 = tile 1 with the horizontal flip bit
	if got := tm.TileAt(1, 0); got.Index != 1 || got.Flags&gfx.FlagFlipX == 0 {
		t.Errorf("cell (1,0): %+v", got)
	}
	if got := tm.TileAt(1, 1); got.Index != 0 {
		t.Errorf("cell (1,1) should be empty: %+v", got)
	}
	if c, ok := tm.BGColor(); !ok || c != gfx.RGB(0x10, 0x20, 0x30) {
		t.Errorf("bg color: %v, %v", c, ok)
	}

	if _, err := ld.LoadTilemap("map.tmx", "nope"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("unknown layer: got %v", err)
	}
}

const testWorldTMX = `<?xml version="1.0" encoding="UTF-8"?>
<map width="2" height="2">
 <tileset firstgid="1" name="inline" tilewidth="8" tileheight="8" tilecount="2" columns="2">
  <image source="atlas.png" width="16" height="8"/>
 </tileset>
 <layer name="fg" width="2" height="2">
  <data encoding="csv">1,2,2,1</data>
 </layer>
 <layer name="bg" width="2" height="2" parallaxx="0.5" parallaxy="0.25">
  <data encoding="csv">2,2,2,2</data>
 </layer>
 <objectgroup name="items">
  <object id="1" x="8" y="0" width="8" height="8"/>
 </objectgroup>
</map>`

func TestLoadTilemapEmbeddedTileset(t *testing.T) {
	ld, dir := testLoader(t)
	writeAtlas(t, dir, "atlas.png")
	writeFile(t, dir, "world.tmx", testWorldTMX)

	tm, err := ld.LoadTilemap("world.tmx", "fg")
	if err != nil {
		t.Fatal(err)
	}
	ts, _ := tm.Tileset(0)
	if ts == nil {
		t.Fatal("inline tileset not attached")
	}
	if ts.NumTiles() != 2 || ts.TileWidth() != 8 {
		t.Errorf("geometry: %d tiles of %d", ts.NumTiles(), ts.TileWidth())
	}
	if got := tm.TileAt(0, 0); got.Index != 1 {
		t.Errorf("cell (0,0): %+v", got)
	}
	if got := ts.Pixel(1, 0, 0); got != 2 {
		t.Errorf("tile 1 pixel: %d", got)
	}
}

func TestLoadWorld(t *testing.T) {
	ld, dir := testLoader(t)
	writeAtlas(t, dir, "atlas.png")
	writeFile(t, dir, "world.tmx", testWorldTMX)

	w, err := ld.LoadWorld("world.tmx")
	if err != nil {
		t.Fatal(err)
	}
	if len(w.Layers) != 3 {
		t.Fatalf("got %d layers", len(w.Layers))
	}
	fg := w.Layers[0]
	if fg.Name != "fg" || fg.Tilemap == nil || fg.ParallaxX != 1 || fg.ParallaxY != 1 {
		t.Errorf("fg layer: %+v", fg)
	}
	bg := w.Layers[1]
	if bg.Tilemap == nil || bg.ParallaxX != 0.5 || bg.ParallaxY != 0.25 {
		t.Errorf("bg layer parallax: %v, %v", bg.ParallaxX, bg.ParallaxY)
	}
	items := w.Layers[2]
	if items.Name != "items" || items.Objects == nil || items.Objects.NumItems() != 1 {
		t.Errorf("object layer: %+v", items)
	}

	if _, err := ld.LoadWorld("missing.tmx"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("got %v", err)
	}
}

func TestLoadSpriteset(t *testing.T) {
	ld, dir := testLoader(t)
	writeAtlas(t, dir, "hero.png")
	writeFile(t, dir, "hero.txt", "# atlas\nidle = 0 0 8 8\nrun1 = 8 0 8 8\n")

	ss, err := ld.LoadSpriteset("hero.png")
	if err != nil {
		t.Fatal(err)
	}
	if ss.NumPictures() != 2 {
		t.Fatalf("got %d pictures", ss.NumPictures())
	}
	if got := ss.FindPicture("run1"); got != 1 {
		t.Errorf("FindPicture: %d", got)
	}
	entry, _ := ss.Entry(1)
	if entry.X != 8 || entry.W != 8 || entry.H != 8 {
		t.Errorf("entry: %+v", entry)
	}

	writeFile(t, dir, "hero.txt", "idle 0 0 8 8\n")
	if _, err := ld.LoadSpriteset("hero.png"); !errors.Is(err, ErrWrongFormat) {
		t.Errorf("malformed line: got %v", err)
	}
}

func TestLoadPalette(t *testing.T) {
	ld, dir := testLoader(t)

	act := make([]byte, 772)
	act[0], act[1], act[2] = 10, 20, 30
	act[768], act[769] = 0, 2 // two used entries
	if err := os.WriteFile(filepath.Join(dir, "pal.act"), act, 0o644); err != nil {
		t.Fatal(err)
	}

	pal, err := ld.LoadPalette("pal.act")
	if err != nil {
		t.Fatal(err)
	}
	if pal.Len() != 2 {
		t.Errorf("len: %d", pal.Len())
	}
	if c, _ := pal.Color(0); c != gfx.RGB(10, 20, 30) {
		t.Errorf("entry 0: %v", c)
	}

	writeFile(t, dir, "bad.act", "short")
	if _, err := ld.LoadPalette("bad.act"); !errors.Is(err, ErrWrongFormat) {
		t.Errorf("got %v", err)
	}
}

func TestLoadSequencePack(t *testing.T) {
	ld, dir := testLoader(t)
	writeFile(t, dir, "anim.sqx", `<?xml version="1.0"?>
<sequences>
 <sequence name="walk" delay="4">1,2,3:8</sequence>
 <cycle name="water">
  <strip delay="10" first="224" count="16" dir="1"/>
 </cycle>
</sequences>`)

	pack, err := ld.LoadSequencePack("anim.sqx")
	if err != nil {
		t.Fatal(err)
	}
	if pack.Count() != 2 {
		t.Fatalf("count: %d", pack.Count())
	}

	walk := pack.Find("walk")
	if walk == nil || walk.Kind() != gfx.SequenceFrames {
		t.Fatal("walk sequence missing")
	}
	frames := walk.Frames()
	if len(frames) != 3 || frames[0] != (gfx.SequenceFrame{Index: 1, Delay: 4}) {
		t.Errorf("frames: %+v", frames)
	}
	if frames[2] != (gfx.SequenceFrame{Index: 3, Delay: 8}) {
		t.Errorf("per-frame delay override: %+v", frames[2])
	}

	water := pack.Find("water")
	if water == nil || water.Kind() != gfx.SequenceCycle {
		t.Fatal("water cycle missing")
	}
	strips := water.Strips()
	if len(strips) != 1 || strips[0] != (gfx.ColorStrip{Delay: 10, First: 224, Count: 16, Dir: 1}) {
		t.Errorf("strips: %+v", strips)
	}
}
