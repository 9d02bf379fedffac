// Command platformer recreates the classic scroll-strip depth effect:
// the background layer is split into horizontal strips that scroll at
// different speeds, repositioned from the raster callback, with a color
// cycle animating the water and a sky gradient swept per scanline.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/tilengo/tilengo/internal/engine"
	"github.com/tilengo/tilengo/internal/loader"
	"github.com/tilengo/tilengo/pkg/log"
	"github.com/tilengo/tilengo/pkg/window"
)

const (
	hres = 400
	vres = 240
)

// scroll strip speeds relative to the base position
var stripSpeed = [6]float64{0.562, 0.437, 0.375, 0.625, 1.000, 2.000}

// scanlines where each strip starts
var stripLine = [5]int{0, 32, 48, 64, 112}

type game struct {
	engine  *engine.Engine
	basepos float64
	speed   float64
	strips  [6]float64

	skyTop    colorful.Color
	skyBottom colorful.Color
}

// raster repositions the background strip starting at this line and
// sweeps the sky gradient. Runs once per scanline, between lines.
func (g *game) raster(line int) {
	pos := -1.0
	switch {
	case line == 0:
		pos = g.strips[0]
	case line == 32:
		pos = g.strips[1]
	case line == 48:
		pos = g.strips[2]
	case line == 64:
		pos = g.strips[3]
	case line == 112:
		pos = g.strips[4]
	case line >= 152:
		pos = lerp(float64(line), 152, 224, g.strips[4], g.strips[5])
	}
	if pos >= 0 {
		g.engine.SetLayerPosition(1, pos, 0)
	}

	if line < 144 {
		c := g.skyTop.BlendRgb(g.skyBottom, float64(line)/144)
		r, gr, b := c.RGB255()
		g.engine.SetBGColor(r, gr, b)
	}
}

func (g *game) update(win *window.Window) {
	if win.GetInput(window.InputRight) {
		g.speed = min(g.speed+0.04, 1)
	} else if g.speed > 0 {
		g.speed = max(g.speed-0.02, 0)
	}
	if win.GetInput(window.InputLeft) {
		g.speed = max(g.speed-0.04, -1)
	} else if g.speed < 0 {
		g.speed = min(g.speed+0.02, 0)
	}

	g.basepos += g.speed
	g.engine.SetLayerPosition(0, g.basepos*3, 0)
	for i, s := range stripSpeed {
		g.strips[i] = g.basepos * s
	}
}

func lerp(x, x0, x1, f0, f1 float64) float64 {
	return f0 + (f1-f0)*(x-x0)/(x1-x0)
}

func main() {
	path := flag.String("path", "assets/sonic", "asset directory")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	logger := log.New()
	if *verbose {
		logger = log.NewLeveled(log.LevelVerbose)
	}

	if err := run(*path, logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string, logger log.Logger) error {
	ld := loader.New(loader.WithLogger(logger))
	ld.SetLoadPath(path)

	e, err := engine.New(hres, vres, 2, 0, 20, engine.WithLogger(logger))
	if err != nil {
		return err
	}
	defer e.Close()

	for i, name := range []string{"Sonic_md_fg1.tmx", "Sonic_md_bg1.tmx"} {
		tilemap, err := ld.LoadTilemap(name, "")
		if err != nil {
			return err
		}
		if err := e.SetLayerTilemap(i, tilemap); err != nil {
			return err
		}
		e.SetBGColorFromTilemap(tilemap)
	}

	// water color cycle on the background palette, smoothed
	seqs, err := ld.LoadSequencePack("Sonic_md_seq.sqx")
	if err != nil {
		return err
	}
	water := seqs.Find("seq_water")
	if water == nil {
		return fmt.Errorf("seq_water missing from sequence pack")
	}
	palette, err := e.LayerPalette(1)
	if err != nil {
		return err
	}
	if slot := e.AvailableAnimation(); slot != -1 {
		if err := e.SetPaletteAnimation(slot, palette, water, true); err != nil {
			return err
		}
	}

	g := &game{
		engine:    e,
		skyTop:    colorful.Color{R: 28 / 255.0, G: 0, B: 140 / 255.0},
		skyBottom: colorful.Color{R: 0, G: 128 / 255.0, B: 238 / 255.0},
	}
	e.SetRasterCallback(g.raster)

	buf := make([]uint8, hres*4*vres)
	if err := e.SetRenderTarget(buf, hres*4); err != nil {
		return err
	}

	win, err := window.New(hres, vres,
		window.WithTitle("platformer"), window.WithVSync(), window.WithLogger(logger))
	if err != nil {
		return err
	}
	defer win.Close()

	for frame := 0; win.Process(); frame++ {
		g.update(win)
		if err := e.UpdateFrame(frame); err != nil {
			return err
		}
		if err := win.DrawFrame(buf, hres*4); err != nil {
			return err
		}
	}
	return nil
}
