// Command viewer loads a tilemap and scrolls it in a window. The simplest
// possible host: one layer, no sprites, the built-in window as output.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tilengo/tilengo/internal/engine"
	"github.com/tilengo/tilengo/internal/loader"
	"github.com/tilengo/tilengo/pkg/log"
	"github.com/tilengo/tilengo/pkg/stream"
	"github.com/tilengo/tilengo/pkg/window"
)

const (
	hres = 400
	vres = 240
)

func main() {
	path := flag.String("path", "assets/sonic", "asset directory")
	mapFile := flag.String("map", "Sonic_md_fg1.tmx", "tilemap to show")
	pack := flag.String("pack", "", "resource pack archive")
	key := flag.String("key", "", "resource pack key")
	serve := flag.String("serve", "", "also stream frames on this address (e.g. :8090)")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	logger := log.New()
	if *verbose {
		logger = log.NewLeveled(log.LevelVerbose)
	}

	if err := run(*path, *mapFile, *pack, *key, *serve, logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path, mapFile, pack, key, serve string, logger log.Logger) error {
	ld := loader.New(loader.WithLogger(logger))
	ld.SetLoadPath(path)
	if pack != "" {
		if err := ld.OpenResourcePack(pack, key); err != nil {
			return err
		}
		defer ld.CloseResourcePack()
	}

	tilemap, err := ld.LoadTilemap(mapFile, "")
	if err != nil {
		return err
	}

	e, err := engine.New(hres, vres, 1, 0, 0, engine.WithLogger(logger))
	if err != nil {
		return err
	}
	defer e.Close()
	if err := e.SetLayerTilemap(0, tilemap); err != nil {
		return err
	}
	e.SetBGColorFromTilemap(tilemap)

	buf := make([]uint8, hres*4*vres)
	if err := e.SetRenderTarget(buf, hres*4); err != nil {
		return err
	}

	win, err := window.New(hres, vres,
		window.WithTitle("viewer"), window.WithVSync(), window.WithLogger(logger))
	if err != nil {
		return err
	}
	defer win.Close()

	var frames *stream.Server
	if serve != "" {
		frames = stream.New(hres, vres, stream.WithLogger(logger))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := frames.Run(ctx, serve); err != nil {
				logger.Errorf("frame server: %v", err)
			}
		}()
	}

	var x float64
	for frame := 0; win.Process(); frame++ {
		if win.GetInput(window.InputRight) {
			x += 2
		}
		if win.GetInput(window.InputLeft) {
			x -= 2
		}
		e.SetLayerPosition(0, x, 0)

		if err := e.UpdateFrame(frame); err != nil {
			return err
		}
		if err := win.DrawFrame(buf, hres*4); err != nil {
			return err
		}
		if frames != nil {
			frames.PushFrame(buf, hres*4)
		}
	}
	return nil
}
