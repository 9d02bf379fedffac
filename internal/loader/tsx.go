package loader

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/tilengo/tilengo/internal/gfx"
)

// tsxBody carries the tileset fields shared by standalone .tsx files and
// tilesets embedded inline in .tmx maps.
type tsxBody struct {
	Name       string `xml:"name,attr"`
	TileWidth  int    `xml:"tilewidth,attr"`
	TileHeight int    `xml:"tileheight,attr"`
	TileCount  int    `xml:"tilecount,attr"`
	Columns    int    `xml:"columns,attr"`
	Image      struct {
		Source string `xml:"source,attr"`
	} `xml:"image"`
	Tiles []tsxTile `xml:"tile"`
}

type tsxFile struct {
	XMLName xml.Name `xml:"tileset"`
	tsxBody
}

type tsxTile struct {
	ID         int `xml:"id,attr"`
	Properties []struct {
		Name  string `xml:"name,attr"`
		Value string `xml:"value,attr"`
	} `xml:"properties>property"`
	Animation []struct {
		TileID   int `xml:"tileid,attr"`
		Duration int `xml:"duration,attr"`
	} `xml:"animation>frame"`
}

// LoadTileset reads a Tiled .tsx tileset: the atlas image referenced by
// it, per-tile type and priority properties, and tile animations as a
// sequence pack.
func (ld *Loader) LoadTileset(name string) (*gfx.Tileset, error) {
	data, err := ld.readFile(name)
	if err != nil {
		return nil, err
	}
	var tsx tsxFile
	if err := xml.Unmarshal(data, &tsx); err != nil {
		return nil, pkgerrors.Wrapf(ErrWrongFormat, "%s: %v", name, err)
	}
	return ld.buildTileset(name, &tsx.tsxBody)
}

// buildTileset assembles a tileset from parsed tsx data. name is the file
// the data came from, used to resolve the atlas path.
func (ld *Loader) buildTileset(name string, tsx *tsxBody) (*gfx.Tileset, error) {
	if tsx.TileCount <= 0 || tsx.Columns <= 0 || tsx.Image.Source == "" {
		return nil, pkgerrors.Wrap(ErrWrongFormat, name)
	}

	// image paths are relative to the file declaring the tileset
	atlas, err := ld.LoadBitmap(filepath.Join(filepath.Dir(name), tsx.Image.Source))
	if err != nil {
		atlas, err = ld.LoadBitmap(tsx.Image.Source)
		if err != nil {
			return nil, err
		}
	}

	attrs := make([]gfx.TileAttrs, tsx.TileCount)
	seqs := gfx.NewSequencePack()
	for _, tile := range tsx.Tiles {
		if tile.ID < 0 || tile.ID >= tsx.TileCount {
			continue
		}
		for _, prop := range tile.Properties {
			switch strings.ToLower(prop.Name) {
			case "type":
				if v, err := strconv.Atoi(prop.Value); err == nil {
					attrs[tile.ID].Type = uint8(v)
				}
			case "priority":
				attrs[tile.ID].Priority = prop.Value == "true" || prop.Value == "1"
			}
		}
		if len(tile.Animation) > 0 {
			frames := make([]gfx.SequenceFrame, len(tile.Animation))
			for i, f := range tile.Animation {
				frames[i] = gfx.SequenceFrame{Index: f.TileID + 1, Delay: msToTicks(f.Duration)}
			}
			if seq, err := gfx.NewSequence(fmt.Sprintf("tile%d", tile.ID), tile.ID+1, frames); err == nil {
				seqs.Add(seq)
			}
		}
	}
	if seqs.Count() == 0 {
		seqs = nil
	}

	ts, err := gfx.NewTileset(tsx.TileCount, tsx.TileWidth, tsx.TileHeight, atlas.Palette(), seqs, attrs)
	if err != nil {
		return nil, pkgerrors.Wrap(err, name)
	}
	row := make([]uint8, tsx.TileWidth*tsx.TileHeight)
	for t := 0; t < tsx.TileCount; t++ {
		ax := (t % tsx.Columns) * tsx.TileWidth
		ay := (t / tsx.Columns) * tsx.TileHeight
		if ax+tsx.TileWidth > atlas.Width() || ay+tsx.TileHeight > atlas.Height() {
			break
		}
		for y := 0; y < tsx.TileHeight; y++ {
			src := atlas.Row(ay + y)
			copy(row[y*tsx.TileWidth:(y+1)*tsx.TileWidth], src[ax:ax+tsx.TileWidth])
		}
		if err := ts.SetPixels(t, row, tsx.TileWidth); err != nil {
			return nil, pkgerrors.Wrap(err, name)
		}
	}
	ld.log.Debugf("tileset %s loaded, %d tiles of %dx%d", name, tsx.TileCount, tsx.TileWidth, tsx.TileHeight)
	return ts, nil
}

// msToTicks converts a Tiled frame duration in milliseconds to ticks at
// the nominal 60 fps update rate.
func msToTicks(ms int) int {
	ticks := ms * 60 / 1000
	if ticks < 1 {
		ticks = 1
	}
	return ticks
}
