package loader

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/tilengo/tilengo/internal/gfx"
)

// Tiled stores flips in the top bits of each gid.
const (
	tmxFlipH = 0x80000000
	tmxFlipV = 0x40000000
	tmxFlipD = 0x20000000
	tmxGID   = 0x1fffffff
)

type tmxFile struct {
	XMLName  xml.Name         `xml:"map"`
	BGColor  string           `xml:"backgroundcolor,attr"`
	Tilesets []tmxTileset     `xml:"tileset"`
	Layers   []tmxLayer       `xml:"layer"`
	Groups   []tmxObjectGroup `xml:"objectgroup"`
}

// tmxTileset is either a reference to an external .tsx file or, with an
// empty Source, a tileset embedded inline in the map.
type tmxTileset struct {
	FirstGID int    `xml:"firstgid,attr"`
	Source   string `xml:"source,attr"`
	tsxBody
}

type tmxLayer struct {
	Name      string  `xml:"name,attr"`
	Width     int     `xml:"width,attr"`
	Height    int     `xml:"height,attr"`
	ParallaxX string  `xml:"parallaxx,attr"`
	ParallaxY string  `xml:"parallaxy,attr"`
	Data      tmxData `xml:"data"`
}

type tmxData struct {
	Encoding    string `xml:"encoding,attr"`
	Compression string `xml:"compression,attr"`
	Raw         string `xml:",chardata"`
}

// LoadTilemap reads one layer of a Tiled .tmx map, with every tileset the
// map references loaded and attached. An empty layerName selects the
// first layer.
func (ld *Loader) LoadTilemap(name, layerName string) (*gfx.Tilemap, error) {
	data, err := ld.readFile(name)
	if err != nil {
		return nil, err
	}
	var tmx tmxFile
	if err := xml.Unmarshal(data, &tmx); err != nil {
		return nil, pkgerrors.Wrapf(ErrWrongFormat, "%s: %v", name, err)
	}
	if len(tmx.Tilesets) == 0 || len(tmx.Layers) == 0 {
		return nil, pkgerrors.Wrap(ErrWrongFormat, name)
	}

	layer := &tmx.Layers[0]
	if layerName != "" {
		layer = nil
		for i := range tmx.Layers {
			if tmx.Layers[i].Name == layerName {
				layer = &tmx.Layers[i]
				break
			}
		}
		if layer == nil {
			return nil, pkgerrors.Wrapf(ErrFileNotFound, "%s: layer %s", name, layerName)
		}
	}

	tilesets, err := ld.loadMapTilesets(name, &tmx)
	if err != nil {
		return nil, err
	}
	tm, err := ld.buildLayerTilemap(name, &tmx, layer, tilesets)
	if err != nil {
		return nil, err
	}
	ld.log.Debugf("tilemap %s loaded, layer %s, %dx%d cells", name, layer.Name, layer.Width, layer.Height)
	return tm, nil
}

// LoadWorld reads every layer of a Tiled .tmx map as a unit: tile layers
// become tilemaps carrying the parallax factors declared in the file,
// object groups become object lists. Assign the result with
// Engine.SetWorld.
func (ld *Loader) LoadWorld(name string) (*gfx.World, error) {
	data, err := ld.readFile(name)
	if err != nil {
		return nil, err
	}
	var tmx tmxFile
	if err := xml.Unmarshal(data, &tmx); err != nil {
		return nil, pkgerrors.Wrapf(ErrWrongFormat, "%s: %v", name, err)
	}
	if len(tmx.Layers) == 0 && len(tmx.Groups) == 0 {
		return nil, pkgerrors.Wrap(ErrWrongFormat, name)
	}
	var tilesets []*gfx.Tileset
	if len(tmx.Layers) > 0 {
		if len(tmx.Tilesets) == 0 {
			return nil, pkgerrors.Wrap(ErrWrongFormat, name)
		}
		tilesets, err = ld.loadMapTilesets(name, &tmx)
		if err != nil {
			return nil, err
		}
	}

	w := &gfx.World{}
	for i := range tmx.Layers {
		layer := &tmx.Layers[i]
		tm, err := ld.buildLayerTilemap(name, &tmx, layer, tilesets)
		if err != nil {
			return nil, err
		}
		w.Layers = append(w.Layers, gfx.WorldLayer{
			Name:      layer.Name,
			Tilemap:   tm,
			ParallaxX: parseParallax(layer.ParallaxX),
			ParallaxY: parseParallax(layer.ParallaxY),
		})
	}
	for i := range tmx.Groups {
		group := &tmx.Groups[i]
		w.Layers = append(w.Layers, gfx.WorldLayer{
			Name:      group.Name,
			Objects:   objectListFrom(group),
			ParallaxX: 1,
			ParallaxY: 1,
		})
	}
	ld.log.Debugf("world %s loaded, %d layers", name, len(w.Layers))
	return w, nil
}

// loadMapTilesets resolves every tileset a map references, external .tsx
// files and inline definitions alike, in selector slot order.
func (ld *Loader) loadMapTilesets(name string, tmx *tmxFile) ([]*gfx.Tileset, error) {
	n := len(tmx.Tilesets)
	if n > gfx.MaxTilemapTilesets {
		ld.log.Errorf("tilemap %s references more than %d tilesets, rest ignored",
			name, gfx.MaxTilemapTilesets)
		n = gfx.MaxTilemapTilesets
	}
	tilesets := make([]*gfx.Tileset, n)
	for i := 0; i < n; i++ {
		ref := &tmx.Tilesets[i]
		var ts *gfx.Tileset
		var err error
		if ref.Source != "" {
			ts, err = ld.LoadTileset(filepath.Join(filepath.Dir(name), ref.Source))
		} else {
			ts, err = ld.buildTileset(name, &ref.tsxBody)
		}
		if err != nil {
			return nil, err
		}
		tilesets[i] = ts
	}
	return tilesets, nil
}

// buildLayerTilemap decodes one tile layer into a tilemap, translating
// gids into per-slot tile indices and flip flags.
func (ld *Loader) buildLayerTilemap(name string, tmx *tmxFile, layer *tmxLayer, tilesets []*gfx.Tileset) (*gfx.Tilemap, error) {
	if layer.Width <= 0 || layer.Height <= 0 {
		return nil, pkgerrors.Wrap(ErrWrongFormat, name)
	}
	gids, err := decodeLayerData(&layer.Data, layer.Width*layer.Height)
	if err != nil {
		return nil, pkgerrors.Wrap(err, name)
	}

	tm, err := gfx.NewTilemap(layer.Height, layer.Width, nil, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, name)
	}
	for slot, ts := range tilesets {
		tm.SetTileset(slot, ts)
	}

	for i, gid := range gids {
		id := gid & tmxGID
		if id == 0 {
			continue
		}
		slot, first := 0, 1
		for s := range tilesets {
			if tmx.Tilesets[s].FirstGID <= int(id) && tmx.Tilesets[s].FirstGID >= first {
				slot, first = s, tmx.Tilesets[s].FirstGID
			}
		}
		tile := gfx.Tile{
			Index: uint16(int(id) - first + 1),
			Flags: uint16(slot) << 8,
		}
		if gid&tmxFlipH != 0 {
			tile.Flags |= gfx.FlagFlipX
		}
		if gid&tmxFlipV != 0 {
			tile.Flags |= gfx.FlagFlipY
		}
		if gid&tmxFlipD != 0 {
			tile.Flags |= gfx.FlagRotate
		}
		tm.SetTile(i/layer.Width, i%layer.Width, tile)
	}

	if c, ok := parseHexColor(tmx.BGColor); ok {
		tm.SetBGColor(c)
	}
	return tm, nil
}

// parseParallax reads a Tiled parallax factor attribute, defaulting to 1
// when absent or malformed.
func parseParallax(s string) float32 {
	if s == "" {
		return 1
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 1
	}
	return float32(v)
}

func decodeLayerData(data *tmxData, want int) ([]uint32, error) {
	switch data.Encoding {
	case "csv":
		fields := strings.FieldsFunc(data.Raw, func(r rune) bool {
			return r == ',' || r == '\n' || r == '\r' || r == ' ' || r == '\t'
		})
		if len(fields) != want {
			return nil, pkgerrors.Wrapf(ErrWrongFormat, "%d cells, want %d", len(fields), want)
		}
		gids := make([]uint32, want)
		for i, f := range fields {
			v, err := strconv.ParseUint(f, 10, 32)
			if err != nil {
				return nil, pkgerrors.Wrapf(ErrWrongFormat, "cell %d: %v", i, err)
			}
			gids[i] = uint32(v)
		}
		return gids, nil

	case "base64":
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data.Raw))
		if err != nil {
			return nil, pkgerrors.Wrapf(ErrWrongFormat, "base64: %v", err)
		}
		switch data.Compression {
		case "":
		case "zlib":
			r, err := zlib.NewReader(bytes.NewReader(raw))
			if err != nil {
				return nil, pkgerrors.Wrapf(ErrWrongFormat, "zlib: %v", err)
			}
			raw, err = io.ReadAll(r)
			if err != nil {
				return nil, pkgerrors.Wrapf(ErrWrongFormat, "zlib: %v", err)
			}
		case "gzip":
			r, err := gzip.NewReader(bytes.NewReader(raw))
			if err != nil {
				return nil, pkgerrors.Wrapf(ErrWrongFormat, "gzip: %v", err)
			}
			raw, err = io.ReadAll(r)
			if err != nil {
				return nil, pkgerrors.Wrapf(ErrWrongFormat, "gzip: %v", err)
			}
		default:
			return nil, pkgerrors.Wrapf(ErrWrongFormat, "compression %s", data.Compression)
		}
		if len(raw) != want*4 {
			return nil, pkgerrors.Wrapf(ErrWrongFormat, "%d bytes, want %d", len(raw), want*4)
		}
		gids := make([]uint32, want)
		for i := range gids {
			gids[i] = binary.LittleEndian.Uint32(raw[i*4:])
		}
		return gids, nil

	default:
		return nil, pkgerrors.Wrapf(ErrWrongFormat, "encoding %s", data.Encoding)
	}
}

// parseHexColor parses Tiled's #rrggbb / #aarrggbb color attributes.
func parseHexColor(s string) (gfx.Color, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 8 {
		s = s[2:]
	}
	if len(s) != 6 {
		return gfx.Color{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return gfx.Color{}, false
	}
	return gfx.RGB(uint8(v>>16), uint8(v>>8), uint8(v)), true
}
