// Package loader reads the on-disk asset formats into gfx resources:
// Tiled tilemaps (.tmx) and tilesets (.tsx), spritesets (.png plus .txt
// atlas), Adobe palettes (.act), sequence packs (.sqx) and indexed
// bitmaps (.png, .bmp). Assets resolve against a configurable base path,
// optionally backed by an encrypted resource pack archive.
package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/tilengo/tilengo/pkg/log"
)

var (
	// ErrFileNotFound is returned when an asset is in neither the load
	// path nor the open resource pack.
	ErrFileNotFound = errors.New("loader: file not found")
	// ErrWrongFormat is returned when an asset file cannot be parsed.
	ErrWrongFormat = errors.New("loader: wrong file format")
)

// Loader resolves and parses asset files.
type Loader struct {
	path string
	pack *resourcePack
	log  log.Logger
}

// Opt configures a Loader during New.
type Opt func(*Loader)

// WithLogger installs a logger; the default discards everything.
func WithLogger(l log.Logger) Opt {
	return func(ld *Loader) {
		ld.log = l
	}
}

// New creates a loader resolving assets against the current directory.
func New(opts ...Opt) *Loader {
	ld := &Loader{log: log.NewNullLogger()}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// SetLoadPath sets the base directory prepended to asset names.
func (ld *Loader) SetLoadPath(path string) {
	ld.path = path
}

// OpenResourcePack opens a 7z asset archive, optionally encrypted with
// key. While a pack is open, assets resolve inside it first and fall back
// to the filesystem.
func (ld *Loader) OpenResourcePack(path, key string) error {
	pack, err := openResourcePack(path, key)
	if err != nil {
		return pkgerrors.Wrapf(err, "open resource pack %s", path)
	}
	if ld.pack != nil {
		ld.pack.close()
	}
	ld.pack = pack
	ld.log.Infof("resource pack %s opened, %d files", path, pack.len())
	return nil
}

// CloseResourcePack closes the open pack, if any.
func (ld *Loader) CloseResourcePack() {
	if ld.pack != nil {
		ld.pack.close()
		ld.pack = nil
	}
}

// readFile resolves name against the pack, then the load path.
func (ld *Loader) readFile(name string) ([]byte, error) {
	if ld.pack != nil {
		if data, err := ld.pack.read(name); err == nil {
			return data, nil
		}
	}
	full := name
	if ld.path != "" {
		full = filepath.Join(ld.path, name)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.Wrap(ErrFileNotFound, name)
		}
		return nil, pkgerrors.Wrapf(err, "read %s", name)
	}
	return data, nil
}

// sibling replaces the extension of an asset name, keeping its directory.
func sibling(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}
