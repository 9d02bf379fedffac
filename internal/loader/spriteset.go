package loader

import (
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/tilengo/tilengo/internal/gfx"
)

// LoadSpriteset reads a spriteset: an indexed atlas image plus a sibling
// .txt file describing the pictures, one per line:
//
//	name = x y w h
func (ld *Loader) LoadSpriteset(name string) (*gfx.Spriteset, error) {
	atlas, err := ld.LoadBitmap(name)
	if err != nil {
		return nil, err
	}
	desc, err := ld.readFile(sibling(name, ".txt"))
	if err != nil {
		return nil, err
	}

	var entries []gfx.SpriteEntry
	for n, line := range strings.Split(string(desc), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entry, err := parseSpriteEntry(line)
		if err != nil {
			return nil, pkgerrors.Wrapf(ErrWrongFormat, "%s line %d: %v", name, n+1, err)
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, pkgerrors.Wrapf(ErrWrongFormat, "%s: no pictures", name)
	}

	ss, err := gfx.NewSpriteset(atlas, entries)
	if err != nil {
		return nil, pkgerrors.Wrap(err, name)
	}
	ld.log.Debugf("spriteset %s loaded, %d pictures", name, len(entries))
	return ss, nil
}

func parseSpriteEntry(line string) (gfx.SpriteEntry, error) {
	name, rect, ok := strings.Cut(line, "=")
	if !ok {
		return gfx.SpriteEntry{}, pkgerrors.New("missing '='")
	}
	fields := strings.Fields(rect)
	if len(fields) != 4 {
		return gfx.SpriteEntry{}, pkgerrors.Errorf("%d fields, want 4", len(fields))
	}
	var v [4]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return gfx.SpriteEntry{}, err
		}
		v[i] = n
	}
	return gfx.SpriteEntry{
		Name: strings.TrimSpace(name),
		X:    v[0], Y: v[1], W: v[2], H: v[3],
	}, nil
}
