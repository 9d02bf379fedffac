package loader

import (
	pkgerrors "github.com/pkg/errors"

	"github.com/tilengo/tilengo/internal/gfx"
)

// LoadPalette reads an Adobe .act color table: 768 raw RGB bytes, or 772
// with a trailing big-endian entry count.
func (ld *Loader) LoadPalette(name string) (*gfx.Palette, error) {
	data, err := ld.readFile(name)
	if err != nil {
		return nil, err
	}
	num := gfx.MaxPaletteEntries
	switch len(data) {
	case 768:
	case 772:
		if n := int(data[768])<<8 | int(data[769]); n > 0 && n <= gfx.MaxPaletteEntries {
			num = n
		}
	default:
		return nil, pkgerrors.Wrapf(ErrWrongFormat, "%s: %d bytes", name, len(data))
	}

	pal, err := gfx.NewPalette(num)
	if err != nil {
		return nil, pkgerrors.Wrap(err, name)
	}
	for i := 0; i < num; i++ {
		pal.SetColor(i, gfx.RGB(data[i*3], data[i*3+1], data[i*3+2]))
	}
	return pal, nil
}
