package loader

import (
	"bytes"
	"image"
	"image/png"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/image/bmp"

	"github.com/tilengo/tilengo/internal/gfx"
)

// LoadBitmap reads an indexed .png or .bmp image into a bitmap with its
// palette attached. True-color images are rejected: the render pipeline
// works on palette indexes.
func (ld *Loader) LoadBitmap(name string) (*gfx.Bitmap, error) {
	data, err := ld.readFile(name)
	if err != nil {
		return nil, err
	}
	bm, err := decodeBitmap(data, name)
	if err != nil {
		return nil, err
	}
	ld.log.Debugf("bitmap %s loaded, %dx%d", name, bm.Width(), bm.Height())
	return bm, nil
}

func decodeBitmap(data []byte, name string) (*gfx.Bitmap, error) {
	var (
		img image.Image
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		img, err = png.Decode(bytes.NewReader(data))
	case ".bmp":
		img, err = bmp.Decode(bytes.NewReader(data))
	default:
		return nil, pkgerrors.Wrap(ErrWrongFormat, name)
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(ErrWrongFormat, "%s: %v", name, err)
	}
	pix, ok := img.(*image.Paletted)
	if !ok {
		return nil, pkgerrors.Wrapf(ErrWrongFormat, "%s: not an indexed image", name)
	}

	w, h := pix.Rect.Dx(), pix.Rect.Dy()
	bm, err := gfx.NewBitmap(w, h)
	if err != nil {
		return nil, pkgerrors.Wrap(err, name)
	}
	if err := bm.SetRows(0, 0, w, h, pix.Pix, pix.Stride); err != nil {
		return nil, pkgerrors.Wrap(err, name)
	}

	pal, err := gfx.NewPalette(len(pix.Palette))
	if err != nil {
		return nil, pkgerrors.Wrap(err, name)
	}
	for i, c := range pix.Palette {
		r, g, b, _ := c.RGBA()
		pal.SetColor(i, gfx.RGB(uint8(r>>8), uint8(g>>8), uint8(b>>8)))
	}
	bm.SetPalette(pal)
	return bm, nil
}
