package gfx

import (
	"errors"
	"testing"
)

func TestPaletteBounds(t *testing.T) {
	if _, err := NewPalette(0); !errors.Is(err, ErrWrongSize) {
		t.Errorf("expected ErrWrongSize, got %v", err)
	}
	if _, err := NewPalette(MaxPaletteEntries + 1); !errors.Is(err, ErrWrongSize) {
		t.Errorf("expected ErrWrongSize, got %v", err)
	}
	p, err := NewPalette(16)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetColor(16, RGB(1, 2, 3)); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := p.Color(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestPaletteArithmetic(t *testing.T) {
	p, _ := NewPalette(4)
	p.SetColor(0, RGB(10, 200, 128))
	p.SetColor(1, RGB(250, 100, 0))

	if err := p.AddColor(0, 2, RGB(20, 100, 100)); err != nil {
		t.Fatal(err)
	}
	if c, _ := p.Color(0); c != RGB(30, 255, 228) {
		t.Errorf("add: got %v", c)
	}
	if c, _ := p.Color(1); c != RGB(255, 200, 100) {
		t.Errorf("add should saturate: got %v", c)
	}

	p.SetColor(0, RGB(10, 200, 128))
	if err := p.SubColor(0, 1, RGB(20, 100, 100)); err != nil {
		t.Fatal(err)
	}
	if c, _ := p.Color(0); c != RGB(0, 100, 28) {
		t.Errorf("sub should clamp at zero: got %v", c)
	}

	p.SetColor(0, RGB(255, 128, 0))
	if err := p.ModColor(0, 1, RGB(128, 255, 200)); err != nil {
		t.Fatal(err)
	}
	if c, _ := p.Color(0); c != RGB(128, 128, 0) {
		t.Errorf("mod: got %v", c)
	}
}

func TestPaletteMix(t *testing.T) {
	a, _ := NewPalette(2)
	b, _ := NewPalette(2)
	a.SetColor(0, RGB(0, 100, 200))
	b.SetColor(0, RGB(200, 100, 0))

	dst, _ := NewPalette(2)
	if err := dst.Mix(a, b, 128); err != nil {
		t.Fatal(err)
	}
	c, _ := dst.Color(0)
	if c[0] < 99 || c[0] > 101 || c[1] != 100 || c[2] < 99 || c[2] > 101 {
		t.Errorf("50%% mix: got %v", c)
	}
}

func TestPaletteRotate(t *testing.T) {
	p, _ := NewPalette(8)
	for i := 0; i < 8; i++ {
		p.SetColor(i, RGB(uint8(i), 0, 0))
	}

	// forward moves each entry one slot up, the last wraps to first
	if err := p.Rotate(2, 4, true); err != nil {
		t.Fatal(err)
	}
	want := []uint8{0, 1, 5, 2, 3, 4, 6, 7}
	for i, w := range want {
		if c, _ := p.Color(i); c[0] != w {
			t.Errorf("entry %d: got %d, want %d", i, c[0], w)
		}
	}

	// rotating back restores the original order
	if err := p.Rotate(2, 4, false); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 8; i++ {
		if c, _ := p.Color(i); c[0] != uint8(i) {
			t.Errorf("entry %d: got %d after round trip", i, c[0])
		}
	}

	if err := p.Rotate(6, 4, true); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("range past end: got %v", err)
	}
}

func TestPaletteInterpolateRange(t *testing.T) {
	a, _ := NewPalette(4)
	b, _ := NewPalette(4)
	a.SetColor(1, RGB(0, 0, 100))
	b.SetColor(1, RGB(200, 100, 0))

	p, _ := NewPalette(4)
	if err := p.InterpolateRange(a, b, 0, 4, 1, 2); err != nil {
		t.Fatal(err)
	}
	c, _ := p.Color(1)
	if c != RGB(100, 50, 50) {
		t.Errorf("midpoint should be the mean: got %v", c)
	}

	if err := p.InterpolateRange(a, b, 0, 4, 0, 2); err != nil {
		t.Fatal(err)
	}
	if c, _ := p.Color(1); c != RGB(0, 0, 100) {
		t.Errorf("weight 0 should equal a: got %v", c)
	}
}
