package clearcodec

import (
	"testing"

	"github.com/qxsch/freerdp-web-sub001/internal/surface"
)

func TestDecodeRLEXRunAndSuite(t *testing.T) {
	// palette: [0]=BGR(1,2,3), [1]=BGR(4,5,6)
	// record1: stopIndex=0,suiteDepth=0 (tmp=0), runLength=2 -> 2 copies of idx0 + 1 suite pixel (idx0)
	// record2: stopIndex=1,suiteDepth=0 (tmp=1), runLength=0 -> 1 suite pixel (idx1)
	// total = 2+1+0+1 = 4 pixels, matching a 2x2 tile.
	data := []byte{
		2,          // paletteCount
		1, 2, 3,    // palette[0] BGR
		4, 5, 6,    // palette[1] BGR
		0, 2, // record1: tmp=0, runLength=2
		1, 0, // record2: tmp=1, runLength=0
	}
	surf := surface.NewSurface(1, 2, 2, 0x20)
	if err := decodeRLEX(data, surf, 0, 0, 2, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][4]byte{{3, 2, 1, 0xFF}, {3, 2, 1, 0xFF}, {3, 2, 1, 0xFF}, {6, 5, 4, 0xFF}}
	for i, w := range want {
		o := i * 4
		got := [4]byte{surf.Pix[o], surf.Pix[o+1], surf.Pix[o+2], surf.Pix[o+3]}
		if got != w {
			t.Fatalf("pixel %d: want %v got %v", i, w, got)
		}
	}
}

func TestDecodeRLEXPaletteCountOutOfRange(t *testing.T) {
	surf := surface.NewSurface(1, 1, 1, 0x20)
	if err := decodeRLEX([]byte{0}, surf, 0, 0, 1, 1); err != ErrPaletteRange {
		t.Fatalf("expected ErrPaletteRange, got %v", err)
	}
}

func TestDecodeRLEXPixelCountMismatch(t *testing.T) {
	data := []byte{
		1,       // paletteCount=1
		1, 2, 3, // palette[0]
		0, 1, // record: tmp=0 (stop=0,suite=0), runLength=1 -> only 2 pixels total, want 4
	}
	surf := surface.NewSurface(1, 2, 2, 0x20)
	if err := decodeRLEX(data, surf, 0, 0, 2, 2); err != ErrPixelCountMismatch {
		t.Fatalf("expected ErrPixelCountMismatch, got %v", err)
	}
}
