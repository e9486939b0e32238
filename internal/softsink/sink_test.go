package softsink

import (
	"testing"

	"github.com/qxsch/freerdp-web-sub001/internal/surface"
)

func TestFillRectClipsToSurfaceBounds(t *testing.T) {
	s := New()
	surf := surface.NewSurface(1, 4, 4, 0)

	s.FillRect(surf, 2, 2, 4, 4, [4]byte{0xFF, 0x80, 0x40, 0xFF})

	// (2,2) and (3,3) filled; (0,0) untouched (still opaque black).
	if surf.Pix[(2*4+2)*4] != 0xFF {
		t.Fatalf("pixel (2,2) not filled: %v", surf.Pix[(2*4+2)*4:(2*4+2)*4+4])
	}
	if surf.Pix[0] != 0 || surf.Pix[3] != 0xFF {
		t.Fatalf("pixel (0,0) should remain opaque black, got %v", surf.Pix[0:4])
	}
}

func TestBlitRGBABlockClipsPartialOverlap(t *testing.T) {
	s := New()
	surf := surface.NewSurface(1, 4, 4, 0)
	src := make([]byte, 4*4*4)
	for i := 0; i < len(src); i += 4 {
		src[i], src[i+1], src[i+2], src[i+3] = 0x11, 0x22, 0x33, 0xFF
	}

	s.BlitRGBABlock(surf, 2, 2, src, 4, 4) // only top-left 2x2 of src fits

	off := (2*4 + 2) * 4
	if surf.Pix[off] != 0x11 {
		t.Fatalf("pixel (2,2) = %v, want blitted", surf.Pix[off:off+4])
	}
	// Bottom-right corner of src (would land at (5,5)) must not panic and
	// must not have been written anywhere outside bounds.
}

func TestSelfBlitOverlappingRegionsReadsBeforeWrite(t *testing.T) {
	s := New()
	surf := surface.NewSurface(1, 4, 4, 0)
	// gradient: pixel(x,y).R = x+y
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			off := (y*4 + x) * 4
			surf.Pix[off] = byte(x + y)
			surf.Pix[off+3] = 0xFF
		}
	}

	preShift := surf.Pix[(2*4+2)*4] // value at (2,2) before blit

	s.BlitRect(surf, 1, 1, surf, 0, 0, 3, 3)

	got := surf.Pix[(3*4+3)*4]
	if got != preShift {
		t.Fatalf("pixel (3,3) after self-blit = %d, want pre-blit (2,2) value %d", got, preShift)
	}
}

func TestReadRectReturnsOwnedCopyNotPooled(t *testing.T) {
	s := New()
	surf := surface.NewSurface(1, 2, 2, 0)
	surf.Pix[0] = 0xAB

	block := s.ReadRect(surf, 0, 0, 2, 2)
	block[0] = 0xCD

	block2 := s.ReadRect(surf, 0, 0, 2, 2)
	if block2[0] != 0xAB {
		t.Fatalf("ReadRect block2[0] = %#x, want untouched 0xAB (mutation of first copy leaked)", block2[0])
	}
}

func TestComposeToPrimaryBeforeResizeIsNoOp(t *testing.T) {
	s := New()
	surf := surface.NewSurface(1, 2, 2, 0)
	s.ComposeToPrimary(surf) // must not panic
	if s.Primary() != nil {
		t.Fatal("Primary() should be nil before any ResizePrimary call")
	}
}

func TestResizePrimaryThenCompose(t *testing.T) {
	s := New()
	s.ResizePrimary(4, 4)
	surf := surface.NewSurface(1, 4, 4, 0)
	for i := range surf.Pix {
		surf.Pix[i] = 0x7F
	}

	s.ComposeToPrimary(surf)

	if s.Primary().Pix[0] != 0x7F {
		t.Fatalf("primary pixel = %#x, want 0x7F composed", s.Primary().Pix[0])
	}
}
