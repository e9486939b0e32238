package clearcodec

import (
	"testing"

	"github.com/qxsch/freerdp-web-sub001/internal/surface"
)

func TestDecodeUncompressedBGR24(t *testing.T) {
	surf := surface.NewSurface(1, 2, 1, 0x20)
	data := []byte{1, 2, 3, 4, 5, 6} // 2 BGR pixels
	if err := decodeUncompressedBGR24(data, surf, 0, 0, 2, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{3, 2, 1, 0xFF, 6, 5, 4, 0xFF}
	for i := range want {
		if surf.Pix[i] != want[i] {
			t.Fatalf("mismatch at %d: want %v got %v", i, want, surf.Pix)
		}
	}
}

func TestDecodeUncompressedBGR24SizeMismatch(t *testing.T) {
	surf := surface.NewSurface(1, 2, 1, 0x20)
	if err := decodeUncompressedBGR24([]byte{1, 2, 3}, surf, 0, 0, 2, 1); err != ErrUncompressedSize {
		t.Fatalf("expected ErrUncompressedSize, got %v", err)
	}
}

func TestDecodeSubcodecsRecordOutOfTileBounds(t *testing.T) {
	surf := surface.NewSurface(1, 10, 10, 0x20)
	// record: xStart=5,yStart=0,width=2,height=1 inside a 4x4 tile -> out of bounds
	data := []byte{
		5, 0, 0, 0, // xStart,yStart
		2, 0, 1, 0, // width,height
		0, 0, 0, 0, // bitmapDataByteCount
		0, // subcodecId
	}
	if err := decodeSubcodecs(data, surf, 0, 0, 4, 4); err != ErrSubcodecBounds {
		t.Fatalf("expected ErrSubcodecBounds, got %v", err)
	}
}

func TestDecodeSubcodecsUnknownID(t *testing.T) {
	surf := surface.NewSurface(1, 10, 10, 0x20)
	data := []byte{
		0, 0, 0, 0,
		1, 0, 1, 0,
		0, 0, 0, 0,
		9, // unknown subcodec id
	}
	if err := decodeSubcodecs(data, surf, 0, 0, 4, 4); err != ErrSubcodecUnknown {
		t.Fatalf("expected ErrSubcodecUnknown, got %v", err)
	}
}
