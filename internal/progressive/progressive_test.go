package progressive

import (
	"context"
	"encoding/binary"
	"testing"
	"time"
)

func tileFullMessage(xIdx, yIdx uint16, y, co, cg int16, clipRects [][4]uint16) []byte {
	buf := []byte{msgTileFull}
	buf = appendU16(buf, xIdx)
	buf = appendU16(buf, yIdx)
	buf = append(buf, byte(len(clipRects)))
	for _, rect := range clipRects {
		for _, v := range rect {
			buf = appendU16(buf, v)
		}
	}
	for _, plane := range [3]int16{y, co, cg} {
		for i := 0; i < TilePixels; i++ {
			buf = appendU16(buf, uint16(plane))
		}
	}
	return buf
}

func tileUpgradeMessage(xIdx, yIdx uint16, plane byte, index uint16, delta int16) []byte {
	buf := []byte{msgTileUpgrade}
	buf = appendU16(buf, xIdx)
	buf = appendU16(buf, yIdx)
	buf = append(buf, 0) // clipRectCount
	buf = appendU16(buf, 1)
	buf = append(buf, plane)
	buf = appendU16(buf, index)
	buf = appendU16(buf, uint16(delta))
	return buf
}

func appendU16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func TestProgressiveCreateDeleteSurfaceIdempotent(t *testing.T) {
	s := NewSession()
	s.CreateSurface(1, 128, 128)
	if w, h, ok := s.GridSize(1); !ok || w != 2 || h != 2 {
		t.Fatalf("GridSize = (%d,%d,%v), want (2,2,true)", w, h, ok)
	}
	s.DeleteSurface(1)
	if _, _, ok := s.GridSize(1); ok {
		t.Fatal("expected surface gone after delete")
	}
	s.DeleteSurface(1) // no-op, must not panic
}

func TestProgressiveDecompressUnknownSurface(t *testing.T) {
	s := NewSession()
	if err := s.Decompress(99, []byte{msgTileFull}); err != ErrUnknownSurface {
		t.Fatalf("err = %v, want ErrUnknownSurface", err)
	}
}

func TestProgressiveTileFirstUpdatesUpdatedList(t *testing.T) {
	s := NewSession()
	s.CreateSurface(1, 64, 64)

	msg := tileFullMessage(0, 0, 100, 10, -10, nil)
	if err := s.Decompress(1, msg); err != nil {
		t.Fatalf("Decompress: %v", err)
	}

	updated, ok := s.UpdatedTiles(1)
	if !ok || len(updated) != 1 || updated[0].Index != 0 {
		t.Fatalf("updated = %+v, ok=%v", updated, ok)
	}

	data, ok := s.TileData(1, 0, 0)
	if !ok || len(data) != TileRGBASize {
		t.Fatalf("TileData ok=%v len=%d", ok, len(data))
	}
	// y=100, co=10, cg=-10 -> r=100+10-(-10)=120, g=100+(-10)=90, b=100-10-(-10)=100
	if data[0] != 120 || data[1] != 90 || data[2] != 100 || data[3] != 0xFF {
		t.Fatalf("pixel = %v, want [120 90 100 255]", data[0:4])
	}
}

func TestProgressiveTileUpgradeAppliesDelta(t *testing.T) {
	s := NewSession()
	s.CreateSurface(1, 64, 64)

	first := tileFullMessage(0, 0, 50, 0, 0, nil)
	if err := s.Decompress(1, first); err != nil {
		t.Fatalf("Decompress first: %v", err)
	}

	upgrade := tileUpgradeMessage(0, 0, planeY, 0, 25)
	if err := s.Decompress(1, upgrade); err != nil {
		t.Fatalf("Decompress upgrade: %v", err)
	}

	data, _ := s.TileData(1, 0, 0)
	if data[0] != 75 || data[1] != 75 || data[2] != 75 {
		t.Fatalf("pixel after upgrade = %v, want [75 75 75 ...]", data[0:4])
	}
}

func TestProgressiveTileOutOfGridErrors(t *testing.T) {
	s := NewSession()
	s.CreateSurface(1, 64, 64)

	msg := tileFullMessage(5, 5, 0, 0, 0, nil)
	if err := s.Decompress(1, msg); err != ErrTileOutOfGrid {
		t.Fatalf("err = %v, want ErrTileOutOfGrid", err)
	}
}

func TestProgressiveClipRectHeuristicThreshold(t *testing.T) {
	s := NewSession()
	s.CreateSurface(1, 64, 64)

	rects := make([][4]uint16, 20)
	msg := tileFullMessage(0, 0, 1, 0, 0, rects)
	if err := s.Decompress(1, msg); err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	updated, _ := s.UpdatedTiles(1)
	if updated[0].ClipRectCount <= ClipRectHeuristicThreshold {
		t.Fatalf("clipRectCount = %d, want > %d", updated[0].ClipRectCount, ClipRectHeuristicThreshold)
	}
}

func TestProgressiveTileDataCopyOnRead(t *testing.T) {
	s := NewSession()
	s.CreateSurface(1, 64, 64)
	_ = s.Decompress(1, tileFullMessage(0, 0, 10, 0, 0, nil))

	data, _ := s.TileData(1, 0, 0)
	data[0] = 0xAB

	data2, _ := s.TileData(1, 0, 0)
	if data2[0] == 0xAB {
		t.Fatal("TileData must return an independent copy each call")
	}
}

func TestProgressivePrewarmUpdatedWithWorkers(t *testing.T) {
	s := NewSessionWithWorkers(4, 16)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Close(ctx)
	}()

	s.CreateSurface(1, 256, 256)
	var msg []byte
	for ty := 0; ty < 4; ty++ {
		for tx := 0; tx < 4; tx++ {
			msg = append(msg, tileFullMessage(uint16(tx), uint16(ty), 40, 0, 0, nil)...)
		}
	}
	if err := s.Decompress(1, msg); err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	s.PrewarmUpdated(1)

	data, ok := s.TileData(1, 2, 2)
	if !ok || data[0] != 40 {
		t.Fatalf("TileData after prewarm = ok=%v px=%v", ok, data[0:4])
	}
}
