package compositor_test

import (
	"encoding/binary"
	"testing"

	"github.com/qxsch/freerdp-web-sub001/internal/compositor"
	"github.com/qxsch/freerdp-web-sub001/internal/softsink"
	"github.com/qxsch/freerdp-web-sub001/internal/wire"
)

func newTestCompositor() (*compositor.Compositor, *softsink.Sink) {
	sink := softsink.New()
	c := compositor.New(sink, softsink.NoopVideoDelegate{}, softsink.NoopImageDelegate{})
	return c, sink
}

func u16le(v uint16) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); return b }
func i16le(v int16) []byte  { return u16le(uint16(v)) }
func u32le(v uint32) []byte { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); return b }

func msg(magic wire.Magic, body ...[]byte) []byte {
	out := append([]byte{}, magic[:]...)
	for _, b := range body {
		out = append(out, b...)
	}
	return out
}

func createSurfaceMsg(id, w, h, pf uint16) []byte {
	return msg(wire.MagicCreateSurface, u16le(id), u16le(w), u16le(h), u16le(pf))
}
func deleteSurfaceMsg(id uint16) []byte { return msg(wire.MagicDeleteSurface, u16le(id)) }
func mapSurfaceMsg(id, x, y uint16) []byte {
	return msg(wire.MagicMapSurface, u16le(id), u16le(x), u16le(y))
}
func startFrameMsg(id uint32) []byte { return msg(wire.MagicStartFrame, u32le(id)) }
func endFrameMsg(id uint32) []byte   { return msg(wire.MagicEndFrame, u32le(id)) }
func solidFillMsg(frameID uint32, id, x, y, w, h uint16, color uint32) []byte {
	return msg(wire.MagicSolidFill, u32le(frameID), u16le(id), u16le(x), u16le(y), u16le(w), u16le(h), u32le(color))
}
func s2chMsg(frameID uint32, id, slot uint16, x, y int16, w, h uint16) []byte {
	return msg(wire.MagicSurfaceToCache, u32le(frameID), u16le(id), u16le(slot), i16le(x), i16le(y), u16le(w), u16le(h))
}
func c2sfMsg(frameID uint32, id, slot uint16, dx, dy int16) []byte {
	return msg(wire.MagicCacheToSurface, u32le(frameID), u16le(id), u16le(slot), i16le(dx), i16le(dy))
}
func resetGraphicsMsg(w, h uint16) []byte { return msg(wire.MagicResetGraphics, u16le(w), u16le(h)) }
func s2sfMsg(frameID uint32, srcID, dstID, sx, sy, sw, sh, dx, dy uint16) []byte {
	return msg(wire.MagicSurfaceToSurface, u32le(frameID), u16le(srcID), u16le(dstID),
		u16le(sx), u16le(sy), u16le(sw), u16le(sh), u16le(dx), u16le(dy))
}

func TestScenarioS1CreateFillFrame(t *testing.T) {
	c, sink := newTestCompositor()
	sink.ResizePrimary(4, 4)

	c.Dispatch(createSurfaceMsg(1, 4, 4, wire.PixelFormatXRGB8888))
	c.Dispatch(mapSurfaceMsg(1, 0, 0))
	c.Dispatch(startFrameMsg(7))
	c.Dispatch(solidFillMsg(7, 1, 0, 0, 4, 4, 0x00FF8040))
	c.Dispatch(endFrameMsg(7))

	primary := sink.Primary()
	for i := 0; i < 16; i++ {
		off := i * 4
		if primary.Pix[off] != 0xFF || primary.Pix[off+1] != 0x80 || primary.Pix[off+2] != 0x40 || primary.Pix[off+3] != 0xFF {
			t.Fatalf("pixel %d = %v, want [255 128 64 255]", i, primary.Pix[off:off+4])
		}
	}

	ack := c.LastAck()
	if ack.FrameID != 7 || ack.TotalFramesDecoded != 1 {
		t.Fatalf("ack = %+v, want frameId=7 total=1", ack)
	}
}

func TestScenarioS2CacheSurvivesDelete(t *testing.T) {
	c, _ := newTestCompositor()

	c.Dispatch(createSurfaceMsg(1, 2, 2, wire.PixelFormatXRGB8888))
	c.Dispatch(startFrameMsg(1))
	c.Dispatch(solidFillMsg(1, 1, 0, 0, 2, 2, 0x00FFFFFF))
	c.Dispatch(endFrameMsg(1))
	c.Dispatch(s2chMsg(1, 1, 5, 0, 0, 2, 2))
	c.Dispatch(deleteSurfaceMsg(1))

	c.Dispatch(createSurfaceMsg(2, 2, 2, wire.PixelFormatXRGB8888))
	c.Dispatch(startFrameMsg(2))
	c.Dispatch(c2sfMsg(2, 2, 5, 0, 0))
	c.Dispatch(endFrameMsg(2))

	surf, ok := c.Registry().Get(2)
	if !ok {
		t.Fatal("surface 2 missing")
	}
	if surf.Pix[0] != 0xFF || surf.Pix[1] != 0xFF || surf.Pix[2] != 0xFF {
		t.Fatalf("pixel (0,0) on surface 2 = %v, want white", surf.Pix[0:4])
	}
}

func TestScenarioS3ResetGraphicsPreservesCacheResizesPrimary(t *testing.T) {
	c, sink := newTestCompositor()
	sink.ResizePrimary(2, 2)

	c.Dispatch(createSurfaceMsg(1, 2, 2, wire.PixelFormatXRGB8888))
	c.Dispatch(startFrameMsg(1))
	c.Dispatch(solidFillMsg(1, 1, 0, 0, 2, 2, 0x00FFFFFF))
	c.Dispatch(endFrameMsg(1))
	c.Dispatch(s2chMsg(1, 1, 5, 0, 0, 2, 2))

	c.Dispatch(resetGraphicsMsg(8, 8))

	if c.Registry().Len() != 0 {
		t.Fatalf("registry should be empty after ResetGraphics, has %d", c.Registry().Len())
	}
	primary := sink.Primary()
	if primary.Width != 8 || primary.Height != 8 {
		t.Fatalf("primary = %dx%d, want 8x8", primary.Width, primary.Height)
	}
	for i := 0; i < len(primary.Pix); i += 4 {
		if primary.Pix[i] != 0 || primary.Pix[i+1] != 0 || primary.Pix[i+2] != 0 {
			t.Fatalf("resized primary not black at pixel %d: %v", i/4, primary.Pix[i:i+4])
		}
	}

	if _, err := c.Cache().Get(5); err != nil {
		t.Fatalf("cache slot 5 should survive ResetGraphics: %v", err)
	}

	c.Dispatch(createSurfaceMsg(3, 8, 8, wire.PixelFormatXRGB8888))
	c.Dispatch(startFrameMsg(3))
	c.Dispatch(c2sfMsg(3, 3, 5, 1, 1))
	c.Dispatch(endFrameMsg(3))

	surf3, _ := c.Registry().Get(3)
	off := (1*8 + 1) * 4
	if surf3.Pix[off] != 0xFF {
		t.Fatalf("pixel (1,1) on surface 3 = %v, want white", surf3.Pix[off:off+4])
	}
}

func TestScenarioS5SelfBlitOverlap(t *testing.T) {
	c, _ := newTestCompositor()
	c.Dispatch(createSurfaceMsg(1, 4, 4, wire.PixelFormatXRGB8888))

	surf, _ := c.Registry().Get(1)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			off := (y*4 + x) * 4
			surf.Pix[off] = byte(x + y)
			surf.Pix[off+3] = 0xFF
		}
	}
	preShift := surf.Pix[(2*4+2)*4]

	c.Dispatch(startFrameMsg(1))
	c.Dispatch(s2sfMsg(1, 1, 1, 0, 0, 3, 3, 1, 1))
	c.Dispatch(endFrameMsg(1))

	got := surf.Pix[(3*4+3)*4]
	if got != preShift {
		t.Fatalf("post self-blit pixel (3,3) = %d, want pre-blit (2,2) = %d", got, preShift)
	}
}

func TestUnknownSurfaceOpsAreNoOps(t *testing.T) {
	c, _ := newTestCompositor()
	c.Dispatch(startFrameMsg(1))
	c.Dispatch(solidFillMsg(1, 99, 0, 0, 2, 2, 0xFFFFFFFF))
	c.Dispatch(deleteSurfaceMsg(99))
	c.Dispatch(c2sfMsg(1, 99, 0, 0, 0))
	c.Dispatch(endFrameMsg(1))

	if c.Registry().Len() != 0 {
		t.Fatal("no surfaces should exist")
	}
}

func TestFrameAckMonotonicAcrossFrames(t *testing.T) {
	c, sink := newTestCompositor()
	sink.ResizePrimary(2, 2)
	c.Dispatch(createSurfaceMsg(1, 2, 2, wire.PixelFormatXRGB8888))
	c.Dispatch(mapSurfaceMsg(1, 0, 0))

	for i := uint32(1); i <= 3; i++ {
		c.Dispatch(startFrameMsg(i))
		c.Dispatch(solidFillMsg(i, 1, 0, 0, 1, 1, 0x00000000))
		c.Dispatch(endFrameMsg(i))
		ack := c.LastAck()
		if ack.TotalFramesDecoded != i {
			t.Fatalf("frame %d: TotalFramesDecoded = %d, want %d", i, ack.TotalFramesDecoded, i)
		}
	}
}

func TestCacheToSurfaceMissLogsAndNoOps(t *testing.T) {
	c, _ := newTestCompositor()
	c.Dispatch(createSurfaceMsg(1, 2, 2, wire.PixelFormatXRGB8888))
	c.Dispatch(startFrameMsg(1))
	c.Dispatch(c2sfMsg(1, 1, 42, 0, 0)) // slot 42 never written
	c.Dispatch(endFrameMsg(1))

	surf, _ := c.Registry().Get(1)
	if surf.Pix[3] != 0xFF || surf.Pix[0] != 0 {
		t.Fatalf("surface should remain untouched opaque black, got %v", surf.Pix[0:4])
	}
}

func TestUnparseableMessageDropped(t *testing.T) {
	c, _ := newTestCompositor()
	if c.Dispatch([]byte{'X', 'X', 'X', 'X'}) {
		t.Fatal("unknown magic should report unrecognized")
	}
	if c.Dispatch([]byte{'S'}) {
		t.Fatal("too-short message should report unrecognized")
	}
}

func TestVideoFrameWithNoDelegateFails(t *testing.T) {
	sink := softsink.New()
	c := compositor.New(sink, nil, nil)
	c.Dispatch(createSurfaceMsg(1, 4, 4, wire.PixelFormatXRGB8888))

	frame := msg(wire.MagicVideoFrame, u32le(1), u16le(1), u16le(0), []byte{0}, i16le(0), i16le(0), u16le(4), u16le(4), u32le(0), u32le(0))
	c.Dispatch(frame)

	snap := c.Metrics.Snapshot()
	if snap.TilesFailed != 1 {
		t.Fatalf("TilesFailed = %d, want 1", snap.TilesFailed)
	}
}

func TestVideoFrameWithLegacyProgressiveCodecIDRoutesToProgressiveDecoder(t *testing.T) {
	sink := softsink.New()
	c := compositor.New(sink, nil, nil) // no video delegate configured at all
	c.Dispatch(createSurfaceMsg(1, 4, 4, wire.PixelFormatXRGB8888))

	frame := msg(wire.MagicVideoFrame, u32le(1), u16le(1), u16le(wire.VideoCodecIDProgressiveLegacy),
		[]byte{0}, i16le(0), i16le(0), u16le(4), u16le(4), u32le(0), u32le(0))
	c.Dispatch(frame)

	snap := c.Metrics.Snapshot()
	if snap.TilesFailed != 0 {
		t.Fatalf("TilesFailed = %d, want 0 (should route to progressive decoder, not the nil video delegate)", snap.TilesFailed)
	}
	if snap.TilesDecoded != 1 {
		t.Fatalf("TilesDecoded = %d, want 1", snap.TilesDecoded)
	}
}

func TestWebPTileNoopDelegateReportsUnsupported(t *testing.T) {
	c, _ := newTestCompositor()
	c.Dispatch(createSurfaceMsg(1, 4, 4, wire.PixelFormatXRGB8888))

	frame := msg(wire.MagicWebPTile, u32le(1), u16le(1), u16le(0), u16le(0), u16le(4), u16le(4), u32le(0))
	c.Dispatch(frame)

	snap := c.Metrics.Snapshot()
	if snap.TilesFailed != 1 {
		t.Fatalf("TilesFailed = %d, want 1 (noop delegate always reports unsupported)", snap.TilesFailed)
	}
}
