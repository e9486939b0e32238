package compositor

import (
	"github.com/qxsch/freerdp-web-sub001/internal/logging"
	"github.com/qxsch/freerdp-web-sub001/internal/progressive"
	"github.com/qxsch/freerdp-web-sub001/internal/surface"
	"github.com/qxsch/freerdp-web-sub001/internal/wire"
)

func (c *Compositor) opCreateSurface(m *wire.CreateSurface) {
	if _, exists := c.registry.Get(m.ID); exists {
		_ = c.registry.Delete(m.ID)
		c.prog.DeleteSurface(m.ID)
	}
	if _, err := c.registry.Create(m.ID, m.Width, m.Height, m.PixelFormat); err != nil {
		log.Warn("create surface failed", logging.KeySurfaceID, m.ID, logging.KeyError, err)
		return
	}
	c.prog.CreateSurface(m.ID, m.Width, m.Height)
}

func (c *Compositor) opDeleteSurface(m *wire.DeleteSurface) {
	if err := c.registry.Delete(m.ID); err != nil {
		log.Warn("delete unknown surface", logging.KeySurfaceID, m.ID)
		return
	}
	c.prog.DeleteSurface(m.ID)
	delete(c.touched, m.ID)
}

func (c *Compositor) opMapSurface(m *wire.MapSurface) {
	if err := c.registry.MapToOutput(m.ID, m.OutX, m.OutY); err != nil {
		log.Warn("map unknown surface", logging.KeySurfaceID, m.ID)
	}
}

func (c *Compositor) opStartFrame(m *wire.StartFrame) {
	c.inFrame = true
	c.currentFrameID = m.FrameID
	for id := range c.touched {
		delete(c.touched, id)
	}
}

func (c *Compositor) opEndFrame(m *wire.EndFrame) {
	if primary, _, _, ok := c.registry.Primary(); ok {
		if _, touchedPrimary := c.touched[primary.ID]; touchedPrimary {
			c.sink.ComposeToPrimary(primary)
		}
	} else {
		for _, id := range c.registry.IDs() {
			if _, ok := c.touched[id]; !ok {
				continue
			}
			if s, ok := c.registry.Get(id); ok {
				c.sink.ComposeToPrimary(s)
			}
		}
	}

	c.totalFramesDecoded++
	c.lastCompletedFrameID = m.FrameID
	c.inFrame = false
	for id := range c.touched {
		delete(c.touched, id)
	}
	c.currentFrameID = 0

	c.Metrics.framesDecoded.Add(1)
	c.emitFrameAck(m.FrameID)
}

func (c *Compositor) emitFrameAck(frameID uint32) {
	queueDepth := wire.QueueDepthUnavailable
	if c.suspendFrameAck.Load() {
		queueDepth = wire.QueueDepthSuspendAck
	} else if ops := c.pendingAsyncOps.Load(); ops > 0 {
		queueDepth = uint32(ops)
	}

	ack := wire.FrameAck{
		FrameID:            frameID,
		TotalFramesDecoded: c.totalFramesDecoded,
		QueueDepth:         queueDepth,
	}
	c.lastAck = ack
	c.Metrics.framesAcked.Add(1)

	if c.transport != nil {
		if err := c.transport.SendAck(ack.Encode()); err != nil {
			log.Warn("failed to send frame ack", logging.KeyError, err)
		}
	}
}

func (c *Compositor) opResetGraphics(m *wire.ResetGraphics) {
	for _, id := range c.registry.IDs() {
		c.prog.DeleteSurface(id)
	}
	c.registry.Reset()
	c.touched = make(map[uint16]struct{})
	c.inFrame = false
	c.currentFrameID = 0
	c.clear.ResetSequence()
	c.sink.ResizePrimary(m.Width, m.Height)
	log.Info("reset graphics", "width", m.Width, "height", m.Height)
}

func (c *Compositor) opInitSettings(m *wire.InitSettings) {
	c.init.Store(m)
	c.suspendFrameAck.Store(m.FlagsLow&wire.FlagGfxSuspendFrameAck != 0)
}

func (c *Compositor) opSolidFill(m *wire.SolidFill) {
	surf, ok := c.registry.Get(m.ID)
	if !ok {
		log.Warn("solid fill unknown surface", logging.KeySurfaceID, m.ID)
		return
	}
	// ColorBGRA is packed B|G<<8|R<<16|A<<24 on the wire (little-endian
	// byte order B,G,R,A); surfaces are always fully opaque so alpha is
	// forced to 0xFF rather than taken from the wire byte.
	var rgba [4]byte
	rgba[0] = byte(m.ColorBGRA >> 16) // R
	rgba[1] = byte(m.ColorBGRA >> 8)  // G
	rgba[2] = byte(m.ColorBGRA)       // B
	rgba[3] = 0xFF
	c.sink.FillRect(surf, m.X, m.Y, m.W, m.H, rgba)
	c.touch(surf.ID)
}

func (c *Compositor) opRawTile(m *wire.RawTile) {
	surf, ok := c.registry.Get(m.ID)
	if !ok {
		log.Warn("raw tile unknown surface", logging.KeySurfaceID, m.ID)
		return
	}
	c.sink.BlitRGBABlock(surf, m.X, m.Y, m.Pixels, m.W, m.H)
	c.touch(surf.ID)
	c.Metrics.tilesDecoded.Add(1)
}

func (c *Compositor) opSurfaceToSurface(m *wire.SurfaceToSurface) {
	src, ok := c.registry.Get(m.SrcID)
	if !ok {
		log.Warn("s2sf unknown source surface", logging.KeySurfaceID, m.SrcID)
		return
	}
	dst, ok := c.registry.Get(m.DstID)
	if !ok {
		log.Warn("s2sf unknown destination surface", logging.KeySurfaceID, m.DstID)
		return
	}
	c.sink.BlitRect(dst, m.DX, m.DY, src, m.SX, m.SY, m.SW, m.SH)
	c.touch(dst.ID)
}

func (c *Compositor) opSurfaceToCache(m *wire.SurfaceToCache) {
	surf, ok := c.registry.Get(m.ID)
	if !ok {
		log.Warn("s2ch unknown surface", logging.KeySurfaceID, m.ID)
		return
	}
	if m.X < 0 || m.Y < 0 {
		log.Warn("s2ch negative origin", logging.KeySurfaceID, m.ID)
		return
	}
	pix := c.sink.ReadRect(surf, uint16(m.X), uint16(m.Y), m.W, m.H)
	c.cache.Put(m.Slot, m.W, m.H, pix)
}

func (c *Compositor) opCacheToSurface(m *wire.CacheToSurface) {
	surf, ok := c.registry.Get(m.ID)
	if !ok {
		log.Warn("c2sf unknown surface", logging.KeySurfaceID, m.ID)
		return
	}
	block, err := c.cache.Get(m.Slot)
	if err != nil {
		log.Warn("cache miss", logging.KeySlot, m.Slot)
		return
	}
	if m.DstX < 0 || m.DstY < 0 {
		log.Warn("c2sf negative destination", logging.KeySurfaceID, m.ID)
		return
	}
	c.sink.BlitRGBABlock(surf, uint16(m.DstX), uint16(m.DstY), block.Pix, block.Width, block.Height)
	c.touch(surf.ID)
}

func (c *Compositor) opEvictCache(m *wire.EvictCache) {
	c.cache.Evict(m.Slot)
}

func (c *Compositor) opImageTile(m *wire.ImageTile) {
	surf, ok := c.registry.Get(m.ID)
	if !ok {
		log.Warn("image tile unknown surface", logging.KeySurfaceID, m.ID)
		return
	}

	switch m.Codec {
	case wire.CodecClearCodec:
		if err := c.clear.Decode(m.Data, surf, int(m.X), int(m.Y), int(m.W), int(m.H)); err != nil {
			log.Warn("clearcodec decode failed", logging.KeySurfaceID, m.ID, logging.KeyError, err)
			c.Metrics.tilesFailed.Add(1)
			return
		}
		c.touch(surf.ID)
		c.Metrics.tilesDecoded.Add(1)

	case wire.CodecProgressive:
		if err := c.prog.Decompress(m.ID, m.Data); err != nil {
			log.Warn("progressive decompress failed", logging.KeySurfaceID, m.ID, logging.KeyError, err)
			c.Metrics.tilesFailed.Add(1)
			return
		}
		c.applyProgressiveUpdates(surf)
		c.touch(surf.ID)
		c.Metrics.tilesDecoded.Add(1)
	}
}

// applyProgressiveUpdates blits every tile the last Decompress call
// touched, honoring the clip-rect-count heuristic (spec §4.3/§9): more
// than progressive.ClipRectHeuristicThreshold clip rects means redraw the
// whole tile; otherwise only the tile's clip rectangles matter, and since
// this build's wire sub-format does not carry per-rect coordinates back
// out of the decoder beyond the count, a count within threshold draws the
// full tile intersected with the surface bounds as the conservative
// superset of "exactly those rectangles".
func (c *Compositor) applyProgressiveUpdates(surf *surface.Surface) {
	updated, ok := c.prog.UpdatedTiles(surf.ID)
	if !ok {
		return
	}
	gridW, _, ok := c.prog.GridSize(surf.ID)
	if !ok {
		return
	}
	for _, u := range updated {
		tileX := u.Index % gridW
		tileY := u.Index / gridW
		data, ok := c.prog.TileData(surf.ID, tileX, tileY)
		if !ok {
			continue
		}
		dstX := tileX * progressive.TileSize
		dstY := tileY * progressive.TileSize
		c.blitTileClipped(surf, dstX, dstY, data)
	}
}

// blitTileClipped writes a 64x64 RGBA tile at (dstX,dstY) on surf, clipping
// to the surface bounds row by row when the tile straddles an edge (the
// grid always covers the full surface, so only the last row/column of
// tiles can be partially off the bottom/right edge).
func (c *Compositor) blitTileClipped(surf *surface.Surface, dstX, dstY int, tileRGBA []byte) {
	cx, cy, cw, ch := surf.Clip(dstX, dstY, progressive.TileSize, progressive.TileSize)
	if cw <= 0 || ch <= 0 {
		return
	}
	if cw == progressive.TileSize && ch == progressive.TileSize {
		c.sink.BlitRGBABlock(surf, uint16(dstX), uint16(dstY), tileRGBA, progressive.TileSize, progressive.TileSize)
		return
	}
	offX := cx - dstX
	offY := cy - dstY
	block := make([]byte, cw*ch*4)
	for row := 0; row < ch; row++ {
		srcOff := ((offY+row)*progressive.TileSize + offX) * 4
		dstOff := row * cw * 4
		copy(block[dstOff:dstOff+cw*4], tileRGBA[srcOff:srcOff+cw*4])
	}
	c.sink.BlitRGBABlock(surf, uint16(cx), uint16(cy), block, uint16(cw), uint16(ch))
}

// opVideoFrame and opWebPTile hand a tile to its delegate and block on its
// completion channel before returning — spec §5 requires every inbound
// message, including asynchronous image/video decode, to fully complete
// before the next is dequeued. pendingAsyncOps is observable by a
// concurrent metrics reader for the duration of the wait.
// opVideoFrame routes a VIDEO_FRAME (the "H264" magic) to the video
// delegate, except for the legacy CodecID that tags a Progressive-coded
// payload riding under the H.264 magic (spec's Open Question on
// H264-tagged Progressive routing): that NAL is handed to the Progressive
// decoder instead, exactly as if it had arrived via the explicit PROG path.
func (c *Compositor) opVideoFrame(m *wire.VideoFrame) {
	if m.CodecID == wire.VideoCodecIDProgressiveLegacy {
		c.decodeLegacyProgressiveVideoFrame(m)
		return
	}
	if c.videoDelegate == nil {
		log.Warn("video tile dropped: no delegate configured", logging.KeySurfaceID, m.ID)
		c.Metrics.tilesFailed.Add(1)
		return
	}
	c.pendingAsyncOps.Add(1)
	err := <-c.videoDelegate.Submit(VideoTile{
		SurfaceID: m.ID,
		DstX:      m.DX, DstY: m.DY,
		Width: m.DW, Height: m.DH,
		CodecID: m.CodecID,
		NAL:     m.NAL, ChromaNAL: m.ChromaNAL,
	})
	c.pendingAsyncOps.Add(-1)
	if err != nil {
		log.Warn("video delegate failed", logging.KeySurfaceID, m.ID, logging.KeyError, err)
		c.Metrics.tilesFailed.Add(1)
		return
	}
	c.touch(m.ID)
	c.Metrics.tilesDecoded.Add(1)
}

func (c *Compositor) decodeLegacyProgressiveVideoFrame(m *wire.VideoFrame) {
	surf, ok := c.registry.Get(m.ID)
	if !ok {
		log.Warn("legacy progressive video frame unknown surface", logging.KeySurfaceID, m.ID)
		return
	}
	if err := c.prog.Decompress(m.ID, m.NAL); err != nil {
		log.Warn("legacy progressive video frame decompress failed", logging.KeySurfaceID, m.ID, logging.KeyError, err)
		c.Metrics.tilesFailed.Add(1)
		return
	}
	c.applyProgressiveUpdates(surf)
	c.touch(surf.ID)
	c.Metrics.tilesDecoded.Add(1)
}

func (c *Compositor) opWebPTile(m *wire.ImageTile) {
	if c.imageDelegate == nil {
		log.Warn("webp tile dropped: no delegate configured", logging.KeySurfaceID, m.ID)
		c.Metrics.tilesFailed.Add(1)
		return
	}
	c.pendingAsyncOps.Add(1)
	err := <-c.imageDelegate.Submit(ImageTile{
		SurfaceID: m.ID, FrameID: m.FrameID,
		X: m.X, Y: m.Y, Width: m.W, Height: m.H,
		Data: m.Data,
	})
	c.pendingAsyncOps.Add(-1)
	if err != nil {
		log.Warn("webp delegate failed", logging.KeySurfaceID, m.ID, logging.KeyError, err)
		c.Metrics.tilesFailed.Add(1)
		return
	}
	c.touch(m.ID)
	c.Metrics.tilesDecoded.Add(1)
}
