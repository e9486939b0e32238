package wire

// parseFunc parses a message body (the bytes after the 4-byte magic) into a
// Message. It returns ok=false on any truncation, mirroring spec.md §7:
// "a parser that fails length checks returns no message".
type parseFunc func(body []byte) (Message, bool)

// parsers is the magic→parser dispatch table, the same shape as the
// teacher's CommandHandler dispatch (internal/websocket), generalized from a
// JSON "type" discriminator to a fixed 4-byte binary tag.
var parsers = map[Magic]parseFunc{
	MagicCreateSurface:    parseCreateSurface,
	MagicDeleteSurface:    parseDeleteSurface,
	MagicMapSurface:       parseMapSurface,
	MagicStartFrame:       parseStartFrame,
	MagicEndFrame:         parseEndFrame,
	MagicProgressiveTile:  parseImageTile(CodecProgressive),
	MagicWebPTile:         parseImageTile(CodecWebP),
	MagicClearCodecTile:   parseImageTile(CodecClearCodec),
	MagicRawTile:          parseRawTile,
	MagicSolidFill:        parseSolidFill,
	MagicSurfaceToSurface: parseSurfaceToSurface,
	MagicSurfaceToCache:   parseSurfaceToCache,
	MagicCacheToSurface:   parseCacheToSurface,
	MagicEvictCache:       parseEvictCache,
	MagicResetGraphics:    parseResetGraphics,
	MagicCapsConfirm:      parseCapsConfirm,
	MagicInitSettings:     parseInitSettings,
	MagicVideoFrame:       parseVideoFrame,
}

// ParseMessage parses a single framed wire message. It returns ok=false for
// an unrecognized magic or a body shorter than its fixed header — the
// dispatcher logs and drops in both cases (spec.md §7).
func ParseMessage(raw []byte) (Message, bool) {
	if len(raw) < 4 {
		return Message{}, false
	}
	var m Magic
	copy(m[:], raw[:4])
	p, known := parsers[m]
	if !known {
		return Message{}, false
	}
	msg, ok := p(raw[4:])
	if !ok {
		return Message{}, false
	}
	msg.Magic = m
	return msg, true
}

func parseCreateSurface(b []byte) (Message, bool) {
	r := NewReader(b)
	id, ok1 := r.ReadU16()
	w, ok2 := r.ReadU16()
	h, ok3 := r.ReadU16()
	pf, ok4 := r.ReadU16()
	if !(ok1 && ok2 && ok3 && ok4) {
		return Message{}, false
	}
	return Message{CreateSurface: &CreateSurface{ID: id, Width: w, Height: h, PixelFormat: pf}}, true
}

func parseDeleteSurface(b []byte) (Message, bool) {
	r := NewReader(b)
	id, ok := r.ReadU16()
	if !ok {
		return Message{}, false
	}
	return Message{DeleteSurface: &DeleteSurface{ID: id}}, true
}

func parseMapSurface(b []byte) (Message, bool) {
	r := NewReader(b)
	id, ok1 := r.ReadU16()
	x, ok2 := r.ReadU16()
	y, ok3 := r.ReadU16()
	if !(ok1 && ok2 && ok3) {
		return Message{}, false
	}
	return Message{MapSurface: &MapSurface{ID: id, OutX: x, OutY: y}}, true
}

func parseStartFrame(b []byte) (Message, bool) {
	r := NewReader(b)
	id, ok := r.ReadU32()
	if !ok {
		return Message{}, false
	}
	return Message{StartFrame: &StartFrame{FrameID: id}}, true
}

func parseEndFrame(b []byte) (Message, bool) {
	r := NewReader(b)
	id, ok := r.ReadU32()
	if !ok {
		return Message{}, false
	}
	return Message{EndFrame: &EndFrame{FrameID: id}}, true
}

func parseImageTile(codec ImageCodec) parseFunc {
	return func(b []byte) (Message, bool) {
		r := NewReader(b)
		frameID, ok1 := r.ReadU32()
		id, ok2 := r.ReadU16()
		x, ok3 := r.ReadU16()
		y, ok4 := r.ReadU16()
		w, ok5 := r.ReadU16()
		h, ok6 := r.ReadU16()
		size, ok7 := r.ReadU32()
		if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7) {
			return Message{}, false
		}
		data, ok := r.ReadBytes(int(size))
		if !ok {
			return Message{}, false
		}
		return Message{ImageTile: &ImageTile{
			Codec: codec, FrameID: frameID, ID: id, X: x, Y: y, W: w, H: h, Data: data,
		}}, true
	}
}

func parseRawTile(b []byte) (Message, bool) {
	r := NewReader(b)
	frameID, ok1 := r.ReadU32()
	id, ok2 := r.ReadU16()
	x, ok3 := r.ReadU16()
	y, ok4 := r.ReadU16()
	w, ok5 := r.ReadU16()
	h, ok6 := r.ReadU16()
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
		return Message{}, false
	}
	n := int(w) * int(h) * 4
	pix, ok := r.ReadBytes(n)
	if !ok {
		return Message{}, false
	}
	return Message{RawTile: &RawTile{FrameID: frameID, ID: id, X: x, Y: y, W: w, H: h, Pixels: pix}}, true
}

func parseSolidFill(b []byte) (Message, bool) {
	r := NewReader(b)
	frameID, ok1 := r.ReadU32()
	id, ok2 := r.ReadU16()
	x, ok3 := r.ReadU16()
	y, ok4 := r.ReadU16()
	w, ok5 := r.ReadU16()
	h, ok6 := r.ReadU16()
	color, ok7 := r.ReadU32()
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7) {
		return Message{}, false
	}
	return Message{SolidFill: &SolidFill{FrameID: frameID, ID: id, X: x, Y: y, W: w, H: h, ColorBGRA: color}}, true
}

func parseSurfaceToSurface(b []byte) (Message, bool) {
	r := NewReader(b)
	frameID, ok1 := r.ReadU32()
	srcID, ok2 := r.ReadU16()
	dstID, ok3 := r.ReadU16()
	sx, ok4 := r.ReadU16()
	sy, ok5 := r.ReadU16()
	sw, ok6 := r.ReadU16()
	sh, ok7 := r.ReadU16()
	dx, ok8 := r.ReadU16()
	dy, ok9 := r.ReadU16()
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7 && ok8 && ok9) {
		return Message{}, false
	}
	return Message{SurfaceToSurface: &SurfaceToSurface{
		FrameID: frameID, SrcID: srcID, DstID: dstID,
		SX: sx, SY: sy, SW: sw, SH: sh, DX: dx, DY: dy,
	}}, true
}

func parseSurfaceToCache(b []byte) (Message, bool) {
	r := NewReader(b)
	frameID, ok1 := r.ReadU32()
	id, ok2 := r.ReadU16()
	slot, ok3 := r.ReadU16()
	x, ok4 := r.ReadI16()
	y, ok5 := r.ReadI16()
	w, ok6 := r.ReadU16()
	h, ok7 := r.ReadU16()
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7) {
		return Message{}, false
	}
	return Message{SurfaceToCache: &SurfaceToCache{FrameID: frameID, ID: id, Slot: slot, X: x, Y: y, W: w, H: h}}, true
}

func parseCacheToSurface(b []byte) (Message, bool) {
	r := NewReader(b)
	frameID, ok1 := r.ReadU32()
	id, ok2 := r.ReadU16()
	slot, ok3 := r.ReadU16()
	dx, ok4 := r.ReadI16()
	dy, ok5 := r.ReadI16()
	if !(ok1 && ok2 && ok3 && ok4 && ok5) {
		return Message{}, false
	}
	return Message{CacheToSurface: &CacheToSurface{FrameID: frameID, ID: id, Slot: slot, DstX: dx, DstY: dy}}, true
}

func parseEvictCache(b []byte) (Message, bool) {
	r := NewReader(b)
	frameID, ok1 := r.ReadU32()
	slot, ok2 := r.ReadU16()
	if !(ok1 && ok2) {
		return Message{}, false
	}
	return Message{EvictCache: &EvictCache{FrameID: frameID, Slot: slot}}, true
}

func parseResetGraphics(b []byte) (Message, bool) {
	r := NewReader(b)
	w, ok1 := r.ReadU16()
	h, ok2 := r.ReadU16()
	if !(ok1 && ok2) {
		return Message{}, false
	}
	return Message{ResetGraphics: &ResetGraphics{Width: w, Height: h}}, true
}

func parseCapsConfirm(b []byte) (Message, bool) {
	r := NewReader(b)
	version, ok1 := r.ReadU32()
	flags, ok2 := r.ReadU32()
	if !(ok1 && ok2) {
		return Message{}, false
	}
	return Message{CapsConfirm: &CapsConfirm{Version: version, Flags: flags}}, true
}

func parseInitSettings(b []byte) (Message, bool) {
	r := NewReader(b)
	depth, ok1 := r.ReadU32()
	lo, ok2 := r.ReadU32()
	hi, ok3 := r.ReadU32()
	if !(ok1 && ok2 && ok3) {
		return Message{}, false
	}
	return Message{InitSettings: &InitSettings{ColorDepth: depth, FlagsLow: lo, FlagsHigh: hi}}, true
}

func parseVideoFrame(b []byte) (Message, bool) {
	r := NewReader(b)
	frameID, ok1 := r.ReadU32()
	id, ok2 := r.ReadU16()
	codecID, ok3 := r.ReadU16()
	typ, ok4 := r.ReadU8()
	dx, ok5 := r.ReadI16()
	dy, ok6 := r.ReadI16()
	dw, ok7 := r.ReadU16()
	dh, ok8 := r.ReadU16()
	nalSize, ok9 := r.ReadU32()
	chromaSize, ok10 := r.ReadU32()
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7 && ok8 && ok9 && ok10) {
		return Message{}, false
	}
	nal, ok := r.ReadBytes(int(nalSize))
	if !ok {
		return Message{}, false
	}
	chroma, ok := r.ReadBytes(int(chromaSize))
	if !ok {
		return Message{}, false
	}
	return Message{VideoFrame: &VideoFrame{
		FrameID: frameID, ID: id, CodecID: codecID, Type: typ,
		DX: dx, DY: dy, DW: dw, DH: dh, NAL: nal, ChromaNAL: chroma,
	}}, true
}
