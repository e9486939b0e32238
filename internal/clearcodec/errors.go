package clearcodec

import "errors"

// Sentinel errors for ClearCodec decoder invariant violations (spec §4.2,
// §8 "decoder invariant violation" list). Every one fails only the current
// CLRC message; session/cache state is never rolled back.
var (
	ErrTruncated                = errors.New("clearcodec: truncated payload")
	ErrSequenceMismatch         = errors.New("clearcodec: sequence number mismatch")
	ErrGlyphFlagsInconsistent   = errors.New("clearcodec: GLYPH_HIT set without GLYPH_INDEX")
	ErrGlyphIndexRange          = errors.New("clearcodec: glyph index out of range")
	ErrGlyphSizeExceedsCache    = errors.New("clearcodec: glyph rectangle exceeds cached entry size")
	ErrGlyphSizeCap             = errors.New("clearcodec: glyph rectangle exceeds size cap")
	ErrResidualPixelCount       = errors.New("clearcodec: residual pixel count mismatch")
	ErrBandHeightTooLarge       = errors.New("clearcodec: band height exceeds 52")
	ErrVBarHeaderInvalid        = errors.New("clearcodec: unrecognized VBar header pattern")
	ErrVBarShortPixelCount      = errors.New("clearcodec: short-VBar pixel count invalid")
	ErrVBarCacheHitSizeMismatch = errors.New("clearcodec: VBar cache hit column height does not match band height")
	ErrSubcodecBounds           = errors.New("clearcodec: subcodec record outside tile bounds")
	ErrSubcodecUnknown          = errors.New("clearcodec: unknown subcodec id")
	ErrUncompressedSize         = errors.New("clearcodec: uncompressed subcodec size mismatch")
	ErrPaletteRange             = errors.New("clearcodec: palette count out of range")
	ErrPaletteIndexRange        = errors.New("clearcodec: palette index out of range")
	ErrPixelCountMismatch       = errors.New("clearcodec: decoded pixel count mismatch")
	ErrNSCodecPlaneSize         = errors.New("clearcodec: NSCodec plane byte count invalid")
)
