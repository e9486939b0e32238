package wire

// Magic is the 4-byte ASCII tag every inbound message starts with.
type Magic [4]byte

var (
	MagicCreateSurface     = Magic{'S', 'U', 'R', 'F'}
	MagicDeleteSurface     = Magic{'D', 'E', 'L', 'S'}
	MagicMapSurface        = Magic{'M', 'A', 'P', 'S'}
	MagicStartFrame        = Magic{'S', 'T', 'F', 'R'}
	MagicEndFrame          = Magic{'E', 'N', 'F', 'R'}
	MagicProgressiveTile   = Magic{'P', 'R', 'O', 'G'}
	MagicWebPTile          = Magic{'W', 'E', 'B', 'P'}
	MagicClearCodecTile    = Magic{'C', 'L', 'R', 'C'}
	MagicRawTile           = Magic{'T', 'I', 'L', 'E'}
	MagicSolidFill         = Magic{'S', 'F', 'I', 'L'}
	MagicSurfaceToSurface  = Magic{'S', '2', 'S', 'F'}
	MagicSurfaceToCache    = Magic{'S', '2', 'C', 'H'}
	MagicCacheToSurface    = Magic{'C', '2', 'S', 'F'}
	MagicEvictCache        = Magic{'E', 'V', 'C', 'T'}
	MagicResetGraphics     = Magic{'R', 'S', 'G', 'R'}
	MagicCapsConfirm       = Magic{'C', 'A', 'P', 'S'}
	MagicInitSettings      = Magic{'I', 'N', 'I', 'T'}
	MagicVideoFrame        = Magic{'H', '2', '6', '4'}
	MagicFrameAck          = Magic{'F', 'A', 'C', 'K'}
)

// Message is the parsed form of any inbound wire message. Exactly one of the
// typed fields is non-nil/meaningful, selected by Magic.
type Message struct {
	Magic Magic

	CreateSurface    *CreateSurface
	DeleteSurface    *DeleteSurface
	MapSurface       *MapSurface
	StartFrame       *StartFrame
	EndFrame         *EndFrame
	ImageTile        *ImageTile // PROG / WEBP / CLRC share this shape
	RawTile          *RawTile
	SolidFill        *SolidFill
	SurfaceToSurface *SurfaceToSurface
	SurfaceToCache   *SurfaceToCache
	CacheToSurface   *CacheToSurface
	EvictCache       *EvictCache
	ResetGraphics    *ResetGraphics
	CapsConfirm      *CapsConfirm
	InitSettings     *InitSettings
	VideoFrame       *VideoFrame
}

type CreateSurface struct {
	ID          uint16
	Width       uint16
	Height      uint16
	PixelFormat uint16
}

type DeleteSurface struct {
	ID uint16
}

type MapSurface struct {
	ID     uint16
	OutX   uint16
	OutY   uint16
}

type StartFrame struct {
	FrameID uint32
}

type EndFrame struct {
	FrameID uint32
}

// ImageCodec distinguishes which decoder an ImageTile targets.
type ImageCodec int

const (
	CodecProgressive ImageCodec = iota
	CodecWebP
	CodecClearCodec
)

// ImageTile is the common PROG/WEBP/CLRC header plus its trailing payload.
type ImageTile struct {
	Codec   ImageCodec
	FrameID uint32
	ID      uint16
	X, Y    uint16
	W, H    uint16
	Data    []byte
}

type RawTile struct {
	FrameID uint32
	ID      uint16
	X, Y    uint16
	W, H    uint16
	Pixels  []byte // w*h*4 RGBA
}

type SolidFill struct {
	FrameID  uint32
	ID       uint16
	X, Y     uint16
	W, H     uint16
	ColorBGRA uint32
}

type SurfaceToSurface struct {
	FrameID        uint32
	SrcID, DstID   uint16
	SX, SY, SW, SH uint16
	DX, DY         uint16
}

type SurfaceToCache struct {
	FrameID uint32
	ID      uint16
	Slot    uint16
	X, Y    int16
	W, H    uint16
}

type CacheToSurface struct {
	FrameID    uint32
	ID         uint16
	Slot       uint16
	DstX, DstY int16
}

type EvictCache struct {
	FrameID uint32
	Slot    uint16
}

type ResetGraphics struct {
	Width, Height uint16
}

type CapsConfirm struct {
	Version uint32
	Flags   uint32
}

// INIT settings flag bits (low word of the 64-bit flags field), per spec §6.
const (
	FlagSupportGraphicsPipeline uint32 = 1 << 0
	FlagGfxH264                 uint32 = 1 << 1
	FlagGfxAVC444               uint32 = 1 << 2
	FlagGfxAVC444v2             uint32 = 1 << 3
	FlagGfxProgressive          uint32 = 1 << 4
	FlagGfxProgressiveV2        uint32 = 1 << 5
	FlagRemoteFxCodec           uint32 = 1 << 6
	FlagNSCodec                 uint32 = 1 << 7
	FlagJpegCodec               uint32 = 1 << 8
	FlagGfxPlanar               uint32 = 1 << 9
	FlagGfxSmallCache           uint32 = 1 << 10
	FlagGfxThinClient           uint32 = 1 << 11
	FlagGfxSendQoeAck           uint32 = 1 << 12
	FlagGfxSuspendFrameAck      uint32 = 1 << 13
	FlagAudioPlayback           uint32 = 1 << 14
	FlagAudioCapture            uint32 = 1 << 15
	FlagRemoteConsoleAudio      uint32 = 1 << 16
)

type InitSettings struct {
	ColorDepth uint32
	FlagsLow   uint32
	FlagsHigh  uint32
}

type VideoFrame struct {
	FrameID       uint32
	ID            uint16
	CodecID       uint16
	Type          uint8
	DX, DY        int16
	DW, DH        uint16
	NAL           []byte
	ChromaNAL     []byte
}

// VideoCodecIDProgressiveLegacy is the CodecID some servers stamp on a
// VideoFrame (the "H264" magic) when the payload is actually
// Progressive-coded: a legacy routing quirk predating the dedicated PROG
// message. The compositor checks for this tag and routes NAL to the
// Progressive decoder instead of the video delegate; CodecID values other
// than this one are assumed to be real H.264/AVC444 video.
const VideoCodecIDProgressiveLegacy uint16 = 0x9

// Capability flag bits for CapsConfirm.Flags, per spec §6.
const (
	CapThinClient    uint32 = 0x01
	CapSmallCache    uint32 = 0x02
	CapAVC420Enabled uint32 = 0x10
	CapAVCDisabled   uint32 = 0x20
	CapAVCThinClient uint32 = 0x40
)

// Pixel formats carried in SURF.pixelFormat / stored on Surface.
const (
	PixelFormatXRGB8888 uint16 = 0x20
	PixelFormatARGB8888 uint16 = 0x21
)
