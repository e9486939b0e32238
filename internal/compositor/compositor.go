// Package compositor implements the RDPGFX frame loop: a single-consumer
// dispatcher that decodes wire messages, drives the ClearCodec and
// Progressive decoders, mutates surfaces and the bitmap cache, composes
// completed frames onto a primary output, and emits FrameAck PDUs.
package compositor

import (
	"context"
	"sync/atomic"

	"github.com/qxsch/freerdp-web-sub001/internal/bitmapcache"
	"github.com/qxsch/freerdp-web-sub001/internal/clearcodec"
	"github.com/qxsch/freerdp-web-sub001/internal/logging"
	"github.com/qxsch/freerdp-web-sub001/internal/progressive"
	"github.com/qxsch/freerdp-web-sub001/internal/surface"
	"github.com/qxsch/freerdp-web-sub001/internal/wire"
)

var log = logging.L("compositor")

// Compositor owns every piece of session state reached by the dispatch
// loop. It is single-writer by construction: only Dispatch (or the Run
// loop that calls it) may touch these fields, matching spec §5's
// single-consumer rule.
type Compositor struct {
	registry *surface.Registry
	cache    *bitmapcache.Cache
	clear    *clearcodec.Session
	prog     *progressive.Session
	sink     Sink

	videoDelegate VideoDelegate
	imageDelegate ImageDelegate
	transport     Transport

	inFrame              bool
	currentFrameID       uint32
	touched              map[uint16]struct{}
	lastCompletedFrameID uint32
	totalFramesDecoded   uint32

	pendingAsyncOps atomic.Int64
	suspendFrameAck atomic.Bool

	caps atomic.Pointer[wire.CapsConfirm]
	init atomic.Pointer[wire.InitSettings]

	lastAck wire.FrameAck

	Metrics Metrics
}

// LastAck returns the most recently emitted FrameAck, for tests and
// embedders that drive Dispatch directly without a Transport.
func (c *Compositor) LastAck() wire.FrameAck { return c.lastAck }

// New constructs a Compositor backed by sink for pixel operations. videoDelegate
// and imageDelegate may be nil; operations routed to a nil delegate are
// treated as an immediate delegate failure (logged, tile left unchanged).
func New(sink Sink, videoDelegate VideoDelegate, imageDelegate ImageDelegate) *Compositor {
	return newCompositor(sink, videoDelegate, imageDelegate, progressive.NewSession())
}

// NewWithProgressiveWorkers is like New but gives the progressive session a
// pool of workerCount background workers, which progressive.Session's
// PrewarmUpdated uses. The compositor does not call PrewarmUpdated: tiles
// are still rebuilt on read (TileData) on the dispatch goroutine.
func NewWithProgressiveWorkers(sink Sink, videoDelegate VideoDelegate, imageDelegate ImageDelegate, workerCount int) *Compositor {
	return newCompositor(sink, videoDelegate, imageDelegate, progressive.NewSessionWithWorkers(workerCount, workerCount*4))
}

func newCompositor(sink Sink, videoDelegate VideoDelegate, imageDelegate ImageDelegate, prog *progressive.Session) *Compositor {
	return &Compositor{
		registry:      surface.NewRegistry(),
		cache:         bitmapcache.New(),
		clear:         clearcodec.NewSession(),
		prog:          prog,
		sink:          sink,
		videoDelegate: videoDelegate,
		imageDelegate: imageDelegate,
		touched:       make(map[uint16]struct{}),
	}
}

// Dispatch parses and applies a single inbound wire message. It never
// returns an error to the caller for decode/op failures — those are
// logged and the message is dropped, per spec §7; the bool result reports
// whether the message was recognized at all (for test/metrics use).
func (c *Compositor) Dispatch(raw []byte) bool {
	msg, ok := wire.ParseMessage(raw)
	if !ok {
		magic := "?"
		if len(raw) >= 4 {
			magic = string(raw[0:4])
		}
		log.Warn("dropping unparseable message", logging.KeyMagic, magic, "len", len(raw))
		return false
	}

	switch msg.Magic {
	case wire.MagicCreateSurface:
		c.opCreateSurface(msg.CreateSurface)
	case wire.MagicDeleteSurface:
		c.opDeleteSurface(msg.DeleteSurface)
	case wire.MagicMapSurface:
		c.opMapSurface(msg.MapSurface)
	case wire.MagicStartFrame:
		c.opStartFrame(msg.StartFrame)
	case wire.MagicEndFrame:
		c.opEndFrame(msg.EndFrame)
	case wire.MagicProgressiveTile, wire.MagicClearCodecTile:
		c.opImageTile(msg.ImageTile)
	case wire.MagicWebPTile:
		c.opWebPTile(msg.ImageTile)
	case wire.MagicRawTile:
		c.opRawTile(msg.RawTile)
	case wire.MagicSolidFill:
		c.opSolidFill(msg.SolidFill)
	case wire.MagicSurfaceToSurface:
		c.opSurfaceToSurface(msg.SurfaceToSurface)
	case wire.MagicSurfaceToCache:
		c.opSurfaceToCache(msg.SurfaceToCache)
	case wire.MagicCacheToSurface:
		c.opCacheToSurface(msg.CacheToSurface)
	case wire.MagicEvictCache:
		c.opEvictCache(msg.EvictCache)
	case wire.MagicResetGraphics:
		c.opResetGraphics(msg.ResetGraphics)
	case wire.MagicCapsConfirm:
		c.caps.Store(msg.CapsConfirm)
	case wire.MagicInitSettings:
		c.opInitSettings(msg.InitSettings)
	case wire.MagicVideoFrame:
		c.opVideoFrame(msg.VideoFrame)
	default:
		log.Warn("dropping message with no handler", logging.KeyMagic, string(msg.Magic[:]))
		return false
	}
	return true
}

// Run drains t.Recv() in a loop, dispatching each message and sending the
// FrameAck emitted by EndFrame back over t. Returns when Recv returns an
// error (transport closed).
func (c *Compositor) Run(t Transport) error {
	c.transport = t
	for {
		raw, err := t.Recv()
		if err != nil {
			return err
		}
		c.Dispatch(raw)
	}
}

func (c *Compositor) touch(id uint16) {
	if c.inFrame {
		c.touched[id] = struct{}{}
	}
}

// CapsSnapshot returns the last-seen CAPS PDU, if any.
func (c *Compositor) CapsSnapshot() (wire.CapsConfirm, bool) {
	p := c.caps.Load()
	if p == nil {
		return wire.CapsConfirm{}, false
	}
	return *p, true
}

// InitSnapshot returns the last-seen INIT PDU, if any.
func (c *Compositor) InitSnapshot() (wire.InitSettings, bool) {
	p := c.init.Load()
	if p == nil {
		return wire.InitSettings{}, false
	}
	return *p, true
}

// Registry exposes the surface registry for read-only inspection (tests,
// host embedders that need to know current surface geometry).
func (c *Compositor) Registry() *surface.Registry { return c.registry }

// Cache exposes the bitmap cache for read-only inspection.
func (c *Compositor) Cache() *bitmapcache.Cache { return c.cache }

// Close releases background resources (the progressive decoder's worker
// pool, if one was started). Safe to call even when no pool was started.
func (c *Compositor) Close(ctx context.Context) {
	c.prog.Close(ctx)
}
