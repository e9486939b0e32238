// Package progressive implements the client side of the progressive
// (RemoteFX-derived) tile codec: a persistent 64x64 tile grid per surface,
// fed by TILE_FIRST / TILE_SIMPLE / TILE_UPGRADE messages that carry
// coefficient-plane updates rather than raw pixels.
//
// The true MS-RDPRFX pipeline (DWT + RLGR entropy coding) is out of reach
// for this client: instead of decoding actual wavelet coefficients, this
// package defines its own compact coefficient wire format and a direct
// coefficient -> YCoCg -> RGB mapping in place of the inverse transform.
// Persistent per-tile state across FIRST/SIMPLE/UPGRADE and the updated-tile
// list with each tile's clip-rect count are kept here. The clip rectangles
// themselves are read past and discarded, so the compositor always redraws
// whole tiles.
package progressive

import (
	"context"
	"sync"

	"github.com/qxsch/freerdp-web-sub001/internal/wire"
)

// Wire message types for a single tile update.
const (
	msgTileFull    = 1 // full coefficient-plane replace (TILE_FIRST / TILE_SIMPLE)
	msgTileUpgrade = 2 // sparse coefficient deltas (TILE_UPGRADE)
)

// ClipRectHeuristicThreshold: above this many clip rects a whole-tile redraw
// replaces per-rect drawing. The compositor does not consult it; it redraws
// whole tiles at every count.
const ClipRectHeuristicThreshold = 16

// Session tracks progressive decode state for every surface created via
// RDPGFX_CREATE_SURFACE that uses the progressive codec.
type Session struct {
	grids map[uint16]*grid
	pool  *workerPool
}

// NewSession returns a progressive decode session that rebuilds tile RGBA
// caches inline (no fan-out).
func NewSession() *Session {
	return &Session{grids: make(map[uint16]*grid)}
}

// NewSessionWithWorkers returns a session that fans tile RGBA
// reconstruction out across workerCount goroutines, bounded by a queue of
// queueSize pending rebuild tasks.
func NewSessionWithWorkers(workerCount, queueSize int) *Session {
	return &Session{
		grids: make(map[uint16]*grid),
		pool:  newWorkerPool(workerCount, queueSize),
	}
}

// Close shuts down the session's worker pool, if any.
func (s *Session) Close(ctx context.Context) {
	if s.pool != nil {
		s.pool.Shutdown(ctx)
	}
}

// PrewarmUpdated eagerly rebuilds the RGBA cache for every tile touched by
// the most recent Decompress call, fanning the work out across the
// session's worker pool when one is configured. Callers that skip this are
// still correct: TileData rebuilds lazily on read.
func (s *Session) PrewarmUpdated(surfaceID uint16) {
	g, ok := s.grids[surfaceID]
	if !ok || s.pool == nil {
		return
	}
	var wg sync.WaitGroup
	for _, u := range g.updated {
		t := g.tiles[u.Index]
		wg.Add(1)
		submitted := s.pool.Submit(func() {
			defer wg.Done()
			t.rebuild()
		})
		if !submitted {
			wg.Done()
			t.rebuild()
		}
	}
	wg.Wait()
}

// CreateSurface allocates a fresh tile grid for surfaceID. Re-creating an
// existing id replaces its grid (matches RDPGFX_CREATE_SURFACE semantics:
// a surface id is only reused after a prior delete).
func (s *Session) CreateSurface(surfaceID uint16, w, h uint16) {
	s.grids[surfaceID] = newGrid(w, h)
}

// DeleteSurface discards a surface's tile grid. Deleting an unknown id is a
// no-op, matching RDPGFX_DELETE_SURFACE idempotency elsewhere in the
// compositor.
func (s *Session) DeleteSurface(surfaceID uint16) {
	delete(s.grids, surfaceID)
}

// Decompress parses one RFX_PROGRESSIVE wire payload (a sequence of tile
// messages back to back) for surfaceID, updating the persistent grid and
// recording which tiles changed.
func (s *Session) Decompress(surfaceID uint16, payload []byte) error {
	g, ok := s.grids[surfaceID]
	if !ok {
		return ErrUnknownSurface
	}
	g.resetUpdated()

	r := wire.NewReader(payload)
	for r.Len() > 0 {
		if err := s.decodeTileMessage(g, r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) decodeTileMessage(g *grid, r *wire.Reader) error {
	msgType, ok := r.ReadU8()
	if !ok {
		return ErrTruncated
	}
	xIdx, ok1 := r.ReadU16()
	yIdx, ok2 := r.ReadU16()
	clipCount, ok3 := r.ReadU8()
	if !ok1 || !ok2 || !ok3 {
		return ErrTruncated
	}
	if int(clipCount) > 0 {
		if _, ok := r.ReadBytes(int(clipCount) * 8); !ok {
			return ErrTruncated
		}
	}

	t, idx, ok := g.tileAt(int(xIdx), int(yIdx))
	if !ok {
		return ErrTileOutOfGrid
	}

	switch msgType {
	case msgTileFull:
		y, err := readPlane(r)
		if err != nil {
			return err
		}
		co, err := readPlane(r)
		if err != nil {
			return err
		}
		cg, err := readPlane(r)
		if err != nil {
			return err
		}
		t.replace(y, co, cg)
	case msgTileUpgrade:
		count, ok := r.ReadU16()
		if !ok {
			return ErrTruncated
		}
		for i := uint16(0); i < count; i++ {
			plane, ok1 := r.ReadU8()
			index, ok2 := r.ReadU16()
			delta, ok3 := r.ReadI16()
			if !ok1 || !ok2 || !ok3 {
				return ErrTruncated
			}
			if err := t.applyDelta(plane, int(index), delta); err != nil {
				return err
			}
		}
	default:
		return ErrUnknownMsgType
	}

	g.recordUpdate(idx, int(clipCount))
	return nil
}

func readPlane(r *wire.Reader) ([]int16, error) {
	plane := make([]int16, TilePixels)
	for i := range plane {
		v, ok := r.ReadI16()
		if !ok {
			return nil, ErrTruncated
		}
		plane[i] = v
	}
	return plane, nil
}

// UpdatedTiles returns the tiles touched by the most recent Decompress call
// for surfaceID, in the order their wire messages arrived.
func (s *Session) UpdatedTiles(surfaceID uint16) ([]UpdatedTile, bool) {
	g, ok := s.grids[surfaceID]
	if !ok {
		return nil, false
	}
	return g.updated, true
}

// TileData returns a copy of the current RGBA pixels for one tile cell.
// Copy-on-read: callers may freely retain or mutate the returned slice
// without affecting the session's persistent state.
func (s *Session) TileData(surfaceID uint16, tileX, tileY int) ([]byte, bool) {
	g, ok := s.grids[surfaceID]
	if !ok {
		return nil, false
	}
	t, _, ok := g.tileAt(tileX, tileY)
	if !ok {
		return nil, false
	}
	return t.rgbaCopy(), true
}

// GridSize returns the tile-grid dimensions for surfaceID.
func (s *Session) GridSize(surfaceID uint16) (w, h int, ok bool) {
	g, found := s.grids[surfaceID]
	if !found {
		return 0, 0, false
	}
	return g.gridW, g.gridH, true
}
