package progressive

// UpdatedTile records one tile touched by the most recent Decompress call,
// along with the clip-rect count carried in its wire message (the input to
// the spec §4.3 heuristic). The rectangles themselves are not kept, and
// compositor.applyProgressiveUpdates draws the whole tile whatever the
// count.
type UpdatedTile struct {
	Index         int
	ClipRectCount int
}

// grid is the per-surface 64x64 tile array. Tiles persist across frames;
// only the updated list is reset per Decompress call.
type grid struct {
	w, h    uint16
	gridW   int
	gridH   int
	tiles   []*tile
	updated []UpdatedTile
}

func newGrid(w, h uint16) *grid {
	gw := ceilDiv(int(w), TileSize)
	gh := ceilDiv(int(h), TileSize)
	g := &grid{w: w, h: h, gridW: gw, gridH: gh, tiles: make([]*tile, gw*gh)}
	for i := range g.tiles {
		g.tiles[i] = newTile()
	}
	return g
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func (g *grid) index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= g.gridW || y >= g.gridH {
		return 0, false
	}
	return y*g.gridW + x, true
}

func (g *grid) tileAt(x, y int) (*tile, int, bool) {
	idx, ok := g.index(x, y)
	if !ok {
		return nil, 0, false
	}
	return g.tiles[idx], idx, true
}

func (g *grid) resetUpdated() {
	g.updated = g.updated[:0]
}

func (g *grid) recordUpdate(idx, clipRectCount int) {
	g.updated = append(g.updated, UpdatedTile{Index: idx, ClipRectCount: clipRectCount})
}
