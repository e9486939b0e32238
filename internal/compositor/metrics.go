package compositor

import "sync/atomic"

// Metrics accumulates compositor-wide counters for periodic logging,
// grounded on the teacher's StreamMetrics/metricsLogger pair: plain atomic
// counters read by a ticker goroutine rather than a full metrics library.
type Metrics struct {
	framesDecoded    atomic.Uint64
	framesAcked      atomic.Uint64
	tilesDecoded     atomic.Uint64
	tilesFailed      atomic.Uint64
	lastFrameLatency atomic.Int64 // nanoseconds
}

// MetricsSnapshot is a point-in-time copy of Metrics, safe to log or export.
type MetricsSnapshot struct {
	FramesDecoded    uint64
	FramesAcked      uint64
	TilesDecoded     uint64
	TilesFailed      uint64
	LastFrameLatency int64 // nanoseconds
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		FramesDecoded:    m.framesDecoded.Load(),
		FramesAcked:      m.framesAcked.Load(),
		TilesDecoded:     m.tilesDecoded.Load(),
		TilesFailed:      m.tilesFailed.Load(),
		LastFrameLatency: m.lastFrameLatency.Load(),
	}
}
