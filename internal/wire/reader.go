// Package wire implements the little-endian tagged message codec the
// compositor reads from its transport, plus the outbound FrameAck encoder.
package wire

import "encoding/binary"

// Reader is a bounds-checked cursor over a byte slice. Every read advances
// the cursor only on success; a failed read leaves the cursor untouched so
// callers can report the original offset in a log line.
type Reader struct {
	b   []byte
	pos int
}

// NewReader wraps b for sequential little-endian reads.
func NewReader(b []byte) *Reader {
	return &Reader{b: b}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.b) - r.pos
}

// Pos returns the current read offset.
func (r *Reader) Pos() int {
	return r.pos
}

func (r *Reader) ReadU8() (uint8, bool) {
	if r.Len() < 1 {
		return 0, false
	}
	v := r.b[r.pos]
	r.pos++
	return v, true
}

func (r *Reader) ReadU16() (uint16, bool) {
	if r.Len() < 2 {
		return 0, false
	}
	v := binary.LittleEndian.Uint16(r.b[r.pos:])
	r.pos += 2
	return v, true
}

func (r *Reader) ReadI16() (int16, bool) {
	v, ok := r.ReadU16()
	return int16(v), ok
}

func (r *Reader) ReadU32() (uint32, bool) {
	if r.Len() < 4 {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(r.b[r.pos:])
	r.pos += 4
	return v, true
}

func (r *Reader) ReadI32() (int32, bool) {
	v, ok := r.ReadU32()
	return int32(v), ok
}

// ReadBytes returns the next n bytes as a sub-slice of the backing array
// (no copy — callers that need to retain the data beyond the lifetime of
// the inbound message buffer must copy it themselves).
func (r *Reader) ReadBytes(n int) ([]byte, bool) {
	if n < 0 || r.Len() < n {
		return nil, false
	}
	v := r.b[r.pos : r.pos+n]
	r.pos += n
	return v, true
}

// Rest returns every remaining unread byte without advancing the cursor.
func (r *Reader) Rest() []byte {
	return r.b[r.pos:]
}

// Sub returns a read-only sub-Reader over the next n bytes and advances the
// parent cursor past them, matching spec's "sub-stream views" requirement
// for nested sub-regions (ClearCodec residual/bands/subcodecs payloads).
func (r *Reader) Sub(n int) (*Reader, bool) {
	b, ok := r.ReadBytes(n)
	if !ok {
		return nil, false
	}
	return NewReader(b), true
}

// Skip advances the cursor by n bytes if available.
func (r *Reader) Skip(n int) bool {
	if n < 0 || r.Len() < n {
		return false
	}
	r.pos += n
	return true
}

// PeekU8 returns the next byte without advancing the cursor.
func (r *Reader) PeekU8() (uint8, bool) {
	if r.Len() < 1 {
		return 0, false
	}
	return r.b[r.pos], true
}
