package surface

import "errors"

// ErrUnknownSurface is returned for any operation referencing a surface id
// that was never created, or was deleted, per spec §4.5 ("unknown ids are
// dropped, not fatal").
var ErrUnknownSurface = errors.New("surface: unknown surface id")

// ErrDuplicateSurface is returned by Create when the id is already in use.
var ErrDuplicateSurface = errors.New("surface: duplicate surface id")

// Registry owns the id→Surface map and the primary (output) mapping.
// Like Surface, it is single-writer: only the compositor's dispatch loop
// touches it.
type Registry struct {
	surfaces map[uint16]*Surface
	primary  uint16
	hasPrimary bool
	outX, outY uint16
}

func NewRegistry() *Registry {
	return &Registry{surfaces: make(map[uint16]*Surface)}
}

// Create registers a new surface. Returns ErrDuplicateSurface if id is
// already live, per invariant: ids are unique among live surfaces.
func (r *Registry) Create(id, width, height, pixelFormat uint16) (*Surface, error) {
	if _, exists := r.surfaces[id]; exists {
		return nil, ErrDuplicateSurface
	}
	s := NewSurface(id, width, height, pixelFormat)
	r.surfaces[id] = s
	return s, nil
}

// Delete removes a surface. Deleting the mapped primary unmaps it.
func (r *Registry) Delete(id uint16) error {
	if _, exists := r.surfaces[id]; !exists {
		return ErrUnknownSurface
	}
	delete(r.surfaces, id)
	if r.hasPrimary && r.primary == id {
		r.hasPrimary = false
	}
	return nil
}

// Get looks up a live surface by id.
func (r *Registry) Get(id uint16) (*Surface, bool) {
	s, ok := r.surfaces[id]
	return s, ok
}

// MapToOutput designates id as the primary (displayed) surface at the given
// output offset, per spec §3's MapSurfaceToOutput operation.
func (r *Registry) MapToOutput(id, outX, outY uint16) error {
	if _, exists := r.surfaces[id]; !exists {
		return ErrUnknownSurface
	}
	r.primary = id
	r.outX, r.outY = outX, outY
	r.hasPrimary = true
	return nil
}

// Primary returns the currently mapped primary surface, if any.
func (r *Registry) Primary() (*Surface, uint16, uint16, bool) {
	if !r.hasPrimary {
		return nil, 0, 0, false
	}
	s, ok := r.surfaces[r.primary]
	if !ok {
		return nil, 0, 0, false
	}
	return s, r.outX, r.outY, true
}

// Reset drops every surface and clears the primary mapping, per spec §4.6's
// ResetGraphics handling ("all surfaces are deleted").
func (r *Registry) Reset() {
	r.surfaces = make(map[uint16]*Surface)
	r.hasPrimary = false
}

// IDs returns the live surface ids in ascending order, used by the
// compositor's ascending-id compose fallback when no primary is mapped.
func (r *Registry) IDs() []uint16 {
	ids := make([]uint16, 0, len(r.surfaces))
	for id := range r.surfaces {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

// Len reports the number of live surfaces.
func (r *Registry) Len() int { return len(r.surfaces) }
