package core

// MaxRegistryIDs is the widest id space a Registry can track.
const MaxRegistryIDs = 64

// Registry tracks exclusive reservations of a contiguous id space in a single
// bitmask. It is not synchronised: reservations are only ever changed from
// the main loop, never from an interrupt handler.
type Registry struct {
	mask uint64
	size uint8
}

// NewRegistry returns a registry for ids 0..size-1.
func NewRegistry(size int) *Registry {
	if size <= 0 || size > MaxRegistryIDs {
		panic("registry: size out of range")
	}
	return &Registry{size: uint8(size)}
}

func (r *Registry) valid(id int) bool {
	return id >= 0 && id < int(r.size)
}

// TryReserve reserves id. It returns false, changing nothing, if id is out of
// range or already reserved.
func (r *Registry) TryReserve(id int) bool {
	if !r.valid(id) || readBit(r.mask, uint8(id)) {
		return false
	}
	r.mask = setBit(r.mask, uint8(id))
	return true
}

// Release frees id. Releasing a free or out of range id does nothing.
func (r *Registry) Release(id int) {
	if !r.valid(id) {
		return
	}
	r.mask = clearBit(r.mask, uint8(id))
}

// IsReserved reports whether id is currently reserved.
func (r *Registry) IsReserved(id int) bool {
	return r.valid(id) && readBit(r.mask, uint8(id))
}

// Size returns the number of ids tracked.
func (r *Registry) Size() int {
	return int(r.size)
}

// Reserved returns how many ids are reserved.
func (r *Registry) Reserved() int {
	return countBits(r.mask)
}

// Clear frees every id.
func (r *Registry) Clear() {
	r.mask = 0
}
