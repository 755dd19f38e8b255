package sim

import "sync/atomic"

// Register is an 8-bit I/O register cell.
//
// Registers may carry hooks modelling hardware side effects: read computes the
// visible value from the stored one (PINx), write filters a store before it
// lands (PINx toggle, WDTCSR timed sequence) and notify runs after it landed.
type Register struct {
	value atomic.Uint32

	read   func(stored uint8) uint8
	write  func(old, new uint8) uint8
	notify func()
}

// Get returns the register value as software sees it.
func (r *Register) Get() uint8 {
	v := uint8(r.value.Load())
	if r.read != nil {
		return r.read(v)
	}
	return v
}

// Set stores a value, applying the register's write behaviour.
func (r *Register) Set(value uint8) {
	if r.write != nil {
		value = r.write(uint8(r.value.Load()), value)
	}
	r.value.Store(uint32(value))
	if r.notify != nil {
		r.notify()
	}
}

// SetBits performs a read-modify-write setting the given bits.
//
// As on the real part this is not a single store: on a PINx register it
// toggles every pin currently reading high as well.
func (r *Register) SetBits(value uint8) {
	r.Set(r.Get() | value)
}

// ClearBits performs a read-modify-write clearing the given bits.
func (r *Register) ClearBits(value uint8) {
	r.Set(r.Get() &^ value)
}

// HasBits reports whether any of the given bits read as set.
func (r *Register) HasBits(value uint8) bool {
	return r.Get()&value > 0
}

// Raw returns the stored value without the read hook.
func (r *Register) Raw() uint8 {
	return uint8(r.value.Load())
}

// poke stores a value from the hardware side, bypassing every hook.
func (r *Register) poke(value uint8) {
	r.value.Store(uint32(value))
}
