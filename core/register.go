package core

// Register is an 8-bit memory-mapped I/O register.
//
// TinyGo's *volatile.Register8 satisfies it on the device, *sim.Register on
// the host.
type Register interface {
	Get() uint8
	Set(value uint8)
	SetBits(value uint8)
	ClearBits(value uint8)
	HasBits(value uint8) bool
}
