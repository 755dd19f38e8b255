package sim

import "sync"

// Pin change interrupt control register (PCICR) bits.
const (
	PCIE0 = 0x01 // port B
	PCIE1 = 0x02 // port C
	PCIE2 = 0x04 // port D
)

// Port is an 8-bit I/O port with its pin change mask.
//
// DDR selects outputs, PORT holds output levels (or enables the pull-up on an
// input), PIN reads the pad levels and toggles PORT bits written as one.
// Any change of a pad level whose PCMSK bit is set raises the port's pin
// change vector while the port is enabled in PCICR.
type Port struct {
	Name  byte
	DDR   Register
	PORT  Register
	PIN   Register
	PCMSK Register

	mcu    *MCU
	vector Vector
	enable uint8

	mu       sync.Mutex
	driven   uint8
	external uint8
	last     uint8
}

func (p *Port) init(m *MCU, name byte, vector Vector, enable uint8) {
	p.mcu = m
	p.Name = name
	p.vector = vector
	p.enable = enable

	p.DDR.notify = p.sense
	p.PORT.notify = p.sense
	p.PIN.read = func(uint8) uint8 { return p.Levels() }
	p.PIN.write = func(old, toggle uint8) uint8 {
		p.PORT.Set(p.PORT.Raw() ^ toggle)
		return old
	}
}

// Levels returns the pad level of every pin of the port.
//
// Outputs read their PORT bit. Inputs read the externally driven level, or
// high when floating with the pull-up enabled, or low otherwise.
func (p *Port) Levels() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.levels()
}

func (p *Port) levels() uint8 {
	ddr := p.DDR.Raw()
	out := p.PORT.Raw()
	in := p.external&p.driven | out&^p.driven
	return out&ddr | in&^ddr
}

// Level returns the pad level of one pin.
func (p *Port) Level(bit uint8) bool {
	return p.Levels()&(1<<bit) != 0
}

// Drive forces an external level onto a pin, as a button or another device
// would. It has no visible effect while the pin is an output.
func (p *Port) Drive(bit uint8, level bool) {
	p.mu.Lock()
	p.driven |= 1 << bit
	if level {
		p.external |= 1 << bit
	} else {
		p.external &^= 1 << bit
	}
	p.mu.Unlock()
	p.sense()
}

// Float stops driving a pin externally.
func (p *Port) Float(bit uint8) {
	p.mu.Lock()
	p.driven &^= 1 << bit
	p.external &^= 1 << bit
	p.mu.Unlock()
	p.sense()
}

// sense latches the current levels and raises the pin change vector when a
// masked pin moved. The lock is released before raising: the handler is
// free to touch this port again.
func (p *Port) sense() {
	p.mu.Lock()
	now := p.levels()
	changed := now ^ p.last
	p.last = now
	p.mu.Unlock()

	if changed&p.PCMSK.Raw() == 0 {
		return
	}
	if p.mcu.PCICR.Raw()&p.enable == 0 {
		return
	}
	p.mcu.CPU.Interrupt(p.vector)
}

func (p *Port) reset() {
	p.DDR.poke(0)
	p.PORT.poke(0)
	p.PCMSK.poke(0)
	p.mu.Lock()
	p.last = p.levels()
	p.mu.Unlock()
}
