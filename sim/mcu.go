package sim

import (
	"sync/atomic"
	"time"
)

// MCU is a simulated ATmega328P limited to the peripherals the HAL drives:
// three I/O ports with pin change interrupts, three timer/counters and the
// watchdog. Time only moves when Advance is called.
type MCU struct {
	CPU   CPU
	Clock Clock

	PortB Port
	PortC Port
	PortD Port
	PCICR Register
	MCUSR Register

	Timer0   Timer
	Timer1   Timer
	Timer2   Timer
	Watchdog Watchdog

	// OnReset runs after a watchdog system reset, in place of the reset
	// vector. The firmware is expected to boot again from it.
	OnReset func()

	resets atomic.Uint32
}

// NewMCU returns a part in its power-on state.
func NewMCU() *MCU {
	m := &MCU{}

	m.PortB.init(m, 'B', VectorPCINT0, PCIE0)
	m.PortC.init(m, 'C', VectorPCINT1, PCIE1)
	m.PortD.init(m, 'D', VectorPCINT2, PCIE2)

	m.Timer0.init(m, 0, VectorTimer0Ovf, VectorTimer0CompA, false)
	m.Timer1.init(m, 1, VectorTimer1Ovf, VectorTimer1CompA, true)
	m.Timer2.init(m, 2, VectorTimer2Ovf, VectorTimer2CompA, false)
	m.Watchdog.init(m)

	m.MCUSR.poke(PORF)
	m.Reset()
	return m
}

// Now returns the virtual time since power-on.
func (m *MCU) Now() time.Duration {
	return m.Clock.Now()
}

// Advance lets d of virtual time pass, firing timers and the watchdog.
func (m *MCU) Advance(d time.Duration) {
	m.Clock.Advance(d)
}

// Port returns the port with the given letter, or nil.
func (m *MCU) Port(name byte) *Port {
	switch name {
	case 'B', 'b':
		return &m.PortB
	case 'C', 'c':
		return &m.PortC
	case 'D', 'd':
		return &m.PortD
	}
	return nil
}

// Reset puts every peripheral back to its reset value. Installed handlers,
// externally driven pins and MCUSR survive; with WDRF still set the watchdog
// comes back enabled at its shortest timeout, as on the real part.
func (m *MCU) Reset() {
	m.CPU.reset()
	m.Clock.clear()
	m.PCICR.poke(0)

	m.PortB.reset()
	m.PortC.reset()
	m.PortD.reset()

	m.Timer0.reset()
	m.Timer1.reset()
	m.Timer2.reset()
	m.Watchdog.reset()
}

// Resets returns how many system resets the watchdog caused.
func (m *MCU) Resets() int {
	return int(m.resets.Load())
}

func (m *MCU) systemReset(cause uint8) {
	m.resets.Add(1)
	m.MCUSR.poke(cause)
	m.Reset()
	if m.OnReset != nil {
		m.OnReset()
	}
}
