package sim

import (
	"math/bits"
	"sync/atomic"
)

// Vector is an entry in the ATmega328P interrupt vector table.
type Vector uint8

const (
	VectorINT0         Vector = 1
	VectorINT1         Vector = 2
	VectorPCINT0       Vector = 3
	VectorPCINT1       Vector = 4
	VectorPCINT2       Vector = 5
	VectorWDT          Vector = 6
	VectorTimer2CompA  Vector = 7
	VectorTimer2CompB  Vector = 8
	VectorTimer2Ovf    Vector = 9
	VectorTimer1Capt   Vector = 10
	VectorTimer1CompA  Vector = 11
	VectorTimer1CompB  Vector = 12
	VectorTimer1Ovf    Vector = 13
	VectorTimer0CompA  Vector = 14
	VectorTimer0CompB  Vector = 15
	VectorTimer0Ovf    Vector = 16
	VectorSPISTC       Vector = 17
	VectorUSARTRX      Vector = 18
	VectorUSARTUDRE    Vector = 19
	VectorUSARTTX      Vector = 20
	VectorADC          Vector = 21
	VectorEEReady      Vector = 22
	VectorAnalogComp   Vector = 23
	VectorTWI          Vector = 24
	VectorSPMReady     Vector = 25
	NumVectors                = 26
)

// SREG_I is the global interrupt enable bit of the status register.
const SREG_I = 0x80

// CPU models the interrupt side of the processor core: the global interrupt
// flag, the latched pending vectors, and the handler table.
//
// Handlers run to completion on the goroutine that raised or unmasked the
// interrupt, with the I-bit cleared, lowest vector number first. A handler
// never nests inside another handler even if it executes sei; the pending
// vector is picked up when the running handler returns.
type CPU struct {
	sreg      atomic.Uint32
	pending   atomic.Uint32
	servicing atomic.Bool
	handlers  [NumVectors]func()
	serviced  [NumVectors]atomic.Uint32
}

// Handle installs the handler for a vector.
func (c *CPU) Handle(v Vector, handler func()) {
	if v == 0 || v >= NumVectors {
		return
	}
	c.handlers[v] = handler
}

// InterruptsEnabled reports the state of the I-bit.
func (c *CPU) InterruptsEnabled() bool {
	return c.sreg.Load()&SREG_I != 0
}

// Disable clears the I-bit (cli) and returns the previous status register.
func (c *CPU) Disable() uint8 {
	return uint8(c.sreg.Swap(0))
}

// Restore writes back a status register saved by Disable. Pending vectors
// are serviced if this re-enables interrupts.
func (c *CPU) Restore(state uint8) {
	c.sreg.Store(uint32(state & SREG_I))
	if state&SREG_I != 0 {
		c.Service()
	}
}

// Enable sets the I-bit (sei).
func (c *CPU) Enable() {
	c.Restore(SREG_I)
}

// Interrupt latches a vector as pending and services it if possible.
// Raising an already pending vector is coalesced into one handler run.
func (c *CPU) Interrupt(v Vector) {
	if v == 0 || v >= NumVectors {
		return
	}
	c.pending.Or(1 << v)
	c.Service()
}

// Pending reports whether a vector is latched but not yet serviced.
func (c *CPU) Pending(v Vector) bool {
	return c.pending.Load()&(1<<v) != 0
}

// Serviced returns how many times a vector's handler slot was entered.
func (c *CPU) Serviced(v Vector) int {
	if v >= NumVectors {
		return 0
	}
	return int(c.serviced[v].Load())
}

// Service runs pending handlers while interrupts are enabled.
func (c *CPU) Service() {
	if !c.InterruptsEnabled() {
		return
	}
	if !c.servicing.CompareAndSwap(false, true) {
		return
	}
	defer c.servicing.Store(false)

	for c.InterruptsEnabled() {
		p := c.pending.Load()
		if p == 0 {
			return
		}
		v := Vector(bits.TrailingZeros32(p))
		c.pending.And(^uint32(1 << v))

		c.sreg.Store(0)
		if h := c.handlers[v]; h != nil {
			h()
		}
		c.serviced[v].Add(1)
		c.sreg.Store(SREG_I) // reti
	}
}

// reset clears the I-bit and every pending vector. Handlers stay installed,
// they live in flash.
func (c *CPU) reset() {
	c.sreg.Store(0)
	c.pending.Store(0)
}
