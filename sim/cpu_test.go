package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCPUPendingUntilEnabled(t *testing.T) {
	var c CPU
	calls := 0
	c.Handle(VectorPCINT0, func() { calls++ })

	c.Interrupt(VectorPCINT0)
	c.Interrupt(VectorPCINT0)
	assert.Equal(t, 0, calls)
	assert.True(t, c.Pending(VectorPCINT0))

	c.Enable()
	assert.Equal(t, 1, calls, "pending vectors coalesce")
	assert.False(t, c.Pending(VectorPCINT0))
	assert.Equal(t, 1, c.Serviced(VectorPCINT0))
}

func TestCPUServiceOrder(t *testing.T) {
	var c CPU
	var order []Vector
	for _, v := range []Vector{VectorTimer0Ovf, VectorWDT, VectorPCINT2} {
		v := v
		c.Handle(v, func() { order = append(order, v) })
	}

	c.Interrupt(VectorTimer0Ovf)
	c.Interrupt(VectorPCINT2)
	c.Interrupt(VectorWDT)
	c.Enable()

	assert.Equal(t, []Vector{VectorPCINT2, VectorWDT, VectorTimer0Ovf}, order)
}

func TestCPUHandlersDoNotNest(t *testing.T) {
	var c CPU
	var trace []string
	c.Handle(VectorPCINT0, func() {
		trace = append(trace, "pcint0 enter")
		assert.False(t, c.InterruptsEnabled())
		c.Interrupt(VectorWDT)
		c.Enable() // sei inside a handler
		trace = append(trace, "pcint0 leave")
	})
	c.Handle(VectorWDT, func() { trace = append(trace, "wdt") })

	c.Enable()
	c.Interrupt(VectorPCINT0)

	assert.Equal(t, []string{"pcint0 enter", "pcint0 leave", "wdt"}, trace)
	assert.True(t, c.InterruptsEnabled())
}

func TestCPUDisableRestore(t *testing.T) {
	var c CPU
	calls := 0
	c.Handle(VectorTimer1CompA, func() { calls++ })
	c.Enable()

	state := c.Disable()
	assert.Equal(t, uint8(SREG_I), state)
	c.Interrupt(VectorTimer1CompA)
	assert.Equal(t, 0, calls)

	inner := c.Disable()
	c.Restore(inner)
	assert.Equal(t, 0, calls, "nested restore keeps interrupts off")

	c.Restore(state)
	assert.Equal(t, 1, calls)
}

func TestCPUIgnoresUnknownVectors(t *testing.T) {
	var c CPU
	c.Enable()
	c.Interrupt(0)
	c.Interrupt(NumVectors)
	assert.Equal(t, 0, c.Serviced(NumVectors))

	// no handler installed: serviced and dropped
	c.Interrupt(VectorADC)
	assert.Equal(t, 1, c.Serviced(VectorADC))
}
