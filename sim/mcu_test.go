package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortLevels(t *testing.T) {
	m := NewMCU()
	p := &m.PortB

	assert.False(t, p.Level(5), "floating input reads low")

	p.PORT.SetBits(1 << 5)
	assert.True(t, p.Level(5), "pull-up")

	p.Drive(5, false)
	assert.False(t, p.Level(5))
	p.Float(5)
	assert.True(t, p.Level(5))

	p.DDR.SetBits(1 << 1)
	p.Drive(1, true)
	assert.False(t, p.Level(1), "outputs ignore external drive")
	p.PORT.SetBits(1 << 1)
	assert.True(t, p.Level(1))
	assert.Equal(t, uint8(0x22), p.PIN.Get())
}

func TestPortPinWriteToggles(t *testing.T) {
	m := NewMCU()
	p := &m.PortD

	p.DDR.Set(0xff)
	p.PORT.Set(0x0f)
	p.PIN.Set(0x81)
	assert.Equal(t, uint8(0x8e), p.PORT.Get())
	assert.Equal(t, uint8(0x8e), p.PIN.Get())
}

func TestPortPinChange(t *testing.T) {
	m := NewMCU()
	calls := 0
	m.CPU.Handle(VectorPCINT1, func() { calls++ })
	m.CPU.Enable()

	m.PortC.PCMSK.Set(1 << 2)
	m.PortC.Drive(2, true)
	assert.Equal(t, 0, calls, "port disabled in PCICR")

	m.PCICR.Set(PCIE1)
	m.PortC.Drive(2, false)
	assert.Equal(t, 1, calls)

	m.PortC.Drive(3, true)
	assert.Equal(t, 1, calls, "unmasked pin")

	m.PortC.Drive(2, false)
	assert.Equal(t, 1, calls, "no change")
}

func TestTimerPeriods(t *testing.T) {
	m := NewMCU()

	assert.Zero(t, m.Timer0.Period())

	m.Timer0.TCCRB.Set(CS01)
	assert.Equal(t, 128*time.Microsecond, m.Timer0.Period())
	m.Timer0.TCCRB.Set(CS0 | CS2)
	assert.Equal(t, 16384*time.Microsecond, m.Timer0.Period())

	m.Timer1.TCCRB.Set(CS11)
	assert.Equal(t, 32768*time.Microsecond, m.Timer1.Period(), "16-bit normal mode")
	m.Timer1.OCRAL.Set(199)
	m.Timer1.TCCRB.Set(CS11 | WGM12)
	assert.Equal(t, 100*time.Microsecond, m.Timer1.Period())

	m.Timer2.TCCRB.Set(CS0 | CS1)
	assert.Equal(t, 512*time.Microsecond, m.Timer2.Period(), "timer2 clk/32")
}

func TestTimerInterrupts(t *testing.T) {
	m := NewMCU()
	calls := 0
	m.CPU.Handle(VectorTimer0Ovf, func() { calls++ })
	m.CPU.Enable()

	m.Timer0.TCCRB.Set(CS01)
	m.Advance(time.Millisecond)
	assert.Equal(t, 0, calls, "masked")

	m.Timer0.TIMSK.Set(TOIE)
	m.Advance(1280 * time.Microsecond)
	assert.Equal(t, 10, calls)
	assert.Equal(t, uint64(10), m.Timer0.Interrupts())

	m.Timer0.TCCRB.Set(0)
	m.Advance(time.Second)
	assert.Equal(t, 10, calls)
}

func TestWatchdogTimedSequence(t *testing.T) {
	m := NewMCU()
	w := &m.Watchdog

	// prescaler changes need the timed sequence
	w.WDTCSR.Set(WDP2 | WDP1)
	assert.Equal(t, uint8(0), w.WDTCSR.Get())

	w.WDTCSR.Set(WDCE | WDE)
	w.WDTCSR.Set(WDP2 | WDP1)
	assert.Equal(t, uint8(WDP2|WDP1), w.WDTCSR.Get())
	assert.Equal(t, 1024*time.Millisecond, w.Timeout())

	// WDE can be set any time but only cleared in the sequence
	w.WDTCSR.Set(WDE | WDP2 | WDP1)
	w.WDTCSR.Set(WDP2 | WDP1)
	assert.True(t, w.WDTCSR.HasBits(WDE))

	w.WDTCSR.Set(WDCE | WDE)
	w.WDTCSR.Set(WDP3 | WDP0)
	assert.Equal(t, uint8(WDP3|WDP0), w.WDTCSR.Get())
	assert.Equal(t, 8192*time.Millisecond, w.Timeout())
}

func TestWatchdogResetsPart(t *testing.T) {
	m := NewMCU()
	boots := 0
	m.OnReset = func() { boots++ }

	m.PortB.DDR.Set(0xff)
	m.PCICR.Set(PCIE0)
	m.Watchdog.WDTCSR.Set(WDE)

	m.Advance(10 * time.Millisecond)
	m.Watchdog.Kick()
	m.Advance(10 * time.Millisecond)
	assert.Equal(t, 0, m.Resets())

	m.Advance(10 * time.Millisecond)
	require.Equal(t, 1, m.Resets())
	assert.Equal(t, 1, boots)
	assert.Equal(t, uint8(WDRF), m.MCUSR.Get())
	assert.Equal(t, uint8(0), m.PortB.DDR.Get())
	assert.Equal(t, uint8(0), m.PCICR.Get())

	// WDRF keeps the watchdog on at 16 ms
	assert.Equal(t, uint8(WDE), m.Watchdog.WDTCSR.Get())
	m.Watchdog.WDTCSR.Set(WDCE | WDE)
	m.Watchdog.WDTCSR.Set(0)
	assert.True(t, m.Watchdog.WDTCSR.HasBits(WDE))

	m.MCUSR.Set(0)
	m.Watchdog.WDTCSR.Set(WDCE | WDE)
	m.Watchdog.WDTCSR.Set(0)
	assert.False(t, m.Watchdog.Running())
	m.Advance(time.Second)
	assert.Equal(t, 1, m.Resets())
}

func TestWatchdogInterruptMode(t *testing.T) {
	m := NewMCU()
	calls := 0
	m.CPU.Handle(VectorWDT, func() { calls++ })
	m.CPU.Enable()

	m.Watchdog.WDTCSR.Set(WDIE | WDE)
	m.Advance(17 * time.Millisecond)
	assert.Equal(t, 1, calls)
	assert.False(t, m.Watchdog.WDTCSR.HasBits(WDIE), "hardware clears WDIE")
	assert.Equal(t, 0, m.Resets())

	m.Advance(16 * time.Millisecond)
	assert.Equal(t, 1, m.Resets())
	assert.Equal(t, 2, m.Watchdog.Timeouts())
}

func TestPortByName(t *testing.T) {
	m := NewMCU()
	assert.Same(t, &m.PortB, m.Port('B'))
	assert.Same(t, &m.PortC, m.Port('c'))
	assert.Same(t, &m.PortD, m.Port('D'))
	assert.Nil(t, m.Port('A'))
}
