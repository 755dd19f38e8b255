package sim

import (
	"sync/atomic"
	"time"
)

// CPUFrequency is the system clock of the simulated part.
const CPUFrequency = 16000000

// Timer/counter register bits.
const (
	CS0   = 0x01 // clock select, TCCRnB
	CS1   = 0x02
	CS2   = 0x04
	WGM12 = 0x08 // Timer1 CTC mode, TCCR1B
	TOIE  = 0x01 // overflow interrupt enable, TIMSKn
	OCIEA = 0x02 // compare match A interrupt enable, TIMSKn

	CS01 = CS1 // Timer0 clk/8
	CS11 = CS1 // Timer1 clk/8
	CS21 = CS1 // Timer2 clk/8
)

var (
	prescalers      = [8]uint32{0, 1, 8, 64, 256, 1024, 0, 0}
	timer2Prescaler = [8]uint32{0, 1, 8, 32, 64, 128, 256, 1024}
)

// Timer is one timer/counter circuit.
//
// The counter runs whenever a clock is selected in TCCRB. Timer1 in CTC mode
// counts to OCR1A and raises compare match A; every other configuration
// counts over the full range and raises overflow. A vector is only raised
// while its enable bit is set in TIMSK.
type Timer struct {
	Index int
	TCCRA Register
	TCCRB Register
	TIMSK Register
	OCRAH Register
	OCRAL Register

	mcu       *MCU
	wide      bool
	overflow  Vector
	compare   Vector
	event     Event
	interrupt atomic.Uint64
}

func (t *Timer) init(m *MCU, index int, overflow, compare Vector, wide bool) {
	t.mcu = m
	t.Index = index
	t.overflow = overflow
	t.compare = compare
	t.wide = wide
	t.event.Handler = t.fire

	t.TCCRA.notify = t.reconfigure
	t.TCCRB.notify = t.reconfigure
	t.OCRAH.notify = t.reconfigure
	t.OCRAL.notify = t.reconfigure
}

func (t *Timer) ctc() bool {
	return t.wide && t.TCCRB.Raw()&WGM12 != 0
}

// Period returns the time between two interrupts of the current
// configuration, or zero while the counter clock is stopped.
func (t *Timer) Period() time.Duration {
	cs := t.TCCRB.Raw() & (CS0 | CS1 | CS2)
	pre := prescalers[cs]
	if t.Index == 2 {
		pre = timer2Prescaler[cs]
	}
	if pre == 0 {
		return 0
	}

	counts := uint64(256)
	switch {
	case t.ctc():
		counts = (uint64(t.OCRAH.Raw())<<8 | uint64(t.OCRAL.Raw())) + 1
	case t.wide:
		counts = 65536
	}

	return time.Duration(counts*uint64(pre)) * time.Second / CPUFrequency
}

// Interrupts returns how many vectors this circuit raised.
func (t *Timer) Interrupts() uint64 {
	return t.interrupt.Load()
}

// reconfigure restarts the counter phase after a control or compare write.
func (t *Timer) reconfigure() {
	clock := &t.mcu.Clock
	period := t.Period()
	if period == 0 {
		clock.Cancel(&t.event)
		return
	}
	t.event.WakeTime = clock.Now() + period
	clock.Schedule(&t.event)
}

func (t *Timer) fire(e *Event) uint8 {
	vector, enable := t.overflow, uint8(TOIE)
	if t.ctc() {
		vector, enable = t.compare, OCIEA
	}
	if t.TIMSK.Raw()&enable != 0 {
		t.interrupt.Add(1)
		t.mcu.CPU.Interrupt(vector)
	}

	// The handler may have reprogrammed or stopped this circuit.
	period := t.Period()
	if e.queued || period == 0 {
		return SF_DONE
	}
	e.WakeTime += period
	return SF_RESCHEDULE
}

func (t *Timer) reset() {
	t.TCCRA.poke(0)
	t.TCCRB.poke(0)
	t.TIMSK.poke(0)
	t.OCRAH.poke(0)
	t.OCRAL.poke(0)
	t.mcu.Clock.Cancel(&t.event)
}
