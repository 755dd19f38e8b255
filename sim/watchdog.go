package sim

import (
	"sync/atomic"
	"time"
)

// Watchdog timer control register (WDTCSR) bits.
const (
	WDP0 = 0x01
	WDP1 = 0x02
	WDP2 = 0x04
	WDE  = 0x08
	WDCE = 0x10
	WDP3 = 0x20
	WDIE = 0x40
)

// MCU status register (MCUSR) reset cause flags.
const (
	PORF  = 0x01
	EXTRF = 0x02
	BORF  = 0x04
	WDRF  = 0x08
)

// Watchdog models the watchdog timer: a free running oscillator counting
// towards the window selected by the WDP bits, cleared by Kick (wdr).
//
// With WDIE set a timeout raises the WDT vector; if WDE is set as well the
// hardware clears WDIE on that timeout, so the next one resets the part
// unless the handler re-arms the interrupt. With only WDE set a timeout
// resets the part. WDE and the prescaler can only be lowered or changed in
// the write following a WDCE|WDE write, and WDE is forced on while MCUSR.WDRF
// is set.
type Watchdog struct {
	WDTCSR Register

	mcu      *MCU
	event    Event
	window   bool
	lastKick time.Duration
	timeouts atomic.Uint32
}

func (w *Watchdog) init(m *MCU) {
	w.mcu = m
	w.event.Handler = w.fire
	w.WDTCSR.write = w.write
	w.WDTCSR.notify = w.reschedule
}

// Timeout returns the window of the current prescaler setting.
func (w *Watchdog) Timeout() time.Duration {
	v := w.WDTCSR.Raw()
	n := v&(WDP2|WDP1|WDP0) | (v&WDP3)>>2
	if n > 9 {
		n = 9
	}
	return (16 * time.Millisecond) << n
}

// Running reports whether the watchdog counts, in any mode.
func (w *Watchdog) Running() bool {
	return w.WDTCSR.Raw()&(WDE|WDIE) != 0
}

// Timeouts returns how many windows elapsed without a kick.
func (w *Watchdog) Timeouts() int {
	return int(w.timeouts.Load())
}

// Kick restarts the window (wdr).
func (w *Watchdog) Kick() {
	w.lastKick = w.mcu.Clock.Now()
	w.reschedule()
}

func (w *Watchdog) write(old, new uint8) uint8 {
	forced := uint8(0)
	if w.mcu.MCUSR.Raw()&WDRF != 0 {
		forced = WDE
	}

	if w.window {
		w.window = false
		return new&^WDCE | forced
	}

	if new&(WDCE|WDE) == WDCE|WDE {
		w.window = true
		return old | WDCE | WDE
	}

	v := old&^WDIE | new&WDIE
	if new&WDE != 0 {
		v |= WDE
	}
	return v&^WDCE | forced
}

func (w *Watchdog) reschedule() {
	clock := &w.mcu.Clock
	if !w.Running() {
		clock.Cancel(&w.event)
		return
	}
	deadline := w.lastKick + w.Timeout()
	if deadline < clock.Now() {
		deadline = clock.Now()
	}
	w.event.WakeTime = deadline
	clock.Schedule(&w.event)
}

func (w *Watchdog) fire(e *Event) uint8 {
	v := w.WDTCSR.Raw()
	w.timeouts.Add(1)
	w.lastKick = w.mcu.Clock.Now()

	switch {
	case v&WDIE != 0:
		if v&WDE != 0 {
			w.WDTCSR.poke(v &^ WDIE)
		}
		w.mcu.CPU.Interrupt(VectorWDT)
	case v&WDE != 0:
		w.mcu.systemReset(WDRF)
		return SF_DONE
	}

	if e.queued || !w.Running() {
		return SF_DONE
	}
	e.WakeTime = w.lastKick + w.Timeout()
	return SF_RESCHEDULE
}

func (w *Watchdog) reset() {
	w.window = false
	w.lastKick = w.mcu.Clock.Now()
	v := uint8(0)
	if w.mcu.MCUSR.Raw()&WDRF != 0 {
		v = WDE
	}
	w.WDTCSR.poke(v)
	w.reschedule()
}
