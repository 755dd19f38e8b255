package core

import (
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// Circuit is a hardware timer/counter.
type Circuit uint8

const (
	Timer0 Circuit = iota
	Timer1
	Timer2

	NumCircuits = 3
)

// Every circuit counts 256 cycles of the 16 MHz clock divided by 8 per tick.
var tickPeriods = [NumCircuits]time.Duration{
	128 * time.Microsecond,
	128 * time.Microsecond,
	128 * time.Microsecond,
}

// TickPeriod returns the time between two tick interrupts of c.
func TickPeriod(c Circuit) time.Duration {
	if !c.Valid() {
		return 0
	}
	return tickPeriods[c]
}

// Valid reports whether c names a circuit.
func (c Circuit) Valid() bool {
	return c < NumCircuits
}

func (c Circuit) String() string {
	return "timer" + itoa(int(c))
}

// ParseCircuit accepts "1", "timer1" or "Timer1".
func ParseCircuit(s string) (Circuit, error) {
	name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "timer")
	n, err := strconv.Atoi(name)
	if err != nil || n < 0 || n >= NumCircuits {
		return 0, errors.Wrapf(ErrInvalidID, "circuit %q", s)
	}
	return Circuit(n), nil
}

// ticks converts d to the nearest number of tick periods.
func ticks(c Circuit, d time.Duration) uint32 {
	period := tickPeriods[c]
	if d >= math.MaxUint32*period {
		return math.MaxUint32
	}
	n := (d + period/2) / period
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}

var (
	circuitRegistry = NewRegistry(NumCircuits)
	timerCallbacks  = NewCallbackTable(NumCircuits)
	boundTimers     [NumCircuits]atomic.Pointer[SoftTimer]
)

// SoftTimer counts tick interrupts of one circuit and runs its callback every
// time the count reaches the target, then starts over.
//
// count is written only by the tick handler (and by Restart with interrupts
// disabled). enabled and target are written by the main loop and read by the
// handler.
type SoftTimer struct {
	circuit Circuit
	hw      *TimerHardware

	enabled atomic.Bool
	target  atomic.Uint32
	count   atomic.Uint32
}

// BindTimer claims circuit c and programs it to tick. The timer elapses every
// elapse, rounded to whole ticks; zero leaves it stopped until SetElapseTime.
func BindTimer(c Circuit, elapse time.Duration, autoStart bool) (*SoftTimer, error) {
	if !c.Valid() {
		return nil, errors.Wrapf(ErrInvalidID, "circuit %d", c)
	}
	if elapse < 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "%s: elapse time %s", c, elapse)
	}
	hw := &MustHardware().Timers[c]
	if !circuitRegistry.TryReserve(int(c)) {
		return nil, errors.Wrapf(ErrAlreadyBound, "%s", c)
	}

	t := &SoftTimer{circuit: c, hw: hw}
	t.target.Store(ticks(c, elapse))

	state := disableInterrupts()
	hw.Mask.ClearBits(hw.MaskBit)
	if hw.TopHigh != nil {
		hw.TopHigh.Set(uint8(hw.Top >> 8))
		hw.TopLow.Set(uint8(hw.Top))
	}
	hw.Control.Set(hw.ClockSelect)
	restoreInterrupts(state)

	boundTimers[c].Store(t)
	enableInterrupts()
	RecordEvent(EvtTimerBind, uint8(c), t.target.Load())

	if autoStart {
		t.Start()
	}
	return t, nil
}

// IsCircuitBound reports whether a timer holds c.
func IsCircuitBound(c Circuit) bool {
	return circuitRegistry.IsReserved(int(c))
}

// Release stops the circuit's clock and frees it. The circuit callback is
// removed. Releasing twice does nothing.
func (t *SoftTimer) Release() {
	if t == nil || t.hw == nil {
		return
	}
	t.enabled.Store(false)

	state := disableInterrupts()
	t.hw.Mask.ClearBits(t.hw.MaskBit)
	t.hw.Control.Set(0)
	if t.hw.TopHigh != nil {
		t.hw.TopHigh.Set(0)
		t.hw.TopLow.Set(0)
	}
	restoreInterrupts(state)

	boundTimers[t.circuit].Store(nil)
	timerCallbacks.Remove(int(t.circuit))
	circuitRegistry.Release(int(t.circuit))
	t.hw = nil

	RecordEvent(EvtTimerRelease, uint8(t.circuit), 0)
}

// Start runs the timer. A timer without an elapse time stays stopped.
func (t *SoftTimer) Start() {
	if t.hw == nil || t.target.Load() == 0 {
		return
	}
	t.enabled.Store(true)
	state := disableInterrupts()
	t.hw.Mask.SetBits(t.hw.MaskBit)
	restoreInterrupts(state)
}

// Stop halts the timer, keeping its count.
func (t *SoftTimer) Stop() {
	if t.hw == nil {
		return
	}
	t.enabled.Store(false)
	state := disableInterrupts()
	t.hw.Mask.ClearBits(t.hw.MaskBit)
	restoreInterrupts(state)
}

// Toggle starts a stopped timer and stops a running one.
func (t *SoftTimer) Toggle() {
	if t.IsEnabled() {
		t.Stop()
	} else {
		t.Start()
	}
}

// SetEnabled starts or stops the timer.
func (t *SoftTimer) SetEnabled(enabled bool) {
	if enabled {
		t.Start()
	} else {
		t.Stop()
	}
}

// Restart zeroes the count and starts the timer.
func (t *SoftTimer) Restart() {
	if t.hw == nil {
		return
	}
	state := disableInterrupts()
	t.count.Store(0)
	restoreInterrupts(state)
	t.Start()
}

// IsEnabled reports whether the timer runs.
func (t *SoftTimer) IsEnabled() bool {
	return t.enabled.Load()
}

// SetElapseTime changes the period, rounded to whole ticks. A period that
// rounds to zero ticks stops the timer.
func (t *SoftTimer) SetElapseTime(d time.Duration) error {
	if d < 0 {
		return errors.Wrapf(ErrInvalidParameter, "%s: elapse time %s", t.circuit, d)
	}
	n := ticks(t.circuit, d)
	if n == 0 {
		t.Stop()
	}
	t.target.Store(n)
	return nil
}

// ElapseTime returns the period actually programmed.
func (t *SoftTimer) ElapseTime() time.Duration {
	return time.Duration(t.target.Load()) * tickPeriods[t.circuit]
}

// ElapseTimeMs returns ElapseTime in whole milliseconds.
func (t *SoftTimer) ElapseTimeMs() uint32 {
	return uint32(t.ElapseTime() / time.Millisecond)
}

// Circuit returns the bound circuit.
func (t *SoftTimer) Circuit() Circuit { return t.circuit }

// Count returns the ticks counted since the timer last elapsed.
func (t *SoftTimer) Count() uint32 { return t.count.Load() }

// Target returns the ticks per period.
func (t *SoftTimer) Target() uint32 { return t.target.Load() }

// AddCallback registers the action run each time the timer elapses.
func (t *SoftTimer) AddCallback(action Action) bool {
	if t.hw == nil {
		return false
	}
	return timerCallbacks.Add(int(t.circuit), action)
}

// RemoveCallback clears the timer's callback.
func (t *SoftTimer) RemoveCallback() bool {
	if t.hw == nil {
		return false
	}
	return timerCallbacks.Remove(int(t.circuit))
}

// tick is the tick interrupt handler of circuit c.
func tick(c Circuit) {
	t := boundTimers[c].Load()
	if t == nil || !t.enabled.Load() {
		return
	}
	target := t.target.Load()
	if target == 0 {
		return
	}
	if t.count.Add(1) < target {
		return
	}
	t.count.Store(0)
	RecordEvent(EvtTimerElapsed, uint8(c), target)
	timerCallbacks.Invoke(int(c))
}
