package core

import (
	"time"

	"github.com/pkg/errors"
)

// WatchdogTimeout is a watchdog window supported by the hardware.
type WatchdogTimeout uint8

const (
	Timeout16ms WatchdogTimeout = iota
	Timeout32ms
	Timeout64ms
	Timeout128ms
	Timeout256ms
	Timeout512ms
	Timeout1024ms
	Timeout2048ms
	Timeout4096ms
	Timeout8192ms
)

// WDTCSR and MCUSR bits
const (
	wdtWDIE = 0x40
	wdtWDP3 = 0x20
	wdtWDCE = 0x10
	wdtWDE  = 0x08
	wdtWDP  = 0x27 // WDP3..WDP0

	mcusrWDRF = 0x08
)

// Valid reports whether t is on the ladder.
func (t WatchdogTimeout) Valid() bool {
	return t <= Timeout8192ms
}

// Duration returns the length of the window.
func (t WatchdogTimeout) Duration() time.Duration {
	return (16 * time.Millisecond) << t
}

func (t WatchdogTimeout) String() string {
	return itoa(int(t.Duration()/time.Millisecond)) + "ms"
}

// prescaler returns the WDP bits selecting t.
func (t WatchdogTimeout) prescaler() uint8 {
	v := uint8(t)
	return v&0x07 | (v&0x08)<<2
}

// WatchdogTimeoutFor returns the timeout of exactly d.
func WatchdogTimeoutFor(d time.Duration) (WatchdogTimeout, error) {
	for t := Timeout16ms; t.Valid(); t++ {
		if t.Duration() == d {
			return t, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidParameter, "watchdog timeout %s", d)
}

var (
	watchdogTimeout   = Timeout16ms
	watchdogCallbacks = NewCallbackTable(1)
)

// watchdogWrite stores value into WDTCSR with the timed sequence: the write
// must land within four cycles of setting WDCE and WDE.
func watchdogWrite(hw *WatchdogHardware, value uint8) {
	state := disableInterrupts()
	hw.Kick()
	hw.Control.Set(hw.Control.Get() | wdtWDCE | wdtWDE)
	hw.Control.Set(value)
	restoreInterrupts(state)
	RecordEvent(EvtWatchdogMode, 0, uint32(value))
}

// WatchdogInit selects the watchdog window. It may be called again to change
// the window; the system reset and interrupt modes are kept as they are.
func WatchdogInit(timeout WatchdogTimeout) error {
	if !timeout.Valid() {
		return errors.Wrapf(ErrInvalidParameter, "watchdog timeout %d", timeout)
	}
	hw := &MustHardware().Watchdog
	mode := hw.Control.Get() & (wdtWDIE | wdtWDE)
	watchdogWrite(hw, mode|timeout.prescaler())
	watchdogTimeout = timeout

	RecordEvent(EvtWatchdogInit, 0, uint32(timeout.Duration()/time.Millisecond))
	return nil
}

// WatchdogReset restarts the watchdog window and clears the watchdog reset
// flag. The main loop must call it more often than the timeout.
func WatchdogReset() {
	hw := &MustHardware().Watchdog
	state := disableInterrupts()
	hw.Kick()
	hw.Status.ClearBits(mcusrWDRF)
	restoreInterrupts(state)
}

// WatchdogEnableSystemReset makes an unacknowledged timeout restart the
// system.
func WatchdogEnableSystemReset() {
	WatchdogReset()
	hw := &MustHardware().Watchdog
	watchdogWrite(hw, hw.Control.Get()&^wdtWDCE|wdtWDE)
}

// WatchdogDisableSystemReset stops timeouts from restarting the system.
func WatchdogDisableSystemReset() {
	WatchdogReset()
	hw := &MustHardware().Watchdog
	watchdogWrite(hw, hw.Control.Get()&^(wdtWDCE|wdtWDE))
}

// WatchdogEnableInterrupt runs action once per elapsed window. It returns
// false for a nil action.
func WatchdogEnableInterrupt(action Action) bool {
	if !watchdogCallbacks.Add(0, action) {
		return false
	}
	WatchdogReset()
	hw := &MustHardware().Watchdog
	watchdogWrite(hw, hw.Control.Get()&^wdtWDCE|wdtWDIE)
	enableInterrupts()
	return true
}

// WatchdogDisableInterrupt stops the watchdog interrupt and drops its action.
func WatchdogDisableInterrupt() {
	watchdogCallbacks.Remove(0)
	WatchdogReset()
	hw := &MustHardware().Watchdog
	watchdogWrite(hw, hw.Control.Get()&^(wdtWDCE|wdtWDIE))
}

// WatchdogSystemResetEnabled reports whether a timeout restarts the system.
func WatchdogSystemResetEnabled() bool {
	return MustHardware().Watchdog.Control.HasBits(wdtWDE)
}

// WatchdogInterruptEnabled reports whether a timeout raises the interrupt.
func WatchdogInterruptEnabled() bool {
	return MustHardware().Watchdog.Control.HasBits(wdtWDIE)
}

// WatchdogTimeoutSetting returns the window selected by WatchdogInit.
func WatchdogTimeoutSetting() WatchdogTimeout {
	return watchdogTimeout
}

// WatchdogResetCaused reports whether the last restart was forced by the
// watchdog. Read it before the first WatchdogReset, which clears the flag.
func WatchdogResetCaused() bool {
	return MustHardware().Watchdog.Status.HasBits(mcusrWDRF)
}

// watchdogInterrupt is the watchdog interrupt handler. With both modes set
// the hardware drops WDIE on every timeout, so the handler sets it again
// before running the action; otherwise the next timeout resets the system.
func watchdogInterrupt() {
	hw := &MustHardware().Watchdog
	hw.Kick()
	hw.Status.ClearBits(mcusrWDRF)

	rearm := watchdogCallbacks.IsSet(0)
	if rearm {
		hw.Control.Set(hw.Control.Get()&^wdtWDCE | wdtWDIE)
	}
	RecordEvent(EvtWatchdogIRQ, 0, uint32(b2u(rearm)))
	watchdogCallbacks.Invoke(0)
}

func b2u(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
