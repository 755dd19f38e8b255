//go:build tinygo && avr

package core

import (
	"device/avr"
	"runtime/interrupt"
)

// disableInterrupts disables interrupts and returns the previous state
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}

// enableInterrupts sets the global interrupt flag
func enableInterrupts() {
	avr.Asm("sei")
}
