//go:build !tinygo

package core

import "hwcore/sim"

// State is the saved status register of the simulated CPU
type State uint8

// cpu is the simulated core whose I-bit guards critical sections. Without
// one, critical sections are no-ops.
var cpu *sim.CPU

// disableInterrupts clears the I-bit and returns the previous state
func disableInterrupts() State {
	if cpu == nil {
		return 0
	}
	return State(cpu.Disable())
}

// restoreInterrupts restores the I-bit, servicing what became pending
func restoreInterrupts(state State) {
	if cpu == nil {
		return
	}
	cpu.Restore(uint8(state))
}

// enableInterrupts sets the I-bit
func enableInterrupts() {
	if cpu == nil {
		return
	}
	cpu.Enable()
}
