package core

// PortHardware is the register set of one I/O port.
type PortHardware struct {
	Dir  Register // DDRx
	Out  Register // PORTx
	In   Register // PINx, writing ones toggles PORTx
	Mask Register // PCMSKx

	// Enable is the port's bit in the pin change control register.
	Enable uint8
}

// TimerHardware is the register set of one timer/counter circuit, programmed
// so that it interrupts once per tick period.
type TimerHardware struct {
	Control     Register // TCCRxB
	ClockSelect uint8    // value written to Control while bound
	Mask        Register // TIMSKx
	MaskBit     uint8    // tick interrupt enable in Mask

	// TopHigh and TopLow hold the compare value for circuits running in
	// CTC mode. Both are nil for free running circuits.
	TopHigh Register
	TopLow  Register
	Top     uint16
}

// WatchdogHardware is the watchdog control register, the reset cause
// register, and the wdr instruction.
type WatchdogHardware struct {
	Control Register // WDTCSR
	Status  Register // MCUSR
	Kick    func()
}

// Hardware is every register the core drives.
type Hardware struct {
	Ports       [NumPorts]PortHardware
	PortControl Register // PCICR
	Timers      [NumCircuits]TimerHardware
	Watchdog    WatchdogHardware
}

var hardware *Hardware

// SetHardware is called by target specific code to install the registers.
func SetHardware(hw *Hardware) {
	hardware = hw
}

// MustHardware returns the installed registers or panics if missing.
func MustHardware() *Hardware {
	if hardware == nil {
		panic("hardware not configured")
	}
	return hardware
}

// resetState forgets every reservation, binding and callback.
func resetState() {
	pinRegistry.Clear()
	portCallbacks.Clear()
	for i := range portOwners {
		portOwners[i] = nil
	}

	circuitRegistry.Clear()
	timerCallbacks.Clear()
	for i := range boundTimers {
		boundTimers[i].Store(nil)
	}

	watchdogCallbacks.Clear()
	watchdogTimeout = Timeout16ms

	ClearEvents()
}
