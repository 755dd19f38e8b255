package core

// Vector is a hardware interrupt vector number.
type Vector uint8

// Vectors the core handles.
const (
	VectorPinChange0     Vector = 3  // PCINT0, port B
	VectorPinChange1     Vector = 4  // PCINT1, port C
	VectorPinChange2     Vector = 5  // PCINT2, port D
	VectorWatchdog       Vector = 6  // WDT
	VectorTimer2Overflow Vector = 9  // TIMER2_OVF
	VectorTimer1CompareA Vector = 11 // TIMER1_COMPA
	VectorTimer0Overflow Vector = 16 // TIMER0_OVF
)

var vectors = [...]Vector{
	VectorPinChange0,
	VectorPinChange1,
	VectorPinChange2,
	VectorWatchdog,
	VectorTimer2Overflow,
	VectorTimer1CompareA,
	VectorTimer0Overflow,
}

// Vectors returns every vector Dispatch handles.
func Vectors() []Vector {
	return vectors[:]
}

// PortVector returns the pin change vector of a port.
func PortVector(p Port) Vector {
	switch p {
	case PortB:
		return VectorPinChange0
	case PortC:
		return VectorPinChange1
	default:
		return VectorPinChange2
	}
}

// CircuitVector returns the tick vector of a timer circuit.
func CircuitVector(c Circuit) Vector {
	switch c {
	case Timer0:
		return VectorTimer0Overflow
	case Timer1:
		return VectorTimer1CompareA
	default:
		return VectorTimer2Overflow
	}
}

// Dispatch runs the core's handler for an interrupt vector. Target code calls
// it from each interrupt entry point; tests call it to deliver events without
// hardware. It returns false for vectors the core does not handle.
func Dispatch(v Vector) bool {
	switch v {
	case VectorPinChange0:
		portCallbacks.Invoke(int(PortB))
	case VectorPinChange1:
		portCallbacks.Invoke(int(PortC))
	case VectorPinChange2:
		portCallbacks.Invoke(int(PortD))
	case VectorWatchdog:
		watchdogInterrupt()
	case VectorTimer0Overflow:
		tick(Timer0)
	case VectorTimer1CompareA:
		tick(Timer1)
	case VectorTimer2Overflow:
		tick(Timer2)
	default:
		RecordEvent(EvtUnhandledVector, uint8(v), 0)
		return false
	}
	return true
}
