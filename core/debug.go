package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TraceEvent is one entry of the event ring
type TraceEvent struct {
	Seq   uint32 // Position in the event stream, starting at 1
	Type  uint8  // Event type code (Evt*)
	ID    uint8  // Pin, port, circuit or vector
	Value uint32 // Context dependent
}

// Event type codes
const (
	EvtLineAcquire     = 1  // Line acquired, ID=pin Value=direction
	EvtLineRelease     = 2  // Line released, ID=pin
	EvtPortCallback    = 3  // Port callback registered, ID=port
	EvtTimerBind       = 4  // Circuit bound, ID=circuit Value=target
	EvtTimerRelease    = 5  // Circuit released, ID=circuit
	EvtTimerElapsed    = 6  // Timer elapsed, ID=circuit Value=target
	EvtWatchdogInit    = 7  // Watchdog configured, Value=timeout ms
	EvtWatchdogMode    = 8  // Watchdog mode changed, Value=WDTCSR
	EvtWatchdogIRQ     = 9  // Watchdog interrupt, Value=1 if re-armed
	EvtUnhandledVector = 10 // Vector without a handler, ID=vector
)

const (
	EventRingSize = 32 // Keep the last 32 events
)

var (
	// debugPrintln is the global debug print function (set by platform code)
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled controls whether DebugPrintln writes anything
	debugEnabled bool = false

	eventRing     [EventRingSize]TraceEvent
	eventRingHead uint8
	eventSeq      uint32
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEvent appends to the event ring. It never blocks or allocates and is
// safe from interrupt handlers.
func RecordEvent(eventType, id uint8, value uint32) {
	state := disableInterrupts()
	eventSeq++
	idx := eventRingHead
	eventRing[idx] = TraceEvent{
		Seq:   eventSeq,
		Type:  eventType,
		ID:    id,
		Value: value,
	}
	eventRingHead = (idx + 1) % EventRingSize
	restoreInterrupts(state)
}

// Events returns the ring content, oldest first
func Events() []TraceEvent {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	out := make([]TraceEvent, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.Type == 0 {
			continue
		}
		out = append(out, evt)
	}
	return out
}

func eventName(t uint8) string {
	switch t {
	case EvtLineAcquire:
		return "LINE_ACQUIRE"
	case EvtLineRelease:
		return "LINE_RELEASE"
	case EvtPortCallback:
		return "PORT_CALLBACK"
	case EvtTimerBind:
		return "TIMER_BIND"
	case EvtTimerRelease:
		return "TIMER_RELEASE"
	case EvtTimerElapsed:
		return "TIMER_ELAPSED"
	case EvtWatchdogInit:
		return "WDT_INIT"
	case EvtWatchdogMode:
		return "WDT_MODE"
	case EvtWatchdogIRQ:
		return "WDT_IRQ"
	case EvtUnhandledVector:
		return "UNHANDLED!"
	default:
		return "UNKNOWN"
	}
}

// DumpEvents writes the event ring through the debug writer, whether or not
// debug output is enabled. Call it from the main loop.
func DumpEvents() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[EVENT] === Event Ring Dump ===")
	for _, evt := range Events() {
		debugPrintln("[EVENT] #" + utoa(evt.Seq) + " " + eventName(evt.Type) +
			" id=" + utoa(evt.ID) +
			" v=" + utoa(evt.Value))
	}
	debugPrintln("[EVENT] === End Dump ===")
}

// ClearEvents clears the event ring
func ClearEvents() {
	state := disableInterrupts()
	for i := range eventRing {
		eventRing[i] = TraceEvent{}
	}
	eventRingHead = 0
	eventSeq = 0
	restoreInterrupts(state)
}
