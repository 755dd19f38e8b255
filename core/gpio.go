// GPIO (General Purpose Input/Output) support
// Lines own one pin each; pin change interrupts are delivered per port
package core

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Pin is a logical pin number: 0..7 on port D, 8..13 on port B, 14..19 on
// port C.
type Pin uint8

const (
	PinD0 Pin = iota
	PinD1
	PinD2
	PinD3
	PinD4
	PinD5
	PinD6
	PinD7
	PinB0
	PinB1
	PinB2
	PinB3
	PinB4
	PinB5
	PinC0
	PinC1
	PinC2
	PinC3
	PinC4
	PinC5

	NumPins = 20
)

// Port is an I/O port. Its value is the port's callback slot.
type Port uint8

const (
	PortB Port = iota
	PortC
	PortD

	NumPorts = 3
)

// Direction configures a line.
type Direction uint8

const (
	Input Direction = iota
	InputPullup
	Output
)

// Valid reports whether p is in range.
func (p Pin) Valid() bool {
	return p < NumPins
}

// Port returns the port p belongs to.
func (p Pin) Port() Port {
	switch {
	case p <= PinD7:
		return PortD
	case p <= PinB5:
		return PortB
	default:
		return PortC
	}
}

// Bit returns the bit of p within its port registers.
func (p Pin) Bit() uint8 {
	switch p.Port() {
	case PortD:
		return uint8(p)
	case PortB:
		return uint8(p - PinB0)
	default:
		return uint8(p - PinC0)
	}
}

func (p Pin) String() string {
	if !p.Valid() {
		return "pin(" + itoa(int(p)) + ")"
	}
	return "P" + p.Port().String() + itoa(int(p.Bit()))
}

func (p Port) String() string {
	switch p {
	case PortB:
		return "B"
	case PortC:
		return "C"
	case PortD:
		return "D"
	}
	return "?"
}

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case InputPullup:
		return "input-pullup"
	case Output:
		return "output"
	}
	return "?"
}

// ParsePin accepts a logical pin number ("13"), an Arduino name ("D13",
// "A0") or a port bit ("PB5").
func ParsePin(s string) (Pin, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	var n int
	var err error
	switch {
	case len(name) == 3 && name[0] == 'P':
		var base Pin
		switch name[1] {
		case 'B':
			base = PinB0
		case 'C':
			base = PinC0
		case 'D':
			base = PinD0
		default:
			return 0, errors.Wrapf(ErrInvalidID, "pin %q", s)
		}
		bit := int(name[2] - '0')
		n = int(base) + bit
		if bit < 0 || bit > 7 || Pin(n).Port() != Pin(base).Port() || n >= NumPins {
			return 0, errors.Wrapf(ErrInvalidID, "pin %q", s)
		}
		return Pin(n), nil
	case strings.HasPrefix(name, "A"):
		n, err = atoi(name[1:])
		n += int(PinC0)
	case strings.HasPrefix(name, "D"):
		n, err = atoi(name[1:])
	default:
		n, err = atoi(name)
	}
	if err != nil || n < 0 || n >= NumPins {
		return 0, errors.Wrapf(ErrInvalidID, "pin %q", s)
	}
	return Pin(n), nil
}

// atoi parses an unsigned decimal number. Signs are rejected.
func atoi(s string) (int, error) {
	if s == "" || s[0] < '0' || s[0] > '9' {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(s)
}

var (
	pinRegistry   = NewRegistry(NumPins)
	portCallbacks = NewCallbackTable(NumPorts)

	// portOwners is the line that last registered each port's callback
	portOwners [NumPorts]*Line
)

// Line is an acquired pin. A released line is inert: writes do nothing and
// reads return false.
type Line struct {
	pin  Pin
	dir  Direction
	mask uint8
	hw   *PortHardware
}

// AcquireLine reserves pin and configures its direction. InputPullup enables
// the pull-up, Output starts low.
func AcquireLine(pin Pin, dir Direction) (*Line, error) {
	if !pin.Valid() {
		return nil, errors.Wrapf(ErrInvalidID, "pin %d", pin)
	}
	if dir > Output {
		return nil, errors.Wrapf(ErrInvalidParameter, "pin %s: direction %d", pin, dir)
	}
	hw := &MustHardware().Ports[pin.Port()]
	if !pinRegistry.TryReserve(int(pin)) {
		return nil, errors.Wrapf(ErrAlreadyReserved, "pin %s", pin)
	}

	l := &Line{
		pin:  pin,
		dir:  dir,
		mask: bitMask[uint8](pin.Bit()),
		hw:   hw,
	}

	state := disableInterrupts()
	switch dir {
	case Output:
		hw.Out.ClearBits(l.mask)
		hw.Dir.SetBits(l.mask)
	case InputPullup:
		hw.Dir.ClearBits(l.mask)
		hw.Out.SetBits(l.mask)
	default:
		hw.Dir.ClearBits(l.mask)
		hw.Out.ClearBits(l.mask)
	}
	restoreInterrupts(state)

	RecordEvent(EvtLineAcquire, uint8(pin), uint32(dir))
	return l, nil
}

// IsPinReserved reports whether a line currently holds pin.
func IsPinReserved(pin Pin) bool {
	return pinRegistry.IsReserved(int(pin))
}

// Release returns the pin to its reset state (input, no pull-up, masked) and
// frees it. The port callback is removed if this line registered it last.
// Releasing twice does nothing.
func (l *Line) Release() {
	if l == nil || l.hw == nil {
		return
	}

	state := disableInterrupts()
	l.hw.Mask.ClearBits(l.mask)
	l.hw.Dir.ClearBits(l.mask)
	l.hw.Out.ClearBits(l.mask)
	restoreInterrupts(state)

	port := l.pin.Port()
	if portOwners[port] == l {
		portCallbacks.Remove(int(port))
		portOwners[port] = nil
	}
	pinRegistry.Release(int(l.pin))
	l.hw = nil

	RecordEvent(EvtLineRelease, uint8(l.pin), 0)
}

// Pin returns the line's pin.
func (l *Line) Pin() Pin { return l.pin }

// Port returns the port of the line's pin.
func (l *Line) Port() Port { return l.pin.Port() }

// Direction returns the configured direction.
func (l *Line) Direction() Direction { return l.dir }

// IsReleased reports whether Release was called.
func (l *Line) IsReleased() bool { return l.hw == nil }

func (l *Line) output() bool {
	return l.hw != nil && l.dir == Output
}

// Set drives the line high.
func (l *Line) Set() {
	if !l.output() {
		return
	}
	state := disableInterrupts()
	l.hw.Out.SetBits(l.mask)
	restoreInterrupts(state)
}

// Clear drives the line low.
func (l *Line) Clear() {
	if !l.output() {
		return
	}
	state := disableInterrupts()
	l.hw.Out.ClearBits(l.mask)
	restoreInterrupts(state)
}

// Write drives the line to level.
func (l *Line) Write(level bool) {
	if level {
		l.Set()
	} else {
		l.Clear()
	}
}

// Toggle inverts the line. Writing a one to PINx toggles the PORTx bit in a
// single store, so no critical section is needed.
func (l *Line) Toggle() {
	if !l.output() {
		return
	}
	l.hw.In.Set(l.mask)
}

// Read returns the pin level, for any direction.
func (l *Line) Read() bool {
	if l.hw == nil {
		return false
	}
	return l.hw.In.HasBits(l.mask)
}

// EnableInterrupt unmasks pin change interrupts for this line and enables
// its port and the global interrupt flag.
func (l *Line) EnableInterrupt() {
	if l.hw == nil {
		return
	}
	state := disableInterrupts()
	l.hw.Mask.SetBits(l.mask)
	MustHardware().PortControl.SetBits(l.hw.Enable)
	restoreInterrupts(state)
	enableInterrupts()
}

// DisableInterrupt masks pin change interrupts for this line. The port stays
// enabled for its other lines.
func (l *Line) DisableInterrupt() {
	if l.hw == nil {
		return
	}
	state := disableInterrupts()
	l.hw.Mask.ClearBits(l.mask)
	restoreInterrupts(state)
}

// ToggleInterrupt flips EnableInterrupt/DisableInterrupt.
func (l *Line) ToggleInterrupt() {
	if l.IsInterruptEnabled() {
		l.DisableInterrupt()
	} else {
		l.EnableInterrupt()
	}
}

// IsInterruptEnabled reports whether this line's pin change bit is unmasked.
func (l *Line) IsInterruptEnabled() bool {
	return l.hw != nil && l.hw.Mask.HasBits(l.mask)
}

// EnablePortInterrupts enables pin change interrupts of the line's port.
func (l *Line) EnablePortInterrupts() {
	if l.hw == nil {
		return
	}
	EnablePortInterrupts(l.Port())
}

// DisablePortInterrupts disables pin change interrupts of the line's port,
// for every line on it.
func (l *Line) DisablePortInterrupts() {
	if l.hw == nil {
		return
	}
	DisablePortInterrupts(l.Port())
}

// AddCallback registers action as the port's pin change callback, replacing
// whatever any line of the port registered before.
func (l *Line) AddCallback(action Action) bool {
	if l.hw == nil {
		return false
	}
	port := l.Port()
	if !portCallbacks.Add(int(port), action) {
		return false
	}
	portOwners[port] = l
	RecordEvent(EvtPortCallback, uint8(port), uint32(l.pin))
	return true
}

// RemoveCallback clears the port's pin change callback.
func (l *Line) RemoveCallback() bool {
	if l.hw == nil {
		return false
	}
	port := l.Port()
	portOwners[port] = nil
	return portCallbacks.Remove(int(port))
}

// EnablePortInterrupts sets the port's bit in the pin change control register.
func EnablePortInterrupts(p Port) {
	if p >= NumPorts {
		return
	}
	hw := MustHardware()
	state := disableInterrupts()
	hw.PortControl.SetBits(hw.Ports[p].Enable)
	restoreInterrupts(state)
}

// DisablePortInterrupts clears the port's bit in the pin change control
// register.
func DisablePortInterrupts(p Port) {
	if p >= NumPorts {
		return
	}
	hw := MustHardware()
	state := disableInterrupts()
	hw.PortControl.ClearBits(hw.Ports[p].Enable)
	restoreInterrupts(state)
}

// PortInterruptsEnabled reports whether the port's pin change interrupts are
// enabled.
func PortInterruptsEnabled(p Port) bool {
	if p >= NumPorts {
		return false
	}
	hw := MustHardware()
	return hw.PortControl.HasBits(hw.Ports[p].Enable)
}
