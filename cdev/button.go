//go:build linux

package cdev

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"

	"hwcore/core"
)

// Edge selects which transitions of a button count as events.
type Edge uint8

const (
	Rising  Edge = iota // released to pressed
	Falling             // pressed to released
	Both
)

func (e Edge) matches(pressed bool) bool {
	switch e {
	case Rising:
		return pressed
	case Falling:
		return !pressed
	}
	return true
}

// Button is an input line with edge detection. It can be polled with
// IsEventDetected from the main loop, and it runs its callback from the
// kernel event goroutine on every matching edge.
type Button struct {
	chip       *Chip
	offset     int
	activeHigh bool

	mu   sync.Mutex
	line *gpiocdev.Line
	last bool

	callbacks    *core.CallbackTable
	callbackEdge atomic.Uint32
	events       atomic.Uint32
}

// NewButton requests offset as an input reporting both edges. activeHigh
// tells whether the line reads 1 while pressed.
func (c *Chip) NewButton(offset int, activeHigh bool) (*Button, error) {
	b := &Button{
		chip:       c,
		offset:     offset,
		activeHigh: activeHigh,
		callbacks:  core.NewCallbackTable(1),
	}
	l, err := c.request(offset,
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(b.handleEvent))
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.line = l
	b.mu.Unlock()

	pressed, err := b.IsPressed()
	if err != nil {
		b.Close()
		return nil, err
	}
	b.mu.Lock()
	b.last = pressed
	b.mu.Unlock()
	return b, nil
}

// Offset returns the line offset.
func (b *Button) Offset() int {
	return b.offset
}

func (b *Button) pressed(level int) bool {
	return (level != 0) == b.activeHigh
}

// IsPressed reads the button.
func (b *Button) IsPressed() (bool, error) {
	b.mu.Lock()
	l := b.line
	b.mu.Unlock()
	if l == nil {
		return false, nil
	}
	v, err := l.Value()
	if err != nil {
		return false, errors.Wrapf(err, "button %d", b.offset)
	}
	return b.pressed(v), nil
}

// IsEventDetected reads the button and reports whether it moved in the
// direction of edge since the previous call.
func (b *Button) IsEventDetected(edge Edge) (bool, error) {
	pressed, err := b.IsPressed()
	if err != nil {
		return false, err
	}
	b.mu.Lock()
	changed := pressed != b.last
	b.last = pressed
	b.mu.Unlock()
	return changed && edge.matches(pressed), nil
}

// AddCallback runs action on every edge matching edge, replacing any
// previous callback. It returns false for a nil action.
func (b *Button) AddCallback(edge Edge, action core.Action) bool {
	if action == nil {
		return false
	}
	b.callbackEdge.Store(uint32(edge))
	return b.callbacks.Add(0, action)
}

// RemoveCallback drops the callback.
func (b *Button) RemoveCallback() bool {
	return b.callbacks.Remove(0)
}

// Events returns how many edges the kernel reported.
func (b *Button) Events() int {
	return int(b.events.Load())
}

func (b *Button) handleEvent(evt gpiocdev.LineEvent) {
	b.events.Add(1)
	level := 0
	if evt.Type == gpiocdev.LineEventRisingEdge {
		level = 1
	}
	if Edge(b.callbackEdge.Load()).matches(b.pressed(level)) {
		b.callbacks.Invoke(0)
	}
}

// Close releases the line and drops the callback. Closing twice does
// nothing.
func (b *Button) Close() error {
	b.mu.Lock()
	l := b.line
	b.line = nil
	b.mu.Unlock()
	if l == nil {
		return nil
	}
	b.callbacks.Clear()
	err := l.Close()
	b.chip.release(b.offset)
	return errors.Wrapf(err, "button %d", b.offset)
}
