//go:build linux

package cdev

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
)

// Led is an output line.
type Led struct {
	chip   *Chip
	offset int

	mu   sync.Mutex
	line *gpiocdev.Line
	on   bool
}

// NewLed requests offset as an output, lit if on is set.
func (c *Chip) NewLed(offset int, on bool) (*Led, error) {
	l, err := c.request(offset, gpiocdev.AsOutput(b2i(on)))
	if err != nil {
		return nil, err
	}
	return &Led{chip: c, offset: offset, line: l, on: on}, nil
}

// Offset returns the line offset.
func (l *Led) Offset() int {
	return l.offset
}

func (l *Led) write(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.line == nil {
		return nil
	}
	if err := l.line.SetValue(b2i(on)); err != nil {
		return errors.Wrapf(err, "led %d", l.offset)
	}
	l.on = on
	return nil
}

// On lights the LED.
func (l *Led) On() error { return l.write(true) }

// Off turns the LED off.
func (l *Led) Off() error { return l.write(false) }

// Toggle inverts the LED.
func (l *Led) Toggle() error {
	return l.write(!l.IsEnabled())
}

// IsEnabled reports whether the LED is lit.
func (l *Led) IsEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

// Close turns the LED off and releases its line. Closing twice does nothing.
func (l *Led) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.line == nil {
		return nil
	}
	err := l.line.SetValue(0)
	if cerr := l.line.Close(); err == nil {
		err = cerr
	}
	l.line = nil
	l.on = false
	l.chip.release(l.offset)
	return errors.Wrapf(err, "led %d", l.offset)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
