//go:build linux

// Package cdev drives LEDs and buttons wired to a Linux GPIO chip through
// the GPIO character device.
package cdev

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"

	"hwcore/core"
)

// Consumer labels the lines this package requests.
const Consumer = "hwcore"

// Chip is an open GPIO chip. Each line can be held by one Led or Button at a
// time.
type Chip struct {
	name string
	chip *gpiocdev.Chip

	mu       sync.Mutex
	registry *core.Registry
}

// OpenChip opens a chip by name ("gpiochip0") or device path.
func OpenChip(name string) (*Chip, error) {
	c, err := gpiocdev.NewChip(name, gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", name)
	}
	n := c.Lines()
	if n > core.MaxRegistryIDs {
		n = core.MaxRegistryIDs
	}
	if n == 0 {
		c.Close()
		return nil, errors.Errorf("%s has no lines", name)
	}
	return &Chip{
		name:     name,
		chip:     c,
		registry: core.NewRegistry(n),
	}, nil
}

// Name returns the name the chip was opened with.
func (c *Chip) Name() string {
	return c.name
}

// Lines returns the number of usable lines.
func (c *Chip) Lines() int {
	return c.registry.Size()
}

// IsReserved reports whether a Led or Button holds offset.
func (c *Chip) IsReserved(offset int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.IsReserved(offset)
}

// Close closes the chip. Lines already requested stay valid until closed.
func (c *Chip) Close() error {
	return c.chip.Close()
}

func (c *Chip) reserve(offset int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if offset < 0 || offset >= c.registry.Size() {
		return errors.Wrapf(core.ErrInvalidID, "%s line %d", c.name, offset)
	}
	if !c.registry.TryReserve(offset) {
		return errors.Wrapf(core.ErrAlreadyReserved, "%s line %d", c.name, offset)
	}
	return nil
}

func (c *Chip) release(offset int) {
	c.mu.Lock()
	c.registry.Release(offset)
	c.mu.Unlock()
}

// request reserves offset and requests it from the kernel, undoing the
// reservation if the request fails.
func (c *Chip) request(offset int, options ...gpiocdev.LineReqOption) (*gpiocdev.Line, error) {
	if err := c.reserve(offset); err != nil {
		return nil, err
	}
	l, err := c.chip.RequestLine(offset, options...)
	if err != nil {
		c.release(offset)
		return nil, errors.Wrapf(err, "%s line %d", c.name, offset)
	}
	return l, nil
}
