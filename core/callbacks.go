package core

import (
	"reflect"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Action is a callback run from interrupt context.
type Action func()

// MaxCallbackSlots bounds the size of a CallbackTable.
const MaxCallbackSlots = 4

// CallbackTable maps slots (a port, a timer circuit) to at most one action.
//
// Each slot is a single pointer-sized cell written with one atomic store, so
// the main loop may add or remove actions while the interrupt handler that
// reads the slot stays enabled. Writing an occupied slot replaces its action.
type CallbackTable struct {
	slots [MaxCallbackSlots]atomic.Pointer[Action]
	size  int
}

// NewCallbackTable returns a table with size slots.
func NewCallbackTable(size int) *CallbackTable {
	if size <= 0 || size > MaxCallbackSlots {
		panic("callbacks: size out of range")
	}
	return &CallbackTable{size: size}
}

func (t *CallbackTable) valid(slot int) bool {
	return slot >= 0 && slot < t.size
}

// Set stores action in slot, replacing any previous action.
func (t *CallbackTable) Set(slot int, action Action) error {
	if action == nil {
		return errors.Wrapf(ErrEmptyAction, "slot %d", slot)
	}
	if !t.valid(slot) {
		return errors.Wrapf(ErrInvalidID, "slot %d", slot)
	}
	t.slots[slot].Store(&action)
	return nil
}

// Add is Set reporting success as a bool.
func (t *CallbackTable) Add(slot int, action Action) bool {
	return t.Set(slot, action) == nil
}

// Remove empties slot. It returns false only if slot is out of range.
func (t *CallbackTable) Remove(slot int) bool {
	if !t.valid(slot) {
		return false
	}
	t.slots[slot].Store(nil)
	return true
}

// RemoveAction empties every slot holding action and reports whether one was
// found. Actions match by code identity, so two closures over the same
// function literal are the same action. It scans every slot.
func (t *CallbackTable) RemoveAction(action Action) bool {
	if action == nil {
		return false
	}
	want := reflect.ValueOf(action).Pointer()
	found := false
	for i := 0; i < t.size; i++ {
		p := t.slots[i].Load()
		if p == nil || reflect.ValueOf(*p).Pointer() != want {
			continue
		}
		if t.slots[i].CompareAndSwap(p, nil) {
			found = true
		}
	}
	return found
}

// Invoke runs the action in slot and reports whether there was one. An empty
// slot is the normal case of an interrupt nobody listens to.
func (t *CallbackTable) Invoke(slot int) bool {
	if !t.valid(slot) {
		return false
	}
	p := t.slots[slot].Load()
	if p == nil {
		return false
	}
	(*p)()
	return true
}

// IsSet reports whether slot holds an action.
func (t *CallbackTable) IsSet(slot int) bool {
	return t.valid(slot) && t.slots[slot].Load() != nil
}

// Len returns the number of slots.
func (t *CallbackTable) Len() int {
	return t.size
}

// Clear empties every slot.
func (t *CallbackTable) Clear() {
	for i := range t.slots {
		t.slots[i].Store(nil)
	}
}
