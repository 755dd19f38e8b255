package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryReserve(t *testing.T) {
	r := NewRegistry(NumPins)

	for id := 0; id < NumPins; id++ {
		assert.True(t, r.TryReserve(id), "id %d", id)
		assert.False(t, r.TryReserve(id), "id %d reserved twice", id)
		assert.True(t, r.IsReserved(id))
	}
	assert.Equal(t, NumPins, r.Reserved())

	r.Release(4)
	assert.False(t, r.IsReserved(4))
	assert.True(t, r.TryReserve(4))
}

func TestRegistryOutOfRange(t *testing.T) {
	r := NewRegistry(3)

	assert.False(t, r.TryReserve(-1))
	assert.False(t, r.TryReserve(3))
	assert.False(t, r.IsReserved(3))
	assert.Equal(t, 0, r.Reserved())

	// no side effects on failure
	r.Release(3)
	r.Release(-1)
	assert.Equal(t, 0, r.Reserved())
}

func TestRegistryReleaseIdempotent(t *testing.T) {
	r := NewRegistry(MaxRegistryIDs)
	assert.Equal(t, MaxRegistryIDs, r.Size())

	assert.True(t, r.TryReserve(63))
	r.Release(63)
	r.Release(63)
	assert.False(t, r.IsReserved(63))
	assert.True(t, r.TryReserve(63))

	r.Clear()
	assert.Equal(t, 0, r.Reserved())
}

func TestNewRegistryPanics(t *testing.T) {
	assert.Panics(t, func() { NewRegistry(0) })
	assert.Panics(t, func() { NewRegistry(MaxRegistryIDs + 1) })
}
