package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureDebug(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	saved, savedEnabled := debugPrintln, debugEnabled
	t.Cleanup(func() {
		debugPrintln = saved
		debugEnabled = savedEnabled
	})
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	return &lines
}

func TestDebugPrintln(t *testing.T) {
	lines := captureDebug(t)

	SetDebugEnabled(false)
	DebugPrintln("hidden")
	assert.Empty(t, *lines)

	SetDebugEnabled(true)
	assert.True(t, IsDebugEnabled())
	DebugPrintln("shown")
	assert.Equal(t, []string{"shown"}, *lines)
}

func TestEventRingWraps(t *testing.T) {
	ClearEvents()
	for i := 0; i < EventRingSize+8; i++ {
		RecordEvent(EvtTimerElapsed, 1, uint32(i))
	}

	events := Events()
	require.Len(t, events, EventRingSize)
	assert.Equal(t, uint32(9), events[0].Seq)
	assert.Equal(t, uint32(8), events[0].Value)
	assert.Equal(t, uint32(EventRingSize+8), events[EventRingSize-1].Seq)

	ClearEvents()
	assert.Empty(t, Events())
}

func TestDumpEvents(t *testing.T) {
	lines := captureDebug(t)
	newTestMCU(t)

	l, err := AcquireLine(PinB5, Output)
	require.NoError(t, err)
	l.Release()
	assert.False(t, Dispatch(Vector(1)))

	DumpEvents()
	require.Len(t, *lines, 5)
	assert.Equal(t, "[EVENT] === Event Ring Dump ===", (*lines)[0])
	assert.Equal(t, "[EVENT] #1 LINE_ACQUIRE id=13 v=2", (*lines)[1])
	assert.Equal(t, "[EVENT] #2 LINE_RELEASE id=13 v=0", (*lines)[2])
	assert.True(t, strings.Contains((*lines)[3], "UNHANDLED! id=1"))
	assert.Equal(t, "[EVENT] === End Dump ===", (*lines)[4])
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "0", itoa(0))
	assert.Equal(t, "-42", itoa(-42))
	assert.Equal(t, "4294967295", utoa(uint32(4294967295)))
	assert.Equal(t, "255", utoa(uint8(255)))
}

func TestDispatchVectors(t *testing.T) {
	newTestMCU(t)

	for _, v := range Vectors() {
		assert.True(t, Dispatch(v), "vector %d", v)
	}
	for _, v := range []Vector{0, 1, 2, 7, 8, 10, 12, 13, 14, 15, 17, 25} {
		assert.False(t, Dispatch(v), "vector %d", v)
	}

	assert.Equal(t, VectorPinChange0, PortVector(PortB))
	assert.Equal(t, VectorPinChange1, PortVector(PortC))
	assert.Equal(t, VectorPinChange2, PortVector(PortD))
	assert.Equal(t, VectorTimer1CompareA, CircuitVector(Timer1))
}
