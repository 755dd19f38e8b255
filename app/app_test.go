package app

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwcore/core"
	"hwcore/sim"
)

// board runs the app on a simulated MCU, calling Loop every millisecond.
type board struct {
	t    *testing.T
	mcu  *sim.MCU
	app  *App
	hung bool
}

func newBoard(t *testing.T, cfg Config) *board {
	t.Helper()
	b := &board{t: t, mcu: sim.NewMCU()}
	b.boot(cfg)
	b.mcu.OnReset = func() { b.boot(cfg) }
	return b
}

func (b *board) boot(cfg Config) {
	core.UseSimulator(b.mcu)
	a, err := New(cfg)
	require.NoError(b.t, err)
	b.app = a
	b.hung = false
}

func (b *board) run(d time.Duration) {
	for end := b.mcu.Now() + d; b.mcu.Now() < end; {
		b.mcu.Advance(time.Millisecond)
		if !b.hung {
			b.app.Loop()
		}
	}
}

// click presses the button (active low) for hold, then releases it.
func (b *board) click(hold time.Duration) {
	b.mcu.PortB.Drive(5, false)
	b.run(hold)
	b.mcu.PortB.Drive(5, true)
}

func TestStartup(t *testing.T) {
	b := newBoard(t, DefaultConfig())

	assert.False(t, b.app.Restarted())
	assert.False(t, b.app.Blinking())
	assert.False(t, b.app.LED())
	assert.Equal(t, core.PinB1, b.app.LEDPin())
	assert.Equal(t, core.PinB5, b.app.ButtonPin())
	assert.True(t, core.IsPinReserved(core.PinB1))
	assert.True(t, core.IsCircuitBound(core.Timer0))
	assert.True(t, core.IsCircuitBound(core.Timer1))
	assert.True(t, core.WatchdogSystemResetEnabled())
	assert.Equal(t, 1024*time.Millisecond, b.mcu.Watchdog.Timeout())
}

func TestButtonTogglesBlinking(t *testing.T) {
	b := newBoard(t, DefaultConfig())

	b.click(500 * time.Millisecond)
	assert.True(t, b.app.Blinking(), "release starts blinking")

	toggles := 0
	last := b.app.LED()
	for i := 0; i < 1000; i++ {
		b.run(time.Millisecond)
		if led := b.app.LED(); led != last {
			toggles++
			last = led
		}
	}
	assert.InDelta(t, 10, toggles, 1)

	b.run(500 * time.Millisecond)
	b.click(500 * time.Millisecond)
	assert.False(t, b.app.Blinking(), "second release stops blinking")
	assert.False(t, b.app.LED(), "LED cleared when blinking stops")

	b.run(time.Second)
	assert.False(t, b.app.LED())
	assert.Equal(t, 0, b.mcu.Resets())
}

func TestButtonPortMutedDuringDebounce(t *testing.T) {
	b := newBoard(t, DefaultConfig())

	b.mcu.PortB.Drive(5, false)
	b.run(10 * time.Millisecond)
	assert.False(t, core.PortInterruptsEnabled(core.PortB))

	// bounce: released and pressed again inside the debounce window
	b.mcu.PortB.Drive(5, true)
	b.mcu.PortB.Drive(5, false)
	assert.False(t, b.app.Blinking())

	b.run(400 * time.Millisecond)
	assert.True(t, core.PortInterruptsEnabled(core.PortB))
	assert.Equal(t, 1, b.mcu.CPU.Serviced(sim.VectorPCINT0))
}

func TestHungLoopRestarts(t *testing.T) {
	b := newBoard(t, DefaultConfig())
	b.click(500 * time.Millisecond)
	require.True(t, b.app.Blinking())

	b.hung = true
	b.run(1100 * time.Millisecond)

	assert.Equal(t, 1, b.mcu.Resets())
	assert.True(t, b.app.Restarted())
	assert.False(t, b.app.Blinking(), "fresh start")

	// the restarted firmware works and keeps the watchdog fed
	b.run(3 * time.Second)
	assert.Equal(t, 1, b.mcu.Resets())
	b.click(500 * time.Millisecond)
	assert.True(t, b.app.Blinking())
}

func TestWatchdogWithoutSystemReset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Watchdog.SystemReset = false
	b := newBoard(t, cfg)

	b.hung = true
	b.run(3 * time.Second)
	assert.Equal(t, 0, b.mcu.Resets())
}

func TestClose(t *testing.T) {
	b := newBoard(t, DefaultConfig())
	b.app.Close()

	assert.False(t, core.IsPinReserved(core.PinB1))
	assert.False(t, core.IsPinReserved(core.PinB5))
	assert.False(t, core.IsCircuitBound(core.Timer0))
	assert.False(t, core.IsCircuitBound(core.Timer1))
	assert.False(t, core.WatchdogSystemResetEnabled())

	b.hung = true
	b.run(2 * time.Second)
	assert.Equal(t, 0, b.mcu.Resets())

	a, err := New(DefaultConfig())
	require.NoError(t, err)
	a.Close()
}

func TestNewFailsOnTakenPin(t *testing.T) {
	core.UseSimulator(sim.NewMCU())
	l, err := core.AcquireLine(core.PinB5, core.Input)
	require.NoError(t, err)
	defer l.Release()

	_, err = New(DefaultConfig())
	assert.True(t, errors.Is(err, core.ErrAlreadyReserved), "%v", err)
	assert.False(t, core.IsPinReserved(core.PinB1), "partial setup released")
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name string
		edit func(*Config)
		want error
	}{
		{"bad led", func(c *Config) { c.LED = "PB9" }, core.ErrInvalidID},
		{"bad button", func(c *Config) { c.Button = "" }, core.ErrInvalidID},
		{"shared pin", func(c *Config) { c.Button = "PB1" }, core.ErrInvalidParameter},
		{"bad circuit", func(c *Config) { c.Blink.Circuit = "timer3" }, core.ErrInvalidID},
		{"shared circuit", func(c *Config) { c.Blink.Circuit = "0" }, core.ErrInvalidParameter},
		{"zero debounce", func(c *Config) { c.Debounce.Elapse = 0 }, core.ErrInvalidParameter},
		{"negative blink", func(c *Config) { c.Blink.Elapse = Duration(-time.Second) }, core.ErrInvalidParameter},
		{"odd watchdog", func(c *Config) { c.Watchdog.Timeout = Duration(time.Second) }, core.ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(&cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, tt.want), "%v", err)
		})
	}
}
