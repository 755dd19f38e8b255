// Package app is the blinker firmware: a button toggles a blinking LED, the
// button port is muted for a debounce period after every edge, and the
// watchdog restarts the board if the main loop stops.
package app

import (
	"github.com/pkg/errors"

	"hwcore/core"
)

// App owns the blinker's lines and timers.
type App struct {
	cfg settings

	led      *core.Line
	button   *core.Line
	debounce *core.SoftTimer
	blink    *core.SoftTimer

	restarted bool
}

// New acquires the hardware described by cfg, registers the callbacks and
// arms the watchdog. It is the whole startup sequence and is safe to run
// again after a watchdog restart.
func New(cfg Config) (*App, error) {
	s, err := cfg.resolve()
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:       s,
		restarted: core.WatchdogResetCaused(),
	}
	if err := a.setup(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) setup() error {
	var err error
	s := a.cfg

	if a.led, err = core.AcquireLine(s.led, core.Output); err != nil {
		return errors.Wrap(err, "led")
	}
	if a.button, err = core.AcquireLine(s.button, core.InputPullup); err != nil {
		return errors.Wrap(err, "button")
	}
	if a.debounce, err = core.BindTimer(s.debounce, s.debounceElapse, false); err != nil {
		return errors.Wrap(err, "debounce timer")
	}
	if a.blink, err = core.BindTimer(s.blink, s.blinkElapse, false); err != nil {
		return errors.Wrap(err, "blink timer")
	}

	a.button.AddCallback(a.onButton)
	a.debounce.AddCallback(a.onDebounce)
	a.blink.AddCallback(a.onBlink)
	a.button.EnableInterrupt()

	if err := core.WatchdogInit(s.watchdog); err != nil {
		return err
	}
	if s.systemReset {
		core.WatchdogEnableSystemReset()
	} else {
		core.WatchdogDisableSystemReset()
	}

	core.DebugPrintln("app: led=" + s.led.String() + " button=" + s.button.String() +
		" watchdog=" + s.watchdog.String())
	return nil
}

// onButton runs on every edge of the button port. The port is muted until
// the debounce timer elapses; a release (pin back high) toggles blinking.
func (a *App) onButton() {
	a.button.DisablePortInterrupts()
	a.debounce.Start()

	if a.button.Read() {
		a.blink.Toggle()
		if !a.blink.IsEnabled() {
			a.led.Clear()
		}
	}
}

func (a *App) onDebounce() {
	a.debounce.Stop()
	a.button.EnablePortInterrupts()
}

func (a *App) onBlink() {
	a.led.Toggle()
}

// Loop is one pass of the main loop. Everything else happens in interrupt
// handlers.
func (a *App) Loop() {
	core.WatchdogReset()
}

// Restarted reports whether this startup followed a watchdog reset.
func (a *App) Restarted() bool {
	return a.restarted
}

// LED returns the level of the LED line.
func (a *App) LED() bool {
	return a.led.Read()
}

// Blinking reports whether the blink timer runs.
func (a *App) Blinking() bool {
	return a.blink != nil && a.blink.IsEnabled()
}

// LEDPin returns the pin driving the LED.
func (a *App) LEDPin() core.Pin {
	return a.cfg.led
}

// ButtonPin returns the pin reading the button.
func (a *App) ButtonPin() core.Pin {
	return a.cfg.button
}

// Close disarms the watchdog and releases every line and timer.
func (a *App) Close() {
	if a.button != nil {
		a.button.DisableInterrupt()
	}
	core.WatchdogReset()
	core.WatchdogDisableSystemReset()

	a.blink.Release()
	a.debounce.Release()
	a.button.Release()
	a.led.Release()
}
