package app

import (
	"time"

	"github.com/pkg/errors"

	"hwcore/core"
)

// Duration is a time.Duration written as "300ms" or as a number of
// milliseconds in configuration files.
type Duration time.Duration

// TimerConfig selects a timer circuit and its period.
type TimerConfig struct {
	Circuit string   `yaml:"circuit"`
	Elapse  Duration `yaml:"elapse"`
}

// WatchdogConfig selects the watchdog window and whether a missed kick
// restarts the system.
type WatchdogConfig struct {
	Timeout     Duration `yaml:"timeout"`
	SystemReset bool     `yaml:"system_reset"`
}

// Config describes the blinker: an LED, a button toggling it, a debounce
// timer muting the button port after each edge, a blink timer and the
// watchdog.
type Config struct {
	LED      string         `yaml:"led"`
	Button   string         `yaml:"button"`
	Debounce TimerConfig    `yaml:"debounce"`
	Blink    TimerConfig    `yaml:"blink"`
	Watchdog WatchdogConfig `yaml:"watchdog"`
}

// DefaultConfig returns the board wiring: LED on pin 9, button on pin 13.
func DefaultConfig() Config {
	return Config{
		LED:    "9",
		Button: "13",
		Debounce: TimerConfig{
			Circuit: "timer0",
			Elapse:  Duration(300 * time.Millisecond),
		},
		Blink: TimerConfig{
			Circuit: "timer1",
			Elapse:  Duration(100 * time.Millisecond),
		},
		Watchdog: WatchdogConfig{
			Timeout:     Duration(1024 * time.Millisecond),
			SystemReset: true,
		},
	}
}

type settings struct {
	led, button     core.Pin
	debounce, blink core.Circuit
	debounceElapse  time.Duration
	blinkElapse     time.Duration
	watchdog        core.WatchdogTimeout
	systemReset     bool
}

func (c Config) resolve() (settings, error) {
	var s settings
	var err error

	if s.led, err = core.ParsePin(c.LED); err != nil {
		return s, errors.Wrap(err, "led")
	}
	if s.button, err = core.ParsePin(c.Button); err != nil {
		return s, errors.Wrap(err, "button")
	}
	if s.led == s.button {
		return s, errors.Wrapf(core.ErrInvalidParameter, "led and button share pin %s", s.led)
	}

	if s.debounce, err = core.ParseCircuit(c.Debounce.Circuit); err != nil {
		return s, errors.Wrap(err, "debounce")
	}
	if s.blink, err = core.ParseCircuit(c.Blink.Circuit); err != nil {
		return s, errors.Wrap(err, "blink")
	}
	if s.debounce == s.blink {
		return s, errors.Wrapf(core.ErrInvalidParameter, "debounce and blink share %s", s.blink)
	}

	s.debounceElapse = time.Duration(c.Debounce.Elapse)
	s.blinkElapse = time.Duration(c.Blink.Elapse)
	if s.debounceElapse <= 0 {
		return s, errors.Wrapf(core.ErrInvalidParameter, "debounce elapse %s", s.debounceElapse)
	}
	if s.blinkElapse <= 0 {
		return s, errors.Wrapf(core.ErrInvalidParameter, "blink elapse %s", s.blinkElapse)
	}

	if s.watchdog, err = core.WatchdogTimeoutFor(time.Duration(c.Watchdog.Timeout)); err != nil {
		return s, err
	}
	s.systemReset = c.Watchdog.SystemReset
	return s, nil
}

// Validate checks pins, circuits and durations.
func (c Config) Validate() error {
	_, err := c.resolve()
	return err
}
