package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"hwcore/app"
	"hwcore/core"
	"hwcore/sim"
)

type runOptions struct {
	config   string
	duration time.Duration
	step     time.Duration
	speed    float64
	presses  []time.Duration
	hold     time.Duration
	hangAt   time.Duration
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Boot the firmware and step virtual time",
		Long: `Boot the blinker firmware on a simulated part and run its main loop.

Each step advances virtual time and runs one main loop pass, which kicks the
watchdog. --press clicks the button at the given virtual times; --hang-at stops
the main loop so the watchdog restarts the firmware.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.DefaultConfig()
			if opts.config != "" {
				var err error
				if cfg, err = app.LoadConfigFile(opts.config); err != nil {
					return err
				}
			}
			if opts.step <= 0 {
				return errors.Errorf("step must be positive, got %s", opts.step)
			}

			s := newSimulation(cfg, root)
			if err := s.boot(); err != nil {
				return err
			}
			defer func() { s.app.Close() }()

			s.run(opts)
			if s.err != nil {
				return s.err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ran %s: %d button clicks, %d LED toggles, %d watchdog resets\n",
				opts.duration, s.clicks, s.toggles, s.mcu.Resets())
			if root.debug {
				core.DumpEvents()
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.config, "config", "c", "", "YAML configuration (default: built in)")
	flags.DurationVar(&opts.duration, "duration", 5*time.Second, "virtual time to run")
	flags.DurationVar(&opts.step, "step", time.Millisecond, "virtual time per main loop pass")
	flags.Float64Var(&opts.speed, "speed", 0, "virtual seconds per wall clock second, 0 runs flat out")
	flags.DurationSliceVar(&opts.presses, "press", nil, "click the button at these virtual times")
	flags.DurationVar(&opts.hold, "hold", 500*time.Millisecond, "how long each click holds the button down")
	flags.DurationVar(&opts.hangAt, "hang-at", 0, "stop the main loop at this virtual time (0 never)")
	return cmd
}

// simulation is the board: the part, the firmware running on it and the
// finger on the button.
type simulation struct {
	cfg  app.Config
	root *rootOptions
	mcu  *sim.MCU
	app  *app.App
	err  error

	hung    bool
	led     bool
	blink   bool
	clicks  int
	toggles int
}

func newSimulation(cfg app.Config, root *rootOptions) *simulation {
	s := &simulation{cfg: cfg, root: root, mcu: sim.NewMCU()}
	s.mcu.OnReset = func() {
		root.logger.Printf("%s: watchdog reset", s.mcu.Now())
		if err := s.boot(); err != nil {
			s.err = errors.Wrap(err, "restart")
		}
	}
	return s
}

// boot is the reset vector: bind the core to the part and start the firmware.
func (s *simulation) boot() error {
	core.UseSimulator(s.mcu)
	a, err := app.New(s.cfg)
	if err != nil {
		return err
	}
	s.app = a
	s.hung = false

	if a.Restarted() {
		s.root.logger.Printf("%s: booted after watchdog reset", s.mcu.Now())
	} else {
		s.root.logger.Printf("%s: booted, led %s, button %s", s.mcu.Now(), a.LEDPin(), a.ButtonPin())
	}
	return nil
}

func (s *simulation) button(level bool) {
	pin := s.app.ButtonPin()
	s.mcu.Port(pin.Port().String()[0]).Drive(pin.Bit(), level)
}

func (s *simulation) run(opts *runOptions) {
	type action struct {
		at    time.Duration
		press bool
	}
	var script []action
	for _, at := range opts.presses {
		script = append(script, action{at, true}, action{at + opts.hold, false})
	}

	start := time.Now()
	hangArmed := opts.hangAt > 0
	for s.mcu.Now() < opts.duration && s.err == nil {
		now := s.mcu.Now()

		for i := 0; i < len(script); {
			if script[i].at > now {
				i++
				continue
			}
			if script[i].press {
				s.clicks++
				s.root.logger.Printf("%s: button pressed", now)
			} else {
				s.root.logger.Printf("%s: button released", now)
			}
			s.button(!script[i].press)
			script = append(script[:i], script[i+1:]...)
		}

		if hangArmed && now >= opts.hangAt {
			hangArmed = false
			s.hung = true
			s.root.logger.Printf("%s: main loop hangs", now)
		}

		s.mcu.Advance(opts.step)
		if !s.hung {
			s.app.Loop()
		}
		s.observe()

		if opts.speed > 0 {
			wall := time.Duration(float64(s.mcu.Now()) / opts.speed)
			if d := wall - time.Since(start); d > 0 {
				time.Sleep(d)
			}
		}
	}
}

// observe logs state changes of the LED and blink timer.
func (s *simulation) observe() {
	if led := s.app.LED(); led != s.led {
		s.led = led
		s.toggles++
		core.DebugPrintln(s.mcu.Now().String() + ": led " + onOff(led))
	}
	if blink := s.app.Blinking(); blink != s.blink {
		s.blink = blink
		s.root.logger.Printf("%s: blinking %s", s.mcu.Now(), onOff(blink))
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
