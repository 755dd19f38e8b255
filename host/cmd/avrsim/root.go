package main

import (
	"io"
	"log"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"hwcore/core"
	"hwcore/host/serial"
)

type rootOptions struct {
	debug     bool
	logDevice string
	baud      int

	logger *log.Logger
	port   serial.Port
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "avrsim",
		Short:         "Run the blinker firmware on a simulated ATmega328P",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.openLog(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.closeLog()
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.debug, "debug", "d", false, "print core debug output and the event ring")
	flags.StringVar(&opts.logDevice, "log-device", "", "write the log to this serial device instead of stderr")
	flags.IntVar(&opts.baud, "baud", serial.DefaultConfig("").Baud, "baud rate of --log-device")

	cmd.AddCommand(newRunCmd(opts), newPinsCmd())
	return cmd
}

func (o *rootOptions) openLog(stderr io.Writer) error {
	out := stderr
	if o.logDevice != "" {
		cfg := serial.DefaultConfig(o.logDevice)
		cfg.Baud = o.baud
		port, err := serial.Open(cfg)
		if err != nil {
			return err
		}
		o.port = port
		out = serial.NewSink(port)
	}

	o.logger = log.New(out, "avrsim: ", 0)
	if o.port != nil {
		o.logger.Printf("logging to %s at %d baud", o.port.Device(), o.baud)
	}
	core.SetDebugWriter(func(s string) { o.logger.Println(s) })
	core.SetDebugEnabled(o.debug)
	return nil
}

func (o *rootOptions) closeLog() error {
	if o.port == nil {
		return nil
	}
	err := o.port.Close()
	o.port = nil
	return errors.Wrap(err, "close log device")
}
