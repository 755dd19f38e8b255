package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hwcore/core"
)

func newPinsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pins",
		Short: "Print the logical pin map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PIN\tPORT BIT\tVECTOR\tARDUINO")
			for pin := core.Pin(0); pin < core.NumPins; pin++ {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", pin, pin, core.PortVector(pin.Port()), arduinoName(pin))
			}
			return w.Flush()
		},
	}
}

func arduinoName(pin core.Pin) string {
	if pin.Port() == core.PortC {
		return fmt.Sprintf("A%d", pin.Bit())
	}
	return fmt.Sprintf("D%d", pin)
}
