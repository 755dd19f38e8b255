// Command avrsim runs the blinker firmware on a simulated ATmega328P.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
