//go:build tinygo && avr

package main

import (
	"device/avr"
	"machine"
	"runtime/interrupt"

	"hwcore/app"
	"hwcore/core"
)

// hardware maps the core onto the ATmega328P registers
var hardware = core.Hardware{
	Ports: [core.NumPorts]core.PortHardware{
		core.PortB: {Dir: avr.DDRB, Out: avr.PORTB, In: avr.PINB, Mask: avr.PCMSK0, Enable: avr.PCICR_PCIE0},
		core.PortC: {Dir: avr.DDRC, Out: avr.PORTC, In: avr.PINC, Mask: avr.PCMSK1, Enable: avr.PCICR_PCIE1},
		core.PortD: {Dir: avr.DDRD, Out: avr.PORTD, In: avr.PIND, Mask: avr.PCMSK2, Enable: avr.PCICR_PCIE2},
	},
	PortControl: avr.PCICR,
	Timers: [core.NumCircuits]core.TimerHardware{
		// clk/8, overflow every 256 counts: 128 us
		core.Timer0: {
			Control:     avr.TCCR0B,
			ClockSelect: avr.TCCR0B_CS01,
			Mask:        avr.TIMSK0,
			MaskBit:     avr.TIMSK0_TOIE0,
		},
		// 16-bit, so CTC at OCR1A = 255 for the same period
		core.Timer1: {
			Control:     avr.TCCR1B,
			ClockSelect: avr.TCCR1B_CS11 | avr.TCCR1B_WGM12,
			Mask:        avr.TIMSK1,
			MaskBit:     avr.TIMSK1_OCIE1A,
			TopHigh:     avr.OCR1AH,
			TopLow:      avr.OCR1AL,
			Top:         255,
		},
		core.Timer2: {
			Control:     avr.TCCR2B,
			ClockSelect: avr.TCCR2B_CS21,
			Mask:        avr.TIMSK2,
			MaskBit:     avr.TIMSK2_TOIE2,
		},
	},
	Watchdog: core.WatchdogHardware{
		Control: avr.WDTCSR,
		Status:  avr.MCUSR,
		Kick:    func() { avr.Asm("wdr") },
	},
}

func main() {
	core.SetHardware(&hardware)

	// Every vector the core handles
	interrupt.New(avr.IRQ_PCINT0, func(interrupt.Interrupt) { core.Dispatch(core.VectorPinChange0) })
	interrupt.New(avr.IRQ_PCINT1, func(interrupt.Interrupt) { core.Dispatch(core.VectorPinChange1) })
	interrupt.New(avr.IRQ_PCINT2, func(interrupt.Interrupt) { core.Dispatch(core.VectorPinChange2) })
	interrupt.New(avr.IRQ_WDT, func(interrupt.Interrupt) { core.Dispatch(core.VectorWatchdog) })
	interrupt.New(avr.IRQ_TIMER2_OVF, func(interrupt.Interrupt) { core.Dispatch(core.VectorTimer2Overflow) })
	interrupt.New(avr.IRQ_TIMER1_COMPA, func(interrupt.Interrupt) { core.Dispatch(core.VectorTimer1CompareA) })
	interrupt.New(avr.IRQ_TIMER0_OVF, func(interrupt.Interrupt) { core.Dispatch(core.VectorTimer0Overflow) })

	// Debug output on the USART when built with debug enabled
	core.SetDebugWriter(func(s string) {
		machine.Serial.Write([]byte(s))
		machine.Serial.Write([]byte("\r\n"))
	})

	a, err := app.New(app.DefaultConfig())
	if err != nil {
		core.DebugPrintln("startup failed: " + err.Error())
		return
	}

	// Main loop: everything else runs in interrupt handlers
	for {
		a.Loop()
	}
}
