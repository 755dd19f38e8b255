//go:build !tinygo

package core

import "hwcore/sim"

// UseSimulator binds the core to a simulated MCU: its registers become the
// hardware, its I-bit guards critical sections, and its vectors dispatch into
// the core. Every reservation, binding and callback is forgotten.
func UseSimulator(m *sim.MCU) {
	resetState()
	cpu = &m.CPU

	hw := &Hardware{PortControl: &m.PCICR}
	for _, p := range []struct {
		port Port
		sp   *sim.Port
		bit  uint8
	}{
		{PortB, &m.PortB, sim.PCIE0},
		{PortC, &m.PortC, sim.PCIE1},
		{PortD, &m.PortD, sim.PCIE2},
	} {
		hw.Ports[p.port] = PortHardware{
			Dir:    &p.sp.DDR,
			Out:    &p.sp.PORT,
			In:     &p.sp.PIN,
			Mask:   &p.sp.PCMSK,
			Enable: p.bit,
		}
	}

	hw.Timers[Timer0] = TimerHardware{
		Control:     &m.Timer0.TCCRB,
		ClockSelect: sim.CS01,
		Mask:        &m.Timer0.TIMSK,
		MaskBit:     sim.TOIE,
	}
	hw.Timers[Timer1] = TimerHardware{
		Control:     &m.Timer1.TCCRB,
		ClockSelect: sim.CS11 | sim.WGM12,
		Mask:        &m.Timer1.TIMSK,
		MaskBit:     sim.OCIEA,
		TopHigh:     &m.Timer1.OCRAH,
		TopLow:      &m.Timer1.OCRAL,
		Top:         255,
	}
	hw.Timers[Timer2] = TimerHardware{
		Control:     &m.Timer2.TCCRB,
		ClockSelect: sim.CS21,
		Mask:        &m.Timer2.TIMSK,
		MaskBit:     sim.TOIE,
	}

	hw.Watchdog = WatchdogHardware{
		Control: &m.Watchdog.WDTCSR,
		Status:  &m.MCUSR,
		Kick:    m.Watchdog.Kick,
	}
	SetHardware(hw)

	for _, v := range vectors {
		v := v
		m.CPU.Handle(sim.Vector(v), func() { Dispatch(v) })
	}
}
