//go:build rp2040 || rp2350

package main

import (
	"errors"
	"machine"
	"time"

	"fpc2534/host/comm"
	"fpc2534/host/sensor"
	"fpc2534/protocol"
)

// signaledTransport is a transport fed by the sensor IRQ line
type signaledTransport interface {
	comm.Transport
	Signal()
}

// frameErrors counts frames dropped by the engine or a recovered panic
var frameErrors uint32

// errorReportInterval is how often a changed frameErrors is printed
const errorReportInterval = 10 * time.Second

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitConsole()

	mode := GetMode()
	var t signaledTransport
	switch mode.Bus {
	case BusSPI:
		t, err = setupSPI(mode)
	default:
		t, err = setupI2C(mode)
	}
	if err != nil {
		ConsolePrintln("bus setup failed: " + err.Error())
		return
	}

	mode.IRQ.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	err = mode.IRQ.SetInterrupt(machine.PinRising, func(machine.Pin) {
		t.Signal()
	})
	if err != nil {
		ConsolePrintln("irq setup failed: " + err.Error())
		return
	}
	// the sensor may have raised IRQ before the handler was installed
	if mode.IRQ.Get() {
		t.Signal()
	}

	dev := sensor.New(sensor.WithName("fpc2534"))
	a := newApp(dev)
	if err := dev.Initialize(t); err != nil {
		ConsolePrintln("init failed: " + err.Error())
		return
	}
	a.next = dev.RequestStatus

	var reported uint32
	lastReport := time.Now()
	for {
		if time.Since(lastReport) >= errorReportInterval {
			lastReport = time.Now()
			if frameErrors != reported {
				reported = frameErrors
				ConsolePrintln("frame errors: " + itoa(int(reported)))
			}
		}

		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					frameErrors++
					dev.ClearData()
				}
			}()

			err := dev.ProcessNextResponse()
			switch {
			case err == nil, errors.Is(err, protocol.ErrNoData):
			default:
				frameErrors++
				ConsolePrintln("frame error: " + err.Error())
			}

			if err := a.step(); err != nil {
				ConsolePrintln("request failed: " + err.Error())
			}
		}()

		// Yield to the interrupt handler and USB
		time.Sleep(time.Millisecond)
	}
}
