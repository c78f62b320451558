//go:build linux

package config

import (
	"context"

	"github.com/loopholelabs/logging/types"

	"fpc2534/host/bus"
	"fpc2534/host/comm"
)

// signaler is a transport driven by the sensor interrupt line
type signaler interface {
	comm.Transport
	Signal()
}

func openBus(ss *SensorSchema, log types.Logger, opts []comm.Option) (*Device, error) {
	d := &Device{Name: ss.Name}
	fail := func(err error) (*Device, error) {
		d.Close()
		return nil, err
	}

	irq, err := bus.OpenGPIOInterrupt(*ss.IRQGPIO, log)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, irq)

	var t signaler
	switch ss.Transport {
	case TransportI2C:
		i2c, err := bus.OpenI2CDev(ss.Device)
		if err != nil {
			return fail(err)
		}
		d.closers = append(d.closers, i2c)
		t = comm.NewBlock(bus.NewI2CBlock(i2c, uint16(ss.Address)), opts...)
	case TransportSPI:
		cs, err := bus.OpenGPIOOutput(*ss.CSGPIO)
		if err != nil {
			return fail(err)
		}
		d.closers = append(d.closers, cs)
		spi, err := bus.OpenSPIDev(ss.Device, uint32(ss.SpeedHz))
		if err != nil {
			return fail(err)
		}
		d.closers = append(d.closers, spi)
		t = comm.NewSPI(spi, cs, opts...)
	}

	d.Transport = t
	d.watchInterrupt(func(ctx context.Context) error {
		return irq.Watch(ctx, t.Signal)
	})
	return d, nil
}
