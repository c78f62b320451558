package config

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/loopholelabs/logging/types"

	"fpc2534/host/comm"
	"fpc2534/host/serial"
)

// Device is an opened sensor transport plus the resources behind it.
type Device struct {
	Name      string
	Transport comm.Transport

	closers []io.Closer
	cancel  context.CancelFunc
	watch   chan error
}

type metricsSource interface {
	GetMetrics() *comm.Metrics
}

// GetMetrics returns the transport counters.
func (d *Device) GetMetrics() *comm.Metrics {
	if m, ok := d.Transport.(metricsSource); ok {
		return m.GetMetrics()
	}
	return &comm.Metrics{}
}

// Close stops the interrupt watcher and releases every resource.
func (d *Device) Close() error {
	var errs []error
	if d.cancel != nil {
		d.cancel()
		if err := <-d.watch; err != nil && !errors.Is(err, context.Canceled) {
			errs = append(errs, err)
		}
	}
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open builds the transport described by ss.
func Open(ss *SensorSchema, log types.Logger) (*Device, error) {
	if err := ss.Validate(); err != nil {
		return nil, err
	}
	opts := []comm.Option{
		comm.WithName(ss.Name),
		comm.WithLogger(log),
		comm.WithReadDelay(ss.ReadDelayDuration()),
	}

	switch ss.Transport {
	case TransportUART:
		cfg := serial.DefaultConfig(ss.Device)
		cfg.Baud = ss.Baud
		port, err := serial.Open(cfg)
		if err != nil {
			return nil, err
		}
		u := comm.NewUART(port, opts...)
		return &Device{Name: ss.Name, Transport: u, closers: []io.Closer{u}}, nil
	case TransportI2C, TransportSPI:
		return openBus(ss, log, opts)
	default:
		return nil, fmt.Errorf("unknown transport %q", ss.Transport)
	}
}

// watchInterrupt runs watch until the device is closed
func (d *Device) watchInterrupt(watch func(ctx context.Context) error) {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.watch = make(chan error, 1)
	go func() {
		d.watch <- watch(ctx)
	}()
}
