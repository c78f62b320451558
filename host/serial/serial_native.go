//go:build !tinygo

package serial

import (
	"fmt"

	"github.com/tarm/serial"
)

// NativePort is a sensor UART opened through the OS
type NativePort struct {
	*serial.Port
	device string
}

// Open validates cfg, opens the port 8N1 and drops anything the sensor
// sent before we were listening.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	if err := port.Flush(); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to flush serial port %s: %w", cfg.Device, err)
	}

	return &NativePort{Port: port, device: cfg.Device}, nil
}

// Device returns the path the port was opened on
func (p *NativePort) Device() string {
	return p.device
}
