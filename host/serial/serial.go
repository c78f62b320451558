// Package serial opens the sensor's UART.
package serial

import (
	"fmt"
	"io"
	"time"

	"fpc2534/protocol"
)

// Port is the byte stream the UART transport reads and writes. Read
// returns io.EOF when ReadTimeout passes without data.
type Port interface {
	io.ReadWriteCloser

	// Flush discards any data received but not yet read
	Flush() error
}

// DefaultBaud is the sensor's factory UART speed
const DefaultBaud = 921600

// Config describes a sensor UART. The sensor always frames 8N1.
type Config struct {
	// Device path, e.g. /dev/ttyACM0
	Device string

	// Baud must be one of the rates the sensor's baud selector offers
	Baud int

	// ReadTimeout bounds each Read so the reader can notice Close
	ReadTimeout time.Duration
}

// DefaultConfig returns the factory settings for device.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 50 * time.Millisecond,
	}
}

// Validate checks the device path and that the sensor can run at Baud.
func (c *Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("serial device path is empty")
	}
	if BaudSelector(c.Baud) == 0 {
		return fmt.Errorf("sensor uart does not support %d baud", c.Baud)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %s", c.ReadTimeout)
	}
	return nil
}

// BaudSelector returns the system config selector for baud, or 0.
func BaudSelector(baud int) uint8 {
	for sel := protocol.UARTBaud9600; sel <= protocol.UARTBaud921600; sel++ {
		if protocol.UARTBaudRate(sel) == baud {
			return sel
		}
	}
	return 0
}
