package comm

import (
	"time"

	"github.com/loopholelabs/logging/types"
)

// Config holds transport configuration.
type Config struct {
	// Logger receives transport events (optional)
	Logger types.Logger

	// Name identifies the device in log events and metrics
	Name string

	// ReadDelay is how long the SPI transport waits after asserting chip
	// select before clocking data out of the sensor
	ReadDelay time.Duration
}

func defaultConfig() Config {
	return Config{
		Name:      "fpc2534",
		ReadDelay: 600 * time.Microsecond,
	}
}

// Option is a functional option for configuring a transport.
type Option func(*Config)

// WithLogger sets a logger for transport events.
func WithLogger(log types.Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

// WithName sets the device name used in logs and metrics.
func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

// WithReadDelay sets the SPI chip-select to clock delay.
func WithReadDelay(d time.Duration) Option {
	return func(c *Config) {
		c.ReadDelay = d
	}
}
