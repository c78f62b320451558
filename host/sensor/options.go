package sensor

import "github.com/loopholelabs/logging/types"

// Config holds the engine configuration.
type Config struct {
	// Logger receives protocol events (optional)
	Logger types.Logger

	// Name identifies the sensor in log events and metrics
	Name string
}

func defaultConfig() Config {
	return Config{Name: "fpc2534"}
}

// Option is a functional option for configuring a Sensor.
type Option func(*Config)

// WithLogger sets a logger for protocol events.
//
// Example:
//
//	log := logging.New(logging.Zerolog, "fpc2534", os.Stderr)
//	s := sensor.New(sensor.WithLogger(log))
func WithLogger(log types.Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

// WithName sets the sensor name used in logs and metrics.
func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}
