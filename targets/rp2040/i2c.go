//go:build rp2040 || rp2350

package main

import (
	"machine"

	"fpc2534/host/bus"
	"fpc2534/host/comm"
)

// sensorI2CFrequency is the fast-mode clock the sensor supports
const sensorI2CFrequency = 400 * machine.KHz

// setupI2C configures I2C0 on the given pins and returns a block transport
// addressing the sensor.
func setupI2C(mode ModeConfig) (*comm.Block, error) {
	i2c := machine.I2C0
	err := i2c.Configure(machine.I2CConfig{
		Frequency: sensorI2CFrequency,
		SDA:       mode.SDA,
		SCL:       mode.SCL,
	})
	if err != nil {
		return nil, err
	}

	return comm.NewBlock(bus.NewI2CBlock(i2c, bus.DefaultI2CAddress), comm.WithName("i2c0")), nil
}
