//go:build rp2040 || rp2350

package main

import "machine"

// SensorBus selects how the sensor is wired
type SensorBus uint8

const (
	BusI2C SensorBus = iota
	BusSPI
)

// ModeConfig describes the sensor wiring
type ModeConfig struct {
	Bus SensorBus

	// IRQ is the sensor's data-ready line
	IRQ machine.Pin

	// I2C pins, used when Bus is BusI2C
	SDA, SCL machine.Pin

	// SPI bus id from sensorSPIBuses and chip select, used when Bus is BusSPI
	SPIBus uint8
	CS     machine.Pin
}

// GetMode returns the wiring of the SparkFun FPC2534 breakout on a Pico.
// Change Bus to BusSPI when the board's SPI jumper is closed.
func GetMode() ModeConfig {
	return ModeConfig{
		Bus:    BusI2C,
		IRQ:    machine.GPIO15,
		SDA:    machine.GPIO4,
		SCL:    machine.GPIO5,
		SPIBus: 2,
		CS:     machine.GPIO17,
	}
}
