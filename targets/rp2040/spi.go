//go:build rp2040 || rp2350

package main

import (
	"errors"
	"machine"

	"fpc2534/host/comm"
)

// spiBusConfig defines a valid SPI pin combination
type spiBusConfig struct {
	spi  *machine.SPI // SPI controller (SPI0 or SPI1)
	sck  machine.Pin
	mosi machine.Pin
	miso machine.Pin
	name string
}

// sensorSPIBuses lists the RP2040 SPI pin combinations
var sensorSPIBuses = map[uint8]spiBusConfig{
	// SPI0 pin combinations
	0: {spi: machine.SPI0, sck: machine.GPIO2, mosi: machine.GPIO3, miso: machine.GPIO0, name: "spi0a"},
	1: {spi: machine.SPI0, sck: machine.GPIO6, mosi: machine.GPIO7, miso: machine.GPIO4, name: "spi0b"},
	2: {spi: machine.SPI0, sck: machine.GPIO18, mosi: machine.GPIO19, miso: machine.GPIO16, name: "spi0c"},
	3: {spi: machine.SPI0, sck: machine.GPIO22, mosi: machine.GPIO23, miso: machine.GPIO20, name: "spi0d"},

	// SPI1 pin combinations
	5: {spi: machine.SPI1, sck: machine.GPIO10, mosi: machine.GPIO11, miso: machine.GPIO8, name: "spi1a"},
	6: {spi: machine.SPI1, sck: machine.GPIO14, mosi: machine.GPIO15, miso: machine.GPIO12, name: "spi1b"},
}

// sensorSPIFrequency is the sensor's SPI clock
const sensorSPIFrequency = 3 * machine.MHz

// setupSPI configures the selected bus in mode 0 and returns a transport
// driving chip select on mode.CS.
func setupSPI(mode ModeConfig) (*comm.SPI, error) {
	busConfig, exists := sensorSPIBuses[mode.SPIBus]
	if !exists {
		return nil, errors.New("invalid SPI bus ID")
	}

	err := busConfig.spi.Configure(machine.SPIConfig{
		Frequency: sensorSPIFrequency,
		SCK:       busConfig.sck,
		SDO:       busConfig.mosi, // SDO = Serial Data Out (MOSI)
		SDI:       busConfig.miso, // SDI = Serial Data In (MISO)
		Mode:      0,
	})
	if err != nil {
		return nil, err
	}

	mode.CS.Configure(machine.PinConfig{Mode: machine.PinOutput})
	mode.CS.High()

	return comm.NewSPI(busConfig.spi, mode.CS, comm.WithName(busConfig.name)), nil
}
