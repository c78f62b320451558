// Package bus adapts hardware buses to the sensor transports.
package bus

import (
	"tinygo.org/x/drivers"
)

// DefaultI2CAddress is the sensor's 7-bit I2C address
const DefaultI2CAddress = 0x24

// I2CBlock runs each sensor block as one I2C transaction.
type I2CBlock struct {
	bus  drivers.I2C
	addr uint16
}

// NewI2CBlock binds bus to the sensor at addr.
func NewI2CBlock(bus drivers.I2C, addr uint16) *I2CBlock {
	return &I2CBlock{bus: bus, addr: addr}
}

// WriteBlock writes p in a single transaction.
func (b *I2CBlock) WriteBlock(p []byte) error {
	return b.bus.Tx(b.addr, p, nil)
}

// ReadBlock reads exactly len(p) bytes in a single transaction.
func (b *I2CBlock) ReadBlock(p []byte) error {
	return b.bus.Tx(b.addr, nil, p)
}
