// Package comm provides the byte transports the sensor engine talks through.
//
// Three variants sit behind Transport:
//   - Block: whole-transaction buses (I2C) with an interrupt line, buffered
//     through a bounded FIFO
//   - SPI: a bracketed transport that drives chip select per exchange
//   - UART: a byte stream fed by a background reader
package comm

// Transport moves raw frame bytes between the host and the sensor.
type Transport interface {
	// DataAvailable reports whether a read of at least one byte could
	// currently succeed.
	DataAvailable() bool

	// ClearData discards any buffered or pending inbound state.
	ClearData()

	// Write transmits exactly p. Bus failures are ErrRuntimeFailure.
	Write(p []byte) error

	// Read fills all of p or nothing. It returns ErrNoData when fewer
	// than len(p) bytes are obtainable and ErrBadData on corruption.
	Read(p []byte) error
}

// Bracketed is implemented by transports that need exclusive bus
// acquisition around a logical multi-chunk exchange.
type Bracketed interface {
	BeginWrite()
	EndWrite()
	BeginRead()
	EndRead()
}
