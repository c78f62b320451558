package comm

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"fpc2534/host/serial"
	"fpc2534/protocol"
)

// UART is the stream transport for the sensor's UART interface.
//
// A background reader moves bytes from the port into a bounded FIFO so
// DataAvailable and Read never block on the port.
type UART struct {
	port   serial.Port
	config Config

	mu   sync.Mutex
	fifo *protocol.FifoBuffer

	counters counters

	stopChan chan struct{}
	doneChan chan struct{}
}

// NewUART creates a UART transport and starts its reader.
func NewUART(port serial.Port, opts ...Option) *UART {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	u := &UART{
		port:     port,
		config:   cfg,
		fifo:     protocol.NewFifoBuffer(protocol.FifoCapacity),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}

	go u.readLoop()

	return u
}

// DataAvailable reports whether any received bytes are buffered.
func (u *UART) DataAvailable() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return !u.fifo.IsEmpty()
}

// ClearData drops buffered bytes and flushes the port.
func (u *UART) ClearData() {
	u.mu.Lock()
	u.fifo.Reset()
	u.mu.Unlock()

	if err := u.port.Flush(); err != nil && u.config.Logger != nil {
		u.config.Logger.Debug().Str("device", u.config.Name).Err(err).Msg("uart flush failed")
	}
}

// Write sends p to the sensor.
func (u *UART) Write(p []byte) error {
	n, err := u.port.Write(p)
	if err == nil && n != len(p) {
		err = fmt.Errorf("incomplete write: %d/%d bytes", n, len(p))
	}
	if err != nil {
		u.counters.writeErrors.Add(1)
		if u.config.Logger != nil {
			u.config.Logger.Error().Str("device", u.config.Name).Int("len", len(p)).Err(err).Msg("uart write failed")
		}
		return fmt.Errorf("%w: %w", protocol.ErrRuntimeFailure, err)
	}

	u.counters.blocksWritten.Add(1)
	u.counters.bytesWritten.Add(uint64(len(p)))
	return nil
}

// Read fills p from received bytes, or returns ErrNoData.
func (u *UART) Read(p []byte) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.fifo.Dequeue(p) {
		return protocol.ErrNoData
	}
	return nil
}

// readLoop continuously moves bytes from the port into the FIFO
func (u *UART) readLoop() {
	defer close(u.doneChan)

	buffer := make([]byte, 256)

	for {
		select {
		case <-u.stopChan:
			return
		default:
		}

		n, err := u.port.Read(buffer)
		if n > 0 {
			u.enqueue(buffer[:n])
		}
		if err != nil {
			// Read timeouts surface as io.EOF
			if errors.Is(err, io.EOF) {
				continue
			}
			if u.config.Logger != nil {
				u.config.Logger.Debug().Str("device", u.config.Name).Err(err).Msg("uart read failed")
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func (u *UART) enqueue(data []byte) {
	u.mu.Lock()
	ok := u.fifo.Enqueue(data)
	u.mu.Unlock()

	if !ok {
		u.counters.overflows.Add(1)
		if u.config.Logger != nil {
			u.config.Logger.Warn().Str("device", u.config.Name).Int("len", len(data)).Msg("uart fifo overflow, dropping bytes")
		}
		return
	}
	u.counters.blocksRead.Add(1)
	u.counters.bytesRead.Add(uint64(len(data)))
}

// Close stops the reader and closes the port
func (u *UART) Close() error {
	close(u.stopChan)
	err := u.port.Close()
	<-u.doneChan
	return err
}

// GetMetrics returns a snapshot of the transport counters.
func (u *UART) GetMetrics() *Metrics {
	u.mu.Lock()
	buffered := u.fifo.Available()
	u.mu.Unlock()
	return u.counters.snapshot(buffered)
}
