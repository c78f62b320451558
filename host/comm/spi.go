package comm

import (
	"fmt"
	"time"

	"tinygo.org/x/drivers"

	"fpc2534/protocol"
)

// OutputPin drives a GPIO line. machine.Pin satisfies it under TinyGo.
type OutputPin interface {
	Set(high bool)
}

// SPI is the bracketed transport for the sensor's SPI interface.
//
// The sensor clocks a frame out whenever the host asserts chip select, so
// reads never report ErrNoData. DataAvailable follows the interrupt line;
// the first read after an interrupt consumes the pending flag.
type SPI struct {
	bus     drivers.SPI
	cs      OutputPin
	config  Config
	pending PendingFlag
	inWrite bool

	counters counters
}

// NewSPI creates an SPI transport using cs as the active-low chip select.
func NewSPI(bus drivers.SPI, cs OutputPin, opts ...Option) *SPI {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cs.Set(true)
	return &SPI{
		bus:    bus,
		cs:     cs,
		config: cfg,
	}
}

// Signal is the interrupt handler. It is safe to call from any context.
func (s *SPI) Signal() {
	s.pending.Signal()
}

// DataAvailable reports whether the sensor has signalled a frame.
func (s *SPI) DataAvailable() bool {
	return s.pending.Pending()
}

// ClearData drops the pending interrupt.
func (s *SPI) ClearData() {
	s.pending.Clear()
}

// BeginWrite asserts chip select for an outbound exchange.
func (s *SPI) BeginWrite() {
	if s.inWrite {
		return
	}
	s.cs.Set(false)
	time.Sleep(s.config.ReadDelay)
	s.inWrite = true
}

// EndWrite releases chip select.
func (s *SPI) EndWrite() {
	if !s.inWrite {
		return
	}
	s.cs.Set(true)
	s.inWrite = false
}

// BeginRead is a no-op; every Read is its own chip-select cycle.
func (s *SPI) BeginRead() {}

// EndRead is a no-op.
func (s *SPI) EndRead() {}

// Write clocks p out to the sensor. Outside a BeginWrite/EndWrite pair the
// write is bracketed on its own.
func (s *SPI) Write(p []byte) error {
	if !s.inWrite {
		s.BeginWrite()
		defer s.EndWrite()
	}

	if err := s.bus.Tx(p, nil); err != nil {
		s.counters.writeErrors.Add(1)
		if s.config.Logger != nil {
			s.config.Logger.Error().Str("device", s.config.Name).Int("len", len(p)).Err(err).Msg("spi write failed")
		}
		return fmt.Errorf("%w: %w", protocol.ErrRuntimeFailure, err)
	}

	s.counters.blocksWritten.Add(1)
	s.counters.bytesWritten.Add(uint64(len(p)))
	return nil
}

// Read clocks len(p) bytes in from the sensor, ending any open write first.
func (s *SPI) Read(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if s.inWrite {
		s.EndWrite()
	}
	s.pending.Clear()

	rx := make([]byte, len(p))
	s.cs.Set(false)
	time.Sleep(s.config.ReadDelay)
	err := s.bus.Tx(make([]byte, len(p)), rx)
	s.cs.Set(true)

	if err != nil {
		s.counters.fetchErrors.Add(1)
		if s.config.Logger != nil {
			s.config.Logger.Warn().Str("device", s.config.Name).Int("len", len(p)).Err(err).Msg("spi read failed")
		}
		return fmt.Errorf("%w: %w", protocol.ErrRuntimeFailure, err)
	}

	copy(p, rx)
	s.counters.blocksRead.Add(1)
	s.counters.bytesRead.Add(uint64(len(p)))
	return nil
}

// GetMetrics returns a snapshot of the transport counters.
func (s *SPI) GetMetrics() *Metrics {
	return s.counters.snapshot(0)
}
