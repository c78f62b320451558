package comm

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"fpc2534/protocol"
)

// BlockBus performs whole bus transactions against the sensor.
// Each call is one complete transaction of exactly len(p) bytes.
type BlockBus interface {
	WriteBlock(p []byte) error
	ReadBlock(p []byte) error
}

// Block is the buffered transport for block-oriented buses.
//
// The sensor raises its interrupt line when a block is ready. The handler
// only calls Signal; the next Read fetches the block (a u16 length
// transaction followed by the payload transaction) into a bounded FIFO and
// then serves exact-length reads from it.
type Block struct {
	bus     BlockBus
	config  Config
	pending PendingFlag
	fifo    *protocol.FifoBuffer

	counters counters
	buffered atomic.Int64
}

// NewBlock creates a buffered block transport over bus.
func NewBlock(bus BlockBus, opts ...Option) *Block {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Block{
		bus:    bus,
		config: cfg,
		fifo:   protocol.NewFifoBuffer(protocol.FifoCapacity),
	}
}

// Signal is the interrupt handler. It is safe to call from any context.
func (b *Block) Signal() {
	b.pending.Signal()
}

// DataAvailable reports a pending block or buffered bytes.
func (b *Block) DataAvailable() bool {
	return b.pending.Pending() || !b.fifo.IsEmpty()
}

// ClearData empties the FIFO and drops any pending block.
func (b *Block) ClearData() {
	b.fifo.Reset()
	b.pending.Clear()
	b.buffered.Store(0)
}

// Write sends p as one length-prefixed block.
func (b *Block) Write(p []byte) error {
	if len(p) > protocol.FramePayloadMax {
		return fmt.Errorf("block too long: %d bytes: %w", len(p), protocol.ErrInvalidParam)
	}

	block := make([]byte, 0, protocol.BlockLengthSize+len(p))
	block = binary.LittleEndian.AppendUint16(block, uint16(len(p)))
	block = append(block, p...)

	if err := b.bus.WriteBlock(block); err != nil {
		b.counters.writeErrors.Add(1)
		if b.config.Logger != nil {
			b.config.Logger.Error().Str("device", b.config.Name).Int("len", len(p)).Err(err).Msg("block write failed")
		}
		return fmt.Errorf("%w: %w", protocol.ErrRuntimeFailure, err)
	}

	b.counters.blocksWritten.Add(1)
	b.counters.bytesWritten.Add(uint64(len(p)))
	return nil
}

// Read fills p from the FIFO, fetching a pending block first.
func (b *Block) Read(p []byte) error {
	if b.pending.Take() {
		if err := b.fetch(); err != nil {
			b.counters.fetchErrors.Add(1)
			if b.config.Logger != nil {
				b.config.Logger.Warn().Str("device", b.config.Name).Err(err).Msg("block fetch failed")
			}
			return err
		}
	}

	if !b.fifo.Dequeue(p) {
		return protocol.ErrNoData
	}
	b.buffered.Store(int64(b.fifo.Available()))
	return nil
}

func (b *Block) fetch() error {
	var size [protocol.BlockLengthSize]byte
	if err := b.bus.ReadBlock(size[:]); err != nil {
		return fmt.Errorf("reading block length: %w: %w", protocol.ErrBadData, err)
	}

	n := int(binary.LittleEndian.Uint16(size[:]))
	if n == 0 {
		return fmt.Errorf("zero length block: %w", protocol.ErrBadData)
	}

	payload := make([]byte, n)
	if err := b.bus.ReadBlock(payload); err != nil {
		return fmt.Errorf("reading %d byte block: %w: %w", n, protocol.ErrBadData, err)
	}

	if !b.fifo.Enqueue(payload) {
		b.counters.overflows.Add(1)
		return fmt.Errorf("block of %d bytes overflows fifo (%d free): %w", n, b.fifo.Free(), protocol.ErrBadData)
	}

	b.counters.blocksRead.Add(1)
	b.counters.bytesRead.Add(uint64(n))
	b.buffered.Store(int64(b.fifo.Available()))

	if b.config.Logger != nil {
		b.config.Logger.Trace().Str("device", b.config.Name).Int("len", n).Int("buffered", b.fifo.Available()).Msg("block fetched")
	}
	return nil
}

// GetMetrics returns a snapshot of the transport counters.
func (b *Block) GetMetrics() *Metrics {
	return b.counters.snapshot(int(b.buffered.Load()))
}
