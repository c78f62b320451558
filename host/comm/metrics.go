package comm

import "sync/atomic"

// Metrics is a snapshot of transport counters.
type Metrics struct {
	BlocksRead    uint64
	BytesRead     uint64
	BlocksWritten uint64
	BytesWritten  uint64
	FetchErrors   uint64
	Overflows     uint64
	WriteErrors   uint64
	Buffered      uint64
}

type counters struct {
	blocksRead    atomic.Uint64
	bytesRead     atomic.Uint64
	blocksWritten atomic.Uint64
	bytesWritten  atomic.Uint64
	fetchErrors   atomic.Uint64
	overflows     atomic.Uint64
	writeErrors   atomic.Uint64
}

func (c *counters) snapshot(buffered int) *Metrics {
	return &Metrics{
		BlocksRead:    c.blocksRead.Load(),
		BytesRead:     c.bytesRead.Load(),
		BlocksWritten: c.blocksWritten.Load(),
		BytesWritten:  c.bytesWritten.Load(),
		FetchErrors:   c.fetchErrors.Load(),
		Overflows:     c.overflows.Load(),
		WriteErrors:   c.writeErrors.Load(),
		Buffered:      uint64(buffered),
	}
}
