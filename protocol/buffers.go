package protocol

// FifoCapacity is the receive FIFO size used by block transports
const FifoCapacity = 2048

// FifoBuffer is a bounded circular byte queue.
//
// Enqueue and Dequeue are all-or-nothing: a block that does not fit, or a
// read asking for more bytes than are queued, leaves the buffer untouched.
// FifoBuffer is not safe for concurrent use.
type FifoBuffer struct {
	buf   []byte
	read  int
	count int
}

// NewFifoBuffer creates a new FifoBuffer with the specified capacity.
// A capacity below one yields a buffer that rejects every non-empty block.
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{buf: make([]byte, max(capacity, 0))}
}

// Enqueue appends all of data, or nothing if it does not fit
func (f *FifoBuffer) Enqueue(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	if len(data) > f.Free() {
		return false
	}
	write := (f.read + f.count) % len(f.buf)
	n := copy(f.buf[write:], data)
	copy(f.buf, data[n:])
	f.count += len(data)
	return true
}

// Dequeue fills all of data from the front of the buffer, or nothing if
// fewer than len(data) bytes are queued
func (f *FifoBuffer) Dequeue(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	if len(data) > f.count {
		return false
	}
	n := copy(data, f.buf[f.read:min(f.read+len(data), len(f.buf))])
	copy(data[n:], f.buf)
	f.read = (f.read + len(data)) % len(f.buf)
	f.count -= len(data)
	if f.count == 0 {
		f.read = 0
	}
	return true
}

// Available returns the number of bytes available for reading
func (f *FifoBuffer) Available() int {
	return f.count
}

// Free returns the number of bytes available for writing
func (f *FifoBuffer) Free() int {
	return len(f.buf) - f.count
}

// Cap returns the buffer capacity
func (f *FifoBuffer) Cap() int {
	return len(f.buf)
}

// IsEmpty returns true if the buffer is empty
func (f *FifoBuffer) IsEmpty() bool {
	return f.count == 0
}

// Reset clears the buffer
func (f *FifoBuffer) Reset() {
	f.read = 0
	f.count = 0
}
