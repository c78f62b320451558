package comm

import (
	"bytes"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpc2534/protocol"
)

// pipePort feeds the transport from an io.Pipe and captures writes
type pipePort struct {
	r *io.PipeReader
	w *io.PipeWriter

	mu      sync.Mutex
	written bytes.Buffer
	flushed int
}

func newPipePort() *pipePort {
	r, w := io.Pipe()
	return &pipePort{r: r, w: w}
}

func (p *pipePort) Read(b []byte) (int, error) { return p.r.Read(b) }

func (p *pipePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.Write(b)
}

func (p *pipePort) Close() error { return p.r.Close() }

func (p *pipePort) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flushed++
	return nil
}

func TestUARTReadWrite(t *testing.T) {
	port := newPipePort()
	u := NewUART(port)
	defer u.Close()

	assert.False(t, u.DataAvailable())
	assert.ErrorIs(t, u.Read(make([]byte, 1)), protocol.ErrNoData)

	_, err := port.w.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)

	require.Eventually(t, u.DataAvailable, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return u.GetMetrics().Buffered == 4 }, time.Second, time.Millisecond)

	buf := make([]byte, 5)
	assert.ErrorIs(t, u.Read(buf), protocol.ErrNoData)

	buf = make([]byte, 4)
	require.NoError(t, u.Read(buf))
	assert.Equal(t, []byte{1, 2, 3, 4}, buf)

	require.NoError(t, u.Write([]byte{0xAA}))
	port.mu.Lock()
	assert.Equal(t, []byte{0xAA}, port.written.Bytes())
	port.mu.Unlock()
}

func TestUARTClearData(t *testing.T) {
	port := newPipePort()
	u := NewUART(port)
	defer u.Close()

	_, err := port.w.Write([]byte{1, 2})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return u.GetMetrics().Buffered == 2 }, time.Second, time.Millisecond)

	u.ClearData()
	assert.False(t, u.DataAvailable())
	port.mu.Lock()
	assert.Equal(t, 1, port.flushed)
	port.mu.Unlock()
}
