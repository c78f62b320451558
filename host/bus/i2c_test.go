package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpc2534/host/comm"
)

type tx struct {
	addr uint16
	w    []byte
	r    int
}

// recordingI2C answers reads from a script and logs every transaction
type recordingI2C struct {
	log   []tx
	reads [][]byte
}

func (b *recordingI2C) Tx(addr uint16, w, r []byte) error {
	b.log = append(b.log, tx{addr: addr, w: append([]byte(nil), w...), r: len(r)})
	if len(r) > 0 {
		copy(r, b.reads[0])
		b.reads = b.reads[1:]
	}
	return nil
}

func (b *recordingI2C) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Tx(uint16(addr), []byte{reg}, buf)
}

func (b *recordingI2C) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Tx(uint16(addr), append([]byte{reg}, buf...), nil)
}

func TestI2CBlockTransactions(t *testing.T) {
	i2c := &recordingI2C{reads: [][]byte{{0x02, 0x00}, {0xAB, 0xCD}}}
	blk := comm.NewBlock(NewI2CBlock(i2c, DefaultI2CAddress))

	require.NoError(t, blk.Write([]byte{0x01}))

	blk.Signal()
	buf := make([]byte, 2)
	require.NoError(t, blk.Read(buf))
	assert.Equal(t, []byte{0xAB, 0xCD}, buf)

	require.Len(t, i2c.log, 3)
	assert.Equal(t, tx{addr: DefaultI2CAddress, w: []byte{0x01, 0x00, 0x01}}, i2c.log[0])
	assert.Equal(t, tx{addr: DefaultI2CAddress, r: 2}, i2c.log[1])
	assert.Equal(t, tx{addr: DefaultI2CAddress, r: 2}, i2c.log[2])
}
