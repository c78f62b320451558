//go:build linux && !baremetal

package bus

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	spiIOCMessage1     = 0x40206B00 // SPI_IOC_MESSAGE(1)
	spiIOCWrMode       = 0x40016B01
	spiIOCWrMaxSpeedHz = 0x40046B04

	spiNoCS = 0x40
)

// spiIOCTransfer mirrors struct spi_ioc_transfer
type spiIOCTransfer struct {
	txBuf          uint64
	rxBuf          uint64
	length         uint32
	speedHz        uint32
	delayUsecs     uint16
	bitsPerWord    uint8
	csChange       uint8
	txNbits        uint8
	rxNbits        uint8
	wordDelayUsecs uint8
	pad            uint8
}

// SPIDev is a Linux spidev adapter (/dev/spidevB.C).
// It satisfies drivers.SPI. Chip select is left to the caller.
type SPIDev struct {
	mu      sync.Mutex
	fd      int
	speedHz uint32
	path    string
}

// OpenSPIDev opens path in SPI mode 0 at speedHz with the kernel chip
// select disabled.
func OpenSPIDev(path string, speedHz uint32) (*SPIDev, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	d := &SPIDev{fd: fd, speedHz: speedHz, path: path}

	mode := uint8(spiNoCS)
	if err := d.ioctl(spiIOCWrMode, unsafe.Pointer(&mode)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to set spi mode on %s: %w", path, err)
	}
	if err := d.ioctl(spiIOCWrMaxSpeedHz, unsafe.Pointer(&speedHz)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to set spi speed on %s: %w", path, err)
	}
	return d, nil
}

func (d *SPIDev) ioctl(req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// Tx clocks out w while clocking in r. The shorter side is padded with zeros.
func (d *SPIDev) Tx(w, r []byte) error {
	n := max(len(w), len(r))
	if n == 0 {
		return nil
	}

	tx := make([]byte, n)
	copy(tx, w)
	rx := make([]byte, n)

	xfer := spiIOCTransfer{
		txBuf:       uint64(uintptr(unsafe.Pointer(&tx[0]))),
		rxBuf:       uint64(uintptr(unsafe.Pointer(&rx[0]))),
		length:      uint32(n),
		speedHz:     d.speedHz,
		bitsPerWord: 8,
	}

	d.mu.Lock()
	err := d.ioctl(spiIOCMessage1, unsafe.Pointer(&xfer))
	d.mu.Unlock()
	if err != nil {
		return fmt.Errorf("spi transfer on %s: %w", d.path, err)
	}

	copy(r, rx)
	return nil
}

// Transfer clocks a single byte.
func (d *SPIDev) Transfer(b byte) (byte, error) {
	var r [1]byte
	err := d.Tx([]byte{b}, r[:])
	return r[0], err
}

// Close closes the device node.
func (d *SPIDev) Close() error {
	return unix.Close(d.fd)
}
