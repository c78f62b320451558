//go:build linux && !baremetal

package bus

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

const ioctlI2CSlave = 0x0703

// I2CDev is a Linux i2c-dev adapter (/dev/i2c-N).
// It satisfies drivers.I2C.
type I2CDev struct {
	mu   sync.Mutex
	fd   int
	addr uint16
	path string
}

// OpenI2CDev opens the i2c-dev node at path.
func OpenI2CDev(path string) (*I2CDev, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &I2CDev{fd: fd, addr: 0xFFFF, path: path}, nil
}

func (d *I2CDev) selectAddr(addr uint16) error {
	if d.addr == addr {
		return nil
	}
	if err := unix.IoctlSetInt(d.fd, ioctlI2CSlave, int(addr)); err != nil {
		return fmt.Errorf("failed to select i2c address 0x%02X on %s: %w", addr, d.path, err)
	}
	d.addr = addr
	return nil
}

// Tx writes w then reads r, each as its own transaction.
func (d *I2CDev) Tx(addr uint16, w, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.selectAddr(addr); err != nil {
		return err
	}
	if len(w) > 0 {
		n, err := unix.Write(d.fd, w)
		if err != nil {
			return fmt.Errorf("i2c write: %w", err)
		}
		if n != len(w) {
			return fmt.Errorf("i2c write: short write %d/%d", n, len(w))
		}
	}
	if len(r) > 0 {
		n, err := unix.Read(d.fd, r)
		if err != nil {
			return fmt.Errorf("i2c read: %w", err)
		}
		if n != len(r) {
			return fmt.Errorf("i2c read: short read %d/%d", n, len(r))
		}
	}
	return nil
}

// ReadRegister reads len(buf) bytes starting at register reg.
func (d *I2CDev) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return d.Tx(uint16(addr), []byte{reg}, buf)
}

// WriteRegister writes buf starting at register reg.
func (d *I2CDev) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return d.Tx(uint16(addr), append([]byte{reg}, buf...), nil)
}

// Close closes the device node.
func (d *I2CDev) Close() error {
	return unix.Close(d.fd)
}
