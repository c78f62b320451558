//go:build linux && !baremetal

package bus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/loopholelabs/logging/types"
	"golang.org/x/sys/unix"
)

const sysfsGPIO = "/sys/class/gpio"

// GPIOPin is a sysfs GPIO line.
type GPIOPin struct {
	num  int
	dir  string
	file *os.File
	log  types.Logger
}

func exportGPIO(num int) (string, error) {
	dir := filepath.Join(sysfsGPIO, "gpio"+strconv.Itoa(num))
	if _, err := os.Stat(dir); err == nil {
		return dir, nil
	}
	if err := os.WriteFile(filepath.Join(sysfsGPIO, "export"), []byte(strconv.Itoa(num)), 0); err != nil {
		return "", fmt.Errorf("failed to export gpio %d: %w", num, err)
	}
	return dir, nil
}

// OpenGPIOOutput exports num as an output driven high.
func OpenGPIOOutput(num int) (*GPIOPin, error) {
	dir, err := exportGPIO(num)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, "direction"), []byte("high"), 0); err != nil {
		return nil, fmt.Errorf("failed to configure gpio %d: %w", num, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "value"), os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open gpio %d: %w", num, err)
	}
	return &GPIOPin{num: num, dir: dir, file: f}, nil
}

// OpenGPIOInterrupt exports num as an input reporting rising edges.
func OpenGPIOInterrupt(num int, log types.Logger) (*GPIOPin, error) {
	dir, err := exportGPIO(num)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, "direction"), []byte("in"), 0); err != nil {
		return nil, fmt.Errorf("failed to configure gpio %d: %w", num, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "edge"), []byte("rising"), 0); err != nil {
		return nil, fmt.Errorf("failed to set edge on gpio %d: %w", num, err)
	}
	f, err := os.Open(filepath.Join(dir, "value"))
	if err != nil {
		return nil, fmt.Errorf("failed to open gpio %d: %w", num, err)
	}
	return &GPIOPin{num: num, dir: dir, file: f, log: log}, nil
}

// Set drives an output pin.
func (p *GPIOPin) Set(high bool) {
	v := []byte("0")
	if high {
		v = []byte("1")
	}
	if _, err := p.file.WriteAt(v, 0); err != nil && p.log != nil {
		p.log.Error().Int("gpio", p.num).Err(err).Msg("gpio write failed")
	}
}

// Get reads the current level.
func (p *GPIOPin) Get() (bool, error) {
	var b [1]byte
	if _, err := p.file.ReadAt(b[:], 0); err != nil {
		return false, err
	}
	return b[0] == '1', nil
}

// Watch calls handler on every rising edge until ctx is done. The handler
// should only record the event, e.g. a transport's Signal method.
func (p *GPIOPin) Watch(ctx context.Context, handler func()) error {
	fd := int(p.file.Fd())

	// Reading the value clears the initial edge state. A line already high
	// raised its edge before we were watching.
	high, err := p.Get()
	if err != nil {
		return fmt.Errorf("failed to read gpio %d: %w", p.num, err)
	}
	if high {
		handler()
	}

	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLPRI | unix.POLLERR}}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := unix.Poll(fds, 100)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("poll gpio %d: %w", p.num, err)
		}
		if n == 0 || fds[0].Revents&unix.POLLPRI == 0 {
			continue
		}

		// The level may already have dropped; the edge is what counts
		if _, err := p.Get(); err != nil {
			return fmt.Errorf("failed to read gpio %d: %w", p.num, err)
		}
		if p.log != nil {
			p.log.Trace().Int("gpio", p.num).Msg("interrupt")
		}
		handler()
	}
}

// Close releases the value file. The line stays exported.
func (p *GPIOPin) Close() error {
	return p.file.Close()
}
