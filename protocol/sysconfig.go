package protocol

import (
	"encoding/binary"
	"fmt"
	"time"
)

// SystemConfigSize is the wire size of SystemConfig
const SystemConfigSize = 14

// SystemConfig is the sensor's persistent system configuration.
//
// Wire layout (little endian):
//
//	[VERSION(2)][FINGER_SCAN_INTERVAL_MS(2)][SYS_FLAGS(4)]
//	[UART_DELAY_BEFORE_IRQ_MS(1)][UART_BAUDRATE(1)]
//	[IDFY_MAX_CONSECUTIVE_FAILS(1)][IDFY_LOCKOUT_TIME_S(1)]
//	[IDLE_TIME_BEFORE_SLEEP_MS(2)]
type SystemConfig struct {
	Version                 uint16
	FingerScanIntervalMs    uint16
	SysFlags                uint32
	UARTDelayBeforeIRQMs    uint8
	UARTBaudrate            uint8
	IdfyMaxConsecutiveFails uint8
	IdfyLockoutTimeS        uint8
	IdleTimeBeforeSleepMs   uint16
}

// AppendBinary appends the wire form of c to b.
func (c *SystemConfig) AppendBinary(b []byte) []byte {
	b = binary.LittleEndian.AppendUint16(b, c.Version)
	b = binary.LittleEndian.AppendUint16(b, c.FingerScanIntervalMs)
	b = binary.LittleEndian.AppendUint32(b, c.SysFlags)
	b = append(b, c.UARTDelayBeforeIRQMs, c.UARTBaudrate, c.IdfyMaxConsecutiveFails, c.IdfyLockoutTimeS)
	return binary.LittleEndian.AppendUint16(b, c.IdleTimeBeforeSleepMs)
}

// DecodeSystemConfig reads a SystemConfig from the first SystemConfigSize bytes of b.
func DecodeSystemConfig(b []byte) (SystemConfig, error) {
	if len(b) < SystemConfigSize {
		return SystemConfig{}, fmt.Errorf("system config too short: %d bytes: %w", len(b), ErrInvalidParam)
	}
	return SystemConfig{
		Version:                 binary.LittleEndian.Uint16(b[0:2]),
		FingerScanIntervalMs:    binary.LittleEndian.Uint16(b[2:4]),
		SysFlags:                binary.LittleEndian.Uint32(b[4:8]),
		UARTDelayBeforeIRQMs:    b[8],
		UARTBaudrate:            b[9],
		IdfyMaxConsecutiveFails: b[10],
		IdfyLockoutTimeS:        b[11],
		IdleTimeBeforeSleepMs:   binary.LittleEndian.Uint16(b[12:14]),
	}, nil
}

// FingerScanInterval returns the finger scan interval as a duration
func (c *SystemConfig) FingerScanInterval() time.Duration {
	return time.Duration(c.FingerScanIntervalMs) * time.Millisecond
}

// IdleTimeBeforeSleep returns the idle timeout as a duration
func (c *SystemConfig) IdleTimeBeforeSleep() time.Duration {
	return time.Duration(c.IdleTimeBeforeSleepMs) * time.Millisecond
}

// UARTBaudRate maps the UARTBaudrate selector to bits per second.
// Unknown selectors return 0.
func UARTBaudRate(sel uint8) int {
	switch sel {
	case UARTBaud9600:
		return 9600
	case UARTBaud19200:
		return 19200
	case UARTBaud57600:
		return 57600
	case UARTBaud115200:
		return 115200
	case UARTBaud921600:
		return 921600
	default:
		return 0
	}
}
