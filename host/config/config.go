// Package config reads sensor definitions from HCL and opens their transports.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"

	"fpc2534/host/bus"
	"fpc2534/host/serial"
	"fpc2534/protocol"
)

// Transport kinds
const (
	TransportUART = "uart"
	TransportI2C  = "i2c"
	TransportSPI  = "spi"
)

// DefaultSPISpeedHz is the sensor's SPI clock
const DefaultSPISpeedHz = 3000000

type Schema struct {
	Sensor []*SensorSchema `hcl:"sensor,block"`
}

type SensorSchema struct {
	Name      string `hcl:"name,label"`
	Transport string `hcl:"transport,optional"`
	Device    string `hcl:"device,attr"`
	Baud      int    `hcl:"baud,optional"`
	Address   int    `hcl:"address,optional"`
	SpeedHz   int    `hcl:"speed_hz,optional"`
	IRQGPIO   *int   `hcl:"irq_gpio,optional"`
	CSGPIO    *int   `hcl:"cs_gpio,optional"`
	ReadDelay string `hcl:"read_delay,optional"`

	SystemConfig *SystemConfigSchema `hcl:"system_config,block"`
}

// SystemConfigSchema is the HCL form of protocol.SystemConfig
type SystemConfigSchema struct {
	Version                 int    `hcl:"version,optional"`
	FingerScanInterval      string `hcl:"finger_scan_interval,optional"`
	SysFlags                int    `hcl:"sys_flags,optional"`
	UARTDelayBeforeIRQ      string `hcl:"uart_delay_before_irq,optional"`
	UARTBaudrate            int    `hcl:"uart_baudrate,optional"`
	IdfyMaxConsecutiveFails int    `hcl:"idfy_max_consecutive_fails,optional"`
	IdfyLockoutTime         string `hcl:"idfy_lockout_time,optional"`
	IdleTimeBeforeSleep     string `hcl:"idle_time_before_sleep,optional"`
}

func ReadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	s := new(Schema)
	return s, s.Decode(data)
}

func (s *Schema) Decode(data []byte) error {
	file, diag := hclsyntax.ParseConfig(data, "", hcl.Pos{Line: 1, Column: 1})
	if diag.HasErrors() {
		return diag.Errs()[0]
	}

	diag = gohcl.DecodeBody(file.Body, nil, s)
	if diag.HasErrors() {
		return diag.Errs()[0]
	}

	for _, ss := range s.Sensor {
		ss.applyDefaults()
		if err := ss.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) Encode() []byte {
	f := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(s, f.Body())
	return f.Bytes()
}

// Lookup returns the named sensor, or the only one when name is empty.
func (s *Schema) Lookup(name string) (*SensorSchema, error) {
	if name == "" {
		if len(s.Sensor) != 1 {
			return nil, fmt.Errorf("schema defines %d sensors, pick one by name", len(s.Sensor))
		}
		return s.Sensor[0], nil
	}
	for _, ss := range s.Sensor {
		if ss.Name == name {
			return ss, nil
		}
	}
	return nil, fmt.Errorf("sensor %q not found", name)
}

// NewSensorSchema returns a sensor definition with defaults filled in.
func NewSensorSchema(name, transport, device string) *SensorSchema {
	ss := &SensorSchema{Name: name, Transport: transport, Device: device}
	ss.applyDefaults()
	return ss
}

func (ss *SensorSchema) applyDefaults() {
	if ss.Transport == "" {
		ss.Transport = TransportUART
	}
	if ss.Baud == 0 {
		ss.Baud = serial.DefaultBaud
	}
	if ss.Address == 0 {
		ss.Address = bus.DefaultI2CAddress
	}
	if ss.SpeedHz == 0 {
		ss.SpeedHz = DefaultSPISpeedHz
	}
	if ss.ReadDelay == "" {
		ss.ReadDelay = "600us"
	}
}

// Validate checks the sensor definition is complete for its transport.
func (ss *SensorSchema) Validate() error {
	if ss.Device == "" {
		return fmt.Errorf("sensor %q: device is required", ss.Name)
	}
	switch ss.Transport {
	case TransportUART:
		if serial.BaudSelector(ss.Baud) == 0 {
			return fmt.Errorf("sensor %q: unsupported baud %d", ss.Name, ss.Baud)
		}
	case TransportI2C:
		if ss.IRQGPIO == nil {
			return fmt.Errorf("sensor %q: irq_gpio is required for i2c", ss.Name)
		}
	case TransportSPI:
		if ss.IRQGPIO == nil || ss.CSGPIO == nil {
			return fmt.Errorf("sensor %q: irq_gpio and cs_gpio are required for spi", ss.Name)
		}
	default:
		return fmt.Errorf("sensor %q: unknown transport %q", ss.Name, ss.Transport)
	}
	if _, err := time.ParseDuration(ss.ReadDelay); err != nil {
		return fmt.Errorf("sensor %q: read_delay: %w", ss.Name, err)
	}
	if ss.SystemConfig != nil {
		if _, err := ss.SystemConfig.SystemConfig(); err != nil {
			return fmt.Errorf("sensor %q: %w", ss.Name, err)
		}
	}
	return nil
}

// ReadDelayDuration returns the parsed SPI read delay.
func (ss *SensorSchema) ReadDelayDuration() time.Duration {
	d, _ := time.ParseDuration(ss.ReadDelay)
	return d
}

func (ss *SensorSchema) Encode() []byte {
	f := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(ss, f.Body())
	return f.Bytes()
}

func parseBounded(name, val string, limit time.Duration) (time.Duration, error) {
	if val == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d < 0 || d > limit {
		return 0, fmt.Errorf("%s: %s out of range", name, val)
	}
	return d, nil
}

var errFieldRange = errors.New("value out of range")

// SystemConfig converts the schema into the wire structure.
func (sc *SystemConfigSchema) SystemConfig() (*protocol.SystemConfig, error) {
	scan, err := parseBounded("finger_scan_interval", sc.FingerScanInterval, 0xFFFF*time.Millisecond)
	if err != nil {
		return nil, err
	}
	irqDelay, err := parseBounded("uart_delay_before_irq", sc.UARTDelayBeforeIRQ, 0xFF*time.Millisecond)
	if err != nil {
		return nil, err
	}
	lockout, err := parseBounded("idfy_lockout_time", sc.IdfyLockoutTime, 0xFF*time.Second)
	if err != nil {
		return nil, err
	}
	idle, err := parseBounded("idle_time_before_sleep", sc.IdleTimeBeforeSleep, 0xFFFF*time.Millisecond)
	if err != nil {
		return nil, err
	}

	if sc.Version < 0 || sc.Version > 0xFFFF {
		return nil, fmt.Errorf("version: %w", errFieldRange)
	}
	if sc.SysFlags < 0 || int64(sc.SysFlags) > 0xFFFFFFFF {
		return nil, fmt.Errorf("sys_flags: %w", errFieldRange)
	}
	if sc.UARTBaudrate < 0 || sc.UARTBaudrate > 0xFF {
		return nil, fmt.Errorf("uart_baudrate: %w", errFieldRange)
	}
	if sc.IdfyMaxConsecutiveFails < 0 || sc.IdfyMaxConsecutiveFails > 0xFF {
		return nil, fmt.Errorf("idfy_max_consecutive_fails: %w", errFieldRange)
	}

	return &protocol.SystemConfig{
		Version:                 uint16(sc.Version),
		FingerScanIntervalMs:    uint16(scan.Milliseconds()),
		SysFlags:                uint32(sc.SysFlags),
		UARTDelayBeforeIRQMs:    uint8(irqDelay.Milliseconds()),
		UARTBaudrate:            uint8(sc.UARTBaudrate),
		IdfyMaxConsecutiveFails: uint8(sc.IdfyMaxConsecutiveFails),
		IdfyLockoutTimeS:        uint8(lockout / time.Second),
		IdleTimeBeforeSleepMs:   uint16(idle.Milliseconds()),
	}, nil
}

// FromSystemConfig builds the schema form of cfg.
func FromSystemConfig(cfg *protocol.SystemConfig) *SystemConfigSchema {
	return &SystemConfigSchema{
		Version:                 int(cfg.Version),
		FingerScanInterval:      cfg.FingerScanInterval().String(),
		SysFlags:                int(cfg.SysFlags),
		UARTDelayBeforeIRQ:      (time.Duration(cfg.UARTDelayBeforeIRQMs) * time.Millisecond).String(),
		UARTBaudrate:            int(cfg.UARTBaudrate),
		IdfyMaxConsecutiveFails: int(cfg.IdfyMaxConsecutiveFails),
		IdfyLockoutTime:         (time.Duration(cfg.IdfyLockoutTimeS) * time.Second).String(),
		IdleTimeBeforeSleep:     cfg.IdleTimeBeforeSleep().String(),
	}
}

// Encode renders the config as an HCL system_config block.
func (sc *SystemConfigSchema) Encode() []byte {
	f := hclwrite.NewEmptyFile()
	f.Body().AppendBlock(gohcl.EncodeAsBlock(sc, "system_config"))
	return f.Bytes()
}
