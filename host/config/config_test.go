package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpc2534/host/bus"
	"fpc2534/host/serial"
	"fpc2534/protocol"
)

func TestDecodeDefaults(t *testing.T) {
	s := new(Schema)
	err := s.Decode([]byte(`
sensor "desk" {
  device = "/dev/ttyACM0"
}
`))
	require.NoError(t, err)
	require.Len(t, s.Sensor, 1)

	ss := s.Sensor[0]
	assert.Equal(t, "desk", ss.Name)
	assert.Equal(t, TransportUART, ss.Transport)
	assert.Equal(t, serial.DefaultBaud, ss.Baud)
	assert.Equal(t, bus.DefaultI2CAddress, ss.Address)
	assert.Equal(t, DefaultSPISpeedHz, ss.SpeedHz)
	assert.Equal(t, 600*time.Microsecond, ss.ReadDelayDuration())
	assert.Nil(t, ss.SystemConfig)
}

func TestDecodeBusSensors(t *testing.T) {
	s := new(Schema)
	err := s.Decode([]byte(`
sensor "door" {
  transport = "i2c"
  device    = "/dev/i2c-1"
  address   = 48
  irq_gpio  = 17
}

sensor "gate" {
  transport  = "spi"
  device     = "/dev/spidev0.0"
  irq_gpio   = 22
  cs_gpio    = 8
  read_delay = "1ms"
}
`))
	require.NoError(t, err)

	door, err := s.Lookup("door")
	require.NoError(t, err)
	assert.Equal(t, 48, door.Address)
	require.NotNil(t, door.IRQGPIO)
	assert.Equal(t, 17, *door.IRQGPIO)

	gate, err := s.Lookup("gate")
	require.NoError(t, err)
	assert.Equal(t, time.Millisecond, gate.ReadDelayDuration())
	require.NotNil(t, gate.CSGPIO)
	assert.Equal(t, 8, *gate.CSGPIO)

	_, err = s.Lookup("")
	assert.Error(t, err)
	_, err = s.Lookup("window")
	assert.Error(t, err)
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no device", `sensor "a" {}`},
		{"unknown transport", `sensor "a" {
  transport = "can"
  device    = "x"
}`},
		{"i2c without irq", `sensor "a" {
  transport = "i2c"
  device    = "/dev/i2c-1"
}`},
		{"spi without cs", `sensor "a" {
  transport = "spi"
  device    = "/dev/spidev0.0"
  irq_gpio  = 4
}`},
		{"bad read delay", `sensor "a" {
  device     = "x"
  read_delay = "soon"
}`},
		{"scan interval too long", `sensor "a" {
  device = "x"
  system_config {
    finger_scan_interval = "2m"
  }
}`},
		{"baud selector too large", `sensor "a" {
  device = "x"
  system_config {
    uart_baudrate = 300
  }
}`},
		{"unsupported baud", `sensor "a" {
  device = "/dev/ttyUSB0"
  baud   = 250000
}`},
		{"syntax", `sensor "a" {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := new(Schema)
			assert.Error(t, s.Decode([]byte(tt.body)))
		})
	}
}

func TestLookupSingle(t *testing.T) {
	s := new(Schema)
	require.NoError(t, s.Decode([]byte(`sensor "only" { device = "/dev/ttyUSB0" }`)))

	ss, err := s.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "only", ss.Name)
}

func TestSystemConfigBlock(t *testing.T) {
	s := new(Schema)
	err := s.Decode([]byte(`
sensor "desk" {
  device = "/dev/ttyACM0"
  system_config {
    version                    = 3
    finger_scan_interval       = "34ms"
    sys_flags                  = 65
    uart_delay_before_irq      = "1ms"
    uart_baudrate              = 5
    idfy_max_consecutive_fails = 5
    idfy_lockout_time          = "15s"
    idle_time_before_sleep     = "2s"
  }
}
`))
	require.NoError(t, err)

	cfg, err := s.Sensor[0].SystemConfig.SystemConfig()
	require.NoError(t, err)
	assert.Equal(t, &protocol.SystemConfig{
		Version:                 3,
		FingerScanIntervalMs:    34,
		SysFlags:                65,
		UARTDelayBeforeIRQMs:    1,
		UARTBaudrate:            5,
		IdfyMaxConsecutiveFails: 5,
		IdfyLockoutTimeS:        15,
		IdleTimeBeforeSleepMs:   2000,
	}, cfg)

	back, err := FromSystemConfig(cfg).SystemConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestSystemConfigEncode(t *testing.T) {
	out := string(FromSystemConfig(&protocol.SystemConfig{
		FingerScanIntervalMs: 50,
		IdfyLockoutTimeS:     10,
	}).Encode())

	assert.Contains(t, out, "system_config {")
	assert.Contains(t, out, `finger_scan_interval`)
	assert.Contains(t, out, `"50ms"`)
	assert.Contains(t, out, `"10s"`)
}

func TestOpenUnknownTransport(t *testing.T) {
	_, err := Open(&SensorSchema{Name: "x", Transport: "can", Device: "x"}, nil)
	assert.Error(t, err)
}

func TestOpenValidatesSchema(t *testing.T) {
	for _, tr := range []string{TransportI2C, TransportSPI} {
		ss := &SensorSchema{Name: "bench", Transport: tr, Device: "/dev/null", ReadDelay: "600us"}
		_, err := Open(ss, nil)
		assert.ErrorContains(t, err, "irq_gpio", tr)
	}
}

func TestNewSensorSchema(t *testing.T) {
	ss := NewSensorSchema("bench", "", "/dev/ttyUSB1")
	assert.Equal(t, TransportUART, ss.Transport)
	assert.Equal(t, serial.DefaultBaud, ss.Baud)
	require.NoError(t, ss.Validate())

	ss = NewSensorSchema("bench", TransportI2C, "/dev/i2c-1")
	assert.Error(t, ss.Validate())
}

func TestSchemaEncode(t *testing.T) {
	irq := 17
	s := &Schema{Sensor: []*SensorSchema{{
		Name:      "door",
		Transport: TransportI2C,
		Device:    "/dev/i2c-1",
		Address:   bus.DefaultI2CAddress,
		IRQGPIO:   &irq,
		ReadDelay: "600us",
	}}}

	out := string(s.Encode())
	assert.Contains(t, out, `sensor "door" {`)
	assert.Contains(t, out, `"/dev/i2c-1"`)
	assert.Contains(t, out, "irq_gpio")

	out = string(s.Sensor[0].Encode())
	assert.Contains(t, out, `transport`)
	assert.Contains(t, out, `"i2c"`)
}
