// Package sensor implements the FPC2534 protocol engine: request encoding,
// polled response decoding and device state tracking.
package sensor

import (
	"errors"
	"fmt"
	"sync/atomic"

	"fpc2534/host/comm"
	"fpc2534/protocol"
)

// Sensor drives one FPC2534 over a transport.
//
// The engine is single threaded: request methods and ProcessNextResponse
// must be called from one goroutine. Only GetMetrics may be called
// concurrently. One request is expected to be outstanding at a time;
// responses are not correlated with requests.
type Sensor struct {
	comm      comm.Transport
	config    Config
	callbacks Callbacks

	// state is written only by Status parsing
	state atomic.Uint32

	// header of a frame whose payload has not arrived yet
	pending *protocol.FrameHeader

	counters counters
}

// New creates an engine with no transport attached.
func New(opts ...Option) *Sensor {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Sensor{config: cfg}
}

// Initialize attaches t, resets device state and discards stale inbound data.
func (s *Sensor) Initialize(t comm.Transport) error {
	if t == nil {
		return fmt.Errorf("nil transport: %w", protocol.ErrInvalidParam)
	}
	s.comm = t
	s.state.Store(0)
	s.pending = nil
	s.comm.ClearData()

	if s.config.Logger != nil {
		s.config.Logger.Debug().Str("device", s.config.Name).Msg("sensor initialized")
	}
	return nil
}

// SetCallbacks replaces the registered callbacks.
func (s *Sensor) SetCallbacks(cb Callbacks) {
	s.callbacks = cb
}

// State returns the last accepted state word.
func (s *Sensor) State() uint16 {
	return uint16(s.state.Load())
}

// CurrentMode returns the operating mode from the last Status frame.
func (s *Sensor) CurrentMode() Mode {
	return modeOf(s.State())
}

// IsFingerPresent reports the finger-down bit.
func (s *Sensor) IsFingerPresent() bool {
	return s.State()&protocol.StateFingerDown != 0
}

// IsReady reports the application-ready bit.
func (s *Sensor) IsReady() bool {
	return s.State()&protocol.StateAppFwReady != 0
}

// IsDataAvailable reports whether the transport has inbound data.
func (s *Sensor) IsDataAvailable() bool {
	if s.comm == nil {
		return false
	}
	return s.pending != nil || s.comm.DataAvailable()
}

// ClearData discards inbound data, including a partially received frame.
func (s *Sensor) ClearData() {
	s.pending = nil
	if s.comm != nil {
		s.comm.ClearData()
	}
}

func (s *Sensor) sendCommand(cmd protocol.Command, payload []byte) error {
	if s.comm == nil {
		return protocol.ErrWrongState
	}

	frame, err := protocol.EncodeFrame(payload)
	if err != nil {
		return err
	}

	if b, ok := s.comm.(comm.Bracketed); ok {
		b.BeginWrite()
		defer b.EndWrite()
	}

	if err := s.comm.Write(frame); err != nil {
		if s.config.Logger != nil {
			s.config.Logger.Error().Str("device", s.config.Name).Str("cmd", cmd.String()).Err(err).Msg("send failed")
		}
		return err
	}

	s.counters.framesSent.Add(1)
	if s.config.Logger != nil {
		s.config.Logger.Trace().Str("device", s.config.Name).Str("cmd", cmd.String()).Int("len", len(frame)).Msg("sent")
	}
	return nil
}

func (s *Sensor) send(cmd protocol.Command, payload []byte, err error) error {
	if err != nil {
		return err
	}
	return s.sendCommand(cmd, payload)
}

// RequestStatus asks for a Status frame.
func (s *Sensor) RequestStatus() error {
	return s.sendCommand(protocol.CmdStatus, protocol.BuildCommand(protocol.CmdStatus))
}

// RequestVersion asks for the firmware version.
func (s *Sensor) RequestVersion() error {
	return s.sendCommand(protocol.CmdVersion, protocol.BuildCommand(protocol.CmdVersion))
}

// RequestAbort cancels the running operation.
func (s *Sensor) RequestAbort() error {
	return s.sendCommand(protocol.CmdAbort, protocol.BuildCommand(protocol.CmdAbort))
}

// RequestEnroll starts an enrollment. id must be Specified or GenerateNew.
func (s *Sensor) RequestEnroll(id protocol.IDSelector) error {
	payload, err := protocol.BuildEnrollCmd(id)
	return s.send(protocol.CmdEnroll, payload, err)
}

// RequestIdentify starts an identification. id must be Specified or All.
func (s *Sensor) RequestIdentify(id protocol.IDSelector, tag uint16) error {
	payload, err := protocol.BuildIdentifyCmd(id, tag)
	return s.send(protocol.CmdIdentify, payload, err)
}

// RequestListTemplates asks for the stored template ids.
func (s *Sensor) RequestListTemplates() error {
	return s.sendCommand(protocol.CmdListTemplates, protocol.BuildCommand(protocol.CmdListTemplates))
}

// RequestDeleteTemplate deletes one or all templates. id must be Specified or All.
func (s *Sensor) RequestDeleteTemplate(id protocol.IDSelector) error {
	payload, err := protocol.BuildDeleteTemplateCmd(id)
	return s.send(protocol.CmdDeleteTemplate, payload, err)
}

// SendReset restarts the sensor.
func (s *Sensor) SendReset() error {
	return s.sendCommand(protocol.CmdReset, protocol.BuildCommand(protocol.CmdReset))
}

// StartNavigationMode enters navigation with orientation in 90 degree steps (0-3).
func (s *Sensor) StartNavigationMode(orientation uint8) error {
	payload, err := protocol.BuildNavigationCmd(orientation)
	return s.send(protocol.CmdNavigation, payload, err)
}

// StartBuiltInSelfTest runs the sensor self test.
func (s *Sensor) StartBuiltInSelfTest() error {
	return s.sendCommand(protocol.CmdBIST, protocol.BuildCommand(protocol.CmdBIST))
}

// RequestSetGPIO configures and drives a module GPIO.
func (s *Sensor) RequestSetGPIO(pin, mode, state uint8) error {
	payload, err := protocol.BuildSetGPIOCmd(pin, mode, state)
	return s.send(protocol.CmdGPIOControl, payload, err)
}

// RequestGetGPIO reads a module GPIO.
func (s *Sensor) RequestGetGPIO(pin uint8) error {
	return s.sendCommand(protocol.CmdGPIOControl, protocol.BuildGetGPIOCmd(pin))
}

// RequestGetSystemConfig reads the default or custom system configuration.
func (s *Sensor) RequestGetSystemConfig(configType uint8) error {
	payload, err := protocol.BuildGetSystemConfigCmd(configType)
	return s.send(protocol.CmdGetSystemConfig, payload, err)
}

// SetSystemConfig writes the custom system configuration.
func (s *Sensor) SetSystemConfig(cfg *protocol.SystemConfig) error {
	payload, err := protocol.BuildSetSystemConfigCmd(cfg)
	return s.send(protocol.CmdSetSystemConfig, payload, err)
}

// FactoryReset erases templates and configuration.
func (s *Sensor) FactoryReset() error {
	return s.sendCommand(protocol.CmdFactoryReset, protocol.BuildCommand(protocol.CmdFactoryReset))
}

// SetLED switches the module status LED.
func (s *Sensor) SetLED(on bool) error {
	state := protocol.GPIOStateReset
	if on {
		state = protocol.GPIOStateSet
	}
	return s.RequestSetGPIO(protocol.LEDPin, protocol.GPIOModeOutputPushPull, state)
}

// ProcessNextResponse reads and dispatches at most one inbound frame.
//
// It never blocks. A nil return with nothing dispatched means no data was
// waiting. While a retained header still waits for its payload, calls
// return ErrNoData until more data arrives. A rejected frame header returns ErrBadData and discards all
// buffered inbound data. If the header arrived but the payload has not,
// ErrNoData is returned and the header is kept for the next call.
func (s *Sensor) ProcessNextResponse() error {
	if s.comm == nil {
		return protocol.ErrWrongState
	}
	if !s.comm.DataAvailable() {
		if s.pending != nil {
			return protocol.ErrNoData
		}
		return nil
	}

	if b, ok := s.comm.(comm.Bracketed); ok {
		b.BeginRead()
		defer b.EndRead()
	}

	if s.pending == nil {
		var raw [protocol.FrameHeaderSize]byte
		err := s.comm.Read(raw[:])
		if errors.Is(err, protocol.ErrNoData) {
			return nil
		}
		if err != nil {
			return err
		}

		hdr, err := protocol.DecodeHeader(raw[:])
		if err != nil {
			s.counters.badHeaders.Add(1)
			if s.config.Logger != nil {
				s.config.Logger.Warn().Str("device", s.config.Name).Err(err).Msg("rejected frame header, discarding inbound data")
			}
			s.comm.ClearData()
			return err
		}
		s.pending = &hdr
	}

	payload := make([]byte, s.pending.PayloadSize)
	if err := s.comm.Read(payload); err != nil {
		if !errors.Is(err, protocol.ErrNoData) {
			s.pending = nil
		}
		return err
	}
	hdr := *s.pending
	s.pending = nil

	s.counters.framesReceived.Add(1)
	if s.config.Logger != nil {
		s.config.Logger.Trace().Str("device", s.config.Name).Str("type", hdr.Type.String()).Int("len", len(payload)).Msg("received")
	}

	if err := s.parseCommand(payload); err != nil {
		s.counters.parseErrors.Add(1)
		if s.config.Logger != nil {
			s.config.Logger.Warn().Str("device", s.config.Name).Err(err).Msg("dropped frame")
		}
		return err
	}
	return nil
}
