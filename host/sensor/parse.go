package sensor

import (
	"fmt"

	"fpc2534/protocol"
)

// parseCommand dispatches one frame payload to its decoder.
func (s *Sensor) parseCommand(payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("empty frame payload: %w", protocol.ErrInvalidParam)
	}

	hdr, err := protocol.DecodeCommandHeader(payload)
	if err != nil {
		return err
	}
	if hdr.Type != protocol.FrameTypeResponse && hdr.Type != protocol.FrameTypeEvent {
		return fmt.Errorf("%s has command type %s: %w", hdr.ID, hdr.Type, protocol.ErrInvalidParam)
	}

	switch hdr.ID {
	case protocol.CmdStatus:
		return s.parseStatus(payload)
	case protocol.CmdVersion:
		v, err := protocol.ParseVersion(payload)
		if err == nil && s.callbacks.OnVersion != nil {
			s.callbacks.OnVersion(v)
		}
		return err
	case protocol.CmdEnroll:
		r, err := protocol.ParseEnroll(payload)
		if err == nil && s.callbacks.OnEnroll != nil {
			s.callbacks.OnEnroll(r)
		}
		return err
	case protocol.CmdIdentify:
		r, err := protocol.ParseIdentify(payload)
		if err == nil && s.callbacks.OnIdentify != nil {
			s.callbacks.OnIdentify(r)
		}
		return err
	case protocol.CmdListTemplates:
		ids, err := protocol.ParseTemplateList(payload)
		if err == nil && s.callbacks.OnListTemplates != nil {
			s.callbacks.OnListTemplates(ids)
		}
		return err
	case protocol.CmdNavigation:
		gesture, err := protocol.ParseNavigation(payload)
		if err == nil && s.callbacks.OnNavigation != nil {
			s.callbacks.OnNavigation(gesture)
		}
		return err
	case protocol.CmdGPIOControl:
		state, err := protocol.ParseGPIO(payload)
		if err == nil && s.callbacks.OnGPIOControl != nil {
			s.callbacks.OnGPIOControl(state)
		}
		return err
	case protocol.CmdGetSystemConfig:
		cfg, err := protocol.ParseSystemConfig(payload)
		if err == nil && s.callbacks.OnSystemConfig != nil {
			s.callbacks.OnSystemConfig(&cfg)
		}
		return err
	case protocol.CmdBIST:
		verdict, err := protocol.ParseBIST(payload)
		if err == nil && s.callbacks.OnBISTDone != nil {
			s.callbacks.OnBISTDone(verdict)
		}
		return err
	default:
		return fmt.Errorf("unhandled command %s: %w", hdr.ID, protocol.ErrInvalidParam)
	}
}

// parseStatus is the only writer of the device state.
func (s *Sensor) parseStatus(payload []byte) error {
	status, err := protocol.ParseStatus(payload)
	if err != nil {
		return err
	}
	s.counters.statusFrames.Add(1)

	if status.AppFailCode != 0 {
		s.counters.appFailures.Add(1)
		if s.config.Logger != nil {
			s.config.Logger.Warn().Str("device", s.config.Name).Err(&protocol.AppFailError{Code: status.AppFailCode}).Msg("status reports failure")
		}
		if s.callbacks.OnError != nil {
			s.callbacks.OnError(status.AppFailCode)
		}
		return nil
	}

	prev := uint16(s.state.Swap(uint32(status.State)))
	changed := prev ^ status.State

	if changed&protocol.StateModeMask != 0 {
		if s.config.Logger != nil {
			s.config.Logger.Debug().Str("device", s.config.Name).Str("mode", modeOf(status.State).String()).Msg("mode changed")
		}
		if s.callbacks.OnModeChange != nil {
			s.callbacks.OnModeChange(modeOf(status.State))
		}
	}
	if changed&protocol.StateFingerDown != 0 && s.callbacks.OnFingerChange != nil {
		s.callbacks.OnFingerChange(status.State&protocol.StateFingerDown != 0)
	}
	if changed&protocol.StateAppFwReady != 0 && s.callbacks.OnReadyChange != nil {
		s.callbacks.OnReadyChange(status.State&protocol.StateAppFwReady != 0)
	}

	if s.callbacks.OnStatus != nil {
		s.callbacks.OnStatus(status.Event, status.State)
	}
	return nil
}
