package sensor

import (
	"fmt"

	"fpc2534/protocol"
)

// EventKind tags an Event
type EventKind uint8

const (
	KindError EventKind = iota
	KindStatus
	KindModeChange
	KindFingerChange
	KindReadyChange
	KindVersion
	KindEnroll
	KindIdentify
	KindListTemplates
	KindNavigation
	KindGPIOControl
	KindSystemConfig
	KindBISTDone
)

func (k EventKind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindStatus:
		return "status"
	case KindModeChange:
		return "mode"
	case KindFingerChange:
		return "finger"
	case KindReadyChange:
		return "ready"
	case KindVersion:
		return "version"
	case KindEnroll:
		return "enroll"
	case KindIdentify:
		return "identify"
	case KindListTemplates:
		return "templates"
	case KindNavigation:
		return "navigation"
	case KindGPIOControl:
		return "gpio"
	case KindSystemConfig:
		return "config"
	case KindBISTDone:
		return "bist"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Event is one decoded notification. Only the fields for its Kind are set.
type Event struct {
	Kind EventKind

	Code    uint16 // KindError
	Event   uint16 // KindStatus
	State   uint16 // KindStatus
	Mode    Mode   // KindModeChange
	Flag    bool   // KindFingerChange, KindReadyChange
	Gesture uint16 // KindNavigation
	Pin     uint8  // KindGPIOControl state
	Verdict uint16 // KindBISTDone

	Version   *protocol.VersionResponse
	Enroll    *protocol.EnrollResponse
	Identify  *protocol.IdentifyResponse
	Templates []uint16
	Config    *protocol.SystemConfig
}

func (e Event) String() string {
	switch e.Kind {
	case KindError:
		return fmt.Sprintf("error: %v", &protocol.AppFailError{Code: e.Code})
	case KindStatus:
		return fmt.Sprintf("status: event=%s state=%s", EventString(e.Event), StateString(e.State))
	case KindModeChange:
		return fmt.Sprintf("mode: %s", e.Mode)
	case KindFingerChange:
		return fmt.Sprintf("finger present: %t", e.Flag)
	case KindReadyChange:
		return fmt.Sprintf("ready: %t", e.Flag)
	case KindVersion:
		return fmt.Sprintf("version: %s", e.Version.Version)
	case KindEnroll:
		return fmt.Sprintf("enroll: %s, %d samples remaining", EnrollFeedbackString(e.Enroll.Feedback), e.Enroll.SamplesRemaining)
	case KindIdentify:
		if e.Identify.Match() {
			return fmt.Sprintf("identify: match id %d", e.Identify.Template.ID)
		}
		return "identify: no match"
	case KindListTemplates:
		return fmt.Sprintf("templates: %v", e.Templates)
	case KindNavigation:
		return fmt.Sprintf("navigation: %s", GestureString(e.Gesture))
	case KindGPIOControl:
		return fmt.Sprintf("gpio state: %d", e.Pin)
	case KindSystemConfig:
		return fmt.Sprintf("config: %+v", *e.Config)
	case KindBISTDone:
		return fmt.Sprintf("bist verdict: %d", e.Verdict)
	default:
		return e.Kind.String()
	}
}

// ChannelCallbacks returns Callbacks that deliver every notification to ch.
// When ch is full the oldest queued event is dropped.
func ChannelCallbacks(ch chan Event) Callbacks {
	send := func(ev Event) {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}

	return Callbacks{
		OnError:        func(code uint16) { send(Event{Kind: KindError, Code: code}) },
		OnStatus:       func(event, state uint16) { send(Event{Kind: KindStatus, Event: event, State: state}) },
		OnModeChange:   func(mode Mode) { send(Event{Kind: KindModeChange, Mode: mode}) },
		OnFingerChange: func(present bool) { send(Event{Kind: KindFingerChange, Flag: present}) },
		OnReadyChange:  func(ready bool) { send(Event{Kind: KindReadyChange, Flag: ready}) },
		OnVersion: func(v protocol.VersionResponse) {
			send(Event{Kind: KindVersion, Version: &v})
		},
		OnEnroll: func(r protocol.EnrollResponse) {
			send(Event{Kind: KindEnroll, Enroll: &r})
		},
		OnIdentify: func(r protocol.IdentifyResponse) {
			send(Event{Kind: KindIdentify, Identify: &r})
		},
		OnListTemplates: func(ids []uint16) { send(Event{Kind: KindListTemplates, Templates: ids}) },
		OnNavigation:    func(gesture uint16) { send(Event{Kind: KindNavigation, Gesture: gesture}) },
		OnGPIOControl:   func(state uint8) { send(Event{Kind: KindGPIOControl, Pin: state}) },
		OnSystemConfig:  func(cfg *protocol.SystemConfig) { send(Event{Kind: KindSystemConfig, Config: cfg}) },
		OnBISTDone:      func(verdict uint16) { send(Event{Kind: KindBISTDone, Verdict: verdict}) },
	}
}
