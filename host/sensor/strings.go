package sensor

import (
	"fmt"
	"strings"

	"fpc2534/protocol"
)

// Mode is the sensor's operating mode, taken from the state word
type Mode uint16

const (
	ModeIdle       Mode = 0
	ModeEnroll          = Mode(protocol.StateEnroll)
	ModeIdentify        = Mode(protocol.StateIdentify)
	ModeNavigation      = Mode(protocol.StateNavigation)
)

func modeOf(state uint16) Mode {
	return Mode(state & protocol.StateModeMask)
}

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeEnroll:
		return "enroll"
	case ModeIdentify:
		return "identify"
	case ModeNavigation:
		return "navigation"
	default:
		return fmt.Sprintf("mode(0x%04X)", uint16(m))
	}
}

// EnrollFeedbackString names an enroll feedback code
func EnrollFeedbackString(feedback uint8) string {
	switch feedback {
	case protocol.EnrollFeedbackDone:
		return "Done"
	case protocol.EnrollFeedbackProgress:
		return "Progress"
	case protocol.EnrollFeedbackRejectLowQuality:
		return "Reject - LowQuality"
	case protocol.EnrollFeedbackRejectLowCoverage:
		return "Reject - LowCoverage"
	case protocol.EnrollFeedbackRejectLowMobility:
		return "Reject - LowMobility"
	case protocol.EnrollFeedbackRejectOther:
		return "Reject - Other"
	case protocol.EnrollFeedbackProgressImmobile:
		return "Progress - Immobile"
	default:
		return "Unknown"
	}
}

// GestureString names a navigation gesture
func GestureString(gesture uint16) string {
	switch gesture {
	case protocol.GestureNone:
		return "none"
	case protocol.GestureUp:
		return "up"
	case protocol.GestureDown:
		return "down"
	case protocol.GestureRight:
		return "right"
	case protocol.GestureLeft:
		return "left"
	case protocol.GesturePress:
		return "press"
	case protocol.GestureLongPress:
		return "long-press"
	default:
		return fmt.Sprintf("gesture(%d)", gesture)
	}
}

// EventString names a status event
func EventString(event uint16) string {
	switch event {
	case protocol.EventNone:
		return "none"
	case protocol.EventIdle:
		return "idle"
	case protocol.EventArmed:
		return "armed"
	case protocol.EventFingerDetect:
		return "finger-detect"
	case protocol.EventFingerLost:
		return "finger-lost"
	case protocol.EventImageReady:
		return "image-ready"
	case protocol.EventCmdFailed:
		return "cmd-failed"
	default:
		return fmt.Sprintf("event(%d)", event)
	}
}

var stateNames = []struct {
	bit  uint16
	name string
}{
	{protocol.StateAppFwReady, "ready"},
	{protocol.StateSecureInterface, "secure"},
	{protocol.StateCapture, "capture"},
	{protocol.StateImageAvailable, "image"},
	{protocol.StateDataTransfer, "transfer"},
	{protocol.StateFingerDown, "finger"},
	{protocol.StateSysError, "sys-error"},
	{protocol.StateEnroll, "enroll"},
	{protocol.StateIdentify, "identify"},
	{protocol.StateNavigation, "navigation"},
}

// StateString lists the set bits of a state word, e.g. "ready|finger"
func StateString(state uint16) string {
	var parts []string
	for _, s := range stateNames {
		if state&s.bit != 0 {
			parts = append(parts, s.name)
			state &^= s.bit
		}
	}
	if state != 0 {
		parts = append(parts, fmt.Sprintf("0x%04X", state))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "|")
}
