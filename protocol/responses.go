package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Fixed response sizes, command header included
const (
	StatusResponseSize       = CommandHeaderSize + 8
	VersionResponseMinSize   = CommandHeaderSize + 16
	EnrollResponseSize       = CommandHeaderSize + 4
	IdentifyResponseSize     = CommandHeaderSize + 8
	TemplateListMinSize      = CommandHeaderSize + 2
	NavigationEventSize      = CommandHeaderSize + 2
	GPIOResponseSize         = CommandHeaderSize + 2
	GetConfigResponseMinSize = CommandHeaderSize + SystemConfigSize
	BISTResponseMinSize      = CommandHeaderSize + 2
)

// StatusResponse reports the device event and state word
type StatusResponse struct {
	Event       uint16
	State       uint16
	AppFailCode uint16
}

// VersionResponse carries the firmware identification
type VersionResponse struct {
	MCUUniqueID [3]uint32
	FwID        uint8
	FwFuseLevel uint8
	Version     string
}

// EnrollResponse reports progress of an enrollment
type EnrollResponse struct {
	ID               uint16
	Feedback         uint8
	SamplesRemaining uint8
}

// IdentifyResponse reports the outcome of an identification
type IdentifyResponse struct {
	Result   uint16
	Template IDSelector
	Tag      uint16
}

// Match reports whether the identification found a template
func (r IdentifyResponse) Match() bool {
	return r.Result == IdentifyResultMatch
}

// DecodeCommandHeader reads the command header at the start of a frame payload.
func DecodeCommandHeader(b []byte) (CommandHeader, error) {
	if len(b) < CommandHeaderSize {
		return CommandHeader{}, fmt.Errorf("command header too short: %d bytes: %w", len(b), ErrInvalidParam)
	}
	return CommandHeader{
		ID:   Command(binary.LittleEndian.Uint16(b[0:2])),
		Type: FrameType(binary.LittleEndian.Uint16(b[2:4])),
	}, nil
}

func sizeError(cmd Command, got, want int) error {
	return fmt.Errorf("%s payload is %d bytes, want %d: %w", cmd, got, want, ErrInvalidParam)
}

// ParseStatus decodes a Status payload.
func ParseStatus(b []byte) (StatusResponse, error) {
	if len(b) != StatusResponseSize {
		return StatusResponse{}, sizeError(CmdStatus, len(b), StatusResponseSize)
	}
	return StatusResponse{
		Event:       binary.LittleEndian.Uint16(b[4:6]),
		State:       binary.LittleEndian.Uint16(b[6:8]),
		AppFailCode: binary.LittleEndian.Uint16(b[8:10]),
	}, nil
}

// ParseVersion decodes a Version payload. The payload must hold exactly
// the declared version string; trailing NULs are dropped from the result.
func ParseVersion(b []byte) (VersionResponse, error) {
	if len(b) < VersionResponseMinSize {
		return VersionResponse{}, sizeError(CmdVersion, len(b), VersionResponseMinSize)
	}
	strLen := int(binary.LittleEndian.Uint16(b[18:20]))
	if len(b) != VersionResponseMinSize+strLen {
		return VersionResponse{}, sizeError(CmdVersion, len(b), VersionResponseMinSize+strLen)
	}

	var v VersionResponse
	for i := range v.MCUUniqueID {
		v.MCUUniqueID[i] = binary.LittleEndian.Uint32(b[4+4*i:])
	}
	v.FwID = b[16]
	v.FwFuseLevel = b[17]
	v.Version = string(bytes.TrimRight(b[VersionResponseMinSize:], "\x00"))
	return v, nil
}

// ParseEnroll decodes an Enroll status payload.
func ParseEnroll(b []byte) (EnrollResponse, error) {
	if len(b) != EnrollResponseSize {
		return EnrollResponse{}, sizeError(CmdEnroll, len(b), EnrollResponseSize)
	}
	return EnrollResponse{
		ID:               binary.LittleEndian.Uint16(b[4:6]),
		Feedback:         b[6],
		SamplesRemaining: b[7],
	}, nil
}

// ParseIdentify decodes an Identify status payload.
func ParseIdentify(b []byte) (IdentifyResponse, error) {
	if len(b) != IdentifyResponseSize {
		return IdentifyResponse{}, sizeError(CmdIdentify, len(b), IdentifyResponseSize)
	}
	return IdentifyResponse{
		Result: binary.LittleEndian.Uint16(b[4:6]),
		Template: IDSelector{
			Type: IDType(binary.LittleEndian.Uint16(b[6:8])),
			ID:   binary.LittleEndian.Uint16(b[8:10]),
		},
		Tag: binary.LittleEndian.Uint16(b[10:12]),
	}, nil
}

// ParseTemplateList decodes a ListTemplates payload into the stored template ids.
func ParseTemplateList(b []byte) ([]uint16, error) {
	if len(b) < TemplateListMinSize {
		return nil, sizeError(CmdListTemplates, len(b), TemplateListMinSize)
	}
	count := int(binary.LittleEndian.Uint16(b[4:6]))
	if want := TemplateListMinSize + 2*count; len(b) != want {
		return nil, sizeError(CmdListTemplates, len(b), want)
	}

	ids := make([]uint16, count)
	for i := range ids {
		ids[i] = binary.LittleEndian.Uint16(b[TemplateListMinSize+2*i:])
	}
	return ids, nil
}

// ParseNavigation decodes a Navigation event payload into a gesture.
func ParseNavigation(b []byte) (uint16, error) {
	if len(b) != NavigationEventSize {
		return 0, sizeError(CmdNavigation, len(b), NavigationEventSize)
	}
	return binary.LittleEndian.Uint16(b[4:6]), nil
}

// ParseGPIO decodes a GPIO control response into the pin state.
func ParseGPIO(b []byte) (uint8, error) {
	if len(b) != GPIOResponseSize {
		return 0, sizeError(CmdGPIOControl, len(b), GPIOResponseSize)
	}
	return b[4], nil
}

// ParseSystemConfig decodes a GetSystemConfig response. Trailing bytes are ignored.
func ParseSystemConfig(b []byte) (SystemConfig, error) {
	if len(b) < GetConfigResponseMinSize {
		return SystemConfig{}, sizeError(CmdGetSystemConfig, len(b), GetConfigResponseMinSize)
	}
	return DecodeSystemConfig(b[CommandHeaderSize:])
}

// ParseBIST decodes a BIST response into the test verdict. Trailing bytes are ignored.
func ParseBIST(b []byte) (uint16, error) {
	if len(b) < BISTResponseMinSize {
		return 0, sizeError(CmdBIST, len(b), BISTResponseMinSize)
	}
	return binary.LittleEndian.Uint16(b[4:6]), nil
}
