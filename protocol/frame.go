package protocol

import (
	"encoding/binary"
	"fmt"
)

// FrameHeader is the fixed header preceding every frame payload.
//
// Wire layout (little endian):
//
//	[VERSION(2)][TYPE(1)][FLAGS(1)][PAYLOAD_SIZE(2)]
type FrameHeader struct {
	Version     uint16
	Type        FrameType
	Flags       uint8
	PayloadSize uint16
}

// EncodeFrame builds a host request frame around a command payload.
// The payload is everything after the frame header, starting with the
// command header.
func EncodeFrame(payload []byte) ([]byte, error) {
	if len(payload) > FramePayloadMax {
		return nil, fmt.Errorf("payload too long: %d bytes (max %d): %w", len(payload), FramePayloadMax, ErrInvalidParam)
	}

	frame := make([]byte, 0, FrameHeaderSize+len(payload))
	frame = AppendFrameHeader(frame, FrameHeader{
		Version:     FrameProtocolVersion,
		Type:        FrameTypeRequest,
		Flags:       FrameFlagSenderHost,
		PayloadSize: uint16(len(payload)),
	})
	return append(frame, payload...), nil
}

// AppendFrameHeader appends the wire form of hdr to b.
func AppendFrameHeader(b []byte, hdr FrameHeader) []byte {
	b = binary.LittleEndian.AppendUint16(b, hdr.Version)
	b = append(b, byte(hdr.Type), hdr.Flags)
	return binary.LittleEndian.AppendUint16(b, hdr.PayloadSize)
}

// DecodeHeader parses and validates a frame header received from the sensor.
// Only firmware-application Response and Event frames of the current
// protocol version are accepted; anything else is ErrBadData.
func DecodeHeader(b []byte) (FrameHeader, error) {
	if len(b) < FrameHeaderSize {
		return FrameHeader{}, fmt.Errorf("frame header too short: got %d bytes, need %d: %w", len(b), FrameHeaderSize, ErrBadData)
	}

	hdr := FrameHeader{
		Version:     binary.LittleEndian.Uint16(b[0:2]),
		Type:        FrameType(b[2]),
		Flags:       b[3],
		PayloadSize: binary.LittleEndian.Uint16(b[4:6]),
	}

	if hdr.Version != FrameProtocolVersion {
		return hdr, fmt.Errorf("unsupported frame version 0x%04X: %w", hdr.Version, ErrBadData)
	}
	if hdr.Flags&FrameFlagSenderFirmwareApp == 0 {
		return hdr, fmt.Errorf("frame not sent by firmware application (flags 0x%02X): %w", hdr.Flags, ErrBadData)
	}
	if hdr.Type != FrameTypeResponse && hdr.Type != FrameTypeEvent {
		return hdr, fmt.Errorf("unexpected frame type 0x%02X: %w", uint8(hdr.Type), ErrBadData)
	}

	return hdr, nil
}

func (t FrameType) String() string {
	switch t {
	case FrameTypeRequest:
		return "request"
	case FrameTypeResponse:
		return "response"
	case FrameTypeEvent:
		return "event"
	default:
		return fmt.Sprintf("type(0x%02X)", uint8(t))
	}
}
