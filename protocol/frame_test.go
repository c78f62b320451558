package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeFrameStatusRequest(t *testing.T) {
	frame, err := EncodeFrame(BuildCommand(CmdStatus))
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	expected := []byte{0x04, 0x00, 0x11, 0x10, 0x04, 0x00, 0x40, 0x00, 0x11, 0x00}
	if !bytes.Equal(frame, expected) {
		t.Errorf("Status frame mismatch:\n got  % X\n want % X", frame, expected)
	}
}

func TestEncodeFramePayloadTooLong(t *testing.T) {
	_, err := EncodeFrame(make([]byte, FramePayloadMax+1))
	if !errors.Is(err, ErrInvalidParam) {
		t.Errorf("Expected ErrInvalidParam, got %v", err)
	}
}

func TestDecodeHeader(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
		want    FrameHeader
	}{
		{
			name: "response from app",
			data: []byte{0x04, 0x00, 0x12, 0x40, 0x0C, 0x00},
			want: FrameHeader{Version: 4, Type: FrameTypeResponse, Flags: 0x40, PayloadSize: 12},
		},
		{
			name: "event from app with extra flag bits",
			data: []byte{0x04, 0x00, 0x13, 0x41, 0x06, 0x00},
			want: FrameHeader{Version: 4, Type: FrameTypeEvent, Flags: 0x41, PayloadSize: 6},
		},
		{
			name:    "wrong version",
			data:    []byte{0x05, 0x00, 0x12, 0x40, 0x0C, 0x00},
			wantErr: ErrBadData,
		},
		{
			name:    "sent by bootloader",
			data:    []byte{0x04, 0x00, 0x12, 0x20, 0x0C, 0x00},
			wantErr: ErrBadData,
		},
		{
			name:    "request type",
			data:    []byte{0x04, 0x00, 0x11, 0x40, 0x0C, 0x00},
			wantErr: ErrBadData,
		},
		{
			name:    "short",
			data:    []byte{0x04, 0x00, 0x12},
			wantErr: ErrBadData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hdr, err := DecodeHeader(tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeHeader failed: %v", err)
			}
			if hdr != tt.want {
				t.Errorf("Header mismatch: got %+v, want %+v", hdr, tt.want)
			}
		})
	}
}

func TestFrameHeaderRoundTrip(t *testing.T) {
	hdr := FrameHeader{
		Version:     FrameProtocolVersion,
		Type:        FrameTypeEvent,
		Flags:       FrameFlagSenderFirmwareApp,
		PayloadSize: 0x1234,
	}
	b := AppendFrameHeader(nil, hdr)
	if len(b) != FrameHeaderSize {
		t.Fatalf("Expected %d header bytes, got %d", FrameHeaderSize, len(b))
	}
	got, err := DecodeHeader(b)
	if err != nil {
		t.Fatalf("DecodeHeader failed: %v", err)
	}
	if got != hdr {
		t.Errorf("Round trip mismatch: got %+v, want %+v", got, hdr)
	}
}
