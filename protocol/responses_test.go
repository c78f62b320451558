package protocol

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseStatus(t *testing.T) {
	b := []byte{0x40, 0x00, 0x12, 0x00, 0x03, 0x00, 0x81, 0x00, 0x00, 0x00, 0x00, 0x00}
	status, err := ParseStatus(b)
	if err != nil {
		t.Fatalf("ParseStatus failed: %v", err)
	}
	want := StatusResponse{Event: EventFingerDetect, State: StateAppFwReady | StateFingerDown}
	if status != want {
		t.Errorf("Status mismatch: got %+v, want %+v", status, want)
	}

	if _, err := ParseStatus(b[:11]); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("Expected ErrInvalidParam for short status, got %v", err)
	}
}

func TestParseVersion(t *testing.T) {
	b := []byte{
		0x41, 0x00, 0x12, 0x00,
		0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x03, 0x00, 0x00, 0x00,
		0x07, 0x02,
		0x06, 0x00,
		'1', '.', '4', '.', 0x00, 0x00,
	}
	v, err := ParseVersion(b)
	if err != nil {
		t.Fatalf("ParseVersion failed: %v", err)
	}
	if v.Version != "1.4." {
		t.Errorf("Expected version %q, got %q", "1.4.", v.Version)
	}
	if v.MCUUniqueID != [3]uint32{1, 2, 3} || v.FwID != 7 || v.FwFuseLevel != 2 {
		t.Errorf("Identification mismatch: %+v", v)
	}

	// Declared string length disagrees with the payload
	if _, err := ParseVersion(b[:len(b)-1]); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("Expected ErrInvalidParam, got %v", err)
	}
}

func TestParseEnrollAndIdentify(t *testing.T) {
	enroll, err := ParseEnroll([]byte{0x54, 0x00, 0x12, 0x00, 0x05, 0x00, 0x02, 0x0A})
	if err != nil {
		t.Fatalf("ParseEnroll failed: %v", err)
	}
	if enroll != (EnrollResponse{ID: 5, Feedback: EnrollFeedbackProgress, SamplesRemaining: 10}) {
		t.Errorf("Enroll mismatch: %+v", enroll)
	}

	id, err := ParseIdentify([]byte{0x55, 0x00, 0x12, 0x00, 0xEC, 0x61, 0x34, 0x30, 0x05, 0x00, 0x00, 0x00})
	if err != nil {
		t.Fatalf("ParseIdentify failed: %v", err)
	}
	if !id.Match() || id.Template.ID != 5 {
		t.Errorf("Identify mismatch: %+v", id)
	}

	id, err = ParseIdentify([]byte{0x55, 0x00, 0x12, 0x00, 0xAD, 0xBA, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	if err != nil {
		t.Fatalf("ParseIdentify failed: %v", err)
	}
	if id.Match() {
		t.Error("Expected no match")
	}
}

func TestParseTemplateList(t *testing.T) {
	ids, err := ParseTemplateList([]byte{0x60, 0x00, 0x12, 0x00, 0x02, 0x00, 0x01, 0x00, 0x05, 0x00})
	if err != nil {
		t.Fatalf("ParseTemplateList failed: %v", err)
	}
	if !reflect.DeepEqual(ids, []uint16{1, 5}) {
		t.Errorf("Unexpected ids %v", ids)
	}

	ids, err = ParseTemplateList([]byte{0x60, 0x00, 0x12, 0x00, 0x00, 0x00})
	if err != nil || len(ids) != 0 {
		t.Errorf("Expected empty list, got %v (%v)", ids, err)
	}

	// Count says three ids but only two follow
	if _, err := ParseTemplateList([]byte{0x60, 0x00, 0x12, 0x00, 0x03, 0x00, 0x01, 0x00, 0x05, 0x00}); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("Expected ErrInvalidParam, got %v", err)
	}
}

func TestParseFixedSizeResponses(t *testing.T) {
	gesture, err := ParseNavigation([]byte{0x00, 0x02, 0x13, 0x00, 0x05, 0x00})
	if err != nil || gesture != GesturePress {
		t.Errorf("ParseNavigation: got %d (%v)", gesture, err)
	}
	if _, err := ParseNavigation([]byte{0x00, 0x02, 0x13, 0x00, 0x05}); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("Expected ErrInvalidParam, got %v", err)
	}

	state, err := ParseGPIO([]byte{0x00, 0x03, 0x12, 0x00, 0x01, 0x00})
	if err != nil || state != GPIOStateSet {
		t.Errorf("ParseGPIO: got %d (%v)", state, err)
	}

	verdict, err := ParseBIST([]byte{0x44, 0x00, 0x12, 0x00, 0x00, 0x00, 0xFF})
	if err != nil || verdict != 0 {
		t.Errorf("ParseBIST with trailing byte: got %d (%v)", verdict, err)
	}
	if _, err := ParseBIST([]byte{0x44, 0x00, 0x12, 0x00, 0x00}); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("Expected ErrInvalidParam, got %v", err)
	}
}

func TestParseSystemConfig(t *testing.T) {
	want := SystemConfig{
		Version:               2,
		FingerScanIntervalMs:  34,
		SysFlags:              SysFlagUARTIRQBeforeTx,
		UARTBaudrate:          UARTBaud115200,
		IdleTimeBeforeSleepMs: 1000,
	}
	payload := want.AppendBinary(BuildCommand(CmdGetSystemConfig))

	got, err := ParseSystemConfig(payload)
	if err != nil {
		t.Fatalf("ParseSystemConfig failed: %v", err)
	}
	if got != want {
		t.Errorf("Config mismatch: got %+v, want %+v", got, want)
	}
	if got.IdleTimeBeforeSleep().Seconds() != 1 {
		t.Errorf("Unexpected idle time %v", got.IdleTimeBeforeSleep())
	}
	if UARTBaudRate(got.UARTBaudrate) != 115200 {
		t.Errorf("Unexpected baud rate %d", UARTBaudRate(got.UARTBaudrate))
	}

	if _, err := ParseSystemConfig(payload[:17]); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("Expected ErrInvalidParam, got %v", err)
	}
}

func TestDecodeCommandHeader(t *testing.T) {
	hdr, err := DecodeCommandHeader([]byte{0x40, 0x00, 0x13, 0x00})
	if err != nil {
		t.Fatalf("DecodeCommandHeader failed: %v", err)
	}
	if hdr.ID != CmdStatus || hdr.Type != FrameTypeEvent {
		t.Errorf("Header mismatch: %+v", hdr)
	}
	if _, err := DecodeCommandHeader([]byte{0x40}); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("Expected ErrInvalidParam, got %v", err)
	}
}
