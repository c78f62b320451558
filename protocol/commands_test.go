package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestBuildCommandPayloads(t *testing.T) {
	cfg := &SystemConfig{
		Version:                 1,
		FingerScanIntervalMs:    0x0022,
		SysFlags:                SysFlagAllowFactoryReset,
		UARTDelayBeforeIRQMs:    1,
		UARTBaudrate:            UARTBaud921600,
		IdfyMaxConsecutiveFails: 5,
		IdfyLockoutTimeS:        15,
		IdleTimeBeforeSleepMs:   0x01F4,
	}

	tests := []struct {
		name  string
		build func() ([]byte, error)
		want  []byte
	}{
		{
			name:  "abort",
			build: func() ([]byte, error) { return BuildCommand(CmdAbort), nil },
			want:  []byte{0x52, 0x00, 0x11, 0x00},
		},
		{
			name:  "enroll generate new",
			build: func() ([]byte, error) { return BuildEnrollCmd(GenerateNewID()) },
			want:  []byte{0x54, 0x00, 0x11, 0x00, 0x83, 0x20, 0x00, 0x00},
		},
		{
			name:  "identify all with tag",
			build: func() ([]byte, error) { return BuildIdentifyCmd(AllIDs(), 0xBEEF) },
			want:  []byte{0x55, 0x00, 0x11, 0x00, 0x23, 0x20, 0x00, 0x00, 0xEF, 0xBE},
		},
		{
			name:  "delete specified",
			build: func() ([]byte, error) { return BuildDeleteTemplateCmd(SpecifiedID(7)) },
			want:  []byte{0x61, 0x00, 0x11, 0x00, 0x34, 0x30, 0x07, 0x00},
		},
		{
			name:  "navigation",
			build: func() ([]byte, error) { return BuildNavigationCmd(2) },
			want:  []byte{0x00, 0x02, 0x11, 0x00, 0x02, 0x00},
		},
		{
			name:  "gpio set",
			build: func() ([]byte, error) { return BuildSetGPIOCmd(LEDPin, GPIOModeOutputPushPull, GPIOStateSet) },
			want:  []byte{0x00, 0x03, 0x11, 0x00, 0x01, 0x01, 0x00, 0x01},
		},
		{
			name:  "gpio get",
			build: func() ([]byte, error) { return BuildGetGPIOCmd(3), nil },
			want:  []byte{0x00, 0x03, 0x11, 0x00, 0x00, 0x03, 0x00, 0x00},
		},
		{
			name:  "get system config",
			build: func() ([]byte, error) { return BuildGetSystemConfigCmd(SysConfigTypeCustom) },
			want:  []byte{0x6A, 0x00, 0x11, 0x00, 0x01, 0x00},
		},
		{
			name:  "set system config",
			build: func() ([]byte, error) { return BuildSetSystemConfigCmd(cfg) },
			want: []byte{
				0x6B, 0x00, 0x11, 0x00,
				0x01, 0x00, 0x22, 0x00, 0x00, 0x01, 0x00, 0x00,
				0x01, 0x05, 0x05, 0x0F, 0xF4, 0x01,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.build()
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Payload mismatch:\n got  % X\n want % X", got, tt.want)
			}
		})
	}
}

func TestBuildCommandValidation(t *testing.T) {
	tests := []struct {
		name  string
		build func() ([]byte, error)
	}{
		{"enroll all", func() ([]byte, error) { return BuildEnrollCmd(AllIDs()) }},
		{"identify generate new", func() ([]byte, error) { return BuildIdentifyCmd(GenerateNewID(), 0) }},
		{"delete generate new", func() ([]byte, error) { return BuildDeleteTemplateCmd(GenerateNewID()) }},
		{"unknown id type", func() ([]byte, error) { return BuildIdentifyCmd(IDSelector{Type: 0x1234}, 0) }},
		{"orientation 4", func() ([]byte, error) { return BuildNavigationCmd(4) }},
		{"gpio mode 5", func() ([]byte, error) { return BuildSetGPIOCmd(1, 5, GPIOStateSet) }},
		{"gpio state 2", func() ([]byte, error) { return BuildSetGPIOCmd(1, GPIOModeOutputPushPull, 2) }},
		{"config type 2", func() ([]byte, error) { return BuildGetSystemConfigCmd(2) }},
		{"nil config", func() ([]byte, error) { return BuildSetSystemConfigCmd(nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.build()
			if !errors.Is(err, ErrInvalidParam) {
				t.Errorf("Expected ErrInvalidParam, got %v", err)
			}
			if got != nil {
				t.Errorf("Expected no payload, got % X", got)
			}
		})
	}
}

func TestIDSelectorString(t *testing.T) {
	if s := SpecifiedID(3).String(); s != "id 3" {
		t.Errorf("Unexpected string %q", s)
	}
	if s := AllIDs().String(); s != "all" {
		t.Errorf("Unexpected string %q", s)
	}
}
