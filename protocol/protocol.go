// Package protocol implements the FPC2534 host communication protocol
package protocol

// Version represents the driver version
const Version = "0.1.0"

// Frame constants
const (
	FrameProtocolVersion = 0x0004 // Only protocol version the driver speaks
	FrameHeaderSize      = 6      // version(2) type(1) flags(1) payload_size(2)
	FramePayloadMax      = 0xFFFF // payload_size is a u16

	// Block transports prefix every bus transaction with a u16 length
	BlockLengthSize = 2
)

// FrameType is the frame/command type discriminant
type FrameType uint8

// Frame types
const (
	FrameTypeRequest  FrameType = 0x11 // host -> device
	FrameTypeResponse FrameType = 0x12 // device -> host, answers a request
	FrameTypeEvent    FrameType = 0x13 // device -> host, unsolicited
)

// Frame flags (sender)
const (
	FrameFlagSenderHost        uint8 = 0x10
	FrameFlagSenderFirmwareBL  uint8 = 0x20
	FrameFlagSenderFirmwareApp uint8 = 0x40
)

// Command identifies a protocol command
type Command uint16

// Command identifiers
const (
	CmdStatus          Command = 0x0040
	CmdVersion         Command = 0x0041
	CmdBIST            Command = 0x0044
	CmdAbort           Command = 0x0052
	CmdEnroll          Command = 0x0054
	CmdIdentify        Command = 0x0055
	CmdListTemplates   Command = 0x0060
	CmdDeleteTemplate  Command = 0x0061
	CmdGetSystemConfig Command = 0x006A
	CmdSetSystemConfig Command = 0x006B
	CmdReset           Command = 0x0072
	CmdFactoryReset    Command = 0x0085
	CmdNavigation      Command = 0x0200
	CmdGPIOControl     Command = 0x0300
)

// Device state bits (reported in Status frames)
const (
	StateAppFwReady      uint16 = 0x0001
	StateSecureInterface uint16 = 0x0002
	StateCapture         uint16 = 0x0004
	StateImageAvailable  uint16 = 0x0010
	StateDataTransfer    uint16 = 0x0040
	StateFingerDown      uint16 = 0x0080
	StateSysError        uint16 = 0x0400
	StateEnroll          uint16 = 0x1000
	StateIdentify        uint16 = 0x2000
	StateNavigation      uint16 = 0x4000

	// StateModeMask selects the mutually exclusive mode bits
	StateModeMask = StateEnroll | StateIdentify | StateNavigation
)

// Status events
const (
	EventNone         uint16 = 0
	EventIdle         uint16 = 1
	EventArmed        uint16 = 2
	EventFingerDetect uint16 = 3
	EventFingerLost   uint16 = 4
	EventImageReady   uint16 = 5
	EventCmdFailed    uint16 = 6
)

// IDType tags an IDSelector
type IDType uint16

// ID selector types
const (
	IDTypeSpecified   IDType = 0x3034
	IDTypeAll         IDType = 0x2023
	IDTypeGenerateNew IDType = 0x2083
)

// Identify results
const (
	IdentifyResultMatch   uint16 = 0x61EC
	IdentifyResultNoMatch uint16 = 0xBAAD
)

// Enroll feedback codes
const (
	EnrollFeedbackDone              uint8 = 1
	EnrollFeedbackProgress          uint8 = 2
	EnrollFeedbackRejectLowQuality  uint8 = 3
	EnrollFeedbackRejectLowCoverage uint8 = 4
	EnrollFeedbackRejectLowMobility uint8 = 5
	EnrollFeedbackRejectOther       uint8 = 6
	EnrollFeedbackProgressImmobile  uint8 = 7
)

// Navigation gestures
const (
	GestureNone      uint16 = 0
	GestureUp        uint16 = 1
	GestureDown      uint16 = 2
	GestureRight     uint16 = 3
	GestureLeft      uint16 = 4
	GesturePress     uint16 = 5
	GestureLongPress uint16 = 6
)

// Navigation orientation range (90 degrees per step)
const NavigationOrientationMax = 3

// GPIO control
const (
	GPIOSubCmdGet uint8 = 0
	GPIOSubCmdSet uint8 = 1

	GPIOModeOutputPushPull  uint8 = 0
	GPIOModeOutputOpenDrain uint8 = 1
	GPIOModeInputPullNone   uint8 = 2
	GPIOModeInputPullUp     uint8 = 3
	GPIOModeInputPullDown   uint8 = 4

	GPIOStateReset uint8 = 0
	GPIOStateSet   uint8 = 1

	// LEDPin is the module GPIO wired to the status LED
	LEDPin uint8 = 1
)

// System config types
const (
	SysConfigTypeDefault uint8 = 0
	SysConfigTypeCustom  uint8 = 1
)

// System config flags
const (
	SysFlagUARTInStopMode    uint32 = 0x00000010
	SysFlagUARTIRQBeforeTx   uint32 = 0x00000020
	SysFlagAllowFactoryReset uint32 = 0x00000100
)

// UART baud rate selectors used in SystemConfig.UARTBaudrate
const (
	UARTBaud9600   uint8 = 1
	UARTBaud19200  uint8 = 2
	UARTBaud57600  uint8 = 3
	UARTBaud115200 uint8 = 4
	UARTBaud921600 uint8 = 5
)
