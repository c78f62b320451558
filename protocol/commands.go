package protocol

import (
	"encoding/binary"
	"fmt"
)

// Payload sizes of the fixed request structures
const (
	CommandHeaderSize         = 4 // cmd_id(2) type(2)
	IDSelectorSize            = 4 // type(2) id(2)
	EnrollRequestSize         = CommandHeaderSize + IDSelectorSize
	IdentifyRequestSize       = CommandHeaderSize + IDSelectorSize + 2
	DeleteTemplateRequestSize = CommandHeaderSize + IDSelectorSize
	NavigationRequestSize     = CommandHeaderSize + 2
	GPIORequestSize           = CommandHeaderSize + 4
	GetConfigRequestSize      = CommandHeaderSize + 2
	SetConfigRequestSize      = CommandHeaderSize + SystemConfigSize
)

// CommandHeader starts every frame payload.
type CommandHeader struct {
	ID   Command
	Type FrameType
}

// IDSelector names a template: an explicit id, a freshly generated one or all of them.
type IDSelector struct {
	Type IDType
	ID   uint16
}

// SpecifiedID selects the template with the given id.
func SpecifiedID(id uint16) IDSelector {
	return IDSelector{Type: IDTypeSpecified, ID: id}
}

// GenerateNewID asks the sensor to allocate a template id.
func GenerateNewID() IDSelector {
	return IDSelector{Type: IDTypeGenerateNew}
}

// AllIDs selects every stored template.
func AllIDs() IDSelector {
	return IDSelector{Type: IDTypeAll}
}

func (s IDSelector) String() string {
	switch s.Type {
	case IDTypeSpecified:
		return fmt.Sprintf("id %d", s.ID)
	case IDTypeGenerateNew:
		return "generate-new"
	case IDTypeAll:
		return "all"
	default:
		return fmt.Sprintf("id-type(0x%04X)", uint16(s.Type))
	}
}

func appendCommandHeader(b []byte, cmd Command) []byte {
	b = binary.LittleEndian.AppendUint16(b, uint16(cmd))
	return binary.LittleEndian.AppendUint16(b, uint16(FrameTypeRequest))
}

func appendIDSelector(b []byte, id IDSelector) []byte {
	b = binary.LittleEndian.AppendUint16(b, uint16(id.Type))
	return binary.LittleEndian.AppendUint16(b, id.ID)
}

// BuildCommand constructs the payload of a request that carries nothing
// beyond the command header (Status, Version, Abort, ListTemplates, Reset,
// BIST, FactoryReset).
func BuildCommand(cmd Command) []byte {
	return appendCommandHeader(make([]byte, 0, CommandHeaderSize), cmd)
}

// BuildEnrollCmd constructs an Enroll request payload.
//
// Payload structure:
//
//	[CMD_HDR(4)][ID_TYPE(2)][ID(2)]
func BuildEnrollCmd(id IDSelector) ([]byte, error) {
	if id.Type != IDTypeSpecified && id.Type != IDTypeGenerateNew {
		return nil, fmt.Errorf("enroll does not accept %s: %w", id, ErrInvalidParam)
	}
	b := appendCommandHeader(make([]byte, 0, EnrollRequestSize), CmdEnroll)
	return appendIDSelector(b, id), nil
}

// BuildIdentifyCmd constructs an Identify request payload.
//
// Payload structure:
//
//	[CMD_HDR(4)][ID_TYPE(2)][ID(2)][TAG(2)]
func BuildIdentifyCmd(id IDSelector, tag uint16) ([]byte, error) {
	if id.Type != IDTypeSpecified && id.Type != IDTypeAll {
		return nil, fmt.Errorf("identify does not accept %s: %w", id, ErrInvalidParam)
	}
	b := appendCommandHeader(make([]byte, 0, IdentifyRequestSize), CmdIdentify)
	b = appendIDSelector(b, id)
	return binary.LittleEndian.AppendUint16(b, tag), nil
}

// BuildDeleteTemplateCmd constructs a DeleteTemplate request payload.
func BuildDeleteTemplateCmd(id IDSelector) ([]byte, error) {
	if id.Type != IDTypeSpecified && id.Type != IDTypeAll {
		return nil, fmt.Errorf("delete does not accept %s: %w", id, ErrInvalidParam)
	}
	b := appendCommandHeader(make([]byte, 0, DeleteTemplateRequestSize), CmdDeleteTemplate)
	return appendIDSelector(b, id), nil
}

// BuildNavigationCmd constructs a Navigation request payload.
// Orientation is given in 90 degree steps (0-3).
func BuildNavigationCmd(orientation uint8) ([]byte, error) {
	if orientation > NavigationOrientationMax {
		return nil, fmt.Errorf("orientation %d out of range 0-%d: %w", orientation, NavigationOrientationMax, ErrInvalidParam)
	}
	b := appendCommandHeader(make([]byte, 0, NavigationRequestSize), CmdNavigation)
	return binary.LittleEndian.AppendUint16(b, uint16(orientation)), nil
}

// BuildSetGPIOCmd constructs a GPIO control SET request payload.
//
// Payload structure:
//
//	[CMD_HDR(4)][SUB_CMD(1)][PIN(1)][MODE(1)][STATE(1)]
func BuildSetGPIOCmd(pin, mode, state uint8) ([]byte, error) {
	if mode > GPIOModeInputPullDown {
		return nil, fmt.Errorf("gpio mode %d out of range: %w", mode, ErrInvalidParam)
	}
	if state > GPIOStateSet {
		return nil, fmt.Errorf("gpio state %d out of range: %w", state, ErrInvalidParam)
	}
	b := appendCommandHeader(make([]byte, 0, GPIORequestSize), CmdGPIOControl)
	return append(b, GPIOSubCmdSet, pin, mode, state), nil
}

// BuildGetGPIOCmd constructs a GPIO control GET request payload.
func BuildGetGPIOCmd(pin uint8) []byte {
	b := appendCommandHeader(make([]byte, 0, GPIORequestSize), CmdGPIOControl)
	return append(b, GPIOSubCmdGet, pin, 0, 0)
}

// BuildGetSystemConfigCmd constructs a GetSystemConfig request payload.
func BuildGetSystemConfigCmd(configType uint8) ([]byte, error) {
	if configType > SysConfigTypeCustom {
		return nil, fmt.Errorf("config type %d out of range: %w", configType, ErrInvalidParam)
	}
	b := appendCommandHeader(make([]byte, 0, GetConfigRequestSize), CmdGetSystemConfig)
	return binary.LittleEndian.AppendUint16(b, uint16(configType)), nil
}

// BuildSetSystemConfigCmd constructs a SetSystemConfig request payload.
func BuildSetSystemConfigCmd(cfg *SystemConfig) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil system config: %w", ErrInvalidParam)
	}
	b := appendCommandHeader(make([]byte, 0, SetConfigRequestSize), CmdSetSystemConfig)
	return cfg.AppendBinary(b), nil
}

func (c Command) String() string {
	switch c {
	case CmdStatus:
		return "status"
	case CmdVersion:
		return "version"
	case CmdBIST:
		return "bist"
	case CmdAbort:
		return "abort"
	case CmdEnroll:
		return "enroll"
	case CmdIdentify:
		return "identify"
	case CmdListTemplates:
		return "list_templates"
	case CmdDeleteTemplate:
		return "delete_template"
	case CmdGetSystemConfig:
		return "get_system_config"
	case CmdSetSystemConfig:
		return "set_system_config"
	case CmdReset:
		return "reset"
	case CmdFactoryReset:
		return "factory_reset"
	case CmdNavigation:
		return "navigation"
	case CmdGPIOControl:
		return "gpio_control"
	default:
		return fmt.Sprintf("cmd(0x%04X)", uint16(c))
	}
}
