package sensor

import "fpc2534/protocol"

// Callbacks receives everything the engine decodes. Unset fields are skipped.
// Callbacks run synchronously inside ProcessNextResponse.
type Callbacks struct {
	// OnError receives a nonzero application failure code from a Status frame
	OnError func(code uint16)

	// OnStatus receives every accepted Status frame
	OnStatus func(event, state uint16)

	// OnModeChange fires when the Enroll/Identify/Navigation bits change
	OnModeChange func(mode Mode)

	// OnFingerChange fires when the finger-down bit changes
	OnFingerChange func(present bool)

	// OnReadyChange fires when the application-ready bit changes
	OnReadyChange func(ready bool)

	OnVersion       func(v protocol.VersionResponse)
	OnEnroll        func(r protocol.EnrollResponse)
	OnIdentify      func(r protocol.IdentifyResponse)
	OnListTemplates func(ids []uint16)
	OnNavigation    func(gesture uint16)
	OnGPIOControl   func(state uint8)
	OnSystemConfig  func(cfg *protocol.SystemConfig)
	OnBISTDone      func(verdict uint16)
}
