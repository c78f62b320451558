package sensor

import "sync/atomic"

// Metrics is a snapshot of engine counters.
type Metrics struct {
	FramesSent     uint64
	FramesReceived uint64
	BadHeaders     uint64
	ParseErrors    uint64
	AppFailures    uint64
	StatusFrames   uint64
	State          uint16
}

type counters struct {
	framesSent     atomic.Uint64
	framesReceived atomic.Uint64
	badHeaders     atomic.Uint64
	parseErrors    atomic.Uint64
	appFailures    atomic.Uint64
	statusFrames   atomic.Uint64
}

// GetMetrics returns a snapshot of the engine counters. It may be called
// from any goroutine.
func (s *Sensor) GetMetrics() *Metrics {
	return &Metrics{
		FramesSent:     s.counters.framesSent.Load(),
		FramesReceived: s.counters.framesReceived.Load(),
		BadHeaders:     s.counters.badHeaders.Load(),
		ParseErrors:    s.counters.parseErrors.Load(),
		AppFailures:    s.counters.appFailures.Load(),
		StatusFrames:   s.counters.statusFrames.Load(),
		State:          uint16(s.state.Load()),
	}
}
