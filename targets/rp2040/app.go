//go:build rp2040 || rp2350

package main

import (
	"fpc2534/host/sensor"
	"fpc2534/protocol"
)

// app enrolls a finger when the sensor holds no templates, then identifies
// fingers forever, lighting the module LED on a match.
//
// Callbacks run inside ProcessNextResponse, so they only queue the next
// request; the main loop sends it.
type app struct {
	dev  *sensor.Sensor
	next func() error
}

func newApp(dev *sensor.Sensor) *app {
	a := &app{dev: dev}
	dev.SetCallbacks(sensor.Callbacks{
		OnError: func(code uint16) {
			ConsolePrintln("error: " + hex16(code))
			a.next = a.identify
		},
		OnReadyChange: func(ready bool) {
			if ready {
				ConsolePrintln("sensor ready")
				a.next = dev.RequestVersion
			}
		},
		OnFingerChange: func(present bool) {
			if present {
				ConsolePrintln("finger down")
			}
		},
		OnVersion: func(v protocol.VersionResponse) {
			ConsolePrintln("firmware " + v.Version)
			a.next = dev.RequestListTemplates
		},
		OnListTemplates: func(ids []uint16) {
			ConsolePrintln(itoa(len(ids)) + " templates stored")
			if len(ids) == 0 {
				a.next = a.enroll
				return
			}
			a.next = a.identify
		},
		OnEnroll: func(r protocol.EnrollResponse) {
			ConsolePrintln("enroll: " + sensor.EnrollFeedbackString(r.Feedback) +
				", " + itoa(int(r.SamplesRemaining)) + " remaining")
			if r.Feedback == protocol.EnrollFeedbackDone {
				a.next = a.identify
			}
		},
		OnIdentify: func(r protocol.IdentifyResponse) {
			if r.Match() {
				ConsolePrintln("match: template " + itoa(int(r.Template.ID)))
			} else {
				ConsolePrintln("no match")
			}
			match := r.Match()
			a.next = func() error {
				a.next = a.identify
				return dev.SetLED(match)
			}
		},
	})
	return a
}

func (a *app) enroll() error {
	ConsolePrintln("enrolling, place finger")
	return a.dev.RequestEnroll(protocol.GenerateNewID())
}

func (a *app) identify() error {
	return a.dev.RequestIdentify(protocol.AllIDs(), 0)
}

// step sends the queued request, if any
func (a *app) step() error {
	if a.next == nil {
		return nil
	}
	next := a.next
	a.next = nil
	return next()
}
