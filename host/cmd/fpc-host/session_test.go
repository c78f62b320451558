package main

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpc2534/host/config"
	"fpc2534/host/sensor"
	"fpc2534/protocol"
)

// loopTransport answers every write with the frames reply returns
type loopTransport struct {
	rx    []byte
	reply func(req []byte) []byte
}

func (l *loopTransport) DataAvailable() bool { return len(l.rx) > 0 }
func (l *loopTransport) ClearData()          { l.rx = nil }

func (l *loopTransport) Write(p []byte) error {
	if l.reply != nil {
		l.rx = append(l.rx, l.reply(p)...)
	}
	return nil
}

func (l *loopTransport) Read(p []byte) error {
	if len(l.rx) < len(p) {
		return protocol.ErrNoData
	}
	copy(p, l.rx)
	l.rx = l.rx[len(p):]
	return nil
}

func responseFrame(cmd protocol.Command, fields ...uint16) []byte {
	payload := binary.LittleEndian.AppendUint16(nil, uint16(cmd))
	payload = binary.LittleEndian.AppendUint16(payload, uint16(protocol.FrameTypeResponse))
	for _, f := range fields {
		payload = binary.LittleEndian.AppendUint16(payload, f)
	}
	b := protocol.AppendFrameHeader(nil, protocol.FrameHeader{
		Version:     protocol.FrameProtocolVersion,
		Type:        protocol.FrameTypeResponse,
		Flags:       protocol.FrameFlagSenderFirmwareApp,
		PayloadSize: uint16(len(payload)),
	})
	return append(b, payload...)
}

func testSession(t *testing.T, reply func([]byte) []byte) *session {
	t.Helper()
	s := &session{
		sensor: sensor.New(),
		events: make(chan sensor.Event, 16),
	}
	s.sensor.SetCallbacks(sensor.ChannelCallbacks(s.events))
	require.NoError(t, s.sensor.Initialize(&loopTransport{reply: reply}))
	return s
}

func TestRequestAwaitsStatus(t *testing.T) {
	rootPoll = time.Millisecond
	s := testSession(t, func([]byte) []byte {
		return responseFrame(protocol.CmdStatus, protocol.EventIdle, protocol.StateAppFwReady, 0, 0)
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ev, err := s.request(ctx, s.sensor.RequestStatus, sensor.KindStatus)
	require.NoError(t, err)
	assert.Equal(t, protocol.EventIdle, ev.Event)
	assert.Equal(t, protocol.StateAppFwReady, ev.State)
}

func TestRequestAppFailure(t *testing.T) {
	rootPoll = time.Millisecond
	s := testSession(t, func([]byte) []byte {
		return responseFrame(protocol.CmdStatus, protocol.EventCmdFailed, 0, 0x0017, 0)
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := s.request(ctx, s.sensor.RequestListTemplates, sensor.KindListTemplates)
	var appErr *protocol.AppFailError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, uint16(0x0017), appErr.Code)
}

func TestRequestTimesOut(t *testing.T) {
	rootPoll = time.Millisecond
	s := testSession(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.request(ctx, s.sensor.RequestVersion, sensor.KindVersion)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAwaitSkipsBadFrames(t *testing.T) {
	rootPoll = time.Millisecond
	s := testSession(t, func([]byte) []byte {
		bad := responseFrame(protocol.CmdStatus)
		bad[0] = 0xFF
		return bad
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.request(ctx, s.sensor.RequestStatus, sensor.KindStatus)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, uint64(1), s.sensor.GetMetrics().BadHeaders)
}

func TestRequestStalledPayloadTimesOut(t *testing.T) {
	rootPoll = time.Millisecond
	s := testSession(t, func([]byte) []byte {
		f := responseFrame(protocol.CmdStatus, protocol.EventIdle, protocol.StateAppFwReady, 0, 0)
		return f[:protocol.FrameHeaderSize]
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := s.request(ctx, s.sensor.RequestStatus, sensor.KindStatus)
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("request did not honour its deadline")
	}
	assert.True(t, s.sensor.IsDataAvailable())
}

func TestParseID(t *testing.T) {
	id, err := parseID("all")
	require.NoError(t, err)
	assert.Equal(t, protocol.AllIDs(), id)

	id, err = parseID("0x10")
	require.NoError(t, err)
	assert.Equal(t, protocol.SpecifiedID(16), id)

	_, err = parseID("70000")
	assert.Error(t, err)
}

func TestLoadSensorSchemaFromFlags(t *testing.T) {
	rootConf = ""
	rootSensor = ""
	rootTransport = config.TransportUART
	rootDevice = "/dev/ttyUSB3"
	rootBaud = 115200
	rootIRQGPIO = -1
	rootCSGPIO = -1

	ss, err := loadSensorSchema()
	require.NoError(t, err)
	assert.Equal(t, "fpc2534", ss.Name)
	assert.Equal(t, "/dev/ttyUSB3", ss.Device)
	assert.Equal(t, 115200, ss.Baud)

	rootTransport = config.TransportSPI
	_, err = loadSensorSchema()
	assert.Error(t, err)
}
