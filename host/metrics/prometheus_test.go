package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpc2534/host/comm"
	"fpc2534/host/sensor"
)

type fixedSensor struct{ met *sensor.Metrics }

func (f *fixedSensor) GetMetrics() *sensor.Metrics { return f.met }

type fixedTransport struct{ met *comm.Metrics }

func (f *fixedTransport) GetMetrics() *comm.Metrics { return f.met }

func gaugeValue(t *testing.T, vec *prometheus.GaugeVec) float64 {
	var pb dto.Metric
	require.NoError(t, vec.WithLabelValues("door").Write(&pb))
	return pb.GetGauge().GetValue()
}

func fastConfig() *MetricsConfig {
	cfg := DefaultConfig()
	cfg.TickSensor = time.Millisecond
	cfg.TickTransport = time.Millisecond
	return cfg
}

func TestSensorGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, fastConfig())
	defer m.Shutdown()

	m.AddSensor("door", &fixedSensor{met: &sensor.Metrics{
		FramesSent:     3,
		FramesReceived: 5,
		BadHeaders:     1,
		StatusFrames:   4,
		State:          0x0014,
	}})

	require.Eventually(t, func() bool {
		return gaugeValue(t, m.sensorFramesReceived) == 5
	}, time.Second, time.Millisecond)

	assert.Equal(t, float64(3), gaugeValue(t, m.sensorFramesSent))
	assert.Equal(t, float64(1), gaugeValue(t, m.sensorBadHeaders))
	assert.Equal(t, float64(0x14), gaugeValue(t, m.sensorState))
}

func TestTransportGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, fastConfig())
	defer m.Shutdown()

	m.AddTransport("door", &fixedTransport{met: &comm.Metrics{
		BlocksRead: 2,
		BytesRead:  36,
		Overflows:  1,
		Buffered:   12,
	}})

	require.Eventually(t, func() bool {
		return gaugeValue(t, m.transportBuffered) == 12
	}, time.Second, time.Millisecond)

	assert.Equal(t, float64(36), gaugeValue(t, m.transportBytesRead))
	assert.Equal(t, float64(1), gaugeValue(t, m.transportOverflows))
}

func TestRemoveStopsPolling(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, fastConfig())
	defer m.Shutdown()

	src := &fixedSensor{met: &sensor.Metrics{FramesSent: 1}}
	m.AddSensor("door", src)
	require.Eventually(t, func() bool {
		return gaugeValue(t, m.sensorFramesSent) == 1
	}, time.Second, time.Millisecond)

	m.RemoveSensor("door")
	m.lock.Lock()
	assert.Empty(t, m.cancelfns)
	m.lock.Unlock()
}

func TestNilSnapshotIgnored(t *testing.T) {
	m := New(prometheus.NewRegistry(), DefaultConfig())
	m.updateSensor("door", nil)
	m.updateTransport("door", nil)
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.sensorFramesSent)
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
}
