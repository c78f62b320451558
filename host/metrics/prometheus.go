// Package metrics exports sensor engine and transport counters to Prometheus.
package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"fpc2534/host/comm"
	"fpc2534/host/sensor"
)

type MetricsConfig struct {
	Namespace     string
	SubSensor     string
	SubTransport  string
	TickSensor    time.Duration
	TickTransport time.Duration
}

func DefaultConfig() *MetricsConfig {
	return &MetricsConfig{
		Namespace:     "fpc2534",
		SubSensor:     "sensor",
		SubTransport:  "transport",
		TickSensor:    100 * time.Millisecond,
		TickTransport: 100 * time.Millisecond,
	}
}

// SensorSource is anything reporting engine counters, normally *sensor.Sensor.
type SensorSource interface {
	GetMetrics() *sensor.Metrics
}

// TransportSource is anything reporting transport counters.
type TransportSource interface {
	GetMetrics() *comm.Metrics
}

type Metrics struct {
	reg    prometheus.Registerer
	lock   sync.Mutex
	config *MetricsConfig

	// sensor
	sensorFramesSent     *prometheus.GaugeVec
	sensorFramesReceived *prometheus.GaugeVec
	sensorBadHeaders     *prometheus.GaugeVec
	sensorParseErrors    *prometheus.GaugeVec
	sensorAppFailures    *prometheus.GaugeVec
	sensorStatusFrames   *prometheus.GaugeVec
	sensorState          *prometheus.GaugeVec

	// transport
	transportBlocksRead    *prometheus.GaugeVec
	transportBytesRead     *prometheus.GaugeVec
	transportBlocksWritten *prometheus.GaugeVec
	transportBytesWritten  *prometheus.GaugeVec
	transportFetchErrors   *prometheus.GaugeVec
	transportOverflows     *prometheus.GaugeVec
	transportWriteErrors   *prometheus.GaugeVec
	transportBuffered      *prometheus.GaugeVec

	cancelfns map[string]context.CancelFunc
}

func New(reg prometheus.Registerer, config *MetricsConfig) *Metrics {
	gauge := func(sub, name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: config.Namespace, Subsystem: sub, Name: name, Help: help}, []string{"device"})
	}

	met := &Metrics{
		config: config,
		reg:    reg,

		sensorFramesSent:     gauge(config.SubSensor, "frames_sent", "Request frames sent"),
		sensorFramesReceived: gauge(config.SubSensor, "frames_received", "Frames received"),
		sensorBadHeaders:     gauge(config.SubSensor, "bad_headers", "Frame headers rejected"),
		sensorParseErrors:    gauge(config.SubSensor, "parse_errors", "Payloads that failed to parse"),
		sensorAppFailures:    gauge(config.SubSensor, "app_failures", "Status frames carrying an application failure"),
		sensorStatusFrames:   gauge(config.SubSensor, "status_frames", "Status frames received"),
		sensorState:          gauge(config.SubSensor, "state", "Last reported state bitmask"),

		transportBlocksRead:    gauge(config.SubTransport, "blocks_read", "Blocks read"),
		transportBytesRead:     gauge(config.SubTransport, "bytes_read", "Bytes read"),
		transportBlocksWritten: gauge(config.SubTransport, "blocks_written", "Blocks written"),
		transportBytesWritten:  gauge(config.SubTransport, "bytes_written", "Bytes written"),
		transportFetchErrors:   gauge(config.SubTransport, "fetch_errors", "Block fetch errors"),
		transportOverflows:     gauge(config.SubTransport, "overflows", "Blocks dropped on FIFO overflow"),
		transportWriteErrors:   gauge(config.SubTransport, "write_errors", "Write errors"),
		transportBuffered:      gauge(config.SubTransport, "buffered", "Bytes waiting in the receive FIFO"),

		cancelfns: make(map[string]context.CancelFunc),
	}

	reg.MustRegister(met.sensorFramesSent, met.sensorFramesReceived, met.sensorBadHeaders,
		met.sensorParseErrors, met.sensorAppFailures, met.sensorStatusFrames, met.sensorState)

	reg.MustRegister(met.transportBlocksRead, met.transportBytesRead, met.transportBlocksWritten,
		met.transportBytesWritten, met.transportFetchErrors, met.transportOverflows,
		met.transportWriteErrors, met.transportBuffered)

	return met
}

func (m *Metrics) remove(subsystem string, name string) {
	m.lock.Lock()
	cancelfn, ok := m.cancelfns[fmt.Sprintf("%s_%s", subsystem, name)]
	if ok {
		cancelfn()
		delete(m.cancelfns, fmt.Sprintf("%s_%s", subsystem, name))
	}
	m.lock.Unlock()
}

func (m *Metrics) add(subsystem string, name string, interval time.Duration, tickfn func()) {
	ctx, cancelfn := context.WithCancel(context.TODO())
	m.lock.Lock()
	if old, ok := m.cancelfns[fmt.Sprintf("%s_%s", subsystem, name)]; ok {
		old()
	}
	m.cancelfns[fmt.Sprintf("%s_%s", subsystem, name)] = cancelfn
	m.lock.Unlock()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickfn()
			}
		}
	}()
}

// Shutdown everything
func (m *Metrics) Shutdown() {
	m.lock.Lock()
	for _, cancelfn := range m.cancelfns {
		cancelfn()
	}
	m.cancelfns = make(map[string]context.CancelFunc)
	m.lock.Unlock()
}

func (m *Metrics) AddSensor(name string, s SensorSource) {
	m.add(m.config.SubSensor, name, m.config.TickSensor, func() {
		m.updateSensor(name, s.GetMetrics())
	})
}

func (m *Metrics) RemoveSensor(name string) {
	m.remove(m.config.SubSensor, name)
}

func (m *Metrics) AddTransport(name string, t TransportSource) {
	m.add(m.config.SubTransport, name, m.config.TickTransport, func() {
		m.updateTransport(name, t.GetMetrics())
	})
}

func (m *Metrics) RemoveTransport(name string) {
	m.remove(m.config.SubTransport, name)
}

func (m *Metrics) updateSensor(name string, met *sensor.Metrics) {
	if met == nil {
		return
	}
	m.sensorFramesSent.WithLabelValues(name).Set(float64(met.FramesSent))
	m.sensorFramesReceived.WithLabelValues(name).Set(float64(met.FramesReceived))
	m.sensorBadHeaders.WithLabelValues(name).Set(float64(met.BadHeaders))
	m.sensorParseErrors.WithLabelValues(name).Set(float64(met.ParseErrors))
	m.sensorAppFailures.WithLabelValues(name).Set(float64(met.AppFailures))
	m.sensorStatusFrames.WithLabelValues(name).Set(float64(met.StatusFrames))
	m.sensorState.WithLabelValues(name).Set(float64(met.State))
}

func (m *Metrics) updateTransport(name string, met *comm.Metrics) {
	if met == nil {
		return
	}
	m.transportBlocksRead.WithLabelValues(name).Set(float64(met.BlocksRead))
	m.transportBytesRead.WithLabelValues(name).Set(float64(met.BytesRead))
	m.transportBlocksWritten.WithLabelValues(name).Set(float64(met.BlocksWritten))
	m.transportBytesWritten.WithLabelValues(name).Set(float64(met.BytesWritten))
	m.transportFetchErrors.WithLabelValues(name).Set(float64(met.FetchErrors))
	m.transportOverflows.WithLabelValues(name).Set(float64(met.Overflows))
	m.transportWriteErrors.WithLabelValues(name).Set(float64(met.WriteErrors))
	m.transportBuffered.WithLabelValues(name).Set(float64(met.Buffered))
}
