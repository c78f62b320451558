package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/loopholelabs/logging"
	"github.com/loopholelabs/logging/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"fpc2534/host/config"
	fpcprom "fpc2534/host/metrics"
	"fpc2534/host/sensor"
	"fpc2534/protocol"
)

// session is an opened sensor shared by one command, or by every command
// typed into the shell.
type session struct {
	schema  *config.SensorSchema
	dev     *config.Device
	sensor  *sensor.Sensor
	events  chan sensor.Event
	log     types.Logger
	metrics *fpcprom.Metrics
	server  *http.Server
}

// shellSession is set while the shell is running
var shellSession *session

func loadSensorSchema() (*config.SensorSchema, error) {
	if rootConf != "" {
		schema, err := config.ReadSchema(rootConf)
		if err != nil {
			return nil, err
		}
		return schema.Lookup(rootSensor)
	}

	name := rootSensor
	if name == "" {
		name = "fpc2534"
	}
	ss := config.NewSensorSchema(name, rootTransport, rootDevice)
	if rootBaud != 0 {
		ss.Baud = rootBaud
	}
	if rootIRQGPIO >= 0 {
		ss.IRQGPIO = &rootIRQGPIO
	}
	if rootCSGPIO >= 0 {
		ss.CSGPIO = &rootCSGPIO
	}
	return ss, ss.Validate()
}

func openSession() (*session, error) {
	var rootLog types.RootLogger
	var log types.Logger

	if rootDebug {
		rootLog = logging.New(logging.Zerolog, "fpc2534", os.Stderr)
		rootLog.SetLevel(types.TraceLevel)
		log = rootLog
	}

	ss, err := loadSensorSchema()
	if err != nil {
		return nil, err
	}

	dev, err := config.Open(ss, log)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", ss.Device, err)
	}

	s := &session{
		schema: ss,
		dev:    dev,
		sensor: sensor.New(sensor.WithLogger(log), sensor.WithName(ss.Name)),
		events: make(chan sensor.Event, 64),
		log:    log,
	}
	s.sensor.SetCallbacks(sensor.ChannelCallbacks(s.events))
	if err := s.sensor.Initialize(dev.Transport); err != nil {
		dev.Close()
		return nil, err
	}

	if rootMetrics != "" {
		s.serveMetrics(rootMetrics)
	}
	return s, nil
}

func (s *session) serveMetrics(addr string) {
	reg := prometheus.NewRegistry()
	s.metrics = fpcprom.New(reg, fpcprom.DefaultConfig())
	s.metrics.AddSensor(s.schema.Name, s.sensor)
	s.metrics.AddTransport(s.schema.Name, s.dev)

	// Add the default go metrics
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		reg,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			Registry:          reg,
		},
	))
	s.server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) && s.log != nil {
			s.log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
}

func (s *session) Close() error {
	if s.metrics != nil {
		s.metrics.Shutdown()
	}
	if s.server != nil {
		s.server.Close()
	}
	return s.dev.Close()
}

// withSession runs fn against the shell's session, or a fresh one closed
// afterwards. fn gets a context bounded by --timeout.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	return withSessionTimeout(cmd, rootTimeout, fn)
}

// withSessionTimeout is withSession with an explicit bound; 0 means wait
// until interrupted.
func withSessionTimeout(cmd *cobra.Command, timeout time.Duration, fn func(ctx context.Context, s *session) error) error {
	s := shellSession
	if s == nil {
		var err error
		s, err = openSession()
		if err != nil {
			return err
		}
		defer s.Close()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx, s)
}

// pump processes inbound frames until none are waiting. Frames the engine
// rejected are logged and skipped.
func (s *session) pump() error {
	for s.sensor.IsDataAvailable() {
		err := s.sensor.ProcessNextResponse()
		switch {
		case err == nil:
		case errors.Is(err, protocol.ErrNoData):
			return nil
		case errors.Is(err, protocol.ErrBadData), errors.Is(err, protocol.ErrInvalidParam):
			if s.log != nil {
				s.log.Debug().Err(err).Msg("skipped frame")
			}
		default:
			return err
		}
	}
	return nil
}

// await polls the sensor until want accepts an event. An application
// failure reported by the device ends the wait with an *AppFailError.
// Events want rejects are passed to other, when set.
func (s *session) await(ctx context.Context, want func(sensor.Event) bool, other func(sensor.Event)) (sensor.Event, error) {
	ticker := time.NewTicker(rootPoll)
	defer ticker.Stop()

	for {
		if err := s.pump(); err != nil {
			return sensor.Event{}, err
		}

	drain:
		for {
			select {
			case ev := <-s.events:
				if ev.Kind == sensor.KindError {
					return ev, &protocol.AppFailError{Code: ev.Code}
				}
				if want(ev) {
					return ev, nil
				}
				if other != nil {
					other(ev)
				}
			default:
				break drain
			}
		}

		select {
		case <-ctx.Done():
			return sensor.Event{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func kindIs(kinds ...sensor.EventKind) func(sensor.Event) bool {
	return func(ev sensor.Event) bool {
		for _, k := range kinds {
			if ev.Kind == k {
				return true
			}
		}
		return false
	}
}

// request sends a request and waits for the first event of one of kinds.
func (s *session) request(ctx context.Context, send func() error, kinds ...sensor.EventKind) (sensor.Event, error) {
	if err := send(); err != nil {
		return sensor.Event{}, err
	}
	return s.await(ctx, kindIs(kinds...), nil)
}
