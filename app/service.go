package app

import (
	"context"
	"fmt"
	"time"

	"github.com/openbar/barbot/api"
	"github.com/openbar/barbot/catalog"
	"github.com/openbar/barbot/config"
	"github.com/openbar/barbot/core/bartender"
	coremetrics "github.com/openbar/barbot/core/metrics"
	"github.com/openbar/barbot/core/model"
	"github.com/openbar/barbot/core/monitoring"
	"github.com/openbar/barbot/core/turret"
	"github.com/openbar/barbot/infra/gpio"
	"github.com/openbar/barbot/infra/logger"
	"github.com/openbar/barbot/infra/metrics"
	inframon "github.com/openbar/barbot/infra/monitoring"
	"github.com/openbar/barbot/infra/telemetry"
	"github.com/openbar/barbot/internal/eventbus"
)

// Service orchestrates the turret controller, the configuration store and
// the HTTP API.
type Service struct {
	Store      *config.Store
	Controller *turret.Controller
	API        *api.Server

	cfg       *config.Config
	bus       *eventbus.Bus
	sink      coremetrics.MetricsSink
	publisher *telemetry.Publisher
	log       logger.Logger
}

// New builds a Service from the configuration file. The store keeps the path
// so bottle-configuration edits made over the API persist to the same file.
func New(cfgPath string) (*Service, error) {
	store, err := config.NewStore(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithStore(store)
}

// NewWithStore builds a Service around an existing configuration store.
func NewWithStore(store *config.Store) (*Service, error) {
	cfg := store.Config()
	logg := logger.New("service")

	monitor, err := inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	monitoring.Init(monitor)

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.Influx.Enabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics.Influx, logg))
	}
	var sink coremetrics.MetricsSink
	switch len(sinks) {
	case 0:
		sink = coremetrics.NopSink{}
	case 1:
		sink = sinks[0]
	default:
		sink = metrics.NewMultiSink(sinks...)
	}

	var drv turret.Driver
	if cfg.Hardware.Simulated {
		logg.Infof("hardware simulated, pin writes are recorded only")
		drv = gpio.NewRecorder()
	} else {
		drv = gpio.NewSysfsDriver(logger.New("gpio"))
	}

	bus := eventbus.New()
	ctrl, err := turret.New(drv, store.Snapshot().Pins, cfg.Motion,
		turret.WithLogger(logger.New("turret")),
		turret.WithBus(bus),
	)
	if err != nil {
		return nil, fmt.Errorf("controller: %w", err)
	}

	recipes, err := catalog.Load(cfg.Catalog.Path, logger.New("catalog"))
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	logg.Infof("catalog loaded: %d recipes from %s", len(recipes), cfg.Catalog.Path)

	bar, err := bartender.New(ctrl, logger.New("bartender"))
	if err != nil {
		return nil, fmt.Errorf("bartender: %w", err)
	}

	srv := api.NewServer(store, func() []model.Recipe { return recipes }, ctrl, bar, sink, logger.New("api"))

	svc := &Service{
		Store:      store,
		Controller: ctrl,
		API:        srv,
		cfg:        cfg,
		bus:        bus,
		sink:       sink,
		log:        logg,
	}
	if cfg.Telemetry.Enabled() {
		pub, err := telemetry.NewPublisher(cfg.Telemetry, logger.New("telemetry"))
		if err != nil {
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

// Run starts the background consumers and serves the API until the context
// is cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.publisher != nil {
		s.publisher.Forward(ctx, s.bus)
	}
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.cfg.Hardware.HomeOnStart {
		if err := s.Controller.Home(s.Store.Snapshot().SafeMode); err != nil {
			return fmt.Errorf("home on start: %w", err)
		}
	}
	return s.API.Start(ctx, s.cfg.API.Addr)
}

// Close releases the hardware and flushes pending telemetry.
func (s *Service) Close() error {
	err := s.Controller.Close()
	if s.publisher != nil {
		s.publisher.Close()
	}
	s.bus.Close()
	monitoring.Flush(2 * time.Second)
	return err
}
