// Package app assembles the price cache, the window engine and the HTTP
// API from the configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/nexthour/api"
	graphapi "github.com/kilianp07/nexthour/api/graph"
	pricesapi "github.com/kilianp07/nexthour/api/prices"
	"github.com/kilianp07/nexthour/api/queries"
	"github.com/kilianp07/nexthour/auth"
	"github.com/kilianp07/nexthour/config"
	"github.com/kilianp07/nexthour/connectors"
	"github.com/kilianp07/nexthour/connectors/clients/elprisen"
	"github.com/kilianp07/nexthour/connectors/clients/static"
	"github.com/kilianp07/nexthour/connectors/factory"
	"github.com/kilianp07/nexthour/core/graph"
	coremetrics "github.com/kilianp07/nexthour/core/metrics"
	coremon "github.com/kilianp07/nexthour/core/monitoring"
	"github.com/kilianp07/nexthour/core/pricecache"
	"github.com/kilianp07/nexthour/core/pricing"
	"github.com/kilianp07/nexthour/core/warmup"
	"github.com/kilianp07/nexthour/infra/logger"
	"github.com/kilianp07/nexthour/infra/metrics"
	"github.com/kilianp07/nexthour/infra/monitoring"
	"github.com/kilianp07/nexthour/infra/mqtt"
	"github.com/kilianp07/nexthour/infra/querylog"
	"github.com/kilianp07/nexthour/internal/eventbus"
	"github.com/kilianp07/nexthour/pkg/clock"
)

// Service holds the wired components of a running instance.
type Service struct {
	Cache   *pricecache.Cache
	Engine  *pricing.Engine
	Graph   *graph.Service
	Handler http.Handler

	cfg    *config.Config
	bus    *eventbus.Bus
	sink   coremetrics.MetricsSink
	store  querylog.Store
	warmer *warmup.Warmer
	log    logger.Logger
}

// Core is the minimal set of components answering window requests.
type Core struct {
	Cache  *pricecache.Cache
	Engine *pricing.Engine
}

// NewCore builds the price client, cache and engine described by cfg.
// Cache events are published on bus when it is not nil.
func NewCore(cfg *config.Config, bus eventbus.EventBus, clk clock.Clock) (*Core, error) {
	if clk == nil {
		clk = clock.New()
	}
	client, err := newPriceClient(cfg.Prices)
	if err != nil {
		return nil, fmt.Errorf("price client: %w", err)
	}
	opts := []pricecache.Option{
		pricecache.WithClock(clk),
		pricecache.WithLocation(cfg.Prices.Loc()),
		pricecache.WithLogger(logger.New("pricecache")),
	}
	if bus != nil {
		opts = append(opts, pricecache.WithEventBus(bus))
	}
	cache := pricecache.New(client, opts...)
	engine := pricing.NewEngine(cache, clk, logger.New("pricing"))
	return &Core{Cache: cache, Engine: engine}, nil
}

func newPriceClient(cfg config.PricesConfig) (connectors.PriceClient, error) {
	var opts []connectors.Option
	switch cfg.Source {
	case factory.IDStatic:
		opts = append(opts, static.WithPath(cfg.StaticPath), static.WithLocation(cfg.Loc()))
	default:
		opts = append(opts,
			elprisen.WithBaseURL(cfg.BaseURL),
			elprisen.WithTimeout(cfg.Timeout()),
			elprisen.WithLogger(logger.New("elprisen")),
		)
		if cfg.Auth.Enabled() {
			opts = append(opts, elprisen.WithHTTPClient(auth.NewClientCred(cfg.Auth).HTTPClient(cfg.Timeout())))
		}
	}
	return factory.NewPriceClient(cfg.Source, opts...)
}

// New wires every component from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return nil, err
	}
	log := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		log.Warnf("sentry disabled: %v", err)
	} else {
		coremon.Init(mon)
	}

	bus := eventbus.New(eventbus.WithBuffer(64))
	core, err := NewCore(cfg, bus, nil)
	if err != nil {
		return nil, err
	}

	sink, err := newSink(cfg)
	if err != nil {
		return nil, err
	}

	store, err := querylog.Open(cfg.QueryLog)
	if err != nil {
		closeSink(sink)
		return nil, fmt.Errorf("query log: %w", err)
	}

	svc := &Service{
		Cache:  core.Cache,
		Engine: core.Engine,
		cfg:    cfg,
		bus:    bus,
		sink:   sink,
		store:  store,
		log:    log,
	}

	if cfg.Graph.EdgesPath != "" {
		g, err := graph.LoadFile(cfg.Graph.EdgesPath, cfg.Graph.Blacklist)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("graph: %w", err)
		}
		log.Infof("graph loaded: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
		svc.Graph = graph.NewService(g, cfg.Graph.CacheSize, cfg.Graph.CacheTTL(), logger.New("graph"))
	}

	if cfg.Warmup.Enabled {
		partitions := cfg.Warmup.Partitions
		if len(partitions) == 0 && cfg.Prices.DefaultGLN != "" {
			partitions = []string{cfg.Prices.DefaultGLN}
		}
		w, err := warmup.New(core.Cache, warmup.Config{
			Schedules:  cfg.Warmup.Schedules,
			Partitions: partitions,
			Location:   cfg.Prices.Loc(),
			Timeout:    cfg.Server.RequestTimeout(),
		}, logger.New("warmup"))
		if err != nil {
			_ = svc.Close()
			return nil, err
		}
		svc.warmer = w
	}

	svc.Handler = svc.router()
	return svc, nil
}

func newSink(cfg *config.Config) (coremetrics.MetricsSink, error) {
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	if cfg.MQTT.Broker == "" {
		return sink, nil
	}
	pub, err := mqtt.NewPublisher(cfg.MQTT)
	if err != nil {
		closeSink(sink)
		return nil, fmt.Errorf("mqtt publisher: %w", err)
	}
	return coremetrics.NewMultiSink(sink, pub), nil
}

func closeSink(sink coremetrics.MetricsSink) {
	if c, ok := sink.(interface{ Close() }); ok {
		c.Close()
	}
}

func (s *Service) router() http.Handler {
	zl := logger.NewZerologLogger("http").Zerolog()
	mounts := []api.Mounter{
		pricesapi.NewHandler(s.Engine, s.Cache, pricesapi.Config{
			DefaultPartition: s.cfg.Prices.DefaultGLN,
			Location:         s.cfg.Prices.Loc(),
		},
			pricesapi.WithQueryLog(s.store),
			pricesapi.WithEventBus(s.bus),
			pricesapi.WithLogger(logger.New("api")),
		),
		queries.Routes{Store: s.store, Log: logger.New("api")},
	}
	if s.Graph != nil {
		mounts = append(mounts, graphapi.NewHandler(s.Graph, logger.New("api")))
	}
	return api.NewRouter(zl, api.RouterConfig{
		RequestTimeout: s.cfg.Server.RequestTimeout(),
		Gatherer:       prometheus.DefaultGatherer,
	}, mounts...)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.warmer != nil {
		s.warmer.Start(ctx)
		go s.warmer.RunNow(ctx)
		defer s.warmer.Stop()
	}

	srv := &http.Server{
		Addr:         s.cfg.Server.Address,
		Handler:      s.Handler,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout())
	defer cancel()
	s.log.Infof("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if n := s.bus.Dropped(); n > 0 {
		s.log.Warnf("event bus dropped %d deliveries", n)
	}
	s.bus.Close()
	closeSink(s.sink)
	coremon.Flush(2 * time.Second)
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
