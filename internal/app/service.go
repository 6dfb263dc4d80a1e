package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	httpadapter "github.com/jeffreymorganio/songza-commands-for-enso/internal/adapters/http"
	hostrpc "github.com/jeffreymorganio/songza-commands-for-enso/internal/adapters/xmlrpc"
	"github.com/jeffreymorganio/songza-commands-for-enso/internal/domain"
	"github.com/jeffreymorganio/songza-commands-for-enso/internal/metrics"
	"github.com/jeffreymorganio/songza-commands-for-enso/internal/xmlrpc"
	"github.com/jeffreymorganio/songza-commands-for-enso/pkg/lifecycle"
	"github.com/jeffreymorganio/songza-commands-for-enso/pkg/log"
)

// Service registers the Songza commands with the host, serves callCommand
// and runs the resulting workers.
type Service struct {
	cfg       Config
	opts      options
	logger    log.Logger
	lifecycle *lifecycle.DefaultManager
	metrics   *metrics.Metrics
	host      *hostrpc.HostClient
	worker    *Worker

	mu          sync.Mutex
	server      *xmlrpc.Server
	pool        *Pool
	dispatcher  *Dispatcher
	endpointURL string
	plugins     []Plugin

	listsMu   sync.Mutex
	songLists []string

	registration atomic.Pointer[Registration]
}

// New creates a Service in StateStopped. cfg is defaulted and validated.
func New(cfg Config, opts ...Option) (*Service, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewNoopLogger()
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	if o.metrics == nil && cfg.Metrics {
		o.metrics = metrics.New()
	}

	host := hostrpc.NewHostClient(cfg.HostURL, o.hostTransport, cfg.HostTimeout, o.logger)
	fetcher := httpadapter.NewFeedFetcher(o.httpClient, o.logger, o.metrics, cfg.MaxFeedBytes)

	return &Service{
		cfg:       cfg,
		opts:      o,
		logger:    o.logger,
		lifecycle: lifecycle.NewManager(o.logger, o.emitter),
		metrics:   o.metrics,
		host:      host,
		worker:    NewWorker(host, fetcher, FeedURLs{Base: cfg.FeedBaseURL}),
		songLists: append([]string(nil), cfg.SongLists...),
	}, nil
}

// Start opens the endpoint, registers both commands and initializes plugins.
// A failing step undoes the ones before it and leaves the service Crashed.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := s.lifecycle.TransitionTo(lifecycle.StateStarting, "Start() called"); err != nil {
		return err
	}

	pool := NewPool(s.cfg.MaxWorkers, s.lifecycle, s.metrics, s.logger)
	dispatcher := NewDispatcher(pool, s.worker, s.metrics, s.logger)

	server := xmlrpc.NewServer(s.cfg.ListenAddr, s.logger, xmlrpc.WithRateLimit(s.cfg.RateLimit, s.cfg.RateBurst))
	server.Register(CallCommandMethod, dispatcher.Handler())
	if s.metrics != nil {
		server.Handle("/metrics", s.metrics.Handler())
	}

	if err := server.Start(); err != nil {
		_ = pool.Shutdown(s.cfg.ShutdownGrace)
		s.crash("endpoint start failed", err)
		return err
	}

	endpoint := s.cfg.EndpointURL
	if endpoint == "" {
		endpoint = "http://" + server.Addr()
	}

	lists := s.SongLists()
	registration := NewRegistration(s.host, endpoint, s.logger)
	if err := registration.Register(ctx, domain.Commands(lists)); err != nil {
		s.stopServer(ctx, server)
		_ = pool.Shutdown(s.cfg.ShutdownGrace)
		s.crash("registration failed", err)
		return err
	}
	s.registration.Store(registration)

	pluginCfg := PluginConfig{
		EndpointURL: endpoint,
		SongLists:   lists,
		Setter:      s,
		Logger:      s.logger,
	}
	var started []Plugin
	for _, p := range s.opts.plugins {
		if err := p.Initialize(ctx, pluginCfg); err != nil {
			s.logger.Error("plugin initialization failed", log.String("plugin", p.Name()), log.Err(err))
			shutdownPlugins(ctx, started, s.logger)
			_ = registration.Unregister(ctx)
			s.registration.Store(nil)
			s.stopServer(ctx, server)
			_ = pool.Shutdown(s.cfg.ShutdownGrace)
			s.crash("plugin init failed: "+p.Name(), err)
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		s.logger.Info("plugin initialized", log.String("plugin", p.Name()))
		started = append(started, p)
	}

	s.server = server
	s.pool = pool
	s.dispatcher = dispatcher
	s.endpointURL = endpoint
	s.plugins = started

	return s.lifecycle.TransitionTo(lifecycle.StateRunning, "commands registered")
}

// Stop shuts plugins down, unregisters the commands, closes the endpoint and
// drains running workers. The service ends Stopped, or Crashed when any step
// failed; all failures are returned joined.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.lifecycle.CanStop() {
		s.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := s.lifecycle.TransitionTo(lifecycle.StateStopping, "Stop() called"); err != nil {
		s.mu.Unlock()
		return err
	}
	server, pool, plugins := s.server, s.pool, s.plugins
	s.server, s.pool, s.dispatcher, s.plugins = nil, nil, nil, nil
	s.mu.Unlock()

	var errs []error
	if err := shutdownPlugins(ctx, plugins, s.logger); err != nil {
		errs = append(errs, err)
	}
	if reg := s.registration.Swap(nil); reg != nil {
		if err := reg.Unregister(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.stopServer(ctx, server); err != nil {
		errs = append(errs, err)
	}
	if err := pool.Shutdown(s.cfg.ShutdownGrace); err != nil {
		errs = append(errs, err)
	}

	err := errors.Join(errs...)
	if err != nil {
		_ = s.lifecycle.TransitionTo(lifecycle.StateCrashed, err.Error())
		return err
	}
	_ = s.lifecycle.TransitionTo(lifecycle.StateStopped, "graceful shutdown")
	return nil
}

// Status returns the current lifecycle state.
func (s *Service) Status() lifecycle.State {
	return s.lifecycle.State()
}

// EndpointURL returns the URL registered with the host, or "" when not
// running.
func (s *Service) EndpointURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpointURL
}

// CallCommand dispatches like an inbound callCommand.
func (s *Service) CallCommand(name, postfix string) (bool, error) {
	s.mu.Lock()
	d := s.dispatcher
	s.mu.Unlock()
	if d == nil {
		return false, domain.ErrNotRunning
	}
	return d.CallCommand(name, postfix)
}

// SongLists returns the song lists currently offered.
func (s *Service) SongLists() []string {
	s.listsMu.Lock()
	defer s.listsMu.Unlock()
	return append([]string(nil), s.songLists...)
}

// SetSongLists replaces the valid arguments of the list command. While
// running the new set is pushed to the host; otherwise it applies from the
// next Start.
func (s *Service) SetSongLists(ctx context.Context, lists []string) error {
	s.listsMu.Lock()
	s.songLists = append([]string(nil), lists...)
	s.listsMu.Unlock()

	reg := s.registration.Load()
	if reg == nil {
		return nil
	}
	return reg.UpdateValidArguments(ctx, domain.SongListCommandName, lists)
}

func (s *Service) crash(reason string, err error) {
	s.logger.Error(reason, log.Err(err))
	_ = s.lifecycle.TransitionTo(lifecycle.StateCrashed, reason)
}

func (s *Service) stopServer(ctx context.Context, server *xmlrpc.Server) error {
	stopCtx, cancel := context.WithTimeout(ctx, s.cfg.StopTimeout)
	defer cancel()
	return server.Stop(stopCtx)
}

// shutdownPlugins shuts plugins down in reverse order.
func shutdownPlugins(ctx context.Context, plugins []Plugin, logger log.Logger) error {
	var errs []error
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			logger.Error("plugin shutdown failed", log.String("plugin", p.Name()), log.Err(err))
			errs = append(errs, fmt.Errorf("plugin %s: %w", p.Name(), err))
			continue
		}
		logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
	}
	return errors.Join(errs...)
}
