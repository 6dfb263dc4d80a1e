package app

import (
	"context"
	"net/http"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/metrics"
	"github.com/jeffreymorganio/songza-commands-for-enso/internal/ports"
	"github.com/jeffreymorganio/songza-commands-for-enso/pkg/lifecycle"
	"github.com/jeffreymorganio/songza-commands-for-enso/pkg/log"
)

// SongListSetter replaces the song lists the host may pass to the list
// command.
type SongListSetter interface {
	SetSongLists(ctx context.Context, lists []string) error
}

// PluginConfig is handed to every plugin on Initialize.
type PluginConfig struct {
	EndpointURL string
	SongLists   []string
	Setter      SongListSetter
	Logger      log.Logger
}

// Plugin extends a Service. Plugins are initialized in registration order
// after the commands are registered and shut down in reverse order.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// Option configures optional behavior of a Service.
type Option func(*options)

type options struct {
	httpClient    ports.HTTPClient
	hostTransport http.RoundTripper
	logger        log.Logger
	emitter       lifecycle.EventEmitter
	metrics       *metrics.Metrics
	plugins       []Plugin
}

// WithHTTPClient sets the client used for feed fetches.
// If not provided, an *http.Client with the configured timeout is used.
func WithHTTPClient(client ports.HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithHostTransport sets the transport used for calls to the host.
func WithHostTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.hostTransport = rt
	}
}

// WithLogger sets the logger. If not provided, nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventEmitter receives lifecycle state changes.
func WithEventEmitter(emitter lifecycle.EventEmitter) Option {
	return func(o *options) {
		o.emitter = emitter
	}
}

// WithMetrics overrides the metrics set created when Config.Metrics is true.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, p)
	}
}
