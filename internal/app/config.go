package app

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/domain"
)

// Default values for Config.
const (
	DefaultListenAddr    = "127.0.0.1:8620"
	DefaultHostURL       = "http://127.0.0.1:11374"
	DefaultHTTPTimeout   = 10 * time.Second
	DefaultHostTimeout   = 10 * time.Second
	DefaultShutdownGrace = 5 * time.Second
	DefaultStopTimeout   = time.Second
	DefaultRateLimit     = 20
	DefaultRateBurst     = 40
	DefaultMaxFeedBytes  = 4 << 20
)

// DefaultSongLists are the song lists offered to the host.
var DefaultSongLists = []string{"top", "featured"}

// Config contains the runtime settings of a Service.
type Config struct {
	// ListenAddr is where the command endpoint listens.
	ListenAddr string

	// EndpointURL is the URL announced to the host. Empty derives
	// http://<bound address>.
	EndpointURL string

	HostURL     string
	FeedBaseURL string
	SongLists   []string

	HTTPTimeout time.Duration
	HostTimeout time.Duration

	MaxWorkers    int
	ShutdownGrace time.Duration
	StopTimeout   time.Duration

	// RateLimit is inbound calls per second; 0 disables limiting.
	RateLimit float64
	RateBurst int

	MaxFeedBytes int64
	Metrics      bool
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() Config {
	cfg := Config{Metrics: true, RateLimit: DefaultRateLimit}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero fields. RateLimit and Metrics are left alone since
// their zero values are meaningful.
func (c *Config) SetDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.HostURL == "" {
		c.HostURL = DefaultHostURL
	}
	if c.FeedBaseURL == "" {
		c.FeedBaseURL = DefaultFeedBaseURL
	}
	if c.SongLists == nil {
		c.SongLists = append([]string(nil), DefaultSongLists...)
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.HostTimeout == 0 {
		c.HostTimeout = DefaultHostTimeout
	}
	if c.MaxWorkers == 0 {
		c.MaxWorkers = DefaultMaxWorkers
	}
	if c.ShutdownGrace == 0 {
		c.ShutdownGrace = DefaultShutdownGrace
	}
	if c.StopTimeout == 0 {
		c.StopTimeout = DefaultStopTimeout
	}
	if c.RateBurst == 0 {
		c.RateBurst = DefaultRateBurst
	}
	if c.MaxFeedBytes == 0 {
		c.MaxFeedBytes = DefaultMaxFeedBytes
	}
}

// Validate checks the configuration. Errors wrap domain.ErrInvalidConfig.
func (c Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return invalid("listen_addr %q: %v", c.ListenAddr, err)
	}
	if c.EndpointURL != "" {
		if err := validateHTTPURL(c.EndpointURL); err != nil {
			return invalid("endpoint_url: %v", err)
		}
	}
	if err := validateHTTPURL(c.HostURL); err != nil {
		return invalid("host_url: %v", err)
	}
	if err := validateHTTPURL(c.FeedBaseURL); err != nil {
		return invalid("feed_base_url: %v", err)
	}
	for _, l := range c.SongLists {
		if strings.TrimSpace(l) == "" {
			return invalid("song_lists: empty entry")
		}
	}
	switch {
	case c.HTTPTimeout < 0:
		return invalid("http_timeout must be positive")
	case c.HostTimeout < 0:
		return invalid("host_timeout must be positive")
	case c.MaxWorkers < 0:
		return invalid("max_workers must be positive")
	case c.ShutdownGrace < 0:
		return invalid("shutdown_grace must be positive")
	case c.StopTimeout < 0:
		return invalid("stop_timeout must be positive")
	case c.RateLimit < 0:
		return invalid("rate_limit must not be negative")
	case c.RateBurst < 0:
		return invalid("rate_burst must be positive")
	case c.MaxFeedBytes < 0:
		return invalid("max_feed_bytes must be positive")
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q: missing host", raw)
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, fmt.Sprintf(format, args...))
}
