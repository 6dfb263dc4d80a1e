package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ListenAddr    string   `toml:"listen_addr"`
	EndpointURL   string   `toml:"endpoint_url"`
	HostURL       string   `toml:"host_url"`
	FeedBaseURL   string   `toml:"feed_base_url"`
	SongLists     []string `toml:"song_lists"`
	HTTPTimeout   string   `toml:"http_timeout"`
	HostTimeout   string   `toml:"host_timeout"`
	MaxWorkers    int      `toml:"max_workers"`
	ShutdownGrace string   `toml:"shutdown_grace"`
	StopTimeout   string   `toml:"stop_timeout"`
	RateLimit     *float64 `toml:"rate_limit"`
	RateBurst     int      `toml:"rate_burst"`
	MaxFeedBytes  int64    `toml:"max_feed_bytes"`
	Metrics       *bool    `toml:"metrics"`
	LogLevel      string   `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.songza-enso/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".songza-enso", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen-addr", fc.ListenAddr, &cfg.ListenAddr)
	s.setString("endpoint-url", fc.EndpointURL, &cfg.EndpointURL)
	s.setString("host-url", fc.HostURL, &cfg.HostURL)
	s.setString("feed-base-url", fc.FeedBaseURL, &cfg.FeedBaseURL)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setStrings("song-lists", fc.SongLists, &cfg.SongLists)

	if err := s.setDuration("http-timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("host-timeout", fc.HostTimeout, &cfg.HostTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-grace", fc.ShutdownGrace, &cfg.ShutdownGrace); err != nil {
		return err
	}
	if err := s.setDuration("stop-timeout", fc.StopTimeout, &cfg.StopTimeout); err != nil {
		return err
	}

	s.setInt("max-workers", fc.MaxWorkers, &cfg.MaxWorkers)
	s.setInt("rate-burst", fc.RateBurst, &cfg.RateBurst)
	s.setInt64("max-feed-bytes", fc.MaxFeedBytes, &cfg.MaxFeedBytes)
	s.setFloat("rate-limit", fc.RateLimit, &cfg.RateLimit)
	s.setBool("metrics", fc.Metrics, &cfg.Metrics)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
