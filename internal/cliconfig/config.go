package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/app"
	"github.com/jeffreymorganio/songza-commands-for-enso/pkg/log"
)

// Config holds CLI configuration for songza-enso.
type Config struct {
	ListenAddr  string
	EndpointURL string
	HostURL     string
	FeedBaseURL string
	SongLists   []string

	HTTPTimeout time.Duration
	HostTimeout time.Duration

	MaxWorkers    int
	ShutdownGrace time.Duration
	StopTimeout   time.Duration

	RateLimit    float64
	RateBurst    int
	MaxFeedBytes int64

	Metrics  bool
	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ListenAddr:    app.DefaultListenAddr,
		HostURL:       app.DefaultHostURL,
		FeedBaseURL:   app.DefaultFeedBaseURL,
		SongLists:     append([]string(nil), app.DefaultSongLists...),
		HTTPTimeout:   app.DefaultHTTPTimeout,
		HostTimeout:   app.DefaultHostTimeout,
		MaxWorkers:    app.DefaultMaxWorkers,
		ShutdownGrace: app.DefaultShutdownGrace,
		StopTimeout:   app.DefaultStopTimeout,
		RateLimit:     app.DefaultRateLimit,
		RateBurst:     app.DefaultRateBurst,
		MaxFeedBytes:  app.DefaultMaxFeedBytes,
		Metrics:       true,
		LogLevel:      "info",
	}
}

// Validate checks the configuration for errors and normalizes derived values.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}

	c.HostURL = strings.TrimRight(c.HostURL, "/")
	c.FeedBaseURL = strings.TrimRight(c.FeedBaseURL, "/")
	c.EndpointURL = strings.TrimRight(c.EndpointURL, "/")

	lists := make([]string, 0, len(c.SongLists))
	for _, l := range c.SongLists {
		if l = strings.TrimSpace(l); l != "" {
			lists = append(lists, l)
		}
	}
	c.SongLists = lists

	return c.AppConfig().Validate()
}

// AppConfig converts the CLI configuration to service configuration.
func (c Config) AppConfig() app.Config {
	return app.Config{
		ListenAddr:    c.ListenAddr,
		EndpointURL:   c.EndpointURL,
		HostURL:       c.HostURL,
		FeedBaseURL:   c.FeedBaseURL,
		SongLists:     append([]string(nil), c.SongLists...),
		HTTPTimeout:   c.HTTPTimeout,
		HostTimeout:   c.HostTimeout,
		MaxWorkers:    c.MaxWorkers,
		ShutdownGrace: c.ShutdownGrace,
		StopTimeout:   c.StopTimeout,
		RateLimit:     c.RateLimit,
		RateBurst:     c.RateBurst,
		MaxFeedBytes:  c.MaxFeedBytes,
		Metrics:       c.Metrics,
	}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings replaces a list if value is non-nil and flag not changed.
// An empty, non-nil list is applied.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = append(make([]string, 0, len(value)), value...)
}

// setStringsFromString splits a comma separated list.
func (s *configSetter) setStringsFromString(flag, value string, dst *[]string) {
	if value == "" || s.changed[flag] {
		return
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt64 sets an int64 value if positive and flag not changed.
func (s *configSetter) setInt64(flag string, value int64, dst *int64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value from a pointer if not nil and flag not changed.
// Zero is applied, so rate limiting can be disabled from a file.
func (s *configSetter) setFloat(flag string, value *float64, dst *float64) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setInt64FromString parses a string to int64 and sets the destination if valid.
func (s *configSetter) setInt64FromString(flag, value string, dst *int64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination.
// Zero is applied; negative values are left for Validate to reject.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
