package cliconfig

import "os"

// EnvSongLists overrides song_lists from the config file.
const EnvSongLists = "SONGZA_SONG_LISTS"

// SongListsPinned reports whether song lists come from a flag or the
// environment, which take precedence over the config file.
func SongListsPinned(changed map[string]bool) bool {
	return changed["song-lists"] || os.Getenv(EnvSongLists) != ""
}

// ApplyEnvConfig applies configuration from environment variables (SONGZA_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen-addr", os.Getenv("SONGZA_LISTEN_ADDR"), &cfg.ListenAddr)
	s.setString("endpoint-url", os.Getenv("SONGZA_ENDPOINT_URL"), &cfg.EndpointURL)
	s.setString("host-url", os.Getenv("SONGZA_HOST_URL"), &cfg.HostURL)
	s.setString("feed-base-url", os.Getenv("SONGZA_FEED_BASE_URL"), &cfg.FeedBaseURL)
	s.setString("log-level", os.Getenv("SONGZA_LOG_LEVEL"), &cfg.LogLevel)
	s.setStringsFromString("song-lists", os.Getenv(EnvSongLists), &cfg.SongLists)

	if err := s.setDuration("http-timeout", os.Getenv("SONGZA_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("host-timeout", os.Getenv("SONGZA_HOST_TIMEOUT"), &cfg.HostTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-grace", os.Getenv("SONGZA_SHUTDOWN_GRACE"), &cfg.ShutdownGrace); err != nil {
		return err
	}
	if err := s.setDuration("stop-timeout", os.Getenv("SONGZA_STOP_TIMEOUT"), &cfg.StopTimeout); err != nil {
		return err
	}

	if err := s.setIntFromString("max-workers", os.Getenv("SONGZA_MAX_WORKERS"), &cfg.MaxWorkers); err != nil {
		return err
	}
	if err := s.setIntFromString("rate-burst", os.Getenv("SONGZA_RATE_BURST"), &cfg.RateBurst); err != nil {
		return err
	}
	if err := s.setInt64FromString("max-feed-bytes", os.Getenv("SONGZA_MAX_FEED_BYTES"), &cfg.MaxFeedBytes); err != nil {
		return err
	}
	if err := s.setFloatFromString("rate-limit", os.Getenv("SONGZA_RATE_LIMIT"), &cfg.RateLimit); err != nil {
		return err
	}

	s.setBoolFromString("metrics", os.Getenv("SONGZA_METRICS"), &cfg.Metrics)

	return nil
}
