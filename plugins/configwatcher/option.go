package configwatcher

import "github.com/jeffreymorganio/songza-commands-for-enso/internal/app"

// WithConfigWatcher returns an app Option that enables config file watching.
//
// Usage:
//
//	svc, err := app.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Path:          "/etc/songza-enso/config.toml",
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) app.Option {
	return app.WithPlugin(New(cfg))
}

// WithDefaultConfigWatcher watches the default config path.
func WithDefaultConfigWatcher() app.Option {
	return WithConfigWatcher(DefaultConfig())
}
