// Package configwatcher reloads the song lists offered to the host when the
// config file changes.
package configwatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/app"
	"github.com/jeffreymorganio/songza-commands-for-enso/internal/cliconfig"
	"github.com/jeffreymorganio/songza-commands-for-enso/pkg/log"
)

// Plugin implements config watching functionality.
// It watches the directory of the config file and pushes a changed
// song_lists value to the service.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	path          string
	pinned        bool
	retryInterval time.Duration
	debounceDelay time.Duration

	// Runtime state
	setter   app.SongListSetter
	logger   log.Logger
	current  []string
	watcher  *fsnotify.Watcher
	reload   chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the TOML config file to watch. Empty disables the plugin.
	Path string

	// Pinned disables reloading when song lists were set by a flag or the
	// environment.
	Pinned bool

	// RetryInterval is the delay between retries when the update fails.
	// Default: 5 seconds
	RetryInterval time.Duration

	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config watching the default config path.
func DefaultConfig() Config {
	return Config{
		Path:          cliconfig.DefaultConfigPath(),
		RetryInterval: 5 * time.Second,
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 5 * time.Second
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}

	return &Plugin{
		path:          cfg.Path,
		pinned:        cfg.Pinned,
		retryInterval: cfg.RetryInterval,
		debounceDelay: cfg.DebounceDelay,
		reload:        make(chan struct{}, 1),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts watching the config file.
func (p *Plugin) Initialize(ctx context.Context, cfg app.PluginConfig) error {
	p.mu.Lock()
	p.setter = cfg.Setter
	p.logger = cfg.Logger
	if p.logger == nil {
		p.logger = log.NewNoopLogger()
	}
	p.current = normalize(cfg.SongLists)
	p.mu.Unlock()

	if p.pinned {
		p.logger.Info("config watcher disabled: song lists set by flag or environment")
		return nil
	}
	if p.path == "" || p.setter == nil {
		p.logger.Warn("config watcher disabled: no config file or setter")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(p.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		p.logger.Warn("config watcher disabled: cannot watch directory",
			log.String("dir", dir), log.Err(err))
		return nil
	}
	p.watcher = watcher

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher plugin initialized", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx)

	return nil
}

// Shutdown stops the config watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

// watchLoop handles file events and reloads.
func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()
	defer p.watcher.Close()

	name := filepath.Base(p.path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload(p.debounceDelay)

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher: watcher error", log.Err(err))

		case <-p.reload:
			p.reloadWithRetry(ctx)
		}
	}
}

func (p *Plugin) debounceReload(delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}

	p.debounce = time.AfterFunc(delay, func() {
		select {
		case p.reload <- struct{}{}:
		default:
		}
	})
}

// reloadWithRetry reads song_lists and pushes a changed set, retrying until
// success or context cancellation.
func (p *Plugin) reloadWithRetry(ctx context.Context) {
	fc, err := cliconfig.LoadFileConfig(p.path)
	if err != nil {
		p.logger.Warn("config watcher: read failed", log.String("path", p.path), log.Err(err))
		return
	}
	if fc.SongLists == nil {
		return
	}

	lists := normalize(fc.SongLists)

	p.mu.Lock()
	unchanged := slices.Equal(lists, p.current)
	p.mu.Unlock()
	if unchanged {
		p.logger.Debug("config watcher: song lists unchanged")
		return
	}

	retryCount := 0
	for {
		err := p.setter.SetSongLists(ctx, lists)
		if err == nil {
			p.mu.Lock()
			p.current = lists
			p.mu.Unlock()
			p.logger.Info("config watcher: song lists updated",
				log.Strings("song_lists", lists),
				log.Int("retries", retryCount))
			return
		}

		retryCount++
		p.logger.Error("config watcher: update failed", log.Err(err))

		select {
		case <-ctx.Done():
			p.logger.Info("config watcher: stopping retry due to context cancellation")
			return
		case <-time.After(p.retryInterval):
		}
	}
}

func normalize(lists []string) []string {
	out := make([]string, 0, len(lists))
	for _, l := range lists {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

var _ app.Plugin = (*Plugin)(nil)
