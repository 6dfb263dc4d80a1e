package configwatcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/app"
	"github.com/jeffreymorganio/songza-commands-for-enso/pkg/log"
)

type recordingSetter struct {
	mu    sync.Mutex
	calls [][]string
	fail  int
	ch    chan []string
}

func newRecordingSetter() *recordingSetter {
	return &recordingSetter{ch: make(chan []string, 16)}
}

func (s *recordingSetter) SetSongLists(ctx context.Context, lists []string) error {
	s.mu.Lock()
	s.calls = append(s.calls, lists)
	failing := s.fail > 0
	if failing {
		s.fail--
	}
	s.mu.Unlock()

	s.ch <- lists
	if failing {
		return errors.New("host unavailable")
	}
	return nil
}

func (s *recordingSetter) wait(t *testing.T) []string {
	t.Helper()
	select {
	case lists := <-s.ch:
		return lists
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for SetSongLists")
		return nil
	}
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func startPlugin(t *testing.T, path string, setter app.SongListSetter, initial []string) *Plugin {
	t.Helper()
	plugin := New(Config{
		Path:          path,
		RetryInterval: 20 * time.Millisecond,
		DebounceDelay: 10 * time.Millisecond,
	})

	err := plugin.Initialize(context.Background(), app.PluginConfig{
		SongLists: initial,
		Setter:    setter,
		Logger:    log.NewNoopLogger(),
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() {
		if err := plugin.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown failed: %v", err)
		}
	})
	return plugin
}

func TestPlugin_Name(t *testing.T) {
	if got := New(Config{}).Name(); got != "configwatcher" {
		t.Errorf("Name() = %q, want configwatcher", got)
	}
}

func TestPlugin_ReloadsChangedSongLists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, `song_lists = ["top", "featured"]`)

	setter := newRecordingSetter()
	startPlugin(t, path, setter, []string{"top", "featured"})

	writeConfig(t, path, `song_lists = ["top", " indie ", ""]`)

	got := setter.wait(t)
	if want := []string{"top", "indie"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SetSongLists(%v), want %v", got, want)
	}
}

func TestPlugin_IgnoresUnchangedSongLists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeConfig(t, path, `song_lists = ["top"]`)

	setter := newRecordingSetter()
	startPlugin(t, path, setter, []string{"top"})

	writeConfig(t, path, "song_lists = [\"top\"]\nmax_workers = 4\n")
	writeConfig(t, path, `max_workers = 8`)
	writeConfig(t, filepath.Join(dir, "other.toml"), `song_lists = ["indie"]`)

	select {
	case lists := <-setter.ch:
		t.Errorf("unexpected SetSongLists(%v)", lists)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestPlugin_RetriesFailedUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, `song_lists = ["top"]`)

	setter := newRecordingSetter()
	setter.fail = 2
	startPlugin(t, path, setter, []string{"top"})

	writeConfig(t, path, `song_lists = ["featured"]`)

	for i := 0; i < 3; i++ {
		if got := setter.wait(t); !reflect.DeepEqual(got, []string{"featured"}) {
			t.Fatalf("attempt %d: SetSongLists(%v), want [featured]", i, got)
		}
	}
}

func TestPlugin_InvalidTOMLKeepsWatching(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, `song_lists = ["top"]`)

	setter := newRecordingSetter()
	startPlugin(t, path, setter, []string{"top"})

	writeConfig(t, path, `song_lists = [`)
	time.Sleep(50 * time.Millisecond)
	writeConfig(t, path, `song_lists = ["indie"]`)

	if got := setter.wait(t); !reflect.DeepEqual(got, []string{"indie"}) {
		t.Errorf("SetSongLists(%v), want [indie]", got)
	}
}

func TestPlugin_Disabled(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "empty path", path: ""},
		{name: "missing directory", path: filepath.Join(t.TempDir(), "missing", "config.toml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plugin := New(Config{Path: tt.path})
			err := plugin.Initialize(context.Background(), app.PluginConfig{
				Setter: newRecordingSetter(),
				Logger: log.NewNoopLogger(),
			})
			if err != nil {
				t.Fatalf("Initialize() error = %v, want nil", err)
			}
			if err := plugin.Shutdown(context.Background()); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

func TestPlugin_PinnedSongListsIgnoreFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, `song_lists = ["top"]`)

	setter := newRecordingSetter()
	plugin := New(Config{
		Path:          path,
		Pinned:        true,
		DebounceDelay: 10 * time.Millisecond,
	})
	err := plugin.Initialize(context.Background(), app.PluginConfig{
		SongLists: []string{"indie"},
		Setter:    setter,
		Logger:    log.NewNoopLogger(),
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer plugin.Shutdown(context.Background())

	writeConfig(t, path, `song_lists = ["featured"]`)

	select {
	case lists := <-setter.ch:
		t.Errorf("unexpected SetSongLists(%v) with pinned song lists", lists)
	case <-time.After(200 * time.Millisecond):
	}
}
