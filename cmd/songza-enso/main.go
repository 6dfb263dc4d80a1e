package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/app"
	"github.com/jeffreymorganio/songza-commands-for-enso/internal/cliconfig"
	"github.com/jeffreymorganio/songza-commands-for-enso/pkg/log"
	"github.com/jeffreymorganio/songza-commands-for-enso/plugins/configwatcher"
)

const helpDescription = `
Songza commands for the Enso command host.

Registers two commands with a running host:
  - "songza list {song list}" inserts a Songza song list as an HTML list.
  - "songza playlist" inserts the playlist of the username under the selection.

Feeds are fetched in the background; progress is reported through host messages.
Configure via file, env (SONGZA_*), or flags.
`

var exampleUsage = strings.TrimSpace(`
  songza-enso --host-url http://127.0.0.1:11374
  songza-enso --config $HOME/.songza-enso/config.toml --song-lists top,featured,indie
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	bootLog, _ := cliconfig.NewLogger("info")

	root := &cobra.Command{
		Use:           "songza-enso",
		Short:         "Songza song lists and playlists for the Enso command host",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Environment overrides the file but not explicit flags.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := cliconfig.NewLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			logger.Info("configuration", log.Any("config", cfg), log.String("config_file", cfgFile))

			svc, err := app.New(cfg.AppConfig(),
				app.WithLogger(logger),
				configwatcher.WithConfigWatcher(configwatcher.Config{
					Path:   cfgFile,
					Pinned: cliconfig.SongListsPinned(changed),
				}),
			)
			if err != nil {
				return fmt.Errorf("create service: %w", err)
			}

			// Setup signal handling for graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := svc.Start(ctx); err != nil {
				return fmt.Errorf("start service: %w", err)
			}
			logger.Info("commands registered", log.String("endpoint", svc.EndpointURL()))

			sig := <-sigCh
			logger.Info("received signal, stopping...", log.String("signal", sig.String()))

			// Stop gets its own budget: grace for workers plus the endpoint timeout.
			stopCtx, stopCancel := context.WithTimeout(context.Background(),
				2*cfg.ShutdownGrace+cfg.StopTimeout+cfg.HostTimeout)
			defer stopCancel()

			if err := svc.Stop(stopCtx); err != nil {
				return fmt.Errorf("stop service: %w", err)
			}
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.songza-enso/config.toml)")
	root.Flags().StringVar(&cfg.ListenAddr, "listen-addr", cfg.ListenAddr, "address of the command endpoint")
	root.Flags().StringVar(&cfg.EndpointURL, "endpoint-url", cfg.EndpointURL, "endpoint URL announced to the host (default: derived from listen address)")
	root.Flags().StringVar(&cfg.HostURL, "host-url", cfg.HostURL, "XML-RPC URL of the Enso host")
	root.Flags().StringVar(&cfg.FeedBaseURL, "feed-base-url", cfg.FeedBaseURL, "Songza API root")
	if err := root.Flags().MarkHidden("feed-base-url"); err != nil {
		bootLog.Info("failed to hide feed-base-url flag", log.Err(err))
	}
	root.Flags().StringSliceVar(&cfg.SongLists, "song-lists", cfg.SongLists, "song lists offered to the host")

	root.Flags().DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "feed fetch timeout")
	root.Flags().DurationVar(&cfg.HostTimeout, "host-timeout", cfg.HostTimeout, "timeout of a single host call")
	root.Flags().DurationVar(&cfg.ShutdownGrace, "shutdown-grace", cfg.ShutdownGrace, "time running commands get to finish on stop")
	root.Flags().DurationVar(&cfg.StopTimeout, "stop-timeout", cfg.StopTimeout, "endpoint shutdown timeout")

	root.Flags().IntVar(&cfg.MaxWorkers, "max-workers", cfg.MaxWorkers, "maximum concurrently running commands")
	root.Flags().Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "inbound calls per second (0 disables)")
	root.Flags().IntVar(&cfg.RateBurst, "rate-burst", cfg.RateBurst, "inbound call burst")
	root.Flags().Int64Var(&cfg.MaxFeedBytes, "max-feed-bytes", cfg.MaxFeedBytes, "maximum feed body size")

	root.Flags().BoolVar(&cfg.Metrics, "metrics", cfg.Metrics, "serve Prometheus metrics at /metrics")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := root.Execute(); err != nil {
		bootLog.Error("songza-enso", log.Err(err))
		os.Exit(1)
	}
}
