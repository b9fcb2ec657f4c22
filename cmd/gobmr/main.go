package main

import (
	"flag"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gobmr/gobmr/db"
	"github.com/gobmr/gobmr/internal/api"
	"github.com/gobmr/gobmr/internal/bmr"
	"github.com/gobmr/gobmr/internal/config"
	"github.com/gobmr/gobmr/internal/datadog"
	"github.com/gobmr/gobmr/internal/env"
	"github.com/gobmr/gobmr/internal/logging"
	"github.com/gobmr/gobmr/internal/mqtt"
	"github.com/gobmr/gobmr/internal/notifications"
	"github.com/gobmr/gobmr/internal/poller"
	"github.com/gobmr/gobmr/internal/store"
	"github.com/gobmr/gobmr/system/shutdown"
	"github.com/gobmr/gobmr/system/startup"
)

// cacheMetrics exports client cache effectiveness counters.
type cacheMetrics struct{}

func (cacheMetrics) CacheHit(name string)  { datadog.Count("cache.hits", 1, "cache:"+name) }
func (cacheMetrics) CacheMiss(name string) { datadog.Count("cache.misses", 1, "cache:"+name) }

func main() {
	installService := flag.Bool("install-service", false, "Write a systemd unit for this binary and exit")

	cfg := config.Load()
	env.Cfg = &cfg
	logging.Init(cfg.LogLevel, cfg.LogFile)

	log.Info().
		Str("base_url", cfg.BaseURL).
		Str("listen_addr", cfg.ListenAddr).
		Int("poll_interval_s", cfg.PollIntervalSeconds).
		Msg("Starting gobmr")

	if *installService {
		if err := startup.InstallService(cfg.ConfigFile); err != nil {
			log.Fatal().Err(err).Msg("Failed to install systemd unit")
		}
		log.Info().Msg("Systemd unit installed")
		return
	}

	datadog.InitMetrics()
	notifications.Init()

	opts := bmr.Options{
		BaseURL:       cfg.BaseURL,
		Username:      cfg.Username,
		Password:      cfg.Password,
		Timeout:       time.Duration(cfg.TimeoutSeconds) * time.Second,
		CacheObserver: cacheMetrics{},
		Journal: func(kind string, circuitID int, value float64, ok bool) {
			datadog.Count("commands.sent", 1, "kind:"+kind)
		},
	}

	switch {
	case cfg.Database != "":
		database, err := db.Open(cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Str("database", cfg.Database).Msg("Failed to open database")
		}
		shutdown.Register("database", func() { database.Close() })

		opts.Store = db.NewStore(database)
		opts.Journal = func(kind string, circuitID int, value float64, ok bool) {
			datadog.Count("commands.sent", 1, "kind:"+kind)
			cmd := db.Command{
				IssuedAt:  time.Now(),
				CircuitID: circuitID,
				Kind:      kind,
				Value:     value,
				OK:        ok,
			}
			if err := db.RecordCommand(database, cmd); err != nil {
				log.Warn().Err(err).Str("kind", kind).Msg("Could not journal command")
			}
		}
		log.Info().Str("database", cfg.Database).Msg("Using sqlite override store and command journal")

	case cfg.OverridesFile != "":
		opts.Store = store.NewFileStore(cfg.OverridesFile)
		log.Info().Str("file", cfg.OverridesFile).Msg("Using file override store")

	default:
		log.Warn().Msg("No override store configured, overrides will not survive restarts")
	}

	client, err := bmr.New(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create device client")
	}

	p := poller.New(client,
		time.Duration(cfg.PollIntervalSeconds)*time.Second,
		time.Duration(cfg.StaleAfterSeconds)*time.Second)

	if notifications.Enabled() {
		watcher := notifications.NewWatcher(cfg.FailureStreakNotify)
		p.OnSnapshot(watcher.ObserveSnapshot)
		p.OnFailure(watcher.ObserveFailure)
	}

	if cfg.MQTT.Broker != "" {
		publisher := mqtt.NewPublisher(cfg.MQTT)
		shutdown.Register("mqtt", publisher.Close)
		p.OnSnapshot(publisher.Publish)
	}

	p.Start()
	shutdown.Register("poller", p.Stop)

	server := api.NewServer(p, client)
	go func() {
		if err := server.Start(cfg.ListenAddr); err != nil {
			shutdown.ShutdownWithError(err, "API server failed")
		}
	}()

	shutdown.WaitForSignal()
	shutdown.Run()
}
