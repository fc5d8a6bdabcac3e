package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/escherba/phraser/internal/api"
	"github.com/escherba/phraser/internal/config"
	"github.com/escherba/phraser/internal/engine"
	"github.com/escherba/phraser/internal/listener"
	"github.com/escherba/phraser/internal/storage"
)

func Run(cfg config.Config) {
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loaders := storage.MultiLoader{storage.NewFileStore(cfg.Phrases.Files)}

	// Storage
	var store *storage.Store
	if cfg.Postgres.Enabled {
		var err error
		store, err = storage.New(rootCtx, cfg)
		if err != nil {
			log.Fatal().Err(err).Str("dsn", cfg.DSNRedacted()).Msg("init storage")
		}
		defer store.Close()
		loaders = append(loaders, store)
	}

	// Engine
	eng := engine.NewEngine()
	if err := eng.BuildSnapshot(rootCtx, loaders); err != nil {
		log.Fatal().Err(err).Msg("initial snapshot build")
	}

	srv := NewHTTPServer(cfg, eng)

	// Listener (LISTEN/NOTIFY)
	if store != nil {
		go listener.ListenAndRefresh(rootCtx, store, eng, loaders, cfg.Listener.Channel, cfg.Backoff())
	}

	// Server goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server crashed")
		}
	}()

	// Wait for signal; SIGHUP reloads phrase configs
	waitForSignal(rootCtx, eng, loaders)
	log.Info().Msg("shutdown...")

	// Graceful shutdown
	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	cancel() // stop background goroutines
	_ = srv.Shutdown(shCtx)
}

// NewHTTPServer wires the API router for eng with the configured defaults.
func NewHTTPServer(cfg config.Config, eng *engine.Engine) *http.Server {
	h := api.NewAnalyzeHandler(eng, cfg.Analysis)
	return &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Router(h),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func waitForSignal(ctx context.Context, eng *engine.Engine, loader storage.Loader) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(c)
	for sig := range c {
		if sig != syscall.SIGHUP {
			return
		}
		Reload(ctx, eng, loader)
	}
}

// Reload rebuilds the snapshot, keeping the old one if the new configs are bad.
func Reload(ctx context.Context, eng *engine.Engine, loader storage.Loader) {
	log.Info().Msg("reloading phrase configs")
	if err := eng.BuildSnapshot(ctx, loader); err != nil {
		log.Error().Err(err).Msg("reload failed; keeping previous snapshot")
	}
}
