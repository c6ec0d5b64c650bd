// Package main implements the HTTP server that serves a Sphinx site with
// phrase search and highlighting.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	apihttp "github.com/wfahren/Enhanced-Sphinx-Search/internal/http"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/filter"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/libs/config"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/libs/obs"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/db"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/search"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/streamlite"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init logger
	obs.InitLogger(cfg.LogLevel)
	logger := obs.Logger("api")

	// Initialize state storage
	store, err := initStore(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize store")
	}
	defer func() { _ = store.Close() }()
	store = db.Instrument(store, obs.StorageHook(obs.Logger("storage")))

	// The engine becomes available once the site is indexed
	holder := search.NewHolder(nil)
	site := streamlite.NewSiteConnector(streamlite.SiteConfig{
		Dir:    cfg.SiteDir,
		Suffix: cfg.FileSuffix,
	}, holder, obs.Logger("site"))

	go func() {
		if err := site.Rebuild(); err != nil {
			logger.Error().Err(err).Msg("failed to index site")
		}
	}()

	if cfg.WatchSite {
		if err := site.Start(); err != nil {
			logger.Fatal().Err(err).Msg("failed to watch site")
		}
		defer func() { _ = site.Stop() }()
	}

	service := filter.NewService(holder, newFetcher(cfg), filter.Options{
		ContentRoot: cfg.ContentRoot,
		FileSuffix:  cfg.FileSuffix,
	}, obs.Logger("filter"))

	// Create HTTP handler
	handler := apihttp.NewHandler(store, holder, service, apihttp.Options{
		SiteDir:    cfg.SiteDir,
		SearchPage: cfg.SearchPage,
		FileSuffix: cfg.FileSuffix,
		SessionTTL: cfg.SessionTTL,
	}, logger)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           apihttp.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().
		Str("addr", addr).
		Str("site_dir", cfg.SiteDir).
		Str("state_backend", cfg.StateBackend).
		Msg("starting API server")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

// initStore opens the configured state backend
func initStore(cfg *config.Config, logger zerolog.Logger) (db.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.StateBackend {
	case config.BackendFile:
		store, err := db.NewFileStore(cfg.StateFile)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("dir", cfg.StateFile).Msg("using file state store")
		return store, nil

	case config.BackendPostgres:
		conn, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store := db.NewPostgresStore(conn)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		logger.Info().Msg("using Postgres state store")
		return store, nil

	case config.BackendRedis:
		store, err := db.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		logger.Info().Msg("using Redis state store")
		return store, nil

	default:
		logger.Info().Msg("using in-memory state store")
		return db.NewMemStore(), nil
	}
}

// newFetcher reads pages from the site directory unless a content root
// points somewhere else
func newFetcher(cfg *config.Config) filter.Fetcher {
	if cfg.ContentRoot == "" {
		return filter.NewDirFetcher(cfg.SiteDir)
	}
	fc := filter.DefaultHTTPFetcherConfig()
	if cfg.FetchTimeout > 0 {
		fc.Timeout = cfg.FetchTimeout
	}
	if cfg.FetchBurst > 0 {
		fc.Burst = cfg.FetchBurst
	}
	if cfg.CacheTTL > 0 {
		fc.CacheTTL = cfg.CacheTTL
	}
	fc.Rate = cfg.FetchRate
	fc.CacheSize = cfg.CacheSize
	return filter.NewHTTPFetcher(fc)
}
