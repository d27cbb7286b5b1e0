// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

// Package main is the entry point for the GradCompass server.
//
// GradCompass matches graduate school applicants to universities by
// filtering a catalog against hard constraints, scoring survivors on a
// weighted academic/financial/preference composite, and blending in
// collaborative signals from similar applicants.
//
// Startup order:
//
//  1. Configuration: Koanf v2 layered sources (env > config.yaml > defaults)
//  2. Logging: zerolog, structured JSON by default
//  3. Database: DuckDB holding the university catalog and the peer log
//  4. Catalog: CSV import when the table is empty, then an in-memory snapshot
//  5. Cache: optional Badger-backed response cache
//  6. Engine: recommendation pipeline with circuit-broken peer log access
//  7. HTTP server: chi router under a suture supervision tree
//
// The server handles graceful shutdown on SIGINT and SIGTERM, draining
// in-flight requests within server.shutdown_timeout.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gradcompass/gradcompass/internal/api"
	"github.com/gradcompass/gradcompass/internal/cache"
	"github.com/gradcompass/gradcompass/internal/catalog"
	"github.com/gradcompass/gradcompass/internal/config"
	"github.com/gradcompass/gradcompass/internal/database"
	"github.com/gradcompass/gradcompass/internal/logging"
	"github.com/gradcompass/gradcompass/internal/recommend"
	"github.com/gradcompass/gradcompass/internal/supervisor"
	"github.com/gradcompass/gradcompass/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config is not available yet; the default logger has to do.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("cache_enabled", cfg.Cache.Enabled).
		Int("port", cfg.Server.Port).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	snap, err := loadCatalog(context.Background(), db, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load university catalog")
	}
	logging.Info().
		Int("universities", snap.Len()).
		Int("countries", len(snap.Countries())).
		Msg("Catalog snapshot loaded")

	var respCache *cache.ResponseCache
	if cfg.Cache.Enabled {
		respCache, err = cache.New(&cfg.Cache, logging.Logger())
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open response cache")
		}
		defer func() {
			if err := respCache.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing response cache")
			}
		}()
	}

	// Peer log access goes through a circuit breaker so a struggling
	// database degrades collaborative blending instead of every request.
	peerLog := database.NewBreakerPeerLog(db.PeerLog())

	engineCfg := engineConfig(cfg)
	var engineCache recommend.ResponseCache
	if respCache != nil {
		engineCache = respCache
	}
	engine, err := recommend.NewEngine(engineCfg, snap, peerLog, engineCache, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build recommendation engine")
	}

	router := api.NewRouter(api.NewHandler(engine, db), &cfg.Security)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree, err := supervisor.NewTree(slog.New(logging.NewSlogHandler()), treeCfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build supervisor tree")
	}

	if respCache != nil {
		tree.AddMaintenanceService(services.NewCacheGCService(respCache, 10*time.Minute, logging.Logger()))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped gracefully")
}

// loadCatalog imports the configured CSV when the universities table is
// empty, then builds the in-memory snapshot the engine reads from.
func loadCatalog(ctx context.Context, db *database.DB, cfg *config.Config) (*catalog.Snapshot, error) {
	count, err := db.CountUniversities(ctx)
	if err != nil {
		return nil, fmt.Errorf("count universities: %w", err)
	}

	if count == 0 && cfg.Catalog.CSVPath != "" {
		imported, err := db.ImportCSV(ctx, cfg.Catalog.CSVPath)
		if err != nil {
			return nil, fmt.Errorf("import catalog CSV %s: %w", cfg.Catalog.CSVPath, err)
		}
		logging.Info().
			Str("csv_path", cfg.Catalog.CSVPath).
			Int("rows", imported).
			Msg("Imported university catalog")
	}

	return db.LoadSnapshot(ctx)
}

// engineConfig seeds the engine configuration from the service config,
// keeping engine defaults for anything the service config does not surface.
func engineConfig(cfg *config.Config) *recommend.Config {
	ec := recommend.DefaultConfig()
	if cfg.Recommend.DefaultK > 0 {
		ec.Limits.DefaultK = cfg.Recommend.DefaultK
	}
	if cfg.Recommend.MaxK > 0 {
		ec.Limits.MaxK = cfg.Recommend.MaxK
	}
	if cfg.Recommend.MinCandidates > 0 {
		ec.Limits.MinCandidates = cfg.Recommend.MinCandidates
	}
	ec.Collaborative.Weight = cfg.Recommend.CollaborativeWeight
	ec.Collaborative.SimilarityThreshold = cfg.Recommend.SimilarityThreshold
	if cfg.Recommend.TrendingWindow > 0 {
		ec.Collaborative.TrendingWindow = cfg.Recommend.TrendingWindow
	}
	ec.DiversityEnabled = cfg.Recommend.DiversityEnabled
	return ec
}
