// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

// Package main is the entry point for the OpenLearn recommender server.
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, optional YAML file, OPENLEARN_ env vars
//  2. Logging: zerolog, JSON output by default
//  3. Store: in-memory catalog/history/users, optionally seeded from JSON
//  4. Engine: recommendation service with the five scoring strategies
//  5. HTTP server: chi router, health check, Prometheus metrics
//
// The server handles graceful shutdown on SIGINT and SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openlearn-tv/recommender/internal/api"
	"github.com/openlearn-tv/recommender/internal/config"
	"github.com/openlearn-tv/recommender/internal/logging"
	"github.com/openlearn-tv/recommender/internal/recommend"
	"github.com/openlearn-tv/recommender/internal/recommend/strategies"
	"github.com/openlearn-tv/recommender/internal/store/memory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(cfg.Logging)
	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("starting openlearn recommender")

	store := memory.New()
	if cfg.Store.SeedPath != "" {
		if err := store.LoadSeed(cfg.Store.SeedPath); err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Store.SeedPath).Msg("failed to load seed data")
		}
		videos, users, watchers := store.Counts()
		logging.Info().
			Int("videos", videos).
			Int("users", users).
			Int("watchers", watchers).
			Msg("seed data loaded")
	}

	service, err := recommend.NewService(&cfg.Recommend, recommend.Deps{
		Catalog: store,
		History: store,
		Users:   store,
	}, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create recommendation service")
	}

	service.RegisterStrategy(strategies.NewContentBased(strategies.ContentBasedConfig{}))
	service.RegisterStrategy(strategies.NewCollaborative(strategies.CollaborativeConfig{}))
	service.RegisterStrategy(strategies.NewTrending(strategies.TrendingConfig{}))
	service.RegisterStrategy(strategies.NewSimilarUsers(strategies.SimilarUsersConfig{}))
	service.RegisterStrategy(strategies.NewLearningPath(strategies.LearningPathConfig{}))

	router := api.NewRouter(api.NewHandler(service), api.RouterConfig{
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("http server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("http server failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}

	logging.Info().Msg("server stopped")
}
