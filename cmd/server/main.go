package main

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/wandermatch/wandermatch/internal/app"
	"github.com/wandermatch/wandermatch/internal/cache"
	"github.com/wandermatch/wandermatch/internal/config"
	"github.com/wandermatch/wandermatch/internal/db"
	"github.com/wandermatch/wandermatch/internal/embedding"
	"github.com/wandermatch/wandermatch/internal/logger"
	"github.com/wandermatch/wandermatch/internal/server"
	"github.com/wandermatch/wandermatch/internal/service/discover"
	"github.com/wandermatch/wandermatch/internal/service/experience"
	"github.com/wandermatch/wandermatch/internal/service/match"
	"github.com/wandermatch/wandermatch/internal/service/profile"
	"github.com/wandermatch/wandermatch/internal/vectorindex"
)

func main() {
	_ = godotenv.Load()
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	// External collaborators: embedding service + vector index.
	// Both are best-effort downstream of here, so the server still
	// starts when they are misconfigured.
	embedder := embedding.New(cfg)

	var index vectorindex.Index
	if cfg.VectorIndex.DSN != "" {
		pg, err := vectorindex.NewPGVectorIndex(
			cfg.VectorIndex.DSN,
			cfg.VectorIndex.Table,
			cfg.Embedding.Dimensions,
			cfg.VectorIndex.Timeout,
		)
		if err != nil {
			log.Warn("vector index unavailable, using in-memory index", "err", err)
			index = vectorindex.NewMemoryIndex()
		} else {
			index = pg
		}
	} else {
		log.Warn("no VECTOR_DSN configured, using in-memory vector index")
		index = vectorindex.NewMemoryIndex()
	}

	appCtx := app.New(database, redisCache, log, embedder, index)

	// The discover service doubles as the indexer for experience writes.
	discoverSvc := discover.NewService(appCtx)

	registrars := []server.Registrar{
		match.NewRegistrar(appCtx),
		discover.NewRegistrar(appCtx),
		experience.NewRegistrar(appCtx, discoverSvc),
		profile.NewRegistrar(appCtx),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
