package main

import (
	"context"

	"github.com/recoveryconnect/match-backend/internal/app"
	"github.com/recoveryconnect/match-backend/internal/cache"
	"github.com/recoveryconnect/match-backend/internal/config"
	"github.com/recoveryconnect/match-backend/internal/db"
	"github.com/recoveryconnect/match-backend/internal/logger"
	"github.com/recoveryconnect/match-backend/internal/server"
	"github.com/recoveryconnect/match-backend/internal/service/connection"
)

func main() {
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

	// Inject logger into app context
	appCtx := app.New(database, redisCache, log)

	registrars := []server.Registrar{
		connection.NewRegistrar(appCtx),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedDemoData(database); err != nil {
			log.Error("failed to seed demo data", "err", err)
		}
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
