package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/luhambo/before-you-sign/internal/config"
	"github.com/luhambo/before-you-sign/internal/database"
	"github.com/luhambo/before-you-sign/internal/handler"
	"github.com/luhambo/before-you-sign/internal/queue"
	"github.com/luhambo/before-you-sign/internal/repository"
	"github.com/luhambo/before-you-sign/internal/router"
	"github.com/luhambo/before-you-sign/internal/session"
	"github.com/luhambo/before-you-sign/internal/upload"
	"github.com/luhambo/before-you-sign/internal/view"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win either way
	cfg := config.Load()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer db.Close()

	if err := upload.EnsureDirs(cfg.UploadDir, cfg.QRDir, cfg.LogDir); err != nil {
		logger.Fatal().Err(err).Msg("create runtime directories")
	}

	// Sessions live in process memory unless a Redis server is configured
	// and reachable, in which case logins survive restarts.
	var store session.Store
	if rdb := config.NewRedisClient(); rdb != nil {
		store = session.NewRedisStore(rdb, cfg.SessionTTL)
		logger.Info().Msg("session store: redis")
	} else {
		store = session.NewMemoryStore(cfg.SessionTTL)
		logger.Info().Msg("session store: memory")
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		logger.Fatal().Err(err).Msg("parse templates")
	}

	users := repository.NewUserRepo(db)
	vehicles := repository.NewVehicleRepo(db)
	documents := repository.NewDocumentRepo(db, cfg.MaxDocsPerVehicle)

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer

	auth := handler.NewAuthHandler(cfg, users, store)
	dash := handler.NewDashboardHandler(users, vehicles)
	veh := handler.NewVehicleHandler(cfg, vehicles, documents)
	router.Register(e, store, auth, dash, veh)

	if cfg.AMQPURL != "" {
		go queue.StartAuditConsumer(cfg.AMQPURL, cfg.LogDir)
	}

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Str("env", cfg.Env).Str("db", cfg.DBPath).Msg("listening")
	if err := e.Start(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
