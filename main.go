package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"heroes/internal/app"
	"heroes/internal/config"
	"heroes/pkg/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Init(cfg.App.Env)
	logger.SetLevel(cfg.App.LogLevel)

	ctx := context.Background()
	server, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise application")
	}

	if err := server.StartConsumers(); err != nil {
		log.Error().Err(err).Msg("failed to start character event consumer")
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.App.Port).Msg("starting server")
		if err := server.Listen(cfg.App.Port); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server...")
	if err := server.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("server gracefully stopped")
}
