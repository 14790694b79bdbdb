package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bookyourstay/stay-api/internal/config"
	"github.com/bookyourstay/stay-api/internal/pkg/clock"
	"github.com/bookyourstay/stay-api/internal/pkg/database"
	"github.com/bookyourstay/stay-api/internal/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("store", cfg.StoreDriver).
		Msg("Starting BookYourStay API")

	ctx := context.Background()

	conns, err := database.Open(ctx, cfg.StoreDriver, cfg.DatabaseURL, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store connections")
	}
	defer conns.Close()

	a, err := newApp(ctx, cfg, conns, clock.System)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build application")
	}
	defer a.dispatcher.Close()

	if cfg.AdminEmail != "" {
		if err := a.accounts.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed admin account")
		}
	}

	a.worker.Start()
	defer a.worker.Stop()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
