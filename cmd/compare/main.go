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

	"llm_compare/internal/config"
	"llm_compare/internal/httpapi"
	"llm_compare/internal/logging"
)

func main() {
	if err := config.LoadEnvFiles(".env"); err != nil {
		log.Fatal().Err(err).Msg("failed to load .env")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create logger")
	}

	// Create router with all dependencies
	handler, deps, err := httpapi.NewRouter(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build router")
	}

	// No write timeout: a comparison waits on three backends with no
	// deadline of their own unless PROVIDER_REQUEST_TIMEOUT is set.
	addr := ":" + cfg.HTTPPort
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", addr).
			Str("session_store", cfg.Session.Store).
			Bool("concurrent", cfg.Provider.Concurrent).
			Msg("LLM comparison tool listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	if err := deps.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to release dependencies")
	}

	logger.Info().Msg("server exited")
}
