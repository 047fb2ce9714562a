package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := loadConfig("./config.json")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var logLevel slog.Level
	switch strings.ToLower(config.Server.LogLevel) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	logger.Info("Starting DM assistant", "version", Version, "commit", Commit, "build_date", BuildDate)

	if err = os.MkdirAll(config.Server.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := initDB(config.Server.CorpusDatabase)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		logger.Info("Closing database connection.")
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	if err = setupCorpusSchema(db); err != nil {
		return fmt.Errorf("failed to setup corpus schema: %w", err)
	}

	server, err := NewServer(config, logger, db)
	if err != nil {
		return fmt.Errorf("failed to create server object: %w", err)
	}

	// Cold start: no saved model means nothing has been trained yet, so
	// build the model from whatever the corpus holds and persist it.
	if server.mm.Stats().TrainedNames == 0 {
		logger.Info("Training new model from corpus...")
		if err = trainFromCorpus(context.Background(), server.corpus, server.mm); err != nil {
			return fmt.Errorf("failed to train model from corpus: %w", err)
		}
		if err = server.mm.Save(); err != nil {
			logger.Error("Failed to save freshly trained model", "error", err)
		}
	}

	httpServer := &http.Server{
		Addr:    config.Server.ServerAddr,
		Handler: server.mux,
	}

	go func() {
		logger.Info("Starting assistant API server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("API server failed", "error", err)
		}
	}()

	osSignalChan := make(chan os.Signal, 1)
	signal.Notify(osSignalChan, syscall.SIGINT, syscall.SIGTERM)
	<-osSignalChan
	logger.Info("OS signal received, initiating shutdown.")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	logger.Info("HTTP server stopped.")

	// Persist the model on the way out so API-driven training survives.
	if err = server.mm.Save(); err != nil {
		logger.Error("Failed to save model during shutdown", "error", err)
	}

	logger.Info("DM assistant has shut down.")
	return nil
}
