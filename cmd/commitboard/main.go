// Package main contains the entrypoint for the commitboard server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/edgard/commitboard/internal/config"
	"github.com/edgard/commitboard/internal/database"
	"github.com/edgard/commitboard/internal/github"
	"github.com/edgard/commitboard/internal/httpapi"
	"github.com/edgard/commitboard/internal/logger"
	"github.com/edgard/commitboard/internal/mirror"
	"github.com/edgard/commitboard/internal/scheduler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db,
// mirror registry, scheduler, http server), handles graceful shutdown, and
// returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	// Credentials (BOARD_GITHUB_TOKEN) may live in a local .env file.
	_ = godotenv.Load(".env")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	registry := mirror.NewRegistry(cfg.GitHub.Timeout, log)
	for _, mc := range cfg.Mirrors {
		registry.Add(github.NewClient(github.Config{
			BaseURL: cfg.GitHub.BaseURL,
			Token:   cfg.GitHub.Token,
			Owner:   mc.Owner,
			Name:    mc.Name,
			Branch:  mc.Branch,
			Path:    mc.Path,
			Timeout: cfg.GitHub.Timeout,
		}, log))
	}
	log.Info("Mirror registry configured", "mirrors", registry.Len())

	sched, err := scheduler.New(log, store, cfg.Maintenance)
	if err != nil {
		log.Error("Failed to initialize scheduler", "error", err)
		return 1
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Error("Failed to stop scheduler", "error", err)
		}
	}()

	handler := httpapi.NewHandler(store, registry, cfg.Board.MessageLimit, log)
	srv := httpapi.NewServer(httpapi.ServerOptions{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handler, log)

	log.Info("Starting commitboard...")
	runErr := srv.Run(ctx, cfg.Server.ShutdownTimeout)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Server stopped due to error", "error", runErr)
		return 1
	}

	log.Info("Server stopped gracefully.")
	return 0
}
