// Package main contains the entrypoint for the friendbook REST API.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/edgard/friendbook/internal/api"
	"github.com/edgard/friendbook/internal/config"
	"github.com/edgard/friendbook/internal/database"
	"github.com/edgard/friendbook/internal/logger"
	"github.com/edgard/friendbook/internal/media"
	"github.com/edgard/friendbook/internal/scheduler"
	"github.com/edgard/friendbook/internal/tasks"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires config, logger, database, photo store, router and scheduler,
// serves until ctx is cancelled, and returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.ValidateAPI()
	}
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	db, err := database.NewDB(cfg.Database)
	if err != nil {
		log.Error("Failed to connect to database", "driver", cfg.Database.Driver, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	photos := media.New(cfg.Media.Dir, cfg.Media.URLPrefix, log)
	if err := os.MkdirAll(photos.Dir(), 0o755); err != nil {
		log.Error("Failed to create media directory", "dir", photos.Dir(), "error", err)
		return 1
	}

	gin.SetMode(cfg.Server.GinMode)
	router := api.NewRouter(api.Deps{
		Logger:         log,
		Store:          store,
		Photos:         photos,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})

	sched, err := scheduler.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger: log,
		Store:  store,
	}))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	if !cfg.TaskEnabled(config.TaskSQLMaintenance) {
		log.Info("SQL maintenance task is disabled")
	}

	srv := api.NewServer(log, cfg.Server, router, sched)
	if err := srv.Run(ctx); err != nil {
		log.Error("API server stopped due to error", "error", err)
		return 1
	}

	log.Info("API server stopped gracefully.")
	return 0
}
