// Package main contains the entrypoint for the friendbook Telegram bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/friendbook/internal/bot"
	"github.com/edgard/friendbook/internal/bot/handlers"
	"github.com/edgard/friendbook/internal/client"
	"github.com/edgard/friendbook/internal/config"
	"github.com/edgard/friendbook/internal/logger"
	"github.com/edgard/friendbook/internal/scheduler"
	"github.com/edgard/friendbook/internal/session"
	"github.com/edgard/friendbook/internal/tasks"
	"github.com/edgard/friendbook/internal/telegram"
	"github.com/edgard/friendbook/internal/wizard"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes config, logger, API client, session store, Telegram client
// and scheduler, runs until ctx is cancelled, and returns the exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.ValidateBot()
	}
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	apiClient := client.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, log)

	tDeps := tasks.TaskDeps{Logger: log}
	var sessions session.Store
	switch cfg.Session.Backend {
	case "redis":
		rdb, err := session.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Error("Failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
			return 1
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error("Error closing redis client", "error", err)
			}
		}()
		sessions = session.NewRedisStore(rdb, cfg.Redis.KeyPrefix, cfg.Session.IdleTimeout)
		if cfg.TaskEnabled(config.TaskSessionSweep) {
			log.Info("Session sweep task is a no-op with redis, keys expire on their own")
		}
	default:
		mem := session.NewMemoryStore(cfg.Session.IdleTimeout)
		tDeps.Sessions = mem
		sessions = mem
	}
	log.Info("Session store ready", "backend", cfg.Session.Backend, "idle_timeout", cfg.Session.IdleTimeout)

	hDeps := handlers.HandlerDeps{
		Logger:  log,
		Config:  cfg,
		Wizard:  wizard.New(sessions, apiClient, cfg.Messages, log),
		Friends: apiClient,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewMessageHandler(hDeps)),
		tgbot.WithNotAsyncHandlers(),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.PublishCommands(ctx, tg); err != nil {
		log.Warn("Failed to publish command menu", "error", err)
	}

	sched, err := scheduler.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	app := bot.NewBot(log, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}
