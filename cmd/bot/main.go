package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tiendabot/storefront/internal/bootstrap"
	"github.com/tiendabot/storefront/internal/bot"
	"github.com/tiendabot/storefront/internal/config"
	"github.com/tiendabot/storefront/internal/infra"
	"github.com/tiendabot/storefront/internal/logging"
	"github.com/tiendabot/storefront/internal/notification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, "bot")

	if cfg.TelegramToken == "" {
		logger.Error("TELEGRAM_TOKEN is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	cache, err := infra.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if cache != nil {
		defer cache.Close()
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		logger.Error("bot init", "error", err)
		os.Exit(1)
	}

	notifier := notification.Fanout{notification.NewLoggerNotifier(logger), bot.NewNotifier(api)}
	wired, err := bootstrap.Build(ctx, bootstrap.Deps{Cfg: cfg, DB: db, Cache: cache, Logger: logger, Notifier: notifier})
	if err != nil {
		logger.Error("wire services", "error", err)
		os.Exit(1)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	logger.Info("bot started", "username", api.Self.UserName)
	bot.NewHandler(api, wired.Storefront, wired.Directory, logger).Run(ctx, updates)

	api.StopReceivingUpdates()
	logger.Info("bot exited cleanly")
}
