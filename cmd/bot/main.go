package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"birdseye/config"
	telegram "birdseye/internal/api"
	"birdseye/internal/container"
	"birdseye/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New("bot", cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.TelegramToken == "" {
		logger.Fatal("TELEGRAM_TOKEN is required")
	}

	// Собираем сервисы приложения
	appContainer, err := container.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build container", zap.Error(err))
	}

	// Создаём бота
	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer)
	if err != nil {
		logger.Fatal("failed to create bot", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("bot is running")
	if err := bot.Run(ctx); err != nil {
		logger.Fatal("bot error", zap.Error(err))
	}
}
