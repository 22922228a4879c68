package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"question-exporter/internal/archive"
	"question-exporter/internal/config"
	"question-exporter/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	if cfg.TelegramBotToken == "" {
		log.Fatalf("TELEGRAM_BOT_TOKEN is required to run the archiver")
	}

	store, err := archive.Open(cfg.ArchiveDBPath)
	if err != nil {
		log.Fatalf("failed to open message archive: %v", err)
	}
	defer func() {
		_ = store.Close()
	}()

	archiver, err := telegram.NewArchiver(cfg.TelegramBotToken, store)
	if err != nil {
		log.Fatalf("failed to create archiver: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	archiver.Start(ctx)
}
