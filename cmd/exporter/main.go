package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"question-exporter/internal/archive"
	"question-exporter/internal/checkpoint"
	"question-exporter/internal/classifier"
	"question-exporter/internal/collector"
	"question-exporter/internal/config"
	"question-exporter/internal/dedupe"
	"question-exporter/internal/detector"
	"question-exporter/internal/events"
	"question-exporter/internal/scheduler"
	"question-exporter/internal/storage"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	sink := events.LogSink{}

	store, err := archive.Open(cfg.ArchiveDBPath)
	if err != nil {
		log.Fatalf("failed to open message archive: %v", err)
	}
	defer func() {
		_ = store.Close()
	}()

	var client classifier.Client
	if cfg.UseRemoteDetection {
		factory := classifier.NewFactory(cfg, sink)
		client, err = factory.CreateClient(cfg.ClassifierProvider)
		if err != nil {
			// Missing credentials are a configuration fault: stop
			// before any channel work begins.
			log.Fatalf("failed to create classifier client: %v", err)
		}
	}

	det := detector.New(cfg.Language, cfg.ExtraKeywords, client)
	registry := dedupe.NewRegistry(cfg.RegistryFilePath, sink)
	checkpoints := checkpoint.NewStore(cfg.CheckpointFilePath, sink)
	exporter, err := storage.NewExportWriter(cfg.ExportFilePath)
	if err != nil {
		log.Fatalf("failed to init export writer: %v", err)
	}

	coll := collector.New(store, det, registry, checkpoints, exporter, sink, collector.Options{
		BatchSize:   cfg.BatchSize,
		Concurrency: cfg.Concurrency,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	channels := cfg.ChannelIDs
	if len(channels) == 0 {
		channels, err = store.Channels(ctx)
		if err != nil {
			log.Fatalf("failed to list archived channels: %v", err)
		}
	}
	if len(channels) == 0 {
		log.Println("No channels to scan.")
		return
	}
	log.Printf("Targeting %d channels.", len(channels))

	scan := func(ctx context.Context) error {
		stats := coll.Run(ctx, channels)
		log.Printf("Scan completed: %d messages processed, %d new questions exported.",
			stats.Processed, stats.Exported)
		return ctx.Err()
	}

	if cfg.ScanSchedule == "" {
		if err := scan(ctx); err != nil {
			log.Printf("scan aborted: %v", err)
		}
		return
	}

	sched := scheduler.New(cfg.ScanSchedule)
	sched.SetScanFunction(scan)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	<-ctx.Done()
	sched.Stop()
}
