package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"question-exporter/internal/archive"
	"question-exporter/internal/checkpoint"
	"question-exporter/internal/classifier"
	"question-exporter/internal/collector"
	"question-exporter/internal/config"
	"question-exporter/internal/dedupe"
	"question-exporter/internal/detector"
	"question-exporter/internal/events"
	"question-exporter/internal/storage"
)

// ScanChannelsParams parameters for triggering a collection run
type ScanChannelsParams struct {
	ChannelIDs []int64 `json:"channel_ids,omitempty" mcp:"channel ids to scan (default: all archived channels)"`
	Limit      int     `json:"limit,omitempty" mcp:"maximum messages to process per channel (default: unbounded)"`
}

// ExportStatsParams parameters for the stats tool
type ExportStatsParams struct{}

// DetectQuestionParams parameters for one-off detection
type DetectQuestionParams struct {
	Text string `json:"text" mcp:"the message text to classify"`
}

// ExporterMCPServer wires the collection pipeline behind MCP tools
type ExporterMCPServer struct {
	cfg         *config.Config
	store       *archive.Store
	detector    *detector.Detector
	registry    *dedupe.Registry
	checkpoints *checkpoint.Store
	exporter    *storage.ExportWriter
	sink        events.Sink
}

func NewExporterMCPServer(cfg *config.Config) (*ExporterMCPServer, error) {
	sink := events.LogSink{}

	store, err := archive.Open(cfg.ArchiveDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open message archive: %w", err)
	}

	var client classifier.Client
	if cfg.UseRemoteDetection {
		client, err = classifier.NewFactory(cfg, sink).CreateClient(cfg.ClassifierProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create classifier client: %w", err)
		}
	}

	exporter, err := storage.NewExportWriter(cfg.ExportFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to init export writer: %w", err)
	}

	return &ExporterMCPServer{
		cfg:         cfg,
		store:       store,
		detector:    detector.New(cfg.Language, cfg.ExtraKeywords, client),
		registry:    dedupe.NewRegistry(cfg.RegistryFilePath, sink),
		checkpoints: checkpoint.NewStore(cfg.CheckpointFilePath, sink),
		exporter:    exporter,
		sink:        sink,
	}, nil
}

// ScanChannels runs one collection pass over the requested channels
func (s *ExporterMCPServer) ScanChannels(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[ScanChannelsParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments

	channels := args.ChannelIDs
	if len(channels) == 0 {
		var err error
		channels, err = s.store.Channels(ctx)
		if err != nil {
			return &mcp.CallToolResultFor[any]{
				IsError: true,
				Content: []mcp.Content{
					&mcp.TextContent{Text: fmt.Sprintf("❌ Failed to list archived channels: %v", err)},
				},
			}, nil
		}
	}
	if len(channels) == 0 {
		return &mcp.CallToolResultFor[any]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: "No channels to scan."},
			},
		}, nil
	}

	log.Printf("📡 MCP Server: Scanning %d channels", len(channels))

	coll := collector.New(s.store, s.detector, s.registry, s.checkpoints, s.exporter, s.sink, collector.Options{
		BatchSize:   s.cfg.BatchSize,
		Concurrency: s.cfg.Concurrency,
		Limit:       args.Limit,
	})
	stats := coll.Run(ctx, channels)

	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("✅ Scanned %d channels: %d messages processed, %d new questions exported",
				len(channels), stats.Processed, stats.Exported)},
		},
		Meta: map[string]interface{}{
			"channels":  len(channels),
			"processed": stats.Processed,
			"exported":  stats.Exported,
		},
	}, nil
}

// ExportStats reports registry size and per-channel cursors
func (s *ExporterMCPServer) ExportStats(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[ExportStatsParams]) (*mcp.CallToolResultFor[any], error) {
	cursors := s.checkpoints.Snapshot()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Known fingerprints: %d\n", s.registry.Len())
	fmt.Fprintf(&sb, "Checkpointed channels: %d\n", len(cursors))
	for channel, last := range cursors {
		fmt.Fprintf(&sb, "  channel %s: last message %d\n", channel, last)
	}

	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: sb.String()},
		},
		Meta: map[string]interface{}{
			"fingerprints": s.registry.Len(),
			"checkpoints":  cursors,
		},
	}, nil
}

// DetectQuestion classifies a single text with the configured detector
func (s *ExporterMCPServer) DetectQuestion(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[DetectQuestionParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments

	if args.Text == "" {
		return &mcp.CallToolResultFor[any]{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: "❌ text is required"},
			},
		}, nil
	}

	isQuestion := s.detector.DetectBatch(ctx, []string{args.Text})[0]
	verdict := "not a question"
	if isQuestion {
		verdict = "question"
	}

	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("%q → %s", args.Text, verdict)},
		},
		Meta: map[string]interface{}{
			"is_question": isQuestion,
		},
	}, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	log.Printf("🚀 Starting Question Exporter MCP Server")

	exporterServer, err := NewExporterMCPServer(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to init exporter server: %v", err)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "question-exporter-mcp",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scan_channels",
		Description: "Scans archived chat channels for questions and appends novel ones to the export file",
	}, exporterServer.ScanChannels)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_stats",
		Description: "Reports dedupe registry size and per-channel checkpoint cursors",
	}, exporterServer.ExportStats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "detect_question",
		Description: "Classifies a single text as question or not, using the configured detector",
	}, exporterServer.DetectQuestion)

	log.Printf("📋 Registered %d tools: scan_channels, export_stats, detect_question", 3)
	log.Printf("🔗 Starting server on stdin/stdout...")

	transport := mcp.NewStdioTransport()
	if err := server.Run(context.Background(), transport); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
