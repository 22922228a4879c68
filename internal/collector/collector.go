package collector

import (
	"context"
	"errors"
	"sync"

	"question-exporter/internal/checkpoint"
	"question-exporter/internal/dedupe"
	"question-exporter/internal/detector"
	"question-exporter/internal/events"
	"question-exporter/internal/storage"
)

const (
	defaultBatchSize   = 32
	defaultConcurrency = 3
)

// Stats summarizes one collection run.
type Stats struct {
	Processed int // messages fetched across all channels
	Exported  int // novel questions written to the export file
}

type Options struct {
	BatchSize   int // messages per committed batch (default 32)
	Concurrency int // simultaneously active channels (default 3)
	Limit       int // max messages per channel, 0 = unbounded
}

// Collector drives the per-channel traversal: resume from checkpoint,
// fetch oldest-first, filter, detect, dedupe, export, commit. Channels
// run concurrently under a semaphore; each channel fails in isolation.
type Collector struct {
	source      Source
	detector    *detector.Detector
	registry    *dedupe.Registry
	checkpoints *checkpoint.Store
	exporter    *storage.ExportWriter
	sink        events.Sink
	pause       *Gate

	batchSize   int
	concurrency int
	limit       int
}

func New(
	source Source,
	det *detector.Detector,
	registry *dedupe.Registry,
	checkpoints *checkpoint.Store,
	exporter *storage.ExportWriter,
	sink events.Sink,
	opts Options,
) *Collector {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return &Collector{
		source:      source,
		detector:    det,
		registry:    registry,
		checkpoints: checkpoints,
		exporter:    exporter,
		sink:        sink,
		pause:       NewGate(),
		batchSize:   opts.BatchSize,
		concurrency: opts.Concurrency,
		limit:       opts.Limit,
	}
}

// Pause suspends all channel tasks at their next batch boundary.
func (c *Collector) Pause() { c.pause.Pause() }

// Resume lets paused tasks continue exactly where they left off.
func (c *Collector) Resume() { c.pause.Resume() }

// Run processes the given channels concurrently, bounded by the
// configured concurrency. Per-channel failures are logged and do not
// abort sibling channels. Cancelling ctx stops every task at its next
// batch boundary, leaving checkpoints at the last committed batch.
func (c *Collector) Run(ctx context.Context, channelIDs []int64) Stats {
	sem := make(chan struct{}, c.concurrency)

	var (
		mu    sync.Mutex
		total Stats
		wg    sync.WaitGroup
	)

	for _, channelID := range channelIDs {
		wg.Add(1)
		go func(channelID int64) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			stats, err := c.processChannel(ctx, channelID)
			switch {
			case errors.Is(err, ErrPermissionDenied):
				events.Warnf(c.sink, "collector", "missing permissions for channel %d", channelID)
			case errors.Is(err, context.Canceled):
				events.Infof(c.sink, "collector", "channel %d stopped", channelID)
			case err != nil:
				events.Errorf(c.sink, "collector", "error processing channel %d: %v", channelID, err)
			}

			mu.Lock()
			total.Processed += stats.Processed
			total.Exported += stats.Exported
			mu.Unlock()
		}(channelID)
	}

	wg.Wait()
	return total
}

// processChannel walks one channel's history in committed batches.
// Commit order per batch: export writes, checkpoint advance, checkpoint
// persist, registry save. A crash therefore re-processes at most one
// batch, which dedupe makes idempotent.
func (c *Collector) processChannel(ctx context.Context, channelID int64) (Stats, error) {
	var stats Stats

	cursor, _ := c.checkpoints.Get(channelID)
	events.Infof(c.sink, "collector", "starting channel %d from cursor %d", channelID, cursor)

	for {
		// Pause and stop signals are observed at the batch boundary,
		// never mid-batch.
		if err := c.pause.Wait(ctx); err != nil {
			return stats, err
		}

		fetch := c.batchSize
		if c.limit > 0 && c.limit-stats.Processed < fetch {
			fetch = c.limit - stats.Processed
			if fetch <= 0 {
				break
			}
		}

		batch, err := c.source.ListAfter(ctx, channelID, cursor, fetch)
		if err != nil {
			return stats, err
		}
		if len(batch) == 0 {
			break
		}
		stats.Processed += len(batch)

		filtered := batch[:0:0]
		for _, m := range batch {
			if m.AuthorIsBot || m.Content == "" {
				continue
			}
			filtered = append(filtered, m)
		}

		if len(filtered) > 0 {
			stats.Exported += c.processBatch(ctx, filtered)
		}

		// Advance past the whole fetched batch, including filtered
		// messages, and persist before fetching the next one.
		cursor = batch[len(batch)-1].ID
		c.checkpoints.Set(channelID, cursor)
		c.checkpoints.Persist()
		c.registry.Save()

		if len(batch) < fetch {
			break
		}
	}

	events.Infof(c.sink, "collector", "finished channel %d: %d new questions, %d messages processed",
		channelID, stats.Exported, stats.Processed)
	return stats, nil
}

func (c *Collector) processBatch(ctx context.Context, batch []Message) int {
	contents := make([]string, len(batch))
	for i, m := range batch {
		contents[i] = m.Content
	}

	isQuestions := c.detector.DetectBatch(ctx, contents)

	found := 0
	for i, m := range batch {
		if !isQuestions[i] {
			continue
		}
		normalized := detector.Normalize(m.Content)
		if c.registry.IsDuplicate(normalized, m.ChannelID) {
			continue
		}
		if err := c.exporter.Write(m.ChannelName, m.CreatedAt, m.Content); err != nil {
			events.Errorf(c.sink, "collector", "failed to write question from channel %d: %v", m.ChannelID, err)
			continue
		}
		found++
	}
	return found
}
