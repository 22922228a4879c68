package scheduler

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers periodic collection runs.
type Scheduler struct {
	cron     *cron.Cron
	ctx      context.Context
	cancel   context.CancelFunc
	spec     string
	scanFunc func(ctx context.Context) error
	busy     atomic.Bool
}

// New creates a scheduler for the given cron spec.
func New(spec string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
		spec:   spec,
	}
}

// SetScanFunction sets the function that runs one collection pass.
func (s *Scheduler) SetScanFunction(f func(ctx context.Context) error) {
	s.scanFunc = f
}

// Start registers the cron entry. A scan still in progress when the
// next tick fires is not overlapped; the tick is skipped.
func (s *Scheduler) Start() error {
	if s.scanFunc == nil {
		log.Println("⚠️ Scan function not set, scheduler will not run scans")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		if !s.busy.CompareAndSwap(false, true) {
			log.Println("⏳ Previous scan still running, skipping this tick")
			return
		}
		defer s.busy.Store(false)

		log.Printf("🕘 Triggered scheduled scan (%s)", s.spec)
		if err := s.scanFunc(s.ctx); err != nil {
			log.Printf("❌ Scheduled scan failed: %v", err)
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("📅 Scheduler started - scans will run on %q (UTC)", s.spec)
	return nil
}

// Stop stops the scheduler and cancels any running scan.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("📅 Scheduler stopped")
}

// IsRunning reports whether the scheduler has active entries.
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
