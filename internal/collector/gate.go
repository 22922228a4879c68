package collector

import (
	"context"
	"sync"
)

// Gate is the pause switch channel tasks block on between batches.
// It starts open; Pause closes it, Resume reopens it. Progress is
// never lost across a pause, tasks simply wait at the next batch
// boundary.
type Gate struct {
	mu   sync.Mutex
	open chan struct{}
}

func NewGate() *Gate {
	g := &Gate{open: make(chan struct{})}
	close(g.open)
	return g
}

func (g *Gate) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.open:
		g.open = make(chan struct{})
	default:
		// already paused
	}
}

func (g *Gate) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.open:
		// already open
	default:
		close(g.open)
	}
}

// Wait blocks while the gate is paused. It returns the context error
// if the run is stopped first.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	open := g.open
	g.mu.Unlock()

	select {
	case <-open:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
