package collector

import (
	"context"
	"errors"
	"time"
)

// ErrPermissionDenied marks a channel the source cannot read. The
// collector skips such channels without failing the run.
var ErrPermissionDenied = errors.New("permission denied")

// Message is the read-only view of one chat message. Within a channel,
// IDs are strictly increasing in chronological order; checkpointing
// relies on that.
type Message struct {
	ID          int64
	ChannelID   int64
	ChannelName string
	AuthorIsBot bool
	Content     string
	CreatedAt   time.Time
}

// Source lists channel history strictly after a cursor, oldest first.
// A zero afterID means "from the beginning". Implementations return at
// most limit messages per call.
type Source interface {
	ListAfter(ctx context.Context, channelID, afterID int64, limit int) ([]Message, error)
}
