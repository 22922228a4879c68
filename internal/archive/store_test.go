package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"question-exporter/internal/collector"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "messages.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func testMessage(channelID, id int64, content string) collector.Message {
	return collector.Message{
		ID:          id,
		ChannelID:   channelID,
		ChannelName: "allmänt",
		Content:     content,
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAppendAndListAfter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, m := range []collector.Message{
		testMessage(1, 3, "tredje"),
		testMessage(1, 1, "första"),
		testMessage(1, 2, "andra"),
		testMessage(2, 1, "annan kanal"),
	} {
		if err := s.Append(ctx, m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	// Oldest first, strictly after the cursor, capped by limit.
	got, err := s.ListAfter(ctx, 1, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 || got[0].ID != 1 || got[1].ID != 2 || got[2].ID != 3 {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Content != "första" || got[0].ChannelName != "allmänt" {
		t.Fatalf("unexpected message: %+v", got[0])
	}

	got, err = s.ListAfter(ctx, 1, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 {
		t.Fatalf("cursor not honored: %+v", got)
	}

	got, err = s.ListAfter(ctx, 1, 0, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("limit not honored: %+v", got)
	}
}

func TestAppendIgnoresRedelivery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	m := testMessage(1, 1, "original")
	if err := s.Append(ctx, m); err != nil {
		t.Fatalf("append: %v", err)
	}
	m.Content = "redelivered"
	if err := s.Append(ctx, m); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.ListAfter(ctx, 1, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Content != "original" {
		t.Fatalf("redelivery must be ignored: %+v", got)
	}
}

func TestBotFlagRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	m := testMessage(1, 1, "bot message")
	m.AuthorIsBot = true
	if err := s.Append(ctx, m); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.ListAfter(ctx, 1, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !got[0].AuthorIsBot {
		t.Fatalf("bot flag lost: %+v", got[0])
	}
}

func TestChannels(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, m := range []collector.Message{
		testMessage(5, 1, "a"),
		testMessage(3, 1, "b"),
		testMessage(5, 2, "c"),
	} {
		if err := s.Append(ctx, m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := s.Channels(ctx)
	if err != nil {
		t.Fatalf("channels: %v", err)
	}
	if len(got) != 2 || got[0] != 3 || got[1] != 5 {
		t.Fatalf("unexpected channels: %v", got)
	}
}
