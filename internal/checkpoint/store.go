package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"question-exporter/internal/events"
)

// Store holds the per-channel cursor of the last committed message.
// Loaded once at start; Persist rewrites the whole map after every
// committed batch so a crash loses at most one in-flight batch.
type Store struct {
	path string
	mu   sync.Mutex
	sink events.Sink

	cursors map[string]int64
}

func NewStore(path string, sink events.Sink) *Store {
	s := &Store{
		path:    path,
		sink:    sink,
		cursors: make(map[string]int64),
	}
	s.load()
	return s
}

func (s *Store) Get(channelID int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.cursors[key(channelID)]
	return id, ok
}

func (s *Store) Set(channelID, messageID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[key(channelID)] = messageID
}

// Snapshot returns a copy of the cursor map.
func (s *Store) Snapshot() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.cursors))
	for k, v := range s.cursors {
		out[k] = v
	}
	return out
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			events.Errorf(s.sink, "checkpoint", "failed to load checkpoints: %v", err)
		}
		return
	}
	if err := json.Unmarshal(data, &s.cursors); err != nil {
		events.Warnf(s.sink, "checkpoint", "checkpoint file format invalid, starting fresh: %v", err)
		s.cursors = make(map[string]int64)
	}
}

// Persist writes the full map to disk via temp file + rename, matching
// the registry's durability semantics. Failure is logged, not fatal:
// the in-memory cursors stay authoritative for the rest of the run.
func (s *Store) Persist() {
	s.mu.Lock()
	out := make(map[string]int64, len(s.cursors))
	for k, v := range s.cursors {
		out[k] = v
	}
	s.mu.Unlock()

	if err := writeFileAtomic(s.path, out); err != nil {
		events.Errorf(s.sink, "checkpoint", "failed to save checkpoints: %v", err)
	}
}

func writeFileAtomic(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func key(channelID int64) string {
	return strconv.FormatInt(channelID, 10)
}
