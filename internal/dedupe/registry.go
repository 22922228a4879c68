package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"question-exporter/internal/events"
)

// Registry is the persistent set of question fingerprints. It is the
// in-process authority for "have we already exported this": the
// in-memory set stays correct even when a save fails, so persistence
// errors are logged but never fatal.
type Registry struct {
	path string
	mu   sync.Mutex
	sink events.Sink

	hashes map[string]struct{}
}

func NewRegistry(path string, sink events.Sink) *Registry {
	r := &Registry{
		path:   path,
		sink:   sink,
		hashes: make(map[string]struct{}),
	}
	r.load()
	return r
}

// Fingerprint derives the dedupe digest for a (channel, normalized
// content) pair. Same channel and content always map to the same
// digest; the channel scope lets identical questions in different
// channels both survive.
func Fingerprint(channelID int64, normalized string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s", channelID, normalized)))
	return hex.EncodeToString(sum[:])
}

// IsDuplicate reports whether the fingerprint was seen before and
// records it if it was not. Check-and-insert is one atomic step from
// the caller's point of view.
func (r *Registry) IsDuplicate(normalized string, channelID int64) bool {
	fp := Fingerprint(channelID, normalized)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.hashes[fp]; ok {
		return true
	}
	r.hashes[fp] = struct{}{}
	return false
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.hashes)
}

// load reads the persisted fingerprints. A missing or malformed file
// is non-fatal: the registry starts empty.
func (r *Registry) load() {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			events.Errorf(r.sink, "dedupe", "failed to load registry: %v", err)
		}
		return
	}
	var digests []string
	if err := json.Unmarshal(data, &digests); err != nil {
		events.Warnf(r.sink, "dedupe", "registry file format invalid, starting fresh: %v", err)
		return
	}
	for _, d := range digests {
		r.hashes[d] = struct{}{}
	}
}

// Save writes the whole set atomically: temp file then rename, so a
// kill mid-write never leaves a half-written registry visible.
func (r *Registry) Save() {
	r.mu.Lock()
	digests := make([]string, 0, len(r.hashes))
	for d := range r.hashes {
		digests = append(digests, d)
	}
	r.mu.Unlock()

	if err := writeFileAtomic(r.path, digests); err != nil {
		events.Errorf(r.sink, "dedupe", "failed to save registry: %v", err)
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
