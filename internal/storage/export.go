package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ExportWriter appends accepted questions to the export file, one line
// per question: [channel name] - [YYYY-MM-DD] content. Writes are
// serialized so concurrent channel tasks cannot interleave mid-line.
type ExportWriter struct {
	path string
	mu   sync.Mutex
}

func NewExportWriter(path string) (*ExportWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure export dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to init export file: %w", err)
	}
	_ = f.Close()
	return &ExportWriter{path: path}, nil
}

func (w *ExportWriter) Write(channelName string, createdAt time.Time, content string) error {
	// Collapse internal newlines so each question stays on one line.
	clean := strings.TrimSpace(strings.ReplaceAll(content, "\n", " "))
	line := fmt.Sprintf("[%s] - [%s] %s\n", channelName, createdAt.Format("2006-01-02"), clean)

	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open append: %w", err)
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	return nil
}
