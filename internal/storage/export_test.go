package storage

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestWriteFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.txt")
	w, err := NewExportWriter(path)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	created := time.Date(2024, 5, 1, 13, 37, 0, 0, time.UTC)
	if err := w.Write("allmänt", created, "Vad heter du?"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Write("allmänt", created, "Rad ett\nrad två?"); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d: %q", len(lines), string(data))
	}
	if lines[0] != "[allmänt] - [2024-05-01] Vad heter du?" {
		t.Fatalf("unexpected line: %q", lines[0])
	}
	// Internal newlines collapse to spaces.
	if lines[1] != "[allmänt] - [2024-05-01] Rad ett rad två?" {
		t.Fatalf("unexpected line: %q", lines[1])
	}
}

func TestConcurrentWritesDoNotTear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.txt")
	w, err := NewExportWriter(path)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	created := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.Write("chan", created, "en fråga till?")
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 20 {
		t.Fatalf("want 20 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, "en fråga till?") {
			t.Fatalf("torn line: %q", line)
		}
	}
}
