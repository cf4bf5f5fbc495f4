package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func tempUploads(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func readStored(s *FS, name string) ([]byte, error) {
	abs, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}

func TestNewFS_CreatesDir(t *testing.T) {
	s := tempUploads(t)
	info, err := os.Stat(s.Root())
	if err != nil || !info.IsDir() {
		t.Fatalf("root not created: %v", err)
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "notebook-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestWriteAndRead(t *testing.T) {
	s := tempUploads(t)
	content := []byte("%PDF-1.4 bytes")
	if err := s.Write("1_paper.pdf", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := readStored(s, "1_paper.pdf")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempUploads(t)
	_ = s.Write("2_del.txt", []byte("bye"))
	if err := s.Delete("2_del.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := readStored(s, "2_del.txt"); err == nil {
		t.Error("expected error reading deleted file")
	}
	if err := s.Delete("2_del.txt"); err == nil {
		t.Error("expected error deleting a missing file")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempUploads(t)
	cases := []string{
		"../../etc/passwd",
		"../outside.txt",
		"/etc/shadow",
		"sub/file.txt",
		"..",
		"",
	}
	for _, p := range cases {
		if _, err := s.Path(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempUploads(t)
	_ = s.Write("1_a.txt", []byte("original"))
	if err := s.Write("1_a.txt", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := readStored(s, "1_a.txt")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, ".upload-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_ReportsCreateAndRemove(t *testing.T) {
	s := tempUploads(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	seen := map[string]bool{}
	go Watch(ctx, s.Root(), logger, func(kind, name string) {
		mu.Lock()
		defer mu.Unlock()
		seen[kind+":"+name] = true
	})
	time.Sleep(100 * time.Millisecond)

	if err := s.Write("1_a.txt", []byte("a")); err != nil {
		t.Fatal(err)
	}
	eventually(t, 2*time.Second, 20*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen["created:1_a.txt"]
	}, "expected created event")

	if err := os.Remove(filepath.Join(s.Root(), "1_a.txt")); err != nil {
		t.Fatal(err)
	}
	eventually(t, 2*time.Second, 20*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen["removed:1_a.txt"]
	}, "expected removed event")

	mu.Lock()
	defer mu.Unlock()
	for k := range seen {
		if strings.Contains(k, ".upload-tmp-") {
			t.Errorf("temp file leaked into events: %s", k)
		}
	}
}
