// Package testutil provides shared test helpers for uploads, the index and the LLM.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/starford/notebook/internal/index"
	"github.com/starford/notebook/internal/storage"
	"github.com/starford/notebook/internal/summarizer"
)

// TestDB creates an in-memory index that is closed when the test ends.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestUploads creates a temporary upload directory with a storage.FS.
func TestUploads(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// FakeLLM is a scripted summarizer.Completer. Reply is called for every
// request; when nil, the prompt is echoed back with a "summary:" prefix.
type FakeLLM struct {
	Reply func(req summarizer.Request) (string, error)

	mu       sync.Mutex
	requests []summarizer.Request
}

// Complete records req and returns the scripted reply.
func (f *FakeLLM) Complete(_ context.Context, req summarizer.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	reply := f.Reply
	f.mu.Unlock()
	if reply == nil {
		return "summary:" + req.Prompt, nil
	}
	return reply(req)
}

// Requests returns a copy of every request seen so far.
func (f *FakeLLM) Requests() []summarizer.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]summarizer.Request, len(f.requests))
	copy(out, f.requests)
	return out
}
