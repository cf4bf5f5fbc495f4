// Package store holds the in-memory source and note collections.
//
// State lives only for the life of the process. Each store guards its state
// with one mutex and hands out copies, so callers never share records.
package store

import (
	"strconv"
	"strings"
	"sync"

	"github.com/starford/notebook/internal/apperr"
	"github.com/starford/notebook/internal/models"
)

const combinedSeparator = "\n\n---\n\n"

// Sources is the ordered source collection plus the combined summary
// derived from it.
//
// The combined summary is nil exactly when the collection is empty, once the
// recompute that follows an Add has been applied. Removing a source other
// than the last leaves the combined summary untouched.
type Sources struct {
	mu     sync.RWMutex
	lastID int
	items  []models.Source

	combined *string
	// rev counts recompute snapshots; applied is the newest one stored.
	rev     uint64
	applied uint64
}

// NewSources creates an empty source store.
func NewSources() *Sources {
	return &Sources{}
}

// Add assigns the next id to src, appends it, and returns the stored copy.
// Ids are never reused within a run.
func (s *Sources) Add(src models.Source) models.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	src.ID = strconv.Itoa(s.lastID)
	s.items = append(s.items, src)
	return src
}

// Get returns the source with the given id.
func (s *Sources) Get(id string) (models.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], nil
	}
	return models.Source{}, apperr.ErrNotFound
}

// List returns every source in upload order.
func (s *Sources) List() []models.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Source, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of stored sources.
func (s *Sources) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Remove deletes the source with the given id. When the store becomes empty
// the combined summary is invalidated.
func (s *Sources) Remove(id string) (models.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Source{}, apperr.ErrNotFound
	}
	removed := s.items[i]
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	if len(s.items) == 0 {
		s.invalidateLocked()
	}
	return removed, nil
}

// PriorSummaries returns filename/summary pairs for sources that have one.
func (s *Sources) PriorSummaries() []models.PriorSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.PriorSummary
	for _, src := range s.items {
		if src.Summary != nil && *src.Summary != "" {
			out = append(out, models.PriorSummary{Filename: src.Filename, Summary: *src.Summary})
		}
	}
	return out
}

// Summaries returns the id/filename/summary rows in upload order.
func (s *Sources) Summaries() []models.SummaryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SummaryEntry, len(s.items))
	for i, src := range s.items {
		out[i] = models.SummaryEntry{ID: src.ID, Filename: src.Filename, Summary: src.Summary}
	}
	return out
}

// Combined returns the current combined summary, nil when absent.
func (s *Sources) Combined() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.combined == nil {
		return nil
	}
	c := *s.combined
	return &c
}

// Snapshot is the input for one combined-summary recompute.
type Snapshot struct {
	Rev  uint64
	Text string
	Size int
}

// CombinedInput joins every current source's text for a full recompute.
func (s *Sources) CombinedInput() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rev++
	parts := make([]string, len(s.items))
	for i, src := range s.items {
		parts[i] = "Document '" + src.Filename + "':\n" + src.Content
	}
	return Snapshot{Rev: s.rev, Text: strings.Join(parts, combinedSeparator), Size: len(s.items)}
}

// ApplyCombined stores a successfully recomputed combined summary. It is a
// no-op when a newer snapshot was already applied or the store is empty.
func (s *Sources) ApplyCombined(rev uint64, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rev <= s.applied || len(s.items) == 0 {
		return false
	}
	s.applied = rev
	s.combined = &text
	return true
}

// FailCombined records a failed recompute: the previous combined summary is
// kept, and failText is used only when there is none.
func (s *Sources) FailCombined(rev uint64, failText string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rev <= s.applied || len(s.items) == 0 || s.combined != nil {
		return false
	}
	s.applied = rev
	s.combined = &failText
	return true
}

func (s *Sources) invalidateLocked() {
	s.combined = nil
	s.applied = s.rev
}

func (s *Sources) indexOf(id string) int {
	for i, src := range s.items {
		if src.ID == id {
			return i
		}
	}
	return -1
}
