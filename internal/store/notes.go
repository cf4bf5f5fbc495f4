package store

import (
	"strconv"
	"sync"

	"github.com/starford/notebook/internal/apperr"
	"github.com/starford/notebook/internal/models"
)

// Notes is the ordered note collection. Its id counter is independent of
// the source store's.
type Notes struct {
	mu     sync.RWMutex
	lastID int
	items  []models.Note
}

// NewNotes creates an empty note store.
func NewNotes() *Notes {
	return &Notes{}
}

// Add assigns the next id to n, appends it, and returns the stored copy.
func (s *Notes) Add(n models.Note) models.Note {
	n.Tags = append([]string{}, n.Tags...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	n.ID = strconv.Itoa(s.lastID)
	s.items = append(s.items, n)
	return n
}

// Get returns the note with the given id.
func (s *Notes) Get(id string) (models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.items {
		if n.ID == id {
			return n, nil
		}
	}
	return models.Note{}, apperr.ErrNotFound
}

// List returns every note in creation order.
func (s *Notes) List() []models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Note, len(s.items))
	copy(out, s.items)
	return out
}
