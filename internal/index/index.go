package index

// Searcher defines the index operations the service layer depends on.
type Searcher interface {
	Upsert(d Doc) error
	Delete(kind, id string) error
	Search(query string, limit int) ([]SearchResult, error)
}

// Verify *DB satisfies Searcher at compile time.
var _ Searcher = (*DB)(nil)
