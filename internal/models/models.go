// Package models defines the domain types for the notebook backend.
package models

import "time"

// Source is an uploaded document together with its extracted text.
// Summary stays nil until generation completes; on failure it holds the
// fallback text.
type Source struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Content    string    `json:"content"`
	UploadDate time.Time `json:"upload_date"`
	FileType   string    `json:"file_type"`
	Summary    *string   `json:"summary"`
}

// StoredName is the name under which the raw upload bytes are persisted.
func (s Source) StoredName() string {
	return StoredName(s.ID, s.Filename)
}

// StoredName builds the persisted file name for an id and original filename.
func StoredName(id, filename string) string {
	return id + "_" + filename
}

// SummaryEntry is the per-source summary row returned by list endpoints.
type SummaryEntry struct {
	ID       string  `json:"id"`
	Filename string  `json:"filename"`
	Summary  *string `json:"summary"`
}

// PriorSummary is an earlier document's summary passed as prompt context.
type PriorSummary struct {
	Filename string
	Summary  string
}

// Note is a free-form note. Analyses are never stored on it.
type Note struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}
