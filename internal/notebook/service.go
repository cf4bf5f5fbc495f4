// Package notebook orchestrates uploads, summaries, and notes on top of the
// in-memory stores, the upload directory, and the LLM gateway.
package notebook

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/notebook/internal/apperr"
	"github.com/starford/notebook/internal/extract"
	"github.com/starford/notebook/internal/index"
	"github.com/starford/notebook/internal/models"
	"github.com/starford/notebook/internal/parser"
	"github.com/starford/notebook/internal/sse"
	"github.com/starford/notebook/internal/storage"
	"github.com/starford/notebook/internal/store"
	"github.com/starford/notebook/internal/summarizer"
)

// DefaultMaxUploadBytes is the largest accepted upload (10 MiB).
const DefaultMaxUploadBytes = 10 << 20

// DeletedMessage is returned after a source is removed.
const DeletedMessage = "문서가 성공적으로 삭제되었습니다"

// Summarizer is the LLM capability the service depends on.
type Summarizer interface {
	Summarize(ctx context.Context, text, label string, prior []models.PriorSummary) summarizer.Result
	Analyze(ctx context.Context, title, content string) (string, error)
}

// Publisher receives change notifications.
type Publisher interface {
	PublishChange(kind, id string)
}

// Observer receives upload metrics.
type Observer interface {
	ObserveUpload(status string)
	SetSources(n int)
}

// UploadResult is the response payload for a successful upload.
type UploadResult struct {
	ID              string                `json:"id"`
	Filename        string                `json:"filename"`
	UploadDate      time.Time             `json:"upload_date"`
	FileType        string                `json:"file_type"`
	Summary         *string               `json:"summary"`
	CombinedSummary *string               `json:"combined_summary"`
	AllSummaries    []models.SummaryEntry `json:"all_summaries"`
}

// DeleteResult is the response payload for a source deletion.
type DeleteResult struct {
	Message         string                `json:"message"`
	CombinedSummary *string               `json:"combined_summary"`
	AllSummaries    []models.SummaryEntry `json:"all_summaries"`
}

// SummariesView lists every individual summary plus the combined one.
type SummariesView struct {
	IndividualSummaries []models.SummaryEntry `json:"individual_summaries"`
	CombinedSummary     *string               `json:"combined_summary"`
}

// Service coordinates stores, file storage, search index and the LLM.
type Service struct {
	sources  *store.Sources
	notes    *store.Notes
	llm      Summarizer
	files    storage.Provider
	index    index.Searcher
	events   Publisher
	observer Observer
	logger   *slog.Logger
	maxBytes int
}

// Option configures a Service.
type Option func(*Service)

// WithIndex enables search indexing of sources and notes.
func WithIndex(idx index.Searcher) Option {
	return func(s *Service) { s.index = idx }
}

// WithEvents publishes changes to p.
func WithEvents(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithObserver reports upload metrics to o.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMaxUploadBytes overrides the upload size limit.
func WithMaxUploadBytes(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// NewService creates a service with empty stores.
func NewService(llm Summarizer, files storage.Provider, opts ...Option) *Service {
	s := &Service{
		sources:  store.NewSources(),
		notes:    store.NewNotes(),
		llm:      llm,
		files:    files,
		logger:   slog.Default(),
		maxBytes: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxUploadBytes returns the configured upload size limit.
func (s *Service) MaxUploadBytes() int {
	return s.maxBytes
}

// Upload validates and extracts the file, summarizes it with earlier
// summaries as context, stores it, recomputes the combined summary and
// persists the raw bytes.
//
// Nothing is stored unless extraction succeeds. A failed combined summary
// or a failed byte write does not fail the upload. Summarization outlives
// the caller's context; only the LLM timeout bounds it.
func (s *Service) Upload(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	res, err := s.upload(ctx, filename, data)
	if s.observer != nil {
		switch {
		case err == nil:
			s.observer.ObserveUpload("ok")
			s.observer.SetSources(s.sources.Len())
		case isValidation(err):
			s.observer.ObserveUpload("rejected")
		default:
			s.observer.ObserveUpload("error")
		}
	}
	return res, err
}

func (s *Service) upload(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	if filename == "" {
		return nil, fmt.Errorf("filename is required: %w", apperr.ErrInvalidInput)
	}
	if len(data) > s.maxBytes {
		return nil, fmt.Errorf("upload %s is %d bytes: %w", filename, len(data), apperr.ErrFileTooLarge)
	}
	fileType := extract.DetectType(filename)
	if !extract.Supported(fileType) {
		return nil, fmt.Errorf("upload %s as %s: %w", filename, fileType, apperr.ErrUnsupportedType)
	}

	text, err := extract.Text(fileType, data)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}

	llmCtx := context.WithoutCancel(ctx)
	summary := s.llm.Summarize(llmCtx, text, filename, s.sources.PriorSummaries()).Value()
	src := s.sources.Add(models.Source{
		Filename:   filename,
		Content:    text,
		UploadDate: time.Now(),
		FileType:   fileType,
		Summary:    &summary,
	})

	s.recomputeCombined(llmCtx)

	if err := s.files.Write(src.StoredName(), data); err != nil {
		s.logger.Warn("persist upload failed",
			slog.String("id", src.ID),
			slog.String("filename", filename),
			slog.String("error", err.Error()))
	}

	meta := parser.Parse(text)
	title := meta.Title
	if title == "" {
		title = filename
	}
	s.indexDoc(index.Doc{
		Kind:      index.KindSource,
		ID:        src.ID,
		Title:     title,
		Tags:      meta.Tags,
		Body:      text,
		UpdatedAt: src.UploadDate,
	})
	s.publish(sse.SourceCreated, src.ID)

	s.logger.Info("source uploaded",
		slog.String("id", src.ID),
		slog.String("filename", filename),
		slog.String("file_type", fileType),
		slog.Int("bytes", len(data)))

	return &UploadResult{
		ID:              src.ID,
		Filename:        src.Filename,
		UploadDate:      src.UploadDate,
		FileType:        src.FileType,
		Summary:         src.Summary,
		CombinedSummary: s.sources.Combined(),
		AllSummaries:    s.sources.Summaries(),
	}, nil
}

// recomputeCombined rebuilds the combined summary from every current source.
func (s *Service) recomputeCombined(ctx context.Context) {
	snap := s.sources.CombinedInput()
	res := s.llm.Summarize(ctx, snap.Text, summarizer.CombinedLabel, nil)
	if res.Failed() {
		kept := !s.sources.FailCombined(snap.Rev, summarizer.FallbackCombined)
		s.logger.Warn("combined summary failed",
			slog.Int("sources", snap.Size),
			slog.Bool("kept_previous", kept),
			slog.String("failure", res.Failure.String()))
		return
	}
	s.sources.ApplyCombined(snap.Rev, res.Text)
}

// ListSources returns every source in upload order.
func (s *Service) ListSources(_ context.Context) []models.Source {
	return nonNilSlice(s.sources.List())
}

// GetSource returns one source by id.
func (s *Service) GetSource(_ context.Context, id string) (models.Source, error) {
	return s.sources.Get(id)
}

// DeleteSource removes a source and its persisted bytes. The combined
// summary is left as-is unless no sources remain.
func (s *Service) DeleteSource(_ context.Context, id string) (*DeleteResult, error) {
	src, err := s.sources.Remove(id)
	if err != nil {
		return nil, err
	}

	if err := s.files.Delete(src.StoredName()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("delete upload failed",
			slog.String("id", src.ID),
			slog.String("filename", src.Filename),
			slog.String("error", err.Error()))
	}
	if s.index != nil {
		if err := s.index.Delete(index.KindSource, src.ID); err != nil {
			s.logger.Warn("unindex source failed", slog.String("id", src.ID), slog.String("error", err.Error()))
		}
	}
	if s.observer != nil {
		s.observer.SetSources(s.sources.Len())
	}
	s.publish(sse.SourceDeleted, src.ID)

	return &DeleteResult{
		Message:         DeletedMessage,
		CombinedSummary: s.sources.Combined(),
		AllSummaries:    s.sources.Summaries(),
	}, nil
}

// Summaries returns every individual summary and the combined summary.
func (s *Service) Summaries(_ context.Context) SummariesView {
	return SummariesView{
		IndividualSummaries: s.sources.Summaries(),
		CombinedSummary:     s.sources.Combined(),
	}
}

// CreateNote stores a new note and returns it with its assigned id.
func (s *Service) CreateNote(_ context.Context, title, content string, tags []string) models.Note {
	n := s.notes.Add(models.Note{Title: title, Content: content, Tags: tags})
	s.indexDoc(index.Doc{
		Kind:  index.KindNote,
		ID:    n.ID,
		Title: n.Title,
		Tags:  parser.MergeTags(n.Tags, parser.Parse(n.Content).Tags),
		Body:  n.Content,
	})
	s.publish(sse.NoteCreated, n.ID)
	return n
}

// ListNotes returns every note in creation order.
func (s *Service) ListNotes(_ context.Context) []models.Note {
	return nonNilSlice(s.notes.List())
}

// GetNote returns one note by id.
func (s *Service) GetNote(_ context.Context, id string) (models.Note, error) {
	return s.notes.Get(id)
}

// AnalyzeNote asks the LLM to analyze a note. The analysis is not stored.
func (s *Service) AnalyzeNote(ctx context.Context, id string) (string, error) {
	n, err := s.notes.Get(id)
	if err != nil {
		return "", err
	}
	return s.llm.Analyze(ctx, n.Title, n.Content)
}

// Search looks up sources and notes by text. It returns no results when
// indexing is disabled.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required: %w", apperr.ErrInvalidInput)
	}
	if s.index == nil {
		return []index.SearchResult{}, nil
	}
	res, err := s.index.Search(query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(res), nil
}

// HandleFileEvent reacts to out-of-band changes in the upload directory.
// A removed file that still belongs to a source is reported; the in-memory
// record stays.
func (s *Service) HandleFileEvent(kind, name string) {
	if kind != storage.EventRemoved {
		return
	}
	for _, src := range s.sources.List() {
		if src.StoredName() == name {
			s.logger.Warn("upload file removed out-of-band",
				slog.String("id", src.ID),
				slog.String("name", name))
			s.publish(sse.SourceFileMissing, src.ID)
			return
		}
	}
}

func (s *Service) indexDoc(d index.Doc) {
	if s.index == nil {
		return
	}
	if err := s.index.Upsert(d); err != nil {
		s.logger.Warn("index failed",
			slog.String("kind", d.Kind),
			slog.String("id", d.ID),
			slog.String("error", err.Error()))
	}
}

func (s *Service) publish(kind, id string) {
	if s.events != nil {
		s.events.PublishChange(kind, id)
	}
}

func isValidation(err error) bool {
	return errors.Is(err, apperr.ErrInvalidInput) ||
		errors.Is(err, apperr.ErrFileTooLarge) ||
		errors.Is(err, apperr.ErrUnsupportedType)
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
