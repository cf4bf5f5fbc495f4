package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notebook/internal/index"
	"github.com/starford/notebook/internal/models"
	"github.com/starford/notebook/internal/notebook"
)

// CreateNoteRequest is the request body for creating a note.
// Title and content must be present; empty strings are accepted.
type CreateNoteRequest struct {
	Title   *string  `json:"title" example:"회의 메모" validate:"required"`
	Content *string  `json:"content" example:"다음 주 배포 일정 정리" validate:"required"`
	Tags    []string `json:"tags" example:"meeting,release"`
}

// Validate checks that the required fields were sent.
func (r CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NotNil),
		validation.Field(&r.Content, validation.NotNil),
	)
}

// Source is the full source response type (aliased from the domain layer).
type Source = models.Source

// Note is the note response type (aliased from the domain layer).
type Note = models.Note

// UploadResponse is returned after a successful upload.
type UploadResponse = notebook.UploadResult

// DeleteResponse is returned after a source is deleted.
type DeleteResponse = notebook.DeleteResult

// SummariesResponse lists individual and combined summaries.
type SummariesResponse = notebook.SummariesView

// AnalysisResponse wraps a note analysis.
type AnalysisResponse struct {
	Analysis string `json:"analysis" example:"📌 핵심 요약..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// MessageResponse is the static payload of the info endpoints.
type MessageResponse struct {
	Message string `json:"message" example:"Welcome to NotebookLM Clone API" validate:"required"`
}
