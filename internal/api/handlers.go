package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notebook/internal/apperr"
	"github.com/starford/notebook/internal/notebook"
)

// User-facing messages.
const (
	welcomeMessage     = "Welcome to NotebookLM Clone API"
	msgFileTooLarge    = "파일 크기는 10MB를 초과할 수 없습니다"
	msgUnsupportedType = "지원하지 않는 파일 형식입니다. PDF 또는 텍스트 파일을 업로드해주세요."
	msgUploadFailed    = "An error occurred while processing the file: "
	msgSourceNotFound  = "Source not found"
	msgSourceNotFoundK = "문서를 찾을 수 없습니다"
	msgNoteNotFound    = "노트를 찾을 수 없습니다"
	msgQueryRequired   = "query parameter 'q' is required"
)

// Multipart framing allowance on top of the file size limit.
const multipartSlack = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *notebook.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *notebook.Service) *Handler {
	return &Handler{svc: svc}
}

// Root handles GET /.
//
//	@Summary	Service info
//	@Tags		info
//	@Produce	json
//	@Success	200	{object}	MessageResponse
//	@Router		/ [get]
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: welcomeMessage})
}

// Question handles GET /get_question.
//
//	@Summary	Service info
//	@Tags		info
//	@Produce	json
//	@Success	200	{object}	MessageResponse
//	@Router		/get_question [get]
func (h *Handler) Question(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: welcomeMessage})
}

// Upload handles POST /upload/ (multipart/form-data, field "file").
//
//	@Summary		Upload a PDF or text document
//	@Tags			sources
//	@Accept			mpfd
//	@Produce		json
//	@Param			file	formData	file	true	"Document"
//	@Success		200		{object}	UploadResponse
//	@Failure		400		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Router			/upload/ [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := int64(h.svc.MaxUploadBytes())
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartSlack)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, msgFileTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "missing 'file' field in multipart form")
		return
	}
	defer file.Close()

	// One byte past the limit is enough for the service to reject it.
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		slog.Error("read upload failed", slog.String("filename", header.Filename), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, msgUploadFailed+err.Error())
		return
	}

	res, err := h.svc.Upload(r.Context(), header.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrFileTooLarge):
			writeError(w, http.StatusBadRequest, msgFileTooLarge)
		case errors.Is(err, apperr.ErrUnsupportedType):
			writeError(w, http.StatusBadRequest, msgUnsupportedType)
		case errors.Is(err, apperr.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("upload failed", slog.String("filename", header.Filename), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, msgUploadFailed+err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListSources handles GET /sources/.
//
//	@Summary	List uploaded sources
//	@Tags		sources
//	@Produce	json
//	@Success	200	{array}	Source
//	@Router		/sources/ [get]
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListSources(r.Context()))
}

// GetSource handles GET /sources/{id}.
//
//	@Summary	Get a source by id
//	@Tags		sources
//	@Produce	json
//	@Param		id	path		string	true	"Source id"
//	@Success	200	{object}	Source
//	@Failure	404	{object}	detailResponse
//	@Router		/sources/{id} [get]
func (h *Handler) GetSource(w http.ResponseWriter, r *http.Request) {
	src, err := h.svc.GetSource(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusNotFound, msgSourceNotFound)
		return
	}
	writeJSON(w, http.StatusOK, src)
}

// DeleteSource handles DELETE /sources/{id}.
//
//	@Summary	Delete a source and its stored file
//	@Tags		sources
//	@Produce	json
//	@Param		id	path		string	true	"Source id"
//	@Success	200	{object}	DeleteResponse
//	@Failure	404	{object}	detailResponse
//	@Failure	500	{object}	detailResponse
//	@Router		/sources/{id} [delete]
func (h *Handler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.svc.DeleteSource(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, msgSourceNotFoundK)
		} else {
			slog.Error("delete source failed", slog.String("id", id), slog.String("error", err.Error()))
			writeDetail(w, http.StatusInternalServerError, "문서 삭제 중 오류가 발생했습니다: "+err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Summaries handles GET /summaries/.
//
//	@Summary	Individual and combined summaries
//	@Tags		sources
//	@Produce	json
//	@Success	200	{object}	SummariesResponse
//	@Router		/summaries/ [get]
func (h *Handler) Summaries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Summaries(r.Context()))
}

// CreateNote handles POST /notes/.
//
//	@Summary	Create a note
//	@Tags		notes
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateNoteRequest	true	"Note to create"
//	@Success	200		{object}	Note
//	@Failure	400		{object}	errResponse
//	@Router		/notes/ [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	note := h.svc.CreateNote(r.Context(), *req.Title, *req.Content, req.Tags)
	writeJSON(w, http.StatusOK, note)
}

// ListNotes handles GET /notes/.
//
//	@Summary	List notes
//	@Tags		notes
//	@Produce	json
//	@Success	200	{array}	Note
//	@Router		/notes/ [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListNotes(r.Context()))
}

// GetNote handles GET /notes/{id}.
//
//	@Summary	Get a note by id
//	@Tags		notes
//	@Produce	json
//	@Param		id	path		string	true	"Note id"
//	@Success	200	{object}	Note
//	@Failure	404	{object}	detailResponse
//	@Router		/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.GetNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusNotFound, msgNoteNotFound)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// AnalyzeNote handles POST /notes/{id}/analyze.
//
//	@Summary	Analyze a note with the LLM
//	@Tags		notes
//	@Produce	json
//	@Param		id	path		string	true	"Note id"
//	@Success	200	{object}	AnalysisResponse
//	@Failure	404	{object}	detailResponse
//	@Failure	500	{object}	detailResponse
//	@Router		/notes/{id}/analyze [post]
func (h *Handler) AnalyzeNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	analysis, err := h.svc.AnalyzeNote(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, msgNoteNotFound)
		} else {
			slog.Error("analyze note failed", slog.String("id", id), slog.String("error", err.Error()))
			writeDetail(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, AnalysisResponse{Analysis: analysis})
}

// Search handles GET /search.
//
//	@Summary	Full-text search across sources and notes
//	@Tags		search
//	@Produce	json
//	@Param		q		query		string	true	"Search query"
//	@Param		limit	query		int		false	"Max results"
//	@Success	200		{object}	SearchResponse
//	@Failure	400		{object}	errResponse
//	@Router		/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if errors.Is(err, apperr.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, msgQueryRequired)
		return
	}
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
