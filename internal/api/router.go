package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notebook/internal/notebook"
	"github.com/starford/notebook/internal/storage"
)

// NewRouter creates a chi router with all notebook routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
// files is the upload store persisted bytes are served from.
func NewRouter(svc *notebook.Service, files storage.Provider, corsOrigins []string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)
	uh := NewUploadHandler(files)

	r := chi.NewRouter()
	r.Use(CORSMiddleware(corsOrigins))

	// Info.
	r.Get("/", h.Root)
	r.Get("/get_question", h.Question)

	// Sources.
	r.Post("/upload/", h.Upload)
	r.Get("/sources/", h.ListSources)
	r.Get("/sources/{id}", h.GetSource)
	r.Delete("/sources/{id}", h.DeleteSource)
	r.Get("/summaries/", h.Summaries)

	// Notes.
	r.Post("/notes/", h.CreateNote)
	r.Get("/notes/", h.ListNotes)
	r.Get("/notes/{id}", h.GetNote)
	r.Post("/notes/{id}/analyze", h.AnalyzeNote)

	// Search.
	r.Get("/search", h.Search)

	// Persisted upload bytes.
	r.Get("/uploads/{filename}", uh.ServeFile)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
