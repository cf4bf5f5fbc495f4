package api

import (
	"net/http"
	"net/url"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notebook/internal/storage"
)

// UploadHandler serves persisted upload bytes read-only.
type UploadHandler struct {
	files storage.Provider
}

// NewUploadHandler creates a handler over the upload store.
func NewUploadHandler(files storage.Provider) *UploadHandler {
	return &UploadHandler{files: files}
}

// ServeFile handles GET /uploads/{filename}.
func (h *UploadHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	abs, err := h.files.Path(uploadName(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filename")
		return
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		writeDetail(w, http.StatusNotFound, "Not Found")
		return
	}
	http.ServeFile(w, r, abs)
}

// uploadName returns the decoded {filename} param. chi matches on RawPath
// when one is set, so escapes like %20 can reach the handler intact.
func uploadName(r *http.Request) string {
	raw := chi.URLParam(r, "filename")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}
