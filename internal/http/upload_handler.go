package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/forgeline/internal/archive"
)

// MaxUploadSize bounds the JSON body of an invoice upload.
const MaxUploadSize = 10 << 20

type UploadHandler struct {
	archive *archive.Store
	timeout time.Duration
}

func NewUploadHandler(store *archive.Store, timeout time.Duration) *UploadHandler {
	return &UploadHandler{
		archive: store,
		timeout: timeout,
	}
}

type UploadRequestDTO struct {
	Document string `json:"document"`
	Filename string `json:"filename"`
}

type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

// POST /api/v1/invoices/upload
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)

	var req UploadRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	stored, err := h.archive.SaveEncoded(ctx, req.Filename, req.Document)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, UploadResponse{
		Success: true,
		Message: "PDF subido exitosamente",
		URL:     stored.URL,
	})
}

// GET /invoices/{name}
//
// Archived documents are only ever served as PDFs. Directory listings are
// not exposed.
func (h *UploadHandler) Documents() http.Handler {
	files := http.FileServer(http.Dir(h.archive.Dir()))
	return http.StripPrefix("/invoices/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	}))
}
