package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/room-reviews/internal/auth"
	"github.com/joestump/room-reviews/internal/log"
	"github.com/joestump/room-reviews/internal/metrics"
	"github.com/joestump/room-reviews/internal/policy"
	"github.com/joestump/room-reviews/internal/upload"
)

// uploadFormField is the multipart field carrying the file.
const uploadFormField = "imageUrl"

// multipartMemory is how much of a multipart body is buffered before spilling to disk.
const multipartMemory = 8 << 20

type uploadHandler struct {
	storage upload.Storage
	opts    UploadOptions
}

// Upload stores one file and returns its public path. Identity is checked
// before the body is read.
// POST /rooms/upload
//
// @Summary      Upload a room image
// @Tags         Rooms
// @Accept       multipart/form-data
// @Produce      json
// @Param        imageUrl  formData  file  true  "File to upload"
// @Success      200       {object}  UploadResponse
// @Failure      401       {object}  ErrorResponse
// @Failure      413       {object}  ErrorResponse
// @Failure      422       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Security     BearerToken
// @Router       /rooms/upload [post]
func (h *uploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := policy.RequireIdentity(auth.CallerFromContext(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if h.opts.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		if isTooLarge(err) {
			metrics.UploadsTotal.WithLabelValues("too_large").Inc()
			writeError(w, http.StatusRequestEntityTooLarge, "file too large", codeFileTooLarge)
			return
		}
		metrics.UploadsTotal.WithLabelValues("missing").Inc()
		writeError(w, http.StatusUnprocessableEntity, "no file was uploaded", codeFileRequired)
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("missing").Inc()
		writeError(w, http.StatusUnprocessableEntity, "no file was uploaded", codeFileRequired)
		return
	}
	defer file.Close()

	ref, err := h.storage.Save(r.Context(), header.Filename, file)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		writeServiceError(w, r, err)
		return
	}
	metrics.UploadsTotal.WithLabelValues("stored").Inc()
	log.Info(r.Context(), "file uploaded", log.String("ref", ref), log.Int64("bytes", header.Size))

	writeJSON(w, http.StatusOK, &UploadResponse{FilePath: h.publicPath(ref)})
}

// Serve streams a stored upload.
// GET /uploads/*
func (h *uploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "*")
	rc, err := h.storage.Open(r.Context(), ref)
	if errors.Is(err, upload.ErrNotFound) || errors.Is(err, upload.ErrInvalidRef) {
		writeError(w, http.StatusNotFound, "not found", codeNotFound)
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(ref))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		log.Warn(r.Context(), "stream upload", log.String("ref", ref), log.Cause(err))
	}
}

func (h *uploadHandler) publicPath(ref string) string {
	base := h.opts.PublicBaseURL
	if base == "" {
		base = "/uploads/"
	}
	return strings.TrimSuffix(base, "/") + "/" + ref
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}
