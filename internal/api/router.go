package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joestump/room-reviews/internal/auth"
	"github.com/joestump/room-reviews/internal/log"
	"github.com/joestump/room-reviews/internal/service"
	"github.com/joestump/room-reviews/internal/store"
	"github.com/joestump/room-reviews/internal/upload"
)

// UploadOptions configures the upload endpoints.
type UploadOptions struct {
	// MaxBytes caps the multipart request body.
	MaxBytes int64
	// PublicBaseURL is prepended to a stored ref to form the returned filePath.
	PublicBaseURL string
}

// Deps holds all dependencies required to build the API router.
type Deps struct {
	Auth          *auth.Middleware
	Rooms         *service.RoomService
	Reviews       *service.ReviewService
	Users         store.UserStore
	Uploads       upload.Storage
	UploadOptions UploadOptions
}

// NewRouter builds the full HTTP surface.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.AccessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	uploads := &uploadHandler{storage: deps.Uploads, opts: deps.UploadOptions}
	r.Get("/uploads/*", uploads.Serve)

	r.Group(func(r chi.Router) {
		r.Use(jsonContentType)
		registerRoomRoutes(r, deps.Rooms, deps.Auth, uploads)
		registerReviewRoutes(r, deps.Reviews, deps.Auth)
		registerAdminRoutes(r, deps.Users, deps.Auth)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found", codeNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "METHOD_NOT_ALLOWED")
	})
	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
