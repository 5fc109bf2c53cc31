package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
)

// netlifyPrefix is the path the gallery functions were originally deployed under
const netlifyPrefix = "/.netlify/functions"

// NewRouter wires the gallery handler behind the standard middleware stack.
// A nil logger disables request logging.
func NewRouter(h *GalleryHandler, logger *httplog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if logger != nil {
		r.Use(httplog.RequestLogger(logger, []string{"/health"}))
	}
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware())
	r.Use(AllowAllOrigins)

	r.Get("/health", h.Health)
	r.Mount("/", h.Routes())

	// Deployment aliases
	r.Get(netlifyPrefix+"/github-list", h.ListImages)
	r.Post(netlifyPrefix+"/github-upload", h.UploadImage)
	r.Post(netlifyPrefix+"/github-download", h.DownloadImage)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Not found", "")
	})

	return r
}
