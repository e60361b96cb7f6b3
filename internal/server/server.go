package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ytget/yt-download-server/internal/job"
	"github.com/ytget/yt-download-server/internal/media"
)

// Server exposes the job engine over HTTP.
type Server struct {
	registry       *job.Registry
	prober         media.Prober
	streamInterval time.Duration
}

// New creates a server around an existing registry. streamInterval is
// the poll cadence of the progress feed.
func New(registry *job.Registry, prober media.Prober, streamInterval time.Duration) *Server {
	return &Server{
		registry:       registry,
		prober:         prober,
		streamInterval: streamInterval,
	}
}

// Router builds the HTTP handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/probe", s.handleProbe)
		r.Post("/jobs", s.handleCreateJob)
		r.Get("/jobs/{id}", s.handleGetJob)
		r.Delete("/jobs/{id}", s.handleCancelJob)
		r.Get("/stream/{id}", s.handleStream)
	})

	return r
}
