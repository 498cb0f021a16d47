package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func buildRouter(s *stateStore) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.contentRedirectHandler)

	// Health/info
	r.Get("/healthz", healthzHandler)
	r.Get("/api/v1/app-info", s.appInfoHandler)

	// Update APIs
	r.Post("/api/v1/update/check", s.updateCheckHandler)

	return r
}
