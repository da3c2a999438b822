package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/command"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler and jr are optional; their routes are only mounted when non-nil.
func NewRouter(reg *command.Registry, origins []string, sseHandler http.Handler, jr Journal) chi.Router {
	h := NewHandler(reg, jr)

	r := chi.NewRouter()
	r.Use(CORSMiddleware(origins))

	r.Get("/commands", h.ListCommands)
	r.Post("/invoke/{command}", h.Invoke)

	if jr != nil {
		r.Get("/journal", h.Journal)
	}
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
