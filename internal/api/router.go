// Package api exposes the email dispatch service over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter wires the middleware chain, the health endpoint and the
// API-key-protected dispatch routes.
func NewRouter(h *Handler, apiKey string, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recover(log))
	r.Use(Logging(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(APIKey(apiKey))
		h.Routes(r)
	})

	return r
}
