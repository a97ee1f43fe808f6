package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/norland/catena/internal/catalogservice"
	"github.com/norland/catena/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// broker, if non-nil, backs merge event broadcasts and is mounted at
// GET /events inside the auth group.
func NewRouter(svc *catalogservice.Service, authEnabled bool, token string, broker *sse.Broker) chi.Router {
	h := NewHandler(svc, broker)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Catalog templates.
	r.Get("/templates", h.ListTemplates)
	r.Post("/templates", h.CreateTemplate)
	r.Get("/templates/*", h.GetTemplate)
	r.Delete("/templates/*", h.DeleteTemplate)

	// Search and categories.
	r.Get("/search", h.Search)
	r.Get("/categories", h.Categories)

	// Merge pipeline.
	r.Post("/merge", h.Merge)
	r.Get("/catalog", h.Catalog)

	// SSE endpoint (protected by same auth middleware).
	if broker != nil {
		r.Get("/events", broker.ServeHTTP)
	}

	return r
}
