package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/breed-twin/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.deps.Profiles)
	matchHandler := handlers.NewMatchHandler(s.deps.Extractor, s.deps.Matcher, s.logger)
	breedsHandler := handlers.NewBreedsHandler(s.deps.Catalog, s.deps.Images, s.deps.Index, s.logger)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Get)

		// Matching
		r.Post("/features", matchHandler.Features)
		r.Post("/match", matchHandler.Match)
		r.Post("/suggestions", matchHandler.Suggestions)

		// Catalog
		r.Get("/breeds", breedsHandler.List)
		r.Get("/breeds/{name}/images", breedsHandler.Images)
		r.Get("/breeds/{name}/similar", breedsHandler.Similar)
	})

	s.router.NotFound(handlers.NotFound)
}
