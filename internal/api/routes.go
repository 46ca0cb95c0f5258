package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RegisterRoutes sets up all the API endpoints and middleware for the application.
func (s *Server) RegisterRoutes(r *chi.Mux) {
	// --- Global Middleware (Applied to ALL routes) ---
	r.Use(middleware.Logger)    // Logs incoming requests
	r.Use(middleware.Recoverer) // Recovers from panics and returns a 500 error

	origins := []string{"http://localhost:5173", "http://localhost:3000"}
	if s.config.FrontendURL != "" {
		origins = append(origins, s.config.FrontendURL)
	}

	// --- REST API Group with CORS ---
	// All routes defined within this group will be prefixed with "/api/v1".
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Client-ID"},
			AllowCredentials: true,
			MaxAge:           300, // How long the browser can cache preflight results
		}))
		r.Use(s.clientMiddleware)

		// Progress stream for long computations.
		r.Get("/progress/stream", s.handleProgressStream)

		// Activity Routes
		r.Get("/activities", s.handleListActivities)
		r.Post("/activities/import", s.handleImport)
		r.Post("/activities/manual", s.handleManualActivity)
		r.Post("/activities/send", s.handleSendActivity)
		r.Route("/activities/{activityID}", func(r chi.Router) {
			r.Get("/", s.handleGetActivity)
			r.Patch("/", s.handleEditActivity)
			r.Delete("/", s.handleDeleteActivity)
			r.Get("/curve", s.handleCurve)
			r.Get("/splits", s.handleSplits)
			r.Get("/zones", s.handleZones)
			r.Get("/graph", s.handleGraph)
			r.Get("/matching", s.handleMatching)
			r.Get("/route.gpx", s.handleRouteGPX)
		})

		// Summary Routes
		r.Get("/summary/totals", s.handleTotals)
		r.Get("/summary/progression", s.handleProgression)
		r.Get("/summary/records", s.handleRecords)
		r.Get("/summary/eddington", s.handleEddington)
		r.Get("/summary/routes", s.handleRoutes)
		r.Get("/summary/photos", s.handlePhotos)

		// Sync Routes
		r.Get("/sync/{service}/{activityID}", s.handleGetSync)
		r.Put("/sync/{service}/{activityID}", s.handlePutSync)
	})
}
