package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, health *HealthChecker, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", SessionHeader},
		ExposedHeaders:   []string{SessionHeader, "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if health != nil {
		r.Get("/health", health.HandleHealth)
		r.Get("/health/live", health.HandleLiveness)
		r.Get("/health/ready", health.HandleReadiness)
	} else {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"healthy"}`))
		})
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(withSession)

		r.Route("/campaigns/{campaignID}", func(r chi.Router) {
			r.Get("/summary", h.HandleSummary)
			r.Get("/watchlists", h.HandleWatchlists)
			r.Get("/roster", h.HandleRoster)
			r.Get("/roster/export", h.HandleRosterExport)
			r.Post("/drafts", h.HandleOpenDraft)
			r.Post("/resolutions", h.HandleResolve)
			r.Post("/snoozes", h.HandleSnooze)
		})

		r.Route("/drafts/{draftID}", func(r chi.Router) {
			r.Get("/", h.HandleGetDraft)
			r.Patch("/", h.HandleUpdateDraft)
			r.Delete("/", h.HandleCloseDraft)
			r.Post("/send", h.HandleSendDraft)
		})
	})

	return r
}
