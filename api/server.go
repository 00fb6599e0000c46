/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address from proxy headers
  3. Logger:     Request logging through logrus
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/plants, /api/zones, /api/companies   Catalog lookups
  /api/employees/*                          Employee management
  /api/incident-types                       Configured incident types
  /api/incidents                            Capture and listing
  /api/matrix/week                          Weekly grid
  /api/consolidated/*                       Consolidated view (admin PIN)
  /api/charts/*                             Rankings
  /api/vacations/*                          Vacation reports
  /api/settings                             Active configuration

SECURITY NOTE:
  Only the consolidated routes are gated, by the ADMIN_PIN shared secret.
  When no PIN is configured they are open.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// PINHeader carries the admin PIN. The pin query parameter is accepted too,
// for download links.
const PINHeader = "X-Admin-PIN"

var errBadPIN = errors.New("admin PIN missing or incorrect")

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, origins []string) *chi.Mux {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: h.Log, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", PINHeader},
		ExposedHeaders: []string{"Content-Disposition"},
	}))

	r.Route("/api", func(r chi.Router) {
		// Catalog routes
		r.Get("/plants", h.ListPlants)
		r.Post("/plants", h.CreatePlant)
		r.Get("/zones", h.ListZones)
		r.Get("/companies", h.ListCompanies)

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.UpsertEmployee)
			r.Post("/import", h.ImportEmployees)
			r.Get("/{name}", h.GetEmployee)
		})

		// Incident routes
		r.Get("/incident-types", h.GetIncidentTypes)
		r.Put("/incident-types", h.UpdateIncidentTypes)

		r.Route("/incidents", func(r chi.Router) {
			r.Get("/", h.ListIncidents)
			r.Post("/", h.CreateIncident)
		})

		r.Route("/matrix", func(r chi.Router) {
			r.Get("/week", h.GetWeek)
			r.Put("/week", h.SaveWeek)
		})

		// Report routes
		r.Route("/consolidated", func(r chi.Router) {
			r.Use(h.RequirePIN)
			r.Get("/", h.GetConsolidated)
			r.Get("/export", h.ExportConsolidated)
		})

		r.Get("/charts/top", h.TopChart)

		r.Route("/vacations", func(r chi.Router) {
			r.Get("/", h.GetVacations)
			r.Get("/monthly", h.GetMonthlyVacations)
			r.Get("/alerts", h.GetVacationAlerts)
			r.Get("/export", h.ExportVacations)
		})

		r.Get("/settings", h.GetSettings)
	})

	return r
}

// RequirePIN rejects requests without the configured admin PIN.
func (h *Handler) RequirePIN(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.Config.PINEnabled() {
			next.ServeHTTP(w, r)
			return
		}

		pin := r.Header.Get(PINHeader)
		if pin == "" {
			pin = r.URL.Query().Get("pin")
		}
		if subtle.ConstantTimeCompare([]byte(pin), []byte(h.Config.AdminPIN)) != 1 {
			h.Log.WithField("path", r.URL.Path).Warn("Rejected admin request")
			h.writeError(w, http.StatusUnauthorized, "Unauthorized", errBadPIN)
			return
		}
		next.ServeHTTP(w, r)
	})
}
