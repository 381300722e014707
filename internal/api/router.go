package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KoukeNeko/IPAC/internal/version"
)

// Routes constructs the chi router containing all API endpoints.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(a.config.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", headerActor, headerRole},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))

	r.Use(httprate.Limit(a.config.RateLimitPerMinute, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", a.handleReady)

	r.Method("GET", "/metrics", promhttp.Handler())

	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"name":    version.Name,
			"version": version.Version,
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(requireActor)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", a.handleListCategories)
			r.Get("/{id}", a.handleGetCategory)
			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/", a.handleCreateCategory)
				r.Put("/{id}", a.handleUpdateCategory)
				r.Delete("/{id}", a.handleDeleteCategory)
			})
		})

		r.Route("/attribute-definitions", func(r chi.Router) {
			r.Get("/", a.handleListDefinitions)
			r.Get("/{id}", a.handleGetDefinition)
			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/", a.handleCreateDefinition)
				r.Put("/{id}", a.handleUpdateDefinition)
				r.Delete("/{id}", a.handleDeleteDefinition)
			})
		})

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", a.handleListDevices)
			r.Get("/statistics", a.handleDeviceStatistics)
			r.Get("/search-by-ip", a.handleSearchByIP)
			r.Post("/", a.handleCreateDevice)
			r.Get("/{id}", a.handleGetDevice)
			r.Put("/{id}", a.handleUpdateDevice)
			r.Delete("/{id}", a.handleDeleteDevice)
			r.Get("/{id}/history", a.handleDeviceHistory)
		})

		r.Route("/network-records", func(r chi.Router) {
			r.Get("/", a.handleListNetworkRecords)
			r.Get("/check-ip", a.handleCheckIPAvailable)
			r.Post("/", a.handleCreateNetworkRecord)
			r.Get("/{id}", a.handleGetNetworkRecord)
			r.Put("/{id}", a.handleUpdateNetworkRecord)
			r.Delete("/{id}", a.handleDeleteNetworkRecord)
		})

		r.Get("/audit-entries", a.handleListAuditEntries)
	})

	return r
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	if a.store.DB == nil {
		respondError(w, http.StatusServiceUnavailable, errReadPoolUnavailable)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.store.DB.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
