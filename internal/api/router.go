package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates the HTTP router with all endpoints registered.
func NewRouter(db *sql.DB) (http.Handler, error) {
	docs, err := NewDocsHandler()
	if err != nil {
		return nil, err
	}

	beers := &BeersHandler{DB: db}
	health := &HealthHandler{DB: db}

	r := chi.NewRouter()
	r.Use(RequestLogger)
	r.Use(Metrics)

	// Documentation.
	r.Get("/", docs.Root)
	r.Get("/docs", docs.Index)
	r.Get("/openapi.json", docs.Spec)

	// Beer records.
	r.Post("/beer", beers.Create)
	r.Get("/beer", beers.Get)
	r.Delete("/beer", beers.Delete)
	r.Get("/beers", beers.List)

	// Operational endpoints.
	r.Get("/healthz", health.Check)
	r.Handle("/metrics", promhttp.Handler())

	return r, nil
}
