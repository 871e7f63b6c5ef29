package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/vehicle-api/internal/dataset"
	"github.com/yourorg/vehicle-api/internal/recommend"
	"github.com/yourorg/vehicle-api/internal/vehicle"
)

type SearchDeps struct {
	Snapshot *dataset.Snapshot
}

func RegisterSearch(r chi.Router, d SearchDeps) {
	// POST: JSON body
	r.Post("/api/search", func(w http.ResponseWriter, req *http.Request) {
		var body vehicle.Filters
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "invalid_json", "detail": err.Error()})
			return
		}
		handleSearchRequest(w, req, d, body)
	})

	// GET: query params (compatibility)
	r.Get("/api/search", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		var body vehicle.Filters
		body.Make = q.Get("make")
		body.Model = q.Get("model")
		body.FuelType = q.Get("fuel_type")
		body.Transmission = q.Get("transmission")
		body.Location = q.Get("location")
		if v := q.Get("year_min"); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				body.YearMin = i
			}
		}
		if v := q.Get("year_max"); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				body.YearMax = i
			}
		}
		if v := q.Get("price_min"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				body.PriceMin = f
			}
		}
		if v := q.Get("price_max"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				body.PriceMax = f
			}
		}
		handleSearchRequest(w, req, d, body)
	})
}

func handleSearchRequest(w http.ResponseWriter, req *http.Request, d SearchDeps, filters vehicle.Filters) {
	results := recommend.Filter(d.Snapshot.Listings(), filters)
	render.JSON(w, req, map[string]any{
		"ok":       true,
		"count":    len(results),
		"vehicles": results,
	})
}
