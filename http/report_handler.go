package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/vehicle-api/internal/dataset"
	"github.com/yourorg/vehicle-api/internal/stats"
	"github.com/yourorg/vehicle-api/internal/validate"
)

type ReportDeps struct {
	Snapshot *dataset.Snapshot
}

// RegisterReports wires the dataset audit endpoints: the cross-referencing
// validation report and aggregate statistics.
func RegisterReports(r chi.Router, d ReportDeps) {
	r.Get("/api/validation", func(w http.ResponseWriter, req *http.Request) {
		report := validate.Report(d.Snapshot.Listings())
		render.JSON(w, req, report)
	})

	r.Get("/api/statistics", func(w http.ResponseWriter, req *http.Request) {
		summary := stats.Compute(d.Snapshot.Listings())
		render.JSON(w, req, summary)
	})
}
