package httpapi

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/vehicle-api/internal/dataset"
	"github.com/yourorg/vehicle-api/internal/export"
)

type ExportDeps struct {
	Snapshot *dataset.Snapshot
	Exporter *export.Exporter
}

// RegisterExport serves the current dataset as a downloadable JSON or CSV
// file. The file is also written under the exporter's directory so batch
// consumers can pick it up later.
func RegisterExport(r chi.Router, d ExportDeps) {
	r.Get("/api/export/{format}", func(w http.ResponseWriter, req *http.Request) {
		format := chi.URLParam(req, "format")
		listings := d.Snapshot.Listings()

		var path string
		var err error
		switch format {
		case "json":
			path, err = d.Exporter.SaveJSON(listings, "")
		case "csv":
			path, err = d.Exporter.SaveCSV(listings, "")
		default:
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "unsupported_format", "detail": "use json or csv"})
			return
		}
		if err != nil {
			render.Status(req, http.StatusInternalServerError)
			render.JSON(w, req, map[string]any{"error": "export_failed", "detail": err.Error()})
			return
		}
		log.Printf("[INFO] exported %d vehicles to %s", len(listings), path)
		http.ServeFile(w, req, path)
	})
}
