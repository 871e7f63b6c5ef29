package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/vehicle-api/internal/dataset"
	"github.com/yourorg/vehicle-api/internal/hydrator"
	"github.com/yourorg/vehicle-api/internal/pipeline"
	"github.com/yourorg/vehicle-api/internal/vehicle"
)

type ProcessDeps struct {
	Processor *pipeline.Processor
	Snapshot  *dataset.Snapshot
	Hydrator  *hydrator.Hydrator
}

type ProcessRequest struct {
	Listings []vehicle.Listing `json:"listings"`
	// Replace controls whether the processed batch becomes the served
	// dataset (default) or is only returned to the caller.
	Replace *bool `json:"replace,omitempty"`
}

// RegisterProcess wires the processing endpoint: raw listings in, merged and
// scored vehicles out.
func RegisterProcess(r chi.Router, d ProcessDeps) {
	r.Post("/api/process", func(w http.ResponseWriter, req *http.Request) {
		var body ProcessRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "invalid_json", "detail": err.Error()})
			return
		}

		merged := d.Processor.Process(body.Listings)

		if body.Replace == nil || *body.Replace {
			d.Snapshot.Replace(merged)
		}
		persistMerged(req.Context(), d.Hydrator, merged)

		render.JSON(w, req, map[string]any{
			"ok":            true,
			"raw_count":     len(body.Listings),
			"vehicle_count": len(merged),
			"vehicles":      merged,
		})
	})
}
