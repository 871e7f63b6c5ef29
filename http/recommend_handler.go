package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/vehicle-api/internal/dataset"
	"github.com/yourorg/vehicle-api/internal/recommend"
	"github.com/yourorg/vehicle-api/internal/redisx"
	"github.com/yourorg/vehicle-api/internal/vehicle"
)

type RecommendDeps struct {
	Snapshot *dataset.Snapshot
	Ranker   *recommend.Ranker
	Redis    *redisx.Client
	CacheTTL time.Duration
}

// RegisterRecommendations wires the preference-ranked recommendation
// endpoint. Responses are cached in Redis per preference set, keyed off the
// dataset generation so a reprocess invalidates naturally.
func RegisterRecommendations(r chi.Router, d RecommendDeps) {
	r.Post("/api/recommendations", func(w http.ResponseWriter, req *http.Request) {
		var prefs vehicle.Preferences
		if err := json.NewDecoder(req.Body).Decode(&prefs); err != nil {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "invalid_json", "detail": err.Error()})
			return
		}
		handleRecommendations(w, req, d, prefs)
	})
}

func handleRecommendations(w http.ResponseWriter, req *http.Request, d RecommendDeps, prefs vehicle.Preferences) {
	ctx := req.Context()
	cacheKey := recommendCacheKey(prefs, d.Snapshot.UpdatedAt())

	if d.Redis != nil {
		var cached []vehicle.Recommendation
		if hit, err := d.Redis.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			render.JSON(w, req, map[string]any{
				"ok":              true,
				"source":          "cache",
				"count":           len(cached),
				"recommendations": cached,
			})
			return
		}
	}

	recs := d.Ranker.Rank(d.Snapshot.Listings(), prefs)

	if d.Redis != nil {
		ttl := d.CacheTTL
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		if err := d.Redis.SetJSON(ctx, cacheKey, recs, ttl); err != nil {
			log.Printf("[WARN] recommendation cache write failed: %v", err)
		}
	}

	render.JSON(w, req, map[string]any{
		"ok":              true,
		"source":          "fresh",
		"count":           len(recs),
		"recommendations": recs,
	})
}

func recommendCacheKey(prefs vehicle.Preferences, generation time.Time) string {
	b, _ := json.Marshal(prefs)
	sum := sha256.Sum256(append(b, []byte(generation.Format(time.RFC3339Nano))...))
	return "rec:" + hex.EncodeToString(sum[:])[:24]
}
