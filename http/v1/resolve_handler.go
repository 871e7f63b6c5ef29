package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/antzucaro/matchr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/vehicle-api/internal/canon"
	"github.com/yourorg/vehicle-api/internal/dataset"
	"github.com/yourorg/vehicle-api/internal/redisx"
	"github.com/yourorg/vehicle-api/internal/store"
	"github.com/yourorg/vehicle-api/internal/vehicle"
)

type ResolveDeps struct {
	Redis      *redisx.Client
	Store      *store.Store
	Snapshot   *dataset.Snapshot
	Normalizer *canon.Normalizer
	// Refetch is the fire-and-forget hook invoked when a cached record has
	// gone stale.
	Refetch func(vehicleKey string)
	// KnownBrands feeds the fuzzy suggestions returned on a miss.
	KnownBrands []string
	// TTL and staleness tuning
	CacheTTL    time.Duration
	StaleAfter  time.Duration
	NegativeTTL time.Duration
}

type ResolveRequest struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}

type cachedEnvelope struct {
	Data vehicle.MergedListing `json:"data"`
	Meta struct {
		LastFetch  time.Time `json:"last_fetch_at"`
		StaleAfter time.Time `json:"stale_after"`
		TTLSeconds int       `json:"ttl_seconds"`
		Source     string    `json:"source"`
	} `json:"meta"`
	Norm struct {
		Make  string `json:"make"`
		Model string `json:"model"`
		Year  int    `json:"year"`
	} `json:"normalized"`
}

func RegisterResolve(r chi.Router, d ResolveDeps) {
	r.Route("/v1/vehicles", func(r chi.Router) {
		r.Post("/resolve", func(w http.ResponseWriter, req *http.Request) {
			var body ResolveRequest
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				render.Status(req, http.StatusBadRequest)
				render.JSON(w, req, map[string]any{"error": "invalid_json", "detail": err.Error()})
				return
			}
			resolve(w, req, d, body)
		})
		r.Get("/resolve", func(w http.ResponseWriter, req *http.Request) {
			q := req.URL.Query()
			body := ResolveRequest{
				Make:  q.Get("make"),
				Model: q.Get("model"),
			}
			if v := q.Get("year"); v != "" {
				if year, err := strconv.Atoi(v); err == nil {
					body.Year = year
				}
			}
			resolve(w, req, d, body)
		})
	})
}

func resolve(w http.ResponseWriter, req *http.Request, d ResolveDeps, body ResolveRequest) {
	if body.Make == "" || body.Model == "" || body.Year == 0 {
		render.Status(req, http.StatusBadRequest)
		render.JSON(w, req, map[string]any{"error": "identity_required", "detail": "make, model, year are required"})
		return
	}
	normalizer := d.Normalizer
	if normalizer == nil {
		normalizer = canon.Default
	}
	norm := normalizer.Normalize(vehicle.Listing{Make: body.Make, Model: body.Model, Year: body.Year})
	key := canon.VehicleKey(norm.Make, norm.Model, norm.Year)

	ctx := req.Context()
	missKey := "veh:miss:" + key
	cacheKey := "veh:key:" + key

	if ok, _ := d.Redis.Exists(ctx, missKey); ok {
		notFound(w, req, d, key, norm.Make, true)
		return
	}

	var env cachedEnvelope
	if hit, err := d.Redis.GetJSON(ctx, cacheKey, &env); err == nil && hit {
		stale := time.Now().After(env.Meta.StaleAfter)
		// fire-and-forget background refresh if stale
		if stale && d.Refetch != nil {
			d.Refetch(key)
		}
		// Serve cached immediately
		render.JSON(w, req, map[string]any{
			"ok":          true,
			"source":      "cache",
			"stale":       stale,
			"vehicle_key": key,
			"normalized":  map[string]any{"make": norm.Make, "model": norm.Model, "year": norm.Year},
			"data":        env.Data,
		})
		return
	}

	// Cache miss: attempt a short lock to avoid stampedes
	if ok, _ := d.Redis.SetNX(ctx, "veh:lock:"+key, "1", 8*time.Second); !ok {
		render.Status(req, http.StatusAccepted)
		render.JSON(w, req, map[string]any{"ok": false, "in_progress": true, "vehicle_key": key})
		return
	}

	record, found := lookupVehicle(ctx, d, key)
	if !found {
		_ = d.Redis.Set(ctx, missKey, "1", maxDur(d.NegativeTTL, time.Minute))
		notFound(w, req, d, key, norm.Make, false)
		return
	}

	env = cachedEnvelope{Data: record}
	env.Meta.LastFetch = time.Now()
	env.Meta.StaleAfter = env.Meta.LastFetch.Add(maxDur(d.StaleAfter, 5*time.Minute))
	env.Meta.TTLSeconds = int(maxDur(d.CacheTTL, time.Hour).Seconds())
	env.Meta.Source = "dataset"
	env.Norm.Make, env.Norm.Model, env.Norm.Year = norm.Make, norm.Model, norm.Year
	_ = d.Redis.SetJSON(ctx, cacheKey, env, time.Duration(env.Meta.TTLSeconds)*time.Second)

	render.JSON(w, req, map[string]any{
		"ok":          true,
		"source":      "fresh",
		"stale":       false,
		"vehicle_key": key,
		"normalized":  map[string]any{"make": norm.Make, "model": norm.Model, "year": norm.Year},
		"data":        record,
	})
}

// lookupVehicle checks the in-memory dataset first, then falls back to the
// store.
func lookupVehicle(ctx context.Context, d ResolveDeps, key string) (vehicle.MergedListing, bool) {
	if d.Snapshot != nil {
		for _, m := range d.Snapshot.Listings() {
			if canon.VehicleKey(m.Make, m.Model, m.Year) == key {
				return m, true
			}
		}
	}
	if d.Store != nil {
		if m, found, err := d.Store.FetchByVehicleKey(ctx, key); err == nil && found {
			return m, true
		}
	}
	return vehicle.MergedListing{}, false
}

func notFound(w http.ResponseWriter, req *http.Request, d ResolveDeps, key, rawMake string, cooldown bool) {
	render.Status(req, http.StatusNotFound)
	render.JSON(w, req, map[string]any{
		"error":               "not_found",
		"vehicle_key":         key,
		"cache_miss_cooldown": cooldown,
		"brand_suggestions":   suggestBrands(rawMake, d.KnownBrands),
	})
}

// BrandSuggestion is a fuzzy match against the known-brand list, offered
// when a resolve misses. Typos in the make are the usual culprit.
type BrandSuggestion struct {
	Brand       string  `json:"brand"`
	Correlation float64 `json:"correlation"`
}

const suggestionFloor = 0.75

func suggestBrands(input string, brands []string) []BrandSuggestion {
	if input == "" || len(brands) == 0 {
		return nil
	}
	var out []BrandSuggestion
	for _, b := range brands {
		similarity := matchr.JaroWinkler(canon.TitleCase(input), b, false)
		if similarity < suggestionFloor || similarity == 1 {
			continue
		}
		out = append(out, BrandSuggestion{Brand: b, Correlation: similarity})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Correlation > out[j].Correlation })
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

func maxDur(a, b time.Duration) time.Duration {
	if a > 0 {
		return a
	}
	return b
}
