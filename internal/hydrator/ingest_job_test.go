package hydrator

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/vehicle-api/internal/dataset"
	"github.com/yourorg/vehicle-api/internal/feed"
	"github.com/yourorg/vehicle-api/internal/pipeline"
)

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/listings", r.URL.Path)

		// One short page per source ends pagination immediately.
		var listings []map[string]any
		switch r.URL.Query().Get("source") {
		case "cars24":
			listings = []map[string]any{{
				"make": "maruti", "model": "Swift", "year": 2020,
				"price": 650000, "kms_driven": 30000, "location": "Delhi",
				"fuel_type": "petrol", "transmission": "manual", "source": "cars24",
			}}
		case "cardekho":
			listings = []map[string]any{{
				"make": "Maruti Suzuki", "model": "Swift", "year": 2020,
				"price": 645000, "kms_driven": 32000, "location": "Delhi",
				"fuel_type": "Petrol", "transmission": "Manual", "source": "cardekho",
			}}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"listings": listings})
	}))
}

func TestIngestJobRunOnce(t *testing.T) {
	srv := feedServer(t)
	defer srv.Close()

	snap := dataset.New()
	job := &IngestJob{
		Client:    feed.NewClient(srv.URL, "", 100),
		Hydrator:  &Hydrator{}, // no store: persistence disabled
		Processor: pipeline.New(),
		Snapshot:  snap,
		Logger:    log.New(io.Discard, "", 0),
		Config: IngestConfig{
			Sources:  []string{"cars24", "cardekho"},
			PageSize: 10,
		},
	}

	require.NoError(t, job.RunOnce(context.Background()))

	// Both sources reported the same physical car; one merged vehicle serves.
	listings := snap.Listings()
	require.Len(t, listings, 1)
	assert.Equal(t, "Maruti Suzuki", listings[0].Make)
	assert.True(t, listings[0].CrossReferenced)
	assert.Equal(t, 645000.0, listings[0].BestPrice)
	assert.Equal(t, []string{"cardekho", "cars24"}, listings[0].SourcePlatforms)
}

func TestIngestJobSourceFailureDoesNotStopOthers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("source") == "broken" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "unknown source"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"listings": []map[string]any{{
			"make": "Tata", "model": "Nexon", "year": 2022, "price": 900000, "source": "olx",
		}}})
	}))
	defer srv.Close()

	snap := dataset.New()
	job := &IngestJob{
		Client:    feed.NewClient(srv.URL, "", 100),
		Hydrator:  &Hydrator{},
		Processor: pipeline.New(),
		Snapshot:  snap,
		Logger:    log.New(io.Discard, "", 0),
		Config: IngestConfig{
			Sources:  []string{"broken", "olx"},
			PageSize: 10,
		},
	}

	err := job.RunOnce(context.Background())
	assert.Error(t, err)
	// The healthy source still landed.
	assert.Equal(t, 1, snap.Len())
}

func TestIngestJobValidation(t *testing.T) {
	job := &IngestJob{}
	assert.Error(t, job.RunOnce(context.Background()))

	job = &IngestJob{Client: feed.NewClient("http://localhost:0", "", 1), Processor: pipeline.New()}
	assert.Error(t, job.RunOnce(context.Background()))
}
