package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/vehicle-api/internal/dataset"
	"github.com/yourorg/vehicle-api/internal/export"
	"github.com/yourorg/vehicle-api/internal/hydrator"
	"github.com/yourorg/vehicle-api/internal/pipeline"
	"github.com/yourorg/vehicle-api/internal/recommend"
	"github.com/yourorg/vehicle-api/internal/vehicle"
)

func newProcessRouter(t *testing.T, snap *dataset.Snapshot) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	RegisterProcess(r, ProcessDeps{
		Processor: pipeline.New(),
		Snapshot:  snap,
		Hydrator:  &hydrator.Hydrator{},
	})
	RegisterSearch(r, SearchDeps{Snapshot: snap})
	RegisterRecommendations(r, RecommendDeps{Snapshot: snap, Ranker: recommend.New(nil, 0)})
	RegisterReports(r, ReportDeps{Snapshot: snap})
	RegisterExport(r, ExportDeps{Snapshot: snap, Exporter: export.New(t.TempDir())})
	return r
}

func TestProcessEndpoint(t *testing.T) {
	snap := dataset.New()
	router := newProcessRouter(t, snap)

	body := `{"listings": [
		{"make": "maruti", "model": "Swift", "year": 2020, "price": 650000, "kms_driven": 30000, "location": "Delhi", "fuel_type": "petrol", "transmission": "manual", "source": "cars24"},
		{"make": "Maruti Suzuki", "model": "Swift", "year": 2020, "price": 645000, "kms_driven": 32000, "location": "Delhi", "fuel_type": "Petrol", "transmission": "Manual", "source": "cardekho"}
	]}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/process", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OK           bool                    `json:"ok"`
		RawCount     int                     `json:"raw_count"`
		VehicleCount int                     `json:"vehicle_count"`
		Vehicles     []vehicle.MergedListing `json:"vehicles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, 2, resp.RawCount)
	require.Equal(t, 1, resp.VehicleCount)
	assert.Equal(t, "Maruti Suzuki", resp.Vehicles[0].Make)
	assert.Equal(t, 645000.0, resp.Vehicles[0].BestPrice)

	// The processed batch became the served dataset.
	assert.Equal(t, 1, snap.Len())
}

func TestProcessEndpointReplaceFalse(t *testing.T) {
	snap := dataset.New()
	router := newProcessRouter(t, snap)

	body := `{"replace": false, "listings": [{"make": "Tata", "model": "Nexon", "year": 2022, "price": 900000, "source": "olx"}]}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/process", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, snap.Len())
}

func TestProcessEndpointBadJSON(t *testing.T) {
	router := newProcessRouter(t, dataset.New())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/process", strings.NewReader("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_json", resp["error"])
}

func TestBadJSONReturns400AcrossEndpoints(t *testing.T) {
	router := newProcessRouter(t, dataset.New())

	for _, path := range []string{"/api/search", "/api/recommendations"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader("{not json")))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "path %s", path)
	}
}

func TestExportEndpointUnsupportedFormat(t *testing.T) {
	router := newProcessRouter(t, dataset.New())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export/xml", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unsupported_format", resp["error"])
}

func TestSearchEndpoint(t *testing.T) {
	snap := dataset.New()
	router := newProcessRouter(t, snap)

	a := vehicle.MergedListing{Listing: vehicle.Listing{Make: "Maruti Suzuki", Model: "Swift", Year: 2020}}
	a.BestPrice = 650000
	b := vehicle.MergedListing{Listing: vehicle.Listing{Make: "Hyundai", Model: "Creta", Year: 2021}}
	b.BestPrice = 1400000
	snap.Replace([]vehicle.MergedListing{a, b})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?make=maruti+suzuki", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count    int                     `json:"count"`
		Vehicles []vehicle.MergedListing `json:"vehicles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Swift", resp.Vehicles[0].Model)
}

func TestValidationEndpointEmptyDataset(t *testing.T) {
	router := newProcessRouter(t, dataset.New())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/validation", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var report vehicle.ValidationReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Zero(t, report.TotalVehicles)
	assert.Zero(t, report.DataQualityScore)
	assert.NotNil(t, report.PriceAnomalies)
}
