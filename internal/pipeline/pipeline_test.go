package pipeline

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/vehicle-api/internal/condition"
	"github.com/yourorg/vehicle-api/internal/vehicle"
)

func testProcessor() *Processor {
	p := New()
	p.Scorer = condition.New(2024)
	p.Logger = log.New(io.Discard, "", 0)
	return p
}

func TestProcessNormalizesThenMerges(t *testing.T) {
	p := testProcessor()

	// The same physical car listed under two brand spellings; normalization
	// must unify the make before cross-referencing can see the duplicate.
	raw := []vehicle.Listing{
		{
			Make: "maruti", Model: "Swift", Year: 2020,
			Price: 650000, KMsDriven: 30000, Location: "Delhi",
			FuelType: "petrol", Transmission: "manual", Source: "cars24",
		},
		{
			Make: "Maruti Suzuki", Model: "Swift", Year: 2020,
			Price: 645000, KMsDriven: 32000, Location: "Delhi",
			FuelType: "Petrol", Transmission: "Manual", Source: "cardekho",
		},
	}

	out := p.Process(raw)
	require.Len(t, out, 1)

	got := out[0]
	assert.Equal(t, "Maruti Suzuki", got.Make)
	assert.True(t, got.CrossReferenced)
	assert.Equal(t, 2, got.DuplicateCount)
	assert.Equal(t, 645000.0, got.BestPrice)
	assert.Equal(t, "cardekho", got.BestDealPlatform)
	// Scoring ran: averaged odometer 31000 at age 4.
	assert.Greater(t, got.ConditionScore, 0.0)
	assert.Equal(t, 4, got.AgeYears)
	assert.NotEmpty(t, got.ProcessedAt)
}

func TestProcessEmptyBatch(t *testing.T) {
	p := testProcessor()
	out := p.Process(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestProcessDoesNotMutateInput(t *testing.T) {
	p := testProcessor()

	raw := []vehicle.Listing{{Make: "maruti", Model: "Swift", Year: 2020, Price: 650000, Source: "olx"}}
	p.Process(raw)

	assert.Equal(t, "maruti", raw[0].Make)
	assert.Empty(t, raw[0].ProcessedAt)
}

func TestProcessDistinctVehiclesStaySeparate(t *testing.T) {
	p := testProcessor()

	raw := []vehicle.Listing{
		{Make: "Hyundai", Model: "Creta", Year: 2021, Price: 1200000, Source: "olx"},
		{Make: "Hyundai", Model: "Creta", Year: 2022, Price: 1250000, Source: "cars24"},
	}
	out := p.Process(raw)
	assert.Len(t, out, 2)
}
