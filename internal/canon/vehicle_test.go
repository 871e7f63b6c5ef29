package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/vehicle-api/internal/vehicle"
)

func TestNormalizeBrandAliases(t *testing.T) {
	n := New(DefaultTables())

	cases := []struct {
		in   string
		want string
	}{
		{"maruti", "Maruti Suzuki"},
		{"MARUTI", "Maruti Suzuki"},
		{"Suzuki", "Maruti Suzuki"},
		{"maruti suzuki", "Maruti Suzuki"},
		{"mercedes", "Mercedes-Benz"},
		{"Mercedes Benz", "Mercedes-Benz"},
		{"hyundai", "Hyundai"},
		{"ferrari", "Ferrari"}, // unknown brands pass through title-cased
	}
	for _, tc := range cases {
		got := n.Normalize(vehicle.Listing{Make: tc.in})
		assert.Equal(t, tc.want, got.Make, "make %q", tc.in)
	}
}

func TestNormalizeFuelAndTransmission(t *testing.T) {
	n := New(DefaultTables())

	got := n.Normalize(vehicle.Listing{FuelType: "cng", Transmission: "amt"})
	assert.Equal(t, "CNG", got.FuelType)
	assert.Equal(t, "AMT", got.Transmission)

	got = n.Normalize(vehicle.Listing{FuelType: "PETROL", Transmission: "cvt"})
	assert.Equal(t, "Petrol", got.FuelType)
	assert.Equal(t, "CVT", got.Transmission)
}

func TestNormalizeIdempotent(t *testing.T) {
	n := New(DefaultTables())

	in := vehicle.Listing{Make: "maruti", Model: "Swift", FuelType: "petrol", Transmission: "manual"}
	once := n.Normalize(in)
	twice := n.Normalize(once)

	assert.Equal(t, once.Make, twice.Make)
	assert.Equal(t, once.FuelType, twice.FuelType)
	assert.Equal(t, once.Transmission, twice.Transmission)
}

func TestNormalizePreservesOtherFields(t *testing.T) {
	n := New(DefaultTables())

	in := vehicle.Listing{
		Make: "honda", Model: "City", Year: 2021,
		Price: 850000, KMsDriven: 20000, Location: "Mumbai", Source: "cars24",
	}
	got := n.Normalize(in)

	assert.Equal(t, in.Model, got.Model)
	assert.Equal(t, in.Year, got.Year)
	assert.Equal(t, in.Price, got.Price)
	assert.Equal(t, in.KMsDriven, got.KMsDriven)
	assert.Equal(t, in.Source, got.Source)
	require.NotEmpty(t, got.ProcessedAt)
}

func TestVehicleKey(t *testing.T) {
	assert.Equal(t, "maruti suzuki|swift|2020", VehicleKey("Maruti Suzuki", "Swift", 2020))
	assert.Equal(t,
		VehicleKey("Maruti Suzuki", "Swift", 2020),
		VehicleKey("  maruti  suzuki ", "SWIFT", 2020))
	assert.NotEqual(t,
		VehicleKey("Maruti Suzuki", "Swift", 2020),
		VehicleKey("Maruti Suzuki", "Swift", 2021))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Maruti Suzuki", TitleCase("  maruti   SUZUKI "))
	assert.Equal(t, "", TitleCase("   "))
}
