package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourorg/vehicle-api/internal/vehicle"
)

func TestScoreTypicalVehicle(t *testing.T) {
	s := New(2024)

	// 4 years old with average usage for its age:
	// age score 1 - 4/15, mileage score 1 - 45000/(60000*1.5).
	got := s.Score(2020, 45000)
	assert.Equal(t, 0.64, got)
}

func TestScoreBounds(t *testing.T) {
	s := New(2024)

	cases := []struct {
		year int
		kms  int
	}{
		{2024, 0},
		{2023, 500},
		{2010, 200000},
		{1995, 400000},
		{0, 80000},
	}
	for _, tc := range cases {
		got := s.Score(tc.year, tc.kms)
		assert.GreaterOrEqual(t, got, 0.0, "year=%d kms=%d", tc.year, tc.kms)
		assert.LessOrEqual(t, got, 1.0, "year=%d kms=%d", tc.year, tc.kms)
	}
}

func TestScoreCurrentYearVehicle(t *testing.T) {
	s := New(2024)

	// Zero age means no mileage expectation; the neutral mileage score
	// applies: 1.0*0.6 + 0.5*0.4.
	assert.Equal(t, 0.8, s.Score(2024, 0))
	// A future model year clamps to age zero rather than going negative.
	assert.Equal(t, 0.8, s.Score(2025, 0))
}

func TestScoreUnknownYearFallback(t *testing.T) {
	s := New(2024)
	assert.Equal(t, fallbackAgeYears, s.Age(0))
	assert.Equal(t, fallbackAgeYears, s.Age(-3))
}

func TestScoreMonotonicInMileage(t *testing.T) {
	s := New(2024)
	low := s.Score(2020, 20000)
	high := s.Score(2020, 80000)
	assert.Greater(t, low, high)
}

func TestScoreOldHighMileageFloorsAtZero(t *testing.T) {
	s := New(2024)
	assert.Equal(t, 0.0, s.Score(2000, 900000))
}

func TestNewWithUsage(t *testing.T) {
	relaxed := NewWithUsage(2024, 30000)
	strict := New(2024)
	// Doubling the expected annual usage makes the same odometer look better.
	assert.Greater(t, relaxed.Score(2020, 60000), strict.Score(2020, 60000))
}

func TestEnhance(t *testing.T) {
	s := New(2024)

	m := vehicle.MergedListing{
		Listing: vehicle.Listing{Make: "Maruti Suzuki", Model: "Swift", Year: 2020, KMsDriven: 45000},
	}
	m.BestPrice = 645000

	got := s.Enhance(m)
	assert.Equal(t, 0.64, got.ConditionScore)
	assert.Equal(t, 4, got.AgeYears)
	assert.Equal(t, 14.33, got.PricePerKM)
}

func TestEnhanceNoPrice(t *testing.T) {
	s := New(2024)
	got := s.Enhance(vehicle.MergedListing{
		Listing: vehicle.Listing{Year: 2021, KMsDriven: 30000},
	})
	assert.Zero(t, got.PricePerKM)
	assert.Equal(t, 3, got.AgeYears)
}

func TestEnhanceZeroOdometerGuard(t *testing.T) {
	s := New(2024)
	m := vehicle.MergedListing{Listing: vehicle.Listing{Year: 2024}}
	m.BestPrice = 500000
	got := s.Enhance(m)
	// Division guard pins the odometer at 1.
	assert.Equal(t, 500000.0, got.PricePerKM)
}
