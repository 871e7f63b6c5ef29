package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourorg/vehicle-api/internal/vehicle"
)

func swift(mutate func(*vehicle.Listing)) vehicle.Listing {
	l := vehicle.Listing{
		Make: "Maruti Suzuki", Model: "Swift", Year: 2020,
		Price: 650000, KMsDriven: 30000,
		Location: "Delhi", FuelType: "Petrol", Transmission: "Manual",
	}
	if mutate != nil {
		mutate(&l)
	}
	return l
}

func TestSimilarityIdentityGate(t *testing.T) {
	a := swift(nil)

	assert.Zero(t, Similarity(a, swift(func(l *vehicle.Listing) { l.Year = 2021 })))
	assert.Zero(t, Similarity(a, swift(func(l *vehicle.Listing) { l.Model = "Baleno" })))
	assert.Zero(t, Similarity(a, swift(func(l *vehicle.Listing) { l.Make = "Hyundai" })))

	// Case and whitespace on identity fields don't break the gate.
	b := swift(func(l *vehicle.Listing) { l.Make = "  maruti suzuki "; l.Model = "SWIFT" })
	assert.Equal(t, 1.0, Similarity(a, b))
}

func TestSimilarityIdenticalListings(t *testing.T) {
	a := swift(nil)
	assert.Equal(t, 1.0, Similarity(a, a))
}

func TestSimilaritySymmetry(t *testing.T) {
	a := swift(nil)
	b := swift(func(l *vehicle.Listing) { l.Price = 645000; l.KMsDriven = 32000; l.Location = "Mumbai" })
	assert.Equal(t, Similarity(a, b), Similarity(b, a))
}

func TestSimilarityPricePenalty(t *testing.T) {
	a := swift(func(l *vehicle.Listing) { l.KMsDriven = 0; l.Location = ""; l.FuelType = ""; l.Transmission = "" })
	b := swift(func(l *vehicle.Listing) {
		l.Price = 585000 // 10% below
		l.KMsDriven = 0
		l.Location = ""
		l.FuelType = ""
		l.Transmission = ""
	})
	// Only the price pair is comparable: 1 - (65000/650000)*2 = 0.8.
	assert.InDelta(t, 0.8, Similarity(a, b), 1e-9)

	c := swift(func(l *vehicle.Listing) {
		l.Price = 325000 // 50% below bottoms out
		l.KMsDriven = 0
		l.Location = ""
		l.FuelType = ""
		l.Transmission = ""
	})
	assert.Zero(t, Similarity(a, c))
}

func TestSimilarityLocationMismatchPartialCredit(t *testing.T) {
	a := swift(func(l *vehicle.Listing) { l.Price = 0; l.KMsDriven = 0; l.FuelType = ""; l.Transmission = "" })
	b := swift(func(l *vehicle.Listing) {
		l.Price = 0
		l.KMsDriven = 0
		l.FuelType = ""
		l.Transmission = ""
		l.Location = "Mumbai"
	})
	assert.Equal(t, 0.5, Similarity(a, b))
}

func TestSimilarityNoEvidence(t *testing.T) {
	a := vehicle.Listing{Make: "Tata", Model: "Nexon", Year: 2022}
	b := vehicle.Listing{Make: "Tata", Model: "Nexon", Year: 2022}
	assert.Equal(t, 0.5, Similarity(a, b))
}

func TestSimilarityMissingAttributesExcluded(t *testing.T) {
	// b has no price, so the price pair must not contribute; the remaining
	// pairs all agree.
	a := swift(nil)
	b := swift(func(l *vehicle.Listing) { l.Price = 0 })
	assert.Equal(t, 1.0, Similarity(a, b))
}

func TestSimilarityRange(t *testing.T) {
	a := swift(nil)
	b := swift(func(l *vehicle.Listing) {
		l.Price = 900000
		l.KMsDriven = 90000
		l.FuelType = "Diesel"
		l.Transmission = "Automatic"
		l.Location = "Pune"
	})
	s := Similarity(a, b)
	assert.GreaterOrEqual(t, s, 0.0)
	assert.LessOrEqual(t, s, 1.0)
}
