// Package condition derives a normalized desirability score for a vehicle
// from its age and mileage.
package condition

import (
	"math"
	"time"

	"github.com/yourorg/vehicle-api/internal/vehicle"
)

const (
	// Listings with no usable model year are treated as this old.
	fallbackAgeYears = 10
	// Age at which the age component bottoms out.
	maxUsefulAgeYears = 15.0
	// TypicalKMPerYear is the expected annual usage a vehicle's odometer is
	// judged against.
	TypicalKMPerYear = 15000
	// Mileage up to this multiple of expected still earns partial credit.
	mileageHeadroom = 1.5

	ageWeight     = 0.6
	mileageWeight = 0.4
)

// Scorer computes condition scores against a fixed reference year, so a
// batch processed together is scored consistently and tests are clock-free.
type Scorer struct {
	currentYear int
	kmPerYear   int
}

// New returns a scorer anchored at currentYear; 0 means "this year".
func New(currentYear int) *Scorer {
	if currentYear <= 0 {
		currentYear = time.Now().Year()
	}
	return &Scorer{currentYear: currentYear, kmPerYear: TypicalKMPerYear}
}

// NewWithUsage overrides the typical-kilometers-per-year policy.
func NewWithUsage(currentYear, kmPerYear int) *Scorer {
	s := New(currentYear)
	if kmPerYear > 0 {
		s.kmPerYear = kmPerYear
	}
	return s
}

// Age returns the vehicle age in whole years, floored at zero, with a fixed
// fallback when the year is unknown.
func (s *Scorer) Age(year int) int {
	if year <= 0 {
		return fallbackAgeYears
	}
	age := s.currentYear - year
	if age < 0 {
		return 0
	}
	return age
}

// Score returns the condition score in [0,1] for the given model year and
// odometer reading, rounded to two decimals.
func (s *Scorer) Score(year, kmsDriven int) float64 {
	age := s.Age(year)

	ageScore := 1 - float64(age)/maxUsefulAgeYears
	if ageScore < 0 {
		ageScore = 0
	}

	expectedKMs := float64(age * s.kmPerYear)
	var mileageScore float64
	if expectedKMs > 0 {
		mileageScore = 1 - float64(kmsDriven)/(expectedKMs*mileageHeadroom)
		if mileageScore < 0 {
			mileageScore = 0
		}
	} else {
		// Brand-new or age-zero vehicles: no expectation to judge against.
		mileageScore = 0.5
	}

	return round2(ageScore*ageWeight + mileageScore*mileageWeight)
}

// Enhance attaches condition score, age and price-per-km to a merged record.
func (s *Scorer) Enhance(m vehicle.MergedListing) vehicle.MergedListing {
	m.ConditionScore = s.Score(m.Year, m.KMsDriven)
	m.AgeYears = s.Age(m.Year)
	if m.BestPrice > 0 {
		kms := m.KMsDriven
		if kms < 1 {
			kms = 1
		}
		m.PricePerKM = round2(m.BestPrice / float64(kms))
	} else {
		m.PricePerKM = 0
	}
	return m
}

// EnhanceAll scores a batch in input order.
func (s *Scorer) EnhanceAll(ms []vehicle.MergedListing) []vehicle.MergedListing {
	out := make([]vehicle.MergedListing, 0, len(ms))
	for _, m := range ms {
		out = append(out, s.Enhance(m))
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
