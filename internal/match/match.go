// Package match scores how likely two listings describe the same physical
// vehicle. Identity fields gate the comparison; everything else contributes
// soft evidence.
package match

import (
	"strings"

	"github.com/yourorg/vehicle-api/internal/canon"
	"github.com/yourorg/vehicle-api/internal/vehicle"
)

const (
	// A 10% relative price difference scores ~0.8; >=50% scores 0.
	pricePenaltyFactor = 2.0
	// A 20% relative mileage difference scores ~0.7.
	mileagePenaltyFactor = 1.5
	// Different cities still get partial credit: relisted vehicles often
	// carry the dealer's city on one platform and the seller's on another.
	locationMismatchScore = 0.5
	// Fallback when no attribute pair was comparable.
	noEvidenceScore = 0.5
)

// Similarity returns a score in [0,1] for a and b. If make, model or year
// differ (case/whitespace-insensitive) the score is 0 regardless of other
// attributes.
func Similarity(a, b vehicle.Listing) float64 {
	if canon.VehicleKey(a.Make, a.Model, a.Year) != canon.VehicleKey(b.Make, b.Model, b.Year) {
		return 0.0
	}

	var scores []float64

	if a.Price > 0 && b.Price > 0 {
		scores = append(scores, ratioScore(a.Price, b.Price, pricePenaltyFactor))
	}
	if a.KMsDriven > 0 && b.KMsDriven > 0 {
		scores = append(scores, ratioScore(float64(a.KMsDriven), float64(b.KMsDriven), mileagePenaltyFactor))
	}
	if f1, f2 := fold(a.FuelType), fold(b.FuelType); f1 != "" && f2 != "" {
		scores = append(scores, exactScore(f1, f2))
	}
	if t1, t2 := fold(a.Transmission), fold(b.Transmission); t1 != "" && t2 != "" {
		scores = append(scores, exactScore(t1, t2))
	}
	if l1, l2 := fold(a.Location), fold(b.Location); l1 != "" && l2 != "" {
		if l1 == l2 {
			scores = append(scores, 1.0)
		} else {
			scores = append(scores, locationMismatchScore)
		}
	}

	if len(scores) == 0 {
		return noEvidenceScore
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// ratioScore maps the relative difference between two positive values to
// [0,1], with penalty controlling how fast it decays.
func ratioScore(v1, v2, penalty float64) float64 {
	max := v1
	if v2 > max {
		max = v2
	}
	diff := v1 - v2
	if diff < 0 {
		diff = -diff
	}
	s := 1 - (diff/max)*penalty
	if s < 0 {
		return 0
	}
	return s
}

func exactScore(a, b string) float64 {
	if a == b {
		return 1.0
	}
	return 0.0
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
