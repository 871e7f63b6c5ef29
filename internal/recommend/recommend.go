// Package recommend filters and ranks merged listings against user
// preferences.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yourorg/vehicle-api/internal/vehicle"
)

// Score weights. Each weight only enters the normalization denominator when
// the corresponding attribute pair was actually comparable.
const (
	PriceWeight        = 0.30
	ConditionWeight    = 0.25
	ReliabilityWeight  = 0.15
	FuelWeight         = 0.10
	TransmissionWeight = 0.10
	LocationWeight     = 0.05
	BrandPrefWeight    = 0.05
)

// Price-fit tiers relative to budget.
const (
	comfortableBudgetRatio = 0.7
	reasonableBudgetRatio  = 0.9
)

// DefaultMaxResults caps how many recommendations a single request returns.
const DefaultMaxResults = 10

// BrandProfile is the qualitative knowledge carried for a brand.
type BrandProfile struct {
	Reliability string
	Maintenance string
	Resale      string
}

// DefaultBrandProfiles covers the brands the upstream scrapers commonly
// report. Keys are lower-cased makes.
func DefaultBrandProfiles() map[string]BrandProfile {
	return map[string]BrandProfile{
		"maruti suzuki": {Reliability: "High", Maintenance: "Low", Resale: "Excellent"},
		"hyundai":       {Reliability: "High", Maintenance: "Medium", Resale: "Good"},
		"honda":         {Reliability: "Very High", Maintenance: "Medium", Resale: "Excellent"},
		"toyota":        {Reliability: "Very High", Maintenance: "Low", Resale: "Excellent"},
		"tata":          {Reliability: "Good", Maintenance: "Low", Resale: "Good"},
		"mahindra":      {Reliability: "Good", Maintenance: "Medium", Resale: "Good"},
		"bmw":           {Reliability: "Good", Maintenance: "High", Resale: "Good"},
		"mercedes-benz": {Reliability: "Good", Maintenance: "Very High", Resale: "Good"},
		"audi":          {Reliability: "Good", Maintenance: "High", Resale: "Good"},
	}
}

// DefaultKnownBrands lists the canonical display names of the brands in
// DefaultBrandProfiles, for fuzzy suggestion surfaces.
func DefaultKnownBrands() []string {
	return []string{
		"Maruti Suzuki", "Hyundai", "Honda", "Toyota", "Tata",
		"Mahindra", "BMW", "Mercedes-Benz", "Audi",
	}
}

var reliabilityScores = map[string]float64{
	"very high": 1.0,
	"high":      0.8,
	"good":      0.6,
	"fair":      0.4,
	"poor":      0.2,
}

// Score for brands missing from the profile table.
const defaultReliabilityScore = 0.6

// Ranker scores merged listings against preferences using an injected brand
// knowledge table.
type Ranker struct {
	brands     map[string]BrandProfile
	maxResults int
}

func New(brands map[string]BrandProfile, maxResults int) *Ranker {
	if brands == nil {
		brands = DefaultBrandProfiles()
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Ranker{brands: brands, maxResults: maxResults}
}

// Rank filters listings to the budget (when set), scores each survivor and
// returns them sorted by descending score. Ties keep input order, so the
// result is reproducible for identical inputs.
func (r *Ranker) Rank(listings []vehicle.MergedListing, prefs vehicle.Preferences) []vehicle.Recommendation {
	recs := make([]vehicle.Recommendation, 0, len(listings))
	for _, l := range listings {
		if prefs.Budget > 0 && l.BestPrice > prefs.Budget {
			continue
		}
		recs = append(recs, vehicle.Recommendation{
			MergedListing:         l,
			RecommendationScore:   r.score(l, prefs),
			RecommendationReasons: r.reasons(l, prefs),
		})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].RecommendationScore > recs[j].RecommendationScore
	})
	if len(recs) > r.maxResults {
		recs = recs[:r.maxResults]
	}
	return recs
}

func (r *Ranker) score(l vehicle.MergedListing, prefs vehicle.Preferences) float64 {
	var score, maxScore float64

	if l.BestPrice > 0 && prefs.Budget > 0 {
		ratio := l.BestPrice / prefs.Budget
		var priceScore float64
		switch {
		case ratio <= comfortableBudgetRatio:
			priceScore = 1.0
		case ratio <= reasonableBudgetRatio:
			priceScore = 0.8
		case ratio <= 1.0:
			priceScore = 0.6
		}
		score += priceScore * PriceWeight
		maxScore += PriceWeight
	}

	if l.ConditionScore > 0 {
		score += l.ConditionScore * ConditionWeight
		maxScore += ConditionWeight
	}

	if brand := fold(l.Make); brand != "" {
		score += r.reliabilityScore(brand) * ReliabilityWeight
		maxScore += ReliabilityWeight
	}

	score, maxScore = addMatch(score, maxScore, prefs.FuelType, l.FuelType, FuelWeight)
	score, maxScore = addMatch(score, maxScore, prefs.Transmission, l.Transmission, TransmissionWeight)
	score, maxScore = addMatch(score, maxScore, prefs.Location, l.Location, LocationWeight)
	score, maxScore = addMatch(score, maxScore, prefs.Brand, l.Make, BrandPrefWeight)

	if maxScore == 0 {
		return 0
	}
	return score / maxScore
}

// addMatch accumulates a substring-match sub-score when both the preference
// and the listing attribute are present.
func addMatch(score, maxScore float64, pref, attr string, weight float64) (float64, float64) {
	p, a := fold(pref), fold(attr)
	if p == "" || a == "" {
		return score, maxScore
	}
	if strings.Contains(a, p) {
		score += weight
	}
	return score, maxScore + weight
}

func (r *Ranker) reliabilityScore(foldedMake string) float64 {
	profile, ok := r.brands[foldedMake]
	if !ok {
		return defaultReliabilityScore
	}
	if s, ok := reliabilityScores[fold(profile.Reliability)]; ok {
		return s
	}
	return defaultReliabilityScore
}

// reasons produces at most five human-readable justifications, each from an
// independent rule check.
func (r *Ranker) reasons(l vehicle.MergedListing, prefs vehicle.Preferences) []string {
	var reasons []string

	if l.BestPrice > 0 && prefs.Budget > 0 {
		ratio := l.BestPrice / prefs.Budget
		if ratio <= comfortableBudgetRatio {
			reasons = append(reasons, fmt.Sprintf("Excellent value - %.0f%% under your budget", (1-ratio)*100))
		} else if ratio <= reasonableBudgetRatio {
			reasons = append(reasons, "Good value within your budget")
		}
	}

	if l.ConditionScore >= 0.8 {
		reasons = append(reasons, "Excellent condition")
	} else if l.ConditionScore >= 0.6 {
		reasons = append(reasons, "Good condition")
	}

	if profile, ok := r.brands[fold(l.Make)]; ok {
		switch profile.Reliability {
		case "Very High", "High":
			reasons = append(reasons, fmt.Sprintf("Highly reliable %s brand", l.Make))
		}
		if profile.Maintenance == "Low" {
			reasons = append(reasons, "Low maintenance costs")
		}
	}

	if len(l.SourcePlatforms) > 1 {
		reasons = append(reasons, fmt.Sprintf("Available on %d platforms for comparison", len(l.SourcePlatforms)))
	}

	switch fold(l.FuelType) {
	case "cng", "electric":
		reasons = append(reasons, "Eco-friendly and fuel-efficient")
	case "diesel":
		reasons = append(reasons, "Good for long-distance driving")
	}

	if len(reasons) > 5 {
		reasons = reasons[:5]
	}
	return reasons
}

// Filter narrows a dataset by the given attribute filters; zero-valued
// filter fields are ignored.
func Filter(listings []vehicle.MergedListing, f vehicle.Filters) []vehicle.MergedListing {
	out := make([]vehicle.MergedListing, 0, len(listings))
	for _, l := range listings {
		if f.Make != "" && fold(l.Make) != fold(f.Make) {
			continue
		}
		if f.Model != "" && fold(l.Model) != fold(f.Model) {
			continue
		}
		if f.YearMin > 0 && l.Year < f.YearMin {
			continue
		}
		if f.YearMax > 0 && l.Year > f.YearMax {
			continue
		}
		if f.PriceMin > 0 && l.BestPrice < f.PriceMin {
			continue
		}
		if f.PriceMax > 0 && l.BestPrice > f.PriceMax {
			continue
		}
		if f.FuelType != "" && fold(l.FuelType) != fold(f.FuelType) {
			continue
		}
		if f.Transmission != "" && fold(l.Transmission) != fold(f.Transmission) {
			continue
		}
		if f.Location != "" && !strings.Contains(fold(l.Location), fold(f.Location)) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
