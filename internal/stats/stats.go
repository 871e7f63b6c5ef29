// Package stats summarizes a processed dataset.
package stats

import (
	"sort"

	"github.com/yourorg/vehicle-api/internal/vehicle"
)

// Compute aggregates counts, price statistics and condition averages over a
// dataset. Empty input yields a zero-valued summary.
func Compute(listings []vehicle.MergedListing) vehicle.Statistics {
	s := vehicle.Statistics{
		TotalVehicles: len(listings),
		ByMake:        map[string]int{},
		ByFuelType:    map[string]int{},
	}
	if len(listings) == 0 {
		return s
	}

	var prices []float64
	var conditionSum float64
	yearMin, yearMax := 0, 0

	for _, l := range listings {
		s.ByMake[orUnknown(l.Make)]++
		s.ByFuelType[orUnknown(l.FuelType)]++

		if l.BestPrice > 0 {
			prices = append(prices, l.BestPrice)
		}
		conditionSum += l.ConditionScore

		if l.Year > 0 {
			if yearMin == 0 || l.Year < yearMin {
				yearMin = l.Year
			}
			if l.Year > yearMax {
				yearMax = l.Year
			}
		}
	}

	if len(prices) > 0 {
		sort.Float64s(prices)
		var sum float64
		for _, p := range prices {
			sum += p
		}
		s.PriceStats = vehicle.PriceStats{
			Min:    prices[0],
			Max:    prices[len(prices)-1],
			Avg:    sum / float64(len(prices)),
			Median: median(prices),
		}
	}
	s.YearRange = vehicle.YearRange{Min: yearMin, Max: yearMax}
	s.ConditionScoreAvg = conditionSum / float64(len(listings))
	return s
}

// median expects sorted input.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func orUnknown(v string) string {
	if v == "" {
		return "Unknown"
	}
	return v
}
