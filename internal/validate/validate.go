// Package validate audits a processed dataset for cross-referencing quality.
package validate

import (
	"fmt"
	"math"
	"sort"

	"github.com/yourorg/vehicle-api/internal/vehicle"
)

// Any platform price deviating more than this fraction from the listing's
// mean price is flagged as an anomaly.
const priceDeviationThreshold = 0.3

// Report audits merged listings and returns the fixed-shape validation
// report. An empty dataset yields all-zero counts and a 0.0 quality score.
func Report(listings []vehicle.MergedListing) vehicle.ValidationReport {
	report := vehicle.ValidationReport{
		PriceAnomalies: []vehicle.PriceAnomaly{},
	}
	report.TotalVehicles = len(listings)
	if len(listings) == 0 {
		return report
	}

	for _, l := range listings {
		if l.CrossReferenced {
			report.CrossReferencedCount++
		}
		switch {
		case len(l.SourcePlatforms) == 1:
			report.SingleSourceCount++
		case len(l.SourcePlatforms) > 1:
			report.MultiSourceCount++
		}
		report.PriceAnomalies = append(report.PriceAnomalies, priceAnomalies(l)...)
	}

	total := float64(len(listings))
	duplicateAccuracy := float64(report.CrossReferencedCount) / total
	priceConsistency := 1 - float64(len(report.PriceAnomalies))/total
	if priceConsistency < 0 {
		priceConsistency = 0
	}
	completeness := float64(completeRecords(listings)) / total

	report.ValidationDetails = vehicle.ValidationDetails{
		DuplicateDetectionAccuracy: duplicateAccuracy,
		PriceConsistency:           priceConsistency,
		DataCompleteness:           completeness,
	}
	report.DataQualityScore = (duplicateAccuracy + priceConsistency + completeness) / 3
	return report
}

// priceAnomalies flags platforms whose price strays too far from the mean of
// the listing's price comparison. Single-source listings can't deviate from
// themselves and are skipped.
func priceAnomalies(l vehicle.MergedListing) []vehicle.PriceAnomaly {
	if len(l.PriceComparison) < 2 {
		return nil
	}
	var sum float64
	for _, p := range l.PriceComparison {
		sum += p
	}
	mean := sum / float64(len(l.PriceComparison))
	if mean == 0 {
		return nil
	}

	platforms := make([]string, 0, len(l.PriceComparison))
	for p := range l.PriceComparison {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)

	var anomalies []vehicle.PriceAnomaly
	for _, platform := range platforms {
		price := l.PriceComparison[platform]
		deviation := math.Abs(price-mean) / mean
		if deviation <= priceDeviationThreshold {
			continue
		}
		anomalies = append(anomalies, vehicle.PriceAnomaly{
			VehicleID:        l.VehicleID,
			MakeModel:        fmt.Sprintf("%s %s", l.Make, l.Model),
			Platform:         platform,
			Price:            price,
			AveragePrice:     mean,
			DeviationPercent: deviation * 100,
		})
	}
	return anomalies
}

func completeRecords(listings []vehicle.MergedListing) int {
	var complete int
	for _, l := range listings {
		if l.Make == "" || l.Model == "" || l.Year == 0 || l.FuelType == "" {
			continue
		}
		if l.BestPrice <= 0 && l.Price <= 0 {
			continue
		}
		complete++
	}
	return complete
}
