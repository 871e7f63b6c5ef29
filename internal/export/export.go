// Package export serializes processed datasets to JSON and CSV files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yourorg/vehicle-api/internal/vehicle"
)

type Exporter struct {
	Dir string
}

func New(dir string) *Exporter {
	if dir == "" {
		dir = "exports"
	}
	return &Exporter{Dir: dir}
}

// SaveJSON writes the dataset to a timestamped JSON file and returns its
// path. An empty filename picks vehicles_<timestamp>.json.
func (e *Exporter) SaveJSON(listings []vehicle.MergedListing, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("vehicles_%s.json", time.Now().Format("20060102_150405"))
	}
	path := filepath.Join(e.Dir, filename)
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(listings); err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}
	return path, nil
}

// SaveCSV writes the dataset to a timestamped CSV file and returns its path.
func (e *Exporter) SaveCSV(listings []vehicle.MergedListing, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("vehicles_%s.csv", time.Now().Format("20060102_150405"))
	}
	path := filepath.Join(e.Dir, filename)
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, listings); err != nil {
		return "", err
	}
	return path, nil
}

// WriteCSV flattens the dataset into CSV rows. The nested price-comparison
// map becomes one price_<platform> column per platform seen anywhere in the
// dataset; source platforms are joined into a single cell.
func WriteCSV(w io.Writer, listings []vehicle.MergedListing) error {
	platforms := collectPlatforms(listings)

	header := []string{
		"vehicle_id", "make", "model", "year", "variant",
		"best_price", "best_deal_platform", "kms_driven", "location",
		"fuel_type", "transmission", "condition_score", "age_years",
		"price_per_km", "duplicate_count", "cross_referenced",
		"source_platforms",
	}
	for _, p := range platforms {
		header = append(header, "price_"+p)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, l := range listings {
		row := []string{
			l.VehicleID, l.Make, l.Model, strconv.Itoa(l.Year), l.Variant,
			formatFloat(l.BestPrice), l.BestDealPlatform,
			strconv.Itoa(l.KMsDriven), l.Location,
			l.FuelType, l.Transmission,
			formatFloat(l.ConditionScore), strconv.Itoa(l.AgeYears),
			formatFloat(l.PricePerKM), strconv.Itoa(l.DuplicateCount),
			strconv.FormatBool(l.CrossReferenced),
			strings.Join(l.SourcePlatforms, ", "),
		}
		for _, p := range platforms {
			if price, ok := l.PriceComparison[p]; ok {
				row = append(row, formatFloat(price))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func collectPlatforms(listings []vehicle.MergedListing) []string {
	set := make(map[string]struct{})
	for _, l := range listings {
		for p := range l.PriceComparison {
			set[p] = struct{}{}
		}
	}
	platforms := make([]string, 0, len(set))
	for p := range set {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)
	return platforms
}

func formatFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
