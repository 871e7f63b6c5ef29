package canon

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/yourorg/vehicle-api/internal/vehicle"
)

// Tables holds the controlled-vocabulary maps used to normalize listings.
// Keys are matched against the title-cased input value.
type Tables struct {
	BrandAliases         map[string]string
	FuelSynonyms         map[string]string
	TransmissionSynonyms map[string]string
}

// DefaultTables returns the built-in vocabulary for the Indian used-car
// market the upstream scrapers cover.
func DefaultTables() Tables {
	return Tables{
		BrandAliases: map[string]string{
			"Maruti":        "Maruti Suzuki",
			"Suzuki":        "Maruti Suzuki",
			"Maruti Suzuki": "Maruti Suzuki",
			"Mercedes":      "Mercedes-Benz",
			"Mercedes Benz": "Mercedes-Benz",
		},
		FuelSynonyms: map[string]string{
			"Petrol":   "Petrol",
			"Diesel":   "Diesel",
			"Cng":      "CNG",
			"Electric": "Electric",
			"Hybrid":   "Hybrid",
		},
		TransmissionSynonyms: map[string]string{
			"Manual":    "Manual",
			"Automatic": "Automatic",
			"Amt":       "AMT",
			"Cvt":       "CVT",
		},
	}
}

// Normalizer canonicalizes raw listing fields. It is a pure transform;
// unknown values pass through in their title-cased form.
type Normalizer struct {
	tables Tables
}

func New(tables Tables) *Normalizer {
	return &Normalizer{tables: tables}
}

// Default is a normalizer over DefaultTables, for callers that don't need
// custom vocabulary.
var Default = New(DefaultTables())

// Normalize returns a copy of l with make, fuel type and transmission mapped
// into the controlled vocabulary and a processing timestamp attached. All
// other fields pass through unchanged.
func (n *Normalizer) Normalize(l vehicle.Listing) vehicle.Listing {
	out := l
	out.Make = lookupOrTitle(n.tables.BrandAliases, l.Make)
	out.FuelType = lookupOrTitle(n.tables.FuelSynonyms, l.FuelType)
	out.Transmission = lookupOrTitle(n.tables.TransmissionSynonyms, l.Transmission)
	out.ProcessedAt = time.Now().UTC().Format(time.RFC3339)
	return out
}

// NormalizeAll normalizes a batch in input order.
func (n *Normalizer) NormalizeAll(ls []vehicle.Listing) []vehicle.Listing {
	out := make([]vehicle.Listing, 0, len(ls))
	for _, l := range ls {
		out = append(out, n.Normalize(l))
	}
	return out
}

func lookupOrTitle(table map[string]string, v string) string {
	t := TitleCase(v)
	if mapped, ok := table[t]; ok {
		return mapped
	}
	return t
}

// VehicleKey computes a stable identity key from the exact-match fields.
// Case and surrounding whitespace are ignored so that listings differing
// only in capitalization key identically.
func VehicleKey(make, model string, year int) string {
	m := collapseSpaces(strings.ToLower(strings.TrimSpace(make)))
	mo := collapseSpaces(strings.ToLower(strings.TrimSpace(model)))
	return fmt.Sprintf("%s|%s|%d", m, mo, year)
}

// TitleCase upper-cases the first letter of each space-separated word and
// lower-cases the rest, trimming and collapsing whitespace.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
